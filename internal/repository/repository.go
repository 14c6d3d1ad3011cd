package repository

import (
	"context"

	"github.com/RobinsonKrusoe/intershop/internal/domain"
)

// ProductRepository defines the persistence contract for the product catalog.
// It is the source of truth behind the catalog cache.
type ProductRepository interface {
	// Create inserts a new product and assigns its identifier.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its identifier.
	GetByID(ctx context.Context, id int64) (*domain.Product, error)

	// ListIDs returns one page of product ids in the requested ordering.
	ListIDs(ctx context.Context, sort domain.SortKind, offset, limit int) ([]int64, error)

	// SearchIDs returns one page of product ids whose title matches the
	// search term (case-insensitive substring), in the requested ordering.
	SearchIDs(ctx context.Context, term string, sort domain.SortKind, offset, limit int) ([]int64, error)

	// CountAll returns the total number of products.
	CountAll(ctx context.Context) (int, error)

	// CountBySearch returns the number of products matching the search term.
	CountBySearch(ctx context.Context, term string) (int, error)
}

// OrderRepository defines the persistence contract for orders and cart lines.
type OrderRepository interface {
	// GetOrCreateActive returns the single order with status NEW, creating
	// one if none exists. Racing creates resolve to the same order.
	GetOrCreateActive(ctx context.Context) (*domain.Order, error)

	// GetActive returns the single order with status NEW, or ErrNotFound
	// when no order is active. It never creates one.
	GetActive(ctx context.Context) (*domain.Order, error)

	// GetByID retrieves an order of any status.
	GetByID(ctx context.Context, id int64) (*domain.Order, error)

	// ListAll returns all orders, most recently created first.
	ListAll(ctx context.Context) ([]domain.Order, error)

	// SetStatus transitions an order to the given status.
	SetStatus(ctx context.Context, id int64, status domain.OrderStatus) error

	// GetLine returns the cart line for (orderID, productID).
	GetLine(ctx context.Context, orderID, productID int64) (*domain.CartLine, error)

	// ListLines returns all cart lines of an order.
	ListLines(ctx context.Context, orderID int64) ([]domain.CartLine, error)

	// IncrementLine adds 1 to the line quantity, creating the line with
	// quantity 1 when absent. The operation is atomic.
	IncrementLine(ctx context.Context, orderID, productID int64) error

	// DecrementLine subtracts 1 from the line quantity, deleting the line
	// when the quantity reaches zero. Absent lines are a no-op.
	DecrementLine(ctx context.Context, orderID, productID int64) error

	// DeleteLine removes the line unconditionally. Idempotent.
	DeleteLine(ctx context.Context, orderID, productID int64) error
}
