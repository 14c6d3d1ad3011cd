package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/RobinsonKrusoe/intershop/internal/domain"
	"github.com/RobinsonKrusoe/intershop/pkg/database"
	apperrors "github.com/RobinsonKrusoe/intershop/pkg/errors"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
// The "at most one NEW order" invariant is enforced by a partial unique index
// on orders(status) WHERE status = 'NEW'.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// GetOrCreateActive returns the order with status NEW, creating one if none
// exists. A racing create loses on the unique index and re-reads the winner.
func (r *OrderRepository) GetOrCreateActive(ctx context.Context) (*domain.Order, error) {
	order, err := r.GetActive(ctx)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	query := `
		INSERT INTO orders (status)
		VALUES ($1)
		RETURNING id, status, created_at`

	var created domain.Order
	err = r.pool.QueryRow(ctx, query, domain.StatusNew).Scan(
		&created.ID,
		&created.Status,
		&created.CreatedAt,
	)
	if err == nil {
		return &created, nil
	}

	if isUniqueViolation(err) {
		// Another request created the active order first; take theirs.
		order, rereadErr := r.GetActive(ctx)
		if rereadErr != nil {
			return nil, apperrors.Conflict("active order creation raced and re-read failed")
		}
		return order, nil
	}

	return nil, fmt.Errorf("insert active order: %w", err)
}

// GetActive fetches the most recent NEW order without creating one.
func (r *OrderRepository) GetActive(ctx context.Context) (*domain.Order, error) {
	query := `
		SELECT id, status, created_at
		FROM orders
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT 1`

	var o domain.Order
	err := r.pool.QueryRow(ctx, query, domain.StatusNew).Scan(&o.ID, &o.Status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan active order: %w", err)
	}

	return &o, nil
}

// GetByID retrieves an order of any status.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `
		SELECT id, status, created_at
		FROM orders
		WHERE id = $1`

	var o domain.Order
	err := r.pool.QueryRow(ctx, query, id).Scan(&o.ID, &o.Status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	return &o, nil
}

// ListAll returns all orders, most recently created first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	query := `
		SELECT id, status, created_at
		FROM orders
		ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.Status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}

// SetStatus transitions an order to the given status.
func (r *OrderRepository) SetStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	ct, err := r.pool.Exec(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}

	return nil
}

// GetLine returns the cart line for (orderID, productID).
func (r *OrderRepository) GetLine(ctx context.Context, orderID, productID int64) (*domain.CartLine, error) {
	query := `
		SELECT id, order_id, product_id, quantity, created_at
		FROM cart_lines
		WHERE order_id = $1 AND product_id = $2`

	var l domain.CartLine
	err := r.pool.QueryRow(ctx, query, orderID, productID).Scan(
		&l.ID,
		&l.OrderID,
		&l.ProductID,
		&l.Quantity,
		&l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan cart line: %w", err)
	}

	return &l, nil
}

// ListLines returns all cart lines of an order in creation order.
func (r *OrderRepository) ListLines(ctx context.Context, orderID int64) ([]domain.CartLine, error) {
	query := `
		SELECT id, order_id, product_id, quantity, created_at
		FROM cart_lines
		WHERE order_id = $1
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	defer rows.Close()

	lines := []domain.CartLine{}
	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cart line row: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart line rows: %w", err)
	}

	return lines, nil
}

// IncrementLine adds 1 to the line quantity, creating the line with quantity 1
// when absent. A single upsert statement keeps the read-modify-write atomic.
func (r *OrderRepository) IncrementLine(ctx context.Context, orderID, productID int64) error {
	query := `
		INSERT INTO cart_lines (order_id, product_id, quantity)
		VALUES ($1, $2, 1)
		ON CONFLICT (order_id, product_id)
		DO UPDATE SET quantity = cart_lines.quantity + 1`

	if _, err := r.pool.Exec(ctx, query, orderID, productID); err != nil {
		return fmt.Errorf("increment cart line: %w", err)
	}

	return nil
}

// DecrementLine subtracts 1 from the line quantity, deleting the line at
// quantity 1. Both statements run in one transaction; an absent line matches
// neither and the call is a no-op.
func (r *OrderRepository) DecrementLine(ctx context.Context, orderID, productID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin decrement tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	deleteQuery := `
		DELETE FROM cart_lines
		WHERE order_id = $1 AND product_id = $2 AND quantity <= 1`

	ct, err := tx.Exec(ctx, deleteQuery, orderID, productID)
	if err != nil {
		return fmt.Errorf("delete cart line at quantity 1: %w", err)
	}

	if ct.RowsAffected() == 0 {
		updateQuery := `
			UPDATE cart_lines
			SET quantity = quantity - 1
			WHERE order_id = $1 AND product_id = $2`

		if _, err := tx.Exec(ctx, updateQuery, orderID, productID); err != nil {
			return fmt.Errorf("decrement cart line: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit decrement tx: %w", err)
	}

	return nil
}

// DeleteLine removes the line unconditionally. Idempotent.
func (r *OrderRepository) DeleteLine(ctx context.Context, orderID, productID int64) error {
	query := `DELETE FROM cart_lines WHERE order_id = $1 AND product_id = $2`

	if _, err := r.pool.Exec(ctx, query, orderID, productID); err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}

	return nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
