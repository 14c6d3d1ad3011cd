package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/RobinsonKrusoe/intershop/internal/domain"
	"github.com/RobinsonKrusoe/intershop/internal/event"
	"github.com/RobinsonKrusoe/intershop/internal/repository"
	apperrors "github.com/RobinsonKrusoe/intershop/pkg/errors"
	"github.com/RobinsonKrusoe/intershop/pkg/logger"
)

// ProductFinder resolves products for cart lines. Satisfied by CatalogService,
// so line lookups ride the same cache-aside path as catalog reads.
type ProductFinder interface {
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
}

// CartService manages the single active order and its cart lines.
type CartService struct {
	orders   repository.OrderRepository
	products ProductFinder
	events   event.Publisher
	logger   *slog.Logger
}

// NewCartService creates the cart service.
func NewCartService(orders repository.OrderRepository, products ProductFinder, events event.Publisher, log *slog.Logger) *CartService {
	return &CartService{
		orders:   orders,
		products: products,
		events:   events,
		logger:   log,
	}
}

// ChangeQuantity applies one cart mutation against the active order and
// returns the resulting cart view. PLUS verifies the product exists before
// touching the line; MINUS and DELETE on absent lines are no-ops.
func (s *CartService) ChangeQuantity(ctx context.Context, productID int64, action domain.CartAction) (*domain.OrderView, error) {
	log := logger.WithContext(ctx, s.logger)

	order, err := s.orders.GetOrCreateActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve active order: %w", err)
	}

	switch action {
	case domain.ActionPlus:
		if _, err := s.products.FindByID(ctx, productID); err != nil {
			return nil, err
		}
		if err := s.orders.IncrementLine(ctx, order.ID, productID); err != nil {
			return nil, err
		}
	case domain.ActionMinus:
		if err := s.orders.DecrementLine(ctx, order.ID, productID); err != nil {
			return nil, err
		}
	case domain.ActionDelete:
		if err := s.orders.DeleteLine(ctx, order.ID, productID); err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown cart action %q", action))
	}

	if err := s.events.CartUpdated(ctx, order.ID, productID, action); err != nil {
		log.WarnContext(ctx, "cart.updated publish failed",
			slog.Int64("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	log.InfoContext(ctx, "cart line changed",
		slog.Int64("order_id", order.ID),
		slog.Int64("product_id", productID),
		slog.String("action", string(action)),
	)

	return s.view(ctx, order)
}

// GetCart returns the active order view, creating the order when none exists.
func (s *CartService) GetCart(ctx context.Context) (*domain.OrderView, error) {
	order, err := s.orders.GetOrCreateActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve active order: %w", err)
	}
	return s.view(ctx, order)
}

// GetItem returns one product decorated with its quantity in the active cart.
// The quantity is zero when the product is not in the cart or no cart exists;
// looking at an item never creates an order.
func (s *CartService) GetItem(ctx context.Context, productID int64) (*domain.ProductView, error) {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	quantities, err := s.ActiveQuantities(ctx)
	if err != nil {
		return nil, err
	}

	view := p.View(quantities[productID])
	return &view, nil
}

// GetOrder returns the view of one order of any status.
func (s *CartService) GetOrder(ctx context.Context, id int64) (*domain.OrderView, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, order)
}

// ListOrders returns views of all orders, most recent first.
func (s *CartService) ListOrders(ctx context.Context) ([]domain.OrderView, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]domain.OrderView, 0, len(orders))
	for i := range orders {
		v, err := s.view(ctx, &orders[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}

	return views, nil
}

// Checkout finalizes the active order, transitioning it to BOUGHT. An empty
// cart checks out too; the next cart access starts a fresh order.
func (s *CartService) Checkout(ctx context.Context) (*domain.OrderView, error) {
	log := logger.WithContext(ctx, s.logger)

	order, err := s.orders.GetOrCreateActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve active order: %w", err)
	}

	view, err := s.view(ctx, order)
	if err != nil {
		return nil, err
	}

	if err := s.orders.SetStatus(ctx, order.ID, domain.StatusBought); err != nil {
		return nil, fmt.Errorf("finalize order: %w", err)
	}
	view.Status = domain.StatusBought

	if err := s.events.OrderPlaced(ctx, view); err != nil {
		log.WarnContext(ctx, "order.placed publish failed",
			slog.Int64("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	log.InfoContext(ctx, "order placed",
		slog.Int64("order_id", order.ID),
		slog.Int64("total", view.Total),
		slog.Int("lines", len(view.Lines)),
	)

	return view, nil
}

// ActiveQuantities returns the active cart's product quantities keyed by
// product id. When no order is active it returns an empty map without
// creating one.
func (s *CartService) ActiveQuantities(ctx context.Context) (map[int64]int, error) {
	order, err := s.orders.GetActive(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return map[int64]int{}, nil
		}
		return nil, fmt.Errorf("resolve active order: %w", err)
	}

	lines, err := s.orders.ListLines(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}

	quantities := make(map[int64]int, len(lines))
	for _, l := range lines {
		quantities[l.ProductID] = l.Quantity
	}

	return quantities, nil
}

// view resolves an order's lines against the catalog and assembles the view.
func (s *CartService) view(ctx context.Context, order *domain.Order) (*domain.OrderView, error) {
	lines, err := s.orders.ListLines(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}

	orderLines := make([]domain.OrderLine, 0, len(lines))
	for _, l := range lines {
		p, err := s.products.FindByID(ctx, l.ProductID)
		if err != nil {
			return nil, fmt.Errorf("resolve line product %d: %w", l.ProductID, err)
		}
		orderLines = append(orderLines, domain.OrderLine{
			ProductID: p.ID,
			Title:     p.Title,
			Price:     p.Price,
			Quantity:  l.Quantity,
		})
	}

	return domain.NewOrderView(order, orderLines), nil
}
