package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/RobinsonKrusoe/intershop/internal/domain"
	apperrors "github.com/RobinsonKrusoe/intershop/pkg/errors"
	"github.com/RobinsonKrusoe/intershop/pkg/pagination"
)

// ProductSearcher is the catalog surface the browse orchestrator needs.
// Satisfied by CatalogService.
type ProductSearcher interface {
	Search(ctx context.Context, term string, sort domain.SortKind, page, perPage, offset int) ([]domain.Product, error)
	Count(ctx context.Context, term string) (int, error)
}

// CartReader exposes the active cart's quantities without creating an order.
// Satisfied by CartService.
type CartReader interface {
	ActiveQuantities(ctx context.Context) (map[int64]int, error)
}

// BrowseService assembles the storefront listing: one catalog page overlaid
// with the viewer's current cart quantities.
type BrowseService struct {
	catalog ProductSearcher
	cart    CartReader
	logger  *slog.Logger
}

// NewBrowseService creates the browse orchestrator.
func NewBrowseService(catalog ProductSearcher, cart CartReader, log *slog.Logger) *BrowseService {
	return &BrowseService{
		catalog: catalog,
		cart:    cart,
		logger:  log,
	}
}

// ListPage returns one storefront page. The catalog page, the match count,
// and the cart quantities are fetched concurrently, then each product is
// decorated with its in-cart quantity.
func (s *BrowseService) ListPage(ctx context.Context, term string, sort domain.SortKind, params pagination.Params) (pagination.Result[domain.ProductView], error) {
	var empty pagination.Result[domain.ProductView]

	if params.Page < 1 {
		return empty, apperrors.InvalidInput(fmt.Sprintf("page must be positive, got %d", params.Page))
	}
	if params.PerPage < 1 {
		return empty, apperrors.InvalidInput(fmt.Sprintf("per_page must be positive, got %d", params.PerPage))
	}

	var (
		products   []domain.Product
		total      int
		quantities map[int64]int
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		products, err = s.catalog.Search(gctx, term, sort, params.Page, params.PerPage, params.Offset)
		return err
	})

	g.Go(func() error {
		var err error
		total, err = s.catalog.Count(gctx, term)
		return err
	})

	g.Go(func() error {
		var err error
		quantities, err = s.cart.ActiveQuantities(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return empty, err
	}

	views := make([]domain.ProductView, 0, len(products))
	for i := range products {
		views = append(views, products[i].View(quantities[products[i].ID]))
	}

	return pagination.NewResult(views, total, params), nil
}
