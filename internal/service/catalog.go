package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/RobinsonKrusoe/intershop/internal/domain"
	"github.com/RobinsonKrusoe/intershop/internal/event"
	"github.com/RobinsonKrusoe/intershop/internal/repository"
	apperrors "github.com/RobinsonKrusoe/intershop/pkg/errors"
	"github.com/RobinsonKrusoe/intershop/pkg/logger"
)

// CatalogCache is the read-through cache the catalog service consults before
// its repository. Lookups report (value, found, err); a cache error degrades
// to a miss and never fails the read.
type CatalogCache interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, bool, error)
	SetProduct(ctx context.Context, p *domain.Product) error
	GetSearchIDs(ctx context.Context, term string, sort domain.SortKind, page, perPage int) ([]int64, bool, error)
	PushSearchID(ctx context.Context, term string, sort domain.SortKind, page, perPage int, id int64) error
	GetCount(ctx context.Context, term string) (int, bool, error)
	SetCount(ctx context.Context, term string, count int) error
	FlushSearch(ctx context.Context) error
}

// CreateProductInput carries a new catalog entry. Price is in minor currency
// units.
type CreateProductInput struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=4000"`
	Image       []byte `json:"image,omitempty"`
	Price       int64  `json:"price" validate:"required,gt=0"`
}

// CatalogService serves catalog reads through the cache-aside path and keeps
// the cache coherent on writes.
type CatalogService struct {
	repo   repository.ProductRepository
	cache  CatalogCache
	events event.Publisher
	logger *slog.Logger
}

// NewCatalogService creates the catalog service.
func NewCatalogService(repo repository.ProductRepository, cache CatalogCache, events event.Publisher, log *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:   repo,
		cache:  cache,
		events: events,
		logger: log,
	}
}

// FindByID returns one product, serving from the cache when possible and
// populating it best-effort after a store read.
func (s *CatalogService) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	log := logger.WithContext(ctx, s.logger)

	cached, found, err := s.cache.GetProduct(ctx, id)
	if err != nil {
		log.WarnContext(ctx, "product cache read failed",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
	}
	if found {
		return cached, nil
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	if err := s.cache.SetProduct(ctx, p); err != nil {
		log.WarnContext(ctx, "product cache populate failed",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	return p, nil
}

// Search returns one page of products matching the term in the requested
// ordering. The page's id list is cached; products resolve through FindByID so
// the item namespace warms as a side effect.
func (s *CatalogService) Search(ctx context.Context, term string, sort domain.SortKind, page, perPage, offset int) ([]domain.Product, error) {
	log := logger.WithContext(ctx, s.logger)

	ids, found, err := s.cache.GetSearchIDs(ctx, term, sort, page, perPage)
	if err != nil {
		log.WarnContext(ctx, "search cache read failed",
			slog.String("term", term),
			slog.String("error", err.Error()),
		)
		found = false
	}

	if !found {
		if term == "" {
			ids, err = s.repo.ListIDs(ctx, sort, offset, perPage)
		} else {
			ids, err = s.repo.SearchIDs(ctx, term, sort, offset, perPage)
		}
		if err != nil {
			return nil, fmt.Errorf("query product ids: %w", err)
		}
	}

	products := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		p, err := s.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)

		if !found {
			if err := s.cache.PushSearchID(ctx, term, sort, page, perPage, id); err != nil {
				log.WarnContext(ctx, "search cache populate failed",
					slog.String("term", term),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	return products, nil
}

// Count returns the total number of products matching the term, cached per
// normalized term.
func (s *CatalogService) Count(ctx context.Context, term string) (int, error) {
	log := logger.WithContext(ctx, s.logger)

	count, found, err := s.cache.GetCount(ctx, term)
	if err != nil {
		log.WarnContext(ctx, "count cache read failed",
			slog.String("term", term),
			slog.String("error", err.Error()),
		)
	}
	if found {
		return count, nil
	}

	if term == "" {
		count, err = s.repo.CountAll(ctx)
	} else {
		count, err = s.repo.CountBySearch(ctx, term)
	}
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}

	if err := s.cache.SetCount(ctx, term, count); err != nil {
		log.WarnContext(ctx, "count cache populate failed",
			slog.String("term", term),
			slog.String("error", err.Error()),
		)
	}

	return count, nil
}

// Create persists a new product, then flushes the search and count namespaces
// so stale result pages cannot survive the write. Cached product snapshots are
// untouched: an existing product never changes.
func (s *CatalogService) Create(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	log := logger.WithContext(ctx, s.logger)

	p := &domain.Product{
		Title:       in.Title,
		Description: in.Description,
		Image:       in.Image,
		Price:       in.Price,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	if err := s.cache.FlushSearch(ctx); err != nil {
		log.WarnContext(ctx, "search cache flush failed, stale pages may be served",
			slog.Int64("product_id", p.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.events.ProductCreated(ctx, p); err != nil {
		log.WarnContext(ctx, "product.created publish failed",
			slog.Int64("product_id", p.ID),
			slog.String("error", err.Error()),
		)
	}

	log.InfoContext(ctx, "product created",
		slog.Int64("product_id", p.ID),
		slog.String("title", p.Title),
	)

	return p, nil
}

// Image returns the raw image payload of a product.
func (s *CatalogService) Image(ctx context.Context, id int64) ([]byte, error) {
	p, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if len(p.Image) == 0 {
		return nil, apperrors.NotFound("product image", id)
	}

	return p.Image, nil
}
