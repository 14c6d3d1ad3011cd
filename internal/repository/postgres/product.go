package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/RobinsonKrusoe/intershop/internal/domain"
	"github.com/RobinsonKrusoe/intershop/pkg/database"
	apperrors "github.com/RobinsonKrusoe/intershop/pkg/errors"
)

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create inserts a new product into the database and assigns its id.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (title, description, image, price, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		p.Title,
		p.Description,
		p.Image,
		p.Price,
		p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT id, title, description, image, price, created_at
		FROM products
		WHERE id = $1`

	var p domain.Product
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.Image,
		&p.Price,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	return &p, nil
}

// ListIDs returns one page of product ids in the requested ordering.
func (r *ProductRepository) ListIDs(ctx context.Context, sort domain.SortKind, offset, limit int) ([]int64, error) {
	query := fmt.Sprintf(`
		SELECT id
		FROM products
		%s
		LIMIT $1 OFFSET $2`,
		orderClause(sort),
	)

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list product ids: %w", err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

// SearchIDs returns one page of matching product ids in the requested ordering.
func (r *ProductRepository) SearchIDs(ctx context.Context, term string, sort domain.SortKind, offset, limit int) ([]int64, error) {
	query := fmt.Sprintf(`
		SELECT id
		FROM products
		WHERE title ILIKE '%%' || $1 || '%%'
		%s
		LIMIT $2 OFFSET $3`,
		orderClause(sort),
	)

	rows, err := r.pool.Query(ctx, query, term, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("search product ids: %w", err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

// CountAll returns the total number of products.
func (r *ProductRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

// CountBySearch returns the number of products matching the search term.
func (r *ProductRepository) CountBySearch(ctx context.Context, term string) (int, error) {
	query := `SELECT count(*) FROM products WHERE title ILIKE '%' || $1 || '%'`

	var count int
	if err := r.pool.QueryRow(ctx, query, term).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products by search: %w", err)
	}
	return count, nil
}

// orderClause maps a sort kind to its ORDER BY clause. Natural order follows
// creation order via the serial id.
func orderClause(sort domain.SortKind) string {
	switch sort {
	case domain.SortTitle:
		return "ORDER BY title"
	case domain.SortPrice:
		return "ORDER BY price"
	default:
		return "ORDER BY id"
	}
}

func scanIDs(rows pgx.Rows) ([]int64, error) {
	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product id rows: %w", err)
	}
	return ids, nil
}
