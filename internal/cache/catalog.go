package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"github.com/RobinsonKrusoe/intershop/internal/domain"
)

// Key namespaces. Product snapshots survive catalog writes; the search and
// count namespaces are flushed on every write.
const (
	productKeyPrefix = "item:"
	searchKeyPrefix  = "search:"
	countKeyPrefix   = "count:"

	// noSearchSentinel stands in for an empty search term in cache keys.
	noSearchSentinel = "NO_SEARCH"
)

var (
	cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_hits_total",
			Help: "Total catalog cache hits by namespace",
		},
		[]string{"namespace"},
	)

	cacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_misses_total",
			Help: "Total catalog cache misses by namespace",
		},
		[]string{"namespace"},
	)
)

// CatalogCache stores product snapshots, paged search-result id lists, and
// match counts in Redis. Entries have no TTL; consistency relies on the
// flush-on-write invalidation in the catalog service.
type CatalogCache struct {
	client *redis.Client
}

// NewCatalogCache creates a Redis-backed catalog cache.
func NewCatalogCache(client *redis.Client) *CatalogCache {
	return &CatalogCache{client: client}
}

// GetProduct returns the cached product snapshot, reporting a miss when the
// key is absent.
func (c *CatalogCache) GetProduct(ctx context.Context, id int64) (*domain.Product, bool, error) {
	data, err := c.client.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			cacheMisses.WithLabelValues("item").Inc()
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get product: %w", err)
	}

	var p cachedProduct
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached product: %w", err)
	}

	cacheHits.WithLabelValues("item").Inc()
	return p.toDomain(), true, nil
}

// SetProduct stores a product snapshot.
func (c *CatalogCache) SetProduct(ctx context.Context, p *domain.Product) error {
	data, err := json.Marshal(newCachedProduct(p))
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}

	if err := c.client.Set(ctx, productKey(p.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set product: %w", err)
	}

	return nil
}

// GetSearchIDs returns the cached ordered id list for one result page. An
// absent or empty list is a miss.
func (c *CatalogCache) GetSearchIDs(ctx context.Context, term string, sort domain.SortKind, page, perPage int) ([]int64, bool, error) {
	values, err := c.client.LRange(ctx, searchKey(term, sort, page, perPage), 0, -1).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis range search ids: %w", err)
	}

	if len(values) == 0 {
		cacheMisses.WithLabelValues("search").Inc()
		return nil, false, nil
	}

	ids := make([]int64, len(values))
	for i, v := range values {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, false, fmt.Errorf("parse cached search id %q: %w", v, err)
		}
		ids[i] = id
	}

	cacheHits.WithLabelValues("search").Inc()
	return ids, true, nil
}

// PushSearchID appends one id to the result page list, preserving store order.
func (c *CatalogCache) PushSearchID(ctx context.Context, term string, sort domain.SortKind, page, perPage int, id int64) error {
	key := searchKey(term, sort, page, perPage)
	if err := c.client.RPush(ctx, key, strconv.FormatInt(id, 10)).Err(); err != nil {
		return fmt.Errorf("redis push search id: %w", err)
	}
	return nil
}

// GetCount returns the cached total match count for a search term.
func (c *CatalogCache) GetCount(ctx context.Context, term string) (int, bool, error) {
	value, err := c.client.Get(ctx, countKey(term)).Result()
	if err != nil {
		if err == redis.Nil {
			cacheMisses.WithLabelValues("count").Inc()
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("redis get count: %w", err)
	}

	count, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("parse cached count %q: %w", value, err)
	}

	cacheHits.WithLabelValues("count").Inc()
	return count, true, nil
}

// SetCount stores the total match count for a search term.
func (c *CatalogCache) SetCount(ctx context.Context, term string, count int) error {
	if err := c.client.Set(ctx, countKey(term), strconv.Itoa(count), 0).Err(); err != nil {
		return fmt.Errorf("redis set count: %w", err)
	}
	return nil
}

// FlushSearch deletes every key in the search and count namespaces. Product
// snapshots stay valid and are left untouched.
func (c *CatalogCache) FlushSearch(ctx context.Context) error {
	for _, pattern := range []string{searchKeyPrefix + "*", countKeyPrefix + "*"} {
		iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()

		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("redis scan %s: %w", pattern, err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis delete %s keys: %w", pattern, err)
			}
		}
	}

	return nil
}

// Ping verifies Redis connectivity for health checks.
func (c *CatalogCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func productKey(id int64) string {
	return productKeyPrefix + strconv.FormatInt(id, 10)
}

func searchKey(term string, sort domain.SortKind, page, perPage int) string {
	return fmt.Sprintf("%s%s:%s:%d:%d", searchKeyPrefix, sort, normalizeTerm(term), page, perPage)
}

func countKey(term string) string {
	return countKeyPrefix + normalizeTerm(term)
}

// normalizeTerm upper-cases and URL-escapes the search term so arbitrary user
// input produces a safe, canonical key segment.
func normalizeTerm(term string) string {
	if term == "" {
		return noSearchSentinel
	}
	return url.QueryEscape(strings.ToUpper(term))
}

// cachedProduct is the JSON shape stored in Redis. Unlike the API view it
// carries the image payload so cache hits can serve images too.
type cachedProduct struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       []byte `json:"image,omitempty"`
	Price       int64  `json:"price"`
	CreatedAt   int64  `json:"created_at_unix"`
}

func newCachedProduct(p *domain.Product) cachedProduct {
	return cachedProduct{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Image:       p.Image,
		Price:       p.Price,
		CreatedAt:   p.CreatedAt.UnixMicro(),
	}
}

func (p *cachedProduct) toDomain() *domain.Product {
	return &domain.Product{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Image:       p.Image,
		Price:       p.Price,
		CreatedAt:   time.UnixMicro(p.CreatedAt).UTC(),
	}
}
