package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RobinsonKrusoe/intershop/internal/domain"
)

func newTestCache(t *testing.T) (*CatalogCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCatalogCache(client), mr
}

func TestCatalogCache_ProductRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	p := &domain.Product{
		ID:          7,
		Title:       "Widget",
		Description: "A widget",
		Image:       []byte{0x89, 0x50},
		Price:       250,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}

	_, found, err := c.GetProduct(ctx, 7)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.SetProduct(ctx, p))

	got, found, err := c.GetProduct(ctx, 7)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.Title, got.Title)
	assert.Equal(t, p.Image, got.Image)
	assert.Equal(t, p.Price, got.Price)
	assert.Equal(t, p.CreatedAt, got.CreatedAt)
}

func TestCatalogCache_SearchIDsPreserveOrder(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, found, err := c.GetSearchIDs(ctx, "widget", domain.SortTitle, 1, 10)
	require.NoError(t, err)
	assert.False(t, found)

	for _, id := range []int64{3, 1, 2} {
		require.NoError(t, c.PushSearchID(ctx, "widget", domain.SortTitle, 1, 10, id))
	}

	ids, found, err := c.GetSearchIDs(ctx, "widget", domain.SortTitle, 1, 10)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []int64{3, 1, 2}, ids)

	// A different page is a separate key.
	_, found, err = c.GetSearchIDs(ctx, "widget", domain.SortTitle, 2, 10)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCatalogCache_CountRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, found, err := c.GetCount(ctx, "widget")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.SetCount(ctx, "widget", 42))

	count, found, err := c.GetCount(ctx, "widget")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 42, count)
}

func TestCatalogCache_FlushSearchKeepsProducts(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetProduct(ctx, &domain.Product{ID: 1, Title: "Widget"}))
	require.NoError(t, c.PushSearchID(ctx, "widget", domain.SortNone, 1, 10, 1))
	require.NoError(t, c.PushSearchID(ctx, "", domain.SortPrice, 2, 5, 1))
	require.NoError(t, c.SetCount(ctx, "widget", 1))
	require.NoError(t, c.SetCount(ctx, "", 1))

	require.NoError(t, c.FlushSearch(ctx))

	assert.True(t, mr.Exists("item:1"))

	_, found, err := c.GetSearchIDs(ctx, "widget", domain.SortNone, 1, 10)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = c.GetCount(ctx, "widget")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNormalizeTerm(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "NO_SEARCH"},
		{"widget", "WIDGET"},
		{"red shoe", "RED+SHOE"},
		{"a:b/c", "A%3AB%2FC"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeTerm(tt.in), "input %q", tt.in)
	}
}

func TestSearchKey(t *testing.T) {
	assert.Equal(t, "search:ALPHA:WIDGET:1:10", searchKey("widget", domain.SortTitle, 1, 10))
	assert.Equal(t, "search:NO:NO_SEARCH:2:5", searchKey("", domain.SortNone, 2, 5))
	assert.Equal(t, "count:NO_SEARCH", countKey(""))
}
