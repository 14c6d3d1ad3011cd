package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/RobinsonKrusoe/intershop/internal/domain"
	"github.com/RobinsonKrusoe/intershop/internal/service"
	apperrors "github.com/RobinsonKrusoe/intershop/pkg/errors"
	"github.com/RobinsonKrusoe/intershop/pkg/health"
)

// ============================================================================
// Mock repositories
// ============================================================================

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Create(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) ListIDs(ctx context.Context, sort domain.SortKind, offset, limit int) ([]int64, error) {
	args := m.Called(ctx, sort, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *mockProductRepository) SearchIDs(ctx context.Context, term string, sort domain.SortKind, offset, limit int) ([]int64, error) {
	args := m.Called(ctx, term, sort, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *mockProductRepository) CountAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockProductRepository) CountBySearch(ctx context.Context, term string) (int, error) {
	args := m.Called(ctx, term)
	return args.Int(0), args.Error(1)
}

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) GetOrCreateActive(ctx context.Context) (*domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) GetActive(ctx context.Context) (*domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockOrderRepository) SetStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockOrderRepository) GetLine(ctx context.Context, orderID, productID int64) (*domain.CartLine, error) {
	args := m.Called(ctx, orderID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CartLine), args.Error(1)
}

func (m *mockOrderRepository) ListLines(ctx context.Context, orderID int64) ([]domain.CartLine, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CartLine), args.Error(1)
}

func (m *mockOrderRepository) IncrementLine(ctx context.Context, orderID, productID int64) error {
	args := m.Called(ctx, orderID, productID)
	return args.Error(0)
}

func (m *mockOrderRepository) DecrementLine(ctx context.Context, orderID, productID int64) error {
	args := m.Called(ctx, orderID, productID)
	return args.Error(0)
}

func (m *mockOrderRepository) DeleteLine(ctx context.Context, orderID, productID int64) error {
	args := m.Called(ctx, orderID, productID)
	return args.Error(0)
}

// ============================================================================
// Test doubles
// ============================================================================

// passthroughCache never hits, so service calls reach the mocked repository.
type passthroughCache struct{}

func (passthroughCache) GetProduct(ctx context.Context, id int64) (*domain.Product, bool, error) {
	return nil, false, nil
}

func (passthroughCache) SetProduct(ctx context.Context, p *domain.Product) error { return nil }

func (passthroughCache) GetSearchIDs(ctx context.Context, term string, sort domain.SortKind, page, perPage int) ([]int64, bool, error) {
	return nil, false, nil
}

func (passthroughCache) PushSearchID(ctx context.Context, term string, sort domain.SortKind, page, perPage int, id int64) error {
	return nil
}

func (passthroughCache) GetCount(ctx context.Context, term string) (int, bool, error) {
	return 0, false, nil
}

func (passthroughCache) SetCount(ctx context.Context, term string, count int) error { return nil }

func (passthroughCache) FlushSearch(ctx context.Context) error { return nil }

type stubPublisher struct{}

func (stubPublisher) ProductCreated(ctx context.Context, p *domain.Product) error { return nil }

func (stubPublisher) CartUpdated(ctx context.Context, orderID, productID int64, action domain.CartAction) error {
	return nil
}

func (stubPublisher) OrderPlaced(ctx context.Context, view *domain.OrderView) error { return nil }

// ============================================================================
// Test helpers
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// setupServer wires mocked repositories into the production router.
func setupServer(products *mockProductRepository, orders *mockOrderRepository) http.Handler {
	logger := testLogger()
	catalogSvc := service.NewCatalogService(products, passthroughCache{}, stubPublisher{}, logger)
	cartSvc := service.NewCartService(orders, catalogSvc, stubPublisher{}, logger)
	browseSvc := service.NewBrowseService(catalogSvc, cartSvc, logger)
	return NewRouter(browseSvc, catalogSvc, cartSvc, health.NewHandler(), logger)
}

func doRequest(t *testing.T, srv http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func widget() *domain.Product {
	return &domain.Product{
		ID:        1,
		Title:     "Widget",
		Price:     250,
		Image:     []byte("\x89PNG\r\n"),
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// ============================================================================
// Tests
// ============================================================================

func TestListItems_OverlaysCartQuantities(t *testing.T) {
	products := new(mockProductRepository)
	orders := new(mockOrderRepository)
	srv := setupServer(products, orders)

	products.On("ListIDs", mock.Anything, domain.SortNone, 0, 10).Return([]int64{1}, nil)
	products.On("GetByID", mock.Anything, int64(1)).Return(widget(), nil)
	products.On("CountAll", mock.Anything).Return(1, nil)
	orders.On("GetActive", mock.Anything).Return(&domain.Order{ID: 10, Status: domain.StatusNew}, nil)
	orders.On("ListLines", mock.Anything, int64(10)).Return([]domain.CartLine{
		{OrderID: 10, ProductID: 1, Quantity: 3},
	}, nil)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/items", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Data       []domain.ProductView `json:"data"`
			TotalCount int                  `json:"total_count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Data, 1)
	assert.Equal(t, 3, resp.Data.Data[0].Quantity)
	assert.Equal(t, 1, resp.Data.TotalCount)
}

func TestListItems_SearchAndSort(t *testing.T) {
	products := new(mockProductRepository)
	orders := new(mockOrderRepository)
	srv := setupServer(products, orders)

	products.On("SearchIDs", mock.Anything, "widget", domain.SortTitle, 0, 5).Return([]int64{1}, nil)
	products.On("GetByID", mock.Anything, int64(1)).Return(widget(), nil)
	products.On("CountBySearch", mock.Anything, "widget").Return(1, nil)
	orders.On("GetActive", mock.Anything).Return(nil, apperrors.ErrNotFound)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/items?search=widget&sort=ALPHA&page=1&per_page=5", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	products.AssertExpectations(t)
}

func TestListItems_InvalidSort(t *testing.T) {
	products := new(mockProductRepository)
	orders := new(mockOrderRepository)
	srv := setupServer(products, orders)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/items?sort=BOGUS", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_INPUT")
	products.AssertNotCalled(t, "ListIDs")
}

func TestCreateItem_Success(t *testing.T) {
	products := new(mockProductRepository)
	orders := new(mockOrderRepository)
	srv := setupServer(products, orders)

	products.On("Create", mock.Anything, mock.AnythingOfType("*domain.Product")).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Product).ID = 5
	}).Return(nil)

	body, _ := json.Marshal(map[string]any{"title": "Widget", "price": 250})
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/items", body)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data domain.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(5), resp.Data.ID)
}

func TestCreateItem_ValidationFailure(t *testing.T) {
	products := new(mockProductRepository)
	orders := new(mockOrderRepository)
	srv := setupServer(products, orders)

	body, _ := json.Marshal(map[string]any{"title": "", "price": 0})
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/items", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	products.AssertNotCalled(t, "Create")
}

func TestCreateItem_MalformedBody(t *testing.T) {
	products := new(mockProductRepository)
	orders := new(mockOrderRepository)
	srv := setupServer(products, orders)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/items", []byte("{not json"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetItem_Success(t *testing.T) {
	products := new(mockProductRepository)
	orders := new(mockOrderRepository)
	srv := setupServer(products, orders)

	products.On("GetByID", mock.Anything, int64(1)).Return(widget(), nil)
	orders.On("GetActive", mock.Anything).Return(&domain.Order{ID: 10, Status: domain.StatusNew}, nil)
	orders.On("ListLines", mock.Anything, int64(10)).Return([]domain.CartLine{
		{OrderID: 10, ProductID: 1, Quantity: 2},
	}, nil)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/items/1", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.ProductView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Widget", resp.Data.Title)
	assert.Equal(t, 2, resp.Data.Quantity)
	// The image payload never leaks through JSON.
	assert.NotContains(t, rec.Body.String(), "image")
}

func TestGetItem_NoActiveCart(t *testing.T) {
	products := new(mockProductRepository)
	orders := new(mockOrderRepository)
	srv := setupServer(products, orders)

	products.On("GetByID", mock.Anything, int64(1)).Return(widget(), nil)
	orders.On("GetActive", mock.Anything).Return(nil, apperrors.ErrNotFound)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/items/1", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.ProductView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Zero(t, resp.Data.Quantity)
	orders.AssertNotCalled(t, "GetOrCreateActive")
}

func TestGetItem_NotFound(t *testing.T) {
	products := new(mockProductRepository)
	orders := new(mockOrderRepository)
	srv := setupServer(products, orders)

	products.On("GetByID", mock.Anything, int64(99)).Return(nil, apperrors.ErrNotFound)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/items/99", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestGetItem_InvalidID(t *testing.T) {
	products := new(mockProductRepository)
	orders := new(mockOrderRepository)
	srv := setupServer(products, orders)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/items/abc", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_PARAMETER")
}

func TestGetItemImage(t *testing.T) {
	products := new(mockProductRepository)
	orders := new(mockOrderRepository)
	srv := setupServer(products, orders)

	products.On("GetByID", mock.Anything, int64(1)).Return(widget(), nil)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/items/1/image", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []byte("\x89PNG\r\n"), rec.Body.Bytes())
}

func TestGetItemImage_NoImage(t *testing.T) {
	products := new(mockProductRepository)
	orders := new(mockOrderRepository)
	srv := setupServer(products, orders)

	bare := widget()
	bare.Image = nil
	products.On("GetByID", mock.Anything, int64(1)).Return(bare, nil)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/items/1/image", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
