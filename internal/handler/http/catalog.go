package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/RobinsonKrusoe/intershop/internal/domain"
	"github.com/RobinsonKrusoe/intershop/internal/service"
	apperrors "github.com/RobinsonKrusoe/intershop/pkg/errors"
	"github.com/RobinsonKrusoe/intershop/pkg/httputil"
	"github.com/RobinsonKrusoe/intershop/pkg/pagination"
	"github.com/RobinsonKrusoe/intershop/pkg/validator"
)

// CatalogHandler handles HTTP requests for catalog endpoints.
type CatalogHandler struct {
	browse  *service.BrowseService
	catalog *service.CatalogService
	cart    *service.CartService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(browse *service.BrowseService, catalog *service.CatalogService, cart *service.CartService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		browse:  browse,
		catalog: catalog,
		cart:    cart,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateItemRequest is the JSON request body for adding a catalog item.
// Price is in minor currency units; the image payload is base64 in JSON.
type CreateItemRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=4000"`
	Image       []byte `json:"image,omitempty"`
	Price       int64  `json:"price" validate:"required,gt=0"`
}

// --- Handlers ---

// ListItems handles GET /api/v1/items
func (h *CatalogHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	sort, ok := domain.ParseSortKind(r.URL.Query().Get("sort"))
	if !ok {
		err := apperrors.InvalidInput("sort must be one of NO, ALPHA, PRICE")
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	term := r.URL.Query().Get("search")
	params := pagination.FromRequest(r)

	result, err := h.browse.ListPage(r.Context(), term, sort, params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// CreateItem handles POST /api/v1/items
func (h *CatalogHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.catalog.Create(r.Context(), service.CreateProductInput{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Price:       req.Price,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: product})
}

// GetItem handles GET /api/v1/items/{id}. The returned view carries the
// viewer's current cart quantity for the item.
func (h *CatalogHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	view, err := h.cart.GetItem(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// GetItemImage handles GET /api/v1/items/{id}/image
func (h *CatalogHandler) GetItemImage(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	img, err := h.catalog.Image(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(img))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}
