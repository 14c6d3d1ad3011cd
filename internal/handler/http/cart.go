package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/RobinsonKrusoe/intershop/internal/domain"
	"github.com/RobinsonKrusoe/intershop/internal/service"
	apperrors "github.com/RobinsonKrusoe/intershop/pkg/errors"
	"github.com/RobinsonKrusoe/intershop/pkg/httputil"
	"github.com/RobinsonKrusoe/intershop/pkg/validator"
)

// CartHandler handles HTTP requests for the active cart and past orders.
type CartHandler struct {
	cart   *service.CartService
	logger *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(cart *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		cart:   cart,
		logger: logger,
	}
}

// --- Request DTOs ---

// ChangeItemRequest is the JSON request body for a cart line mutation.
type ChangeItemRequest struct {
	Action string `json:"action" validate:"required"`
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.cart.GetCart(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// ChangeItem handles POST /api/v1/cart/items/{id}
func (h *CartHandler) ChangeItem(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req ChangeItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	action, ok := domain.ParseCartAction(req.Action)
	if !ok {
		err := apperrors.InvalidInput("action must be one of PLUS, MINUS, DELETE")
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	view, err := h.cart.ChangeQuantity(r.Context(), id, action)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// Checkout handles POST /api/v1/cart/checkout
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	view, err := h.cart.Checkout(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// ListOrders handles GET /api/v1/orders
func (h *CartHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	views, err := h.cart.ListOrders(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: views})
}

// GetOrder handles GET /api/v1/orders/{id}
func (h *CartHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	view, err := h.cart.GetOrder(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}
