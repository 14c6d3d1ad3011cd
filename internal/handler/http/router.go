package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RobinsonKrusoe/intershop/internal/service"
	"github.com/RobinsonKrusoe/intershop/pkg/health"
	"github.com/RobinsonKrusoe/intershop/pkg/middleware"
)

// NewRouter creates a chi router with all shop routes registered.
func NewRouter(
	browse *service.BrowseService,
	catalog *service.CatalogService,
	cart *service.CartService,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("intershop"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	catalogHandler := NewCatalogHandler(browse, catalog, cart, logger)
	cartHandler := NewCartHandler(cart, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/items", func(r chi.Router) {
			r.Get("/", catalogHandler.ListItems)
			r.Post("/", catalogHandler.CreateItem)
			r.Get("/{id}", catalogHandler.GetItem)
			r.Get("/{id}/image", catalogHandler.GetItemImage)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items/{id}", cartHandler.ChangeItem)
			r.Post("/checkout", cartHandler.Checkout)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", cartHandler.ListOrders)
			r.Get("/{id}", cartHandler.GetOrder)
		})
	})

	return r
}
