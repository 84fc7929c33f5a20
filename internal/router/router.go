package router

import (
	"net/http"

	"product-catalog/internal/handler"
	"product-catalog/internal/metrics"
	"product-catalog/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Product *handler.ProductHandler
	Form    *handler.FormHandler
	Health  *handler.HealthHandler
}

// New creates a new HTTP router with all routes and middleware configured.
// A nil limiter disables rate limiting.
func New(h Handlers, limiter *middleware.RateLimiter, logger zerolog.Logger) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = handler.NotFound(logger)
	r.MethodNotAllowedHandler = handler.MethodNotAllowed(logger)

	r.HandleFunc("/health", h.Health.Check).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/products", h.Product.List).Methods(http.MethodGet)
	api.HandleFunc("/products", h.Product.Create).Methods(http.MethodPost)

	r.HandleFunc("/product/create", h.Form.Create).Methods(http.MethodGet)
	r.HandleFunc("/product/store", h.Form.Store).Methods(http.MethodPost)

	// Apply middleware in order: RequestID -> Recovery -> Logging -> Metrics -> CORS -> RateLimit
	var handler http.Handler = r
	if limiter != nil {
		handler = limiter.Handler(handler)
	}
	handler = middleware.CORS(handler)
	handler = metrics.InstrumentHandler(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.RequestID(handler)

	return handler
}
