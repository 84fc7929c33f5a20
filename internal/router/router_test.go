package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"product-catalog/internal/config"
	"product-catalog/internal/handler"
	"product-catalog/internal/middleware"
	"product-catalog/internal/model"
	"product-catalog/internal/session"
	"product-catalog/internal/validation"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryService is a minimal in-memory ProductService.
type memoryService struct {
	products []model.Product
}

func (s *memoryService) List(context.Context) ([]model.Product, error) {
	out := make([]model.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

func (s *memoryService) Create(_ context.Context, input model.NewProduct) (*model.Product, error) {
	now := time.Now().UTC()
	p := model.Product{
		ID:        int64(len(s.products) + 1),
		Name:      input.Name,
		Price:     input.Price,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.products = append(s.products, p)
	return &p, nil
}

func (s *memoryService) Ping(context.Context) error {
	return nil
}

func newTestRouter(limiter *middleware.RateLimiter) http.Handler {
	logger := zerolog.Nop()
	svc := &memoryService{}
	v := validation.New()
	sessions := session.NewManager(session.NewMemoryStore(), config.SessionConfig{
		CookieName: "catalog_session",
		TTL:        time.Hour,
	}, logger)

	return New(Handlers{
		Product: handler.NewProductHandler(svc, v, logger),
		Form:    handler.NewFormHandler(svc, v, sessions, logger),
		Health:  handler.NewHealthHandler(map[string]handler.Pinger{"database": svc}, logger),
	}, limiter, logger)
}

func TestRouter_Routes(t *testing.T) {
	router := newTestRouter(nil)

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		contentType    string
		expectedStatus int
	}{
		{name: "Health", method: http.MethodGet, path: "/health", expectedStatus: http.StatusOK},
		{name: "Metrics", method: http.MethodGet, path: "/metrics", expectedStatus: http.StatusOK},
		{name: "List products", method: http.MethodGet, path: "/api/products", expectedStatus: http.StatusOK},
		{
			name:           "Create product",
			method:         http.MethodPost,
			path:           "/api/products",
			body:           `{"name":"iPhone 15","price":1200}`,
			contentType:    "application/json",
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Create product invalid",
			method:         http.MethodPost,
			path:           "/api/products",
			body:           `{"price":500}`,
			contentType:    "application/json",
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{name: "Product form", method: http.MethodGet, path: "/product/create", expectedStatus: http.StatusOK},
		{
			name:           "Store product",
			method:         http.MethodPost,
			path:           "/product/store",
			body:           url.Values{"name": {"Dusk Product"}, "price": {"999"}}.Encode(),
			contentType:    "application/x-www-form-urlencoded",
			expectedStatus: http.StatusSeeOther,
		},
		{name: "Unknown route", method: http.MethodGet, path: "/api/orders", expectedStatus: http.StatusNotFound},
		{name: "Wrong method", method: http.MethodDelete, path: "/api/products", expectedStatus: http.StatusMethodNotAllowed},
		{name: "Store via GET", method: http.MethodGet, path: "/product/store", expectedStatus: http.StatusMethodNotAllowed},
		{name: "Preflight", method: http.MethodOptions, path: "/api/products", expectedStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
		})
	}
}

func TestRouter_CreateThenList(t *testing.T) {
	router := newTestRouter(nil)

	for _, name := range []string{"First", "Second", "Third"} {
		body, err := json.Marshal(map[string]interface{}{"name": name, "price": 10})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewReader(body)))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var products []model.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	require.Len(t, products, 3)
	assert.Equal(t, "First", products[0].Name)
	assert.Equal(t, "Third", products[2].Name)
}

func TestRouter_NotFoundCarriesCorrelationID(t *testing.T) {
	router := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	req.Header.Set(middleware.RequestIDHeader, "trace-42")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)

	var body model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, model.ErrCodeNotFound, body.Error)
	assert.Equal(t, "trace-42", body.CorrelationID)
}

func TestRouter_RateLimit(t *testing.T) {
	router := newTestRouter(middleware.NewRateLimiter(0.001, 1, zerolog.Nop()))

	send := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.RemoteAddr = "203.0.113.9:4000"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}
