package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"product-catalog/internal/model"
	"product-catalog/internal/validation"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, input model.NewProduct) (*model.Product, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestProductHandler_List(t *testing.T) {
	logger := zerolog.Nop()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	testProducts := []model.Product{
		{ID: 1, Name: "Product 1", Price: 100, CreatedAt: now, UpdatedAt: now},
		{ID: 2, Name: "Product 2", Price: 200, CreatedAt: now, UpdatedAt: now},
	}

	tests := []struct {
		name           string
		mockReturn     []model.Product
		mockError      error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Success with products",
			mockReturn:     testProducts,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Empty catalogue returns empty array",
			mockReturn:     []model.Product{},
			expectedStatus: http.StatusOK,
			expectedBody:   "[]\n",
		},
		{
			name:           "Service error",
			mockReturn:     nil,
			mockError:      errors.New("service error"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			mockService.On("List", mock.Anything).Return(tt.mockReturn, tt.mockError)

			handler := NewProductHandler(mockService, validation.New(), logger)

			req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
			w := httptest.NewRecorder()

			handler.List(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			switch {
			case tt.expectedBody != "":
				assert.Equal(t, tt.expectedBody, w.Body.String())
			case tt.mockError != nil:
				var body model.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, model.ErrCodeInternalError, body.Error)
			default:
				var products []model.Product
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
				assert.Equal(t, tt.mockReturn, products)
			}

			mockService.AssertExpectations(t)
		})
	}
}

func TestProductHandler_ListJSONShape(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	mockService := new(MockProductService)
	mockService.On("List", mock.Anything).Return([]model.Product{
		{ID: 7, Name: "iPhone 15", Price: 1200, CreatedAt: now, UpdatedAt: now},
	}, nil)

	handler := NewProductHandler(mockService, validation.New(), zerolog.Nop())

	w := httptest.NewRecorder()
	handler.List(w, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	var raw []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	require.Len(t, raw, 1)

	assert.Equal(t, float64(7), raw[0]["id"])
	assert.Equal(t, "iPhone 15", raw[0]["name"])
	assert.Equal(t, float64(1200), raw[0]["price"])
	assert.Equal(t, "2024-05-01T10:00:00Z", raw[0]["created_at"])
	assert.Equal(t, "2024-05-01T10:00:00Z", raw[0]["updated_at"])
}

func TestProductHandler_Create(t *testing.T) {
	logger := zerolog.Nop()
	now := time.Now().UTC()

	tests := []struct {
		name           string
		body           string
		expectInput    *model.NewProduct
		mockReturn     *model.Product
		mockError      error
		expectedStatus int
		expectedCode   string
		expectedFields []string
	}{
		{
			name:           "Success",
			body:           `{"name": "iPhone 15", "price": 1200}`,
			expectInput:    &model.NewProduct{Name: "iPhone 15", Price: 1200},
			mockReturn:     &model.Product{ID: 1, Name: "iPhone 15", Price: 1200, CreatedAt: now, UpdatedAt: now},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Missing name",
			body:           `{"price": 500}`,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedFields: []string{"name"},
		},
		{
			name:           "Missing price",
			body:           `{"name": "Test Product"}`,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedFields: []string{"price"},
		},
		{
			name:           "Empty body",
			body:           ``,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedFields: []string{"name", "price"},
		},
		{
			name:           "Wrong types",
			body:           `{"name": 5, "price": "abc"}`,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedFields: []string{"name", "price"},
		},
		{
			name:           "Malformed JSON",
			body:           `{"name": "iPhone"`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
		{
			name:           "JSON array",
			body:           `[{"name": "iPhone", "price": 1}]`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
		{
			name:           "Trailing data",
			body:           `{"name": "iPhone", "price": 1} {}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
		{
			name:           "Service error",
			body:           `{"name": "iPhone 15", "price": 1200}`,
			expectInput:    &model.NewProduct{Name: "iPhone 15", Price: 1200},
			mockError:      errors.New("database down"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			if tt.expectInput != nil {
				if tt.mockReturn != nil {
					mockService.On("Create", mock.Anything, *tt.expectInput).Return(tt.mockReturn, nil)
				} else {
					mockService.On("Create", mock.Anything, *tt.expectInput).Return(nil, tt.mockError)
				}
			}

			handler := NewProductHandler(mockService, validation.New(), logger)

			req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.Create(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			switch {
			case tt.expectedFields != nil:
				var body model.ValidationErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.NotEmpty(t, body.Message)
				assert.Len(t, body.Errors, len(tt.expectedFields))
				for _, field := range tt.expectedFields {
					assert.NotEmpty(t, body.Errors[field], field)
				}
				mockService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			case tt.expectedCode != "":
				var body model.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.expectedCode, body.Error)
			default:
				var product model.Product
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &product))
				assert.Equal(t, tt.mockReturn.ID, product.ID)
				assert.Equal(t, tt.mockReturn.Name, product.Name)
				assert.Equal(t, tt.mockReturn.Price, product.Price)
			}

			mockService.AssertExpectations(t)
		})
	}
}

func TestProductHandler_CreateValidationMessage(t *testing.T) {
	handler := NewProductHandler(new(MockProductService), validation.New(), zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewBufferString(`{"price": 500}`))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{
		"message": "The name field is required.",
		"errors": {"name": ["The name field is required."]}
	}`, w.Body.String())
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	tests := []struct {
		name           string
		handler        http.Handler
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "Not found",
			handler:        NotFound(zerolog.Nop()),
			expectedStatus: http.StatusNotFound,
			expectedCode:   model.ErrCodeNotFound,
		},
		{
			name:           "Method not allowed",
			handler:        MethodNotAllowed(zerolog.Nop()),
			expectedStatus: http.StatusMethodNotAllowed,
			expectedCode:   model.ErrCodeMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.handler.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/products", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)

			var body model.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedCode, body.Error)
		})
	}
}
