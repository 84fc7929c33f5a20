package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"product-catalog/internal/metrics"
	"product-catalog/internal/model"
	"product-catalog/internal/service"
	"product-catalog/internal/validation"

	"github.com/rs/zerolog"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// ProductHandler handles the JSON product API.
type ProductHandler struct {
	service   service.ProductService
	validator *validation.Validator
	logger    zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, validator *validation.Validator, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/products requests.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to retrieve products", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// Create handles POST /api/products requests.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, model.ErrInvalidJSON.Message, h.logger)
		return
	}

	input, errs := h.validator.ProductFromJSON(body)
	if errs != nil {
		metrics.RecordValidationFailure(metrics.SourceAPI)
		h.logger.Debug().Interface("errors", errs).Msg("product rejected")
		writeValidationError(w, errs)
		return
	}

	product, err := h.service.Create(r.Context(), input)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to create product", h.logger)
		return
	}
	metrics.RecordProductCreated(metrics.SourceAPI)

	writeJSON(w, http.StatusCreated, product)
}

// decodeObject reads a single JSON object, keeping numbers as json.Number.
// An empty body decodes to an empty object.
func decodeObject(r io.Reader) (map[string]interface{}, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var body interface{}
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]interface{}{}, nil
		}
		return nil, err
	}

	if dec.More() {
		return nil, errors.New("unexpected data after JSON object")
	}

	obj, ok := body.(map[string]interface{})
	if !ok {
		return nil, model.ErrInvalidJSON
	}
	return obj, nil
}
