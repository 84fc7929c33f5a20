package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"product-catalog/internal/metrics"
	"product-catalog/internal/model"
	"product-catalog/internal/service"
	"product-catalog/internal/session"
	"product-catalog/internal/validation"

	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFS embed.FS

var productFormTemplate = template.Must(template.ParseFS(templateFS, "templates/product_form.html"))

// SuccessMessage is flashed after a product is added through the form.
const SuccessMessage = "Product Added"

const createPath = "/product/create"

// formView is the data rendered by the product form.
type formView struct {
	Success string
	Errors  map[string]string
	Old     map[string]string
}

// FormHandler serves the HTML product form.
type FormHandler struct {
	service   service.ProductService
	validator *validation.Validator
	sessions  *session.Manager
	logger    zerolog.Logger
}

// NewFormHandler creates a new form handler.
func NewFormHandler(
	service service.ProductService,
	validator *validation.Validator,
	sessions *session.Manager,
	logger zerolog.Logger,
) *FormHandler {
	return &FormHandler{
		service:   service,
		validator: validator,
		sessions:  sessions,
		logger:    logger.With().Str("handler", "form").Logger(),
	}
}

// Create handles GET /product/create requests.
func (h *FormHandler) Create(w http.ResponseWriter, r *http.Request) {
	flash := h.sessions.Consume(r)

	view := formView{
		Success: flash.Success,
		Errors:  make(map[string]string, len(flash.Errors)),
		Old:     flash.Old,
	}
	for field, msgs := range flash.Errors {
		if len(msgs) > 0 {
			view.Errors[field] = msgs[0]
		}
	}

	var buf bytes.Buffer
	if err := productFormTemplate.Execute(&buf, view); err != nil {
		h.logger.Error().Err(err).Msg("failed to render product form")
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to render page", h.logger)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// Store handles POST /product/store requests.
func (h *FormHandler) Store(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeValidation, "invalid form submission", h.logger)
		return
	}

	input, errs := h.validator.ProductFromForm(r.PostForm)
	if errs != nil {
		metrics.RecordValidationFailure(metrics.SourceForm)
		h.flash(w, r, session.Flash{
			Errors: errs,
			Old: map[string]string{
				"name":  r.PostForm.Get("name"),
				"price": r.PostForm.Get("price"),
			},
		})
		http.Redirect(w, r, createPath, http.StatusSeeOther)
		return
	}

	product, err := h.service.Create(r.Context(), input)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to create product", h.logger)
		return
	}
	metrics.RecordProductCreated(metrics.SourceForm)

	h.logger.Debug().Int64("product_id", product.ID).Msg("product added from form")

	h.flash(w, r, session.Flash{Success: SuccessMessage})
	http.Redirect(w, r, createPath, http.StatusSeeOther)
}

// flash stores f for the next request. A failure only loses the message.
func (h *FormHandler) flash(w http.ResponseWriter, r *http.Request, f session.Flash) {
	if err := h.sessions.Flash(w, r, f); err != nil {
		h.logger.Error().Err(err).Msg("failed to store flash")
	}
}
