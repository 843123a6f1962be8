package handler

import (
	"net/http"

	"pharma-ops/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// PharmacyHandler handles pharmacy and revenue ledger HTTP requests.
type PharmacyHandler struct {
	service  service.PharmacyService
	validate *validator.Validate
	paging   Paging
	logger   zerolog.Logger
}

// NewPharmacyHandler creates a new pharmacy handler.
func NewPharmacyHandler(svc service.PharmacyService, v *validator.Validate, paging Paging, logger zerolog.Logger) *PharmacyHandler {
	return &PharmacyHandler{
		service:  svc,
		validate: v,
		paging:   paging,
		logger:   logger.With().Str("handler", "pharmacy").Logger(),
	}
}

// List handles GET /api/pharmacies.
func (h *PharmacyHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, h.paging, false)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	page, err := h.service.List(r.Context(), q)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, page, h.logger)
}

// Filters handles GET /api/pharmacies/filters.
func (h *PharmacyHandler) Filters(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.FilterOptions(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, opts, h.logger)
}

// Revenue handles GET /api/pharmacies/{id}/revenue.
func (h *PharmacyHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Revenue(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, summary, h.logger)
}

// SetPaymentStatus handles PUT /api/pharmacies/{id}/revenue/{month}.
func (h *PharmacyHandler) SetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	var req PaymentStatusRequest
	if err := decodeAndValidate(w, r, h.validate, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	summary, err := h.service.SetPaymentStatus(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "month"), req.Status, *req.Amount)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, summary, h.logger)
}

// ExportRevenue handles GET /api/pharmacies/{id}/revenue/export.
func (h *PharmacyHandler) ExportRevenue(w http.ResponseWriter, r *http.Request) {
	artifact, err := h.service.ExportRevenue(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeArtifact(w, artifact)
}
