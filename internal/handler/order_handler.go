package handler

import (
	"context"
	"net/http"

	"pharma-ops/internal/export"
	"pharma-ops/internal/invoice"
	"pharma-ops/internal/report"
	"pharma-ops/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// orderAPI is the service surface shared by regular and periodic orders.
type orderAPI[V any] interface {
	List(ctx context.Context, q service.ListQuery) (*report.Page[V], error)
	FilterOptions(ctx context.Context) (*service.FilterOptions, error)
	GetByID(ctx context.Context, id string) (*V, error)
	UpdateStatus(ctx context.Context, id string, change service.StatusChange) (*V, error)
	Delete(ctx context.Context, id string) error
	Invoice(ctx context.Context, id string) (*invoice.Document, error)
	RenderInvoice(ctx context.Context, id string) (*service.RenderedInvoice, error)
	Export(ctx context.Context, filters report.Filters) (*export.Artifact, error)
}

// OrderHandler handles order-related HTTP requests for one order type.
type OrderHandler[V any] struct {
	service       orderAPI[V]
	validate      *validator.Validate
	paging        Paging
	allowPlanType bool
	logger        zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(svc service.OrderService, v *validator.Validate, paging Paging, logger zerolog.Logger) *OrderHandler[service.OrderView] {
	return &OrderHandler[service.OrderView]{
		service:  svc,
		validate: v,
		paging:   paging,
		logger:   logger.With().Str("handler", "order").Logger(),
	}
}

// NewPeriodicOrderHandler creates a handler for periodic orders, which also filter by plan
// type.
func NewPeriodicOrderHandler(svc service.PeriodicOrderService, v *validator.Validate, paging Paging, logger zerolog.Logger) *OrderHandler[service.PeriodicOrderView] {
	return &OrderHandler[service.PeriodicOrderView]{
		service:       svc,
		validate:      v,
		paging:        paging,
		allowPlanType: true,
		logger:        logger.With().Str("handler", "periodic_order").Logger(),
	}
}

// List handles GET requests on the collection.
func (h *OrderHandler[V]) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, h.paging, h.allowPlanType)
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

// Filters handles GET {collection}/filters.
func (h *OrderHandler[V]) Filters(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.FilterOptions(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, opts, h.logger)
}

// GetByID handles GET {collection}/{id}.
func (h *OrderHandler[V]) GetByID(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, view, h.logger)
}

// UpdateStatus handles PATCH {collection}/{id}/status.
func (h *OrderHandler[V]) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusChangeRequest
	if err := decodeAndValidate(w, r, h.validate, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	view, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), service.StatusChange{
		UserID:  req.UserID,
		Status:  req.Status,
		Message: req.Message,
	})
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view, h.logger)
}

// Delete handles DELETE {collection}/{id}.
func (h *OrderHandler[V]) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Invoice handles GET {collection}/{id}/invoice.
func (h *OrderHandler[V]) Invoice(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Invoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, doc, h.logger)
}

// RenderInvoice handles POST {collection}/{id}/invoice/render.
func (h *OrderHandler[V]) RenderInvoice(w http.ResponseWriter, r *http.Request) {
	rendered, err := h.service.RenderInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, rendered, h.logger)
}

// Export handles GET {collection}/export.
func (h *OrderHandler[V]) Export(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, h.paging, h.allowPlanType)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	artifact, err := h.service.Export(r.Context(), q.Filters)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeArtifact(w, artifact)
}
