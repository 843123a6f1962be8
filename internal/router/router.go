package router

import (
	"encoding/json"
	"net/http"

	"pharma-ops/internal/handler"
	"pharma-ops/internal/middleware"
	"pharma-ops/internal/model"
	"pharma-ops/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Orders         *handler.OrderHandler[service.OrderView]
	PeriodicOrders *handler.OrderHandler[service.PeriodicOrderView]
	Pharmacies     *handler.PharmacyHandler
	Notifications  *handler.NotificationHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, apiKey string, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Recovery -> CorrelationID -> Logging -> CORS -> APIKeyAuth
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)
	r.Use(middleware.APIKeyAuth(apiKey, logger))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, r, http.StatusNotFound, model.ErrCodeNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED")
	})

	// Health check endpoint (no authentication required)
	r.Get("/health", handler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			mountOrders(r, h.Orders)
		})
		r.Route("/periodic-orders", func(r chi.Router) {
			mountOrders(r, h.PeriodicOrders)
		})

		r.Route("/pharmacies", func(r chi.Router) {
			r.Get("/", h.Pharmacies.List)
			r.Get("/filters", h.Pharmacies.Filters)
			r.Get("/{id}/revenue", h.Pharmacies.Revenue)
			r.Get("/{id}/revenue/export", h.Pharmacies.ExportRevenue)
			r.Put("/{id}/revenue/{month}", h.Pharmacies.SetPaymentStatus)
		})

		r.Get("/invoices/schema", handler.InvoiceSchema(logger))

		r.Route("/notifications/read", func(r chi.Router) {
			r.Get("/", h.Notifications.Read)
			r.Post("/", h.Notifications.MarkRead)
			r.Delete("/", h.Notifications.Clear)
		})
	})

	return r
}

// mountOrders registers the routes shared by regular and periodic orders. Static segments
// are registered before {id} so they take precedence.
func mountOrders[V any](r chi.Router, h *handler.OrderHandler[V]) {
	r.Get("/", h.List)
	r.Get("/filters", h.Filters)
	r.Get("/export", h.Export)
	r.Get("/{id}", h.GetByID)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Delete("/{id}", h.Delete)
	r.Get("/{id}/invoice", h.Invoice)
	r.Post("/{id}/invoice/render", h.RenderInvoice)
}

func writeStatus(w http.ResponseWriter, r *http.Request, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{
		Error:         code,
		Message:       http.StatusText(status),
		CorrelationID: middleware.CorrelationIDFrom(r.Context()),
	})
}
