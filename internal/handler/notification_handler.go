package handler

import (
	"net/http"

	"pharma-ops/internal/middleware"
	"pharma-ops/internal/model"
	"pharma-ops/internal/notify"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// NotificationHandler tracks which alerts an operator session has dismissed.
type NotificationHandler struct {
	reads    *notify.ReadSet
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(reads *notify.ReadSet, v *validator.Validate, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		reads:    reads,
		validate: v,
		logger:   logger.With().Str("handler", "notification").Logger(),
	}
}

type readSetResponse struct {
	Read  []string `json:"read"`
	Added int      `json:"added"`
}

func (h *NotificationHandler) session(r *http.Request) (string, error) {
	s := r.Header.Get(middleware.HeaderSessionID)
	if s == "" {
		return "", model.ValidationError("%s header is required", middleware.HeaderSessionID)
	}
	return s, nil
}

// Read handles GET /api/notifications/read.
func (h *NotificationHandler) Read(w http.ResponseWriter, r *http.Request) {
	session, err := h.session(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, readSetResponse{Read: h.reads.Read(session)}, h.logger)
}

// MarkRead handles POST /api/notifications/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	session, err := h.session(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req MarkReadRequest
	if err := decodeAndValidate(w, r, h.validate, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	added := h.reads.MarkRead(session, req.IDs...)
	writeJSON(w, http.StatusOK, readSetResponse{Read: h.reads.Read(session), Added: added}, h.logger)
}

// Clear handles DELETE /api/notifications/read.
func (h *NotificationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	session, err := h.session(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	h.reads.Clear(session)
	w.WriteHeader(http.StatusNoContent)
}
