package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"pharma-ops/internal/export"
	"pharma-ops/internal/invoice"
	"pharma-ops/internal/middleware"
	"pharma-ops/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}, logger zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent; the client only sees a truncated body.
		logger.Error().Err(err).Int("status", status).Msg("failed to write JSON response")
	}
}

// writeError maps err to an HTTP status and writes the standard error body.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	status, body := errorResponse(err)
	body.CorrelationID = middleware.CorrelationIDFrom(r.Context())

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Int("status", status).
		Str("code", body.Error).
		Str("path", r.URL.Path).
		Str("correlation_id", body.CorrelationID).
		Msg("handler error")

	writeJSON(w, status, body, logger)
}

func errorResponse(err error) (int, model.ErrorResponse) {
	var de *model.DomainError
	if !errors.As(err, &de) {
		return http.StatusInternalServerError, model.ErrorResponse{
			Error:   model.ErrCodeInternalError,
			Message: "internal server error",
		}
	}

	status := http.StatusInternalServerError
	switch de.Kind {
	case model.KindValidation:
		status = http.StatusBadRequest
	case model.KindAlreadySettled:
		status = http.StatusConflict
	case model.KindNotFound:
		status = http.StatusNotFound
	case model.KindUpstream:
		status = http.StatusBadGateway
	}
	return status, model.ErrorResponse{Error: de.Code, Message: de.Message}
}

// writeArtifact streams a rendered file as an attachment.
func writeArtifact(w http.ResponseWriter, a *export.Artifact) {
	w.Header().Set("Content-Type", a.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+a.Name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(a.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.Body)
}

// InvoiceSchema handles GET /api/invoices/schema.
func InvoiceSchema(logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := invoice.SchemaJSON()
		if err != nil {
			writeError(w, r, err, logger)
			return
		}
		w.Header().Set("Content-Type", "application/schema+json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	}
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"}, *zerolog.Ctx(r.Context()))
}
