package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/meridiancap/cms-apiserver/internal/logger"
	"github.com/meridiancap/cms-apiserver/internal/store"
)

// Envelope is the uniform response shape of every endpoint, success and
// failure alike. No handler may produce a bare body or a non-JSON error
// page.
type Envelope struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Data      any               `json:"data"`
	Errors    map[string]string `json:"errors,omitempty"`
	Timestamp string            `json:"timestamp"`
}

func writeEnvelope(w http.ResponseWriter, status int, env Envelope) {
	env.Timestamp = time.Now().UTC().Format(time.RFC3339)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func writeSuccess(w http.ResponseWriter, message string, data any) {
	writeEnvelope(w, http.StatusOK, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, Envelope{
		Success: false,
		Message: message,
	})
}

func writeValidation(w http.ResponseWriter, fields map[string]string) {
	writeEnvelope(w, http.StatusBadRequest, Envelope{
		Success: false,
		Message: "validation failed",
		Errors:  fields,
	})
}

// writeRepoError converts a repository or service error into the
// envelope shape: validation failures carry per-field messages with 400,
// missing rows map to 404, and anything else is a sanitized 500 with the
// detail logged server-side only.
func writeRepoError(w http.ResponseWriter, r *http.Request, err error, notFoundMessage string) {
	var invalid *store.ValidationError
	switch {
	case errors.As(err, &invalid):
		writeValidation(w, invalid.Fields)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, notFoundMessage)
	default:
		logger.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// Healthz is a liveness endpoint.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, "ok", nil)
}

// NotFound serves the 404 envelope for unknown routes.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "endpoint not found")
}

// MethodNotAllowed serves the 405 envelope.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
