// Package handlers provides JSON response helpers shared by HTTP handlers.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RespondJSON writes data as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers are already written; nothing left to do but note it
		slog.Default().Error("encode response failed", "error", err)
	}
}

// RespondError logs err and writes it as a JSON error body with the given
// status code.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	if logger != nil {
		logger.Error("request failed", "status", status, "error", err)
	}
	RespondJSON(w, status, ErrorResponse{Error: err.Error()})
}
