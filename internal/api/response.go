package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/spicestory/spicestory/internal/apperr"
	"github.com/spicestory/spicestory/internal/logging"
)

type errorBody struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, errorBody{Message: message})
}

// writeError maps err to a status code and JSON body. Server-side failures
// are logged with their cause; the caller only sees the message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	message, field := apperr.Message(err)

	if status >= http.StatusInternalServerError {
		logging.FromContext(r.Context(), nil).Error("request failed", "status", status, "error", err)
	}
	jsonResponse(w, status, errorBody{Message: message, Field: field})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
