package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"expensetracker/internal/core"
)

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps a domain error to a status code. Validation, auth and
// conflict errors carry their message to the client; anything else is an
// internal failure that gets logged and answered opaquely with the request id
// as correlation handle.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case core.IsValidation(err), errors.Is(err, core.ErrUsernameTaken):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, core.ErrInvalidCredentials), errors.Is(err, core.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
	case errors.Is(err, core.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorBody{Error: err.Error()})
	default:
		requestID, _ := ctx.Value(requestIDKey).(string)
		slog.ErrorContext(ctx, "Internal error", "error", err, "request_id", requestID)
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error:     "internal error",
			RequestID: requestID,
		})
	}
}

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed JSON body", core.ErrInvalidInput)
	}
	return nil
}
