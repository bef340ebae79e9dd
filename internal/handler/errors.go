package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pkordes/permit-log/backend/internal/domain"
)

// errorResponse is the body returned for every non-2xx outcome.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps a service error onto the HTTP taxonomy:
// validation 422, permission 403, conflict 409, not-found 404, anything
// else 500 with the detail logged rather than leaked.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("validation_error", err))
	case errors.Is(err, domain.ErrPermission):
		writeJSON(w, http.StatusForbidden, errorBody("permission_denied", err))
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("conflict", err))
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: errorDetail{Code: "not_found", Message: "not found"}})
	default:
		slog.ErrorContext(r.Context(), "internal error", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: errorDetail{Code: "internal", Message: "internal server error"}})
	}
}

// writeBadRequest rejects a request before it reaches the service layer
// (malformed body, bad UUID in the path).
func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: errorDetail{Code: "bad_request", Message: message}})
}

func errorBody(code string, err error) errorResponse {
	return errorResponse{Error: errorDetail{Code: code, Message: reason(err)}}
}

// reason extracts the human-readable message from a domain.Error anywhere in
// the chain. Sentinels raised without one fall back to the full error text.
func reason(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Reason()
	}
	return err.Error()
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck — the response is already committed; nothing to do on failure.
	json.NewEncoder(w).Encode(v)
}
