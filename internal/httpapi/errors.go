package httpapi

import (
	"encoding/json"
	"net/http"

	"synthd/internal/orchestrator"
	"synthd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// statusForKind maps a stable failure kind to its HTTP status.
func statusForKind(kind string) int {
	switch kind {
	case orchestrator.KindModelNotFound:
		return http.StatusNotFound
	case orchestrator.KindBadRequest:
		return http.StatusBadRequest
	case orchestrator.KindNotInitialized, orchestrator.KindCapabilityUnavailable:
		return http.StatusServiceUnavailable
	case orchestrator.KindExecutionTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// statusForError maps a service error to its HTTP status.
func statusForError(err error) int {
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	return statusForKind(orchestrator.Kind(err))
}
