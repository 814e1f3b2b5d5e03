package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vango-dev/toastd/pkg/toast"
)

// Sentinel errors for server and client conditions.
var (
	// ErrServerClosed is returned when Serve is called after Shutdown.
	ErrServerClosed = errors.New("server: closed")

	// ErrUnknownOp is returned for a client message with an unrecognised op.
	ErrUnknownOp = errors.New("server: unknown op")

	// ErrMissingID is returned for a client message without a toast id.
	ErrMissingID = errors.New("server: missing toast id")

	// ErrSlowClient is the close reason for a client whose send buffer is full.
	ErrSlowClient = errors.New("server: client too slow")

	// ErrInvalidBody is returned when a request body is not a JSON object.
	ErrInvalidBody = errors.New("server: invalid request body")
)

// errorResponse is the JSON body of every API error.
type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, toast.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, toast.ErrHostClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, toast.ErrUnknownType),
		errors.Is(err, toast.ErrActionIncomplete),
		errors.Is(err, toast.ErrNoAction),
		errors.Is(err, toast.ErrInvalidDuration),
		errors.Is(err, ErrInvalidBody):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}
