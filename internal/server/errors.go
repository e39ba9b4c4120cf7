package server

import (
	"encoding/json"
	"net/http"

	"github.com/andysenclave/kriyo-auth-gateway/internal/pipeline"
)

// callerError is the caller-visible error shape for hook failures.
type callerError struct {
	ErrorKind string `json:"errorKind"`
	Message   string `json:"message"`
}

// statusFor maps the closed set of error kinds onto HTTP statuses.
func statusFor(kind pipeline.ErrorKind) int {
	if kind == pipeline.KindUnauthorized {
		return http.StatusUnauthorized
	}
	return http.StatusBadRequest
}

// writeRejection translates a pipeline rejection into the caller-visible
// error shape, preserving kind and message verbatim.
func writeRejection(w http.ResponseWriter, rej *pipeline.Rejection) {
	writeCallerError(w, rej.Kind, rej.Message)
}

func writeCallerError(w http.ResponseWriter, kind pipeline.ErrorKind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(kind))
	_ = json.NewEncoder(w).Encode(callerError{
		ErrorKind: string(kind),
		Message:   message,
	})
}
