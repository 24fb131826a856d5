// Package api provides HTTP handlers for the WriteBot API.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/ashureev/writebot/internal/langflow"
	"github.com/containerd/errdefs"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodySize bounds request bodies (1MB).
const maxBodySize = 1 << 20

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// badRequest builds an invalid argument error with a client-facing message.
func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errdefs.ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// decodeJSON decodes a bounded request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return badRequest("request body exceeds %d bytes", maxErr.Limit)
		}
		return badRequest("invalid request body: %v", err)
	}
	return nil
}

// statusFor maps an error to its HTTP status and client message.
func statusFor(err error) (int, string) {
	switch {
	case errdefs.IsInvalidArgument(err):
		return http.StatusBadRequest, err.Error()
	case errdefs.IsNotFound(err):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, langflow.ErrFlowNotConfigured):
		return http.StatusInternalServerError, err.Error()
	case errors.Is(err, langflow.ErrTimeout), errdefs.IsDeadlineExceeded(err):
		return http.StatusGatewayTimeout, "Langflow request timed out"
	case errors.Is(err, langflow.ErrUnavailable), errdefs.IsUnavailable(err):
		return http.StatusServiceUnavailable, "Cannot connect to Langflow. Make sure Langflow is running"
	default:
		return http.StatusInternalServerError, "Internal server error: " + err.Error()
	}
}

// writeError logs err and writes the mapped error response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed",
			"path", r.URL.Path,
			"status", status,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err)
	} else {
		slog.Debug("Request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	Error(w, status, msg)
}

// IPFromRequest returns the remote IP without its port. Behind
// middleware.RealIP this is the forwarded client address.
func IPFromRequest(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
