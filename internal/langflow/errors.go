package langflow

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/containerd/errdefs"
)

var (
	// ErrFlowNotConfigured means a flow has no id. It is a configuration
	// problem and is never retried.
	ErrFlowNotConfigured = fmt.Errorf("flow not configured: %w", errdefs.ErrFailedPrecondition)
	// ErrUnavailable means the backend refused or could not accept the
	// connection.
	ErrUnavailable = fmt.Errorf("langflow unavailable: %w", errdefs.ErrUnavailable)
	// ErrTimeout means the call did not finish within the configured timeout.
	ErrTimeout = fmt.Errorf("langflow request timed out: %w", context.DeadlineExceeded)
	// ErrRequestFailed covers any other transport failure or non-2xx status.
	ErrRequestFailed = errors.New("langflow request failed")
	// ErrMalformedResponse means the response body was not JSON.
	ErrMalformedResponse = errors.New("malformed langflow response")
)

// Error kinds reported by ErrorKind.
const (
	KindConfiguration     = "configuration"
	KindUnavailable       = "unavailable"
	KindTimeout           = "timeout"
	KindRequestFailed     = "request_failed"
	KindMalformedResponse = "malformed_response"
	KindUnknown           = "unknown"
)

// ErrorKind names the category of an Invoke error, or "" for nil.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrFlowNotConfigured):
		return KindConfiguration
	case errors.Is(err, ErrUnavailable):
		return KindUnavailable
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrMalformedResponse):
		return KindMalformedResponse
	case errors.Is(err, ErrRequestFailed):
		return KindRequestFailed
	default:
		return KindUnknown
	}
}

// classifyTransportError wraps an http.Client error with its category.
func classifyTransportError(flow FlowName, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: flow %s: %w", ErrTimeout, flow, err)
	}

	var opErr *net.OpError
	if errors.Is(err, syscall.ECONNREFUSED) || (errors.As(err, &opErr) && opErr.Op == "dial") {
		return fmt.Errorf("%w: flow %s: %w", ErrUnavailable, flow, err)
	}

	return fmt.Errorf("%w: flow %s: %w", ErrRequestFailed, flow, err)
}
