package domain

import (
	"time"
)

// FlowCall status values.
const (
	FlowCallOK    = "ok"
	FlowCallError = "error"
)

// FlowCall is one recorded invocation of a generation backend flow.
type FlowCall struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	Flow       string    `json:"flow"`
	Status     string    `json:"status"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// Failed reports whether the call ended in an error.
func (c *FlowCall) Failed() bool {
	return c.Status == FlowCallError
}
