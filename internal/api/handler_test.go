//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ashureev/writebot/internal/domain"
	"github.com/ashureev/writebot/internal/langflow"
	"github.com/ashureev/writebot/internal/session"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %q", ct)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got["foo"] != "bar" {
		t.Errorf("Expected foo=bar, got %v", got["foo"])
	}
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, http.StatusNotFound, "missing")

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
	var got map[string]string
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got["error"] != "missing" {
		t.Errorf("Expected error=missing, got %v", got)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad request", badRequest("nope"), http.StatusBadRequest},
		{"invalid intake", fmt.Errorf("%w: full_name is required", domain.ErrInvalidIntake), http.StatusBadRequest},
		{"invalid field", session.ErrInvalidField, http.StatusBadRequest},
		{"not found", fmt.Errorf("%w: abc", session.ErrNotFound), http.StatusNotFound},
		{"flow not configured", langflow.ErrFlowNotConfigured, http.StatusInternalServerError},
		{"timeout", fmt.Errorf("%w: flow x", langflow.ErrTimeout), http.StatusGatewayTimeout},
		{"unavailable", fmt.Errorf("%w: flow x", langflow.ErrUnavailable), http.StatusServiceUnavailable},
		{"request failed", langflow.ErrRequestFailed, http.StatusInternalServerError},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, msg := statusFor(tt.err)
			if got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
			if msg == "" {
				t.Error("expected a message")
			}
		})
	}
}

func TestDecodeJSONRejectsOversizedBody(t *testing.T) {
	body := `{"full_name":"` + strings.Repeat("a", maxBodySize) + `"}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	w := httptest.NewRecorder()

	var form domain.IntakeForm
	err := decodeJSON(w, r, &form)
	if status, _ := statusFor(err); status != http.StatusBadRequest {
		t.Errorf("expected 400 for oversized body, got %d (%v)", status, err)
	}
}

func TestIPFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.7:5123"
	if got := IPFromRequest(r); got != "10.0.0.7" {
		t.Errorf("IPFromRequest = %q", got)
	}

	r.RemoteAddr = "10.0.0.8"
	if got := IPFromRequest(r); got != "10.0.0.8" {
		t.Errorf("IPFromRequest without port = %q", got)
	}
}
