package langflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ashureev/writebot/internal/config"
	"github.com/google/uuid"
)

// maxResponseSize bounds how much of a response body is read (8MB).
const maxResponseSize = 8 << 20

// maxErrorBody is how much of a failed response is quoted in the error.
const maxErrorBody = 512

// Client calls the Langflow run API over HTTP.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	flowIDs map[FlowName]string
	logger  *slog.Logger
}

// NewClient creates a Langflow client. It fails with ErrFlowNotConfigured
// when the scenario generation flow has no id.
func NewClient(cfg config.LangflowConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Flows.ScenarioGeneration.ID == "" {
		return nil, fmt.Errorf("%w: FLOW_1_ID is required", ErrFlowNotConfigured)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		http:    &http.Client{},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		timeout: timeout,
		flowIDs: map[FlowName]string{
			FlowScenarioGeneration: cfg.Flows.ScenarioGeneration.ID,
			FlowAssessmentPlan:     cfg.Flows.AssessmentPlan.ID,
			FlowExerciseGeneration: cfg.Flows.ExerciseGeneration.ID,
			FlowSessionFeedback:    cfg.Flows.SessionFeedback.ID,
		},
		logger: logger,
	}, nil
}

// Invoke runs a flow and returns the decoded JSON response.
func (c *Client) Invoke(ctx context.Context, flow FlowName, input any, sessionID string, tweaks Tweaks) (any, error) {
	flowID := c.flowIDs[flow]
	if flowID == "" {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrFlowNotConfigured, flow, c.configuredFlows())
	}

	inputValue, err := encodeInput(input)
	if err != nil {
		return nil, fmt.Errorf("encode input for flow %s: %w", flow, err)
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	body, err := json.Marshal(runRequest{
		OutputType: "chat",
		InputType:  "chat",
		InputValue: inputValue,
		SessionID:  sessionID,
		Tweaks:     tweaks,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request for flow %s: %w", flow, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.runURL(flowID), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: flow %s: %w", ErrRequestFailed, flow, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	c.logger.Debug("Invoking Langflow flow", "flow", flow, "session_id", sessionID, "tweaks", len(tweaks))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransportError(flow, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("failed to close Langflow response body", "error", closeErr)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, classifyTransportError(flow, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: flow %s: status %d: %s", ErrRequestFailed, flow, resp.StatusCode, truncate(data, maxErrorBody))
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: flow %s: %w", ErrMalformedResponse, flow, err)
	}
	return raw, nil
}

func (c *Client) runURL(flowID string) string {
	return c.baseURL + "/api/v1/run/" + url.PathEscape(flowID) + "?stream=false"
}

func (c *Client) configuredFlows() []FlowName {
	var names []FlowName
	for _, name := range []FlowName{FlowScenarioGeneration, FlowAssessmentPlan, FlowExerciseGeneration, FlowSessionFeedback} {
		if c.flowIDs[name] != "" {
			names = append(names, name)
		}
	}
	return names
}

func encodeInput(input any) (string, error) {
	if s, ok := input.(string); ok {
		return s, nil
	}
	data, err := json.Marshal(input)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func truncate(data []byte, n int) string {
	if len(data) <= n {
		return string(data)
	}
	return string(data[:n]) + "..."
}
