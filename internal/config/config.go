// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port         string
	FrontendURLs []string
	Langflow     LangflowConfig
	CallLog      CallLogConfig
	RateLimit    RateLimitConfig
}

// LangflowConfig describes how to reach the generation backend.
type LangflowConfig struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	FlowsFile string
	Flows     FlowsConfig
}

// CallLogConfig controls the SQLite flow-call log.
type CallLogConfig struct {
	Enabled bool
	DBPath  string
	// Retention is how long calls are kept. Zero keeps them forever.
	Retention time.Duration
}

// RateLimitConfig throttles endpoints that call the generation backend.
type RateLimitConfig struct {
	RequestsPerWindow int
	WindowDuration    time.Duration
}

// Load reads configuration from environment variables, layered over the
// optional YAML flow file named by LANGFLOW_FLOWS_FILE.
func Load() (*Config, error) {
	flows := DefaultFlows()
	baseURL := "http://localhost:7860"

	flowsFile := getEnv("LANGFLOW_FLOWS_FILE", "")
	if flowsFile != "" {
		file, err := LoadFlowsFile(flowsFile)
		if err != nil {
			return nil, err
		}
		if file.BaseURL != "" {
			baseURL = file.BaseURL
		}
		flows = flows.Merge(file.Flows)
	}

	flows.ScenarioGeneration.ID = getEnv("FLOW_1_ID", flows.ScenarioGeneration.ID)
	flows.AssessmentPlan.ID = getEnv("FLOW_2_ID", flows.AssessmentPlan.ID)
	flows.ExerciseGeneration.ID = getEnv("FLOW_3_ID", flows.ExerciseGeneration.ID)
	flows.SessionFeedback.ID = getEnv("FLOW_4_ID", flows.SessionFeedback.ID)

	cfg := &Config{
		Port:         getEnv("PORT", "8000"),
		FrontendURLs: getEnvList("FRONTEND_URLS", []string{"http://localhost:3000", "http://localhost:5173"}),
		Langflow: LangflowConfig{
			BaseURL:   strings.TrimRight(getEnv("LANGFLOW_BASE_URL", baseURL), "/"),
			APIKey:    getEnv("LANGFLOW_API_KEY", ""),
			Timeout:   getEnvDuration("LANGFLOW_TIMEOUT", 30*time.Second),
			FlowsFile: flowsFile,
			Flows:     flows,
		},
		CallLog: CallLogConfig{
			Enabled:   getEnvBool("CALL_LOG_ENABLED", true),
			DBPath:    getEnv("DB_PATH", "./data/writebot.db"),
			Retention: getEnvDuration("CALL_LOG_RETENTION", 7*24*time.Hour),
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: getEnvInt("RATE_LIMIT_REQUESTS", 10),
			WindowDuration:    getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set. Missing
// flow ids are not checked here; the Langflow client reports them.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.Langflow.BaseURL == "" {
		return fmt.Errorf("LANGFLOW_BASE_URL cannot be empty")
	}
	if c.Langflow.Timeout <= 0 {
		return fmt.Errorf("LANGFLOW_TIMEOUT must be > 0")
	}
	if c.CallLog.Enabled && c.CallLog.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty when CALL_LOG_ENABLED is set")
	}
	if c.CallLog.Retention < 0 {
		return fmt.Errorf("CALL_LOG_RETENTION cannot be negative")
	}
	if c.RateLimit.RequestsPerWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be > 0")
	}
	if c.RateLimit.WindowDuration <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be > 0")
	}
	return nil
}

// IsDevelopment returns true if every allowed frontend is local.
func (c *Config) IsDevelopment() bool {
	for _, u := range c.FrontendURLs {
		if !strings.Contains(u, "localhost") && !strings.Contains(u, "127.0.0.1") {
			return false
		}
	}
	return true
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
