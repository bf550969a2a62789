// Package config loads and validates webpilot runtime configuration.
//
// Configuration is environment-first: every setting has an environment
// variable, and an optional YAML file can override defaults before the
// environment is applied. The safety policy is constructed once at startup
// and threaded explicitly to the components that enforce it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider identifiers for the planner backend.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Default models per provider, used when AGENT_MODEL is unset.
const (
	DefaultOpenAIModel    = "gpt-4o"
	DefaultAnthropicModel = "claude-sonnet-4-20250514"
	DefaultGeminiModel    = "gemini-2.0-flash"
)

// Config is the complete runtime configuration.
type Config struct {
	// Provider selects the planner backend: openai, anthropic, or gemini.
	Provider string `yaml:"provider"`

	// Model is the provider-specific model identifier.
	// Empty selects the provider default.
	Model string `yaml:"model"`

	// API credentials per provider. Absence of the selected provider's key
	// disables the planner and blocks task creation.
	OpenAIKey    string `yaml:"-"`
	AnthropicKey string `yaml:"-"`
	GoogleKey    string `yaml:"-"`

	// Host is the HTTP/WS bind address. Defaults to loopback.
	Host string `yaml:"host"`

	// Port is the HTTP/WS bind port. 0 lets the OS choose.
	Port int `yaml:"port"`

	// LogLevel is debug, info, warn, or error.
	LogLevel string `yaml:"log_level"`

	// LogFormat is json or text.
	LogFormat string `yaml:"log_format"`

	// OTLPEndpoint enables trace export when set (e.g. "localhost:4317").
	OTLPEndpoint string `yaml:"otlp_endpoint"`

	// BrowserDebugURL is the Chrome DevTools URL the browser executor
	// attaches to (e.g. "http://localhost:9222"). When empty the default
	// executor is used and every task terminates immediately with an error
	// observation.
	BrowserDebugURL string `yaml:"browser_debug_url"`

	// Safety is the process-wide immutable safety policy.
	Safety SafetyPolicy `yaml:"safety"`
}

// SafetyPolicy bounds steps, waits, navigation targets, and interaction
// selectors. It is read both when building the planner prompt and when
// enforcing actions in the executor.
type SafetyPolicy struct {
	// MaxSteps is the per-task step budget.
	MaxSteps int `yaml:"max_steps"`

	// MaxParallelTasks bounds concurrent orchestrations.
	MaxParallelTasks int `yaml:"max_parallel_tasks"`

	// MaxWait is the ceiling for wait-action sleeps and timeouts.
	MaxWait time.Duration `yaml:"max_wait"`

	// BlockedOrigins lists URL prefixes forbidden to navigate.
	BlockedOrigins []string `yaml:"blocked_origins"`

	// RestrictedSelectors lists CSS selectors forbidden to click and type.
	RestrictedSelectors []string `yaml:"restricted_selectors"`
}

// DefaultSafetyPolicy returns the hard-coded policy defaults.
func DefaultSafetyPolicy() SafetyPolicy {
	return SafetyPolicy{
		MaxSteps:         16,
		MaxParallelTasks: 1,
		MaxWait:          15 * time.Second,
		BlockedOrigins: []string{
			"chrome://",
			"chrome-extension://",
			"devtools://",
			"view-source:",
			"file://",
			"about:",
		},
		RestrictedSelectors: []string{
			`input[type="password"]`,
			`input[autocomplete="cc-number"]`,
			`input[autocomplete="cc-csc"]`,
			`input[autocomplete="cc-exp"]`,
			`input[autocomplete="one-time-code"]`,
		},
	}
}

// IsBlockedOrigin reports whether url starts with a blocked origin prefix.
func (p SafetyPolicy) IsBlockedOrigin(url string) bool {
	trimmed := strings.TrimSpace(strings.ToLower(url))
	for _, prefix := range p.BlockedOrigins {
		if strings.HasPrefix(trimmed, strings.ToLower(prefix)) {
			return true
		}
	}
	return false
}

// IsRestrictedSelector reports whether selector is on the restricted list.
func (p SafetyPolicy) IsRestrictedSelector(selector string) bool {
	trimmed := strings.TrimSpace(selector)
	for _, restricted := range p.RestrictedSelectors {
		if trimmed == restricted {
			return true
		}
	}
	return false
}

// ClampWait bounds a wait duration to [0, MaxWait].
func (p SafetyPolicy) ClampWait(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	if p.MaxWait > 0 && d > p.MaxWait {
		return p.MaxWait
	}
	return d
}

// Default returns the configuration defaults before file and env overrides.
func Default() *Config {
	return &Config{
		Provider:  ProviderOpenAI,
		Host:      "127.0.0.1",
		Port:      0,
		LogLevel:  "info",
		LogFormat: "json",
		Safety:    DefaultSafetyPolicy(),
	}
}

// ApplyEnv overlays environment variables onto the configuration.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("AGENT_MODEL_PROVIDER"); v != "" {
		c.Provider = normalizeProvider(v)
	} else {
		c.Provider = normalizeProvider(c.Provider)
	}
	if v := os.Getenv("AGENT_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.AnthropicKey = v
	}
	if v := os.Getenv("GOOGLE_GENERATIVE_AI_API_KEY"); v != "" {
		c.GoogleKey = v
	} else if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.GoogleKey = v
	}
	if v := os.Getenv("AGENT_SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 0 || port > 65535 {
			return fmt.Errorf("invalid AGENT_SERVER_PORT %q", v)
		}
		c.Port = port
	}
	if v := os.Getenv("AGENT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("AGENT_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv("AGENT_OTLP_ENDPOINT"); v != "" {
		c.OTLPEndpoint = v
	}
	if v := os.Getenv("AGENT_BROWSER_DEBUG_URL"); v != "" {
		c.BrowserDebugURL = v
	}
	return nil
}

// PlannerKey returns the credential for the selected provider.
func (c *Config) PlannerKey() string {
	switch c.Provider {
	case ProviderAnthropic:
		return c.AnthropicKey
	case ProviderGemini:
		return c.GoogleKey
	default:
		return c.OpenAIKey
	}
}

// PlannerModel returns the configured model, falling back to the provider
// default.
func (c *Config) PlannerModel() string {
	if c.Model != "" {
		return c.Model
	}
	switch c.Provider {
	case ProviderAnthropic:
		return DefaultAnthropicModel
	case ProviderGemini:
		return DefaultGeminiModel
	default:
		return DefaultOpenAIModel
	}
}

// HasPlannerCredentials reports whether the selected provider has an API key.
func (c *Config) HasPlannerCredentials() bool {
	return c.PlannerKey() != ""
}

func normalizeProvider(provider string) string {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderAnthropic:
		return ProviderAnthropic
	case ProviderGemini, "google":
		return ProviderGemini
	case ProviderOpenAI, "":
		return ProviderOpenAI
	default:
		return ProviderOpenAI
	}
}
