package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultSafetyPolicy(t *testing.T) {
	p := DefaultSafetyPolicy()

	if p.MaxSteps != 16 {
		t.Errorf("MaxSteps = %d, want 16", p.MaxSteps)
	}
	if p.MaxParallelTasks != 1 {
		t.Errorf("MaxParallelTasks = %d, want 1", p.MaxParallelTasks)
	}
	if p.MaxWait != 15*time.Second {
		t.Errorf("MaxWait = %v, want 15s", p.MaxWait)
	}
	if len(p.BlockedOrigins) == 0 {
		t.Error("BlockedOrigins should not be empty")
	}
	if len(p.RestrictedSelectors) == 0 {
		t.Error("RestrictedSelectors should not be empty")
	}
}

func TestIsBlockedOrigin(t *testing.T) {
	p := DefaultSafetyPolicy()

	cases := []struct {
		url  string
		want bool
	}{
		{"chrome://settings", true},
		{"CHROME://settings", true},
		{"  file:///etc/passwd", true},
		{"about:blank", true},
		{"https://example.com", false},
		{"http://chrome.example.com", false},
	}
	for _, tc := range cases {
		if got := p.IsBlockedOrigin(tc.url); got != tc.want {
			t.Errorf("IsBlockedOrigin(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}

func TestIsRestrictedSelector(t *testing.T) {
	p := DefaultSafetyPolicy()

	if !p.IsRestrictedSelector(`input[type="password"]`) {
		t.Error("password input should be restricted")
	}
	if p.IsRestrictedSelector("#search") {
		t.Error("#search should not be restricted")
	}
}

func TestClampWait(t *testing.T) {
	p := SafetyPolicy{MaxWait: 15 * time.Second}

	cases := []struct {
		in, want time.Duration
	}{
		{-time.Second, 0},
		{time.Second, time.Second},
		{15 * time.Second, 15 * time.Second},
		{150 * time.Second, 15 * time.Second},
	}
	for _, tc := range cases {
		if got := p.ClampWait(tc.in); got != tc.want {
			t.Errorf("ClampWait(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestApplyEnvProviderAliases(t *testing.T) {
	cases := []struct {
		env  string
		want string
	}{
		{"openai", ProviderOpenAI},
		{"anthropic", ProviderAnthropic},
		{"gemini", ProviderGemini},
		{"google", ProviderGemini},
		{"GOOGLE", ProviderGemini},
		{"something-else", ProviderOpenAI},
	}
	for _, tc := range cases {
		t.Setenv("AGENT_MODEL_PROVIDER", tc.env)
		cfg := Default()
		if err := cfg.ApplyEnv(); err != nil {
			t.Fatalf("ApplyEnv: %v", err)
		}
		if cfg.Provider != tc.want {
			t.Errorf("provider %q normalized to %q, want %q", tc.env, cfg.Provider, tc.want)
		}
	}
}

func TestApplyEnvGeminiKeyAlias(t *testing.T) {
	t.Setenv("GOOGLE_GENERATIVE_AI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gm-key")
	t.Setenv("AGENT_MODEL_PROVIDER", "gemini")

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.PlannerKey() != "gm-key" {
		t.Errorf("PlannerKey() = %q, want GEMINI_API_KEY alias value", cfg.PlannerKey())
	}
	if !cfg.HasPlannerCredentials() {
		t.Error("HasPlannerCredentials() = false, want true")
	}
}

func TestApplyEnvRejectsBadPort(t *testing.T) {
	t.Setenv("AGENT_SERVER_PORT", "not-a-port")
	cfg := Default()
	if err := cfg.ApplyEnv(); err == nil {
		t.Error("expected error for invalid AGENT_SERVER_PORT")
	}

	t.Setenv("AGENT_SERVER_PORT", "70000")
	cfg = Default()
	if err := cfg.ApplyEnv(); err == nil {
		t.Error("expected error for out-of-range AGENT_SERVER_PORT")
	}
}

func TestPlannerModelDefaults(t *testing.T) {
	cases := []struct {
		provider string
		want     string
	}{
		{ProviderOpenAI, DefaultOpenAIModel},
		{ProviderAnthropic, DefaultAnthropicModel},
		{ProviderGemini, DefaultGeminiModel},
	}
	for _, tc := range cases {
		cfg := &Config{Provider: tc.provider}
		if got := cfg.PlannerModel(); got != tc.want {
			t.Errorf("PlannerModel() for %s = %q, want %q", tc.provider, got, tc.want)
		}
	}

	cfg := &Config{Provider: ProviderOpenAI, Model: "gpt-4o-mini"}
	if got := cfg.PlannerModel(); got != "gpt-4o-mini" {
		t.Errorf("PlannerModel() = %q, want explicit model to win", got)
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "webpilot.yaml")
	content := []byte("provider: anthropic\nlog_level: debug\nsafety:\n  max_steps: 16\n  max_parallel_tasks: 2\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("AGENT_MODEL_PROVIDER", "")
	t.Setenv("AGENT_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != ProviderAnthropic {
		t.Errorf("Provider = %q, want anthropic from file", cfg.Provider)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want env override to win", cfg.LogLevel)
	}
	if cfg.Safety.MaxParallelTasks != 2 {
		t.Errorf("MaxParallelTasks = %d, want 2 from file", cfg.Safety.MaxParallelTasks)
	}
}

func TestLoadConfigFileFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "webpilot.yaml")
	if err := os.WriteFile(path, []byte("port: 9090\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("AGENT_CONFIG_FILE", path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090 from AGENT_CONFIG_FILE", cfg.Port)
	}
}

func TestLoadRejectsInvalidPolicy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "webpilot.yaml")
	if err := os.WriteFile(path, []byte("safety:\n  max_steps: -1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for negative max_steps")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/webpilot.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}
