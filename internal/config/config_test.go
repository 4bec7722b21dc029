package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	// Verify default planner config
	if cfg.Planner.Backend != "anthropic" {
		t.Errorf("Planner.Backend = %q, want %q", cfg.Planner.Backend, "anthropic")
	}
	if cfg.Planner.Model == "" {
		t.Error("Planner.Model should not be empty by default")
	}
	if cfg.Planner.APIKeyEnv != "ANTHROPIC_API_KEY" {
		t.Errorf("Planner.APIKeyEnv = %q, want %q", cfg.Planner.APIKeyEnv, "ANTHROPIC_API_KEY")
	}
	if cfg.Planner.MaxTokens != 8192 {
		t.Errorf("Planner.MaxTokens = %d, want 8192", cfg.Planner.MaxTokens)
	}
	if cfg.Planner.Mode != "conversation" {
		t.Errorf("Planner.Mode = %q, want %q", cfg.Planner.Mode, "conversation")
	}

	// Verify default executor config
	if cfg.Executor.Backend != "manual" {
		t.Errorf("Executor.Backend = %q, want %q", cfg.Executor.Backend, "manual")
	}
	if cfg.Executor.MaxParallel != 3 {
		t.Errorf("Executor.MaxParallel = %d, want 3", cfg.Executor.MaxParallel)
	}
	if cfg.Executor.UsePTY {
		t.Error("Executor.UsePTY should be false by default")
	}

	// Verify default approval config
	if cfg.Approval.RequireExecution {
		t.Error("Approval.RequireExecution should be false by default")
	}
	if !cfg.Approval.RequireRetry {
		t.Error("Approval.RequireRetry should be true by default")
	}

	// Verify default logging config
	if !cfg.Logging.Enabled {
		t.Error("Logging.Enabled should be true by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.MaxSizeMB != 10 {
		t.Errorf("Logging.MaxSizeMB = %d, want 10", cfg.Logging.MaxSizeMB)
	}

	// Verify default TUI config
	if cfg.TUI.Theme != "default" {
		t.Errorf("TUI.Theme = %q, want %q", cfg.TUI.Theme, "default")
	}
	if cfg.TUI.MaxDiscussionLines != 500 {
		t.Errorf("TUI.MaxDiscussionLines = %d, want 500", cfg.TUI.MaxDiscussionLines)
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()

	if errs := cfg.Validate(); len(errs) > 0 {
		t.Errorf("Default() should produce a valid config, got: %v", ValidationErrors(errs))
	}
}

func TestPlannerConfig_Timeout(t *testing.T) {
	tests := []struct {
		seconds  int
		expected time.Duration
	}{
		{120, 2 * time.Minute},
		{30, 30 * time.Second},
		{1, 1 * time.Second},
		{0, 0},
	}

	for _, tt := range tests {
		cfg := PlannerConfig{TimeoutSeconds: tt.seconds}
		result := cfg.Timeout()
		if result != tt.expected {
			t.Errorf("Timeout() with %ds = %v, want %v", tt.seconds, result, tt.expected)
		}
	}
}

func TestExecutorConfig_Timeout(t *testing.T) {
	tests := []struct {
		minutes  int
		expected time.Duration
	}{
		{30, 30 * time.Minute},
		{1, 1 * time.Minute},
		{0, 0},
	}

	for _, tt := range tests {
		cfg := ExecutorConfig{TimeoutMinutes: tt.minutes}
		result := cfg.Timeout()
		if result != tt.expected {
			t.Errorf("Timeout() with %dm = %v, want %v", tt.minutes, result, tt.expected)
		}
	}
}

func TestValidPlannerBackends(t *testing.T) {
	backends := ValidPlannerBackends()

	expected := []string{"anthropic", "openai", "gemini", "cli"}
	if len(backends) != len(expected) {
		t.Errorf("ValidPlannerBackends() length = %d, want %d", len(backends), len(expected))
	}

	for i, backend := range expected {
		if backends[i] != backend {
			t.Errorf("ValidPlannerBackends()[%d] = %q, want %q", i, backends[i], backend)
		}
	}
}

func TestIsValidPlannerBackend(t *testing.T) {
	tests := []struct {
		backend string
		valid   bool
	}{
		{"anthropic", true},
		{"openai", true},
		{"gemini", true},
		{"cli", true},
		{"invalid", false},
		{"", false},
		{"Anthropic", false}, // Case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			result := IsValidPlannerBackend(tt.backend)
			if result != tt.valid {
				t.Errorf("IsValidPlannerBackend(%q) = %v, want %v", tt.backend, result, tt.valid)
			}
		})
	}
}

func TestIsValidExecutorBackend(t *testing.T) {
	tests := []struct {
		backend string
		valid   bool
	}{
		{"cli", true},
		{"manual", true},
		{"invalid", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			result := IsValidExecutorBackend(tt.backend)
			if result != tt.valid {
				t.Errorf("IsValidExecutorBackend(%q) = %v, want %v", tt.backend, result, tt.valid)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	// Test with XDG_CONFIG_HOME set
	t.Run("with XDG_CONFIG_HOME", func(t *testing.T) {
		original := os.Getenv("XDG_CONFIG_HOME")
		defer func() { _ = os.Setenv("XDG_CONFIG_HOME", original) }()

		_ = os.Setenv("XDG_CONFIG_HOME", "/custom/config")
		result := ConfigDir()
		expected := "/custom/config/agent-manager"
		if result != expected {
			t.Errorf("ConfigDir() = %q, want %q", result, expected)
		}
	})

	// Test without XDG_CONFIG_HOME
	t.Run("without XDG_CONFIG_HOME", func(t *testing.T) {
		original := os.Getenv("XDG_CONFIG_HOME")
		defer func() { _ = os.Setenv("XDG_CONFIG_HOME", original) }()

		_ = os.Setenv("XDG_CONFIG_HOME", "")
		result := ConfigDir()

		// Should be based on home directory
		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, ".config", "agent-manager")
		if result != expected {
			t.Errorf("ConfigDir() = %q, want %q", result, expected)
		}
	})
}

func TestConfigFile(t *testing.T) {
	original := os.Getenv("XDG_CONFIG_HOME")
	defer func() { _ = os.Setenv("XDG_CONFIG_HOME", original) }()

	_ = os.Setenv("XDG_CONFIG_HOME", "/custom/config")
	result := ConfigFile()
	expected := "/custom/config/agent-manager/config.yaml"
	if result != expected {
		t.Errorf("ConfigFile() = %q, want %q", result, expected)
	}
}

func TestDefaultStateDir(t *testing.T) {
	t.Run("with XDG_STATE_HOME", func(t *testing.T) {
		original := os.Getenv("XDG_STATE_HOME")
		defer func() { _ = os.Setenv("XDG_STATE_HOME", original) }()

		_ = os.Setenv("XDG_STATE_HOME", "/custom/state")
		result := DefaultStateDir()
		expected := "/custom/state/agent-manager"
		if result != expected {
			t.Errorf("DefaultStateDir() = %q, want %q", result, expected)
		}
	})

	t.Run("without XDG_STATE_HOME", func(t *testing.T) {
		original := os.Getenv("XDG_STATE_HOME")
		defer func() { _ = os.Setenv("XDG_STATE_HOME", original) }()

		_ = os.Setenv("XDG_STATE_HOME", "")
		result := DefaultStateDir()

		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, ".local", "state", "agent-manager")
		if result != expected {
			t.Errorf("DefaultStateDir() = %q, want %q", result, expected)
		}
	})
}

func TestResolveStateDir(t *testing.T) {
	t.Run("empty uses XDG default", func(t *testing.T) {
		original := os.Getenv("XDG_STATE_HOME")
		defer func() { _ = os.Setenv("XDG_STATE_HOME", original) }()
		_ = os.Setenv("XDG_STATE_HOME", "/custom/state")

		p := PathsConfig{StateDir: ""}
		result := p.ResolveStateDir("/base")
		if result != "/custom/state/agent-manager" {
			t.Errorf("ResolveStateDir() = %q, want %q", result, "/custom/state/agent-manager")
		}
	})

	t.Run("absolute path used as-is", func(t *testing.T) {
		p := PathsConfig{StateDir: "/var/lib/agents"}
		result := p.ResolveStateDir("/base")
		if result != "/var/lib/agents" {
			t.Errorf("ResolveStateDir() = %q, want %q", result, "/var/lib/agents")
		}
	})

	t.Run("relative path resolved against base", func(t *testing.T) {
		p := PathsConfig{StateDir: "state"}
		result := p.ResolveStateDir("/base")
		if result != filepath.Join("/base", "state") {
			t.Errorf("ResolveStateDir() = %q, want %q", result, filepath.Join("/base", "state"))
		}
	})

	t.Run("tilde expands to home", func(t *testing.T) {
		home, err := os.UserHomeDir()
		if err != nil {
			t.Skip("no home directory available")
		}

		p := PathsConfig{StateDir: "~/agents"}
		result := p.ResolveStateDir("/base")
		if result != filepath.Join(home, "agents") {
			t.Errorf("ResolveStateDir() = %q, want %q", result, filepath.Join(home, "agents"))
		}
	})
}

func TestGet(t *testing.T) {
	// Set defaults in viper first (normally done by cmd init)
	SetDefaults()

	// Get() should return defaults when no config file exists
	cfg := Get()
	if cfg == nil {
		t.Fatal("Get() returned nil")
	}

	// Should have default values
	if cfg.Planner.Backend != "anthropic" {
		t.Errorf("Get().Planner.Backend = %q, want %q", cfg.Planner.Backend, "anthropic")
	}
	if cfg.Executor.Backend != "manual" {
		t.Errorf("Get().Executor.Backend = %q, want %q", cfg.Executor.Backend, "manual")
	}
}

func TestLoad(t *testing.T) {
	SetDefaults()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with defaults failed: %v", err)
	}

	if cfg.Planner.MaxTokens != 8192 {
		t.Errorf("Load().Planner.MaxTokens = %d, want 8192", cfg.Planner.MaxTokens)
	}
	if !cfg.Approval.RequireRetry {
		t.Error("Load().Approval.RequireRetry should be true by default")
	}
}
