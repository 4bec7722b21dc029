package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete agent manager configuration
type Config struct {
	Planner  PlannerConfig  `mapstructure:"planner"`
	Executor ExecutorConfig `mapstructure:"executor"`
	Approval ApprovalConfig `mapstructure:"approval"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	TUI      TUIConfig      `mapstructure:"tui"`
	Paths    PathsConfig    `mapstructure:"paths"`
}

// PlannerConfig controls the LLM backend that drives planning
type PlannerConfig struct {
	// Backend selects which backend produces plans
	// Options: "anthropic", "openai", "gemini", "cli"
	Backend string `mapstructure:"backend" validate:"oneof=anthropic openai gemini cli"`
	// Model is the model identifier passed to the backend (default: "claude-sonnet-4-5")
	Model string `mapstructure:"model" validate:"required"`
	// APIKeyEnv names the environment variable holding the API key.
	// The key itself never appears in config files.
	APIKeyEnv string `mapstructure:"api_key_env"`
	// MaxTokens caps the planner response length
	MaxTokens int `mapstructure:"max_tokens" validate:"min=1,max=200000"`
	// Temperature controls sampling randomness (0.0 to 2.0)
	Temperature float64 `mapstructure:"temperature" validate:"min=0,max=2"`
	// TimeoutSeconds bounds a single planner call
	TimeoutSeconds int `mapstructure:"timeout_seconds" validate:"min=1,max=3600"`
	// Mode selects the prompt flavor: "conversation" (default) or "checklist"
	Mode string `mapstructure:"mode" validate:"omitempty,oneof=conversation checklist"`
	// CLICommand is the command to run when backend is "cli".
	// The prompt is written to stdin and the response read from stdout.
	CLICommand string `mapstructure:"cli_command"`
	// CLIArgs are extra arguments passed to the CLI command
	CLIArgs []string `mapstructure:"cli_args"`
	// TemplateDir optionally points at a directory with user prompt
	// template overrides (clarification.prompt, planning.prompt)
	TemplateDir string `mapstructure:"template_dir"`
}

// ExecutorConfig controls how execution tasks are run
type ExecutorConfig struct {
	// Backend selects how execution tasks run
	// Options: "cli" (spawn an agent command per task), "manual" (the
	// operator runs agents by hand and submits results via the result command)
	Backend string `mapstructure:"backend" validate:"oneof=cli manual"`
	// Command is the agent command to spawn per task when backend is "cli".
	// The task envelope is written to stdin as JSON and the result envelope
	// read from stdout.
	Command string `mapstructure:"command"`
	// Args are extra arguments passed to the agent command
	Args []string `mapstructure:"args"`
	// UsePTY runs the agent command under a pseudo-terminal. Some agent
	// CLIs refuse to run without one.
	UsePTY bool `mapstructure:"use_pty"`
	// WorkDir is the working directory for spawned agents (default: current directory)
	WorkDir string `mapstructure:"work_dir"`
	// TimeoutMinutes bounds a single execution task (0 = no limit)
	TimeoutMinutes int `mapstructure:"timeout_minutes" validate:"min=0,max=1440"`
	// MaxParallel is the maximum number of concurrently running agents (default: 3)
	MaxParallel int `mapstructure:"max_parallel" validate:"min=1,max=20"`
}

// ApprovalConfig controls which actions are gated behind explicit approval
type ApprovalConfig struct {
	// RequireExecution gates execution start behind an approval after the
	// plan itself is approved (default: false)
	RequireExecution bool `mapstructure:"require_execution"`
	// RequireRetry gates failed-task retries behind an approval (default: true)
	RequireRetry bool `mapstructure:"require_retry"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb" validate:"min=1,max=1000"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups" validate:"min=0,max=100"`
}

// TUIConfig controls the dashboard behavior
type TUIConfig struct {
	// Theme is the color theme for the dashboard (default: "default")
	// Options: "default", "monokai", "dracula", "nord"
	Theme string `mapstructure:"theme" validate:"omitempty,oneof=default monokai dracula nord"`
	// MaxDiscussionLines limits how many discussion entries the dashboard keeps
	MaxDiscussionLines int `mapstructure:"max_discussion_lines" validate:"min=0,max=100000"`
}

// PathsConfig controls where the agent manager stores data
type PathsConfig struct {
	// StateDir is the directory where project state and logs are stored.
	// If empty, defaults to $XDG_STATE_HOME/agent-manager or
	// ~/.local/state/agent-manager.
	// Supports ~ for home directory expansion.
	StateDir string `mapstructure:"state_dir"`
}

// ResolveStateDir returns the resolved state directory path.
// If StateDir is empty, it returns the default XDG state directory.
// If StateDir starts with ~, it expands to the user's home directory.
// If StateDir is a relative path, it's resolved relative to baseDir.
func (p *PathsConfig) ResolveStateDir(baseDir string) string {
	if p.StateDir == "" {
		return DefaultStateDir()
	}

	path := p.StateDir

	// Expand ~ to home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	// If relative path, resolve relative to baseDir
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}

	return path
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Planner: PlannerConfig{
			Backend:        "anthropic",
			Model:          "claude-sonnet-4-5",
			APIKeyEnv:      "ANTHROPIC_API_KEY",
			MaxTokens:      8192,
			Temperature:    0.2,
			TimeoutSeconds: 120,
			Mode:           "conversation",
			CLICommand:     "",
			CLIArgs:        []string{},
			TemplateDir:    "",
		},
		Executor: ExecutorConfig{
			Backend:        "manual", // Safe default: no commands spawned until configured
			Command:        "",
			Args:           []string{},
			UsePTY:         false,
			WorkDir:        "",
			TimeoutMinutes: 30,
			MaxParallel:    3,
		},
		Approval: ApprovalConfig{
			RequireExecution: false,
			RequireRetry:     true,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		TUI: TUIConfig{
			Theme:              "default",
			MaxDiscussionLines: 500,
		},
		Paths: PathsConfig{
			StateDir: "", // Empty means use the XDG default
		},
	}
}

// Timeout returns the planner call timeout as a time.Duration
func (c *PlannerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Timeout returns the execution task timeout as a time.Duration (0 means disabled)
func (c *ExecutorConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMinutes) * time.Minute
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Planner defaults
	viper.SetDefault("planner.backend", defaults.Planner.Backend)
	viper.SetDefault("planner.model", defaults.Planner.Model)
	viper.SetDefault("planner.api_key_env", defaults.Planner.APIKeyEnv)
	viper.SetDefault("planner.max_tokens", defaults.Planner.MaxTokens)
	viper.SetDefault("planner.temperature", defaults.Planner.Temperature)
	viper.SetDefault("planner.timeout_seconds", defaults.Planner.TimeoutSeconds)
	viper.SetDefault("planner.mode", defaults.Planner.Mode)
	viper.SetDefault("planner.cli_command", defaults.Planner.CLICommand)
	viper.SetDefault("planner.cli_args", defaults.Planner.CLIArgs)
	viper.SetDefault("planner.template_dir", defaults.Planner.TemplateDir)

	// Executor defaults
	viper.SetDefault("executor.backend", defaults.Executor.Backend)
	viper.SetDefault("executor.command", defaults.Executor.Command)
	viper.SetDefault("executor.args", defaults.Executor.Args)
	viper.SetDefault("executor.use_pty", defaults.Executor.UsePTY)
	viper.SetDefault("executor.work_dir", defaults.Executor.WorkDir)
	viper.SetDefault("executor.timeout_minutes", defaults.Executor.TimeoutMinutes)
	viper.SetDefault("executor.max_parallel", defaults.Executor.MaxParallel)

	// Approval defaults
	viper.SetDefault("approval.require_execution", defaults.Approval.RequireExecution)
	viper.SetDefault("approval.require_retry", defaults.Approval.RequireRetry)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)

	// TUI defaults
	viper.SetDefault("tui.theme", defaults.TUI.Theme)
	viper.SetDefault("tui.max_discussion_lines", defaults.TUI.MaxDiscussionLines)

	// Paths defaults
	viper.SetDefault("paths.state_dir", defaults.Paths.StateDir)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "agent-manager")
	}
	// Fall back to ~/.config/agent-manager
	home, err := os.UserHomeDir()
	if err != nil {
		return ".agent-manager"
	}
	return filepath.Join(home, ".config", "agent-manager")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultStateDir returns the default directory for project state
func DefaultStateDir() string {
	// Check XDG_STATE_HOME first
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "agent-manager")
	}
	// Fall back to ~/.local/state/agent-manager
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".agent-manager", "state")
	}
	return filepath.Join(home, ".local", "state", "agent-manager")
}

// ValidPlannerBackends returns the list of valid planner backend values
func ValidPlannerBackends() []string {
	return []string{"anthropic", "openai", "gemini", "cli"}
}

// IsValidPlannerBackend checks if the given backend is valid
func IsValidPlannerBackend(backend string) bool {
	for _, valid := range ValidPlannerBackends() {
		if backend == valid {
			return true
		}
	}
	return false
}

// ValidExecutorBackends returns the list of valid executor backend values
func ValidExecutorBackends() []string {
	return []string{"cli", "manual"}
}

// IsValidExecutorBackend checks if the given backend is valid
func IsValidExecutorBackend(backend string) bool {
	for _, valid := range ValidExecutorBackends() {
		if backend == valid {
			return true
		}
	}
	return false
}
