package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sean-lai-sh/agent-manager/internal/config"
	"github.com/sean-lai-sh/agent-manager/internal/errors"
)

// BackendName identifies a supported planner backend.
type BackendName string

const (
	BackendAnthropic BackendName = "anthropic"
	BackendOpenAI    BackendName = "openai"
	BackendGemini    BackendName = "gemini"
	BackendCLI       BackendName = "cli"
)

// Request is one completion request. Prompt is the fully rendered
// planner prompt; the remaining fields override the backend's
// configured defaults when non-zero.
type Request struct {
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// Backend produces a completion for a planner prompt. Implementations
// must honor ctx cancellation; the dispatcher applies the configured
// planner timeout via the context.
type Backend interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// NewFromConfig builds a planner backend from configuration.
func NewFromConfig(cfg *config.PlannerConfig) (Backend, error) {
	if cfg == nil {
		return nil, errors.NewValidationError("missing planner config")
	}

	switch BackendName(strings.ToLower(cfg.Backend)) {
	case BackendAnthropic, "":
		return NewAnthropicBackend(cfg)
	case BackendOpenAI:
		return NewOpenAIBackend(cfg)
	case BackendGemini:
		return NewGeminiBackend(cfg)
	case BackendCLI:
		return NewCLIBackend(cfg)
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownBackend, cfg.Backend)
	}
}

// apiKeyFromEnv resolves the API key named by the config. Keys live in
// the environment only; they never appear in config files or state.
func apiKeyFromEnv(envName string) (string, error) {
	if envName == "" {
		return "", errors.NewValidationError("planner api_key_env is not set").WithField("planner.api_key_env")
	}
	key := os.Getenv(envName)
	if key == "" {
		return "", fmt.Errorf("%w: $%s is empty", errors.ErrMissingAPIKey, envName)
	}
	return key, nil
}
