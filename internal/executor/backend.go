package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/sean-lai-sh/agent-manager/internal/config"
	"github.com/sean-lai-sh/agent-manager/internal/errors"
)

// BackendName identifies a supported executor backend.
type BackendName string

const (
	BackendCLI    BackendName = "cli"
	BackendManual BackendName = "manual"
)

// ErrNoResult is returned by backends that only record the dispatch.
// The task stays in flight until a result envelope arrives out of band,
// so callers must not synthesize a failure result for it.
var ErrNoResult = errors.New("no result will be produced by this backend")

// Backend executes one task envelope and returns the result envelope.
// Implementations must honor ctx cancellation.
type Backend interface {
	Name() string
	Execute(ctx context.Context, env TaskEnvelope) (ResultEnvelope, error)
}

// NewFromConfig builds an executor backend from configuration.
func NewFromConfig(cfg *config.ExecutorConfig) (Backend, error) {
	if cfg == nil {
		return nil, errors.NewValidationError("missing executor config")
	}

	switch BackendName(strings.ToLower(cfg.Backend)) {
	case BackendManual, "":
		return NewManualBackend(), nil
	case BackendCLI:
		return NewCLIBackend(cfg)
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownBackend, cfg.Backend)
	}
}
