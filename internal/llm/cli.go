package llm

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/sean-lai-sh/agent-manager/internal/config"
	"github.com/sean-lai-sh/agent-manager/internal/errors"
)

// CLIBackend completes prompts by spawning a local agent CLI per call.
// The prompt is written to stdin and the completion read from stdout,
// which is what `claude --print` and similar agent CLIs speak.
type CLIBackend struct {
	command string
	args    []string
}

// NewCLIBackend builds the backend from config.
func NewCLIBackend(cfg *config.PlannerConfig) (*CLIBackend, error) {
	if strings.TrimSpace(cfg.CLICommand) == "" {
		return nil, errors.NewValidationError("planner cli_command is required for the cli backend").WithField("planner.cli_command")
	}
	return &CLIBackend{
		command: cfg.CLICommand,
		args:    append([]string(nil), cfg.CLIArgs...),
	}, nil
}

func (b *CLIBackend) Name() string { return string(BackendCLI) }

// Complete runs one subprocess invocation. Stderr is folded into the
// error on failure so agent CLI diagnostics are not lost.
func (b *CLIBackend) Complete(ctx context.Context, req Request) (string, error) {
	cmd := exec.CommandContext(ctx, b.command, b.args...)
	cmd.Stdin = strings.NewReader(req.Prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := "planner command failed"
		if s := strings.TrimSpace(stderr.String()); s != "" {
			msg += ": " + s
		}
		return "", errors.NewBackendError(msg, err).WithBackend(b.Name())
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", errors.NewBackendError("planner command produced no output", errors.ErrEmptyResponse).WithBackend(b.Name())
	}
	return out, nil
}
