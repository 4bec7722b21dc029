package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os/exec"
	"strings"

	"github.com/creack/pty"

	"github.com/sean-lai-sh/agent-manager/internal/config"
	"github.com/sean-lai-sh/agent-manager/internal/errors"
)

// CLIBackend spawns one agent process per execution task. The task
// envelope is written to the process as JSON and the result envelope is
// read from its output; free-text output is accepted per ParseResult.
type CLIBackend struct {
	command string
	args    []string
	workDir string
	usePTY  bool
}

// NewCLIBackend builds the backend from config.
func NewCLIBackend(cfg *config.ExecutorConfig) (*CLIBackend, error) {
	if strings.TrimSpace(cfg.Command) == "" {
		return nil, errors.NewValidationError("executor command is required for the cli backend").WithField("executor.command")
	}
	return &CLIBackend{
		command: cfg.Command,
		args:    append([]string(nil), cfg.Args...),
		workDir: cfg.WorkDir,
		usePTY:  cfg.UsePTY,
	}, nil
}

func (b *CLIBackend) Name() string { return string(BackendCLI) }

// Execute runs the agent command to completion and parses its output.
// A non-zero exit is a backend error, not a failure envelope; the
// dispatcher maps it to a failure agent result.
func (b *CLIBackend) Execute(ctx context.Context, env TaskEnvelope) (ResultEnvelope, error) {
	payload, err := json.Marshal(env)
	if err != nil {
		return ResultEnvelope{}, errors.NewBackendError("failed to encode task envelope", err).
			WithBackend(b.Name()).WithTaskID(env.TaskID)
	}

	cmd := exec.CommandContext(ctx, b.command, b.args...)
	cmd.Dir = b.workDir

	var output []byte
	var runErr error
	if b.usePTY {
		output, runErr = b.runPTY(cmd, payload)
	} else {
		output, runErr = b.runPipes(cmd, payload)
	}
	if runErr != nil {
		msg := "agent command failed"
		if s := strings.TrimSpace(string(output)); s != "" {
			msg += ": " + lastLine(s)
		}
		return ResultEnvelope{}, errors.NewBackendError(msg, runErr).
			WithBackend(b.Name()).WithTaskID(env.TaskID)
	}

	return ParseResult(env.TaskID, output), nil
}

func (b *CLIBackend) runPipes(cmd *exec.Cmd, payload []byte) ([]byte, error) {
	cmd.Stdin = bytes.NewReader(payload)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stderr.Bytes(), err
	}
	return stdout.Bytes(), nil
}

// runPTY runs the command under a pseudo-terminal for agent CLIs that
// refuse to run without one. The envelope is written followed by EOT so
// line-disciplined readers see end of input; output is drained until
// the process exits.
func (b *CLIBackend) runPTY(cmd *exec.Cmd, payload []byte) ([]byte, error) {
	f, err := pty.Start(cmd)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err := f.Write(append(payload, '\n', 0x04)); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, err
	}

	// Reading the pty returns EIO once the child exits; treat it as EOF.
	var out bytes.Buffer
	_, copyErr := io.Copy(&out, f)

	if err := cmd.Wait(); err != nil {
		return out.Bytes(), err
	}
	if copyErr != nil && out.Len() == 0 {
		return nil, copyErr
	}
	return out.Bytes(), nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
