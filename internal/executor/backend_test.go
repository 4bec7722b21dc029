package executor

import (
	"context"
	"runtime"
	"testing"

	"github.com/sean-lai-sh/agent-manager/internal/config"
	"github.com/sean-lai-sh/agent-manager/internal/errors"
)

func executorConfig(backend string) *config.ExecutorConfig {
	cfg := config.Default().Executor
	cfg.Backend = backend
	cfg.Command = "cat"
	return &cfg
}

func TestNewFromConfigSelection(t *testing.T) {
	tests := []struct {
		backend string
		want    string
	}{
		{"manual", "manual"},
		{"", "manual"},
		{"cli", "cli"},
		{"CLI", "cli"},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			b, err := NewFromConfig(executorConfig(tt.backend))
			if err != nil {
				t.Fatalf("NewFromConfig(%q) error: %v", tt.backend, err)
			}
			if b.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", b.Name(), tt.want)
			}
		})
	}
}

func TestNewFromConfigUnknownBackend(t *testing.T) {
	_, err := NewFromConfig(executorConfig("docker"))
	if !errors.Is(err, errors.ErrUnknownBackend) {
		t.Errorf("error = %v, want ErrUnknownBackend", err)
	}
}

func TestNewCLIBackendRequiresCommand(t *testing.T) {
	cfg := executorConfig("cli")
	cfg.Command = ""
	if _, err := NewCLIBackend(cfg); err == nil {
		t.Error("expected error for missing command")
	}
}

func TestManualBackendRecordsDispatch(t *testing.T) {
	b := NewManualBackend()

	_, err := b.Execute(context.Background(), TaskEnvelope{TaskID: "t1"})
	if !errors.Is(err, ErrNoResult) {
		t.Fatalf("error = %v, want ErrNoResult", err)
	}

	got := b.Dispatched()
	if len(got) != 1 || got[0].TaskID != "t1" {
		t.Errorf("Dispatched = %+v, want one envelope for t1", got)
	}
}

func TestCLIBackendExecute(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test relies on POSIX tools")
	}

	// cat echoes the task envelope back; envelope JSON has no status
	// field, so it parses as free text and becomes a success artifact.
	b := &CLIBackend{command: "cat"}
	res, err := b.Execute(context.Background(), TaskEnvelope{
		TaskID: "t1",
		Inputs: map[string]any{"title": "x"},
	})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if !res.Success() {
		t.Errorf("status = %q, want success", res.Status)
	}
	if len(res.Artifacts) != 1 {
		t.Fatalf("artifacts = %v, want the raw output", res.Artifacts)
	}
}

func TestCLIBackendExecuteFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test relies on POSIX tools")
	}

	b := &CLIBackend{command: "false"}
	_, err := b.Execute(context.Background(), TaskEnvelope{TaskID: "t1"})
	if err == nil {
		t.Fatal("expected error from failing command")
	}
	var backendErr *errors.BackendError
	if !errors.As(err, &backendErr) {
		t.Errorf("error = %T, want *errors.BackendError", err)
	}
}
