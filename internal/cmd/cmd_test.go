package cmd

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}

// captureStdout captures os.Stdout during function execution; the
// commands print with fmt.Printf rather than through cobra's writer.
func captureStdout(t *testing.T, f func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

func TestRootCommand(t *testing.T) {
	if rootCmd == nil {
		t.Fatal("rootCmd is nil")
	}
	if rootCmd.Use != "agent-manager" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "agent-manager")
	}

	expectedCmds := []string{
		"init", "feature", "clarify", "answer", "finalize", "approve",
		"replan", "run", "retry", "pause", "result", "status", "dashboard", "logs",
	}
	cmdMap := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdMap[cmd.Name()] = true
	}
	for _, expected := range expectedCmds {
		if !cmdMap[expected] {
			t.Errorf("expected subcommand %q not found", expected)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		goal string
		want string
	}{
		{"build a CRM for dental practices", "build-a-crm-for-dental"},
		{"Ship it!", "ship-it"},
		{"   ", "project"},
		{"---", "project"},
		{"one", "one"},
	}

	for _, tt := range tests {
		if got := slugify(tt.goal); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.goal, got, tt.want)
		}
	}
}

func TestStatusCommand_NoProject(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	out := captureStdout(t, func() {
		if _, err := executeCommand(rootCmd, "status"); err != nil {
			t.Fatalf("status failed: %v", err)
		}
	})

	if !strings.Contains(out, "No project found") {
		t.Errorf("status output = %q, want first-run hint", out)
	}
}

func TestInitCommand_EmptyGoal(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if _, err := executeCommand(rootCmd, "init", "   "); err == nil {
		t.Error("init with blank goal should fail")
	}
}
