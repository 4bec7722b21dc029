package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sean-lai-sh/agent-manager/internal/executor"
	"github.com/sean-lai-sh/agent-manager/internal/machine"
	"github.com/sean-lai-sh/agent-manager/internal/project"
	"github.com/spf13/cobra"
)

var resultCmd = &cobra.Command{
	Use:   "result <task-id> [file]",
	Short: "Submit an agent result for an in-flight task",
	Long: `Submit the result envelope for a dispatched task. This is how the
manual executor backend completes tasks: the operator runs the agent by
hand and feeds its output back here.

The envelope is read from the given file, or from stdin when omitted.
A JSON result envelope ({"status": "success", "artifacts": [...]}) is
honored as-is; any other text is recorded as a successful result whose
sole artifact is the raw text.

Examples:
  # From a file
  agent-manager result task-1a2b3c result.json

  # Piped from the agent itself
  my-agent < task.json | agent-manager result task-1a2b3c

  # Report a failure by hand
  echo '{"status":"failure","error":"build broke"}' | agent-manager result task-1a2b3c`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runResult,
}

func init() {
	rootCmd.AddCommand(resultCmd)
}

func runResult(cmd *cobra.Command, args []string) error {
	taskID := args[0]

	var raw []byte
	var err error
	if len(args) == 2 {
		raw, err = os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read result file: %w", err)
		}
	} else {
		raw, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read result from stdin: %w", err)
		}
	}

	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	in := machine.AgentResult{TaskID: taskID, Status: project.ResultSuccess}
	if st := rt.orch.State(); st != nil {
		if t := st.Task(taskID); t != nil && t.Type == project.TaskPlanning {
			// Planning results carry the raw planner response.
			in.Output = string(raw)
		}
	}
	if in.Output == nil {
		env := executor.ParseResult(taskID, raw)
		in.Artifacts = env.Artifacts
		in.Logs = env.Logs
		in.Error = env.Error
		if !env.Success() {
			in.Status = project.ResultFailure
		}
	}

	res, err := rt.orch.HandleIntent(cmd.Context(), in)
	if err != nil {
		return err
	}

	printTransition(res)
	return nil
}
