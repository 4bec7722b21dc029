package cmd

import (
	"github.com/sean-lai-sh/agent-manager/internal/machine"
	"github.com/spf13/cobra"
)

var retryCmd = &cobra.Command{
	Use:   "retry [task-id...]",
	Short: "Retry failed execution tasks",
	Long: `Reset failed execution tasks to pending and dispatch them again.
Without arguments every failed task is retried. When the project
requires retry approval (the default), the tasks are parked behind an
execution_retry approval instead of dispatching immediately.`,
	RunE: runRetry,
}

func init() {
	rootCmd.AddCommand(retryCmd)
}

func runRetry(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	res, err := rt.orch.HandleIntent(cmd.Context(), machine.RetryTasks{TaskIDs: args})
	if err != nil {
		return err
	}

	printTransition(res)
	return nil
}
