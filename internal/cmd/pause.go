package cmd

import (
	"github.com/sean-lai-sh/agent-manager/internal/machine"
	"github.com/spf13/cobra"
)

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause execution",
	Long: `Pause the project. No new tasks are dispatched; agents already
running finish and their results are still recorded. Resume with run
or retry.`,
	Args: cobra.NoArgs,
	RunE: runPause,
}

var pauseReason string

func init() {
	rootCmd.AddCommand(pauseCmd)

	pauseCmd.Flags().StringVar(&pauseReason, "reason", "", "Why execution is being paused")
}

func runPause(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	res, err := rt.orch.HandleIntent(cmd.Context(), machine.PauseExecution{Reason: pauseReason})
	if err != nil {
		return err
	}

	printTransition(res)
	return nil
}
