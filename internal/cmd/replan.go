package cmd

import (
	"github.com/sean-lai-sh/agent-manager/internal/machine"
	"github.com/spf13/cobra"
)

var replanCmd = &cobra.Command{
	Use:   "replan",
	Short: "Discard the current direction and plan again",
	Long: `Ask the planner for a fresh plan. Pending approvals for the old
direction are withdrawn; adopted plans remain in history. Useful after
a rejected plan or a failed execution run.`,
	Args: cobra.NoArgs,
	RunE: runReplan,
}

var replanReason string

func init() {
	rootCmd.AddCommand(replanCmd)

	replanCmd.Flags().StringVar(&replanReason, "reason", "", "Why the current direction is being abandoned")
}

func runReplan(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	res, err := rt.orch.HandleIntent(cmd.Context(), machine.Replan{Reason: replanReason})
	if err != nil {
		return err
	}

	printTransition(res)
	return nil
}
