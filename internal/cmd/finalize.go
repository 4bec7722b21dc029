package cmd

import (
	"github.com/sean-lai-sh/agent-manager/internal/machine"
	"github.com/spf13/cobra"
)

var finalizeCmd = &cobra.Command{
	Use:   "finalize",
	Short: "Close open questions and request a final plan",
	Long: `Force-resolve every open clarification and ask the planner for a final
plan with whatever scope has been gathered so far. Use this to stop a
question loop and move on.`,
	Args: cobra.NoArgs,
	RunE: runFinalize,
}

var finalizeNote string

func init() {
	rootCmd.AddCommand(finalizeCmd)

	finalizeCmd.Flags().StringVar(&finalizeNote, "note", "", "Note passed to the planner with the finalize request")
}

func runFinalize(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	res, err := rt.orch.HandleIntent(cmd.Context(), machine.FinalizeScope{Note: finalizeNote})
	if err != nil {
		return err
	}

	printTransition(res)
	return nil
}
