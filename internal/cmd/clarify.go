package cmd

import (
	"fmt"

	"github.com/sean-lai-sh/agent-manager/internal/machine"
	"github.com/sean-lai-sh/agent-manager/internal/project"
	"github.com/spf13/cobra"
)

var clarifyCmd = &cobra.Command{
	Use:   "clarify <question> [question...]",
	Short: "Record clarifying questions raised outside the planner",
	Long: `Record one or more questions against the project, as if the planner
had asked them. Useful when a human reviewer spots an open scope
question the planner missed. The project moves to
awaiting_clarification until the questions are answered.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClarify,
}

var clarifyNotes []string

func init() {
	rootCmd.AddCommand(clarifyCmd)

	clarifyCmd.Flags().StringArrayVar(&clarifyNotes, "note", nil, "Free-form discussion note recorded with the questions (repeatable)")
}

func runClarify(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	res, err := rt.orch.HandleIntent(cmd.Context(), machine.RequestClarifications{
		Questions:  args,
		Discussion: clarifyNotes,
	})
	if err != nil {
		return err
	}

	printTransition(res)
	for _, c := range res.State.Clarifications {
		if c.Status == project.ClarificationOpen {
			fmt.Printf("  [%s] %d open question(s)\n", c.ID, len(c.Questions))
		}
	}
	return nil
}
