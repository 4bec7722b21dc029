package cmd

import (
	"fmt"

	"github.com/sean-lai-sh/agent-manager/internal/machine"
	"github.com/sean-lai-sh/agent-manager/internal/project"
	"github.com/spf13/cobra"
)

var answerCmd = &cobra.Command{
	Use:   "answer <answer> [answer...]",
	Short: "Answer the open clarification questions",
	Long: `Answer the oldest open clarification record and hand the project back
to the planner. Answers align positionally with the questions; pass an
empty string to skip one.

Use --clarification to target a specific record instead of the oldest.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnswer,
}

var answerClarificationID string

func init() {
	rootCmd.AddCommand(answerCmd)

	answerCmd.Flags().StringVar(&answerClarificationID, "clarification", "", "Clarification record ID (default: oldest open record)")
}

func runAnswer(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	id := answerClarificationID
	if id == "" {
		st := rt.orch.State()
		if st == nil {
			return fmt.Errorf("no project found")
		}
		for _, c := range st.Clarifications {
			if c.Status == project.ClarificationOpen {
				id = c.ID
				break
			}
		}
		if id == "" {
			return fmt.Errorf("no open clarification to answer")
		}
	}

	res, err := rt.orch.HandleIntent(cmd.Context(), machine.AnswerClarifications{
		ClarificationID: id,
		Answers:         args,
	})
	if err != nil {
		return err
	}

	printTransition(res)
	return nil
}
