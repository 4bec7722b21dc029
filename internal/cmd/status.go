package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/sean-lai-sh/agent-manager/internal/config"
	"github.com/sean-lai-sh/agent-manager/internal/errors"
	"github.com/sean-lai-sh/agent-manager/internal/project"
	"github.com/sean-lai-sh/agent-manager/internal/store"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current project state",
	Long: `Display the project phase, tasks, approvals, open questions, and
execution progress. Reads the committed state document without taking
the process lock, so it is safe alongside a running dashboard.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	st, err := store.NewFileStore(stateDir(cfg))
	if err != nil {
		return err
	}

	state, err := st.Load(cmd.Context())
	if errors.Is(err, errors.ErrStateNotFound) {
		fmt.Println("No project found. Run `agent-manager init <goal>` to create one.")
		return nil
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		out, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	printState(state)
	return nil
}

func printState(state *project.State) {
	fmt.Printf("Project: %s\n", state.ProjectID)
	fmt.Printf("Phase: %s\n", state.Phase)
	fmt.Printf("Version: %d\n", state.Version)
	fmt.Printf("Updated: %s\n", state.UpdatedAt.Format("2006-01-02 15:04:05"))
	if state.Goal != "" {
		fmt.Printf("Goal: %s\n", state.Goal)
	}

	if plan, ok := state.Plans[state.CurrentPlanID]; ok {
		fmt.Printf("\nPlan %s: %d milestones, %d features, %d tasks\n",
			plan.ID, len(plan.Roadmap), len(plan.Features), len(plan.Tasks))
	}

	if len(state.PendingTasks) > 0 {
		fmt.Printf("\nTasks:\n")
		for _, t := range state.PendingTasks {
			title := t.Stage()
			if v, ok := t.Input["title"].(string); ok {
				title = v
			}
			fmt.Printf("  [%s] %-10s %-12s %s\n", t.ID, t.Type, t.Status, title)
		}
	}

	if state.Execution != nil && state.Execution.Summary.Total > 0 {
		s := state.Execution.Summary
		fmt.Printf("\nExecution: %d/%d completed, %d failed, %d running\n",
			s.Completed, s.Total, s.Failed, s.InProgress)
		for _, f := range state.Execution.Failures {
			fmt.Printf("  failed %s: %s\n", f.TaskID, f.Reason)
		}
	}

	for _, a := range state.Approvals {
		fmt.Printf("\nPending approval [%s]: %s", a.ID, a.Type)
		if a.PlanID != "" {
			fmt.Printf(" for %s", a.PlanID)
		}
		fmt.Println()
	}

	for _, c := range state.Clarifications {
		if c.Status != project.ClarificationOpen {
			continue
		}
		fmt.Printf("\nOpen questions [%s]:\n", c.ID)
		for i, q := range c.Questions {
			fmt.Printf("  %d. %s\n", i+1, q)
		}
	}
}
