package cmd

import (
	"fmt"
	"strings"

	"github.com/sean-lai-sh/agent-manager/internal/machine"
	"github.com/sean-lai-sh/agent-manager/internal/project"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init <goal>",
	Short: "Create a new project from a goal",
	Long: `Create a new project and kick off the first planner conversation.
The planner will either ask clarifying questions or, if the goal and
context already cover the scope, propose a plan for approval.

Examples:
  # Minimal: just a goal
  agent-manager init "build a CRM for dental practices"

  # With structured context up front
  agent-manager init "build a CRM for dental practices" \
    --icp "small dental offices" \
    --tech go --tech postgres \
    --feature "appointment scheduling"`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

var (
	initProjectID    string
	initICP          string
	initTech         []string
	initConstraints  []string
	initFeatures     []string
	initExecApproval bool
	initRetryNoGate  bool
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initProjectID, "project", "", "Project identifier (default: derived from the goal)")
	initCmd.Flags().StringVar(&initICP, "icp", "", "Ideal customer profile")
	initCmd.Flags().StringArrayVar(&initTech, "tech", nil, "Technology stack entry (repeatable)")
	initCmd.Flags().StringArrayVar(&initConstraints, "constraint", nil, "Project constraint (repeatable)")
	initCmd.Flags().StringArrayVar(&initFeatures, "feature", nil, "Core feature (repeatable)")
	initCmd.Flags().BoolVar(&initExecApproval, "require-execution-approval", false, "Gate execution start behind an approval")
	initCmd.Flags().BoolVar(&initRetryNoGate, "no-retry-approval", false, "Retry failed tasks without an approval gate")
}

func runInit(cmd *cobra.Command, args []string) error {
	goal := strings.TrimSpace(args[0])
	if goal == "" {
		return fmt.Errorf("goal must not be empty")
	}

	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	projectID := initProjectID
	if projectID == "" {
		projectID = slugify(goal)
	}

	in := machine.CreateProject{
		ProjectID: projectID,
		Goal:      goal,
	}
	if initICP != "" || len(initTech) > 0 || len(initConstraints) > 0 || len(initFeatures) > 0 {
		in.Context = &project.Context{
			ICP:          initICP,
			TechStack:    initTech,
			Constraints:  initConstraints,
			CoreFeatures: initFeatures,
		}
	}
	if cmd.Flags().Changed("require-execution-approval") {
		v := initExecApproval
		in.RequireExecutionApproval = &v
	} else if rt.cfg.Approval.RequireExecution {
		v := true
		in.RequireExecutionApproval = &v
	}
	if cmd.Flags().Changed("no-retry-approval") {
		v := !initRetryNoGate
		in.RequireRetryApproval = &v
	} else if !rt.cfg.Approval.RequireRetry {
		v := false
		in.RequireRetryApproval = &v
	}

	res, err := rt.orch.HandleIntent(cmd.Context(), in)
	if err != nil {
		return err
	}

	fmt.Printf("Project %s created\n", res.State.ProjectID)
	fmt.Printf("Phase: %s\n", res.State.Phase)
	fmt.Printf("State: %s\n", rt.store.Path())
	return nil
}

// slugify derives a project identifier from the first words of the goal.
func slugify(goal string) string {
	words := strings.Fields(strings.ToLower(goal))
	if len(words) > 5 {
		words = words[:5]
	}
	var parts []string
	for _, w := range words {
		var b strings.Builder
		for _, r := range w {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			parts = append(parts, b.String())
		}
	}
	if len(parts) == 0 {
		return "project"
	}
	return strings.Join(parts, "-")
}
