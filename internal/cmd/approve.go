package cmd

import (
	"fmt"

	"github.com/sean-lai-sh/agent-manager/internal/machine"
	"github.com/sean-lai-sh/agent-manager/internal/project"
	"github.com/spf13/cobra"
)

var approveCmd = &cobra.Command{
	Use:   "approve [approval-id]",
	Short: "Approve a pending plan or execution gate",
	Long: `Consume a pending approval. Plan approvals adopt the proposed plan and
synthesize its execution tasks; execution approvals dispatch the gated
tasks. Without an argument the oldest pending approval is consumed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runApprove,
}

func init() {
	rootCmd.AddCommand(approveCmd)
}

func runApprove(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	st := rt.orch.State()
	if st == nil {
		return fmt.Errorf("no project found")
	}
	if len(st.Approvals) == 0 {
		return fmt.Errorf("nothing to approve")
	}

	var appr *project.ApprovalRequest
	if len(args) == 1 {
		appr = st.Approval(args[0])
		if appr == nil {
			return fmt.Errorf("no pending approval %q", args[0])
		}
	} else {
		appr = &st.Approvals[0]
	}

	var in machine.Intent
	if appr.Type == project.ApprovalPlan {
		in = machine.ApprovePlan{ApprovalID: appr.ID, PlanID: appr.PlanID}
	} else {
		in = machine.ApproveExecution{ApprovalID: appr.ID}
	}

	res, err := rt.orch.HandleIntent(cmd.Context(), in)
	if err != nil {
		return err
	}

	printTransition(res)
	return nil
}
