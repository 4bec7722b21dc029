package cmd

import (
	"github.com/sean-lai-sh/agent-manager/internal/machine"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [task-id...]",
	Short: "Dispatch pending execution tasks",
	Long: `Dispatch execution tasks from the adopted plan. Without arguments
every pending execution task is dispatched; with arguments only the
named tasks are. If the project requires execution approval, the tasks
are parked behind an approval gate instead.

With the cli executor backend the process stays up until the spawned
agents finish; with the manual backend the command returns immediately
and results are fed back through the result command.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	res, err := rt.orch.HandleIntent(cmd.Context(), machine.RunTasks{TaskIDs: args})
	if err != nil {
		return err
	}

	printTransition(res)
	return nil
}
