package cmd

import (
	"fmt"
	"strings"

	"github.com/sean-lai-sh/agent-manager/internal/machine"
	"github.com/spf13/cobra"
)

var featureCmd = &cobra.Command{
	Use:   "feature <description>",
	Short: "Ask the planner to extend the scope with a new feature",
	Long: `Hand a new feature description to the planner. The planner may ask
clarifying questions or propose an updated plan covering the feature.
Valid from any phase except while a planner turn is already running.`,
	Args: cobra.ExactArgs(1),
	RunE: runFeature,
}

func init() {
	rootCmd.AddCommand(featureCmd)
}

func runFeature(cmd *cobra.Command, args []string) error {
	desc := strings.TrimSpace(args[0])
	if desc == "" {
		return fmt.Errorf("feature description must not be empty")
	}

	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	res, err := rt.orch.HandleIntent(cmd.Context(), machine.AddFeature{Description: desc})
	if err != nil {
		return err
	}

	printTransition(res)
	return nil
}
