package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sean-lai-sh/agent-manager/internal/tui"
	"github.com/sean-lai-sh/agent-manager/internal/watch"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash"},
	Short:   "Open the interactive project dashboard",
	Long: `Open a terminal dashboard over the project: phase, tasks, pending
approvals, open questions, and the discussion timeline. Approvals,
pauses, and clarification answers can be issued directly from the
dashboard; everything else runs through the CLI in another terminal.`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	tui.ApplyTheme(rt.cfg.TUI.Theme)
	opts := tui.Options{MaxDiscussionLines: rt.cfg.TUI.MaxDiscussionLines}

	// State-file notifications keep the view fresh when agents finish
	// while the dashboard is open.
	if w, err := watch.New(rt.store.Path()); err == nil {
		defer w.Close()
		opts.Changes = w.Changes()
	} else {
		rt.log.Warn("state watcher unavailable, falling back to polling", "error", err)
	}

	p := tea.NewProgram(tui.New(rt.orch, opts), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
