package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sean-lai-sh/agent-manager/internal/project"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.state == nil {
		return mutedStyle.Render("no project yet, run `agent-manager init` to create one") + "\n"
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.tasksView())
	b.WriteString("\n")
	b.WriteString(m.approvalsView())
	b.WriteString(m.clarificationsView())
	b.WriteString(panelStyle.Render(m.discussion.View()))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString(m.helpView())
	return b.String()
}

func (m Model) headerView() string {
	st := m.state
	title := titleStyle.Render(st.ProjectID)
	badge := phaseBadge(st.Phase.String())
	meta := mutedStyle.Render(fmt.Sprintf("v%d · %s", st.Version, st.UpdatedAt.Format("15:04:05")))

	line := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", badge, "  ", meta)
	if st.Goal != "" {
		line += "\n" + mutedStyle.Render(truncate(st.Goal, max(m.width-2, 20)))
	}
	return line + "\n"
}

func (m Model) tasksView() string {
	st := m.state
	if len(st.PendingTasks) == 0 {
		return mutedStyle.Render("  no tasks yet") + "\n"
	}

	var rows []string
	rows = append(rows, headerStyle.Render(fmt.Sprintf("  %-2s %-10s %-12s %s", "", "TYPE", "STATUS", "TITLE")))
	for _, t := range st.PendingTasks {
		title := t.Stage()
		if v, ok := t.Input["title"].(string); ok {
			title = v
		}
		busy := ""
		if t.Status == project.TaskInProgress {
			busy = " " + m.spin.View()
		}
		rows = append(rows, fmt.Sprintf("  %s %-10s %-12s %s%s",
			statusGlyph(string(t.Status)), t.Type, t.Status, truncate(title, 48), busy))
	}

	if st.Execution != nil {
		s := st.Execution.Summary
		rows = append(rows, mutedStyle.Render(fmt.Sprintf(
			"  %d tasks · %d completed · %d failed · %d running",
			s.Total, s.Completed, s.Failed, s.InProgress)))
	}
	return strings.Join(rows, "\n") + "\n"
}

func (m Model) approvalsView() string {
	if len(m.state.Approvals) == 0 {
		return ""
	}
	var rows []string
	for _, a := range m.state.Approvals {
		detail := ""
		if a.PlanID != "" {
			detail = " for " + a.PlanID
		} else if len(a.TaskIDs) > 0 {
			detail = fmt.Sprintf(" for %d tasks", len(a.TaskIDs))
		}
		rows = append(rows, approvalStyle.Render(fmt.Sprintf("  ! %s approval pending%s", a.Type, detail)))
	}
	rows = append(rows, helpStyle.Render("    press a to approve"))
	return strings.Join(rows, "\n") + "\n"
}

func (m Model) clarificationsView() string {
	rec := m.openClarification()
	if rec == nil {
		return ""
	}
	out := approvalStyle.Render("  ? "+rec.Questions[0]) + "\n"
	if m.answering {
		out += "  " + m.answer.View() + "\n"
	} else {
		out += helpStyle.Render("    press enter to answer") + "\n"
	}
	return out
}

func (m Model) discussionContent() string {
	if m.state == nil || len(m.state.Discussion) == 0 {
		return mutedStyle.Render("no discussion yet")
	}
	entries := m.state.Discussion
	if len(entries) > m.opts.MaxDiscussionLines {
		entries = entries[len(entries)-m.opts.MaxDiscussionLines:]
	}
	var rows []string
	for _, e := range entries {
		rows = append(rows, fmt.Sprintf("%s %s %s",
			mutedStyle.Render(e.Timestamp.Format("15:04:05")),
			headerStyle.Render("["+string(e.Type)+"]"),
			e.Message))
	}
	return strings.Join(rows, "\n")
}

func (m Model) helpView() string {
	keys := []string{"a approve", "p pause", "r refresh", "↑/↓ scroll", "q quit"}
	if m.answering {
		keys = []string{"enter submit", "esc cancel"}
	}
	return helpStyle.Render("  " + strings.Join(keys, " · "))
}

func truncate(s string, width int) string {
	if width <= 3 || len(s) <= width {
		return s
	}
	return s[:width-3] + "..."
}
