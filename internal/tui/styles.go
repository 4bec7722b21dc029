package tui

import "github.com/charmbracelet/lipgloss"

// palette holds the colors a theme supplies. Styles are derived from
// the active palette by applyPalette.
type palette struct {
	primary lipgloss.Color
	success lipgloss.Color
	warning lipgloss.Color
	danger  lipgloss.Color
	muted   lipgloss.Color
	text    lipgloss.Color
	border  lipgloss.Color
	paused  lipgloss.Color
}

var themes = map[string]palette{
	"default": {
		primary: "#A78BFA",
		success: "#10B981",
		warning: "#F59E0B",
		danger:  "#F87171",
		muted:   "#9CA3AF",
		text:    "#F9FAFB",
		border:  "#6B7280",
		paused:  "#60A5FA",
	},
	"monokai": {
		primary: "#AE81FF",
		success: "#A6E22E",
		warning: "#E6DB74",
		danger:  "#F92672",
		muted:   "#75715E",
		text:    "#F8F8F2",
		border:  "#49483E",
		paused:  "#66D9EF",
	},
	"dracula": {
		primary: "#BD93F9",
		success: "#50FA7B",
		warning: "#F1FA8C",
		danger:  "#FF5555",
		muted:   "#6272A4",
		text:    "#F8F8F2",
		border:  "#44475A",
		paused:  "#8BE9FD",
	},
	"nord": {
		primary: "#B48EAD",
		success: "#A3BE8C",
		warning: "#EBCB8B",
		danger:  "#BF616A",
		muted:   "#4C566A",
		text:    "#ECEFF4",
		border:  "#434C5E",
		paused:  "#88C0D0",
	},
}

var (
	colors palette

	titleStyle    lipgloss.Style
	headerStyle   lipgloss.Style
	mutedStyle    lipgloss.Style
	panelStyle    lipgloss.Style
	approvalStyle lipgloss.Style
	helpStyle     lipgloss.Style
	errorStyle    lipgloss.Style
)

func init() {
	applyPalette(themes["default"])
}

// ApplyTheme switches the dashboard to the named theme. Unknown names
// keep the default palette. Call before the program starts rendering.
func ApplyTheme(name string) {
	p, ok := themes[name]
	if !ok {
		p = themes["default"]
	}
	applyPalette(p)
}

func applyPalette(p palette) {
	colors = p

	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.primary)

	headerStyle = lipgloss.NewStyle().
		Foreground(p.muted).
		Bold(true)

	mutedStyle = lipgloss.NewStyle().
		Foreground(p.muted)

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.border).
		Padding(0, 1)

	approvalStyle = lipgloss.NewStyle().
		Foreground(p.warning).
		Bold(true)

	helpStyle = lipgloss.NewStyle().
		Foreground(p.muted)

	errorStyle = lipgloss.NewStyle().
		Foreground(p.danger)
}

// phaseBadge renders the phase with its status color.
func phaseBadge(phase string) string {
	color := colors.muted
	switch phase {
	case "planning", "executing":
		color = colors.success
	case "awaiting_clarification", "awaiting_approval", "awaiting_execution_approval":
		color = colors.warning
	case "completed":
		color = colors.primary
	case "error":
		color = colors.danger
	case "paused":
		color = colors.paused
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(colors.text).
		Background(color).
		Padding(0, 1).
		Render(phase)
}

// statusGlyph maps a task status to its one-character marker.
func statusGlyph(status string) string {
	switch status {
	case "pending":
		return mutedStyle.Render("○")
	case "in_progress":
		return lipgloss.NewStyle().Foreground(colors.success).Render("●")
	case "completed":
		return lipgloss.NewStyle().Foreground(colors.primary).Render("✓")
	case "failed":
		return errorStyle.Render("✗")
	}
	return "?"
}
