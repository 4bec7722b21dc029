package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sean-lai-sh/agent-manager/internal/machine"
	"github.com/sean-lai-sh/agent-manager/internal/orchestrator"
	"github.com/sean-lai-sh/agent-manager/internal/project"
)

// refreshInterval is the fallback poll cadence when no watcher fires.
const refreshInterval = 2 * time.Second

// Controller is the orchestrator surface the dashboard drives. It is
// satisfied by *orchestrator.Orchestrator.
type Controller interface {
	State() *project.State
	HandleIntent(ctx context.Context, in machine.Intent) (*orchestrator.Result, error)
}

// Options configures the dashboard.
type Options struct {
	// Changes delivers state-file change notifications from the
	// watcher. Optional; the tick keeps the view fresh without it.
	Changes <-chan struct{}

	// MaxDiscussionLines caps how many timeline entries are rendered.
	MaxDiscussionLines int
}

type (
	tickMsg    time.Time
	refreshMsg struct{}
	intentMsg  struct{ err error }
)

// Model is the bubbletea model for the dashboard.
type Model struct {
	ctrl Controller
	opts Options

	state      *project.State
	width      int
	height     int
	spin       spinner.Model
	discussion viewport.Model
	answer     textinput.Model
	answering  bool
	status     string
	quitting   bool
}

// New builds the dashboard model over the given controller.
func New(ctrl Controller, opts Options) Model {
	if opts.MaxDiscussionLines <= 0 {
		opts.MaxDiscussionLines = 500
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = mutedStyle

	in := textinput.New()
	in.Placeholder = "type an answer and press enter"
	in.CharLimit = 500

	return Model{
		ctrl:       ctrl,
		opts:       opts,
		state:      ctrl.State(),
		spin:       sp,
		discussion: viewport.New(0, 0),
		answer:     in,
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick, tick()}
	if m.opts.Changes != nil {
		cmds = append(cmds, waitForChange(m.opts.Changes))
	}
	return tea.Batch(cmds...)
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return refreshMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.discussion.Width = msg.Width - 4
		m.discussion.Height = max(msg.Height-18, 3)
		m.refresh()
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tick()

	case refreshMsg:
		m.refresh()
		if m.opts.Changes != nil {
			return m, waitForChange(m.opts.Changes)
		}
		return m, nil

	case intentMsg:
		if msg.err != nil {
			m.status = errorStyle.Render(msg.err.Error())
		} else {
			m.status = ""
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.answering {
		switch msg.Type {
		case tea.KeyEsc:
			m.answering = false
			m.answer.Blur()
			return m, nil
		case tea.KeyEnter:
			return m.submitAnswer()
		default:
			var cmd tea.Cmd
			m.answer, cmd = m.answer.Update(msg)
			return m, cmd
		}
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "r":
		m.refresh()
		return m, nil
	case "a":
		return m.approveFirst()
	case "p":
		return m, m.send(machine.PauseExecution{Reason: "paused from dashboard"})
	case "enter":
		if m.openClarification() != nil {
			m.answering = true
			m.answer.Focus()
			return m, textinput.Blink
		}
	case "up", "k":
		m.discussion.LineUp(1)
	case "down", "j":
		m.discussion.LineDown(1)
	}
	return m, nil
}

// approveFirst consumes the oldest pending approval: plan approvals go
// through approve_plan, execution gates through approve_execution.
func (m Model) approveFirst() (tea.Model, tea.Cmd) {
	if m.state == nil || len(m.state.Approvals) == 0 {
		m.status = mutedStyle.Render("nothing to approve")
		return m, nil
	}
	appr := m.state.Approvals[0]
	if appr.Type == project.ApprovalPlan {
		return m, m.send(machine.ApprovePlan{ApprovalID: appr.ID, PlanID: appr.PlanID})
	}
	return m, m.send(machine.ApproveExecution{ApprovalID: appr.ID})
}

func (m Model) submitAnswer() (tea.Model, tea.Cmd) {
	rec := m.openClarification()
	text := m.answer.Value()
	m.answering = false
	m.answer.Blur()
	m.answer.Reset()
	if rec == nil || text == "" {
		return m, nil
	}
	return m, m.send(machine.AnswerClarifications{
		ClarificationID: rec.ID,
		Answers:         []string{text},
	})
}

// openClarification returns the oldest open clarification, or nil.
func (m Model) openClarification() *project.ClarificationRecord {
	if m.state == nil {
		return nil
	}
	for i := range m.state.Clarifications {
		if m.state.Clarifications[i].Status == project.ClarificationOpen {
			return &m.state.Clarifications[i]
		}
	}
	return nil
}

func (m Model) send(in machine.Intent) tea.Cmd {
	return func() tea.Msg {
		_, err := m.ctrl.HandleIntent(context.Background(), in)
		return intentMsg{err: err}
	}
}

func (m *Model) refresh() {
	m.state = m.ctrl.State()
	m.discussion.SetContent(m.discussionContent())
	m.discussion.GotoBottom()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
