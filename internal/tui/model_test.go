package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sean-lai-sh/agent-manager/internal/machine"
	"github.com/sean-lai-sh/agent-manager/internal/orchestrator"
	"github.com/sean-lai-sh/agent-manager/internal/project"
)

// fakeController serves a canned state and records intents.
type fakeController struct {
	state   *project.State
	intents []machine.Intent
}

func (f *fakeController) State() *project.State {
	return f.state.Clone()
}

func (f *fakeController) HandleIntent(_ context.Context, in machine.Intent) (*orchestrator.Result, error) {
	f.intents = append(f.intents, in)
	return &orchestrator.Result{State: f.state.Clone()}, nil
}

func demoState() *project.State {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	st := project.New("demo", project.DefaultSettings(), now)
	st.Goal = "build a billing service"
	st.Phase = project.PhaseAwaitingApproval
	st.Version = 3
	st.PendingTasks = []project.AgentTask{
		{ID: "t1", Type: project.TaskPlanning, Status: project.TaskCompleted, CreatedAt: now},
	}
	st.Plans["plan-abc123def456"] = project.PlanSnapshot{
		ID:       "plan-abc123def456",
		Roadmap:  []project.Milestone{{ID: "m1", Title: "M1"}},
		Features: []project.Feature{{ID: "f1", Title: "F1"}},
		Tasks:    []project.ExecutionTaskDef{{ID: "t1", Title: "T1", Role: "backend"}},
	}
	st.CurrentPlanID = "plan-abc123def456"
	st.Approvals = []project.ApprovalRequest{
		{ID: "approval-1", Type: project.ApprovalPlan, PlanID: "plan-abc123def456", RequestedAt: now},
	}
	st.Discussion = []project.DiscussionEntry{
		{ID: "d1", Type: project.DiscussionPlan, Message: "plan proposed", Timestamp: now},
	}
	return st
}

func sized(m Model) Model {
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func TestViewShowsProjectHeader(t *testing.T) {
	m := sized(New(&fakeController{state: demoState()}, Options{}))
	view := m.View()

	for _, want := range []string{"demo", "awaiting_approval", "v3", "plan approval pending"} {
		if !strings.Contains(view, want) {
			t.Errorf("view is missing %q", want)
		}
	}
}

func TestViewWithoutProject(t *testing.T) {
	ctrl := &fakeController{state: nil}
	m := New(ctrl, Options{})
	if !strings.Contains(m.View(), "no project yet") {
		t.Error("empty-state view missing first-run hint")
	}
}

func TestApproveKeyConsumesPlanApproval(t *testing.T) {
	ctrl := &fakeController{state: demoState()}
	m := sized(New(ctrl, Options{}))

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected an intent command")
	}
	cmd()

	if len(ctrl.intents) != 1 {
		t.Fatalf("intents = %v, want one", ctrl.intents)
	}
	approve, ok := ctrl.intents[0].(machine.ApprovePlan)
	if !ok {
		t.Fatalf("intent = %T, want ApprovePlan", ctrl.intents[0])
	}
	if approve.ApprovalID != "approval-1" || approve.PlanID != "plan-abc123def456" {
		t.Errorf("approve = %+v", approve)
	}
}

func TestApproveKeyWithExecutionApproval(t *testing.T) {
	st := demoState()
	st.Approvals = []project.ApprovalRequest{
		{ID: "approval-2", Type: project.ApprovalExecutionStart, TaskIDs: []string{"x"}},
	}
	ctrl := &fakeController{state: st}
	m := sized(New(ctrl, Options{}))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	if cmd == nil {
		t.Fatal("expected an intent command")
	}
	cmd()

	if _, ok := ctrl.intents[0].(machine.ApproveExecution); !ok {
		t.Errorf("intent = %T, want ApproveExecution", ctrl.intents[0])
	}
}

func TestAnswerFlow(t *testing.T) {
	st := demoState()
	st.Phase = project.PhaseAwaitingClarification
	st.Approvals = nil
	st.Clarifications = []project.ClarificationRecord{
		{ID: "clarification-1", Questions: []string{"Who is the target user?"}, Status: project.ClarificationOpen},
	}
	ctrl := &fakeController{state: st}
	m := sized(New(ctrl, Options{}))

	if !strings.Contains(m.View(), "Who is the target user?") {
		t.Fatal("open question not rendered")
	}

	// enter starts answering, text accumulates, enter submits.
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if !m.answering {
		t.Fatal("enter did not open the answer input")
	}
	for _, r := range "SMB teams" {
		updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = updated.(Model)
	}
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected an intent command")
	}
	cmd()

	if len(ctrl.intents) != 1 {
		t.Fatalf("intents = %v", ctrl.intents)
	}
	answer, ok := ctrl.intents[0].(machine.AnswerClarifications)
	if !ok {
		t.Fatalf("intent = %T, want AnswerClarifications", ctrl.intents[0])
	}
	if answer.ClarificationID != "clarification-1" || answer.Answers[0] != "SMB teams" {
		t.Errorf("answer = %+v", answer)
	}
	if m.answering {
		t.Error("input still focused after submit")
	}
}

func TestQuitKey(t *testing.T) {
	m := sized(New(&fakeController{state: demoState()}, Options{}))
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if msg := cmd(); msg == nil {
		t.Error("quit command returned nil message")
	}
	if !updated.(Model).quitting {
		t.Error("model not marked quitting")
	}
}

func TestApplyTheme(t *testing.T) {
	t.Cleanup(func() { ApplyTheme("default") })

	ApplyTheme("dracula")
	if colors != themes["dracula"] {
		t.Errorf("palette = %+v, want dracula", colors)
	}

	ApplyTheme("no-such-theme")
	if colors != themes["default"] {
		t.Errorf("unknown theme should fall back to default, got %+v", colors)
	}
}
