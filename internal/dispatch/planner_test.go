package dispatch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sean-lai-sh/agent-manager/internal/llm"
	"github.com/sean-lai-sh/agent-manager/internal/project"
	"github.com/sean-lai-sh/agent-manager/internal/prompt"
)

const validPlanJSON = `{"plan": {
	"roadmap":  [{"title": "M1"}],
	"features": [{"title": "F1"}],
	"tasks":    [{"title": "T1", "role": "backend"}]}}`

// scriptedBackend returns one canned response per call, in order.
type scriptedBackend struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	prompts   []string
}

func (b *scriptedBackend) Name() string { return "scripted" }

func (b *scriptedBackend) Complete(_ context.Context, req llm.Request) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := len(b.prompts)
	b.prompts = append(b.prompts, req.Prompt)
	if i < len(b.errs) && b.errs[i] != nil {
		return "", b.errs[i]
	}
	if i < len(b.responses) {
		return b.responses[i], nil
	}
	return "", errors.New("no scripted response")
}

func planningTask() project.AgentTask {
	return project.AgentTask{
		ID:     "task-1",
		Type:   project.TaskPlanning,
		Status: project.TaskInProgress,
		Input:  map[string]any{"goal": "build X", "stage": project.StageClarification},
	}
}

func runPlannerTurn(t *testing.T, backend *scriptedBackend) []string {
	t.Helper()
	sink := &recordingSink{}
	r := NewPlannerRunner(backend, prompt.Renderer{}, sink, time.Second, nil)

	r.Run(context.Background(), testState(), planningTask())
	r.Wait()

	results := sink.all()
	if len(results) != 1 {
		t.Fatalf("results = %+v, want exactly one", results)
	}
	got := results[0]
	if got.TaskID != "task-1" {
		t.Errorf("TaskID = %q", got.TaskID)
	}
	statuses := []string{string(got.Status)}
	if s, ok := got.Output.(string); ok {
		statuses = append(statuses, s)
	} else {
		statuses = append(statuses, got.Error)
	}
	return statuses
}

func TestPlannerRunnerFirstTrySucceeds(t *testing.T) {
	backend := &scriptedBackend{responses: []string{validPlanJSON}}
	got := runPlannerTurn(t, backend)
	if got[0] != "success" {
		t.Errorf("status = %q, want success", got[0])
	}
	if len(backend.prompts) != 1 {
		t.Errorf("backend called %d times, want 1", len(backend.prompts))
	}
}

func TestPlannerRunnerRetriesWithStrictReminder(t *testing.T) {
	backend := &scriptedBackend{responses: []string{"here is your plan, enjoy", validPlanJSON}}
	got := runPlannerTurn(t, backend)
	if got[0] != "success" {
		t.Errorf("status = %q, want success after retry", got[0])
	}
	if len(backend.prompts) != 2 {
		t.Fatalf("backend called %d times, want 2", len(backend.prompts))
	}
	if !strings.HasSuffix(backend.prompts[1], prompt.StrictJSONReminder) {
		t.Error("retry prompt is missing the strict JSON reminder suffix")
	}
}

func TestPlannerRunnerFailsAfterSecondParseError(t *testing.T) {
	backend := &scriptedBackend{responses: []string{"garbage", "still garbage"}}
	got := runPlannerTurn(t, backend)
	if got[0] != "failure" {
		t.Errorf("status = %q, want failure", got[0])
	}
	if len(backend.prompts) != 2 {
		t.Errorf("backend called %d times, want 2", len(backend.prompts))
	}
}

func TestPlannerRunnerBackendError(t *testing.T) {
	backend := &scriptedBackend{errs: []error{errors.New("rate limited")}}
	got := runPlannerTurn(t, backend)
	if got[0] != "failure" {
		t.Errorf("status = %q, want failure", got[0])
	}
	if !strings.Contains(got[1], "rate limited") {
		t.Errorf("error = %q, want backend cause", got[1])
	}
}
