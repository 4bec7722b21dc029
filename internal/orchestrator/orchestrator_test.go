package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sean-lai-sh/agent-manager/internal/dispatch"
	"github.com/sean-lai-sh/agent-manager/internal/errors"
	"github.com/sean-lai-sh/agent-manager/internal/event"
	"github.com/sean-lai-sh/agent-manager/internal/machine"
	"github.com/sean-lai-sh/agent-manager/internal/project"
)

// memStore is an in-memory store that records the order of operations
// so tests can assert persist-before-dispatch.
type memStore struct {
	mu      sync.Mutex
	state   *project.State
	saveErr error
	ops     *opLog
}

type opLog struct {
	mu  sync.Mutex
	ops []string
}

func (l *opLog) add(op string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ops = append(l.ops, op)
}

func (l *opLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.ops...)
}

func newMemStore() *memStore {
	return &memStore{ops: &opLog{}}
}

func (s *memStore) Load(ctx context.Context) (*project.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil, errors.ErrStateNotFound
	}
	return s.state.Clone(), nil
}

func (s *memStore) Save(ctx context.Context, st *project.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.ops.add("save")
	s.state = st.Clone()
	return nil
}

func (s *memStore) Exists(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != nil, nil
}

func (s *memStore) Path() string { return "mem://project.json" }

// orderRunner records the hand-off into the shared op log.
type orderRunner struct {
	ops *opLog
}

func (r *orderRunner) Run(_ context.Context, _ *project.State, task project.AgentTask) {
	r.ops.add("dispatch:" + string(task.Type))
}

func fixedClock() func() time.Time {
	t := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestOrchestrator(t *testing.T, st *memStore) *Orchestrator {
	t.Helper()
	o := New(st, event.NewBus(), nil, WithClock(fixedClock()))
	runner := &orderRunner{ops: st.ops}
	o.SetDispatcher(dispatch.New(runner, runner, nil, nil))
	if _, err := o.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize error: %v", err)
	}
	return o
}

func createIntent() machine.CreateProject {
	return machine.CreateProject{
		ProjectID: "p1",
		Goal:      "build X",
		Context: &project.Context{
			ICP:          "SMB",
			TechStack:    []string{"go"},
			Constraints:  []string{"OSS"},
			CoreFeatures: []string{"auth"},
		},
	}
}

func TestHandleIntentBeforeInitialize(t *testing.T) {
	o := New(newMemStore(), nil, nil)
	if _, err := o.HandleIntent(context.Background(), createIntent()); err == nil {
		t.Error("expected error before Initialize")
	}
}

func TestCreateProject(t *testing.T) {
	st := newMemStore()
	o := newTestOrchestrator(t, st)

	res, err := o.HandleIntent(context.Background(), createIntent())
	if err != nil {
		t.Fatalf("HandleIntent error: %v", err)
	}
	if res.State.Phase != project.PhasePlanning {
		t.Errorf("phase = %q, want planning", res.State.Phase)
	}
	if res.State.Version != 1 {
		t.Errorf("version = %d, want 1", res.State.Version)
	}
	if res.Record == nil || res.Record.IntentType != "create_project" {
		t.Errorf("record = %+v", res.Record)
	}
	if len(res.Effects) != 1 {
		t.Errorf("effects = %d, want 1", len(res.Effects))
	}
}

func TestPersistBeforeDispatch(t *testing.T) {
	st := newMemStore()
	o := newTestOrchestrator(t, st)

	if _, err := o.HandleIntent(context.Background(), createIntent()); err != nil {
		t.Fatalf("HandleIntent error: %v", err)
	}

	ops := st.ops.all()
	if len(ops) != 2 || ops[0] != "save" || ops[1] != "dispatch:planning" {
		t.Errorf("operation order = %v, want [save dispatch:planning]", ops)
	}
}

func TestIntentWithoutProject(t *testing.T) {
	o := newTestOrchestrator(t, newMemStore())
	_, err := o.HandleIntent(context.Background(), machine.Replan{})
	if !errors.Is(err, errors.ErrProjectNotInitialized) {
		t.Errorf("error = %v, want ErrProjectNotInitialized", err)
	}
}

func TestCreateWhenProjectExists(t *testing.T) {
	o := newTestOrchestrator(t, newMemStore())
	if _, err := o.HandleIntent(context.Background(), createIntent()); err != nil {
		t.Fatal(err)
	}
	_, err := o.HandleIntent(context.Background(), createIntent())
	if !errors.Is(err, errors.ErrProjectExists) {
		t.Errorf("error = %v, want ErrProjectExists", err)
	}
}

func TestPersistenceFailureRollsBack(t *testing.T) {
	st := newMemStore()
	o := newTestOrchestrator(t, st)
	if _, err := o.HandleIntent(context.Background(), createIntent()); err != nil {
		t.Fatal(err)
	}
	before := o.State()

	st.mu.Lock()
	st.saveErr = errors.NewStoreError("disk full", nil)
	st.mu.Unlock()

	if _, err := o.HandleIntent(context.Background(), machine.Replan{Reason: "again"}); err == nil {
		t.Fatal("expected persistence error")
	}

	after := o.State()
	if after.Version != before.Version {
		t.Errorf("version = %d, want unchanged %d", after.Version, before.Version)
	}
	if len(after.History) != len(before.History) {
		t.Errorf("history grew despite persistence failure")
	}
}

func TestDuplicateAgentResultIsNoOp(t *testing.T) {
	st := newMemStore()
	o := newTestOrchestrator(t, st)
	res, err := o.HandleIntent(context.Background(), createIntent())
	if err != nil {
		t.Fatal(err)
	}
	taskID := res.State.PendingTasks[0].ID

	planJSON := `{"plan": {"roadmap": [{"title": "M1"}], "features": [{"title": "F1"}],
		"tasks": [{"title": "T1", "role": "backend"}]}}`
	first := machine.AgentResult{TaskID: taskID, Status: project.ResultSuccess, Output: planJSON}
	r1, err := o.HandleIntent(context.Background(), first)
	if err != nil {
		t.Fatal(err)
	}

	r2, err := o.HandleIntent(context.Background(), first)
	if err != nil {
		t.Fatal(err)
	}
	if r2.State.Version != r1.State.Version {
		t.Errorf("duplicate result advanced version %d -> %d", r1.State.Version, r2.State.Version)
	}
	if r2.Record != nil {
		t.Error("duplicate result appended a history record")
	}
}

func TestSubmitFeedsAgentResult(t *testing.T) {
	o := newTestOrchestrator(t, newMemStore())
	res, err := o.HandleIntent(context.Background(), createIntent())
	if err != nil {
		t.Fatal(err)
	}
	taskID := res.State.PendingTasks[0].ID

	err = o.Submit(context.Background(), machine.AgentResult{
		TaskID: taskID,
		Status: project.ResultFailure,
		Error:  "backend down",
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if got := o.State().Phase; got != project.PhaseError {
		t.Errorf("phase = %q, want error after planner failure", got)
	}
}

func TestStateReturnsDetachedSnapshot(t *testing.T) {
	o := newTestOrchestrator(t, newMemStore())
	if _, err := o.HandleIntent(context.Background(), createIntent()); err != nil {
		t.Fatal(err)
	}

	snap := o.State()
	snap.Goal = "mutated"
	if o.State().Goal == "mutated" {
		t.Error("State() leaked the canonical pointer")
	}
}

func TestCloseRejectsFurtherIntents(t *testing.T) {
	o := newTestOrchestrator(t, newMemStore())
	if err := o.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if _, err := o.HandleIntent(context.Background(), createIntent()); !errors.Is(err, errors.ErrOrchestratorClosed) {
		t.Errorf("error = %v, want ErrOrchestratorClosed", err)
	}
	if err := o.Close(); err != nil {
		t.Errorf("second Close error: %v", err)
	}
}

func TestInitializeLoadsPersistedState(t *testing.T) {
	st := newMemStore()
	o := newTestOrchestrator(t, st)
	if _, err := o.HandleIntent(context.Background(), createIntent()); err != nil {
		t.Fatal(err)
	}
	saved := o.State()
	if err := o.Close(); err != nil {
		t.Fatal(err)
	}

	// A new process over the same store resumes from the snapshot.
	o2 := New(st, nil, nil, WithClock(fixedClock()))
	loaded, err := o2.Initialize(context.Background())
	if err != nil {
		t.Fatalf("Initialize error: %v", err)
	}
	if loaded == nil || loaded.Version != saved.Version || loaded.ProjectID != saved.ProjectID {
		t.Errorf("loaded = %+v, want the saved snapshot", loaded)
	}
}
