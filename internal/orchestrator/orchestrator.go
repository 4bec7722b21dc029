package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/sean-lai-sh/agent-manager/internal/dispatch"
	"github.com/sean-lai-sh/agent-manager/internal/errors"
	"github.com/sean-lai-sh/agent-manager/internal/event"
	"github.com/sean-lai-sh/agent-manager/internal/logging"
	"github.com/sean-lai-sh/agent-manager/internal/machine"
	"github.com/sean-lai-sh/agent-manager/internal/project"
	"github.com/sean-lai-sh/agent-manager/internal/store"
)

// Result is the outcome of one handled intent. State is a detached
// snapshot; mutating it does not affect canonical state.
type Result struct {
	State   *project.State
	Effects []machine.Effect

	// Record is the history entry appended by this intent, nil when the
	// intent was a literal no-op.
	Record *project.TransitionRecord
}

// locker is the optional process-lock surface of a store. The file
// store implements it; in-memory test stores do not need to.
type locker interface {
	AcquireLock() error
	ReleaseLock() error
}

// Orchestrator is the C5 façade. A mutex serializes HandleIntent so at
// most one intent is in flight; concurrent callers queue.
type Orchestrator struct {
	store store.Store
	bus   *event.Bus
	log   *logging.Logger
	now   func() time.Time

	mu          sync.Mutex
	dispatcher  *dispatch.Dispatcher
	state       *project.State
	initialized bool
	closed      bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock injects the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New builds an orchestrator over the given store. The dispatcher is
// attached separately via SetDispatcher because its runners need the
// orchestrator as their result sink.
func New(st store.Store, bus *event.Bus, log *logging.Logger, opts ...Option) *Orchestrator {
	if log == nil {
		log = logging.NopLogger()
	}
	o := &Orchestrator{
		store: st,
		bus:   bus,
		log:   log.WithComponent("orchestrator"),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SetDispatcher attaches the effect dispatcher. Must be called before
// the first intent that produces effects; effects handled without a
// dispatcher fail the hand-off.
func (o *Orchestrator) SetDispatcher(d *dispatch.Dispatcher) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dispatcher = d
}

// Initialize acquires the store's process lock and loads persisted
// state. A missing document is a first run and returns nil state.
func (o *Orchestrator) Initialize(ctx context.Context) (*project.State, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil, errors.ErrOrchestratorClosed
	}

	if l, ok := o.store.(locker); ok {
		if err := l.AcquireLock(); err != nil {
			return nil, err
		}
	}

	st, err := o.store.Load(ctx)
	if err != nil && !errors.Is(err, errors.ErrStateNotFound) {
		return nil, err
	}

	o.state = st
	o.initialized = true
	if st != nil {
		o.log.Info("state loaded",
			"project_id", st.ProjectID,
			"phase", st.Phase.String(),
			"version", st.Version)
	} else {
		o.log.Info("no state document, first run")
	}
	return st.Clone(), nil
}

// State returns a detached snapshot of the current state, or nil before
// a project exists.
func (o *Orchestrator) State() *project.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Clone()
}

// HandleIntent applies one intent: transit, persist, then dispatch
// effects. The successor state is durably written before any effect
// runs; a persistence failure leaves the in-memory state at the
// pre-call snapshot and the intent is considered not applied.
func (o *Orchestrator) HandleIntent(ctx context.Context, in machine.Intent) (*Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil, errors.ErrOrchestratorClosed
	}
	if !o.initialized {
		return nil, errors.NewOrchestratorError("orchestrator is not initialized", nil)
	}
	if in == nil {
		return nil, errors.NewOrchestratorError("nil intent", errors.ErrInvalidIntent)
	}
	if o.state == nil && in.Kind() != machine.KindCreateProject {
		return nil, errors.NewOrchestratorError("no project exists yet", errors.ErrProjectNotInitialized).
			WithIntentType(string(in.Kind()))
	}
	if o.state != nil && in.Kind() == machine.KindCreateProject {
		return nil, errors.NewOrchestratorError("a project already exists in this store", errors.ErrProjectExists).
			WithProjectID(o.state.ProjectID)
	}

	prev := o.state
	outcome := machine.Transit(prev, in, o.now())
	if outcome.State == nil {
		return nil, errors.NewOrchestratorError("intent produced no state", errors.ErrInvalidIntent).
			WithIntentType(string(in.Kind()))
	}

	// Literal no-op: nothing changed, nothing to persist or dispatch.
	if prev != nil && outcome.State.Version == prev.Version {
		o.log.Debug("intent was a no-op", "intent", string(in.Kind()))
		return &Result{State: outcome.State}, nil
	}

	if err := o.store.Save(ctx, outcome.State); err != nil {
		o.log.Error("failed to persist state, intent not applied",
			"intent", string(in.Kind()), "error", err)
		return nil, err
	}
	o.state = outcome.State

	record := o.state.History[len(o.state.History)-1]
	o.log.WithIntent(string(in.Kind())).Info("intent applied",
		"from", record.From.String(),
		"to", record.To.String(),
		"version", o.state.Version,
		"effects", len(outcome.Effects))
	o.publish(in, record)

	if len(outcome.Effects) > 0 {
		o.dispatchEffects(ctx, outcome.Effects)
	}

	return &Result{
		State:   o.state.Clone(),
		Effects: outcome.Effects,
		Record:  &record,
	}, nil
}

// Submit feeds an agent result back in as an agent_result intent. It is
// the dispatch.ResultSink implementation handed to the runners.
func (o *Orchestrator) Submit(ctx context.Context, res machine.AgentResult) error {
	_, err := o.HandleIntent(ctx, res)
	return err
}

// Close releases the store's process lock. Further calls fail with
// ErrOrchestratorClosed.
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true

	if l, ok := o.store.(locker); ok && o.initialized {
		return l.ReleaseLock()
	}
	return nil
}

// dispatchEffects hands the effect list to the dispatcher. A failed
// task hand-off is folded back in as a failure agent_result on a fresh
// goroutine, so the state stays consistent without retro-mutation. The
// caller holds the mutex.
func (o *Orchestrator) dispatchEffects(ctx context.Context, effects []machine.Effect) {
	if o.dispatcher == nil {
		o.log.Error("no dispatcher attached, effects dropped", "effects", len(effects))
		return
	}
	if err := o.dispatcher.Dispatch(ctx, o.state, effects); err != nil {
		o.log.Error("effect hand-off failed", "error", err)
		var dispatchErr *dispatch.TaskError
		if errors.As(err, &dispatchErr) {
			taskID := dispatchErr.Task.ID
			go func() {
				_ = o.Submit(context.WithoutCancel(ctx), machine.AgentResult{
					TaskID: taskID,
					Status: project.ResultFailure,
					Error:  dispatchErr.Error(),
				})
			}()
		}
	}
}

// publish emits bus events for the applied intent. The bus is optional;
// a nil bus drops everything.
func (o *Orchestrator) publish(in machine.Intent, record project.TransitionRecord) {
	if o.bus == nil {
		return
	}
	st := o.state

	if in.Kind() == machine.KindCreateProject {
		o.bus.Publish(event.NewProjectCreatedEvent(st.ProjectID, st.Goal))
	}
	o.bus.Publish(event.NewIntentHandledEvent(
		st.ProjectID, record.IntentType,
		event.Phase(record.From), event.Phase(record.To), st.Version))
	if record.From != record.To {
		o.bus.Publish(event.NewPhaseChangedEvent(st.ProjectID, event.Phase(record.From), event.Phase(record.To)))
	}

	if res, ok := in.(machine.AgentResult); ok {
		if t := st.Task(res.TaskID); t != nil && t.Status.IsTerminal() {
			o.bus.Publish(event.NewTaskCompletedEvent(
				st.ProjectID, t.ID, t.Status == project.TaskCompleted, res.Error))
		}
		switch record.To {
		case project.PhaseAwaitingApproval:
			if snap, ok := st.Plans[st.CurrentPlanID]; ok {
				o.bus.Publish(event.NewPlanProposedEvent(st.ProjectID, snap.ID, len(snap.Tasks)))
			}
		case project.PhaseAwaitingClarification:
			if n := len(st.Clarifications); n > 0 {
				rec := st.Clarifications[n-1]
				o.bus.Publish(event.NewClarificationRequestedEvent(st.ProjectID, rec.ID, rec.Questions))
			}
		}
	}
}
