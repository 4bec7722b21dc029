package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/sean-lai-sh/agent-manager/internal/event"
	"github.com/sean-lai-sh/agent-manager/internal/logging"
	"github.com/sean-lai-sh/agent-manager/internal/machine"
	"github.com/sean-lai-sh/agent-manager/internal/project"
)

// ResultSink receives agent results and feeds them back into the
// orchestrator as agent_result intents. The orchestrator implements it;
// tests substitute a recorder.
type ResultSink interface {
	Submit(ctx context.Context, res machine.AgentResult) error
}

// Runner performs the agent round trip for one dispatched task. Run
// must not block the caller beyond the hand-off: the round trip happens
// on the runner's own goroutine and completes via the sink.
type Runner interface {
	Run(ctx context.Context, st *project.State, task project.AgentTask)
}

// TaskError reports a failed task hand-off. The orchestrator folds it
// back in as a failure agent_result for the task it names.
type TaskError struct {
	Task project.AgentTask
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("dispatch of task %s failed: %v", e.Task.ID, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

// Dispatcher executes effect lists on behalf of the state machine.
type Dispatcher struct {
	planner  Runner
	executor Runner
	bus      *event.Bus
	log      *logging.Logger
}

// New builds a Dispatcher. Either runner may be nil, in which case
// dispatching a task of that type is an error surfaced to the caller.
func New(planner, executor Runner, bus *event.Bus, log *logging.Logger) *Dispatcher {
	if log == nil {
		log = logging.NopLogger()
	}
	return &Dispatcher{
		planner:  planner,
		executor: executor,
		bus:      bus,
		log:      log.WithComponent("dispatch"),
	}
}

// Dispatch hands off every effect in list order, awaiting each hand-off
// before the next so approval notices precede later task dispatches.
// st is the already-persisted successor state; runners receive it as a
// read-only snapshot for prompt assembly.
//
// A hand-off failure stops the walk and is returned to the caller,
// which decides whether to feed a failure agent_result back in. It
// never retro-mutates state.
func (d *Dispatcher) Dispatch(ctx context.Context, st *project.State, effects []machine.Effect) error {
	for _, eff := range effects {
		switch e := eff.(type) {
		case machine.DispatchAgentTask:
			if err := d.dispatchTask(ctx, st, e.Task); err != nil {
				return err
			}
		case machine.RequestApproval:
			d.notifyApproval(st, e.Approval)
		default:
			return fmt.Errorf("unknown effect type %q", eff.Type())
		}
	}
	return nil
}

func (d *Dispatcher) dispatchTask(ctx context.Context, st *project.State, task project.AgentTask) error {
	var runner Runner
	switch task.Type {
	case project.TaskPlanning:
		runner = d.planner
	case project.TaskExecution:
		runner = d.executor
	default:
		return &TaskError{Task: task, Err: fmt.Errorf("unknown task type %q", task.Type)}
	}
	if runner == nil {
		return &TaskError{Task: task, Err: fmt.Errorf("no runner configured for %s tasks", task.Type)}
	}

	d.log.Info("dispatching task", "task_id", task.ID, "task_type", string(task.Type), "stage", task.Stage())
	if d.bus != nil {
		d.bus.Publish(event.NewTaskDispatchedEvent(st.ProjectID, task.ID, string(task.Type), task.Stage()))
	}
	runner.Run(ctx, st, task)
	return nil
}

func (d *Dispatcher) notifyApproval(st *project.State, approval project.ApprovalRequest) {
	d.log.Info("approval requested",
		"approval_id", approval.ID,
		"approval_type", string(approval.Type),
		"plan_id", approval.PlanID)
	if d.bus != nil {
		d.bus.Publish(event.NewApprovalRequestedEvent(
			st.ProjectID, approval.ID, string(approval.Type), approval.PlanID, approval.TaskIDs))
	}
}

// group tracks runner goroutines so Close can wait for in-flight agent
// round trips.
type group struct {
	wg sync.WaitGroup
}

func (g *group) spawn(fn func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		fn()
	}()
}

func (g *group) wait() { g.wg.Wait() }
