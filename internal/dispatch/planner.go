package dispatch

import (
	"context"
	"time"

	"github.com/sean-lai-sh/agent-manager/internal/llm"
	"github.com/sean-lai-sh/agent-manager/internal/logging"
	"github.com/sean-lai-sh/agent-manager/internal/machine"
	"github.com/sean-lai-sh/agent-manager/internal/plan"
	"github.com/sean-lai-sh/agent-manager/internal/project"
	"github.com/sean-lai-sh/agent-manager/internal/prompt"
)

// PlannerRunner drives one planner conversation turn per dispatched
// planning task: readiness decision, prompt rendering, backend call,
// parse, and the single strict-JSON retry.
type PlannerRunner struct {
	backend  llm.Backend
	renderer prompt.Renderer
	sink     ResultSink
	timeout  time.Duration
	log      *logging.Logger

	grp group
}

// NewPlannerRunner builds a planner runner. timeout bounds each backend
// call; zero means no limit.
func NewPlannerRunner(backend llm.Backend, renderer prompt.Renderer, sink ResultSink, timeout time.Duration, log *logging.Logger) *PlannerRunner {
	if log == nil {
		log = logging.NopLogger()
	}
	return &PlannerRunner{
		backend:  backend,
		renderer: renderer,
		sink:     sink,
		timeout:  timeout,
		log:      log.WithComponent("planner"),
	}
}

// Run hands the planning task to a goroutine and returns immediately.
// The turn completes via the sink as an agent_result intent.
func (r *PlannerRunner) Run(ctx context.Context, st *project.State, task project.AgentTask) {
	snapshot := st.Clone()
	r.grp.spawn(func() {
		r.runTurn(ctx, snapshot, task)
	})
}

// Wait blocks until all in-flight planner turns have completed.
func (r *PlannerRunner) Wait() { r.grp.wait() }

func (r *PlannerRunner) runTurn(ctx context.Context, st *project.State, task project.AgentTask) {
	log := r.log.WithTask(task.ID)

	in := prompt.Build(st, task)
	coverage := prompt.Evaluate(st, in.Stage)
	rendered := r.renderer.Render(in, coverage.Ready)
	log.Debug("planner turn started", "stage", in.Stage, "ready", coverage.Ready, "missing", coverage.Missing)

	raw, err := r.complete(ctx, rendered)
	if err != nil {
		r.submitFailure(ctx, task, err)
		return
	}

	if _, parseErr := plan.Parse(raw); parseErr != nil {
		log.Warn("planner output unparseable, retrying once", "error", parseErr)
		raw, err = r.complete(ctx, rendered+prompt.StrictJSONReminder)
		if err != nil {
			r.submitFailure(ctx, task, err)
			return
		}
		if _, parseErr = plan.Parse(raw); parseErr != nil {
			r.submitFailure(ctx, task, parseErr)
			return
		}
	}

	r.submit(ctx, machine.AgentResult{
		TaskID: task.ID,
		Status: project.ResultSuccess,
		Output: raw,
	})
}

func (r *PlannerRunner) complete(ctx context.Context, rendered string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return r.backend.Complete(ctx, llm.Request{Prompt: rendered})
}

func (r *PlannerRunner) submitFailure(ctx context.Context, task project.AgentTask, cause error) {
	r.log.WithTask(task.ID).Error("planner turn failed", "error", cause)
	r.submit(ctx, machine.AgentResult{
		TaskID: task.ID,
		Status: project.ResultFailure,
		Error:  cause.Error(),
	})
}

func (r *PlannerRunner) submit(ctx context.Context, res machine.AgentResult) {
	// Submission must outlive the intent that spawned the turn, so the
	// sink gets a fresh context.
	if err := r.sink.Submit(context.WithoutCancel(ctx), res); err != nil {
		r.log.WithTask(res.TaskID).Error("failed to submit planner result", "error", err)
	}
}
