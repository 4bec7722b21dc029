package dispatch

import (
	"context"
	"time"

	"github.com/sean-lai-sh/agent-manager/internal/errors"
	"github.com/sean-lai-sh/agent-manager/internal/executor"
	"github.com/sean-lai-sh/agent-manager/internal/logging"
	"github.com/sean-lai-sh/agent-manager/internal/machine"
	"github.com/sean-lai-sh/agent-manager/internal/project"
)

// ExecutorRunner hands execution tasks to the executor backend, capped
// at a configured number of concurrent agents, and translates result
// envelopes into agent_result intents.
type ExecutorRunner struct {
	backend executor.Backend
	sink    ResultSink
	timeout time.Duration
	slots   chan struct{}
	log     *logging.Logger

	grp group
}

// NewExecutorRunner builds an executor runner. maxParallel caps
// concurrently running agents (values below one run unbounded);
// timeout bounds one task execution, zero means no limit.
func NewExecutorRunner(backend executor.Backend, sink ResultSink, maxParallel int, timeout time.Duration, log *logging.Logger) *ExecutorRunner {
	if log == nil {
		log = logging.NopLogger()
	}
	var slots chan struct{}
	if maxParallel > 0 {
		slots = make(chan struct{}, maxParallel)
	}
	return &ExecutorRunner{
		backend: backend,
		sink:    sink,
		timeout: timeout,
		slots:   slots,
		log:     log.WithComponent("executor"),
	}
}

// Run hands the execution task to a goroutine and returns immediately.
func (r *ExecutorRunner) Run(ctx context.Context, st *project.State, task project.AgentTask) {
	r.grp.spawn(func() {
		r.runTask(ctx, task)
	})
}

// Wait blocks until all in-flight executions have completed.
func (r *ExecutorRunner) Wait() { r.grp.wait() }

func (r *ExecutorRunner) runTask(ctx context.Context, task project.AgentTask) {
	if r.slots != nil {
		select {
		case r.slots <- struct{}{}:
			defer func() { <-r.slots }()
		case <-ctx.Done():
			r.submit(ctx, failureResult(task.ID, ctx.Err()))
			return
		}
	}

	log := r.log.WithTask(task.ID)
	log.Info("executing task", "backend", r.backend.Name())

	execCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	env, err := r.backend.Execute(execCtx, executor.NewTaskEnvelope(task))
	if errors.Is(err, executor.ErrNoResult) {
		// Manual backend: the task stays in flight until the operator
		// submits a result envelope through the result command.
		log.Info("dispatch recorded, awaiting manual result")
		return
	}
	if err != nil {
		log.Error("execution failed", "error", err)
		r.submit(ctx, failureResult(task.ID, err))
		return
	}

	res := machine.AgentResult{
		TaskID:    task.ID,
		Status:    project.ResultSuccess,
		Artifacts: env.Artifacts,
		Logs:      env.Logs,
		Error:     env.Error,
	}
	if !env.Success() {
		res.Status = project.ResultFailure
	}
	log.Info("execution finished", "status", string(res.Status))
	r.submit(ctx, res)
}

func failureResult(taskID string, cause error) machine.AgentResult {
	return machine.AgentResult{
		TaskID: taskID,
		Status: project.ResultFailure,
		Error:  cause.Error(),
	}
}

func (r *ExecutorRunner) submit(ctx context.Context, res machine.AgentResult) {
	if err := r.sink.Submit(context.WithoutCancel(ctx), res); err != nil {
		r.log.WithTask(res.TaskID).Error("failed to submit execution result", "error", err)
	}
}
