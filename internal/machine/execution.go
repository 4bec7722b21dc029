package machine

import (
	"fmt"
	"time"

	"github.com/sean-lai-sh/agent-manager/internal/project"
)

func approvePlan(st *project.State, in ApprovePlan, now time.Time) Outcome {
	appr := st.Approval(in.ApprovalID)
	if appr == nil || appr.Type != project.ApprovalPlan {
		return fail(st, KindApprovePlan,
			fmt.Sprintf("no pending plan approval %q", in.ApprovalID), now)
	}
	if appr.PlanID != in.PlanID {
		return fail(st, KindApprovePlan,
			fmt.Sprintf("approval %q gates plan %q, not %q", in.ApprovalID, appr.PlanID, in.PlanID), now)
	}
	snap, ok := st.Plans[in.PlanID]
	if !ok {
		return fail(st, KindApprovePlan, fmt.Sprintf("plan %q not found", in.PlanID), now)
	}

	st.RemoveApproval(in.ApprovalID)
	st.CurrentPlanID = snap.ID

	// Synthesize one execution task per plan task, in plan order. The
	// defs are cloned so task inputs never alias the stored snapshot.
	defs := snap.Clone().Tasks
	taskIDs := make([]string, 0, len(defs))
	for _, def := range defs {
		task := project.AgentTask{
			ID:           project.NewTaskID(),
			Type:         project.TaskExecution,
			Status:       project.TaskPending,
			CreatedAt:    now,
			PlanID:       snap.ID,
			DefinitionID: def.ID,
			Input:        executionInput(def),
		}
		st.PendingTasks = append(st.PendingTasks, task)
		taskIDs = append(taskIDs, task.ID)
	}

	// The gate comes first even for an empty plan: approve_execution on
	// a zero-task gate settles the project to completed.
	if st.Settings.RequireExecutionApproval {
		st.RecomputeExecution()
		gate := newApproval(project.ApprovalExecutionStart, snap.ID, taskIDs, map[string]any{
			"planId":    snap.ID,
			"taskCount": len(taskIDs),
		}, now)
		st.Approvals = append(st.Approvals, gate)
		applyTransition(st, KindApprovePlan, project.PhaseAwaitingExecutionApproval, now)
		return Outcome{State: st, Effects: []Effect{RequestApproval{Approval: gate.Clone()}}}
	}

	if len(taskIDs) == 0 {
		st.RecomputeExecution()
		applyTransition(st, KindApprovePlan, project.PhaseCompleted, now)
		return Outcome{State: st}
	}

	effects := dispatchByID(st, taskIDs, now)
	st.RecomputeExecution()
	applyTransition(st, KindApprovePlan, project.PhaseExecuting, now)
	return Outcome{State: st, Effects: effects}
}

// executionInput builds the opaque backend payload for one plan task.
func executionInput(def project.ExecutionTaskDef) map[string]any {
	in := map[string]any{
		"title": def.Title,
		"role":  def.Role,
	}
	if def.Description != "" {
		in["description"] = def.Description
	}
	if len(def.DependsOn) > 0 {
		in["dependsOn"] = append([]string(nil), def.DependsOn...)
	}
	if len(def.Payload) > 0 {
		in["payload"] = def.Payload
	}
	return in
}

func approveExecution(st *project.State, in ApproveExecution, now time.Time) Outcome {
	appr := st.Approval(in.ApprovalID)
	if appr == nil ||
		(appr.Type != project.ApprovalExecutionStart && appr.Type != project.ApprovalExecutionRetry) {
		return fail(st, KindApproveExecution,
			fmt.Sprintf("no pending execution approval %q", in.ApprovalID), now)
	}

	ids := append([]string(nil), appr.TaskIDs...)
	st.RemoveApproval(in.ApprovalID)
	effects := dispatchByID(st, ids, now)
	st.RecomputeExecution()

	if st.Execution.Summary.Total == 0 {
		applyTransition(st, KindApproveExecution, project.PhaseCompleted, now)
		return Outcome{State: st}
	}
	applyTransition(st, KindApproveExecution, project.PhaseExecuting, now)
	return Outcome{State: st, Effects: effects}
}

func runTasks(st *project.State, in RunTasks, now time.Time) Outcome {
	if st.HasPendingExecutionApproval() {
		return reject(st, KindRunTasks,
			"execution approval is pending; resolve it before dispatching tasks", now)
	}

	ids := selectTasks(st, in.TaskIDs, project.TaskPending)
	effects := dispatchByID(st, ids, now)
	st.RecomputeExecution()

	// The phase is kept: dispatching never moves the lifecycle on its
	// own, so run_tasks from paused leaves the project paused.
	applyTransition(st, KindRunTasks, st.Phase, now)
	return Outcome{State: st, Effects: effects}
}

func retryTasks(st *project.State, in RetryTasks, now time.Time) Outcome {
	targets := selectTasks(st, in.TaskIDs, project.TaskFailed)
	if len(targets) == 0 {
		// Nothing failed, nothing to do. The state is returned as-is
		// with no version bump.
		return Outcome{State: st}
	}

	for _, id := range targets {
		t := st.Task(id)
		t.Status = project.TaskPending
		if st.Execution != nil {
			delete(st.Execution.Results, id)
		}
	}

	if st.Settings.RequireRetryApproval {
		st.RecomputeExecution()
		gate := newApproval(project.ApprovalExecutionRetry, st.CurrentPlanID, targets, map[string]any{
			"taskCount": len(targets),
		}, now)
		st.Approvals = append(st.Approvals, gate)
		applyTransition(st, KindRetryTasks, project.PhaseAwaitingExecutionApproval, now)
		return Outcome{State: st, Effects: []Effect{RequestApproval{Approval: gate.Clone()}}}
	}

	effects := dispatchByID(st, targets, now)
	st.RecomputeExecution()
	applyTransition(st, KindRetryTasks, project.PhaseExecuting, now)
	return Outcome{State: st, Effects: effects}
}

func pauseExecution(st *project.State, in PauseExecution, now time.Time) Outcome {
	msg := "execution paused"
	if in.Reason != "" {
		msg += ": " + in.Reason
	}
	appendDiscussion(st, project.DiscussionSystem, msg, now, nil)
	applyTransition(st, KindPauseExecution, project.PhasePaused, now)
	return Outcome{State: st}
}

// selectTasks returns the ids of execution tasks in the given status,
// restricted to the requested ids when any are listed. Unknown ids and
// tasks in other statuses are skipped silently.
func selectTasks(st *project.State, requested []string, status project.TaskStatus) []string {
	var ids []string
	if len(requested) > 0 {
		for _, id := range requested {
			t := st.Task(id)
			if t != nil && t.Type == project.TaskExecution && t.Status == status {
				ids = append(ids, id)
			}
		}
		return ids
	}
	for _, t := range st.PendingTasks {
		if t.Type == project.TaskExecution && t.Status == status {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// dispatchByID marks the given execution tasks dispatched and returns
// one dispatch effect per task, in id order.
func dispatchByID(st *project.State, ids []string, now time.Time) []Effect {
	effects := make([]Effect, 0, len(ids))
	for _, id := range ids {
		t := st.Task(id)
		if t == nil || t.Type != project.TaskExecution {
			continue
		}
		markDispatched(t, now)
		effects = append(effects, DispatchAgentTask{Task: t.Clone()})
	}
	return effects
}

// agentResult records a task outcome and routes by task type. A result
// for a task that already settled is a no-op, whatever status it
// carries: redelivery cannot double-append discussion or history, and a
// late conflicting result cannot flip a settled task.
func agentResult(st *project.State, in AgentResult, now time.Time) Outcome {
	t := st.Task(in.TaskID)
	if t == nil {
		return fail(st, KindAgentResult, fmt.Sprintf("result for unknown task %q", in.TaskID), now)
	}

	if t.Status.IsTerminal() {
		return Outcome{State: st}
	}
	t.Status = taskStatusFor(in.Status)

	if t.Type == project.TaskPlanning {
		return planningResult(st, t, in, now)
	}
	return executionResult(st, t, in, now)
}

// taskStatusFor maps a reported result status onto the task status enum.
// Anything that is not an explicit success counts as failure.
func taskStatusFor(rs project.ResultStatus) project.TaskStatus {
	if rs == project.ResultSuccess {
		return project.TaskCompleted
	}
	return project.TaskFailed
}

// executionResult stores the result envelope, recomputes the derived
// execution view, and settles the phase: completed when every execution
// task succeeded, error when nothing is outstanding but at least one
// task failed, otherwise the phase is kept (results are accepted while
// paused without resuming).
func executionResult(st *project.State, t *project.AgentTask, res AgentResult, now time.Time) Outcome {
	status := project.ResultFailure
	if t.Status == project.TaskCompleted {
		status = project.ResultSuccess
	}

	if st.Execution == nil {
		st.Execution = &project.ExecutionState{Results: map[string]project.TaskResult{}}
	}
	st.Execution.Results[t.ID] = project.TaskResult{
		Status:     status,
		Artifacts:  res.Artifacts,
		Logs:       append([]string(nil), res.Logs...),
		Error:      res.Error,
		ReceivedAt: now,
	}.Clone()
	st.RecomputeExecution()

	msg := fmt.Sprintf("task %s completed", t.ID)
	if status == project.ResultFailure {
		msg = fmt.Sprintf("task %s failed", t.ID)
		if res.Error != "" {
			msg += ": " + res.Error
		}
	}
	appendDiscussion(st, project.DiscussionExecution, msg, now, map[string]any{"taskId": t.ID})

	summary := st.Execution.Summary
	next := st.Phase
	switch {
	case summary.Total > 0 && summary.Completed == summary.Total:
		next = project.PhaseCompleted
	case summary.Failed > 0 && summary.Completed+summary.Failed == summary.Total:
		next = project.PhaseError
	}
	applyTransition(st, KindAgentResult, next, now)
	return Outcome{State: st}
}
