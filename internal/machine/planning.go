package machine

import (
	"fmt"
	"time"

	"github.com/sean-lai-sh/agent-manager/internal/plan"
	"github.com/sean-lai-sh/agent-manager/internal/project"
)

// newPlanningTask synthesizes a planner conversation task carrying the
// goal, the stage, an optional note, and the answered clarifications so
// far. Planning tasks dispatch at synthesis, so they start in_progress
// with DispatchedAt stamped.
func newPlanningTask(st *project.State, stage, note string, now time.Time) project.AgentTask {
	input := map[string]any{
		"goal":  st.Goal,
		"stage": stage,
	}
	if note != "" {
		input["note"] = note
	}
	if pairs := answeredPairs(st); len(pairs) > 0 {
		input["clarifications"] = pairs
	}
	t := project.AgentTask{
		ID:        project.NewTaskID(),
		Type:      project.TaskPlanning,
		Status:    project.TaskInProgress,
		CreatedAt: now,
		Input:     input,
	}
	d := now
	t.DispatchedAt = &d
	return t
}

// answeredPairs flattens answered clarification records into
// question/answer pairs, aligned by index.
func answeredPairs(st *project.State) []any {
	var pairs []any
	for _, c := range st.AnsweredClarifications() {
		for i, q := range c.Questions {
			answer := ""
			if i < len(c.Answers) {
				answer = c.Answers[i]
			}
			pairs = append(pairs, map[string]any{"question": q, "answer": answer})
		}
	}
	return pairs
}

func createProject(st *project.State, in CreateProject, now time.Time) Outcome {
	if st != nil {
		return reject(st, KindCreateProject,
			fmt.Sprintf("project %q already exists; create_project ignored", st.ProjectID), now)
	}

	settings := project.DefaultSettings()
	if in.RequireExecutionApproval != nil {
		settings.RequireExecutionApproval = *in.RequireExecutionApproval
	}
	if in.RequireRetryApproval != nil {
		settings.RequireRetryApproval = *in.RequireRetryApproval
	}

	st = project.New(in.ProjectID, settings, now)
	st.Goal = in.Goal
	if in.Context != nil {
		st.Context = &project.Context{
			ICP:          in.Context.ICP,
			TechStack:    append([]string(nil), in.Context.TechStack...),
			Constraints:  append([]string(nil), in.Context.Constraints...),
			CoreFeatures: append([]string(nil), in.Context.CoreFeatures...),
		}
	}

	task := newPlanningTask(st, project.StageClarification, "", now)
	st.PendingTasks = append(st.PendingTasks, task)
	applyTransition(st, KindCreateProject, project.PhasePlanning, now)
	return Outcome{State: st, Effects: []Effect{DispatchAgentTask{Task: task.Clone()}}}
}

func addFeature(st *project.State, in AddFeature, now time.Time) Outcome {
	task := newPlanningTask(st, project.StageClarification, in.Description, now)
	st.PendingTasks = append(st.PendingTasks, task)
	applyTransition(st, KindAddFeature, project.PhasePlanning, now)
	return Outcome{State: st, Effects: []Effect{DispatchAgentTask{Task: task.Clone()}}}
}

func requestClarifications(st *project.State, in RequestClarifications, now time.Time) Outcome {
	rec := newClarification(in.Questions, now)
	st.Clarifications = append(st.Clarifications, rec)
	for _, note := range in.Discussion {
		appendDiscussion(st, project.DiscussionClarification, note, now, map[string]any{"clarificationId": rec.ID})
	}
	applyTransition(st, KindRequestClarifications, project.PhaseAwaitingClarification, now)
	return Outcome{State: st}
}

func answerClarifications(st *project.State, in AnswerClarifications, now time.Time) Outcome {
	rec := st.Clarification(in.ClarificationID)
	if rec == nil {
		return fail(st, KindAnswerClarifications,
			fmt.Sprintf("unknown clarification id %q", in.ClarificationID), now)
	}
	rec.Answers = append([]string(nil), in.Answers...)
	rec.Status = project.ClarificationAnswered
	r := now
	rec.ResolvedAt = &r

	task := newPlanningTask(st, project.StageClarification, "", now)
	st.PendingTasks = append(st.PendingTasks, task)
	applyTransition(st, KindAnswerClarifications, project.PhasePlanning, now)
	return Outcome{State: st, Effects: []Effect{DispatchAgentTask{Task: task.Clone()}}}
}

func finalizeScope(st *project.State, in FinalizeScope, now time.Time) Outcome {
	for i := range st.Clarifications {
		c := &st.Clarifications[i]
		if c.Status == project.ClarificationResolved {
			continue
		}
		c.Status = project.ClarificationResolved
		if c.ResolvedAt == nil {
			r := now
			c.ResolvedAt = &r
		}
	}

	task := newPlanningTask(st, project.StageFinal, in.Note, now)
	st.PendingTasks = append(st.PendingTasks, task)
	applyTransition(st, KindFinalizeScope, project.PhasePlanning, now)
	return Outcome{State: st, Effects: []Effect{DispatchAgentTask{Task: task.Clone()}}}
}

func replan(st *project.State, in Replan, now time.Time) Outcome {
	task := newPlanningTask(st, project.StageClarification, in.Reason, now)
	st.PendingTasks = append(st.PendingTasks, task)
	applyTransition(st, KindReplan, project.PhasePlanning, now)
	return Outcome{State: st, Effects: []Effect{DispatchAgentTask{Task: task.Clone()}}}
}

// planningResult folds a planner response into the state. The task
// status has already been updated by the caller.
//
// A failure result moves the project to error. A successful result that
// cannot be parsed into questions or a plan is recorded as a discussion
// note and leaves the project in planning, since the conversation can
// continue via replan or finalize_scope.
func planningResult(st *project.State, t *project.AgentTask, res AgentResult, now time.Time) Outcome {
	if t.Status == project.TaskFailed {
		msg := "planning failed"
		if res.Error != "" {
			msg += ": " + res.Error
		}
		return fail(st, KindAgentResult, msg, now)
	}

	out, err := plan.Parse(res.Output)
	if err != nil {
		appendDiscussion(st, project.DiscussionSystem, "planner output unusable: "+err.Error(), now, nil)
		applyTransition(st, KindAgentResult, project.PhasePlanning, now)
		return Outcome{State: st}
	}

	foldDiscussion(st, out.Discussion, now)

	if out.IsQuestions() {
		rec := newClarification(out.Questions, now)
		st.Clarifications = append(st.Clarifications, rec)
		appendDiscussion(st, project.DiscussionClarification, out.Questions[0], now,
			map[string]any{"clarificationId": rec.ID})
		applyTransition(st, KindAgentResult, project.PhaseAwaitingClarification, now)
		return Outcome{State: st}
	}

	snap := plan.Normalize(out.Draft, now)
	if _, ok := st.Plans[snap.ID]; !ok {
		st.Plans[snap.ID] = snap
	}
	st.CurrentPlanID = snap.ID

	approval := newApproval(project.ApprovalPlan, snap.ID, nil, map[string]any{
		"planId":    snap.ID,
		"taskCount": len(snap.Tasks),
	}, now)
	st.Approvals = append(st.Approvals, approval)
	appendDiscussion(st, project.DiscussionPlan,
		fmt.Sprintf("plan %s proposed with %d tasks", snap.ID, len(snap.Tasks)), now,
		map[string]any{"planId": snap.ID})
	applyTransition(st, KindAgentResult, project.PhaseAwaitingApproval, now)
	return Outcome{State: st, Effects: []Effect{RequestApproval{Approval: approval.Clone()}}}
}

// foldDiscussion appends planner discussion notes to the project
// timeline. Unknown note types collapse to system.
func foldDiscussion(st *project.State, notes []plan.DiscussionNote, now time.Time) {
	for _, n := range notes {
		typ := project.DiscussionType(n.Type)
		switch typ {
		case project.DiscussionClarification, project.DiscussionPlan,
			project.DiscussionExecution, project.DiscussionSystem:
		default:
			typ = project.DiscussionSystem
		}
		ts := now
		if n.Timestamp != nil {
			ts = n.Timestamp.UTC()
		}
		appendDiscussion(st, typ, n.Message, ts, n.Metadata)
	}
}
