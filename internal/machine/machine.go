package machine

import (
	"fmt"
	"time"

	"github.com/sean-lai-sh/agent-manager/internal/project"
)

// Outcome is the result of one transition: the successor state and the
// effects the caller must execute after persisting it.
type Outcome struct {
	State   *project.State
	Effects []Effect
}

// Transit advances a project through one intent. The input state is
// deep-copied before any mutation, so the caller's pointer is never
// touched and can serve as the rollback value.
//
// st may be nil only for [CreateProject]; any other intent against a nil
// state returns an empty Outcome. The caller is expected to guard that
// case before reaching the machine.
func Transit(st *project.State, in Intent, now time.Time) Outcome {
	now = now.UTC()
	st = st.Clone()

	if in == nil {
		if st == nil {
			return Outcome{}
		}
		return reject(st, "unknown", "nil intent", now)
	}
	if st == nil {
		if create, ok := in.(CreateProject); ok {
			return createProject(nil, create, now)
		}
		return Outcome{}
	}

	switch v := in.(type) {
	case CreateProject:
		return createProject(st, v, now)
	case AddFeature:
		return addFeature(st, v, now)
	case RequestClarifications:
		return requestClarifications(st, v, now)
	case AnswerClarifications:
		return answerClarifications(st, v, now)
	case FinalizeScope:
		return finalizeScope(st, v, now)
	case ApprovePlan:
		return approvePlan(st, v, now)
	case ApproveExecution:
		return approveExecution(st, v, now)
	case Replan:
		return replan(st, v, now)
	case RunTasks:
		return runTasks(st, v, now)
	case RetryTasks:
		return retryTasks(st, v, now)
	case PauseExecution:
		return pauseExecution(st, v, now)
	case AgentResult:
		return agentResult(st, v, now)
	default:
		return reject(st, in.Kind(), fmt.Sprintf("unknown intent type %q", in.Kind()), now)
	}
}

// applyTransition finalizes an accepted or rejected intent: it moves the
// phase, increments the version, stamps the update time, and appends the
// history record. Every non-no-op path funnels through here exactly once.
func applyTransition(st *project.State, kind Kind, to project.Phase, now time.Time) {
	from := st.Phase
	st.Phase = to
	st.Version++
	st.UpdatedAt = now
	st.History = append(st.History, project.TransitionRecord{
		Timestamp:  now,
		IntentType: string(kind),
		From:       from,
		To:         to,
	})
}

// reject records why the intent could not apply and keeps the phase. The
// version still increments so callers can observe that the intent was
// seen.
func reject(st *project.State, kind Kind, reason string, now time.Time) Outcome {
	appendDiscussion(st, project.DiscussionSystem, reason, now, nil)
	applyTransition(st, kind, st.Phase, now)
	return Outcome{State: st}
}

// fail records a precondition failure and moves the project to the error
// phase. Error is recoverable: replan and add_feature re-enter planning.
func fail(st *project.State, kind Kind, reason string, now time.Time) Outcome {
	appendDiscussion(st, project.DiscussionSystem, reason, now, nil)
	applyTransition(st, kind, project.PhaseError, now)
	return Outcome{State: st}
}

func appendDiscussion(st *project.State, typ project.DiscussionType, msg string, ts time.Time, metadata map[string]any) {
	entry := project.DiscussionEntry{
		Type:      typ,
		Message:   msg,
		Timestamp: ts,
		Metadata:  metadata,
	}
	entry.ID = project.DeterministicID("discussion", map[string]any{
		"type":      string(typ),
		"message":   msg,
		"timestamp": ts.Format(time.RFC3339Nano),
	})
	st.Discussion = append(st.Discussion, entry)
}

func newApproval(typ project.ApprovalType, planID string, taskIDs []string, details map[string]any, now time.Time) project.ApprovalRequest {
	a := project.ApprovalRequest{
		Type:        typ,
		RequestedAt: now,
		Details:     details,
		PlanID:      planID,
		TaskIDs:     append([]string(nil), taskIDs...),
	}
	a.ID = project.DeterministicID("approval", map[string]any{
		"type":        string(typ),
		"planId":      planID,
		"taskIds":     taskIDs,
		"requestedAt": now.Format(time.RFC3339Nano),
	})
	return a
}

func newClarification(questions []string, now time.Time) project.ClarificationRecord {
	c := project.ClarificationRecord{
		Questions: append([]string(nil), questions...),
		Status:    project.ClarificationOpen,
		CreatedAt: now,
	}
	c.ID = project.DeterministicID("clarification", map[string]any{
		"questions": questions,
		"createdAt": now.Format(time.RFC3339Nano),
	})
	return c
}

// markDispatched moves a task to in_progress. DispatchedAt is stamped on
// the first dispatch only; re-dispatch after a retry keeps the original.
func markDispatched(t *project.AgentTask, now time.Time) {
	t.Status = project.TaskInProgress
	if t.DispatchedAt == nil {
		d := now
		t.DispatchedAt = &d
	}
}
