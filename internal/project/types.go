package project

import (
	"time"
)

// Phase represents the lifecycle phase of a project.
type Phase string

const (
	// PhaseIdle is the phase of a freshly created project before any
	// planning activity has been recorded.
	PhaseIdle Phase = "idle"

	// PhasePlanning indicates a planning task is outstanding with the
	// planner backend.
	PhasePlanning Phase = "planning"

	// PhaseAwaitingClarification indicates the planner asked a question
	// and the project is blocked on a user answer.
	PhaseAwaitingClarification Phase = "awaiting_clarification"

	// PhaseAwaitingApproval indicates a plan snapshot is waiting for the
	// user to adopt it.
	PhaseAwaitingApproval Phase = "awaiting_approval"

	// PhaseAwaitingExecutionApproval indicates execution (start or retry)
	// is gated on an explicit user approval.
	PhaseAwaitingExecutionApproval Phase = "awaiting_execution_approval"

	// PhaseExecuting indicates execution tasks have been dispatched.
	PhaseExecuting Phase = "executing"

	// PhasePaused indicates the user suspended execution.
	PhasePaused Phase = "paused"

	// PhaseCompleted indicates every execution task finished successfully.
	PhaseCompleted Phase = "completed"

	// PhaseError indicates a failed precondition, planner failure, or
	// exhausted execution. Recoverable via replan or add_feature.
	PhaseError Phase = "error"
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	return string(p)
}

// Valid reports whether p is one of the enumerated phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseIdle, PhasePlanning, PhaseAwaitingClarification,
		PhaseAwaitingApproval, PhaseAwaitingExecutionApproval,
		PhaseExecuting, PhasePaused, PhaseCompleted, PhaseError:
		return true
	}
	return false
}

// Terminal reports whether p is a resting phase. Both terminal phases can
// re-enter planning through add_feature or replan.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseError
}

// Planning stages recorded in a planning task's input. The clarification
// stage lets the planner ask questions; the final stage forces a plan.
const (
	StageClarification = "clarification"
	StageFinal         = "final"
)

// TaskType distinguishes planner conversations from execution work.
type TaskType string

const (
	// TaskPlanning marks a task dispatched to the planner backend.
	TaskPlanning TaskType = "planning"

	// TaskExecution marks a task dispatched to the executor backend.
	TaskExecution TaskType = "execution"
)

// TaskStatus represents the current state of an agent task.
type TaskStatus string

const (
	// TaskPending indicates the task has not been dispatched yet.
	TaskPending TaskStatus = "pending"

	// TaskInProgress indicates the task has been handed to a backend.
	TaskInProgress TaskStatus = "in_progress"

	// TaskCompleted indicates the backend reported success.
	TaskCompleted TaskStatus = "completed"

	// TaskFailed indicates the backend reported failure.
	TaskFailed TaskStatus = "failed"
)

// IsTerminal returns true if this status represents a final state.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// AgentTask is a unit of work dispatched to an agent backend.
//
// Once DispatchedAt is set it never changes; retries create no new task
// but reset Status to pending, and the next dispatch stamps the field only
// if it is still nil.
type AgentTask struct {
	ID        string     `json:"id"`
	Type      TaskType   `json:"type"`
	Status    TaskStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`

	// Input is the opaque payload handed to the backend. For planning
	// tasks it carries goal, stage, note, and answered clarifications.
	Input map[string]any `json:"input,omitempty"`

	// DispatchedAt records the first hand-off to a backend.
	DispatchedAt *time.Time `json:"dispatchedAt,omitempty"`

	// PlanID links execution tasks to the plan they were synthesized from.
	PlanID string `json:"planId,omitempty"`

	// DefinitionID links execution tasks to the ExecutionTaskDef inside
	// that plan.
	DefinitionID string `json:"definitionId,omitempty"`
}

// Stage returns the planning stage recorded in the task input
// ("clarification" or "final"), or an empty string for execution tasks.
func (t AgentTask) Stage() string {
	if t.Input == nil {
		return ""
	}
	s, _ := t.Input["stage"].(string)
	return s
}

// ClarificationStatus tracks the lifecycle of a clarification record.
type ClarificationStatus string

const (
	// ClarificationOpen means the question awaits a user answer.
	ClarificationOpen ClarificationStatus = "open"

	// ClarificationAnswered means answers were recorded and fed back to
	// the planner.
	ClarificationAnswered ClarificationStatus = "answered"

	// ClarificationResolved means the record was closed, typically by
	// finalize_scope.
	ClarificationResolved ClarificationStatus = "resolved"
)

// ClarificationRecord captures one planner question round and its answers.
// Answers align with Questions by index once the record is answered.
type ClarificationRecord struct {
	ID         string              `json:"id"`
	Questions  []string            `json:"questions"`
	Answers    []string            `json:"answers,omitempty"`
	Status     ClarificationStatus `json:"status"`
	CreatedAt  time.Time           `json:"createdAt"`
	ResolvedAt *time.Time          `json:"resolvedAt,omitempty"`
}

// Answered reports whether the record carries a usable answer.
func (c ClarificationRecord) Answered() bool {
	if c.Status != ClarificationAnswered && c.Status != ClarificationResolved {
		return false
	}
	for _, a := range c.Answers {
		if a != "" {
			return true
		}
	}
	return false
}

// Milestone is one roadmap entry of a plan.
type Milestone struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	TargetDate  string `json:"targetDate,omitempty"`
}

// Feature is one product feature of a plan.
type Feature struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	Owners       []string `json:"owners,omitempty"`
}

// ExecutionTaskDef describes one executable task inside a plan.
//
// Role is an open string. The prompt suggests frontend, backend,
// ai_orchestration, infrastructure, testing, documentation, and design,
// but any value the planner emits is accepted.
type ExecutionTaskDef struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Role        string         `json:"role"`
	DependsOn   []string       `json:"dependsOn,omitempty"`
	Payload     map[string]any `json:"payload,omitempty"`
}

// PlanSnapshot is an immutable, content-addressed plan. Its ID is the
// deterministic hash of the normalized roadmap, features, tasks, and
// rationale, so identical plan content always maps to the same snapshot.
type PlanSnapshot struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"createdAt"`
	Roadmap   []Milestone        `json:"roadmap"`
	Features  []Feature          `json:"features"`
	Tasks     []ExecutionTaskDef `json:"tasks"`
	Rationale string             `json:"rationale,omitempty"`
}

// ApprovalType identifies what an approval unblocks.
type ApprovalType string

const (
	// ApprovalPlan gates adoption of a plan snapshot.
	ApprovalPlan ApprovalType = "plan"

	// ApprovalExecutionStart gates the first dispatch of execution tasks.
	ApprovalExecutionStart ApprovalType = "execution_start"

	// ApprovalExecutionRetry gates re-dispatch of failed execution tasks.
	ApprovalExecutionRetry ApprovalType = "execution_retry"
)

// ApprovalRequest is a pending user gate. Approvals are consumed exactly
// once: consuming one removes it from State.Approvals.
type ApprovalRequest struct {
	ID          string         `json:"id"`
	Type        ApprovalType   `json:"type"`
	RequestedAt time.Time      `json:"requestedAt"`
	Details     map[string]any `json:"details,omitempty"`
	PlanID      string         `json:"planId,omitempty"`
	TaskIDs     []string       `json:"taskIds,omitempty"`
}

// ResultStatus is the reported outcome of an agent task.
type ResultStatus string

const (
	// ResultSuccess maps to task status completed.
	ResultSuccess ResultStatus = "success"

	// ResultFailure maps to task status failed.
	ResultFailure ResultStatus = "failure"
)

// TaskResult is the stored record of one execution task outcome.
type TaskResult struct {
	Status     ResultStatus `json:"status"`
	Artifacts  []any        `json:"artifacts,omitempty"`
	Logs       []string     `json:"logs,omitempty"`
	Error      string       `json:"error,omitempty"`
	ReceivedAt time.Time    `json:"receivedAt"`
}

// ExecutionSummary aggregates execution task statuses.
type ExecutionSummary struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	InProgress int `json:"inProgress"`
}

// ExecutionFailure names one failed execution task and why it failed.
type ExecutionFailure struct {
	TaskID string `json:"taskId"`
	Reason string `json:"reason"`
}

// ExecutionState is the derived execution view. It is recomputed from
// PendingTasks and Results on every update and is never the source of
// truth for task status.
type ExecutionState struct {
	Results  map[string]TaskResult `json:"results"`
	Summary  ExecutionSummary      `json:"summary"`
	Failures []ExecutionFailure    `json:"failures,omitempty"`
}

// DiscussionType categorizes a discussion entry.
type DiscussionType string

const (
	// DiscussionClarification marks planner question traffic.
	DiscussionClarification DiscussionType = "clarification"

	// DiscussionPlan marks plan proposal and adoption notes.
	DiscussionPlan DiscussionType = "plan"

	// DiscussionExecution marks execution progress notes.
	DiscussionExecution DiscussionType = "execution"

	// DiscussionSystem marks orchestrator bookkeeping, including
	// rejection and failure explanations.
	DiscussionSystem DiscussionType = "system"
)

// DiscussionEntry is one append-only timeline entry.
type DiscussionEntry struct {
	ID        string         `json:"id"`
	Type      DiscussionType `json:"type"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// TransitionRecord is one append-only history entry. History length always
// equals Version after the first transition.
type TransitionRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	IntentType string    `json:"intentType"`
	From       Phase     `json:"from"`
	To         Phase     `json:"to"`
}

// Context holds the structured scope answers gathered for a project.
type Context struct {
	ICP          string   `json:"icp,omitempty"`
	TechStack    []string `json:"techStack,omitempty"`
	Constraints  []string `json:"constraints,omitempty"`
	CoreFeatures []string `json:"coreFeatures,omitempty"`
}

// Settings are the per-project approval gates.
type Settings struct {
	RequireExecutionApproval bool `json:"requireExecutionApproval"`
	RequireRetryApproval     bool `json:"requireRetryApproval"`
}

// DefaultSettings returns the gate defaults: execution starts without an
// extra approval, retries require one.
func DefaultSettings() Settings {
	return Settings{
		RequireExecutionApproval: false,
		RequireRetryApproval:     true,
	}
}

// State is the root aggregate, exactly one per store. Version strictly
// increases on every applied or rejected intent; PendingTasks keeps
// insertion order and is never reordered.
type State struct {
	ProjectID string    `json:"projectId"`
	Phase     Phase     `json:"phase"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`

	Goal    string   `json:"goal,omitempty"`
	Context *Context `json:"context,omitempty"`

	Plans         map[string]PlanSnapshot `json:"plans"`
	CurrentPlanID string                  `json:"currentPlanId,omitempty"`

	PendingTasks   []AgentTask           `json:"pendingTasks"`
	Approvals      []ApprovalRequest     `json:"approvals"`
	Clarifications []ClarificationRecord `json:"clarifications"`
	Discussion     []DiscussionEntry     `json:"discussion"`

	Execution *ExecutionState `json:"execution,omitempty"`
	Settings  Settings        `json:"settings"`

	History []TransitionRecord `json:"history"`
}

// New returns a fresh idle State with the given identifier and settings.
func New(projectID string, settings Settings, now time.Time) *State {
	return &State{
		ProjectID: projectID,
		Phase:     PhaseIdle,
		Version:   0,
		UpdatedAt: now.UTC(),
		Plans:     map[string]PlanSnapshot{},
		Settings:  settings,
	}
}

// Task returns a pointer to the task with the given id, or nil. The
// pointer aliases the slice entry; callers that do not own s must not
// mutate through it.
func (s *State) Task(id string) *AgentTask {
	for i := range s.PendingTasks {
		if s.PendingTasks[i].ID == id {
			return &s.PendingTasks[i]
		}
	}
	return nil
}

// Approval returns a pointer to the approval with the given id, or nil.
func (s *State) Approval(id string) *ApprovalRequest {
	for i := range s.Approvals {
		if s.Approvals[i].ID == id {
			return &s.Approvals[i]
		}
	}
	return nil
}

// RemoveApproval deletes the approval with the given id, preserving the
// order of the remainder. It reports whether anything was removed.
func (s *State) RemoveApproval(id string) bool {
	for i := range s.Approvals {
		if s.Approvals[i].ID == id {
			s.Approvals = append(s.Approvals[:i:i], s.Approvals[i+1:]...)
			return true
		}
	}
	return false
}

// Clarification returns a pointer to the clarification with the given id,
// or nil.
func (s *State) Clarification(id string) *ClarificationRecord {
	for i := range s.Clarifications {
		if s.Clarifications[i].ID == id {
			return &s.Clarifications[i]
		}
	}
	return nil
}

// AnsweredClarifications returns the records carrying a usable answer, in
// insertion order.
func (s *State) AnsweredClarifications() []ClarificationRecord {
	var out []ClarificationRecord
	for _, c := range s.Clarifications {
		if c.Answered() {
			out = append(out, c.Clone())
		}
	}
	return out
}

// HasPendingExecutionApproval reports whether an execution_start or
// execution_retry approval is outstanding.
func (s *State) HasPendingExecutionApproval() bool {
	for _, a := range s.Approvals {
		if a.Type == ApprovalExecutionStart || a.Type == ApprovalExecutionRetry {
			return true
		}
	}
	return false
}

// RecomputeExecution rebuilds the derived execution view from
// PendingTasks and the retained results. Results for unknown task ids are
// dropped, so inconsistencies are self-healing.
func (s *State) RecomputeExecution() {
	var results map[string]TaskResult
	if s.Execution != nil {
		results = s.Execution.Results
	}

	next := &ExecutionState{Results: map[string]TaskResult{}}
	for _, t := range s.PendingTasks {
		if t.Type != TaskExecution {
			continue
		}
		next.Summary.Total++
		switch t.Status {
		case TaskCompleted:
			next.Summary.Completed++
		case TaskFailed:
			next.Summary.Failed++
		case TaskInProgress:
			next.Summary.InProgress++
		}
		r, ok := results[t.ID]
		if ok {
			next.Results[t.ID] = r.Clone()
		}
		if t.Status == TaskFailed {
			reason := "task failed"
			if ok && r.Error != "" {
				reason = r.Error
			}
			next.Failures = append(next.Failures, ExecutionFailure{TaskID: t.ID, Reason: reason})
		}
	}
	s.Execution = next
}
