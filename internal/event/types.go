// Package event defines event types for decoupling components in the
// agent manager. These events enable communication between the TUI, the
// orchestrator, and the dispatcher without requiring direct dependencies.
package event

import "time"

// Event is the interface that all events must implement.
// It provides a common way to identify and timestamp events.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "task.dispatched", "plan.proposed")
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Phase
// -----------------------------------------------------------------------------

// Phase represents the lifecycle phase of a project.
// Mirrors project.Phase for decoupling.
type Phase string

const (
	PhaseIdle                      Phase = "idle"
	PhasePlanning                  Phase = "planning"
	PhaseAwaitingClarification     Phase = "awaiting_clarification"
	PhaseAwaitingApproval          Phase = "awaiting_approval"
	PhaseAwaitingExecutionApproval Phase = "awaiting_execution_approval"
	PhaseExecuting                 Phase = "executing"
	PhasePaused                    Phase = "paused"
	PhaseCompleted                 Phase = "completed"
	PhaseError                     Phase = "error"
)

// -----------------------------------------------------------------------------
// Project Lifecycle Events
// -----------------------------------------------------------------------------

// ProjectCreatedEvent is emitted when a new project is initialized.
type ProjectCreatedEvent struct {
	baseEvent
	ProjectID string // Unique identifier for the project
	Goal      string // The high-level goal the project pursues
}

// NewProjectCreatedEvent creates a ProjectCreatedEvent.
func NewProjectCreatedEvent(projectID, goal string) ProjectCreatedEvent {
	return ProjectCreatedEvent{
		baseEvent: newBaseEvent("project.created"),
		ProjectID: projectID,
		Goal:      goal,
	}
}

// IntentHandledEvent is emitted after the orchestrator applies an intent
// to the project state.
type IntentHandledEvent struct {
	baseEvent
	ProjectID  string // Project the intent was applied to
	IntentType string // Intent type identifier (e.g., "approve_plan")
	FromPhase  Phase  // Phase before the intent was applied
	ToPhase    Phase  // Phase after the intent was applied
	Version    int    // State version after the intent was applied
}

// NewIntentHandledEvent creates an IntentHandledEvent.
func NewIntentHandledEvent(projectID, intentType string, fromPhase, toPhase Phase, version int) IntentHandledEvent {
	return IntentHandledEvent{
		baseEvent:  newBaseEvent("intent.handled"),
		ProjectID:  projectID,
		IntentType: intentType,
		FromPhase:  fromPhase,
		ToPhase:    toPhase,
		Version:    version,
	}
}

// PhaseChangedEvent is emitted when the project phase changes.
// It is not emitted for intents that keep the phase unchanged.
type PhaseChangedEvent struct {
	baseEvent
	ProjectID     string // Project whose phase changed
	PreviousPhase Phase  // Previous phase
	CurrentPhase  Phase  // New current phase
}

// NewPhaseChangedEvent creates a PhaseChangedEvent.
func NewPhaseChangedEvent(projectID string, previousPhase, currentPhase Phase) PhaseChangedEvent {
	return PhaseChangedEvent{
		baseEvent:     newBaseEvent("phase.changed"),
		ProjectID:     projectID,
		PreviousPhase: previousPhase,
		CurrentPhase:  currentPhase,
	}
}

// -----------------------------------------------------------------------------
// Task Events
// -----------------------------------------------------------------------------

// TaskDispatchedEvent is emitted when an agent task is handed to a backend.
type TaskDispatchedEvent struct {
	baseEvent
	ProjectID string // Project the task belongs to
	TaskID    string // Unique identifier for the task
	TaskType  string // "planning" or "execution"
	Stage     string // Planning stage or execution task title
}

// NewTaskDispatchedEvent creates a TaskDispatchedEvent.
func NewTaskDispatchedEvent(projectID, taskID, taskType, stage string) TaskDispatchedEvent {
	return TaskDispatchedEvent{
		baseEvent: newBaseEvent("task.dispatched"),
		ProjectID: projectID,
		TaskID:    taskID,
		TaskType:  taskType,
		Stage:     stage,
	}
}

// TaskCompletedEvent is emitted when an agent task reaches a terminal
// status, whether it succeeded or failed.
type TaskCompletedEvent struct {
	baseEvent
	ProjectID string // Project the task belongs to
	TaskID    string // Task that finished
	Success   bool   // Whether the task completed successfully
	Reason    string // Additional context (error message if failed)
}

// NewTaskCompletedEvent creates a TaskCompletedEvent.
func NewTaskCompletedEvent(projectID, taskID string, success bool, reason string) TaskCompletedEvent {
	return TaskCompletedEvent{
		baseEvent: newBaseEvent("task.completed"),
		ProjectID: projectID,
		TaskID:    taskID,
		Success:   success,
		Reason:    reason,
	}
}

// -----------------------------------------------------------------------------
// Planning Events
// -----------------------------------------------------------------------------

// PlanProposedEvent is emitted when the planner produces a plan that is
// ready for human review.
type PlanProposedEvent struct {
	baseEvent
	ProjectID string // Project the plan belongs to
	PlanID    string // Content-addressed plan identifier
	TaskCount int    // Number of execution tasks in the plan
}

// NewPlanProposedEvent creates a PlanProposedEvent.
func NewPlanProposedEvent(projectID, planID string, taskCount int) PlanProposedEvent {
	return PlanProposedEvent{
		baseEvent: newBaseEvent("plan.proposed"),
		ProjectID: projectID,
		PlanID:    planID,
		TaskCount: taskCount,
	}
}

// ClarificationRequestedEvent is emitted when the planner needs answers
// from the human before it can produce a plan.
type ClarificationRequestedEvent struct {
	baseEvent
	ProjectID       string   // Project awaiting clarification
	ClarificationID string   // Identifier for the clarification round
	Questions       []string // Questions the planner asked
}

// NewClarificationRequestedEvent creates a ClarificationRequestedEvent.
func NewClarificationRequestedEvent(projectID, clarificationID string, questions []string) ClarificationRequestedEvent {
	return ClarificationRequestedEvent{
		baseEvent:       newBaseEvent("clarification.requested"),
		ProjectID:       projectID,
		ClarificationID: clarificationID,
		Questions:       questions,
	}
}

// -----------------------------------------------------------------------------
// Approval Events
// -----------------------------------------------------------------------------

// ApprovalRequestedEvent is emitted when the state machine blocks on a
// human approval gate.
type ApprovalRequestedEvent struct {
	baseEvent
	ProjectID    string   // Project awaiting approval
	ApprovalID   string   // Identifier to pass back when approving
	ApprovalType string   // "plan", "execution_start", or "execution_retry"
	PlanID       string   // Plan being gated (empty for retry gates without a plan)
	TaskIDs      []string // Tasks gated by this approval (execution gates only)
}

// NewApprovalRequestedEvent creates an ApprovalRequestedEvent.
func NewApprovalRequestedEvent(projectID, approvalID, approvalType, planID string, taskIDs []string) ApprovalRequestedEvent {
	return ApprovalRequestedEvent{
		baseEvent:    newBaseEvent("approval.requested"),
		ProjectID:    projectID,
		ApprovalID:   approvalID,
		ApprovalType: approvalType,
		PlanID:       planID,
		TaskIDs:      taskIDs,
	}
}
