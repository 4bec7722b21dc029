package machine

import (
	"github.com/sean-lai-sh/agent-manager/internal/project"
)

// Kind identifies an intent type. Kind values appear verbatim in the
// history records appended by [Transit].
type Kind string

const (
	KindCreateProject         Kind = "create_project"
	KindAddFeature            Kind = "add_feature"
	KindRequestClarifications Kind = "request_clarifications"
	KindAnswerClarifications  Kind = "answer_clarifications"
	KindFinalizeScope         Kind = "finalize_scope"
	KindApprovePlan           Kind = "approve_plan"
	KindApproveExecution      Kind = "approve_execution"
	KindReplan                Kind = "replan"
	KindRunTasks              Kind = "run_tasks"
	KindRetryTasks            Kind = "retry_tasks"
	KindPauseExecution        Kind = "pause_execution"
	KindAgentResult           Kind = "agent_result"
)

// Intent is a request to advance the project lifecycle. Implementations
// are plain data; all behavior lives in [Transit].
type Intent interface {
	Kind() Kind
}

// CreateProject starts a new project from a goal. It is the only intent
// that is valid against a nil state; against an existing state it is
// rejected.
//
// The approval toggles are pointers so that an unset flag falls back to
// the default ([project.DefaultSettings]) instead of clobbering it with
// a zero value.
type CreateProject struct {
	ProjectID                string
	Goal                     string
	Context                  *project.Context
	RequireExecutionApproval *bool
	RequireRetryApproval     *bool
}

func (CreateProject) Kind() Kind { return KindCreateProject }

// AddFeature asks the planner to extend the current scope with a new
// feature description.
type AddFeature struct {
	Description string
}

func (AddFeature) Kind() Kind { return KindAddFeature }

// RequestClarifications records questions raised outside the planner
// loop, for example by a human reviewer.
type RequestClarifications struct {
	Questions []string
	// Discussion carries optional free-form notes folded into the
	// project discussion alongside the questions.
	Discussion []string
}

func (RequestClarifications) Kind() Kind { return KindRequestClarifications }

// AnswerClarifications resolves an open clarification record and
// re-enters planning with the answers in context.
type AnswerClarifications struct {
	ClarificationID string
	// Answers align positionally with the record's questions.
	Answers []string
}

func (AnswerClarifications) Kind() Kind { return KindAnswerClarifications }

// FinalizeScope force-resolves all open clarifications and requests a
// final plan from the planner.
type FinalizeScope struct {
	Note string
}

func (FinalizeScope) Kind() Kind { return KindFinalizeScope }

// ApprovePlan adopts a proposed plan. Both identifiers must match the
// pending approval request.
type ApprovePlan struct {
	ApprovalID string
	PlanID     string
}

func (ApprovePlan) Kind() Kind { return KindApprovePlan }

// ApproveExecution consumes a pending execution approval (start or
// retry) and dispatches the tasks it gates.
type ApproveExecution struct {
	ApprovalID string
}

func (ApproveExecution) Kind() Kind { return KindApproveExecution }

// Replan discards the current direction and asks the planner for a new
// plan, optionally explaining why.
type Replan struct {
	Reason string
}

func (Replan) Kind() Kind { return KindReplan }

// RunTasks dispatches pending execution tasks. An empty TaskIDs selects
// every pending execution task.
type RunTasks struct {
	TaskIDs []string
}

func (RunTasks) Kind() Kind { return KindRunTasks }

// RetryTasks resets failed execution tasks to pending and either
// re-dispatches them or, when retry approval is required, parks them
// behind an execution_retry approval. An empty TaskIDs selects every
// failed execution task.
type RetryTasks struct {
	TaskIDs []string
}

func (RetryTasks) Kind() Kind { return KindRetryTasks }

// PauseExecution halts dispatching without touching in-flight tasks.
type PauseExecution struct {
	Reason string
}

func (PauseExecution) Kind() Kind { return KindPauseExecution }

// AgentResult reports the outcome of a dispatched task back into the
// machine. For planning tasks Output carries the raw planner response;
// for execution tasks Artifacts, Logs and Error carry the result
// envelope fields.
type AgentResult struct {
	TaskID string
	Status project.ResultStatus
	// Output is the planner payload: a raw string, raw bytes, or an
	// already-decoded JSON object.
	Output    any
	Artifacts []any
	Logs      []string
	Error     string
}

func (AgentResult) Kind() Kind { return KindAgentResult }
