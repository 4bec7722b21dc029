package machine

import (
	"fmt"

	"github.com/sean-lai-sh/agent-manager/internal/project"
)

// EffectType identifies a side effect requested by a transition.
type EffectType string

const (
	EffectDispatchAgentTask EffectType = "dispatch_agent_task"
	EffectRequestApproval   EffectType = "request_approval"
)

// Effect is a side effect the caller must execute after the successor
// state has been persisted. Effects hold copies of state data, never
// pointers into the returned state.
type Effect interface {
	Type() EffectType
}

// DispatchAgentTask asks the dispatcher to hand the task to its runner
// (planner backend for planning tasks, executor backend for execution
// tasks).
type DispatchAgentTask struct {
	Task project.AgentTask
}

func (DispatchAgentTask) Type() EffectType { return EffectDispatchAgentTask }

func (e DispatchAgentTask) String() string {
	return fmt.Sprintf("dispatch_agent_task(%s %s)", e.Task.Type, e.Task.ID)
}

// RequestApproval surfaces a pending approval to the operator, for
// example as a terminal notice or a TUI prompt.
type RequestApproval struct {
	Approval project.ApprovalRequest
}

func (RequestApproval) Type() EffectType { return EffectRequestApproval }

func (e RequestApproval) String() string {
	return fmt.Sprintf("request_approval(%s %s)", e.Approval.Type, e.Approval.ID)
}
