package prompt

import (
	"github.com/sean-lai-sh/agent-manager/internal/project"
)

// Input is everything template rendering needs for one planner turn.
type Input struct {
	Goal    string
	Context *project.Context

	// Answered carries clarification rounds with usable answers, oldest
	// first.
	Answered []project.ClarificationRecord

	// Stage is the planning stage of the task being dispatched.
	Stage string

	// Note is an optional free-form addition (feature description,
	// replan reason, finalize note).
	Note string
}

// Build assembles the prompt input for a planning task. Goal, stage, and
// note come from the task's input snapshot (falling back to the state's
// goal); context and answered clarifications come from the state, which
// was persisted before the task was dispatched.
func Build(st *project.State, task project.AgentTask) Input {
	in := Input{
		Goal:     st.Goal,
		Context:  st.Context,
		Answered: st.AnsweredClarifications(),
		Stage:    project.StageClarification,
	}
	if task.Input != nil {
		if g, ok := task.Input["goal"].(string); ok && g != "" {
			in.Goal = g
		}
		if s, ok := task.Input["stage"].(string); ok && s != "" {
			in.Stage = s
		}
		if n, ok := task.Input["note"].(string); ok {
			in.Note = n
		}
	}
	return in
}
