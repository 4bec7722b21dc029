package executor

import (
	"encoding/json"
	"strings"

	"github.com/sean-lai-sh/agent-manager/internal/project"
)

// TaskEnvelope is the JSON document written to an agent process for one
// execution task.
type TaskEnvelope struct {
	TaskID          string         `json:"task_id"`
	Inputs          map[string]any `json:"inputs"`
	Constraints     map[string]any `json:"constraints,omitempty"`
	ExpectedOutputs []any          `json:"expected_outputs,omitempty"`
}

// ResultEnvelope is the JSON document an agent process reports back.
type ResultEnvelope struct {
	TaskID    string   `json:"task_id"`
	Status    string   `json:"status"`
	Artifacts []any    `json:"artifacts,omitempty"`
	Logs      []string `json:"logs,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// Success reports whether the envelope carries a successful status.
func (r ResultEnvelope) Success() bool {
	return r.Status == string(project.ResultSuccess)
}

// NewTaskEnvelope builds the envelope for a dispatched execution task.
// The task input becomes the inputs mapping; a "constraints" entry and
// an "expectedOutputs" entry inside the task payload are lifted into
// their envelope fields.
func NewTaskEnvelope(task project.AgentTask) TaskEnvelope {
	env := TaskEnvelope{
		TaskID: task.ID,
		Inputs: map[string]any{},
	}
	for k, v := range task.Input {
		env.Inputs[k] = v
	}

	payload, _ := env.Inputs["payload"].(map[string]any)
	if c, ok := payload["constraints"].(map[string]any); ok {
		env.Constraints = c
	}
	if e, ok := payload["expectedOutputs"].([]any); ok {
		env.ExpectedOutputs = e
	}
	return env
}

// ParseResult decodes agent output into a ResultEnvelope. Free text that
// is not a JSON result envelope is treated as a success whose sole
// artifact is the raw text, so plain agent CLIs work unmodified.
func ParseResult(taskID string, raw []byte) ResultEnvelope {
	trimmed := strings.TrimSpace(string(raw))

	var env ResultEnvelope
	if err := json.Unmarshal([]byte(trimmed), &env); err == nil && env.Status != "" {
		if env.TaskID == "" {
			env.TaskID = taskID
		}
		return env
	}

	return ResultEnvelope{
		TaskID:    taskID,
		Status:    string(project.ResultSuccess),
		Artifacts: []any{trimmed},
	}
}
