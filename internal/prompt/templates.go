package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sean-lai-sh/agent-manager/internal/project"
)

// Mode selects the authored flavor of the built-in templates.
type Mode string

const (
	// ModeConversation phrases the planner exchange as an open scoping
	// conversation. This is the default.
	ModeConversation Mode = "conversation"

	// ModeChecklist phrases the planner exchange as working through the
	// required-coverage checklist.
	ModeChecklist Mode = "checklist"
)

// ParseMode maps a configuration string onto a Mode, defaulting to
// conversation for unknown values.
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == ModeChecklist {
		return ModeChecklist
	}
	return ModeConversation
}

// Override file names looked up in the renderer's template directory.
const (
	clarificationOverrideFile = "clarification.prompt"
	planningOverrideFile      = "planning.prompt"
)

// responseSchema states the wire contract appended to every built-in
// prompt. The planner must return exactly one JSON object matching it.
const responseSchema = `## Response format

Respond with a single JSON object and nothing else. Return exactly one of:

{"questions": ["<one specific question>"]}

{"plan": {
  "roadmap":  [{"title": "...", "description": "...", "targetDate": "..."}],
  "features": [{"title": "...", "description": "...", "dependencies": [], "owners": []}],
  "tasks":    [{"title": "...", "description": "...", "role": "...", "dependsOn": [], "payload": {}}],
  "rationale": "..."}}

Rules:
- "questions" holds at most one question per turn.
- A plan needs at least one roadmap milestone, one feature, and one task.
- Every milestone, feature, and task needs a non-empty title.
- "role" is free-form; suggested values: frontend, backend, ai_orchestration, infrastructure, testing, documentation, design.
- You may add a "discussion" array of short notes about your reasoning.`

const conversationClarificationTemplate = `You are a software project planner in a scoping conversation with a user.

%s
## Instructions

Read the scope above carefully. If anything essential to planning is still unclear, ask exactly ONE question - the single most important one. Only once the scope is genuinely clear should you produce the full plan instead.

%s`

const checklistClarificationTemplate = `You are a software project planner working through a scoping checklist with a user.

%s
## Checklist

Planning requires all of the following to be covered:
1. Project goal
2. Target customer (ICP)
3. Technology stack
4. Constraints (budget, timeline, limits)
5. Core features

Work through the checklist against the scope above. If an item is not covered, ask exactly ONE question targeting the highest-numbered uncovered item. If every item is covered, produce the full plan instead.

%s`

const conversationFinalTemplate = `You are a software project planner. Scoping is complete; produce the final plan.

%s
## Instructions

All required scope information is present above. Do not ask further questions. Produce a realistic, dependency-ordered plan for this project.

%s`

const checklistFinalTemplate = `You are a software project planner. Every checklist item is covered; produce the final plan.

%s
## Instructions

The goal, target customer, technology stack, constraints, and core features above are final. Do not ask further questions. Produce a realistic, dependency-ordered plan covering every core feature.

%s`

// StrictJSONReminder is appended to the original prompt for the single
// retry after the planner returned unparseable output.
const StrictJSONReminder = `

IMPORTANT: Your previous response could not be parsed. Respond with ONLY a single valid JSON object. No prose, no markdown fences, no text before or after the object.`

// Renderer produces planner prompts. The zero value renders built-in
// conversation-mode templates; set OverrideDir to honor user template
// files with $variable substitution.
type Renderer struct {
	Mode        Mode
	OverrideDir string
}

// Render builds the prompt for one planner turn. When ready is true the
// final planning template is used, otherwise the clarification template.
// If a matching override file exists in OverrideDir it replaces the
// built-in template entirely; unreadable overrides fall back to the
// built-ins.
func (r Renderer) Render(in Input, ready bool) string {
	if text, ok := r.override(ready); ok {
		return os.Expand(text, func(key string) string {
			switch key {
			case "goal":
				return in.Goal
			case "stage":
				return in.Stage
			case "note":
				return in.Note
			case "context":
				return contextBlock(in.Context)
			case "clarifications":
				return clarificationsBlock(in.Answered)
			}
			return ""
		})
	}

	scope := scopeBlock(in)
	template := conversationClarificationTemplate
	switch {
	case ready && r.Mode == ModeChecklist:
		template = checklistFinalTemplate
	case ready:
		template = conversationFinalTemplate
	case r.Mode == ModeChecklist:
		template = checklistClarificationTemplate
	}
	return fmt.Sprintf(template, scope, responseSchema)
}

func (r Renderer) override(ready bool) (string, bool) {
	if r.OverrideDir == "" {
		return "", false
	}
	name := clarificationOverrideFile
	if ready {
		name = planningOverrideFile
	}
	data, err := os.ReadFile(filepath.Join(r.OverrideDir, name))
	if err != nil {
		return "", false
	}
	return string(data), true
}

func scopeBlock(in Input) string {
	var b strings.Builder
	b.WriteString("## Goal\n\n")
	if in.Goal != "" {
		b.WriteString(in.Goal)
	} else {
		b.WriteString("(not provided yet)")
	}
	b.WriteString("\n\n")

	if ctx := contextBlock(in.Context); ctx != "" {
		b.WriteString("## Known context\n\n")
		b.WriteString(ctx)
		b.WriteString("\n")
	}
	if clar := clarificationsBlock(in.Answered); clar != "" {
		b.WriteString("## Answered clarifications\n\n")
		b.WriteString(clar)
		b.WriteString("\n")
	}
	if in.Note != "" {
		b.WriteString("## Note from the user\n\n")
		b.WriteString(in.Note)
		b.WriteString("\n\n")
	}
	return b.String()
}

func contextBlock(ctx *project.Context) string {
	if ctx == nil {
		return ""
	}
	var lines []string
	if ctx.ICP != "" {
		lines = append(lines, "- Target customer (ICP): "+ctx.ICP)
	}
	if len(ctx.TechStack) > 0 {
		lines = append(lines, "- Tech stack: "+strings.Join(ctx.TechStack, ", "))
	}
	if len(ctx.Constraints) > 0 {
		lines = append(lines, "- Constraints: "+strings.Join(ctx.Constraints, ", "))
	}
	if len(ctx.CoreFeatures) > 0 {
		lines = append(lines, "- Core features: "+strings.Join(ctx.CoreFeatures, ", "))
	}
	return strings.Join(lines, "\n")
}

func clarificationsBlock(answered []project.ClarificationRecord) string {
	var lines []string
	for _, rec := range answered {
		for i, q := range rec.Questions {
			answer := ""
			if i < len(rec.Answers) {
				answer = rec.Answers[i]
			}
			lines = append(lines, fmt.Sprintf("- Q: %s\n  A: %s", q, answer))
		}
	}
	return strings.Join(lines, "\n")
}
