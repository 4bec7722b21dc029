package prompt

import (
	"strings"

	"github.com/sean-lai-sh/agent-manager/internal/project"
)

// Required coverage fields, in reporting order.
const (
	FieldGoal         = "goal"
	FieldICP          = "icp"
	FieldTechStack    = "techStack"
	FieldConstraints  = "constraints"
	FieldCoreFeatures = "coreFeatures"
)

// Keyword sets used to credit a context field from answered
// clarifications. Matching is case-insensitive substring containment
// against both questions and answers.
var fieldKeywords = map[string][]string{
	FieldICP:          {"icp", "customer", "user", "audience", "target"},
	FieldTechStack:    {"tech", "stack", "technology", "framework", "language"},
	FieldConstraints:  {"constraint", "limit", "budget", "timeline", "deadline"},
	FieldCoreFeatures: {"feature", "functionality", "requirement", "must-have", "core"},
}

// Coverage is the readiness verdict for final planning.
type Coverage struct {
	// Ready is true when every required field is covered, or when the
	// planning stage is final.
	Ready bool

	// Missing lists the uncovered field names, in reporting order.
	Missing []string
}

// Evaluate decides whether the project is ready for final planning.
// Stage final short-circuits to ready regardless of coverage.
func Evaluate(st *project.State, stage string) Coverage {
	if stage == project.StageFinal {
		return Coverage{Ready: true}
	}

	answered := st.AnsweredClarifications()

	var missing []string
	if strings.TrimSpace(st.Goal) == "" {
		missing = append(missing, FieldGoal)
	}
	for _, field := range []string{FieldICP, FieldTechStack, FieldConstraints, FieldCoreFeatures} {
		if !structuredCovered(st.Context, field) && !keywordCovered(answered, fieldKeywords[field]) {
			missing = append(missing, field)
		}
	}
	return Coverage{Ready: len(missing) == 0, Missing: missing}
}

func structuredCovered(ctx *project.Context, field string) bool {
	if ctx == nil {
		return false
	}
	switch field {
	case FieldICP:
		return strings.TrimSpace(ctx.ICP) != ""
	case FieldTechStack:
		return len(ctx.TechStack) > 0
	case FieldConstraints:
		return len(ctx.Constraints) > 0
	case FieldCoreFeatures:
		return len(ctx.CoreFeatures) > 0
	}
	return false
}

func keywordCovered(answered []project.ClarificationRecord, keywords []string) bool {
	for _, rec := range answered {
		for _, text := range append(append([]string{}, rec.Questions...), rec.Answers...) {
			lower := strings.ToLower(text)
			for _, kw := range keywords {
				if strings.Contains(lower, kw) {
					return true
				}
			}
		}
	}
	return false
}
