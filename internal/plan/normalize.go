package plan

import (
	"strconv"
	"strings"
	"time"

	"github.com/sean-lai-sh/agent-manager/internal/project"
)

// DefaultRole is assigned to tasks the planner emitted without a role.
const DefaultRole = "execution"

// Untitled placeholders for entries that arrive without a title. Parse
// rejects those, but Normalize also runs on already-accepted payloads and
// must never produce an invalid snapshot from drifted input.
const (
	untitledMilestone = "Untitled milestone"
	untitledFeature   = "Untitled feature"
	untitledTask      = "Untitled task"
)

// Normalize converts a draft into an immutable plan snapshot. Missing
// titles are filled with untitled placeholders and missing ids are
// assigned positionally (m1, f1, t1, ...), so a given draft always
// normalizes to identical content and therefore an identical
// content-hash id. CreatedAt is not part of the hash.
func Normalize(d *Draft, createdAt time.Time) project.PlanSnapshot {
	snap := project.PlanSnapshot{
		CreatedAt: createdAt.UTC(),
		Roadmap:   make([]project.Milestone, len(d.Roadmap)),
		Features:  make([]project.Feature, len(d.Features)),
		Tasks:     make([]project.ExecutionTaskDef, len(d.Tasks)),
		Rationale: strings.TrimSpace(d.Rationale),
	}

	for i, m := range d.Roadmap {
		snap.Roadmap[i] = project.Milestone{
			ID:          positionalID(m.ID, "m", i),
			Title:       orDefault(m.Title, untitledMilestone),
			Description: strings.TrimSpace(m.Description),
			TargetDate:  strings.TrimSpace(m.TargetDate),
		}
	}
	for i, f := range d.Features {
		snap.Features[i] = project.Feature{
			ID:           positionalID(f.ID, "f", i),
			Title:        orDefault(f.Title, untitledFeature),
			Description:  strings.TrimSpace(f.Description),
			Dependencies: f.Dependencies,
			Owners:       f.Owners,
		}
	}
	for i, t := range d.Tasks {
		snap.Tasks[i] = project.ExecutionTaskDef{
			ID:          positionalID(t.ID, "t", i),
			Title:       orDefault(t.Title, untitledTask),
			Description: strings.TrimSpace(t.Description),
			Role:        orDefault(t.Role, DefaultRole),
			DependsOn:   t.DependsOn,
			Payload:     t.Payload,
		}
	}

	snap.ID = project.DeterministicID("plan", map[string]any{
		"roadmap":   snap.Roadmap,
		"features":  snap.Features,
		"tasks":     snap.Tasks,
		"rationale": snap.Rationale,
	})
	return snap
}

func positionalID(id, prefix string, index int) string {
	if trimmed := strings.TrimSpace(id); trimmed != "" {
		return trimmed
	}
	return prefix + strconv.Itoa(index+1)
}

func orDefault(s, def string) string {
	if trimmed := strings.TrimSpace(s); trimmed != "" {
		return trimmed
	}
	return def
}
