package plan

import "time"

// Draft is the wire shape of a plan as emitted by the planner. All ids
// are optional; Normalize assigns positional ids to entries that lack
// one.
type Draft struct {
	Roadmap   []MilestoneDraft `json:"roadmap"`
	Features  []FeatureDraft   `json:"features"`
	Tasks     []TaskDraft      `json:"tasks"`
	Rationale string           `json:"rationale,omitempty"`
}

// MilestoneDraft is one roadmap entry on the wire.
type MilestoneDraft struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	TargetDate  string `json:"targetDate,omitempty"`
}

// FeatureDraft is one feature entry on the wire.
type FeatureDraft struct {
	ID           string   `json:"id,omitempty"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	Owners       []string `json:"owners,omitempty"`
}

// TaskDraft is one executable task entry on the wire.
type TaskDraft struct {
	ID          string         `json:"id,omitempty"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Role        string         `json:"role"`
	DependsOn   []string       `json:"dependsOn,omitempty"`
	Payload     map[string]any `json:"payload,omitempty"`
}

// DiscussionNote is an optional planner-side commentary entry that gets
// folded into the project discussion timeline.
type DiscussionNote struct {
	Type      string         `json:"type,omitempty"`
	Message   string         `json:"message"`
	Timestamp *time.Time     `json:"timestamp,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Output is the validated planning outcome. Exactly one of Questions or
// Draft is set.
type Output struct {
	// Questions holds the single clarifying question when the planner
	// chose to ask instead of plan.
	Questions []string

	// Draft holds the validated plan when the planner produced one.
	Draft *Draft

	// Discussion carries any commentary the planner attached.
	Discussion []DiscussionNote
}

// IsQuestions reports whether the output is a clarification request.
func (o *Output) IsQuestions() bool {
	return o != nil && len(o.Questions) > 0
}

// IsPlan reports whether the output is a plan draft.
func (o *Output) IsPlan() bool {
	return o != nil && o.Draft != nil
}
