package plan

import (
	"testing"
	"time"
)

var normNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func makeDraft() *Draft {
	return &Draft{
		Roadmap:  []MilestoneDraft{{Title: "M1"}, {ID: "custom", Title: "M2"}},
		Features: []FeatureDraft{{Title: "F1"}},
		Tasks: []TaskDraft{
			{Title: "T1", Role: "backend"},
			{Title: "T2"},
		},
		Rationale: "ship fast",
	}
}

func TestNormalizeAssignsPositionalIDs(t *testing.T) {
	snap := Normalize(makeDraft(), normNow)

	if got := snap.Roadmap[0].ID; got != "m1" {
		t.Errorf("roadmap[0].ID = %q, want m1", got)
	}
	if got := snap.Roadmap[1].ID; got != "custom" {
		t.Errorf("roadmap[1].ID = %q, want provided id kept", got)
	}
	if got := snap.Features[0].ID; got != "f1" {
		t.Errorf("features[0].ID = %q, want f1", got)
	}
	if got := snap.Tasks[1].ID; got != "t2" {
		t.Errorf("tasks[1].ID = %q, want t2", got)
	}
	if got := snap.Tasks[1].Role; got != DefaultRole {
		t.Errorf("tasks[1].Role = %q, want default", got)
	}
}

func TestNormalizeFillsUntitled(t *testing.T) {
	snap := Normalize(&Draft{
		Roadmap:  []MilestoneDraft{{Description: "no title"}},
		Features: []FeatureDraft{{Title: "  "}},
		Tasks:    []TaskDraft{{}},
	}, normNow)

	if got := snap.Roadmap[0].Title; got != untitledMilestone {
		t.Errorf("milestone title = %q, want %q", got, untitledMilestone)
	}
	if got := snap.Features[0].Title; got != untitledFeature {
		t.Errorf("feature title = %q, want %q", got, untitledFeature)
	}
	if got := snap.Tasks[0].Title; got != untitledTask {
		t.Errorf("task title = %q, want %q", got, untitledTask)
	}
}

func TestNormalizeContentAddressing(t *testing.T) {
	first := Normalize(makeDraft(), normNow)
	second := Normalize(makeDraft(), normNow.Add(time.Hour))

	if first.ID != second.ID {
		t.Errorf("same content produced different ids: %q vs %q", first.ID, second.ID)
	}

	changed := makeDraft()
	changed.Tasks[0].Title = "T1 revised"
	third := Normalize(changed, normNow)
	if third.ID == first.ID {
		t.Error("changed content kept the same id")
	}
}

func TestNormalizeSetsCreatedAtUTC(t *testing.T) {
	local := time.Date(2026, 1, 2, 12, 0, 0, 0, time.FixedZone("X", 3600))
	snap := Normalize(makeDraft(), local)
	if snap.CreatedAt.Location() != time.UTC {
		t.Errorf("CreatedAt zone = %v, want UTC", snap.CreatedAt.Location())
	}
}
