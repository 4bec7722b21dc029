package project

import (
	"strings"
	"testing"
)

func TestDeterministicIDStability(t *testing.T) {
	content := map[string]any{
		"questions": []string{"Who is the target user?"},
		"createdAt": "2026-01-02T03:04:05Z",
	}

	first := DeterministicID("clarification", content)
	second := DeterministicID("clarification", content)
	if first != second {
		t.Errorf("same content produced different ids: %q vs %q", first, second)
	}

	if !strings.HasPrefix(first, "clarification-") {
		t.Errorf("id %q missing kind prefix", first)
	}
	suffix := strings.TrimPrefix(first, "clarification-")
	if len(suffix) != idHashLen {
		t.Errorf("hash suffix length = %d, want %d", len(suffix), idHashLen)
	}
}

func TestDeterministicIDDiffersByContent(t *testing.T) {
	a := DeterministicID("plan", map[string]any{"title": "A"})
	b := DeterministicID("plan", map[string]any{"title": "B"})
	if a == b {
		t.Errorf("different content produced identical id %q", a)
	}
}

func TestNewTaskIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewTaskID()
		if id == "" {
			t.Fatal("empty task id")
		}
		if seen[id] {
			t.Fatalf("duplicate task id %q", id)
		}
		seen[id] = true
	}
}
