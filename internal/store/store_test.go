package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sean-lai-sh/agent-manager/internal/errors"
	"github.com/sean-lai-sh/agent-manager/internal/project"
)

func newTestState(t *testing.T) *project.State {
	t.Helper()
	st := project.New("proj-1a2b3c4d5e6f", project.DefaultSettings(), time.Now())
	st.Goal = "build a todo app"
	return st
}

func TestNewFileStore(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	if s == nil {
		t.Fatal("NewFileStore returned nil store")
	}

	want := filepath.Join(dir, StateFileName)
	if s.Path() != want {
		t.Errorf("Path() = %q, want %q", s.Path(), want)
	}
	if s.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", s.Dir(), dir)
	}
}

func TestNewFileStore_CreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")

	if _, err := NewFileStore(dir); err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("directory was not created: %v", err)
	}
	if !info.IsDir() {
		t.Fatal("path is not a directory")
	}
}

func TestFileStore_SaveLoad(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	ctx := context.Background()

	state := newTestState(t)
	state.Version = 3
	state.Phase = project.PhasePlanning

	if err := s.Save(ctx, state); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.ProjectID != state.ProjectID {
		t.Errorf("ProjectID = %q, want %q", loaded.ProjectID, state.ProjectID)
	}
	if loaded.Phase != project.PhasePlanning {
		t.Errorf("Phase = %q, want %q", loaded.Phase, project.PhasePlanning)
	}
	if loaded.Version != 3 {
		t.Errorf("Version = %d, want 3", loaded.Version)
	}
	if loaded.Goal != "build a todo app" {
		t.Errorf("Goal = %q, want %q", loaded.Goal, "build a todo app")
	}
}

func TestFileStore_Load_NotFound(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())

	_, err := s.Load(context.Background())
	if err == nil {
		t.Fatal("expected error for missing state document")
	}
	if !errors.Is(err, errors.ErrStateNotFound) {
		t.Errorf("expected ErrStateNotFound, got: %v", err)
	}
}

func TestFileStore_Load_Corrupted(t *testing.T) {
	t.Run("invalid json", func(t *testing.T) {
		dir := t.TempDir()
		s, _ := NewFileStore(dir)

		if err := os.WriteFile(s.Path(), []byte("{not json"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		_, err := s.Load(context.Background())
		if !errors.Is(err, errors.ErrStateCorrupted) {
			t.Errorf("expected ErrStateCorrupted, got: %v", err)
		}
	})

	t.Run("missing project id", func(t *testing.T) {
		dir := t.TempDir()
		s, _ := NewFileStore(dir)

		if err := os.WriteFile(s.Path(), []byte("{}"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		_, err := s.Load(context.Background())
		if !errors.Is(err, errors.ErrStateCorrupted) {
			t.Errorf("expected ErrStateCorrupted, got: %v", err)
		}
	})
}

func TestFileStore_Load_RestoresNilPlans(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewFileStore(dir)

	doc := `{"projectId": "proj-1a2b3c4d5e6f", "phase": "idle", "version": 0, "updatedAt": "2026-01-01T00:00:00Z"}`
	if err := os.WriteFile(s.Path(), []byte(doc), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	loaded, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Plans == nil {
		t.Error("Plans should be initialized after load")
	}
}

func TestFileStore_Save_NilState(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())

	err := s.Save(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error for nil state")
	}
}

func TestFileStore_Save_RecreatesDeletedDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("failed to remove dir: %v", err)
	}

	if err := s.Save(context.Background(), newTestState(t)); err != nil {
		t.Fatalf("Save after dir removal failed: %v", err)
	}

	if _, err := os.Stat(s.Path()); err != nil {
		t.Errorf("state document missing after save: %v", err)
	}
}

func TestFileStore_Save_Overwrites(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	ctx := context.Background()

	state := newTestState(t)
	if err := s.Save(ctx, state); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	state.Version = 7
	state.Phase = project.PhaseExecuting
	if err := s.Save(ctx, state); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Version != 7 {
		t.Errorf("Version = %d, want 7", loaded.Version)
	}
	if loaded.Phase != project.PhaseExecuting {
		t.Errorf("Phase = %q, want %q", loaded.Phase, project.PhaseExecuting)
	}
}

func TestFileStore_Save_WritesIndentedJSON(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())

	if err := s.Save(context.Background(), newTestState(t)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("failed to read document: %v", err)
	}

	if !json.Valid(data) {
		t.Error("document is not valid JSON")
	}
	if !strings.Contains(string(data), "\n  \"projectId\"") {
		t.Error("document should be indented")
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Error("document should end with a newline")
	}
}

func TestFileStore_Save_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewFileStore(dir)

	for range 5 {
		if err := s.Save(context.Background(), newTestState(t)); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", entry.Name())
		}
	}
}

func TestFileStore_Exists(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	ctx := context.Background()

	exists, err := s.Exists(ctx)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("Exists() = true before any save")
	}

	if err := s.Save(ctx, newTestState(t)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	exists, err = s.Exists(ctx)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("Exists() = false after save")
	}
}

func TestFileStore_Delete(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	ctx := context.Background()

	if err := s.Save(ctx, newTestState(t)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := s.Delete(ctx); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := s.Load(ctx); !errors.Is(err, errors.ErrStateNotFound) {
		t.Errorf("expected ErrStateNotFound after delete, got: %v", err)
	}
}

func TestFileStore_Delete_NotFound(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())

	err := s.Delete(context.Background())
	if !errors.Is(err, errors.ErrStateNotFound) {
		t.Errorf("expected ErrStateNotFound, got: %v", err)
	}
}

func TestFileStore_AcquireRelease(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())

	if err := s.AcquireLock(); err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}

	if err := s.ReleaseLock(); err != nil {
		t.Fatalf("ReleaseLock failed: %v", err)
	}

	// Reacquire after release.
	if err := s.AcquireLock(); err != nil {
		t.Fatalf("reacquire failed: %v", err)
	}
	if err := s.ReleaseLock(); err != nil {
		t.Fatalf("second ReleaseLock failed: %v", err)
	}
}

func TestFileStore_ReleaseLock_NotHeld(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())

	if err := s.ReleaseLock(); err != nil {
		t.Errorf("ReleaseLock without holding should not error, got: %v", err)
	}
}

func TestFileStore_RoundTripPreservesCollections(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	ctx := context.Background()

	state := newTestState(t)
	state.Discussion = append(state.Discussion, project.DiscussionEntry{
		ID:        "discussion-aaaaaaaaaaaa",
		Type:      "note",
		Message:   "kickoff",
		Timestamp: time.Now().UTC(),
	})
	state.History = append(state.History, project.TransitionRecord{
		Timestamp:  time.Now().UTC(),
		IntentType: "create_project",
		From:       project.PhaseIdle,
		To:         project.PhaseIdle,
	})

	if err := s.Save(ctx, state); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(loaded.Discussion) != 1 || loaded.Discussion[0].Message != "kickoff" {
		t.Errorf("Discussion not preserved: %+v", loaded.Discussion)
	}
	if len(loaded.History) != 1 || loaded.History[0].IntentType != "create_project" {
		t.Errorf("History not preserved: %+v", loaded.History)
	}
}
