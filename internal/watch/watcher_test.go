package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitForChange(t *testing.T, w *Watcher) bool {
	t.Helper()
	select {
	case <-w.Changes():
		return true
	case <-time.After(2 * time.Second):
		return false
	}
}

func TestWatcherNotifiesOnAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "project.json")

	w, err := New(target)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer w.Close()

	// Mirror the store's write path: temp file then rename.
	tmp := filepath.Join(dir, ".project.json.tmp")
	if err := os.WriteFile(tmp, []byte(`{"projectId":"p1"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, target); err != nil {
		t.Fatal(err)
	}

	if !waitForChange(t, w) {
		t.Fatal("no notification after atomic replace")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := New(filepath.Join(dir, "project.json"))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer w.Close()

	// The logger writes into the same state directory; the watcher must
	// not fire for it.
	if err := os.WriteFile(filepath.Join(dir, "debug.log"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.Changes():
		t.Error("unexpected notification for unrelated file")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherCoalescesBursts(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "project.json")

	w, err := New(target)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer w.Close()

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(target, []byte{byte('0' + i)}, 0644); err != nil {
			t.Fatal(err)
		}
	}

	if !waitForChange(t, w) {
		t.Fatal("no notification after burst")
	}

	// The burst happened within one debounce window; a second
	// notification should not arrive.
	select {
	case <-w.Changes():
		t.Error("burst was not coalesced")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w, err := New(filepath.Join(dir, "project.json"))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("first Close error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close error: %v", err)
	}
}
