// Package watch observes the persisted state document so read-only
// surfaces (dashboard, status) can refresh on commit without polling.
// The watcher never reads or writes state itself; it only reports that
// the file changed.
package watch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow collapses the write+rename burst of one atomic save
// into a single notification.
const debounceWindow = 100 * time.Millisecond

// Watcher delivers a notification on its channel whenever the state
// file is rewritten.
type Watcher struct {
	watcher  *fsnotify.Watcher
	fileName string
	changes  chan struct{}

	mu      sync.Mutex
	stopped bool
	stopCh  chan struct{}
}

// New watches the state file at path. The parent directory is watched
// rather than the file itself, because atomic rename writes replace the
// inode on every save.
func New(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher:  fsw,
		fileName: filepath.Base(path),
		changes:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Changes returns the notification channel. It carries at most one
// pending notification; coalesced bursts are delivered once.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Close stops the watcher and releases the inotify resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopCh)
	return w.watcher.Close()
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != w.fileName {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounceWindow)
			}
		case <-timerCh:
			timer = nil
			timerCh = nil
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}
