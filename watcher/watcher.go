// Package watcher wraps fsnotify to emit debounced filesystem events for
// the live-update path. It is grounded in standardbeagle/lci's
// internal/indexing FileWatcher and eventDebouncer: one fsnotify.Watcher
// recursively registered over the watched roots, feeding a per-path
// debouncer that coalesces rapid-fire events before they reach the caller.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Kind identifies what happened to a path, matching the four variants
// named for the watcher contract: Create, Modify, Delete, Move.
type Kind int

const (
	Create Kind = iota
	Modify
	Delete
	Move
)

// Event is a single, debounced filesystem change.
type Event struct {
	Kind Kind
	Path string
	// From is set only for Move, naming the event's prior path.
	From string
}

// excludeFunc reports whether path should be ignored entirely - not
// watched, and never emitted. The watcher asks the scanner's exclusion
// logic through this hook rather than importing it, keeping the two
// packages decoupled.
type excludeFunc func(path string) bool

// Watcher recursively watches a set of roots and emits debounced Events.
type Watcher struct {
	fsw      *fsnotify.Watcher
	excluded excludeFunc
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]Event

	events chan Event
}

// New creates a Watcher rooted at roots. excluded may be nil, meaning
// nothing is excluded. debounce coalesces bursts of events for the same
// path (standardbeagle/lci's WatchDebounceMs setting).
func New(roots []string, excluded excludeFunc, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if excluded == nil {
		excluded = func(string) bool { return false }
	}

	w := &Watcher{
		fsw:      fsw,
		excluded: excluded,
		debounce: debounce,
		pending:  make(map[string]Event),
		events:   make(chan Event, 256),
	}

	for _, root := range roots {
		if err := w.addTree(root); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.excluded(p) {
			return filepath.SkipDir
		}
		return w.fsw.Add(p)
	})
}

// Events returns the channel Events are delivered on. It is closed when
// Run returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run processes fsnotify events until ctx is canceled or the underlying
// watcher errors unrecoverably. It does not flush pending debounced events
// on shutdown - events pending at shutdown are acceptable to lose, since a
// cold-start scan covers the same ground the next time the daemon starts.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)
	defer w.fsw.Close()

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	timerActive := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case raw, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.excluded(raw.Name) {
				continue
			}

			if raw.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(raw.Name); err == nil && info.IsDir() {
					w.addTree(raw.Name)
				}
			}

			w.addPending(raw)
			if !timerActive {
				timer.Reset(w.debounce)
				timerActive = true
			}

		case <-timer.C:
			timerActive = false
			w.flush()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			_ = err // surfaced via logging at the call site, not fatal here
		}
	}
}

// addPending records the latest event kind observed for raw.Name, keeping
// only the most recent classification per path - mirroring the
// eventDebouncer's "store the latest event for this path" rule.
func (w *Watcher) addPending(raw fsnotify.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	kind := classify(raw.Op)
	w.pending[raw.Name] = Event{Kind: kind, Path: raw.Name}
}

func (w *Watcher) flush() {
	w.mu.Lock()
	batch := w.pending
	w.pending = make(map[string]Event)
	w.mu.Unlock()

	for _, ev := range batch {
		w.events <- ev
	}
}

func classify(op fsnotify.Op) Kind {
	switch {
	case op&fsnotify.Remove != 0:
		return Delete
	case op&fsnotify.Rename != 0:
		// fsnotify reports a rename as a Remove-shaped event on the old
		// name with no new-name correlation available on most platforms;
		// without a reliable From, every rename degrades to Delete of the
		// old path, so Move is never emitted.
		return Delete
	case op&fsnotify.Create != 0:
		return Create
	default:
		return Modify
	}
}
