// Package watch notifies hosts when a project's readiness changes.
//
// Indexing runs out-of-band: the user runs cseek-init or cseek-index in
// a terminal while the editor is open. The watcher observes the project
// root for marker-directory changes, re-probes after a quiet period, and
// invokes a callback whenever the state actually transitions, so a host
// can refresh a statusline without polling.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/dshills/codeseek/internal/logging"
	"github.com/dshills/codeseek/internal/project"
	"github.com/fsnotify/fsnotify"
	"github.com/ternarybob/arbor"
)

var (
	// ErrAlreadyStarted indicates Start was called twice.
	ErrAlreadyStarted = errors.New("watcher already started")

	// ErrNotStarted indicates the watcher never started.
	ErrNotStarted = errors.New("watcher not started")
)

// Config configures a readiness watcher.
type Config struct {
	// Root is the project root to observe.
	Root string

	// Debounce is the quiet period before re-probing after a change.
	Debounce time.Duration
}

// DefaultConfig returns the default watcher configuration.
func DefaultConfig(root string) Config {
	return Config{
		Root:     root,
		Debounce: 500 * time.Millisecond,
	}
}

// Watcher reports readiness transitions for one project root.
type Watcher struct {
	config     Config
	prober     *project.Prober
	onChange   func(project.State)
	markerPath string

	fsw *fsnotify.Watcher
	ctx context.Context

	mu      sync.Mutex
	last    project.State
	timer   *time.Timer
	started bool
	closed  bool

	closeCh  chan struct{}
	closedWg sync.WaitGroup

	log arbor.ILogger
}

// New creates a watcher. The callback runs on the watcher's goroutines;
// hosts that need to touch UI state should hand off to their own loop.
func New(prober *project.Prober, config Config, onChange func(project.State)) *Watcher {
	if config.Debounce <= 0 {
		config.Debounce = 500 * time.Millisecond
	}

	return &Watcher{
		config:     config,
		prober:     prober,
		onChange:   onChange,
		markerPath: prober.MarkerPath(config.Root),
		closeCh:    make(chan struct{}),
		log:        logging.GetLogger(),
	}
}

// Start begins observing. The current state is probed immediately and
// reported through the callback before any transition.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return ErrAlreadyStarted
	}
	w.started = true
	w.mu.Unlock()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.abortStart()
		return fmt.Errorf("create watcher: %w", err)
	}

	if err := fsw.Add(w.config.Root); err != nil {
		_ = fsw.Close()
		w.abortStart()
		return fmt.Errorf("watch %s: %w", w.config.Root, err)
	}

	// Index activity happens inside the marker directory.
	if w.prober.MarkerPresent(w.config.Root) {
		_ = fsw.Add(w.markerPath)
	}

	w.fsw = fsw
	w.ctx = ctx

	state := w.prober.Probe(ctx, w.config.Root)
	w.mu.Lock()
	w.last = state
	w.mu.Unlock()
	if w.onChange != nil {
		w.onChange(state)
	}

	w.closedWg.Add(1)
	go w.processLoop()

	return nil
}

// abortStart rolls the started flag back after a failed Start.
func (w *Watcher) abortStart() {
	w.mu.Lock()
	w.started = false
	w.mu.Unlock()
}

// Stop halts observation. Safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return ErrNotStarted
	}
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	close(w.closeCh)
	w.mu.Unlock()

	w.closedWg.Wait()

	return w.fsw.Close()
}

// Last returns the most recently observed state.
func (w *Watcher) Last() project.State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

// processLoop handles incoming filesystem events.
func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Str("root", w.config.Root).Msg("watch error")
		}
	}
}

// handleEvent schedules a re-probe for marker-related changes.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Permission churn never changes readiness.
	if event.Op == fsnotify.Chmod {
		return
	}

	if !w.relevant(event.Name) {
		return
	}

	w.scheduleProbe()
}

// relevant reports whether a path can affect readiness. Everything else
// under the root is ordinary project activity and ignored.
func (w *Watcher) relevant(name string) bool {
	name = filepath.Clean(name)

	if name == w.markerPath {
		return true
	}
	return filepath.Dir(name) == w.markerPath
}

// scheduleProbe arms the debounce timer, coalescing event bursts from
// an index rebuild into a single probe.
func (w *Watcher) scheduleProbe() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	if w.timer != nil {
		w.timer.Reset(w.config.Debounce)
		return
	}

	w.timer = time.AfterFunc(w.config.Debounce, w.refresh)
}

// refresh probes and reports a transition, if any.
func (w *Watcher) refresh() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.timer = nil
	w.mu.Unlock()

	state := w.prober.Probe(w.ctx, w.config.Root)

	// The marker directory may have just appeared; observe inside it
	// from now on.
	if state != project.StateUninitialized {
		_ = w.fsw.Add(w.markerPath)
	}

	w.mu.Lock()
	changed := state != w.last
	w.last = state
	closed := w.closed
	w.mu.Unlock()

	if closed || !changed {
		return
	}

	if w.onChange != nil {
		w.onChange(state)
	}
}
