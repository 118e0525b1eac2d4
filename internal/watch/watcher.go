// Package watch re-runs a handler whenever one of a set of data files
// changes on disk.
//
// The parent directory of each file is watched rather than the file itself,
// so spreadsheets saved through a temp-file-and-rename still trigger.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/logging"
)

// DefaultDebounce is the quiet period after the last event before the
// handler runs.
const DefaultDebounce = 500 * time.Millisecond

// Config holds the watcher configuration.
type Config struct {
	Files    []string      `json:"files"`
	Debounce time.Duration `json:"debounce"`
}

// Event represents a file change that was detected and processed.
type Event struct {
	Time      time.Time `json:"time"`
	Path      string    `json:"path"`
	Operation string    `json:"operation"`
	Status    string    `json:"status"` // "processed", "error"
	Error     string    `json:"error,omitempty"`
}

// Handler is called once per debounced change of a watched file.
type Handler func(ctx context.Context, path string) error

// Status represents the current watcher status.
type Status struct {
	Running    bool     `json:"running"`
	Files      []string `json:"files"`
	EventCount int      `json:"eventCount"`
	StartedAt  string   `json:"startedAt,omitempty"`
}

// Watcher monitors files for changes and runs the handler.
type Watcher struct {
	Config  Config
	Logger  *slog.Logger
	Handler Handler

	mu        sync.Mutex
	watcher   *fsnotify.Watcher
	files     map[string]bool
	debounce  map[string]*time.Timer
	events    []Event
	// processed counts every event, including those rotated out of events.
	processed int
	startedAt time.Time
	ctx       context.Context
}

// maxEvents bounds the event history kept for GetEvents.
const maxEvents = 100

// New creates a watcher for the given files.
func New(config Config, handler Handler) (*Watcher, error) {
	if len(config.Files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}

	files := make(map[string]bool, len(config.Files))
	for _, f := range config.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("could not resolve %s: %w", f, err)
		}
		files[abs] = true
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not create file watcher: %w", err)
	}

	return &Watcher{
		Config:   config,
		Logger:   logging.Component(nil, "watch"),
		Handler:  handler,
		watcher:  fsw,
		files:    files,
		debounce: make(map[string]*time.Timer),
		ctx:      context.Background(),
	}, nil
}

// Start begins watching. It blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	dirs := make(map[string]bool)
	for f := range w.files {
		dirs[filepath.Dir(f)] = true
	}
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			w.watcher.Close()
			return fmt.Errorf("could not watch %s: %w", dir, err)
		}
	}

	w.mu.Lock()
	w.ctx = ctx
	w.startedAt = time.Now()
	w.mu.Unlock()

	w.Logger.Info("[watch] watching files", "files", len(w.files), "debounce", w.Config.Debounce)

	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("[watch] stopping watcher")
			w.stopTimers()
			return w.watcher.Close()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.Logger.Error("[watch] watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	path, err := filepath.Abs(event.Name)
	if err != nil || !w.files[path] {
		return
	}

	// Debounce: wait before processing to avoid rapid fire
	w.mu.Lock()
	if timer, ok := w.debounce[path]; ok {
		timer.Stop()
	}
	op := event.Op.String()
	w.debounce[path] = time.AfterFunc(w.Config.Debounce, func() {
		w.processFile(path, op)
	})
	w.mu.Unlock()
}

func (w *Watcher) processFile(path, operation string) {
	w.mu.Lock()
	ctx := w.ctx
	delete(w.debounce, path)
	w.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	evt := Event{
		Time:      time.Now(),
		Path:      path,
		Operation: operation,
		Status:    "processed",
	}
	if w.Handler != nil {
		if err := w.Handler(ctx, path); err != nil {
			evt.Status = "error"
			evt.Error = err.Error()
			w.Logger.Error("[watch] processing failed", "path", path, "error", err)
		} else {
			w.Logger.Debug("[watch] processed", "path", path, "op", operation)
		}
	}

	w.mu.Lock()
	w.events = append(w.events, evt)
	if over := len(w.events) - maxEvents; over > 0 {
		w.events = append(w.events[:0], w.events[over:]...)
	}
	w.processed++
	w.mu.Unlock()
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.debounce {
		timer.Stop()
		delete(w.debounce, path)
	}
}

// GetStatus returns the current watcher status.
func (w *Watcher) GetStatus() Status {
	w.mu.Lock()
	defer w.mu.Unlock()

	files := make([]string, 0, len(w.files))
	for f := range w.files {
		files = append(files, f)
	}
	sort.Strings(files)

	s := Status{
		Running:    !w.startedAt.IsZero(),
		Files:      files,
		EventCount: w.processed,
	}
	if s.Running {
		s.StartedAt = w.startedAt.Format(time.RFC3339)
	}
	return s
}

// GetEvents returns the most recent events, oldest first.
func (w *Watcher) GetEvents() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	events := make([]Event, len(w.events))
	copy(events, w.events)
	return events
}

// Watches reports whether path is one of the watched files.
func (w *Watcher) Watches(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return w.files[abs]
}
