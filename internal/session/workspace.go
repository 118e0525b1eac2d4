// Package session keeps the tables loaded during one interactive session.
//
// Several tables may be loaded at once (one per uploaded file) but only one
// is active. Tables are never mutated after loading, so switching the active
// table is a pointer swap and every analysis starts from the original data.
package session

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/analysis"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/table"
)

// ErrNotFound is returned when a table reference matches nothing.
var ErrNotFound = errors.New("table not found")

// ErrEmpty is returned when an operation needs a table and none is loaded.
var ErrEmpty = errors.New("no table loaded: load at least one file to start")

// Entry is one loaded table.
type Entry struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Rows     int          `json:"rows"`
	Columns  int          `json:"columns"`
	LoadedAt time.Time    `json:"loaded_at"`
	Active   bool         `json:"active"`
	Table    *table.Table `json:"-"`
	// Target is the last target the user chose for this table, if any.
	Target *float64 `json:"target,omitempty"`
}

// Workspace holds the loaded tables. It is safe for concurrent use.
type Workspace struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	order   []string
	active  string
	now     func() time.Time
}

// NewWorkspace returns an empty workspace.
func NewWorkspace() *Workspace {
	return &Workspace{
		entries: make(map[string]*Entry),
		now:     time.Now,
	}
}

// Add loads a table. A table whose name is already loaded is not replaced;
// the existing entry is returned instead. The first table loaded becomes
// the active one.
func (w *Workspace) Add(t *table.Table) Entry {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, id := range w.order {
		if e := w.entries[id]; e.Name == t.Name {
			return w.snapshot(e)
		}
	}

	e := &Entry{
		ID:       uuid.NewString(),
		Name:     t.Name,
		Rows:     t.Len(),
		Columns:  len(t.Columns),
		LoadedAt: w.now(),
		Table:    t,
	}
	w.entries[e.ID] = e
	w.order = append(w.order, e.ID)
	if w.active == "" {
		w.active = e.ID
	}
	return w.snapshot(e)
}

// List returns the loaded tables in load order.
func (w *Workspace) List() []Entry {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]Entry, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.snapshot(w.entries[id]))
	}
	return out
}

// Len returns the number of loaded tables.
func (w *Workspace) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.order)
}

// Get resolves a reference: an ID, a table name, or a 1-based position.
func (w *Workspace) Get(ref string) (Entry, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	e, err := w.resolve(ref)
	if err != nil {
		return Entry{}, err
	}
	return w.snapshot(e), nil
}

// Active returns the active table.
func (w *Workspace) Active() (Entry, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.active == "" {
		return Entry{}, ErrEmpty
	}
	return w.snapshot(w.entries[w.active]), nil
}

// Use makes the referenced table the active one.
func (w *Workspace) Use(ref string) (Entry, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	e, err := w.resolve(ref)
	if err != nil {
		return Entry{}, err
	}
	w.active = e.ID
	return w.snapshot(e), nil
}

// Remember stores the target chosen for a table.
func (w *Workspace) Remember(ref string, target float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	e, err := w.resolve(ref)
	if err != nil {
		return err
	}
	e.Target = &target
	return nil
}

// Forget clears the stored target of a table.
func (w *Workspace) Forget(ref string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	e, err := w.resolve(ref)
	if err != nil {
		return err
	}
	e.Target = nil
	return nil
}

// Reset unloads every table.
func (w *Workspace) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.entries = make(map[string]*Entry)
	w.order = nil
	w.active = ""
}

// Analyze runs the pipeline over the referenced table (the active one when
// ref is empty). An explicit target in cfg is remembered for the table; when
// cfg has none, a previously remembered target is used.
func (w *Workspace) Analyze(ref string, cfg analysis.Config) (*analysis.Result, error) {
	var (
		e   Entry
		err error
	)
	if ref == "" {
		e, err = w.Active()
	} else {
		e, err = w.Get(ref)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Target == nil && e.Target != nil {
		t := *e.Target
		cfg.Target = &t
	}

	res, err := analysis.Run(e.Table, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Target != nil {
		if err := w.Remember(e.ID, *cfg.Target); err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return res, nil
}

func (w *Workspace) resolve(ref string) (*Entry, error) {
	if len(w.order) == 0 {
		return nil, ErrEmpty
	}
	if e, ok := w.entries[ref]; ok {
		return e, nil
	}
	for _, id := range w.order {
		if w.entries[id].Name == ref {
			return w.entries[id], nil
		}
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(w.order) {
		return w.entries[w.order[n-1]], nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, ref)
}

func (w *Workspace) snapshot(e *Entry) Entry {
	out := *e
	out.Active = e.ID == w.active
	if e.Target != nil {
		t := *e.Target
		out.Target = &t
	}
	return out
}

// Names returns the loaded table names sorted alphabetically.
func (w *Workspace) Names() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	names := make([]string, 0, len(w.order))
	for _, id := range w.order {
		names = append(names, w.entries[id].Name)
	}
	sort.Strings(names)
	return names
}
