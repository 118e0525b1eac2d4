// Package progress draws file-loading feedback on the terminal.
// All output goes to stderr so that stdout stays clean for pipes and --json.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Bar renders a progress bar over a known number of files.
type Bar struct {
	Total   int
	Current int
	Label   string
	Width   int
	Enabled bool
	Out     io.Writer

	mu sync.Mutex
}

// New creates a progress bar. It is disabled when stderr is not a terminal
// or KPI_NO_PROGRESS=1 is set.
func New(label string, total int) *Bar {
	return &Bar{
		Total:   total,
		Label:   label,
		Width:   30,
		Enabled: Enabled(),
		Out:     os.Stderr,
	}
}

// Increment advances the bar by one and redraws it with the item name.
func (b *Bar) Increment(item string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.Current = min(b.Current+1, b.Total)
	b.render(item)
}

// Finish replaces the bar with a summary line.
func (b *Bar) Finish(summary string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.Enabled {
		return
	}
	fmt.Fprintf(b.out(), "\r\033[K%s %s\n", color.GreenString("✓"), summary)
}

// Pct returns the completed share, from 0 to 100.
func (b *Bar) Pct() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Total == 0 {
		return 0
	}
	return float64(b.Current) / float64(b.Total) * 100
}

func (b *Bar) render(item string) {
	if !b.Enabled {
		return
	}
	filled := 0
	if b.Total > 0 {
		filled = b.Current * b.Width / b.Total
	}
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", b.Width-filled)
	fmt.Fprintf(b.out(), "\r\033[K%s [%s] %d/%d  %s", b.Label, bar, b.Current, b.Total, item)
}

func (b *Bar) out() io.Writer {
	if b.Out == nil {
		return os.Stderr
	}
	return b.Out
}

// Spinner animates while a single file is read and cleaned.
type Spinner struct {
	Label   string
	Enabled bool
	Out     io.Writer

	mu      sync.Mutex
	done    chan struct{}
	stopped bool
}

// NewSpinner creates a spinner, enabled under the same rules as New.
func NewSpinner(label string) *Spinner {
	return &Spinner{
		Label:   label,
		Enabled: Enabled(),
		Out:     os.Stderr,
		done:    make(chan struct{}),
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	if !s.Enabled {
		return
	}

	s.mu.Lock()
	s.stopped = false
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go func() {
		frames := []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-done:
				return
			case <-ticker.C:
				s.mu.Lock()
				if !s.stopped {
					fmt.Fprintf(s.out(), "\r\033[K%c %s", frames[i%len(frames)], s.Label)
				}
				s.mu.Unlock()
			}
		}
	}()
}

// Stop ends the animation and clears the line. An empty result prints
// nothing in its place.
func (s *Spinner) Stop(result string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	if s.done != nil {
		close(s.done)
	}

	if !s.Enabled {
		return
	}
	if result == "" {
		fmt.Fprint(s.out(), "\r\033[K")
		return
	}
	fmt.Fprintf(s.out(), "\r\033[K%s %s\n", color.GreenString("✓"), result)
}

// Update changes the label while the spinner runs.
func (s *Spinner) Update(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Label = label
}

func (s *Spinner) out() io.Writer {
	if s.Out == nil {
		return os.Stderr
	}
	return s.Out
}

// Enabled reports whether progress output should be drawn.
func Enabled() bool {
	if os.Getenv("KPI_NO_PROGRESS") == "1" {
		return false
	}
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
