package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Spinner is a single-line progress indicator for a query in flight. On a
// real terminal it redraws the current stage in place; on a pipe, file,
// or CI log it prints nothing, so the renderer is always safe to start
// even when stdout isn't interactive.
type Spinner struct {
	mu       sync.Mutex
	out      io.Writer
	active   bool
	stop     chan struct{}
	done     chan struct{}
	interval time.Duration
}

// NewSpinner returns a Spinner writing to out. The spinner only animates
// when out is a terminal and not a detected CI environment; otherwise
// every method is a no-op.
func NewSpinner(out io.Writer) *Spinner {
	return &Spinner{out: out, interval: 120 * time.Millisecond}
}

func (s *Spinner) enabled() bool {
	if DetectCI() {
		return false
	}
	f, ok := s.out.(*os.File)
	return ok && IsTTY(f)
}

var frames = []string{"-", "\\", "|", "/"}

// Start begins redrawing label with a rotating frame until Stop is
// called. Safe to call even when the spinner is disabled (it simply
// never animates).
func (s *Spinner) Start(label string) {
	if !s.enabled() {
		return
	}
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		i := 0
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				fmt.Fprintf(s.out, "\r%s %s", frames[i%len(frames)], label)
				i++
			}
		}
	}()
}

// Stop halts the animation and clears the status line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	<-done
	if s.enabled() {
		fmt.Fprint(s.out, "\r\033[K")
	}
}
