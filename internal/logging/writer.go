package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// RotatingWriter is an io.Writer for engine.log that rotates the file once
// it crosses a size threshold, keeping a bounded number of generations
// (engine.log.1, .2, ...) so `fedq --debug` can run unattended for a long
// time without the log directory growing without bound.
type RotatingWriter struct {
	path     string
	maxSize  int64
	maxFiles int

	mu            sync.Mutex
	file          *os.File
	written       int64
	immediateSync bool
}

// NewRotatingWriter opens (or creates) path for append; a file that is
// already over maxSizeMB is rotated on the first Write. Writes sync to disk
// immediately by default so `fedq logs -f` sees entries as they land;
// call SetImmediateSync(false) to batch for throughput instead.
func NewRotatingWriter(path string, maxSizeMB, maxFiles int) (*RotatingWriter, error) {
	w := &RotatingWriter{
		path:          path,
		maxSize:       int64(maxSizeMB) * 1024 * 1024,
		maxFiles:      maxFiles,
		immediateSync: true,
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := w.openFile(); err != nil {
		return nil, err
	}
	return w, nil
}

// SetImmediateSync toggles the per-write fsync.
func (w *RotatingWriter) SetImmediateSync(enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.immediateSync = enabled
}

// Write satisfies io.Writer, rotating first if p would push the file past
// maxSize. A rotation failure is logged to stderr but never blocks the
// write itself — losing rotation is preferable to losing log entries.
func (w *RotatingWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.written+int64(len(p)) > w.maxSize {
		if rerr := w.rotate(); rerr != nil {
			_, _ = fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", rerr)
			if w.file == nil {
				if oerr := w.openFile(); oerr != nil {
					return 0, oerr
				}
			}
		}
	}

	n, err = w.file.Write(p)
	w.written += int64(n)
	if w.immediateSync && err == nil {
		_ = w.file.Sync()
	}
	return
}

// Close closes the underlying file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

// Sync flushes the file to disk.
func (w *RotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file != nil {
		return w.file.Sync()
	}
	return nil
}

func (w *RotatingWriter) openFile() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	w.file = f
	w.written = info.Size()
	return nil
}

// generation pairs a rotated file (engine.log.N) with its parsed N, so
// the rotate step can be driven by plain integer comparisons.
type generation struct {
	path string
	num  int
}

// rotatedGenerations globs engine.log.* next to w.path and returns them
// sorted with the newest generation (lowest N) first.
func (w *RotatingWriter) rotatedGenerations() ([]generation, error) {
	base := filepath.Base(w.path)
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(w.path), base+".*"))
	if err != nil {
		return nil, fmt.Errorf("failed to find rotated files: %w", err)
	}

	var gens []generation
	for _, m := range matches {
		suffix := strings.TrimPrefix(filepath.Base(m), base+".")
		num, err := strconv.Atoi(suffix)
		if err != nil {
			continue // not one of our rotated files
		}
		gens = append(gens, generation{path: m, num: num})
	}
	sort.Slice(gens, func(i, j int) bool { return gens[i].num < gens[j].num })
	return gens, nil
}

// rotate renames engine.log -> engine.log.1 -> engine.log.2 -> ... and
// drops whatever falls off the end of maxFiles, then reopens a fresh
// engine.log. Generations are bumped from newest to oldest so no rename
// ever overwrites a file it hasn't processed yet.
func (w *RotatingWriter) rotate() error {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return fmt.Errorf("failed to close log file: %w", err)
		}
		w.file = nil
	}

	gens, err := w.rotatedGenerations()
	if err != nil {
		return err
	}

	for i := len(gens) - 1; i >= 0; i-- {
		g := gens[i]
		if g.num >= w.maxFiles {
			_ = os.Remove(g.path)
			continue
		}
		_ = os.Rename(g.path, fmt.Sprintf("%s.%d", w.path, g.num+1))
	}

	if _, err := os.Stat(w.path); err == nil {
		if err := os.Rename(w.path, w.path+".1"); err != nil {
			return fmt.Errorf("failed to rotate log file: %w", err)
		}
	}

	w.written = 0
	return w.openFile()
}
