package config

import (
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/xtding233/rank-ladder/internal/ladder"
)

// FileWatcher polls file modification times and triggers a callback on change.
type FileWatcher struct {
	Paths    []string
	Interval time.Duration

	onChange func(string)
	log      *slog.Logger
	stopCh   chan struct{}
	stopOnce sync.Once

	lastMTime map[string]time.Time
}

// NewFileWatcher creates a watcher for given paths and interval.
func NewFileWatcher(paths []string, interval time.Duration, onChange func(string), log *slog.Logger) *FileWatcher {
	if log == nil {
		log = slog.Default()
	}
	return &FileWatcher{
		Paths:     paths,
		Interval:  interval,
		onChange:  onChange,
		log:       log,
		stopCh:    make(chan struct{}),
		lastMTime: make(map[string]time.Time),
	}
}

// WatchLoader invalidates l whenever one of its ladder files changes.
func WatchLoader(l *Loader, interval time.Duration, log *slog.Logger) *FileWatcher {
	paths := []string{l.paths.DefaultPath()}
	for _, m := range []ladder.Mode{ladder.ModeLimited, ladder.ModeConstructed} {
		paths = append(paths, l.paths.ModePath(m))
	}
	return NewFileWatcher(paths, interval, func(string) { l.Invalidate() }, log)
}

// Start primes the mtime cache and begins polling in a goroutine.
func (w *FileWatcher) Start() {
	w.scanAll(true)
	ticker := time.NewTicker(w.Interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.scanAll(false)
			case <-w.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the watcher. Safe to call more than once.
func (w *FileWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func (w *FileWatcher) scanAll(prime bool) {
	for _, p := range w.Paths {
		fi, err := os.Stat(p)
		if err != nil {
			// missing files are optional
			continue
		}
		mt := fi.ModTime()
		last, ok := w.lastMTime[p]
		w.lastMTime[p] = mt
		if prime {
			continue
		}
		// a file that appears after start counts as a change
		if !ok || mt.After(last) {
			w.log.Info("config changed", "path", p)
			if w.onChange != nil {
				w.onChange(p)
			}
		}
	}
}
