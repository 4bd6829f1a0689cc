// Package watch processes documents as they appear in an input directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/MeKo-Tech/docoutline/internal/layout"
	"github.com/MeKo-Tech/docoutline/internal/outline"
	"github.com/MeKo-Tech/docoutline/internal/output"
	"github.com/avast/retry-go/v4"
	"github.com/fsnotify/fsnotify"
)

// Defaults for Config fields left at zero.
const (
	DefaultDebounce      = 500 * time.Millisecond
	DefaultRetryAttempts = 5
	DefaultRetryDelay    = 200 * time.Millisecond
)

// Config controls a Watcher.
type Config struct {
	InputDir  string
	OutputDir string
	Options   outline.Options
	// Opener defaults to layout.DefaultOpener.
	Opener layout.Opener

	// Debounce is how long a file must stay quiet before it is processed.
	Debounce time.Duration
	// RetryAttempts and RetryDelay bound the attempts to open a file that is
	// still being written. The delay grows exponentially.
	RetryAttempts uint
	RetryDelay    time.Duration

	// ProcessExisting handles documents already present at start-up.
	ProcessExisting bool

	// OnResult, if set, is called after each document is handled.
	OnResult func(Event)
}

// Event reports one handled document.
type Event struct {
	File      string
	Output    string
	Structure outline.Structure
	Err       error
}

// Watcher turns new or rewritten PDFs in a directory into outline records.
type Watcher struct {
	cfg    Config
	engine *outline.Engine
	opener layout.Opener

	mu      sync.Mutex
	pending map[string]*time.Timer
	ready   chan string
	stopped chan struct{}
}

// New validates cfg and returns a watcher.
func New(cfg Config) (*Watcher, error) {
	if cfg.InputDir == "" {
		return nil, errors.New("input directory is required")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("output directory is required")
	}
	if err := cfg.Options.Validate(); err != nil {
		return nil, fmt.Errorf("invalid outline options: %w", err)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = DefaultRetryAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	opener := cfg.Opener
	if opener == nil {
		opener = layout.DefaultOpener
	}

	return &Watcher{
		cfg:     cfg,
		engine:  outline.New(cfg.Options),
		opener:  opener,
		pending: make(map[string]*time.Timer),
		ready:   make(chan string, 64),
		stopped: make(chan struct{}),
	}, nil
}

// Run watches the input directory until ctx is cancelled. A Watcher runs
// at most once.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.stopped)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	if err := fsw.Add(w.cfg.InputDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.cfg.InputDir, err)
	}
	slog.Info("Watching for documents", "input_dir", w.cfg.InputDir, "output_dir", w.cfg.OutputDir)

	if w.cfg.ProcessExisting {
		if err := w.processExisting(ctx); err != nil {
			return err
		}
	}

	defer w.stopTimers()
	for {
		select {
		case <-ctx.Done():
			slog.Info("Watcher stopped")
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) {
				w.schedule(ev.Name)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("File watcher error", "error", err)
		case path := <-w.ready:
			w.handle(ctx, path)
		}
	}
}

// isDocument reports whether path is a PDF.
func isDocument(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// schedule (re)starts the quiet period for path.
func (w *Watcher) schedule(path string) {
	if !isDocument(path) {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Reset(w.cfg.Debounce)
		return
	}
	w.pending[path] = time.AfterFunc(w.cfg.Debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		select {
		case w.ready <- path:
		case <-w.stopped:
		}
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) processExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.cfg.InputDir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", w.cfg.InputDir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && isDocument(e.Name()) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	for _, name := range names {
		if ctx.Err() != nil {
			return nil
		}
		w.handle(ctx, filepath.Join(w.cfg.InputDir, name))
	}
	return nil
}

// handle extracts path and writes its record.
func (w *Watcher) handle(ctx context.Context, path string) {
	slog.Info("Processing", "file", filepath.Base(path))

	ev := Event{File: path}
	st, err := w.extract(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		ev.Err = err
		st = outline.ErrorStructure(err)
		slog.Warn("Document failed", "file", path, "error", err)
	}
	ev.Structure = st

	written, err := output.WriteFile(w.cfg.OutputDir, path, st)
	if err != nil {
		ev.Err = errors.Join(ev.Err, err)
		slog.Error("Failed to write result", "file", path, "error", err)
	} else {
		ev.Output = written
		slog.Info("Result written", "file", written, "title", st.Title, "headings", len(st.Outline))
	}

	if w.cfg.OnResult != nil {
		w.cfg.OnResult(ev)
	}
}

// extract opens path, retrying while the file is still incomplete.
func (w *Watcher) extract(ctx context.Context, path string) (outline.Structure, error) {
	var doc layout.Document
	err := retry.Do(
		func() error {
			d, err := w.opener.Open(ctx, path)
			if err != nil {
				return err
			}
			doc = d
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(w.cfg.RetryAttempts),
		retry.Delay(w.cfg.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, layout.ErrUnsupportedFormat) && !errors.Is(err, context.Canceled)
		}),
		retry.OnRetry(func(n uint, err error) {
			slog.Debug("Document not ready", "file", path, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return outline.Structure{}, err
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			slog.Warn("Failed to close document", "file", path, "error", cerr)
		}
	}()

	return w.engine.Extract(ctx, doc)
}
