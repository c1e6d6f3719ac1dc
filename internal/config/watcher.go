package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vyrodovalexey/verroute/internal/observability"
)

// DefaultDebounceDelay is how long the watcher waits after the last file
// event before reloading.
const DefaultDebounceDelay = 100 * time.Millisecond

// ReloadFunc applies a loaded and validated route table. Returning an
// error rejects it and the previous table stays current.
type ReloadFunc func(*RouteTableConfig) error

// ErrorCallback receives load, validation and apply failures.
type ErrorCallback func(error)

// Watcher reloads a route table when its file or any file it includes
// changes.
type Watcher struct {
	path     string
	fs       *fsnotify.Watcher
	apply    ReloadFunc
	onError  ErrorCallback
	logger   observability.Logger
	debounce time.Duration

	// reloadMu serializes reloads from the watch loop and ForceReload.
	reloadMu sync.Mutex

	mu      sync.RWMutex
	last    *RouteTableConfig
	files   map[string]struct{}
	dirs    map[string]struct{}
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounceDelay sets the debounce delay.
func WithDebounceDelay(delay time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = delay
	}
}

// WithLogger sets the watcher logger.
func WithLogger(logger observability.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithErrorCallback sets the error callback.
func WithErrorCallback(callback ErrorCallback) WatcherOption {
	return func(w *Watcher) {
		w.onError = callback
	}
}

// NewWatcher creates a watcher for the route table at path.
func NewWatcher(path string, apply ReloadFunc, opts ...WatcherOption) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     absPath,
		fs:       fsw,
		apply:    apply,
		logger:   observability.NopLogger(),
		debounce: DefaultDebounceDelay,
		files:    map[string]struct{}{},
		dirs:     map[string]struct{}{},
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start loads the current table as the baseline, without applying it,
// and starts watching the directories of every file it was read from.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	cfg, files, err := w.load()
	if err == nil {
		err = w.track(files)
	}
	if err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}

	w.mu.Lock()
	w.last = cfg
	w.mu.Unlock()

	w.logger.Info("started watching route table",
		observability.String("path", w.path),
		observability.Int("files", len(files)),
	)
	go w.loop(ctx)
	return nil
}

// Stop stops the watch loop and releases the file watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	return w.fs.Close()
}

// GetLastConfig returns the last accepted table, or nil.
func (w *Watcher) GetLastConfig() *RouteTableConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.last
}

// Path returns the absolute path of the root route table file.
func (w *Watcher) Path() string {
	return w.path
}

// Files returns the files the current table was loaded from.
func (w *Watcher) Files() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	files := make([]string, 0, len(w.files))
	for f := range w.files {
		files = append(files, f)
	}
	return files
}

// ForceReload reloads immediately.
func (w *Watcher) ForceReload() error {
	return w.reload()
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.doneCh)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("route table watcher stopped due to context cancellation")
			return
		case <-w.stopCh:
			w.logger.Info("route table watcher stopped")
			return

		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("route table file changed",
				observability.String("path", ev.Name),
				observability.String("op", ev.Op.String()),
			)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			_ = w.reload()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.fail("route table watcher error", err)
		}
	}
}

// relevant reports whether ev writes or replaces a tracked file.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.files[filepath.Clean(ev.Name)]
	return ok
}

// track watches the directories of files, so editors that replace files
// atomically are seen, and makes files the tracked set.
func (w *Watcher) track(files []string) error {
	set := make(map[string]struct{}, len(files))
	for _, f := range files {
		set[f] = struct{}{}
		dir := filepath.Dir(f)

		w.mu.RLock()
		_, watched := w.dirs[dir]
		w.mu.RUnlock()
		if watched {
			continue
		}
		if err := w.fs.Add(dir); err != nil {
			return err
		}
		w.mu.Lock()
		w.dirs[dir] = struct{}{}
		w.mu.Unlock()
	}

	w.mu.Lock()
	w.files = set
	w.mu.Unlock()
	return nil
}

func (w *Watcher) load() (*RouteTableConfig, []string, error) {
	loader := NewLoader()
	cfg, err := loader.LoadWithIncludes(w.path)
	if err != nil {
		return nil, nil, err
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, nil, err
	}
	return cfg, loader.Files(), nil
}

// reload loads, validates and applies the table. Any failure keeps the
// previous table.
func (w *Watcher) reload() error {
	w.reloadMu.Lock()
	defer w.reloadMu.Unlock()

	w.logger.Info("reloading route table", observability.String("path", w.path))

	cfg, files, err := w.load()
	if err != nil {
		w.fail("failed to load route table", err)
		return err
	}
	if w.apply != nil {
		if err := w.apply(cfg); err != nil {
			w.fail("route table rejected", err)
			return err
		}
	}

	w.mu.Lock()
	w.last = cfg
	w.mu.Unlock()

	// The include set may have changed.
	if err := w.track(files); err != nil {
		w.fail("failed to watch included files", err)
	}

	w.logger.Info("route table reloaded successfully",
		observability.Int("mappings", len(cfg.Spec.Mappings)),
		observability.Int("files", len(files)),
	)
	return nil
}

func (w *Watcher) fail(msg string, err error) {
	w.logger.Error(msg,
		observability.String("path", w.path),
		observability.Error(err),
	)
	if w.onError != nil {
		w.onError(err)
	}
}
