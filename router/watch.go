package router

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/lumodev/lumo/kit/colorlog"
)

// Default ignore globs for route-source watching.
var defaultIgnoreGlobs = []string{
	"**/.git",
	"**/.git/**",
	"**/node_modules",
	"**/node_modules/**",
}

type WatcherOptions struct {
	// IgnoreGlobs are doublestar patterns matched against slash-normalized
	// paths relative to the watch root. Defaults cover .git/node_modules.
	IgnoreGlobs []string

	// Debounce coalesces bursts of events into one invalidation.
	// Defaults to 75ms.
	Debounce time.Duration

	Logger *slog.Logger
}

// Watcher invalidates a TreeCache key when the underlying route-source
// directory changes. It is the explicit external invalidation trigger;
// the cache itself never re-scans on its own.
type Watcher struct {
	cache   *TreeCache
	key     string
	root    string
	ignore  []string
	log     *slog.Logger
	fsWatch *fsnotify.Watcher

	debounce  time.Duration
	timerMu   sync.Mutex
	timer     *time.Timer
	closeOnce sync.Once
	done      chan struct{}
}

// NewWatcher watches root recursively and invalidates cache[key] on
// change. Call Start to begin and Close to release the inotify handle.
func NewWatcher(cache *TreeCache, key, root string, opts ...WatcherOptions) (*Watcher, error) {
	var o WatcherOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.Debounce == 0 {
		o.Debounce = 75 * time.Millisecond
	}
	if o.Logger == nil {
		o.Logger = colorlog.New("router")
	}
	if o.IgnoreGlobs == nil {
		o.IgnoreGlobs = defaultIgnoreGlobs
	}

	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		cache:    cache,
		key:      key,
		root:     root,
		ignore:   o.IgnoreGlobs,
		log:      o.Logger,
		fsWatch:  fsWatch,
		debounce: o.Debounce,
		done:     make(chan struct{}),
	}

	if err := w.addRecursive(root); err != nil {
		fsWatch.Close()
		return nil, err
	}
	return w, nil
}

// Start runs the event loop until Close.
func (w *Watcher) Start() {
	go w.loop()
}

func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsWatch.Close()
	})
	return err
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatch.Events:
			if !ok {
				return
			}
			if w.ignored(event.Name) {
				continue
			}
			// New directories must be watched before their first events
			// are missed.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						w.log.Warn("Could not watch new directory", "dir", event.Name, "error", err)
					}
				}
			}
			w.scheduleInvalidate()
		case err, ok := <-w.fsWatch.Errors:
			if !ok {
				return
			}
			w.log.Warn("Watcher error", "error", err)
		}
	}
}

// scheduleInvalidate debounces bursts of filesystem events into a single
// cache invalidation.
func (w *Watcher) scheduleInvalidate() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.cache.Invalidate(w.key)
		w.log.Info("Route tree invalidated", "key", w.key)
	})
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}
		return w.fsWatch.Add(path)
	})
}

func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range w.ignore {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}
