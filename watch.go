// FILE: lixenwraith/proptree/watch.go
package proptree

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchOptions configures file watching behavior
type WatchOptions struct {
	// Debounce coalesces bursts of file events (minimum MinDebounce)
	Debounce time.Duration

	// Format of the file, FormatAuto to detect it
	Format string

	// Name of the root group of reloaded trees
	Name string

	// Buffer is the capacity of the Events channel
	Buffer int

	// Logger receives watcher diagnostics; nil discards them
	Logger *slog.Logger
}

// DefaultWatchOptions returns sensible defaults for file watching
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		Debounce: DefaultDebounce,
		Format:   FormatAuto,
		Buffer:   DefaultWatchBuffer,
	}
}

// Reload is delivered each time the watched file was reloaded.
type Reload struct {
	// Path of the watched file
	Path string

	// Group is the freshly loaded tree, nil when Err is set
	Group *Group

	// Changed lists the dotted paths whose value differs from the previous load
	Changed []string

	// Err reports a failed reload or a watcher error
	Err error
}

// Watcher reloads a file when it changes. It never touches a caller's tree:
// the receiver of Events applies a Reload, for example with LeftMerge or
// Overlay, from its own goroutine.
type Watcher struct {
	path   string
	opts   WatchOptions
	logger *slog.Logger

	fsw    *fsnotify.Watcher
	events chan Reload
	done   chan struct{}

	closeOnce sync.Once
	closeErr  error
	wg        sync.WaitGroup

	// last is the flattened content of the previous successful load
	last map[string]any
}

// Watch starts watching path. The file's directory is watched so that
// editors replacing the file by rename are followed. The watcher stops when
// ctx is done or Close is called; Events is closed afterwards.
func Watch(ctx context.Context, path string, opts WatchOptions) (*Watcher, error) {
	if opts.Debounce < MinDebounce {
		opts.Debounce = MinDebounce
	}
	if opts.Buffer <= 0 {
		opts.Buffer = DefaultWatchBuffer
	}
	if opts.Format == "" {
		opts.Format = FormatAuto
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch path '%s': %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch directory of '%s': %w", abs, err)
	}

	w := &Watcher{
		path:   abs,
		opts:   opts,
		logger: logger,
		fsw:    fsw,
		events: make(chan Reload, opts.Buffer),
		done:   make(chan struct{}),
	}
	if g, err := LoadFileFormat(abs, opts.Format, opts.Name); err == nil {
		w.last = flatten(ToMap(g))
	} else {
		logger.Debug("initial load failed, watching anyway", "file", abs, "error", err)
	}

	w.wg.Add(1)
	go w.run(ctx)
	return w, nil
}

// Events returns the channel of reloads.
func (w *Watcher) Events() <-chan Reload {
	return w.events
}

// Path returns the absolute path of the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Close stops the watcher and waits for it to exit. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
		w.closeErr = w.fsw.Close()
		w.wg.Wait()
	})
	return w.closeErr
}

func (w *Watcher) run(ctx context.Context) {
	defer w.wg.Done()
	defer close(w.events)

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
			return
		case <-w.done:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
				!ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			w.logger.Debug("file event", "file", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
			} else {
				timer.Reset(w.opts.Debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "file", w.path, "error", err)
			w.send(ctx, Reload{Path: w.path, Err: err})

		case <-fire:
			fire = nil
			if r, ok := w.reload(); ok {
				w.send(ctx, r)
			}
		}
	}
}

// reload loads the file and diffs it against the previous load. ok is false
// when the content did not change.
func (w *Watcher) reload() (Reload, bool) {
	g, err := LoadFileFormat(w.path, w.opts.Format, w.opts.Name)
	if err != nil {
		w.logger.Warn("reload failed", "file", w.path, "error", err)
		return Reload{Path: w.path, Err: err}, true
	}

	current := flatten(ToMap(g))
	changed := diffFlat(w.last, current)
	w.last = current
	if len(changed) == 0 {
		return Reload{}, false
	}
	w.logger.Info("file reloaded", "file", w.path, "changed", len(changed))
	return Reload{Path: w.path, Group: g, Changed: changed}, true
}

func (w *Watcher) send(ctx context.Context, r Reload) {
	select {
	case w.events <- r:
	case <-w.done:
	case <-ctx.Done():
	}
}

// flatten turns nested maps into dotted keys.
func flatten(m map[string]any) map[string]any {
	out := make(map[string]any)
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			full := k
			if prefix != "" {
				full = prefix + PathSeparator + k
			}
			if sub, ok := v.(map[string]any); ok {
				walk(full, sub)
				continue
			}
			out[full] = v
		}
	}
	walk("", m)
	return out
}

// diffFlat returns the sorted keys added, removed or changed between old and cur.
func diffFlat(old, cur map[string]any) []string {
	var changed []string
	for k, v := range cur {
		if ov, ok := old[k]; !ok || !reflect.DeepEqual(ov, v) {
			changed = append(changed, k)
		}
	}
	for k := range old {
		if _, ok := cur[k]; !ok {
			changed = append(changed, k)
		}
	}
	sort.Strings(changed)
	return changed
}
