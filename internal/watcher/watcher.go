// Package watcher reports settled changes to a single file.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"

	"github.com/listenupapp/minibook/internal/errors"
)

// Watcher monitors one file. It watches the parent directory so that editors
// replacing the file by rename are still seen.
type Watcher struct {
	logger *slog.Logger
	opts   Options
	fs     *fsnotify.Watcher

	mu      sync.Mutex
	path    string
	exists  bool
	pending *pendingChange
	stopped bool

	events chan Event
	errors chan error
	done   chan struct{}
	wg     sync.WaitGroup
}

// pendingChange tracks a file that may still be changing.
type pendingChange struct {
	size    int64
	modTime time.Time
	timer   *time.Timer
}

// New creates a watcher. Call Watch before Start.
func New(logger *slog.Logger, opts Options) (*Watcher, error) {
	opts.setDefaults()

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to create fsnotify watcher")
	}

	return &Watcher{
		logger: logger,
		opts:   opts,
		fs:     fs,
		events: make(chan Event, opts.EventBuffer),
		errors: make(chan error, 10),
		done:   make(chan struct{}),
	}, nil
}

// Watch sets the file to monitor. The file itself may not exist yet,
// but its directory must.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, errors.CodeValidation, "invalid watch path %q", path)
	}
	path = abs

	dir := filepath.Dir(path)
	if err := w.fs.Add(dir); err != nil {
		return errors.Wrapf(err, errors.CodeNotFound, "failed to watch %s", dir)
	}

	_, statErr := os.Stat(path)

	w.mu.Lock()
	w.path = path
	w.exists = statErr == nil
	w.mu.Unlock()

	w.logger.Debug("watching file", "path", path, "exists", statErr == nil)
	return nil
}

// Start processes file system events until ctx is canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.wg.Add(1)
	w.mu.Unlock()
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.done:
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			select {
			case w.errors <- err:
			default:
				w.logger.Warn("watcher error dropped", "error", err)
			}
		}
	}
}

// handle starts or restarts settling for events on the watched file.
// Removes settle too, so a remove followed by a re-create reads as one change.
func (w *Watcher) handle(event fsnotify.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped || filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	if w.pending != nil {
		w.pending.timer.Stop()
	}

	p := &pendingChange{}
	if info, err := os.Stat(w.path); err == nil {
		p.size = info.Size()
		p.modTime = info.ModTime()
	}
	p.timer = time.AfterFunc(w.opts.SettleDelay, w.checkSettled)
	w.pending = p
}

// checkSettled emits an event once the file has stopped changing.
func (w *Watcher) checkSettled() {
	w.mu.Lock()
	defer w.mu.Unlock()

	p := w.pending
	if p == nil || w.stopped {
		return
	}

	info, err := os.Stat(w.path)
	if err != nil {
		w.pending = nil
		if w.exists {
			w.exists = false
			w.emitLocked(Event{Type: EventRemoved, Path: w.path})
		}
		return
	}

	if info.Size() != p.size || !info.ModTime().Equal(p.modTime) {
		// Still changing.
		p.size = info.Size()
		p.modTime = info.ModTime()
		p.timer = time.AfterFunc(w.opts.SettleDelay, w.checkSettled)
		return
	}

	w.pending = nil

	typ := EventModified
	if !w.exists {
		typ = EventAdded
	}
	w.exists = true

	w.emitLocked(Event{
		Type:    typ,
		Path:    w.path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	})
}

func (w *Watcher) emitLocked(event Event) {
	select {
	case w.events <- event:
		w.logger.Debug("file changed",
			"path", event.Path,
			"type", event.Type.String(),
			"size", humanize.Bytes(uint64(max(event.Size, 0))),
		)
	default:
		w.logger.Warn("watcher event dropped, channel full", "path", event.Path, "type", event.Type.String())
	}
}

// Events returns the channel for receiving settled changes
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel for receiving errors
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Stop stops the watcher and releases resources. Safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	if w.pending != nil {
		w.pending.timer.Stop()
		w.pending = nil
	}
	w.mu.Unlock()

	close(w.done)
	err := w.fs.Close()
	w.wg.Wait()

	close(w.events)
	close(w.errors)

	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to close fsnotify watcher")
	}
	return nil
}
