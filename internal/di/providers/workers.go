package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"
	"golang.org/x/time/rate"

	"github.com/listenupapp/minibook/internal/app"
	"github.com/listenupapp/minibook/internal/catalog"
	"github.com/listenupapp/minibook/internal/config"
	"github.com/listenupapp/minibook/internal/logger"
	"github.com/listenupapp/minibook/internal/watcher"
)

// FileWatcherHandle wraps the book file watcher with shutdown capability.
// Watcher is nil when watching is disabled.
type FileWatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *FileWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Watcher.Stop()
}

// ProvideFileWatcher provides the watcher that retries a failed book load
// once the metadata file changes.
func ProvideFileWatcher(i do.Injector) (*FileWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	rt := do.MustInvoke[*RuntimeHandle](i)
	loader := do.MustInvoke[*catalog.Loader](i)

	if !cfg.Library.WatchBook {
		log.Info("Book file watching disabled")
		return &FileWatcherHandle{}, nil
	}

	w, err := watcher.New(log.Logger, watcher.Options{})
	if err != nil {
		return nil, err
	}

	if err := w.Watch(loader.Path()); err != nil {
		w.Stop() //nolint:errcheck // Already failing
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	// At most one retry per second, however fast the file is rewritten.
	retries := rate.NewLimiter(rate.Every(time.Second), 1)

	go func() {
		if err := w.Start(ctx); err != nil {
			log.WithError(err).Error("File watcher stopped")
		}
	}()

	go func() {
		for {
			select {
			case event, ok := <-w.Events():
				if !ok {
					return
				}
				if !event.Readable() || rt.State().Error == "" {
					continue
				}
				if err := retries.Wait(ctx); err != nil {
					return
				}
				log.Info("Book file changed, retrying load",
					"path", event.Path,
					"type", event.Type.String(),
				)
				rt.Send(app.LoadBook{})
			case err, ok := <-w.Errors():
				if !ok {
					return
				}
				log.WithError(err).Warn("file watcher error")
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Watching book file", "path", loader.Path())

	return &FileWatcherHandle{
		Watcher: w,
		cancel:  cancel,
	}, nil
}
