package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/listenupapp/minibook/internal/app"
	"github.com/listenupapp/minibook/internal/config"
	"github.com/listenupapp/minibook/internal/engine"
	"github.com/listenupapp/minibook/internal/id"
	"github.com/listenupapp/minibook/internal/logger"
	"github.com/listenupapp/minibook/internal/player"
	"github.com/listenupapp/minibook/internal/repository"
)

// EngineHandle wraps the audio engine with shutdown capability.
type EngineHandle struct {
	*engine.Engine
}

// Shutdown implements do.Shutdownable.
func (h *EngineHandle) Shutdown() error {
	return h.Close()
}

// ProvideEngine provides the audio engine.
func ProvideEngine(i do.Injector) (*EngineHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	eng := engine.New(engine.Options{
		AudioDir:         cfg.Library.AudioPath,
		ProgressInterval: cfg.Playback.ProgressInterval,
		Logger:           log.Logger,
	})

	log.Info("Audio engine ready",
		"audio_path", cfg.Library.AudioPath,
		"progress_interval", cfg.Playback.ProgressInterval,
	)

	return &EngineHandle{Engine: eng}, nil
}

// RuntimeHandle wraps the app runtime and the player executor it feeds.
type RuntimeHandle struct {
	*app.Runtime
	executor *player.Executor
	cancel   context.CancelFunc
}

// Shutdown implements do.Shutdownable. Queued actions, including a final
// background save, finish before the executor stops.
func (h *RuntimeHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := h.Runtime.Shutdown(ctx)
	h.cancel()
	<-h.executor.Done()
	return err
}

// ProvideRuntime provides the app runtime, started and ready for actions.
func ProvideRuntime(i do.Injector) (*RuntimeHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)
	eng := do.MustInvoke[*EngineHandle](i)
	repo := do.MustInvoke[*repository.Repository](i)

	sessionLog := log.WithSession(id.Session())

	// The executor reports back into the runtime, which is built right after it.
	var rt *app.Runtime
	executor := player.NewExecutor(eng.Engine, func(a player.Action) {
		rt.Dispatch(a)
	}, sessionLog.Logger)
	rt = app.NewRuntime(repo, executor, sessionLog.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	go executor.Start(ctx)
	go rt.Start(ctx)

	return &RuntimeHandle{
		Runtime:  rt,
		executor: executor,
		cancel:   cancel,
	}, nil
}
