package player

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/listenupapp/minibook/internal/domain"
	"github.com/listenupapp/minibook/internal/engine"
	"github.com/listenupapp/minibook/internal/id"
)

// AudioEngine is the playback primitive the Executor owns.
type AudioEngine interface {
	Load(ctx context.Context, src domain.AudioSource) (time.Duration, error)
	Play()
	Pause()
	Seek(t time.Duration)
	SetRate(r domain.Rate)
	Events(ctx context.Context) <-chan engine.Event
}

// Executor runs player commands against the engine one at a time, in the
// order they were submitted. It is the only caller of the engine.
type Executor struct {
	engine   AudioEngine
	dispatch func(Action)
	logger   *slog.Logger

	mu    sync.Mutex
	queue []Command
	wake  chan struct{}

	// Owned by the Start goroutine.
	listener *listener

	done chan struct{}
}

type listener struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}
}

// NewExecutor creates an executor. dispatch receives load results and engine
// events; it must not block.
func NewExecutor(eng AudioEngine, dispatch func(Action), logger *slog.Logger) *Executor {
	return &Executor{
		engine:   eng,
		dispatch: dispatch,
		logger:   logger,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Submit queues commands. It never blocks.
func (x *Executor) Submit(cmds ...Command) {
	if len(cmds) == 0 {
		return
	}

	x.mu.Lock()
	x.queue = append(x.queue, cmds...)
	x.mu.Unlock()

	select {
	case x.wake <- struct{}{}:
	default:
	}
}

// Start runs commands until ctx is canceled, then ends the event subscription.
// This should be called once, in its own goroutine.
func (x *Executor) Start(ctx context.Context) {
	defer close(x.done)
	defer x.stopListening()

	for {
		for _, cmd := range x.drain() {
			if ctx.Err() != nil {
				return
			}
			x.execute(ctx, cmd)
		}

		select {
		case <-x.wake:
		case <-ctx.Done():
			return
		}
	}
}

// Done is closed once Start has returned and the listener has exited.
func (x *Executor) Done() <-chan struct{} {
	return x.done
}

func (x *Executor) drain() []Command {
	x.mu.Lock()
	defer x.mu.Unlock()

	cmds := x.queue
	x.queue = nil
	return cmds
}

func (x *Executor) execute(ctx context.Context, cmd Command) {
	switch c := cmd.(type) {
	case Load:
		duration, err := x.engine.Load(ctx, c.Source)
		if err != nil {
			x.logger.Warn("track load failed",
				"load_id", c.LoadID,
				"source", c.Source.String(),
				"error", err,
			)
			x.dispatch(FailedToLoadCurrentTrack{LoadID: c.LoadID, Message: err.Error()})
			return
		}
		x.logger.Debug("track ready", "load_id", c.LoadID, "duration", duration)
		x.dispatch(TrackLoaded{LoadID: c.LoadID, Duration: duration})

	case Play:
		x.engine.Play()

	case Pause:
		x.engine.Pause()

	case SeekTo:
		x.engine.Seek(c.Time)

	case SetRate:
		x.engine.SetRate(c.Rate)

	case Subscribe:
		x.startListening(ctx)

	case Unsubscribe:
		x.stopListening()

	default:
		x.logger.Error("unknown player command", "command", cmd)
	}
}

// startListening cancels any live subscription and waits for it to exit
// before opening the next, so no event is ever delivered twice.
func (x *Executor) startListening(ctx context.Context) {
	x.stopListening()

	subCtx, cancel := context.WithCancel(ctx)
	l := &listener{
		id:     id.Subscription(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	x.listener = l

	events := x.engine.Events(subCtx)
	x.logger.Debug("engine subscription started", "subscription_id", l.id)

	go func() {
		defer close(l.done)
		for {
			select {
			case evt, ok := <-events:
				if !ok {
					return
				}
				x.dispatch(AudioEvent{Event: evt})
			case <-subCtx.Done():
				return
			}
		}
	}()
}

func (x *Executor) stopListening() {
	l := x.listener
	if l == nil {
		return
	}
	x.listener = nil

	l.cancel()
	<-l.done
	x.logger.Debug("engine subscription stopped", "subscription_id", l.id)
}
