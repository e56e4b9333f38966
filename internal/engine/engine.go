// Package engine implements the audio engine the player drives: it resolves
// and probes tracks, keeps a playback clock scaled by the current rate, and
// pushes progress and end-of-track events to one subscriber at a time.
//
// Decode and output are not performed; the engine is a faithful timing model
// of a single-track player, which is all the state machines observe.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/listenupapp/minibook/internal/domain"
	"github.com/listenupapp/minibook/internal/errors"
)

// Engine is a single-track player. All methods are safe for concurrent use.
type Engine struct {
	opts   Options
	logger *slog.Logger

	mu       sync.Mutex
	loaded   bool
	duration time.Duration
	position time.Duration // at anchor
	anchor   time.Time     // wall time position was last fixed
	rate     float64
	playing  bool
	closed   bool

	tickStop chan struct{}
	wg       sync.WaitGroup

	sub     chan Event
	subStop func() bool
}

// New creates an engine. Nothing is loaded until Load is called.
func New(opts Options) *Engine {
	opts.setDefaults()

	return &Engine{
		opts:   opts,
		logger: opts.Logger,
		rate:   float64(domain.DefaultRate),
	}
}

// Load replaces the current track with src and returns its duration.
// Playback stops and the position returns to zero; the rate is kept.
// The previous track is unloaded before src is probed, so a failed load
// leaves nothing playing.
func (e *Engine) Load(ctx context.Context, src domain.AudioSource) (time.Duration, error) {
	if err := e.unload(); err != nil {
		return 0, err
	}

	path, err := resolve(e.opts.AudioDir, src)
	if err != nil {
		return 0, err
	}

	duration, err := e.opts.Probe(ctx, path)
	if err != nil {
		return 0, errors.Wrapf(err, errors.CodeEngine, "load %s", src)
	}
	if duration <= 0 {
		return 0, errors.Enginef("load %s: no playable audio", src)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return 0, errors.Engine("engine closed")
	}

	e.loaded = true
	e.duration = duration
	e.position = 0
	e.anchor = e.opts.Now()

	e.logger.Debug("track loaded", "path", path, "duration", duration)
	return duration, nil
}

// unload stops the ticker and forgets the current track.
func (e *Engine) unload() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return errors.Engine("engine closed")
	}

	e.stopTickerLocked()
	e.loaded = false
	e.playing = false
	e.duration = 0
	e.position = 0
	e.anchor = e.opts.Now()
	return nil
}

// Play starts or resumes playback. A track sitting at its end restarts from zero.
func (e *Engine) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.loaded || e.closed || e.playing {
		return
	}

	if e.position >= e.duration {
		e.position = 0
	}
	e.anchor = e.opts.Now()
	e.playing = true
	e.startTickerLocked()
}

// Pause stops playback and the progress ticker.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.playing {
		return
	}

	e.position = e.positionLocked()
	e.anchor = e.opts.Now()
	e.playing = false
	e.stopTickerLocked()
}

// Seek moves the playhead to t, clamped to the track.
func (e *Engine) Seek(t time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.loaded {
		return
	}

	e.position = min(max(t, 0), e.duration)
	e.anchor = e.opts.Now()
}

// SetRate changes the playback speed from the current position onward.
func (e *Engine) SetRate(r domain.Rate) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if r <= 0 {
		return
	}

	if e.playing {
		e.position = e.positionLocked()
		e.anchor = e.opts.Now()
	}
	e.rate = float64(r)
}

// Events subscribes to engine events until ctx is done.
// Subscribing again closes the previous subscriber's channel.
func (e *Engine) Events(ctx context.Context) <-chan Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closeSubscriptionLocked()

	ch := make(chan Event, e.opts.EventBuffer)
	if e.closed {
		close(ch)
		return ch
	}

	e.sub = ch
	e.subStop = context.AfterFunc(ctx, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.sub == ch {
			close(ch)
			e.sub = nil
			e.subStop = nil
		}
	})
	return ch
}

// Position returns the current playhead.
func (e *Engine) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.positionLocked()
}

// Playing reports whether the engine is advancing.
func (e *Engine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

// Close stops playback, ends the subscription and waits for the ticker to exit.
func (e *Engine) Close() error {
	e.mu.Lock()
	e.closed = true
	e.playing = false
	e.stopTickerLocked()
	e.closeSubscriptionLocked()
	e.mu.Unlock()

	e.wg.Wait()
	return nil
}

func (e *Engine) positionLocked() time.Duration {
	if !e.playing {
		return e.position
	}
	elapsed := e.opts.Now().Sub(e.anchor)
	pos := e.position + time.Duration(float64(elapsed)*e.rate)
	return min(pos, e.duration)
}

func (e *Engine) startTickerLocked() {
	e.stopTickerLocked()

	stop := make(chan struct{})
	e.tickStop = stop

	e.wg.Add(1)
	go e.tick(stop)
}

func (e *Engine) stopTickerLocked() {
	if e.tickStop != nil {
		close(e.tickStop)
		e.tickStop = nil
	}
}

func (e *Engine) tick(stop <-chan struct{}) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.opts.ProgressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.onTick(stop)
		case <-stop:
			return
		}
	}
}

func (e *Engine) onTick(stop <-chan struct{}) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// A pause or reload may have raced this tick.
	select {
	case <-stop:
		return
	default:
	}

	pos := e.positionLocked()
	if pos >= e.duration {
		e.position = e.duration
		e.playing = false
		e.stopTickerLocked()
		e.emitLocked(Event{Kind: Ended, Time: e.duration})
		return
	}

	e.emitLocked(Event{Kind: TimeUpdated, Time: pos})
}

// emitLocked sends without blocking; a full subscriber loses the event.
func (e *Engine) emitLocked(evt Event) {
	if e.sub == nil {
		return
	}

	select {
	case e.sub <- evt:
	default:
		e.logger.Warn("engine event dropped, subscriber full", "kind", evt.Kind.String())
	}
}

func (e *Engine) closeSubscriptionLocked() {
	if e.sub == nil {
		return
	}
	if e.subStop != nil {
		e.subStop()
	}
	close(e.sub)
	e.sub = nil
	e.subStop = nil
}
