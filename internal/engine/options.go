package engine

import (
	"context"
	"log/slog"
	"time"
)

// ProbeFunc reports the playable duration of the audio file at path.
type ProbeFunc func(ctx context.Context, path string) (time.Duration, error)

// Options configures the engine.
type Options struct {
	// AudioDir is where local sources are resolved.
	AudioDir string
	// ProgressInterval is how often TimeUpdated fires while playing.
	ProgressInterval time.Duration
	// EventBuffer is the subscriber channel capacity.
	EventBuffer int
	// Probe reads track durations. Defaults to ProbeFile.
	Probe ProbeFunc
	// Now is the engine clock.
	Now    func() time.Time
	Logger *slog.Logger
}

// setDefaults applies default values to unset options.
func (o *Options) setDefaults() {
	if o.ProgressInterval <= 0 {
		o.ProgressInterval = 500 * time.Millisecond
	}
	if o.EventBuffer <= 0 {
		o.EventBuffer = 100
	}
	if o.Probe == nil {
		o.Probe = ProbeFile
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
}
