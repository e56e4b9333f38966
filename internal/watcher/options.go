package watcher

import "time"

// Options configures the file watcher behavior.
type Options struct {
	// SettleDelay is how long the file must stay unchanged before an event is emitted.
	SettleDelay time.Duration
	// EventBuffer is the capacity of the Events channel.
	EventBuffer int
}

// setDefaults applies default values to unset options.
func (o *Options) setDefaults() {
	if o.SettleDelay <= 0 {
		o.SettleDelay = 100 * time.Millisecond
	}
	if o.EventBuffer <= 0 {
		o.EventBuffer = 10
	}
}
