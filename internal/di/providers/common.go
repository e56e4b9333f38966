package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for the runtime to save and stop.
	shutdownTimeout = 10 * time.Second
)
