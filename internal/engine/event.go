package engine

import "time"

// EventKind identifies an engine event.
type EventKind int

const (
	// TimeUpdated reports the playback position while playing.
	TimeUpdated EventKind = iota + 1
	// Ended reports that the loaded track played to its end.
	Ended
)

func (k EventKind) String() string {
	switch k {
	case TimeUpdated:
		return "time_updated"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// Event is pushed to the active subscriber.
type Event struct {
	Kind EventKind
	Time time.Duration // position for TimeUpdated, track duration for Ended
}
