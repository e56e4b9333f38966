package watcher

import "time"

// EventType represents the type of file system event
type EventType int

const (
	// EventAdded is emitted when the file appears where there was none (after settling)
	EventAdded EventType = iota
	// EventModified is emitted when the file changes (after settling)
	EventModified
	// EventRemoved is emitted when the file is deleted or renamed away
	EventRemoved
)

// String returns the string representation of the event type
func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventModified:
		return "modified"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event represents a settled change to the watched file
type Event struct {
	Type    EventType
	Path    string
	Size    int64
	ModTime time.Time
}

// Readable reports whether the file is present after the event.
func (e Event) Readable() bool {
	return e.Type != EventRemoved
}
