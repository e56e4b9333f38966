package player

import (
	"time"

	"github.com/listenupapp/minibook/internal/engine"
)

// Action is an intent or event the player reduces.
type Action interface {
	isAction()
}

// Intents.
type (
	// LoadCurrentTrack loads the current key point's audio.
	LoadCurrentTrack struct{}
	// StartListening (re)subscribes to engine events.
	StartListening struct{}
	// OnDisappear ends the engine event subscription.
	OnDisappear struct{}
	// PlayPauseTapped toggles playback.
	PlayPauseTapped struct{}
	// NextKeyPoint moves to the following key point.
	NextKeyPoint struct{}
	// PreviousKeyPoint moves to the preceding key point.
	PreviousKeyPoint struct{}
	// SelectKeyPoint jumps to the key point at Index.
	SelectKeyPoint struct{ Index int }
	// Seek moves the playhead to To.
	Seek struct{ To time.Duration }
	// SeekForward skips ahead by SeekForwardStep.
	SeekForward struct{}
	// SeekBackward skips back by SeekBackwardStep.
	SeekBackward struct{}
	// ChangeSpeed advances to the next playback rate.
	ChangeSpeed struct{}
)

// Engine feedback.
type (
	// AudioEvent wraps an event from the engine subscription.
	AudioEvent struct{ Event engine.Event }
	// DurationLoaded records the current track's duration.
	DurationLoaded struct{ Duration time.Duration }
	// PlaybackTimeUpdated records the engine's position.
	PlaybackTimeUpdated struct{ Time time.Duration }
	// PlaybackEnded reports the current track finished.
	PlaybackEnded struct{}
	// TrackLoaded is the result of a successful Load command.
	TrackLoaded struct {
		LoadID   uint64
		Duration time.Duration
	}
	// FailedToLoadCurrentTrack is the result of a failed Load command.
	FailedToLoadCurrentTrack struct {
		LoadID  uint64
		Message string
	}
)

func (LoadCurrentTrack) isAction()         {}
func (StartListening) isAction()           {}
func (OnDisappear) isAction()              {}
func (PlayPauseTapped) isAction()          {}
func (NextKeyPoint) isAction()             {}
func (PreviousKeyPoint) isAction()         {}
func (SelectKeyPoint) isAction()           {}
func (Seek) isAction()                     {}
func (SeekForward) isAction()              {}
func (SeekBackward) isAction()             {}
func (ChangeSpeed) isAction()              {}
func (AudioEvent) isAction()               {}
func (DurationLoaded) isAction()           {}
func (PlaybackTimeUpdated) isAction()      {}
func (PlaybackEnded) isAction()            {}
func (TrackLoaded) isAction()              {}
func (FailedToLoadCurrentTrack) isAction() {}
