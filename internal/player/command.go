package player

import (
	"time"

	"github.com/listenupapp/minibook/internal/domain"
)

// Command is a side effect on the audio engine, produced by Reduce.
type Command interface {
	isCommand()
}

type (
	// Load loads Source; its result comes back tagged with LoadID.
	Load struct {
		LoadID uint64
		Source domain.AudioSource
	}
	// Play starts playback.
	Play struct{}
	// Pause pauses playback.
	Pause struct{}
	// SeekTo moves the engine playhead.
	SeekTo struct{ Time time.Duration }
	// SetRate changes the engine speed.
	SetRate struct{ Rate domain.Rate }
	// Subscribe replaces the engine event subscription.
	Subscribe struct{}
	// Unsubscribe cancels the engine event subscription.
	Unsubscribe struct{}
)

func (Load) isCommand()        {}
func (Play) isCommand()        {}
func (Pause) isCommand()       {}
func (SeekTo) isCommand()      {}
func (SetRate) isCommand()     {}
func (Subscribe) isCommand()   {}
func (Unsubscribe) isCommand() {}
