// Package player is the playback state machine.
//
// Reduce is a pure function from (State, Action) to a new State and the
// engine Commands that follow from it. The Executor runs those commands
// against the AudioEngine in order and feeds results back as Actions.
package player

import (
	"time"

	"github.com/listenupapp/minibook/internal/domain"
	"github.com/listenupapp/minibook/internal/errors"
)

// State is everything the player knows about the current session.
// The zero value is not usable; build one with NewState or RestoreState.
type State struct {
	Book                 domain.Book
	CurrentKeyPointIndex int
	IsPlaying            bool
	CurrentTime          time.Duration
	Duration             time.Duration // meaningful only when HasDuration
	HasDuration          bool
	PlaybackRate         domain.Rate

	// TrackError holds the last load failure for the current key point.
	TrackError string
	// LoadID identifies the most recent Load command; older results are stale.
	LoadID uint64
}

// NewState returns a stopped player at the first key point of book.
func NewState(book domain.Book) (State, error) {
	if book.IsEmpty() {
		return State{}, errors.Validationf("book %q has no key points", book.ID)
	}

	return State{
		Book:         book,
		PlaybackRate: domain.DefaultRate,
	}, nil
}

// RestoreState returns a stopped player positioned where snap left off.
// The snapshot must belong to book and address one of its key points.
func RestoreState(book domain.Book, snap domain.PlayerSnapshot) (State, error) {
	s, err := NewState(book)
	if err != nil {
		return State{}, err
	}

	if snap.BookID != book.ID {
		return State{}, errors.Validationf("snapshot is for book %q, not %q", snap.BookID, book.ID)
	}
	if !book.HasKeyPoint(snap.KeyPointIndex) {
		return State{}, errors.Validationf("snapshot key point %d out of range", snap.KeyPointIndex)
	}

	s.CurrentKeyPointIndex = snap.KeyPointIndex
	s.CurrentTime = snap.Position()
	s.PlaybackRate = snap.Rate()
	return s, nil
}

// IsFirstKeyPoint reports whether the current key point is the first.
func (s State) IsFirstKeyPoint() bool {
	return s.CurrentKeyPointIndex == 0
}

// IsLastKeyPoint reports whether the current key point is the last.
func (s State) IsLastKeyPoint() bool {
	return s.CurrentKeyPointIndex == len(s.Book.KeyPoints)-1
}

// CurrentKeyPoint returns the key point being played.
func (s State) CurrentKeyPoint() domain.KeyPoint {
	return s.Book.KeyPoints[s.CurrentKeyPointIndex]
}

// Snapshot captures the position for persistence.
func (s State) Snapshot() domain.PlayerSnapshot {
	return domain.PlayerSnapshot{
		BookID:        s.Book.ID,
		KeyPointIndex: s.CurrentKeyPointIndex,
		CurrentTime:   s.CurrentTime.Seconds(),
		PlaybackRate:  float64(s.PlaybackRate),
	}
}
