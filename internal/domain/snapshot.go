package domain

import (
	"math"
	"time"
)

// PlayerSnapshot is the playback position persisted when the app goes to the background.
type PlayerSnapshot struct {
	BookID        string
	KeyPointIndex int
	CurrentTime   float64 // seconds
	PlaybackRate  float64
}

// Position returns CurrentTime as a duration, never negative.
func (s PlayerSnapshot) Position() time.Duration {
	return DurationFromSeconds(s.CurrentTime)
}

// Rate returns the snapshot's playback rate, falling back to DefaultRate when unsupported.
func (s PlayerSnapshot) Rate() Rate {
	return Rate(s.PlaybackRate).Normalize()
}

// DurationFromSeconds converts fractional seconds to a duration.
// Negative and non-finite inputs yield zero.
func DurationFromSeconds(seconds float64) time.Duration {
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}
