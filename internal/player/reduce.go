package player

import (
	"time"

	"github.com/listenupapp/minibook/internal/engine"
)

// Skip steps for SeekForward and SeekBackward.
const (
	SeekForwardStep  = 10 * time.Second
	SeekBackwardStep = 5 * time.Second
)

// Reduce applies a to s and returns the new state with the engine commands to run, in order.
// It never fails: every outcome, including load failures, is expressed as state.
//
//nolint:gocyclo // One case per action keeps the transition table readable.
func Reduce(s State, a Action) (State, []Command) {
	switch a := a.(type) {
	case LoadCurrentTrack:
		s.LoadID++
		s.TrackError = ""
		return s, []Command{Load{LoadID: s.LoadID, Source: s.CurrentKeyPoint().AudioSource}}

	case StartListening:
		return s, []Command{Subscribe{}}

	case OnDisappear:
		return s, []Command{Unsubscribe{}}

	case AudioEvent:
		switch a.Event.Kind {
		case engine.TimeUpdated:
			return Reduce(s, PlaybackTimeUpdated{Time: a.Event.Time})
		case engine.Ended:
			return Reduce(s, PlaybackEnded{})
		default:
			return s, nil
		}

	case PlayPauseTapped:
		s.IsPlaying = !s.IsPlaying
		if s.IsPlaying {
			return s, []Command{Play{}}
		}
		return s, []Command{Pause{}}

	case NextKeyPoint:
		if s.IsLastKeyPoint() {
			return s, nil
		}
		return moveTo(s, s.CurrentKeyPointIndex+1, s.IsPlaying)

	case PreviousKeyPoint:
		if s.IsFirstKeyPoint() {
			return s, nil
		}
		return moveTo(s, s.CurrentKeyPointIndex-1, s.IsPlaying)

	case SelectKeyPoint:
		if !s.Book.HasKeyPoint(a.Index) || a.Index == s.CurrentKeyPointIndex {
			return s, nil
		}
		return moveTo(s, a.Index, s.IsPlaying)

	case Seek:
		s.CurrentTime = clamp(a.To, 0, s.upperBound(a.To))
		return s, []Command{SeekTo{Time: s.CurrentTime}}

	case SeekForward:
		target := s.CurrentTime + SeekForwardStep
		s.CurrentTime = clamp(target, 0, s.upperBound(s.CurrentTime))
		return s, []Command{SeekTo{Time: s.CurrentTime}}

	case SeekBackward:
		s.CurrentTime = max(s.CurrentTime-SeekBackwardStep, 0)
		return s, []Command{SeekTo{Time: s.CurrentTime}}

	case DurationLoaded:
		s.Duration = max(a.Duration, 0)
		s.HasDuration = true
		s.CurrentTime = min(s.CurrentTime, s.Duration)
		return s, nil

	case PlaybackTimeUpdated:
		s.CurrentTime = max(a.Time, 0)
		return s, nil

	case PlaybackEnded:
		if s.IsLastKeyPoint() {
			s.IsPlaying = false
			return s, nil
		}
		return moveTo(s, s.CurrentKeyPointIndex+1, true)

	case ChangeSpeed:
		s.PlaybackRate = s.PlaybackRate.Next()
		return s, []Command{SetRate{Rate: s.PlaybackRate}}

	case TrackLoaded:
		if a.LoadID != s.LoadID {
			return s, nil
		}
		s, _ = Reduce(s, DurationLoaded{Duration: a.Duration})
		cmds := []Command{SetRate{Rate: s.PlaybackRate}}
		if s.IsPlaying {
			cmds = append(cmds, Play{})
		}
		return s, cmds

	case FailedToLoadCurrentTrack:
		if a.LoadID != s.LoadID {
			return s, nil
		}
		// The engine unloads before probing, so nothing is playing anymore.
		s.TrackError = a.Message
		s.IsPlaying = false
		return s, nil

	default:
		return s, nil
	}
}

// moveTo resets position and duration for index before reloading, so the
// new track never sees the old one's values. playing carries auto-play across.
func moveTo(s State, index int, playing bool) (State, []Command) {
	s.CurrentKeyPointIndex = index
	s.CurrentTime = 0
	s.Duration = 0
	s.HasDuration = false
	s.IsPlaying = playing
	return Reduce(s, LoadCurrentTrack{})
}

// upperBound is the duration when known, otherwise fallback.
func (s State) upperBound(fallback time.Duration) time.Duration {
	if s.HasDuration {
		return s.Duration
	}
	return max(fallback, 0)
}

func clamp(t, lo, hi time.Duration) time.Duration {
	return min(max(t, lo), hi)
}
