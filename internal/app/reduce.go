package app

import (
	"github.com/listenupapp/minibook/internal/player"
)

// Reduce applies a to s and returns the new state with the effects to run, in order.
func Reduce(s State, a Action) (State, []Effect) {
	switch a := a.(type) {
	case OnAppear:
		return Reduce(s, LoadBook{})

	case LoadBook:
		s.IsLoading = true
		s.Error = ""
		return s, []Effect{FetchBook{}}

	case BookLoaded:
		s.IsLoading = false
		s.Error = ""
		s.Book = a.Book

		p, err := player.NewState(*a.Book)
		if err != nil {
			// Nothing to play.
			s.Player = nil
			return s, nil
		}
		return s.replacePlayer(p, player.LoadCurrentTrack{}, player.StartListening{})

	case LoadingFailed:
		s.IsLoading = false
		s.Error = a.Message
		s.Book = nil
		s.Player = nil
		return s, nil

	case Player:
		if s.Player == nil {
			return s, nil
		}
		return s.delegate(a.Action)

	case AppMovedToBackground:
		if s.Player == nil {
			return s, nil
		}

		snap := s.Player.Snapshot()
		s.Snapshot = &snap
		effects := []Effect{PersistSnapshot{Snapshot: snap}}

		if s.Player.IsPlaying {
			var pause []Effect
			s, pause = s.delegate(player.PlayPauseTapped{})
			effects = append(effects, pause...)
		}
		return s, effects

	case AppReturnedToForeground:
		return s, []Effect{RestoreSession{}}

	case RestoredFromSnapshot:
		p, err := player.RestoreState(*a.Book, a.Snapshot)
		if err != nil {
			// A snapshot for another book or an index that no longer exists is as good as none.
			return Reduce(s, LoadBook{})
		}

		s.IsLoading = false
		s.Error = ""
		s.Book = a.Book
		s.Snapshot = nil
		return s.replacePlayer(p,
			player.LoadCurrentTrack{},
			player.StartListening{},
			player.Seek{To: a.Snapshot.Position()},
		)

	default:
		return s, nil
	}
}

// replacePlayer installs p and runs actions on it. Load IDs continue from the
// previous player so its in-flight results are recognized as stale.
func (s State) replacePlayer(p player.State, actions ...player.Action) (State, []Effect) {
	if s.Player != nil {
		p.LoadID = s.Player.LoadID
	}
	s.Player = &p
	return s.delegate(actions...)
}

// delegate reduces actions on a copy of the player and wraps its commands.
func (s State) delegate(actions ...player.Action) (State, []Effect) {
	p := *s.Player

	var effects []Effect
	for _, a := range actions {
		var cmds []player.Command
		p, cmds = player.Reduce(p, a)
		for _, cmd := range cmds {
			effects = append(effects, PlayerCommand{Command: cmd})
		}
	}

	s.Player = &p
	return s, effects
}
