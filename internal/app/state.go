// Package app is the top-level state machine: it loads the book, builds the
// player, and saves or restores the listening position around backgrounding.
// Player intents pass through to the player package untouched.
package app

import (
	"github.com/listenupapp/minibook/internal/domain"
	"github.com/listenupapp/minibook/internal/player"
)

// State is the app as the presentation sees it.
// Player is non-nil only while Book is loaded and has key points.
// Error and Book are never both set.
type State struct {
	Book      *domain.Book
	Player    *player.State
	IsLoading bool
	Error     string
	Snapshot  *domain.PlayerSnapshot
}

// Action is an intent or result the app reduces.
type Action interface {
	isAction()
}

type (
	// OnAppear starts the first load.
	OnAppear struct{}
	// LoadBook fetches the book; also the retry after a failure.
	LoadBook struct{}
	// BookLoaded is the result of a successful fetch.
	BookLoaded struct{ Book *domain.Book }
	// LoadingFailed is the result of a failed fetch.
	LoadingFailed struct{ Message string }
	// Player forwards an action to the player state machine.
	Player struct{ Action player.Action }
	// AppMovedToBackground saves the position and pauses.
	AppMovedToBackground struct{}
	// AppReturnedToForeground restores the saved position if there is one.
	AppReturnedToForeground struct{}
	// RestoredFromSnapshot rebuilds the player from a saved position.
	RestoredFromSnapshot struct {
		Book     *domain.Book
		Snapshot domain.PlayerSnapshot
	}
)

func (OnAppear) isAction()                {}
func (LoadBook) isAction()                {}
func (BookLoaded) isAction()              {}
func (LoadingFailed) isAction()           {}
func (Player) isAction()                  {}
func (AppMovedToBackground) isAction()    {}
func (AppReturnedToForeground) isAction() {}
func (RestoredFromSnapshot) isAction()    {}

// Effect is work the Runtime performs after a reduction.
type Effect interface {
	isEffect()
}

type (
	// FetchBook loads the book from the repository.
	FetchBook struct{}
	// PersistSnapshot saves a snapshot; failures are logged and dropped.
	PersistSnapshot struct{ Snapshot domain.PlayerSnapshot }
	// RestoreSession looks for a snapshot and the book to apply it to.
	RestoreSession struct{}
	// PlayerCommand is an engine command from the player.
	PlayerCommand struct{ Command player.Command }
)

func (FetchBook) isEffect()       {}
func (PersistSnapshot) isEffect() {}
func (RestoreSession) isEffect()  {}
func (PlayerCommand) isEffect()   {}
