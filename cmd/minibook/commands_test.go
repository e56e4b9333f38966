package main

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/minibook/internal/app"
	"github.com/listenupapp/minibook/internal/domain"
	"github.com/listenupapp/minibook/internal/errors"
	"github.com/listenupapp/minibook/internal/player"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want command
	}{
		{"", command{kind: kindStatus}},
		{"  ", command{kind: kindStatus}},
		{"p", playerAction(player.PlayPauseTapped{})},
		{"PLAY", playerAction(player.PlayPauseTapped{})},
		{"next", playerAction(player.NextKeyPoint{})},
		{"b", playerAction(player.PreviousKeyPoint{})},
		{"ff", playerAction(player.SeekForward{})},
		{"rw", playerAction(player.SeekBackward{})},
		{"speed", playerAction(player.ChangeSpeed{})},
		{"seek 45.5", playerAction(player.Seek{To: 45500 * time.Millisecond})},
		{"select 3", playerAction(player.SelectKeyPoint{Index: 2})},
		{"bg", command{kind: kindAction, action: app.AppMovedToBackground{}}},
		{"fg", command{kind: kindAction, action: app.AppReturnedToForeground{}}},
		{"retry", command{kind: kindRetry}},
		{"list", command{kind: kindList}},
		{"?", command{kind: kindHelp}},
		{"q", command{kind: kindQuit}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.line), func(t *testing.T) {
			got, err := parseCommand(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommand_Invalid(t *testing.T) {
	for _, line := range []string{"dance", "seek", "seek -3", "seek soon", "select 0", "select x", "select 1 2"} {
		t.Run(line, func(t *testing.T) {
			_, err := parseCommand(line)
			require.Error(t, err)
			assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))
		})
	}
}

// recordingSession stands in for the runtime in readCommands tests.
type recordingSession struct {
	mu      sync.Mutex
	actions []app.Action
	state   app.State
}

func (r *recordingSession) Send(a app.Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, a)
}

func (r *recordingSession) State() app.State {
	return r.state
}

func TestReadCommands_SendsActionsUntilQuit(t *testing.T) {
	var out strings.Builder
	c := &console{w: &out}
	rt := &recordingSession{state: app.State{Error: "Network error"}}

	input := strings.NewReader("help\nbogus\nstatus\nretry\nff\nquit\nnext\n")
	readCommands(t.Context(), input, rt, c)

	assert.Equal(t, []app.Action{
		app.LoadBook{},
		app.Player{Action: player.SeekForward{}},
	}, rt.actions)
	assert.Contains(t, out.String(), "commands:")
	assert.Contains(t, out.String(), `unknown command "bogus"`)
	assert.Contains(t, out.String(), "error: Network error (type 'retry')")
}

func TestReadCommands_RetryOnlyAfterError(t *testing.T) {
	var out strings.Builder
	c := &console{w: &out}
	rt := &recordingSession{state: viewState(t)}

	readCommands(t.Context(), strings.NewReader("retry\nr\n"), rt, c)

	assert.Empty(t, rt.actions)
	assert.Equal(t, "nothing to retry\nnothing to retry\n", out.String())
}

func TestConsole_PrintsOnlyChanges(t *testing.T) {
	var out strings.Builder
	c := &console{w: &out}

	book := domain.NewBook("b", "Fables", "Aesop", nil, nil)
	c.update(app.State{IsLoading: true})
	c.update(app.State{IsLoading: true})
	c.update(app.State{Book: &book})

	assert.Equal(t, "loading book...\n\"Fables\" has no key points\n", out.String())
}
