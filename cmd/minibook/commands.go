package main

import (
	"strconv"
	"strings"

	"github.com/listenupapp/minibook/internal/app"
	"github.com/listenupapp/minibook/internal/domain"
	"github.com/listenupapp/minibook/internal/errors"
	"github.com/listenupapp/minibook/internal/player"
)

type commandKind int

const (
	kindAction commandKind = iota
	kindQuit
	kindHelp
	kindStatus
	kindList
	kindRetry
)

// command is one parsed line of user input.
type command struct {
	kind   commandKind
	action app.Action
}

const helpText = `commands:
  play, p          play or pause
  next, n          next key point
  prev, b          previous key point
  ff               skip forward 10s
  rw               skip back 5s
  speed, s         next playback speed
  seek <seconds>   jump to a position in the current track
  select <n>       jump to key point n (see list)
  list, l          list key points
  status           show the player
  bg, fg           simulate moving to the background or foreground
  retry, r         reload the book after an error
  quit, q          save and exit`

func playerAction(a player.Action) command {
	return command{kind: kindAction, action: app.Player{Action: a}}
}

// parseCommand maps a line of input to a command. Blank lines are a status request.
func parseCommand(line string) (command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return command{kind: kindStatus}, nil
	}

	name, args := fields[0], fields[1:]

	switch name {
	case "play", "pause", "p":
		return playerAction(player.PlayPauseTapped{}), nil
	case "next", "n":
		return playerAction(player.NextKeyPoint{}), nil
	case "prev", "previous", "b":
		return playerAction(player.PreviousKeyPoint{}), nil
	case "ff", "forward":
		return playerAction(player.SeekForward{}), nil
	case "rw", "rewind":
		return playerAction(player.SeekBackward{}), nil
	case "speed", "s":
		return playerAction(player.ChangeSpeed{}), nil

	case "seek":
		if len(args) != 1 {
			return command{}, errors.Validation("usage: seek <seconds>")
		}
		seconds, err := strconv.ParseFloat(args[0], 64)
		if err != nil || seconds < 0 {
			return command{}, errors.Validationf("invalid position %q", args[0])
		}
		return playerAction(player.Seek{To: domain.DurationFromSeconds(seconds)}), nil

	case "select":
		if len(args) != 1 {
			return command{}, errors.Validation("usage: select <n>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return command{}, errors.Validationf("invalid key point %q", args[0])
		}
		return playerAction(player.SelectKeyPoint{Index: n - 1}), nil

	case "bg", "background":
		return command{kind: kindAction, action: app.AppMovedToBackground{}}, nil
	case "fg", "foreground":
		return command{kind: kindAction, action: app.AppReturnedToForeground{}}, nil
	case "retry", "r":
		return command{kind: kindRetry}, nil

	case "list", "l":
		return command{kind: kindList}, nil
	case "status":
		return command{kind: kindStatus}, nil
	case "help", "h", "?":
		return command{kind: kindHelp}, nil
	case "quit", "q", "exit":
		return command{kind: kindQuit}, nil

	default:
		return command{}, errors.Validationf("unknown command %q (try 'help')", name)
	}
}
