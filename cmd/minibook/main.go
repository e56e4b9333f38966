// Package main provides the entry point for the MiniBook headless player.
//
// Commands are read from stdin one per line. Signals stand in for app
// lifecycle changes: SIGUSR1 moves to the background, SIGUSR2 returns to the
// foreground, and SIGINT or SIGTERM save the position and exit.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/samber/do/v2"
	"golang.org/x/sys/unix"

	"github.com/listenupapp/minibook/internal/app"
	"github.com/listenupapp/minibook/internal/config"
	"github.com/listenupapp/minibook/internal/di"
	"github.com/listenupapp/minibook/internal/errors"
	"github.com/listenupapp/minibook/internal/logger"
)

func main() {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(2)
	}

	// Create DI container
	injector := di.NewContainer(cfg)

	rt, err := di.Bootstrap(injector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start player: %v\n", err)
		os.Exit(1)
	}

	log := do.MustInvoke[*logger.Logger](injector)

	out := &console{w: os.Stdout}
	rt.OnChange(out.update)
	rt.Send(app.OnAppear{})

	lifecycle := make(chan os.Signal, 1)
	signal.Notify(lifecycle, unix.SIGUSR1, unix.SIGUSR2)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, unix.SIGINT, unix.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	inputDone := make(chan struct{})
	go func() {
		defer close(inputDone)
		readCommands(ctx, os.Stdin, rt, out)
	}()

loop:
	for {
		select {
		case sig := <-lifecycle:
			if sig == unix.SIGUSR1 {
				log.Info("Moving to background")
				rt.Send(app.AppMovedToBackground{})
			} else {
				log.Info("Returning to foreground")
				rt.Send(app.AppReturnedToForeground{})
			}
		case sig := <-quit:
			log.Info("Received signal", "signal", sig.String())
			break loop
		case <-inputDone:
			break loop
		}
	}

	shutdownLog := log
	if s := rt.State(); s.Book != nil {
		shutdownLog = log.WithBook(s.Book.ID)
	}
	shutdownLog.Info("Saving position and shutting down...")
	rt.Send(app.AppMovedToBackground{})

	// The DI container shuts down dependents first: watcher, runtime, engine, store.
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	log.Info("Goodbye")
}

// session is the part of the runtime the input loop drives.
type session interface {
	Send(a app.Action)
	State() app.State
}

// readCommands feeds parsed input lines to rt until EOF, quit or ctx ends.
func readCommands(ctx context.Context, r io.Reader, rt session, out *console) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		cmd, err := parseCommand(scanner.Text())
		if err != nil {
			out.println(err.Error())
			continue
		}

		switch cmd.kind {
		case kindQuit:
			return
		case kindHelp:
			out.println(helpText)
		case kindStatus:
			out.println(describe(rt.State()))
		case kindList:
			out.println(listKeyPoints(rt.State()))
		case kindRetry:
			// Retry is only offered from the error view.
			if rt.State().Error == "" {
				out.println("nothing to retry")
				continue
			}
			rt.Send(app.LoadBook{})
		case kindAction:
			rt.Send(cmd.action)
		}
	}
}

// console prints the status line whenever it changes.
type console struct {
	mu   sync.Mutex
	w    io.Writer
	last string
}

func (c *console) update(s app.State) {
	line := describe(s)

	c.mu.Lock()
	defer c.mu.Unlock()
	if line == c.last {
		return
	}
	c.last = line
	fmt.Fprintln(c.w, line)
}

func (c *console) println(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, text)
}
