package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/listenupapp/minibook/internal/domain"
	"github.com/listenupapp/minibook/internal/player"
)

// BookRepository is the storage the Runtime reads the book and snapshots from.
type BookRepository interface {
	LoadBook(ctx context.Context) (*domain.Book, error)
	LoadSnapshot(ctx context.Context) (*domain.PlayerSnapshot, error)
	SaveSnapshot(ctx context.Context, snap domain.PlayerSnapshot) error
}

// CommandRunner executes player commands in submission order.
type CommandRunner interface {
	Submit(cmds ...player.Command)
}

// Runtime owns the app State. Actions are reduced one at a time on the Start
// goroutine; effects run afterwards and report back through Send.
type Runtime struct {
	repo     BookRepository
	commands CommandRunner
	logger   *slog.Logger

	mu      sync.Mutex
	mailbox []Action
	closing bool
	wake    chan struct{}

	stateMu  sync.RWMutex
	state    State
	onChange func(State)

	effects sync.WaitGroup
	done    chan struct{}

	// Closed when the most recently started save finishes. Owned by the Start goroutine.
	lastSave chan struct{}
}

// NewRuntime creates a runtime.
func NewRuntime(repo BookRepository, commands CommandRunner, logger *slog.Logger) *Runtime {
	return &Runtime{
		repo:     repo,
		commands: commands,
		logger:   logger,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// OnChange registers fn to receive the state after every later reduction.
// fn runs on the Start goroutine and must not block.
func (r *Runtime) OnChange(fn func(State)) {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	r.onChange = fn
}

// Send queues an action. It never blocks; actions sent after Shutdown are dropped.
func (r *Runtime) Send(a Action) {
	r.mu.Lock()
	if r.closing {
		r.mu.Unlock()
		r.logger.Debug("runtime closing, action dropped", "action", a)
		return
	}
	r.mailbox = append(r.mailbox, a)
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Dispatch forwards a player action. It is the callback handed to the player executor.
func (r *Runtime) Dispatch(a player.Action) {
	r.Send(Player{Action: a})
}

// State returns the current state. The pointers it holds are never mutated.
func (r *Runtime) State() State {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.state
}

// Start reduces actions until ctx is canceled or Shutdown drains the mailbox.
// Before returning it waits for running effects.
// This should be called once, in its own goroutine.
func (r *Runtime) Start(ctx context.Context) {
	defer close(r.done)
	defer r.effects.Wait()

	r.logger.Info("runtime started")

	for {
		actions, closing := r.drain()
		for _, a := range actions {
			if ctx.Err() != nil {
				return
			}
			r.handle(ctx, a)
		}

		if closing && len(actions) == 0 {
			r.logger.Info("runtime stopped")
			return
		}

		select {
		case <-r.wake:
		case <-ctx.Done():
			r.logger.Info("runtime stopped", "reason", ctx.Err())
			return
		}
	}
}

// Shutdown stops accepting actions, lets queued ones finish, and waits for
// Start to return or ctx to expire.
func (r *Runtime) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closing = true
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once Start has returned.
func (r *Runtime) Done() <-chan struct{} {
	return r.done
}

func (r *Runtime) drain() ([]Action, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	actions := r.mailbox
	r.mailbox = nil
	return actions, r.closing
}

func (r *Runtime) handle(ctx context.Context, a Action) {
	r.stateMu.Lock()
	next, effects := Reduce(r.state, a)
	r.state = next
	onChange := r.onChange
	r.stateMu.Unlock()

	if onChange != nil {
		onChange(next)
	}

	var cmds []player.Command
	for _, e := range effects {
		if pc, ok := e.(PlayerCommand); ok {
			cmds = append(cmds, pc.Command)
			continue
		}
		r.commands.Submit(cmds...)
		cmds = nil
		r.run(ctx, e)
	}
	r.commands.Submit(cmds...)
}

// run starts e on its own goroutine. Saves run one after another, and a
// restore reads only after every save started before it has finished.
func (r *Runtime) run(ctx context.Context, e Effect) {
	prior := r.lastSave
	var saved chan struct{}
	if _, ok := e.(PersistSnapshot); ok {
		saved = make(chan struct{})
		r.lastSave = saved
	}

	r.effects.Add(1)
	go func() {
		defer r.effects.Done()

		switch e := e.(type) {
		case FetchBook:
			r.fetchBook(ctx)
		case PersistSnapshot:
			defer close(saved)
			// The save outlives a canceled runtime so a shutdown still records the position.
			saveCtx := context.WithoutCancel(ctx)
			awaitSave(saveCtx, prior)
			r.persist(saveCtx, e.Snapshot)
		case RestoreSession:
			if !awaitSave(ctx, prior) {
				return
			}
			r.restore(ctx)
		default:
			r.logger.Error("unknown effect", "effect", e)
		}
	}()
}

// awaitSave blocks until saved is closed. It reports false if ctx ended first.
func awaitSave(ctx context.Context, saved <-chan struct{}) bool {
	if saved == nil {
		return true
	}
	select {
	case <-saved:
		return true
	case <-ctx.Done():
		return false
	}
}

func (r *Runtime) fetchBook(ctx context.Context) {
	book, err := r.repo.LoadBook(ctx)
	if err != nil {
		r.logger.Warn("book load failed", "error", err)
		r.Send(LoadingFailed{Message: err.Error()})
		return
	}
	r.logger.Info("book ready", "book_id", book.ID, "key_points", len(book.KeyPoints))
	r.Send(BookLoaded{Book: book})
}

func (r *Runtime) persist(ctx context.Context, snap domain.PlayerSnapshot) {
	if err := r.repo.SaveSnapshot(ctx, snap); err != nil {
		r.logger.Warn("failed to save snapshot", "book_id", snap.BookID, "error", err)
		return
	}
	r.logger.Debug("snapshot saved",
		"book_id", snap.BookID,
		"key_point_index", snap.KeyPointIndex,
		"current_time", snap.CurrentTime,
	)
}

func (r *Runtime) restore(ctx context.Context) {
	snap, err := r.repo.LoadSnapshot(ctx)
	if err != nil {
		r.logger.Warn("failed to read snapshot", "error", err)
		snap = nil
	}
	if snap == nil {
		r.Send(LoadBook{})
		return
	}

	book, err := r.repo.LoadBook(ctx)
	if err != nil {
		r.logger.Warn("book load failed during restore", "error", err)
		r.Send(LoadBook{})
		return
	}

	r.Send(RestoredFromSnapshot{Book: book, Snapshot: *snap})
}
