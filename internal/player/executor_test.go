package player

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/minibook/internal/domain"
	"github.com/listenupapp/minibook/internal/engine"
	"github.com/listenupapp/minibook/internal/errors"
	"github.com/listenupapp/minibook/internal/logger"
)

// fakeEngine records calls and hands out controllable event channels.
type fakeEngine struct {
	mu        sync.Mutex
	calls     []string
	durations map[string]time.Duration
	loadGate  chan struct{} // when set, Load blocks until closed
	subs      []chan engine.Event
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{durations: map[string]time.Duration{}}
}

func (f *fakeEngine) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeEngine) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeEngine) Load(_ context.Context, src domain.AudioSource) (time.Duration, error) {
	f.mu.Lock()
	gate := f.loadGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.record("load " + src.String())

	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.durations[src.FileName()]
	if !ok {
		return 0, errors.Enginef("cannot open %s", src)
	}
	return d, nil
}

func (f *fakeEngine) Play()                 { f.record("play") }
func (f *fakeEngine) Pause()                { f.record("pause") }
func (f *fakeEngine) Seek(t time.Duration)  { f.record("seek " + t.String()) }
func (f *fakeEngine) SetRate(r domain.Rate) { f.record("rate " + r.String()) }

func (f *fakeEngine) Events(ctx context.Context) <-chan engine.Event {
	f.record("subscribe")
	ch := make(chan engine.Event, 10)

	f.mu.Lock()
	f.subs = append(f.subs, ch)
	f.mu.Unlock()

	return ch
}

func (f *fakeEngine) Sub(i int) chan engine.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs[i]
}

func (f *fakeEngine) SubCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// actionLog collects dispatched actions.
type actionLog struct {
	mu      sync.Mutex
	actions []Action
}

func (l *actionLog) Dispatch(a Action) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.actions = append(l.actions, a)
}

func (l *actionLog) All() []Action {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Action(nil), l.actions...)
}

func setupTestExecutor(t *testing.T, eng AudioEngine) (*Executor, *actionLog) {
	t.Helper()

	log := &actionLog{}
	x := NewExecutor(eng, log.Dispatch, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	go x.Start(ctx)
	t.Cleanup(func() {
		cancel()
		<-x.Done()
	})

	return x, log
}

func TestExecutor_RunsCommandsInOrder(t *testing.T) {
	eng := newFakeEngine()
	eng.durations["track_00.mp3"] = time.Minute
	x, log := setupTestExecutor(t, eng)

	x.Submit(
		Load{LoadID: 1, Source: domain.LocalSource("track_00.mp3")},
		SeekTo{Time: 45 * time.Second},
		SetRate{Rate: 1.5},
		Play{},
		Pause{},
	)

	require.Eventually(t, func() bool { return len(eng.Calls()) == 5 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"load track_00.mp3", "seek 45s", "rate 1.5x", "play", "pause"}, eng.Calls())
	assert.Equal(t, []Action{TrackLoaded{LoadID: 1, Duration: time.Minute}}, log.All())
}

func TestExecutor_SeekWaitsForSlowLoad(t *testing.T) {
	eng := newFakeEngine()
	eng.durations["track_00.mp3"] = time.Minute
	eng.loadGate = make(chan struct{})
	x, _ := setupTestExecutor(t, eng)

	x.Submit(Load{LoadID: 1, Source: domain.LocalSource("track_00.mp3")})
	x.Submit(SeekTo{Time: 10 * time.Second})

	assert.Never(t, func() bool { return len(eng.Calls()) > 0 }, 30*time.Millisecond, 5*time.Millisecond)

	close(eng.loadGate)
	require.Eventually(t, func() bool { return len(eng.Calls()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"load track_00.mp3", "seek 10s"}, eng.Calls())
}

func TestExecutor_LoadFailureDispatchesAction(t *testing.T) {
	eng := newFakeEngine()
	x, log := setupTestExecutor(t, eng)

	x.Submit(Load{LoadID: 4, Source: domain.LocalSource("missing.mp3")})

	require.Eventually(t, func() bool { return len(log.All()) == 1 }, time.Second, 5*time.Millisecond)
	failed, ok := log.All()[0].(FailedToLoadCurrentTrack)
	require.True(t, ok)
	assert.Equal(t, uint64(4), failed.LoadID)
	assert.Contains(t, failed.Message, "cannot open missing.mp3")
}

func TestExecutor_SubscriptionForwardsEvents(t *testing.T) {
	eng := newFakeEngine()
	x, log := setupTestExecutor(t, eng)

	x.Submit(Subscribe{})
	require.Eventually(t, func() bool { return eng.SubCount() == 1 }, time.Second, 5*time.Millisecond)

	eng.Sub(0) <- engine.Event{Kind: engine.TimeUpdated, Time: time.Second}
	eng.Sub(0) <- engine.Event{Kind: engine.Ended, Time: time.Minute}

	require.Eventually(t, func() bool { return len(log.All()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []Action{
		AudioEvent{Event: engine.Event{Kind: engine.TimeUpdated, Time: time.Second}},
		AudioEvent{Event: engine.Event{Kind: engine.Ended, Time: time.Minute}},
	}, log.All())
}

func TestExecutor_ResubscribeStopsPreviousListener(t *testing.T) {
	eng := newFakeEngine()
	x, log := setupTestExecutor(t, eng)

	x.Submit(Subscribe{}, Subscribe{})
	require.Eventually(t, func() bool { return eng.SubCount() == 2 }, time.Second, 5*time.Millisecond)

	// The first listener is gone; events on its channel are never delivered.
	eng.Sub(0) <- engine.Event{Kind: engine.TimeUpdated, Time: time.Second}
	eng.Sub(1) <- engine.Event{Kind: engine.TimeUpdated, Time: 2 * time.Second}

	require.Eventually(t, func() bool { return len(log.All()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return len(log.All()) > 1 }, 30*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, AudioEvent{Event: engine.Event{Kind: engine.TimeUpdated, Time: 2 * time.Second}}, log.All()[0])
}

func TestExecutor_UnsubscribeStopsDelivery(t *testing.T) {
	eng := newFakeEngine()
	x, log := setupTestExecutor(t, eng)

	x.Submit(Subscribe{}, Unsubscribe{}, Pause{})
	require.Eventually(t, func() bool { return len(eng.Calls()) == 2 }, time.Second, 5*time.Millisecond)

	eng.Sub(0) <- engine.Event{Kind: engine.Ended}
	assert.Never(t, func() bool { return len(log.All()) > 0 }, 30*time.Millisecond, 5*time.Millisecond)
}

func TestExecutor_DrivesReducerToPlayback(t *testing.T) {
	eng := newFakeEngine()
	for i := range 2 {
		eng.durations[fmt.Sprintf("track_%02d.mp3", i)] = 30 * time.Second
	}
	x, log := setupTestExecutor(t, eng)

	s := newTestState(t, 2)
	s.IsPlaying = true
	s, cmds := Reduce(s, LoadCurrentTrack{})
	x.Submit(cmds...)

	require.Eventually(t, func() bool { return len(log.All()) == 1 }, time.Second, 5*time.Millisecond)
	s, cmds = Reduce(s, log.All()[0])
	x.Submit(cmds...)

	require.Eventually(t, func() bool { return len(eng.Calls()) == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"load track_00.mp3", "rate 1x", "play"}, eng.Calls())
	assert.Equal(t, 30*time.Second, s.Duration)
}

func TestExecutor_FailedLoadSilencesPreviousTrack(t *testing.T) {
	eng := engine.New(engine.Options{
		AudioDir:         "/audio",
		ProgressInterval: 2 * time.Millisecond,
		Logger:           logger.Discard(),
		Probe: func(_ context.Context, path string) (time.Duration, error) {
			if strings.HasSuffix(path, "bad.mp3") {
				return 0, errors.Engine("undecodable")
			}
			return 40 * time.Millisecond, nil
		},
	})
	t.Cleanup(func() { _ = eng.Close() })
	x, log := setupTestExecutor(t, eng)

	x.Submit(
		Subscribe{},
		Load{LoadID: 1, Source: domain.LocalSource("good.mp3")},
		Play{},
		Load{LoadID: 2, Source: domain.LocalSource("bad.mp3")},
	)

	require.Eventually(t, func() bool {
		for _, a := range log.All() {
			if f, ok := a.(FailedToLoadCurrentTrack); ok && f.LoadID == 2 {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	// The good track would have ended by now had it kept playing.
	assert.Never(t, func() bool {
		for _, a := range log.All() {
			if evt, ok := a.(AudioEvent); ok && evt.Event.Kind == engine.Ended {
				return true
			}
		}
		return false
	}, 150*time.Millisecond, 10*time.Millisecond)
	assert.False(t, eng.Playing())
}
