package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/listenupapp/minibook/internal/app"
)

// describe renders the state as a single status line.
func describe(s app.State) string {
	switch {
	case s.IsLoading:
		return "loading book..."
	case s.Error != "":
		return fmt.Sprintf("error: %s (type 'retry')", s.Error)
	case s.Book == nil:
		return "no book"
	case s.Player == nil:
		return fmt.Sprintf("%q has no key points", s.Book.Title)
	}

	p := s.Player
	kp := p.CurrentKeyPoint()

	status := "paused"
	if p.IsPlaying {
		status = "playing"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%d/%d] %s  %s / %s  %s  %s",
		p.CurrentKeyPointIndex+1,
		len(p.Book.KeyPoints),
		kp.Title,
		clock(p.CurrentTime),
		durationClock(p.Duration, p.HasDuration),
		p.PlaybackRate,
		status,
	)
	if p.TrackError != "" {
		fmt.Fprintf(&b, "  track error: %s", p.TrackError)
	}
	return b.String()
}

// listKeyPoints renders the key points with the current one marked.
func listKeyPoints(s app.State) string {
	if s.Book == nil {
		return "no book"
	}
	if s.Book.IsEmpty() {
		return "no key points"
	}

	current := -1
	if s.Player != nil {
		current = s.Player.CurrentKeyPointIndex
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s by %s\n", s.Book.Title, s.Book.Author)
	for i, kp := range s.Book.KeyPoints {
		marker := " "
		if i == current {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s %2d. %s\n", marker, i+1, kp.Title)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func clock(d time.Duration) string {
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func durationClock(d time.Duration, known bool) string {
	if !known {
		return "--:--"
	}
	return clock(d)
}
