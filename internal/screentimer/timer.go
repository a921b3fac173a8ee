// Package screentimer measures how long named screens stay open.
package screentimer

import (
	"errors"
	"sort"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/samber/lo"
)

// ErrNotStarted is returned by Stop for a screen that has no running timer
var ErrNotStarted = errors.New("screen timer not started")

// Timer tracks start instants per screen name. It is not safe for concurrent
// use; the session manager serializes access.
type Timer struct {
	clock  clock.Clock
	starts map[string]time.Time
}

// New creates a Timer reading time from c. A nil clock uses the wall clock.
func New(c clock.Clock) *Timer {
	if c == nil {
		c = clock.New()
	}
	return &Timer{
		clock:  c,
		starts: make(map[string]time.Time),
	}
}

// Start records the current instant for screen, replacing any running timer
func (t *Timer) Start(screen string) {
	t.starts[screen] = t.clock.Now()
}

// Stop ends the timer for screen and returns the elapsed time truncated to
// whole seconds
func (t *Timer) Stop(screen string) (time.Duration, error) {
	start, ok := t.starts[screen]
	if !ok {
		return 0, ErrNotStarted
	}
	delete(t.starts, screen)
	return t.clock.Since(start).Truncate(time.Second), nil
}

// Active returns the screens with a running timer, sorted
func (t *Timer) Active() []string {
	names := lo.Keys(t.starts)
	sort.Strings(names)
	return names
}
