// Package anim provides the fixed-rate scheduling primitive render loops
// ride on: a step callback invoked at a bounded frequency with cooperative,
// joining shutdown.
package anim

import (
	"sync"
	"time"
)

// DefaultFPS is used when a loop is built with a zero frequency.
const DefaultFPS = 30

// StepFunc is invoked once per tick with the time elapsed since the previous
// invocation (effectively zero on the first tick). Returning false ends the
// loop.
type StepFunc func(elapsed time.Duration) bool

// Loop invokes a step function at a bounded rate. After each step it sleeps
// for max(0, period-took), so a slow step lets drift accumulate instead of
// triggering catch-up bursts.
//
// A Loop alternates between idle and running. Start blocks while running and
// may be called again after it returns.
type Loop struct {
	period time.Duration
	step   StepFunc

	mu      sync.Mutex
	running bool
	stopped bool
	latched bool // stop requested while idle; consumed by the next Start
	stop    chan struct{}
	done    chan struct{}
}

// NewLoop builds a loop ticking step at the given frequency.
func NewLoop(fps uint, step StepFunc) *Loop {
	if fps == 0 {
		fps = DefaultFPS
	}
	return &Loop{
		period: time.Second / time.Duration(fps),
		step:   step,
	}
}

// Period returns the tick interval derived from the configured frequency.
func (l *Loop) Period() time.Duration {
	return l.period
}

// Start runs the loop on the calling goroutine until the step callback
// returns false or Stop is called. Calling Start on a loop that is already
// running is a no-op returning immediately. A stop request latched while the
// loop was idle is consumed here: Start returns without ticking.
func (l *Loop) Start() {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return
	}
	if l.latched {
		l.latched = false
		l.mu.Unlock()
		return
	}
	l.running = true
	l.stopped = false
	l.stop = make(chan struct{})
	l.done = make(chan struct{})
	stop, done := l.stop, l.done
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.running = false
		l.mu.Unlock()
		close(done)
	}()

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	last := time.Now()
	for {
		select {
		case <-stop:
			return
		default:
		}

		start := time.Now()
		if !l.step(start.Sub(last)) {
			return
		}
		last = start

		if delay := l.period - time.Since(start); delay > 0 {
			timer.Reset(delay)
			select {
			case <-stop:
				if !timer.Stop() {
					<-timer.C
				}
				return
			case <-timer.C:
			}
		}
	}
}

// Stop requests the loop exit at the next iteration boundary and blocks
// until the in-flight tick has finished and Start has returned. Stopping an
// idle loop latches the request instead, so a Stop racing a concurrent Start
// is never lost: whichever of the two acquires the loop first, Start returns
// without ticking indefinitely.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.latched = true
		l.mu.Unlock()
		return
	}
	if !l.stopped {
		l.stopped = true
		close(l.stop)
	}
	done := l.done
	l.mu.Unlock()

	<-done
}
