// Package dispatch suppresses repeated detections of the same keyword.
package dispatch

import (
	"sync"
	"time"
)

const DefaultWindow = time.Second

type Decision int

const (
	Accept Decision = iota
	Suppress
)

func (d Decision) String() string {
	switch d {
	case Accept:
		return "accept"
	case Suppress:
		return "suppress"
	default:
		return "unknown"
	}
}

// Dispatcher remembers the last accepted keyword of one listening session.
// A session owns exactly one Dispatcher; calls are serialized by a mutex.
type Dispatcher struct {
	window time.Duration

	mu       sync.Mutex
	last     string
	lastSeen time.Time
	seen     bool
}

// New returns a Dispatcher with the given cooldown. A non-positive window
// falls back to DefaultWindow.
func New(window time.Duration) *Dispatcher {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Dispatcher{window: window}
}

func (d *Dispatcher) Window() time.Duration {
	return d.window
}

// Dispatch suppresses keyword when the same keyword was accepted less than
// the window before now. Accepted keywords become the new last-seen pair.
func (d *Dispatcher) Dispatch(keyword string, now time.Time) Decision {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.seen && d.last == keyword && now.Sub(d.lastSeen) < d.window {
		return Suppress
	}

	d.last = keyword
	d.lastSeen = now
	d.seen = true
	return Accept
}

// Reset forgets the last accepted keyword.
func (d *Dispatcher) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.last = ""
	d.lastSeen = time.Time{}
	d.seen = false
}
