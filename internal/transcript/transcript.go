// Package transcript turns recognizer output into transcript events.
package transcript

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
)

// Event is one update from the recognizer. Restart marks the start of a new
// recognition run and carries no text.
type Event struct {
	Text      string
	Final     bool
	Restart   bool
	Timestamp time.Time
}

// ParseLine decodes a single line. JSON objects may carry "text"
// (or "transcript"), "final" (or "isFinal"), "restart" and "timestamp"
// in RFC 3339; anything else is treated as a final transcript.
func ParseLine(line string, now time.Time) (Event, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Event{}, false
	}

	if !strings.HasPrefix(line, "{") || !gjson.Valid(line) {
		return Event{Text: line, Final: true, Timestamp: now}, true
	}

	fields := gjson.GetMany(line, "text", "transcript", "final", "isFinal", "restart", "timestamp")
	ev := Event{Timestamp: now}
	if fields[0].Exists() {
		ev.Text = fields[0].String()
	} else {
		ev.Text = fields[1].String()
	}
	if fields[2].Exists() {
		ev.Final = fields[2].Bool()
	} else {
		ev.Final = fields[3].Bool()
	}
	ev.Restart = fields[4].Bool()
	if fields[5].Exists() {
		if ts, err := time.Parse(time.RFC3339Nano, fields[5].String()); err == nil {
			ev.Timestamp = ts
		}
	}

	if !ev.Restart && strings.TrimSpace(ev.Text) == "" {
		return Event{}, false
	}
	return ev, true
}

// LineSource reads one event per line from a reader.
type LineSource struct {
	r   io.Reader
	now func() time.Time

	mu  sync.Mutex
	err error
}

func NewLineSource(r io.Reader) *LineSource {
	return &LineSource{r: r, now: time.Now}
}

// Events streams parsed lines until EOF, a read error, or ctx is done. The
// channel is closed afterwards; Err reports the read error, if any.
func (s *LineSource) Events(ctx context.Context) <-chan Event {
	out := make(chan Event, 32)
	go func() {
		defer close(out)

		scanner := bufio.NewScanner(s.r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			ev, ok := ParseLine(scanner.Text(), s.now())
			if !ok {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
		}
	}()
	return out
}

func (s *LineSource) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
