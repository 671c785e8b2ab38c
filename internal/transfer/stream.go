package transfer

import (
	"context"

	"github.com/quantumauth-io/quantum-web3-demo/internal/metrics"
)

// Stream is the event sequence of a single submission. It is not restartable:
// a new submission always gets a new stream. The channel closes after a
// terminal event, after the confirmation depth is reached, or when the
// submission context is cancelled.
type Stream struct {
	ID     string
	events chan Event
}

func newStream(id string) *Stream {
	return &Stream{ID: id, events: make(chan Event, 8)}
}

func (s *Stream) Events() <-chan Event { return s.events }

// emit delivers ev unless the consumer has gone away.
func (s *Stream) emit(ctx context.Context, ev Event) bool {
	ev.SubmissionID = s.ID
	select {
	case s.events <- ev:
		metrics.TransferEvent(string(ev.Kind))
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Stream) close() { close(s.events) }

// Collect drains the stream. Mostly useful for callers that only want the
// final state.
func (s *Stream) Collect() []Event {
	var out []Event
	for ev := range s.events {
		out = append(out, ev)
	}
	return out
}
