package events

import (
	"sync"

	"github.com/jonboulle/clockwork"
)

// Sequencer hands out record path suffixes. Suffixes are Unix milliseconds taken at
// send time, bumped when needed so they strictly increase within one publisher:
// two publishes in the same millisecond never share a path.
type Sequencer struct {
	clock clockwork.Clock

	mu   sync.Mutex
	last int64
}

func NewSequencer(clock clockwork.Clock) *Sequencer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Sequencer{clock: clock}
}

// Next returns the next suffix.
func (s *Sequencer) Next() int64 {
	now := s.clock.Now().UnixMilli()

	s.mu.Lock()
	defer s.mu.Unlock()
	if now <= s.last {
		now = s.last + 1
	}
	s.last = now
	return now
}
