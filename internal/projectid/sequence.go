package projectid

import (
	"sync/atomic"
)

// Sequencer hands out the ordinal a record keeps for its whole life.
// Stores without a native counter use it; values start at 1.
type Sequencer struct {
	current int64
}

// NewSequencer creates a sequencer whose first Next returns start+1
func NewSequencer(start int64) *Sequencer {
	return &Sequencer{current: start}
}

// Next returns a new, unique ordinal atomically
func (s *Sequencer) Next() int64 {
	return atomic.AddInt64(&s.current, 1)
}

// Current returns the last issued ordinal without incrementing
func (s *Sequencer) Current() int64 {
	return atomic.LoadInt64(&s.current)
}
