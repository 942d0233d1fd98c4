package usecase

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned by a view whose request was overtaken by a newer one for the same key.
var ErrSuperseded = errors.New("superseded by a newer request")

// Sequencer implements latest-wins per key: starting a request cancels the
// previous in-flight one for that key.
type Sequencer struct {
	mu      sync.Mutex
	seq     map[string]uint64
	cancels map[string]context.CancelFunc
}

func NewSequencer() *Sequencer {
	return &Sequencer{
		seq:     make(map[string]uint64),
		cancels: make(map[string]context.CancelFunc),
	}
}

// Ticket identifies one request in a key's sequence.
type Ticket struct {
	s   *Sequencer
	key string
	n   uint64
}

// Begin starts a request for key and returns its context and ticket. Callers must call Done.
func (s *Sequencer) Begin(ctx context.Context, key string) (context.Context, *Ticket) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if prev, ok := s.cancels[key]; ok {
		prev()
	}
	s.seq[key]++
	n := s.seq[key]
	s.cancels[key] = cancel
	s.mu.Unlock()

	return ctx, &Ticket{s: s, key: key, n: n}
}

// Current reports whether no newer request for the key has started.
func (t *Ticket) Current() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return t.s.seq[t.key] == t.n
}

// Done releases the ticket's context.
func (t *Ticket) Done() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.s.seq[t.key] == t.n {
		if cancel, ok := t.s.cancels[t.key]; ok {
			cancel()
			delete(t.s.cancels, t.key)
		}
	}
}
