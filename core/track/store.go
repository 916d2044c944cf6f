// Package track holds the observation sequence the service predicts from.
// The sequence only grows by appending; readers get copies.
package track

import (
	"errors"
	"sync"

	"github.com/kilianp07/trailcast/core/model"
	"github.com/kilianp07/trailcast/internal/eventbus"
)

// ErrClosed is returned when appending to a closed store.
var ErrClosed = errors.New("track store closed")

// Event is published to subscribers after every successful append.
type Event struct {
	Added []model.Observation
	Len   int
}

// Store is an append-only, concurrency-safe observation sequence with
// fan-out notification of appends.
type Store struct {
	mu      sync.RWMutex
	obs     []model.Observation
	maxLen  int
	bus     *eventbus.TypedBus[Event]
	closed  bool
	version uint64
}

// New creates an empty store. maxLen > 0 keeps only the most recent maxLen
// observations; older ones drop off the front.
func New(maxLen int) *Store {
	return &Store{maxLen: maxLen, bus: eventbus.NewTyped[Event]()}
}

// Append adds observations in the given order and notifies subscribers.
// Delivery is non-blocking: a subscriber that is not keeping up misses events.
func (s *Store) Append(obs ...model.Observation) error {
	if len(obs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.obs = append(s.obs, obs...)
	s.version++
	if s.maxLen > 0 && len(s.obs) > s.maxLen {
		drop := len(s.obs) - s.maxLen
		s.obs = append(s.obs[:0:0], s.obs[drop:]...)
	}
	// Published under the lock so subscribers see appends in order.
	s.bus.Publish(Event{Added: append([]model.Observation(nil), obs...), Len: len(s.obs)})
	return nil
}

// Snapshot returns a copy of the current sequence, oldest first.
func (s *Store) Snapshot() []model.Observation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Observation, len(s.obs))
	copy(out, s.obs)
	return out
}

// Len returns the number of stored observations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.obs)
}

// Version counts successful appends. It changes whenever the sequence does,
// including when trimming keeps Len constant.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Subscribe returns a channel of append events. Subscribing to a closed
// store returns a closed channel.
func (s *Store) Subscribe() <-chan Event { return s.bus.Subscribe() }

// Unsubscribe removes the subscriber and closes its channel.
func (s *Store) Unsubscribe(sub <-chan Event) { s.bus.Unsubscribe(sub) }

// Close rejects further appends and closes every subscriber channel.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.bus.Close()
}
