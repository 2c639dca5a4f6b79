// Package mem holds small process-local stores that do not need the database.
package mem

import (
	"sync"
	"time"
)

// DeliveryLog remembers webhook event ids for a while so redelivered events are acknowledged
// without being processed twice.
type DeliveryLog interface {
	// Seen reports whether id was marked and has not expired.
	Seen(id string) bool
	Mark(id string, ttl time.Duration)
}

type entry struct {
	expiresAt time.Time
}

type Deliveries struct {
	mu   sync.Mutex
	data map[string]entry
	now  func() time.Time
}

func NewDeliveries() *Deliveries {
	return &Deliveries{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

func (s *Deliveries) Seen(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[id]
	if !ok {
		return false
	}
	if s.now().After(e.expiresAt) {
		delete(s.data, id)
		return false
	}
	return true
}

func (s *Deliveries) Mark(id string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	// Expired ids are dropped on write so the map stays bounded by the ttl window.
	for k, e := range s.data {
		if now.After(e.expiresAt) {
			delete(s.data, k)
		}
	}
	s.data[id] = entry{expiresAt: now.Add(ttl)}
}
