package quotering

import (
	"sync"
	"time"

	"Midas/internal/domain/models"
)

const (
	// maxSamples caps each ring regardless of sample age.
	maxSamples = 600
	// window is the retention horizon; older samples are trimmed on append.
	window = 10 * time.Minute
)

// Store holds one bounded quote ring per ticker. Rings live for the process
// lifetime and shrink only through the capacity and time bounds above.
// Construct one per process and inject it; tests get isolation from fresh
// instances.
type Store struct {
	mu    sync.RWMutex
	rings map[string][]models.QuoteSample
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{rings: make(map[string][]models.QuoteSample), now: time.Now}
}

// Append records (now, price) for ticker, then evicts samples older than the
// retention window and enforces the capacity bound, oldest first. Samples are
// time-ordered by construction, so eviction is a prefix trim.
func (s *Store) Append(ticker string, price float64) {
	now := s.now()
	cut := now.Add(-window)

	s.mu.Lock()
	defer s.mu.Unlock()

	ring := append(s.rings[ticker], models.QuoteSample{TS: now, Price: price})

	start := 0
	for start < len(ring) && ring[start].TS.Before(cut) {
		start++
	}
	if over := len(ring) - start - maxSamples; over > 0 {
		start += over
	}
	if start > 0 {
		ring = append(ring[:0:0], ring[start:]...)
	}
	s.rings[ticker] = ring
}

// TrailingReturn computes the fractional return between the latest sample and
// a baseline roughly `minutes` old: scanning backward, the baseline is the
// first sample at or before now-minutes, or the oldest sample when none
// qualifies. Returns 0 when the ring is empty or the baseline price is zero.
func (s *Store) TrailingReturn(ticker string, minutes int) float64 {
	cutoff := s.now().Add(-time.Duration(minutes) * time.Minute)

	s.mu.RLock()
	defer s.mu.RUnlock()

	ring := s.rings[ticker]
	if len(ring) == 0 {
		return 0
	}
	base := 0.0
	for i := len(ring) - 1; i >= 0; i-- {
		base = ring[i].Price
		if !ring[i].TS.After(cutoff) {
			break
		}
	}
	if base == 0 {
		return 0
	}
	return (ring[len(ring)-1].Price - base) / base
}

// Len returns the current number of samples for ticker.
func (s *Store) Len(ticker string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rings[ticker])
}
