package quotering

import (
	"testing"
	"time"
)

func TestTrailingReturnEmptyRing(t *testing.T) {
	s := NewStore()
	if got := s.TrailingReturn("AAPL", 5); got != 0.0 {
		t.Fatalf("empty ring must return 0.0, got %v", got)
	}
}

func TestAppendEvictsOldSamples(t *testing.T) {
	s := NewStore()
	now := time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	// Samples spanning 15 minutes, one every 30 seconds.
	for i := 0; i < 31; i++ {
		s.Append("AAPL", 100+float64(i))
		now = now.Add(30 * time.Second)
	}

	// Everything older than 10 minutes from the latest append is gone.
	if got := s.Len("AAPL"); got != 21 {
		t.Fatalf("expected 21 retained samples, got %d", got)
	}
}

func TestAppendEnforcesCapacity(t *testing.T) {
	s := NewStore()
	now := time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	for i := 0; i < 700; i++ {
		s.Append("NVDA", float64(i))
		now = now.Add(100 * time.Millisecond)
	}
	if got := s.Len("NVDA"); got > 600 {
		t.Fatalf("capacity exceeded: %d", got)
	}
}

func TestTrailingReturnBaseline(t *testing.T) {
	s := NewStore()
	base := time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)
	now := base
	s.now = func() time.Time { return now }

	s.Append("MSFT", 100) // t+0
	now = base.Add(3 * time.Minute)
	s.Append("MSFT", 105) // t+3m
	now = base.Add(6 * time.Minute)
	s.Append("MSFT", 110) // t+6m

	// Baseline for a 5-minute return is the first sample at or before t+1m,
	// which is the t+0 sample.
	if got := s.TrailingReturn("MSFT", 5); got != (110.0-100.0)/100.0 {
		t.Fatalf("unexpected 5-minute return %v", got)
	}

	// For a 1-minute return the t+3m sample already sits past the cutoff.
	if got := s.TrailingReturn("MSFT", 1); got != (110.0-105.0)/105.0 {
		t.Fatalf("unexpected 1-minute return %v", got)
	}
}

func TestTrailingReturnZeroBase(t *testing.T) {
	s := NewStore()
	now := time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.Append("X", 0)
	now = now.Add(2 * time.Minute)
	s.Append("X", 10)
	if got := s.TrailingReturn("X", 5); got != 0.0 {
		t.Fatalf("zero baseline must return 0.0, got %v", got)
	}
}

func TestRingsAreIndependent(t *testing.T) {
	s := NewStore()
	now := time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.Append("A", 1)
	s.Append("B", 2)
	if s.Len("A") != 1 || s.Len("B") != 1 {
		t.Fatalf("per-ticker rings must not share samples")
	}
}
