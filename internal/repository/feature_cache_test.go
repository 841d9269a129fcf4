package repository

import (
	"context"
	"testing"

	"Midas/internal/domain/models"
	pkgcache "Midas/pkg/cache"
)

func samplePayload(ticker string) *models.FeaturePayload {
	return &models.FeaturePayload{
		Ticker: ticker,
		Features: models.FeatureSet{
			SentMean: 0.3, SentStd: 0.1, RV20: 0.12, MinsSinceNews: 15,
		},
		Refs:        models.PadRefs(nil),
		RefsSources: []string{},
		Quote:       models.Quote{Last: 101.5, Quality: models.QualityEstimated},
		TS:          "2025-03-03T12:00:00Z",
	}
}

func TestLocalFeatureCache(t *testing.T) {
	c := NewLocalFeatureCache()
	ctx := context.Background()

	if _, ok := c.Get(ctx, "AAPL"); ok {
		t.Fatalf("empty cache must miss")
	}

	p := samplePayload("AAPL")
	c.Put(ctx, "AAPL", p)

	got, ok := c.Get(ctx, "AAPL")
	if !ok || got.TS != p.TS {
		t.Fatalf("expected stored payload back, got %+v ok=%v", got, ok)
	}

	// Entries never expire; they are only replaced.
	p2 := samplePayload("AAPL")
	p2.TS = "2025-03-03T13:00:00Z"
	c.Put(ctx, "AAPL", p2)
	got, _ = c.Get(ctx, "AAPL")
	if got.TS != p2.TS {
		t.Fatalf("newer payload must win, got %s", got.TS)
	}
}

func TestSharedFeatureCacheRoundTrip(t *testing.T) {
	c := NewSharedFeatureCache(pkgcache.NewMemoryCache())
	ctx := context.Background()

	if _, ok := c.Get(ctx, "NVDA"); ok {
		t.Fatalf("empty cache must miss")
	}

	p := samplePayload("NVDA")
	c.Put(ctx, "NVDA", p)

	got, ok := c.Get(ctx, "NVDA")
	if !ok {
		t.Fatalf("expected hit after put")
	}
	if got.Ticker != "NVDA" || got.Quote.Last != 101.5 || got.Features.RV20 != 0.12 {
		t.Fatalf("payload did not survive the round trip: %+v", got)
	}
	if len(got.Refs) != models.RefSlots {
		t.Fatalf("ref padding lost in the round trip: %d", len(got.Refs))
	}
}
