package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"Midas/internal/domain/models"
	internalrepo "Midas/internal/repository"
	"Midas/internal/service/quotering"
	"Midas/pkg/config"
	"Midas/pkg/logger"
)

type stubNews struct {
	name  string
	items []models.Headline
	err   error
}

func (s *stubNews) Name() string { return s.name }
func (s *stubNews) FetchHeadlines(context.Context, string, int) ([]models.Headline, error) {
	return s.items, s.err
}

type stubQuote struct {
	name  string
	quote models.RawQuote
	err   error
	calls int
}

func (s *stubQuote) Name() string { return s.name }
func (s *stubQuote) FetchQuote(context.Context, string) (models.RawQuote, error) {
	s.calls++
	return s.quote, s.err
}

type stubCandles struct {
	items []models.Candle
	err   error
}

func (s *stubCandles) Name() string { return "tiingo" }
func (s *stubCandles) FetchCandles(context.Context, string, time.Duration, string) ([]models.Candle, error) {
	return s.items, s.err
}

type stubEarnings struct {
	iso string
	err error
}

func (s *stubEarnings) Name() string { return "finnhub" }
func (s *stubEarnings) FetchEarningsDate(context.Context, string) (string, error) {
	return s.iso, s.err
}

type stubSentiment struct {
	mean, std float64
	err       error
	gotTexts  []string
}

func (s *stubSentiment) Score(_ context.Context, texts []string) (float64, float64, error) {
	s.gotTexts = texts
	return s.mean, s.std, s.err
}

type nopMetrics struct{}

func (nopMetrics) RecordProviderCall(string, string, string) {}
func (nopMetrics) RecordCacheLookup(bool)                    {}
func (nopMetrics) RecordUpstreamRetry(string)                {}
func (nopMetrics) RecordLastPrice(string, float64)           {}
func (nopMetrics) RecordLatency(string, float64)             {}
func (nopMetrics) RecordError(string)                        {}

type aggFixture struct {
	cfg       *config.Config
	primary   *stubNews
	secondary *stubNews
	quotes    *stubQuote
	fallback  *stubQuote
	candles   *stubCandles
	earnings  *stubEarnings
	sentiment *stubSentiment
	cache     *internalrepo.LocalFeatureCache
	ring      *quotering.Store
}

func newAggFixture(live bool) *aggFixture {
	cfg := &config.Config{}
	cfg.Providers.Live = live
	return &aggFixture{
		cfg:       cfg,
		primary:   &stubNews{name: "finnhub"},
		secondary: &stubNews{name: "yahoo"},
		quotes:    &stubQuote{name: "tiingo"},
		fallback:  &stubQuote{name: "finnhub"},
		candles:   &stubCandles{},
		earnings:  &stubEarnings{},
		sentiment: &stubSentiment{},
		cache:     internalrepo.NewLocalFeatureCache(),
		ring:      quotering.NewStore(),
	}
}

func (f *aggFixture) build(t *testing.T) *FeatureAggregator {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "info", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewFeatureAggregator(f.cfg, f.primary, f.secondary, f.quotes, f.fallback,
		f.candles, f.earnings, f.sentiment, f.cache, f.ring, nil, nopMetrics{}, log)
}

func risingCandles(n int, start float64, volume int64) []models.Candle {
	out := make([]models.Candle, n)
	for i := 0; i < n; i++ {
		c := start + float64(i)
		out[i] = models.Candle{Open: c - 0.5, High: c + 1, Low: c - 1, Close: c, Volume: volume}
	}
	return out
}

func TestBuildFeaturesNonLive(t *testing.T) {
	f := newAggFixture(false)
	agg := f.build(t)

	p := agg.BuildFeatures(context.Background(), "AAPL")

	if p.Quote.Quality != models.QualityUnknown {
		t.Fatalf("synthetic payload quality must be unknown, got %s", p.Quote.Quality)
	}
	if p.Quote.Last != 0.0 || p.Quote.Bid != nil || p.Quote.Ask != nil {
		t.Fatalf("synthetic quote must be zeroed, got %+v", p.Quote)
	}
	if len(p.Refs) != models.RefSlots {
		t.Fatalf("refs must have exactly %d slots, got %d", models.RefSlots, len(p.Refs))
	}
	if p.Features.MinsSinceNews != 12 {
		t.Fatalf("unexpected mins_since_news %d", p.Features.MinsSinceNews)
	}
	if p.Features.RV20 < 0.02 || p.Features.RV20 > 0.80 {
		t.Fatalf("rv20 out of range: %v", p.Features.RV20)
	}
	if !p.Features.LiquidityFlag {
		t.Fatalf("synthetic liquidity flag must be true")
	}
	if f.quotes.calls != 0 {
		t.Fatalf("non-live mode must not call providers")
	}
	if _, ok := f.cache.Get(context.Background(), "AAPL"); !ok {
		t.Fatalf("payload must still be cache-written")
	}
}

func TestBuildFeaturesLiveHappyPath(t *testing.T) {
	f := newAggFixture(true)
	recent := time.Now().UTC().Add(-30 * time.Minute).Format(time.RFC3339)
	f.primary.items = []models.Headline{
		{Title: "Chip demand climbs", Publisher: "Reuters", URL: "https://r/1", TS: recent},
		{Title: "Guidance raised", Publisher: "Reuters", URL: "https://r/2", TS: recent},
	}
	f.secondary.items = []models.Headline{
		{Title: "Chip demand climbs", Publisher: "Yahoo Finance", URL: "https://r/1", TS: recent},
		{Title: "Analysts weigh in", Publisher: "Yahoo Finance", URL: "https://y/1", TS: recent},
	}
	f.quotes.quote = models.RawQuote{Last: 100, Bid: 99.9, Ask: 100.1}
	f.candles.items = risingCandles(30, 80, 2000)
	f.earnings.iso = time.Now().UTC().AddDate(0, 0, 5).Format("2006-01-02")
	f.sentiment.mean, f.sentiment.std = 0.4, 0.1

	agg := f.build(t)
	p := agg.BuildFeatures(context.Background(), "NVDA")

	if p.Quote.Quality != models.QualityReal {
		t.Fatalf("observed spread must be real, got %s", p.Quote.Quality)
	}
	if p.TopHeadline == nil || p.TopHeadline.URL != "https://r/1" {
		t.Fatalf("top headline should come from the primary source, got %+v", p.TopHeadline)
	}
	if len(p.Refs) != models.RefSlots {
		t.Fatalf("refs must have %d slots", models.RefSlots)
	}
	// Duplicate URL collapses: r/1, r/2, y/1.
	if p.Refs[0].URL != "https://r/1" || p.Refs[1].URL != "https://r/2" || p.Refs[2].URL != "https://y/1" {
		t.Fatalf("unexpected merged refs %+v", p.Refs)
	}
	if len(p.RefsSources) != 3 || p.RefsSources[2] != "Yahoo Finance" {
		t.Fatalf("unexpected refs sources %v", p.RefsSources)
	}
	if p.Features.SentMean != 0.4 || p.Features.SentStd != 0.1 {
		t.Fatalf("unexpected sentiment %v/%v", p.Features.SentMean, p.Features.SentStd)
	}
	if len(f.sentiment.gotTexts) != 2 {
		t.Fatalf("sentiment should score the primary titles, got %v", f.sentiment.gotTexts)
	}
	if !p.Features.EarningsSoon {
		t.Fatalf("earnings five days out must flag soon")
	}
	if !p.Features.LiquidityFlag {
		t.Fatalf("high volume must flag liquid")
	}
	if p.Features.R1m <= 0 {
		t.Fatalf("rising closes must give a positive 1-minute return, got %v", p.Features.R1m)
	}
	if p.Features.MinsSinceNews != 30 {
		t.Fatalf("unexpected mins_since_news %d", p.Features.MinsSinceNews)
	}
	if p.Features.RV20 < 0.02 || p.Features.RV20 > 0.80 {
		t.Fatalf("rv20 out of range: %v", p.Features.RV20)
	}
	if p.Error != "" {
		t.Fatalf("happy path must carry no diagnostic, got %q", p.Error)
	}
}

func TestBuildFeaturesCacheShortCircuit(t *testing.T) {
	f := newAggFixture(true)
	f.quotes.quote = models.RawQuote{Last: 50}
	f.candles.items = risingCandles(10, 40, 10)

	agg := f.build(t)
	first := agg.BuildFeatures(context.Background(), "MSFT")

	// A second call must come from the cache without touching providers.
	quoteCalls := f.quotes.calls
	second := agg.BuildFeatures(context.Background(), "MSFT")
	if f.quotes.calls != quoteCalls {
		t.Fatalf("cached lookup must not call providers")
	}
	if second.TS != first.TS {
		t.Fatalf("cached payload must be returned verbatim")
	}
}

func TestBuildFeaturesSynthesizedSpread(t *testing.T) {
	f := newAggFixture(true)
	f.quotes.quote = models.RawQuote{Last: 200}
	f.candles.items = risingCandles(5, 195, 10)

	agg := f.build(t)
	p := agg.BuildFeatures(context.Background(), "AMD")

	if p.Quote.Quality != models.QualityEstimated {
		t.Fatalf("synthesized spread must downgrade quality, got %s", p.Quote.Quality)
	}
	if p.Quote.Bid == nil || p.Quote.Ask == nil {
		t.Fatalf("synthesized bid/ask missing")
	}
	half := 8.0 / 1e4 * 200 * 0.5
	if math.Abs(*p.Quote.Bid-(200-half)) > 1e-9 || math.Abs(*p.Quote.Ask-(200+half)) > 1e-9 {
		t.Fatalf("unexpected synthetic spread %v/%v", *p.Quote.Bid, *p.Quote.Ask)
	}
	if *p.Quote.Ask <= *p.Quote.Bid {
		t.Fatalf("ask must stay above bid")
	}
}

func TestBuildFeaturesCandleCloseFallback(t *testing.T) {
	f := newAggFixture(true)
	f.quotes.quote = models.RawQuote{} // no last price
	f.candles.items = risingCandles(8, 120, 10)

	agg := f.build(t)
	p := agg.BuildFeatures(context.Background(), "TSLA")

	if p.Quote.Last != 127 {
		t.Fatalf("expected candle close fallback 127, got %v", p.Quote.Last)
	}
	if f.fallback.calls != 0 {
		t.Fatalf("secondary quote source must not be hit when candles answer")
	}
}

func TestBuildFeaturesSentinelPrice(t *testing.T) {
	f := newAggFixture(true)
	f.quotes.quote = models.RawQuote{}
	f.candles.items = nil // fetch succeeds, no bars
	f.fallback.quote = models.RawQuote{}

	agg := f.build(t)
	p := agg.BuildFeatures(context.Background(), "XYZ")

	if p.Quote.Last != 1.0 {
		t.Fatalf("expected sentinel price 1.0, got %v", p.Quote.Last)
	}
	if p.Quote.Quality != models.QualityEstimated {
		t.Fatalf("sentinel quote still synthesizes a spread, got %s", p.Quote.Quality)
	}
	if p.Features.RV20 != 0.02 {
		t.Fatalf("flat fallback series must clamp rv20 to the floor, got %v", p.Features.RV20)
	}
	if p.Features.AboveSMA20 {
		t.Fatalf("no candles means no moving-average signal")
	}
}

func TestBuildFeaturesTotalFailure(t *testing.T) {
	f := newAggFixture(true)
	f.quotes.err = errors.New("tiingo 503")
	f.candles.err = errors.New("tiingo 503")
	f.fallback.err = errors.New("finnhub 429")
	f.primary.items = []models.Headline{{Title: "Still news", Publisher: "Reuters", URL: "https://r/9"}}

	agg := f.build(t)
	p := agg.BuildFeatures(context.Background(), "FAIL")

	if p.Error == "" {
		t.Fatalf("degraded payload must carry a diagnostic")
	}
	if p.Quote.Quality != models.QualityUnknown || p.Quote.Last != 0.0 {
		t.Fatalf("degraded quote must be zeroed, got %+v", p.Quote)
	}
	if len(p.Refs) != models.RefSlots {
		t.Fatalf("degraded payload still pads refs to %d", models.RefSlots)
	}
	if p.TopHeadline == nil || p.TopHeadline.URL != "https://r/9" {
		t.Fatalf("surviving news must be kept, got %+v", p.TopHeadline)
	}
	if p.Features.RV20 < 0.02 || p.Features.RV20 > 0.80 {
		t.Fatalf("rv20 out of range: %v", p.Features.RV20)
	}
	if _, ok := f.cache.Get(context.Background(), "FAIL"); !ok {
		t.Fatalf("degraded payload must still be cache-written")
	}
}

func TestBuildFeaturesSentimentFallback(t *testing.T) {
	f := newAggFixture(true)
	f.primary.items = []models.Headline{{Title: "T", Publisher: "P", URL: "https://p/1"}}
	f.sentiment.err = errors.New("scorer down")
	f.quotes.quote = models.RawQuote{Last: 10}
	f.candles.items = risingCandles(3, 9, 10)

	agg := f.build(t)
	p := agg.BuildFeatures(context.Background(), "SENT")

	if p.Features.SentMean != 0.0 || p.Features.SentStd != 0.05 {
		t.Fatalf("scorer failure must fall back to neutral, got %v/%v",
			p.Features.SentMean, p.Features.SentStd)
	}
}

func TestBuildFeaturesNewsClamp(t *testing.T) {
	f := newAggFixture(true)
	stale := time.Now().UTC().Add(-10 * time.Hour).Format(time.RFC3339)
	f.primary.items = []models.Headline{{Title: "Old", Publisher: "P", URL: "https://p/1", TS: stale}}
	f.quotes.quote = models.RawQuote{Last: 10}
	f.candles.items = risingCandles(3, 9, 10)

	agg := f.build(t)
	p := agg.BuildFeatures(context.Background(), "OLD")

	if p.Features.MinsSinceNews != 240 {
		t.Fatalf("stale news must clamp to 240, got %d", p.Features.MinsSinceNews)
	}
}

func TestBuildFeaturesNewsDiagnosticsNonFatal(t *testing.T) {
	f := newAggFixture(true)
	f.primary.err = errors.New("rate limited")
	f.secondary.err = errors.New("parse error")
	f.quotes.quote = models.RawQuote{Last: 42, Bid: 41.9, Ask: 42.1}
	f.candles.items = risingCandles(25, 30, 10)

	agg := f.build(t)
	p := agg.BuildFeatures(context.Background(), "NEWSLESS")

	if p.Error == "" {
		t.Fatalf("news failures must surface as a diagnostic")
	}
	if p.Quote.Quality != models.QualityReal {
		t.Fatalf("news failure must not degrade the quote, got %s", p.Quote.Quality)
	}
	if p.Features.MinsSinceNews != 240 {
		t.Fatalf("no news clamps the sentinel to 240, got %d", p.Features.MinsSinceNews)
	}
	if p.TopHeadline != nil {
		t.Fatalf("no headline expected, got %+v", p.TopHeadline)
	}
}
