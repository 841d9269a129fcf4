package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"Midas/internal/domain/models"
	domrepo "Midas/internal/domain/repository"
	domsvc "Midas/internal/domain/service"
	"Midas/internal/service/quotering"
	"Midas/internal/services/features"
	"Midas/pkg/config"
	"Midas/pkg/logger"
	"Midas/pkg/util"
)

const (
	headlineLimit   = 5
	candleLookback  = 120 * time.Minute
	candleFreq      = "1min"
	sentinelPrice   = 1.0
	syntheticSpread = 8.0 // basis points around last
	rvFloor         = 0.02
	rvCeil          = 0.80
	newsSentinel    = 9999 // minutes, clamped to newsCap below
	newsCap         = 240
	earningsWindow  = 14 // days
)

var errNoPrice = errors.New("no usable last price")

// FeatureAggregator runs the per-ticker pipeline: fallback chains for news,
// quotes and candles, derived indicators, the quote ring, the payload cache
// and the optional downstream event feed. It never returns an error; failed
// stages degrade into a payload that carries a diagnostic note instead.
type FeatureAggregator struct {
	cfg           *config.Config
	primaryNews   domrepo.HeadlineSource
	secondaryNews domrepo.HeadlineSource
	quotes        domrepo.QuoteSource
	quoteFallback domrepo.QuoteSource
	candles       domrepo.CandleSource
	earnings      domrepo.EarningsSource
	sentiment     domsvc.SentimentScorer
	cache         domrepo.FeatureCache
	ring          *quotering.Store
	events        domrepo.EventPublisher
	metrics       domrepo.Metrics
	log           *logger.Logger
	now           func() time.Time
}

func NewFeatureAggregator(
	cfg *config.Config,
	primaryNews domrepo.HeadlineSource,
	secondaryNews domrepo.HeadlineSource,
	quotes domrepo.QuoteSource,
	quoteFallback domrepo.QuoteSource,
	candles domrepo.CandleSource,
	earnings domrepo.EarningsSource,
	sentiment domsvc.SentimentScorer,
	cache domrepo.FeatureCache,
	ring *quotering.Store,
	events domrepo.EventPublisher,
	metrics domrepo.Metrics,
	log *logger.Logger,
) *FeatureAggregator {
	return &FeatureAggregator{
		cfg:           cfg,
		primaryNews:   primaryNews,
		secondaryNews: secondaryNews,
		quotes:        quotes,
		quoteFallback: quoteFallback,
		candles:       candles,
		earnings:      earnings,
		sentiment:     sentiment,
		cache:         cache,
		ring:          ring,
		events:        events,
		metrics:       metrics,
		log:           log,
		now:           time.Now,
	}
}

// BuildStub returns the deterministic demo feature set without touching any
// provider, cache or ring state.
func (a *FeatureAggregator) BuildStub() models.FeatureSet {
	return syntheticFeatures()
}

// BuildFeatures assembles the feature payload for ticker. In live mode a
// cached payload short-circuits the whole pipeline; otherwise the fallback
// chains run and the result, degraded or not, is cached and published.
func (a *FeatureAggregator) BuildFeatures(ctx context.Context, ticker string) *models.FeaturePayload {
	start := a.now()
	defer func() {
		a.metrics.RecordLatency("build_features", a.now().Sub(start).Seconds())
	}()

	if !a.cfg.Providers.Live {
		p := a.syntheticPayload(ticker, nil, "")
		a.cache.Put(ctx, ticker, p)
		return p
	}

	if cached, ok := a.cache.Get(ctx, ticker); ok {
		a.metrics.RecordCacheLookup(true)
		return cached
	}
	a.metrics.RecordCacheLookup(false)

	p := a.buildLive(ctx, ticker)
	a.cache.Put(ctx, ticker, p)
	a.publish(ctx, p)
	return p
}

func (a *FeatureAggregator) buildLive(ctx context.Context, ticker string) *models.FeaturePayload {
	var (
		wg         sync.WaitGroup
		primary    []models.Headline
		secondary  []models.Headline
		primaryErr error
		secondErr  error
		rawQuote   models.RawQuote
		quoteErr   error
		candles    []models.Candle
		candleErr  error
	)

	// The four fetches share no state until the merge step, so they run
	// concurrently under the same per-call timeout.
	wg.Add(4)
	go func() {
		defer wg.Done()
		primary, primaryErr = a.primaryNews.FetchHeadlines(ctx, ticker, headlineLimit)
		a.recordCall(a.primaryNews.Name(), "headlines", primaryErr)
	}()
	go func() {
		defer wg.Done()
		secondary, secondErr = a.secondaryNews.FetchHeadlines(ctx, ticker, headlineLimit)
		a.recordCall(a.secondaryNews.Name(), "headlines", secondErr)
	}()
	go func() {
		defer wg.Done()
		rawQuote, quoteErr = a.quotes.FetchQuote(ctx, ticker)
		a.recordCall(a.quotes.Name(), "quote", quoteErr)
	}()
	go func() {
		defer wg.Done()
		candles, candleErr = a.candles.FetchCandles(ctx, ticker, candleLookback, candleFreq)
		a.recordCall(a.candles.Name(), "candles", candleErr)
	}()
	wg.Wait()

	diag := ""
	if primaryErr != nil {
		diag = fmt.Sprintf("news: %v", primaryErr)
	}
	if secondErr != nil {
		diag = joinDiags(diag, fmt.Sprintf("yahoo: %v", secondErr))
	}

	var topHeadline *models.Headline
	if len(primary) > 0 {
		topHeadline = &primary[0]
	} else if len(secondary) > 0 {
		topHeadline = &secondary[0]
	}

	refs, refsSources := mergeRefs(primary, secondary)

	sentMean, sentStd := a.scoreSentiment(ctx, primary, secondary)

	// Last price fallback chain: provider quote, then the freshest candle
	// close, then the secondary quote provider. The chains for candles and
	// quotes are only considered exhausted when every attempt errored.
	lastPx, quoteDiag, ok := runFirst(ctx, []attempt[float64]{
		{label: a.quotes.Name(), fn: func(context.Context) (float64, error) {
			if quoteErr != nil {
				return 0, quoteErr
			}
			if rawQuote.Last <= 0 {
				return 0, errNoPrice
			}
			return rawQuote.Last, nil
		}},
		{label: "candles", fn: func(context.Context) (float64, error) {
			if candleErr != nil {
				return 0, candleErr
			}
			if len(candles) == 0 || candles[len(candles)-1].Close <= 0 {
				return 0, errNoPrice
			}
			return candles[len(candles)-1].Close, nil
		}},
		{label: a.quoteFallback.Name(), fn: func(ctx context.Context) (float64, error) {
			q, err := a.quoteFallback.FetchQuote(ctx, ticker)
			a.recordCall(a.quoteFallback.Name(), "quote", err)
			if err != nil {
				return 0, err
			}
			if q.Last <= 0 {
				return 0, errNoPrice
			}
			return q.Last, nil
		}},
	})
	if !ok {
		if quoteErr != nil && candleErr != nil {
			// No market data at all. Degrade to the synthetic payload
			// but keep whatever news survived.
			a.metrics.RecordError("aggregation_failure")
			return a.syntheticPayload(ticker, topHeadline, joinDiags(diag, quoteDiag))
		}
		diag = joinDiags(diag, quoteDiag)
		lastPx = sentinelPrice
	}

	a.ring.Append(ticker, lastPx)
	a.metrics.RecordLastPrice(ticker, lastPx)

	var bid, ask *float64
	if quoteErr == nil {
		if rawQuote.Bid > 0 {
			bid = float64Ptr(rawQuote.Bid)
		}
		if rawQuote.Ask > 0 {
			ask = float64Ptr(rawQuote.Ask)
		}
	}
	quality := models.QualityReal
	if bid == nil || ask == nil || *ask <= *bid {
		half := syntheticSpread / 1e4 * lastPx * 0.5
		bid = float64Ptr(lastPx - half)
		ask = float64Ptr(lastPx + half)
		quality = models.QualityEstimated
	}

	minsSinceNews := minutesSinceLatest(a.now(), primary, secondary)

	r1m, r5m, rv20, above := a.deriveReturns(ticker, lastPx, candles)

	earningsSoon := a.earningsSoon(ctx, ticker)

	spreadBps := math.Abs(*ask-*bid) / lastPx * 1e4
	var vol1m, vol5m int64
	if len(candles) > 0 {
		vol1m = candles[len(candles)-1].Volume
		for _, c := range candles[max(0, len(candles)-5):] {
			vol5m += c.Volume
		}
	}
	liquidity := spreadBps <= 30.0 || vol1m >= 1000 || vol5m >= 5000

	return &models.FeaturePayload{
		Ticker: ticker,
		Features: models.FeatureSet{
			SentMean:      sentMean,
			SentStd:       sentStd,
			R1m:           r1m,
			R5m:           r5m,
			AboveSMA20:    above,
			MinsSinceNews: minsSinceNews,
			RV20:          rv20,
			EarningsSoon:  earningsSoon,
			LiquidityFlag: liquidity,
		},
		TopHeadline: topHeadline,
		Refs:        refs,
		RefsSources: refsSources,
		Error:       diag,
		Quote:       models.Quote{Last: lastPx, Bid: bid, Ask: ask, Quality: quality},
		TS:          isoNow(a.now()),
	}
}

// deriveReturns computes the return and volatility block. Candle-derived
// values win when at least two bars exist; otherwise the quote ring supplies
// trailing returns and volatility collapses to the clamp floor.
func (a *FeatureAggregator) deriveReturns(ticker string, lastPx float64, candles []models.Candle) (r1m, r5m, rv20 float64, above bool) {
	if len(candles) >= 2 {
		closes := make([]float64, len(candles))
		highs := make([]float64, len(candles))
		lows := make([]float64, len(candles))
		for i, c := range candles {
			closes[i] = c.Close
			highs[i] = c.High
			lows[i] = c.Low
		}

		r1m = features.PercentReturn(closes, 1)
		if len(closes) >= 6 {
			r5m = features.PercentReturn(closes, 5)
		} else {
			r5m = a.ring.TrailingReturn(ticker, 5)
		}

		// The ATR window needs 21 aligned points. Short series repeat
		// their final value so the 20-bar window stays computable.
		pad := closes[len(closes)-1]
		series := features.PadTrailing(closes, 21, pad)
		hseg := features.PadTrailing(highs, len(series), pad)
		lseg := features.PadTrailing(lows, len(series), pad)
		rv20 = features.NormalizedATR(hseg, lseg, series, 20)
		above = features.AboveSMA20(series)
	} else {
		r1m = a.ring.TrailingReturn(ticker, 1)
		r5m = a.ring.TrailingReturn(ticker, 5)
		flat := features.PadTrailing(nil, 21, lastPx)
		rv20 = features.NormalizedATR(flat, flat, flat, 20)
		above = false
	}
	rv20 = features.Clamp(rv20, rvFloor, rvCeil)
	return r1m, r5m, rv20, above
}

// scoreSentiment delegates to the scoring collaborator using the first three
// primary titles, or the first three secondary titles when the primary source
// came back empty. Any failure falls back to a neutral score.
func (a *FeatureAggregator) scoreSentiment(ctx context.Context, primary, secondary []models.Headline) (float64, float64) {
	titles := headlineTitles(primary, 3)
	if len(titles) == 0 {
		titles = headlineTitles(secondary, 3)
	}
	if len(titles) == 0 {
		return 0.0, 0.05
	}
	mean, std, err := a.sentiment.Score(ctx, titles)
	if err != nil {
		a.recordCall("sentiment", "score", err)
		return 0.0, 0.05
	}
	a.recordCall("sentiment", "score", nil)
	return mean, std
}

func (a *FeatureAggregator) earningsSoon(ctx context.Context, ticker string) bool {
	iso, err := a.earnings.FetchEarningsDate(ctx, ticker)
	a.recordCall(a.earnings.Name(), "earnings", err)
	if err != nil || iso == "" {
		return false
	}
	ed, perr := time.Parse("2006-01-02", iso)
	if perr != nil {
		if t, ok := util.ParseTime(iso); ok {
			ed = t
		} else {
			return false
		}
	}
	now := a.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := int(ed.UTC().Truncate(24 * time.Hour).Sub(today).Hours() / 24)
	return days >= 0 && days <= earningsWindow
}

func (a *FeatureAggregator) syntheticPayload(ticker string, top *models.Headline, diag string) *models.FeaturePayload {
	return &models.FeaturePayload{
		Ticker:      ticker,
		Features:    syntheticFeatures(),
		TopHeadline: top,
		Refs:        models.PadRefs(nil),
		RefsSources: []string{},
		Error:       diag,
		Quote:       models.Quote{Last: 0.0, Quality: models.QualityUnknown},
		TS:          isoNow(a.now()),
	}
}

func (a *FeatureAggregator) publish(ctx context.Context, p *models.FeaturePayload) {
	if a.events == nil {
		return
	}
	if err := a.events.Publish(ctx, p); err != nil {
		a.log.Warn("publish feature event failed",
			logger.String("ticker", p.Ticker), logger.Error(err))
	}
}

func (a *FeatureAggregator) recordCall(provider, kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	a.metrics.RecordProviderCall(provider, kind, outcome)
}

// mergeRefs walks the primary then secondary headline lists, keeps entries
// with both a title and a URL, de-duplicates by URL with first occurrence
// winning, stops at three and pads to the fixed slot count. The sources list
// stays parallel to the filled slots.
func mergeRefs(primary, secondary []models.Headline) ([]*models.Headline, []string) {
	seen := make(map[string]struct{}, models.RefSlots)
	refs := make([]*models.Headline, 0, models.RefSlots)
	sources := make([]string, 0, models.RefSlots)

	for _, list := range [][]models.Headline{primary, secondary} {
		for _, h := range list {
			title := strings.TrimSpace(h.Title)
			url := strings.TrimSpace(h.URL)
			if title == "" || url == "" {
				continue
			}
			if _, dup := seen[url]; dup {
				continue
			}
			seen[url] = struct{}{}
			pub := strings.TrimSpace(h.Publisher)
			if pub == "" {
				pub = "News"
			}
			refs = append(refs, &models.Headline{Title: title, Publisher: pub, URL: url})
			sources = append(sources, pub)
			if len(refs) >= models.RefSlots {
				return models.PadRefs(refs), sources
			}
		}
	}
	return models.PadRefs(refs), sources
}

func minutesSinceLatest(now time.Time, lists ...[]models.Headline) int {
	mins := newsSentinel
	var latest time.Time
	for _, list := range lists {
		for _, h := range list {
			if h.TS == "" {
				continue
			}
			if t, ok := util.ParseTime(h.TS); ok && t.After(latest) {
				latest = t
			}
		}
	}
	if !latest.IsZero() {
		mins = int(now.Sub(latest).Minutes())
	}
	if mins < 0 {
		mins = 0
	}
	if mins > newsCap {
		mins = newsCap
	}
	return mins
}

func headlineTitles(list []models.Headline, limit int) []string {
	titles := make([]string, 0, limit)
	for _, h := range list {
		t := strings.TrimSpace(h.Title)
		if t == "" {
			continue
		}
		titles = append(titles, t)
		if len(titles) >= limit {
			break
		}
	}
	return titles
}

func syntheticFeatures() models.FeatureSet {
	closes := []float64{100, 101, 102, 103, 103, 104, 105, 104, 103, 102, 103, 104, 103, 102, 101, 100, 99, 99, 100, 101, 102}
	highs := []float64{101, 102, 103, 104, 104, 105, 106, 105, 104, 103, 104, 105, 104, 103, 102, 101, 100, 100, 101, 102, 103}
	lows := []float64{99, 100, 101, 102, 102, 103, 104, 103, 102, 101, 102, 103, 102, 101, 100, 99, 98, 98, 99, 100, 101}

	rv20 := features.Clamp(features.NormalizedATR(highs, lows, closes, 20), rvFloor, rvCeil)
	return models.FeatureSet{
		SentMean:      0.0,
		SentStd:       0.05,
		R1m:           features.PercentReturn(closes, 1),
		R5m:           features.PercentReturn(closes, 5),
		AboveSMA20:    features.AboveSMA20(closes),
		MinsSinceNews: 12,
		RV20:          rv20,
		EarningsSoon:  false,
		LiquidityFlag: true,
	}
}

func isoNow(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

func float64Ptr(v float64) *float64 { return &v }
