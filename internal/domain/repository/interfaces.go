package repository

import (
	"context"
	"time"

	"Midas/internal/domain/models"
)

// HeadlineSource fetches recent news headlines for a ticker.
type HeadlineSource interface {
	Name() string
	FetchHeadlines(ctx context.Context, ticker string, limit int) ([]models.Headline, error)
}

// QuoteSource fetches a last/bid/ask quote. Fields may be absent (zero).
type QuoteSource interface {
	Name() string
	FetchQuote(ctx context.Context, ticker string) (models.RawQuote, error)
}

// CandleSource fetches intraday bars, oldest first.
type CandleSource interface {
	Name() string
	FetchCandles(ctx context.Context, ticker string, lookback time.Duration, freq string) ([]models.Candle, error)
}

// EarningsSource fetches the next earnings date as an ISO date, "" when none
// is scheduled.
type EarningsSource interface {
	Name() string
	FetchEarningsDate(ctx context.Context, ticker string) (string, error)
}

// FeatureCache stores the last computed payload per ticker. Entries are valid
// until overwritten by a newer aggregation; there is no expiry.
type FeatureCache interface {
	Get(ctx context.Context, ticker string) (*models.FeaturePayload, bool)
	Put(ctx context.Context, ticker string, p *models.FeaturePayload)
}

// EventPublisher fans computed payloads out to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, p *models.FeaturePayload) error
	Close() error
}

// MarketStream is a live last-price feed (WebSocket) for configured tickers.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Tick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Metrics records operational counters for the aggregation pipeline.
type Metrics interface {
	RecordProviderCall(provider, kind, outcome string)
	RecordCacheLookup(hit bool)
	RecordUpstreamRetry(target string)
	RecordLastPrice(ticker string, price float64)
	RecordLatency(op string, seconds float64)
	RecordError(kind string)
}
