package tiingo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"Midas/internal/domain/models"
	"Midas/internal/service/ratelimit"
	"Midas/pkg/config"
	xhttp "Midas/pkg/http"
)

// Client is the Tiingo IEX source: quotes with bid/ask and 1-minute candles.
type Client struct {
	apiKey  string
	baseURL string
	client  *xhttp.Client
	limiter *ratelimit.Limiter
	rate    float64
	burst   float64
}

// NewClient builds a Tiingo IEX client from config.
func NewClient(cfg *config.Config, limiter *ratelimit.Limiter) *Client {
	rate := cfg.Providers.Tiingo.RatePerSec
	if rate <= 0 {
		rate = 2
	}
	burst := cfg.Providers.Tiingo.Burst
	if burst <= 0 {
		burst = 5
	}
	return &Client{
		apiKey:  cfg.Providers.Tiingo.APIKey,
		baseURL: cfg.Providers.Tiingo.BaseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(cfg.Providers.Timeout)),
		limiter: limiter,
		rate:    rate,
		burst:   burst,
	}
}

func (c *Client) Name() string { return "tiingo" }

func (c *Client) allow(op string) error {
	if c.limiter != nil && !c.limiter.Allow("tiingo:"+op, c.burst, c.rate) {
		return fmt.Errorf("tiingo %s: rate limited", op)
	}
	return nil
}

type iexQuote struct {
	Last     float64 `json:"last"`
	TngoLast float64 `json:"tngoLast"`
	BidPrice float64 `json:"bidPrice"`
	AskPrice float64 `json:"askPrice"`
}

// FetchQuote returns last/bid/ask from the IEX top-of-book endpoint.
// Any field may come back zero.
func (c *Client) FetchQuote(ctx context.Context, ticker string) (models.RawQuote, error) {
	if err := c.allow("quote"); err != nil {
		return models.RawQuote{}, err
	}
	var rows []iexQuote
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/iex/",
		QueryParams: map[string][]string{
			"tickers": {strings.ToLower(ticker)},
			"token":   {c.apiKey},
		},
	}, &rows)
	if err != nil {
		return models.RawQuote{}, fmt.Errorf("tiingo quote: %w", err)
	}
	if len(rows) == 0 {
		return models.RawQuote{}, fmt.Errorf("tiingo quote: empty response for %s", ticker)
	}
	q := rows[0]
	last := q.Last
	if last == 0 {
		last = q.TngoLast
	}
	return models.RawQuote{Last: last, Bid: q.BidPrice, Ask: q.AskPrice}, nil
}

type iexBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// FetchCandles returns intraday bars oldest-to-newest at the requested
// resample frequency (e.g. "1min") covering at least the lookback window.
func (c *Client) FetchCandles(ctx context.Context, ticker string, lookback time.Duration, freq string) ([]models.Candle, error) {
	if err := c.allow("candles"); err != nil {
		return nil, err
	}
	start := time.Now().UTC().Add(-lookback)

	var rows []iexBar
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/iex/%s/prices", c.baseURL, strings.ToLower(ticker)),
		QueryParams: map[string][]string{
			"resampleFreq": {freq},
			"startDate":    {start.Format("2006-01-02")},
			"columns":      {"open,high,low,close,volume"},
			"token":        {c.apiKey},
		},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("tiingo candles: %w", err)
	}

	out := make([]models.Candle, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.Candle{Open: r.Open, High: r.High, Low: r.Low, Close: r.Close, Volume: r.Volume})
	}
	return out, nil
}
