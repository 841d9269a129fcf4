package finnhub

import (
	"context"
	"fmt"
	"time"

	"Midas/internal/domain/models"
	"Midas/internal/service/ratelimit"
	"Midas/pkg/config"
	xhttp "Midas/pkg/http"
)

// Client is the Finnhub REST source: headlines, quotes and earnings dates.
type Client struct {
	apiKey  string
	baseURL string
	client  *xhttp.Client
	limiter *ratelimit.Limiter
	rate    float64
	burst   float64
}

// NewClient builds a Finnhub REST client from config.
func NewClient(cfg *config.Config, limiter *ratelimit.Limiter) *Client {
	rate := cfg.Providers.Finnhub.RatePerSec
	if rate <= 0 {
		rate = 1 // free tier allows 60 calls/min
	}
	burst := cfg.Providers.Finnhub.Burst
	if burst <= 0 {
		burst = 5
	}
	return &Client{
		apiKey:  cfg.Providers.Finnhub.APIKey,
		baseURL: cfg.Providers.Finnhub.BaseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(cfg.Providers.Timeout)),
		limiter: limiter,
		rate:    rate,
		burst:   burst,
	}
}

func (c *Client) Name() string { return "finnhub" }

func (c *Client) allow(op string) error {
	if c.limiter != nil && !c.limiter.Allow("finnhub:"+op, c.burst, c.rate) {
		return fmt.Errorf("finnhub %s: rate limited", op)
	}
	return nil
}

type fhNews struct {
	Headline string `json:"headline"`
	URL      string `json:"url"`
	Source   string `json:"source"`
	Datetime int64  `json:"datetime"` // unix seconds
}

// FetchHeadlines returns up to limit company-news items for the last two days.
func (c *Client) FetchHeadlines(ctx context.Context, ticker string, limit int) ([]models.Headline, error) {
	if err := c.allow("news"); err != nil {
		return nil, err
	}
	to := time.Now().UTC()
	from := to.Add(-48 * time.Hour)

	var items []fhNews
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/company-news",
		QueryParams: map[string][]string{
			"symbol": {ticker},
			"from":   {from.Format("2006-01-02")},
			"to":     {to.Format("2006-01-02")},
			"token":  {c.apiKey},
		},
	}, &items)
	if err != nil {
		return nil, fmt.Errorf("finnhub news: %w", err)
	}

	out := make([]models.Headline, 0, limit)
	for _, it := range items {
		if it.Headline == "" || it.URL == "" {
			continue
		}
		h := models.Headline{Title: it.Headline, URL: it.URL, Publisher: it.Source}
		if it.Datetime > 0 {
			h.TS = time.Unix(it.Datetime, 0).UTC().Format(time.RFC3339)
		}
		out = append(out, h)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

type fhQuote struct {
	Current float64 `json:"c"`
}

// FetchQuote returns the last trade price. Finnhub's quote endpoint carries
// no bid/ask, so only Last is populated.
func (c *Client) FetchQuote(ctx context.Context, ticker string) (models.RawQuote, error) {
	if err := c.allow("quote"); err != nil {
		return models.RawQuote{}, err
	}
	var q fhQuote
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/quote",
		QueryParams: map[string][]string{
			"symbol": {ticker},
			"token":  {c.apiKey},
		},
	}, &q)
	if err != nil {
		return models.RawQuote{}, fmt.Errorf("finnhub quote: %w", err)
	}
	return models.RawQuote{Last: q.Current}, nil
}

type fhEarnings struct {
	EarningsCalendar []struct {
		Date string `json:"date"`
	} `json:"earningsCalendar"`
}

// FetchEarningsDate returns the next scheduled earnings date as an ISO date,
// or "" when none is scheduled inside the lookahead window.
func (c *Client) FetchEarningsDate(ctx context.Context, ticker string) (string, error) {
	if err := c.allow("earnings"); err != nil {
		return "", err
	}
	from := time.Now().UTC()
	to := from.Add(30 * 24 * time.Hour)

	var cal fhEarnings
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/calendar/earnings",
		QueryParams: map[string][]string{
			"symbol": {ticker},
			"from":   {from.Format("2006-01-02")},
			"to":     {to.Format("2006-01-02")},
			"token":  {c.apiKey},
		},
	}, &cal)
	if err != nil {
		return "", fmt.Errorf("finnhub earnings: %w", err)
	}
	if len(cal.EarningsCalendar) == 0 {
		return "", nil
	}
	return cal.EarningsCalendar[0].Date, nil
}
