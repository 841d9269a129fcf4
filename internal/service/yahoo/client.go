package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"Midas/internal/domain/models"
	"Midas/internal/service/ratelimit"
	"Midas/pkg/config"

	"github.com/mmcdole/gofeed"
)

// Client is the secondary headline source, backed by the Yahoo Finance RSS
// feed. It needs no API key.
type Client struct {
	baseURL string
	parser  *gofeed.Parser
	limiter *ratelimit.Limiter
	rate    float64
	burst   float64
}

// NewClient builds a Yahoo RSS headline client from config.
func NewClient(cfg *config.Config, limiter *ratelimit.Limiter) *Client {
	base := cfg.Providers.Yahoo.BaseURL
	if base == "" {
		base = "https://feeds.finance.yahoo.com"
	}
	rate := cfg.Providers.Yahoo.RatePerSec
	if rate <= 0 {
		rate = 2
	}
	burst := cfg.Providers.Yahoo.Burst
	if burst <= 0 {
		burst = 5
	}
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: cfg.Providers.Timeout}
	return &Client{baseURL: base, parser: parser, limiter: limiter, rate: rate, burst: burst}
}

func (c *Client) Name() string { return "yahoo" }

// FetchHeadlines returns up to limit items from the per-ticker headline feed.
func (c *Client) FetchHeadlines(ctx context.Context, ticker string, limit int) ([]models.Headline, error) {
	if c.limiter != nil && !c.limiter.Allow("yahoo:news", c.burst, c.rate) {
		return nil, fmt.Errorf("yahoo news: rate limited")
	}

	url := fmt.Sprintf("%s/rss/2.0/headline?s=%s&region=US&lang=en-US", c.baseURL, ticker)
	feed, err := c.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("yahoo news: %w", err)
	}

	out := make([]models.Headline, 0, limit)
	for _, item := range feed.Items {
		if item.Title == "" || item.Link == "" {
			continue
		}
		h := models.Headline{Title: item.Title, URL: item.Link, Publisher: "Yahoo Finance"}
		if item.PublishedParsed != nil {
			h.TS = item.PublishedParsed.UTC().Format(time.RFC3339)
		}
		out = append(out, h)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}
