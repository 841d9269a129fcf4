package usecase

import (
	"context"

	"Midas/internal/domain/models"
	domrepo "Midas/internal/domain/repository"
	"Midas/internal/service/quotering"
)

// QuoteCollector streams last prices into the quote ring so trailing-return
// fallbacks have data between REST polls.
type QuoteCollector struct {
	stream  domrepo.MarketStream
	ring    *quotering.Store
	metrics domrepo.Metrics
}

func NewQuoteCollector(stream domrepo.MarketStream, ring *quotering.Store, metrics domrepo.Metrics) *QuoteCollector {
	return &QuoteCollector{stream: stream, ring: ring, metrics: metrics}
}

// IsConnected returns true if the market stream is connected.
func (c *QuoteCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *QuoteCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	tickCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, tickCh, errCh)
	return nil
}

func (c *QuoteCollector) consume(ctx context.Context, tickCh <-chan *models.Tick, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			// The stream closes both channels after a read failure, so a
			// drained error channel also means the connection is gone.
			// Reconnect and swap in the fresh channels.
			if ok && err != nil {
				c.metrics.RecordError("stream")
			}
			for ctx.Err() == nil {
				if rerr := c.stream.Reconnect(ctx); rerr != nil {
					c.metrics.RecordError("stream_reconnect")
					continue
				}
				tickCh, errCh = c.stream.Read(ctx)
				break
			}
			if ctx.Err() != nil {
				return
			}
		case t := <-tickCh:
			if t == nil || t.Price <= 0 {
				continue
			}
			c.ring.Append(t.Ticker, t.Price)
			c.metrics.RecordLastPrice(t.Ticker, t.Price)
		}
	}
}

func (c *QuoteCollector) Stop() error { return c.stream.Close() }
