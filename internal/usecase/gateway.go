package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"Midas/internal/domain/models"
	domrepo "Midas/internal/domain/repository"
	domsvc "Midas/internal/domain/service"
	"Midas/pkg/config"
	xhttp "Midas/pkg/http"
	"Midas/pkg/logger"
	"Midas/pkg/util"
)

// GatewayOrchestrator fans a single ticker request out to the context service
// and the recommendation service, retrying each call a bounded number of
// times, then assembles the composite response. Stage one and two exhausting
// their retries is fatal; a failed one-liner build degrades to a local
// template instead.
type GatewayOrchestrator struct {
	cfg      *config.Config
	client   *xhttp.Client
	scorer   domsvc.RecommendationScorer
	composer *OneLinerComposer
	metrics  domrepo.Metrics
	log      *logger.Logger
	now      func() time.Time
	sleep    func(time.Duration)
}

func NewGatewayOrchestrator(cfg *config.Config, scorer domsvc.RecommendationScorer, composer *OneLinerComposer, metrics domrepo.Metrics, log *logger.Logger) *GatewayOrchestrator {
	return &GatewayOrchestrator{
		cfg:      cfg,
		client:   xhttp.NewClient(xhttp.WithTimeout(cfg.Gateway.Timeout)),
		scorer:   scorer,
		composer: composer,
		metrics:  metrics,
		log:      log,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Run executes the two-stage fan-out for ticker and assembles the composite
// response, including the one-liner and the cache age of the context payload.
func (g *GatewayOrchestrator) Run(ctx context.Context, ticker string) (*models.RunResponse, error) {
	start := g.now()
	defer func() {
		g.metrics.RecordLatency("gateway_run", g.now().Sub(start).Seconds())
	}()

	var ctxPayload models.ContextPayload
	err := g.getEnveloped(ctx, g.cfg.Gateway.ContextURL+"/api/features/v2",
		map[string][]string{"ticker": {ticker}}, &ctxPayload)
	if err != nil {
		g.metrics.RecordError("upstream_context")
		return nil, xhttp.BadGatewayErrorf("feature service unavailable: %v", err).WithError(err)
	}

	features := ctxPayload.Features
	if features == nil {
		features = map[string]interface{}{}
	}

	var rec models.Recommendation
	err = g.withRetry(ctx, g.cfg.Gateway.RecommendURL, func() error {
		r, rerr := g.scorer.Recommend(ctx, features)
		if rerr != nil {
			return rerr
		}
		rec = r
		return nil
	})
	if err != nil {
		g.metrics.RecordError("upstream_recommend")
		return nil, xhttp.BadGatewayErrorf("recommendation service unavailable: %v", err).WithError(err)
	}

	one := g.buildOneLiner(ctx, &ctxPayload, rec)

	quote := ctxPayload.Quote
	if quote == nil {
		quote = map[string]interface{}{"last": 0.0, "bid": nil, "ask": nil}
	}

	return &models.RunResponse{
		Ticker:          ticker,
		Features:        features,
		Recommendation:  rec,
		OneLiner:        one,
		Quote:           quote,
		TopHeadline:     ctxPayload.TopHeadline,
		Refs:            ctxPayload.Refs,
		RefsSources:     ctxPayload.RefsSources,
		TSCtx:           ctxPayload.TS,
		TSGateway:       isoNow(g.now()),
		CacheAgeSeconds: cacheAge(g.now(), ctxPayload.TS),
		FeaturesNote:    ctxPayload.Error,
	}, nil
}

// buildOneLiner asks the context service to compose the explanation string
// and falls back to a minimal local template when that call fails.
func (g *GatewayOrchestrator) buildOneLiner(ctx context.Context, ctxPayload *models.ContextPayload, rec models.Recommendation) *models.OneLiner {
	req := &models.OneLinerRequest{
		Class:      rec.Class(),
		Confidence: rec.Confidence(),
		Refs:       ctxPayload.Refs,
	}
	if h := ctxPayload.TopHeadline; h != nil {
		req.Title = h.Title
		req.Publisher = h.Publisher
		req.URL = h.URL
	}

	var one models.OneLiner
	if err := g.postEnveloped(ctx, g.cfg.Gateway.ContextURL+"/api/one_liner", req, &one); err != nil {
		g.log.Warn("one-liner build degraded", logger.Error(err))
		return g.composer.Fallback(rec.Class(), rec.Confidence())
	}
	return &one
}

// envelope is the response wrapper the context service writes. The embedded
// status carries the real outcome even when the transport status is 200.
type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(env *envelope, dest interface{}) error {
	if env.Status < 200 || env.Status >= 300 {
		return fmt.Errorf("upstream status %d: %s", env.Status, env.Message)
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("upstream returned empty data")
	}
	return json.Unmarshal(env.Data, dest)
}

// getEnveloped issues a GET against a context-service endpoint with retries+1
// identical attempts separated by the configured fixed delay, then unwraps
// the response envelope.
func (g *GatewayOrchestrator) getEnveloped(ctx context.Context, url string, params map[string][]string, dest interface{}) error {
	return g.withRetry(ctx, url, func() error {
		var env envelope
		if err := g.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method:      xhttp.MethodGet,
			URL:         url,
			QueryParams: params,
		}, &env); err != nil {
			return err
		}
		return decodeEnvelope(&env, dest)
	})
}

func (g *GatewayOrchestrator) postEnveloped(ctx context.Context, url string, payload interface{}, dest interface{}) error {
	return g.withRetry(ctx, url, func() error {
		var env envelope
		if err := g.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method: xhttp.MethodPost,
			URL:    url,
			Body:   payload,
		}, &env); err != nil {
			return err
		}
		return decodeEnvelope(&env, dest)
	})
}

func (g *GatewayOrchestrator) withRetry(ctx context.Context, target string, call func() error) error {
	var lastErr error
	for i := 0; i <= g.cfg.Gateway.Retries; i++ {
		if i > 0 {
			g.metrics.RecordUpstreamRetry(target)
			g.sleep(g.cfg.Gateway.RetryDelay)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if lastErr = call(); lastErr == nil {
			return nil
		}
	}
	return lastErr
}

func cacheAge(now time.Time, ts string) *int64 {
	t, ok := util.ParseTime(ts)
	if !ok {
		return nil
	}
	age := int64(now.Sub(t).Seconds())
	return &age
}
