package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"Midas/internal/domain/models"
	"Midas/internal/services/scoring"
	"Midas/pkg/config"
	"Midas/pkg/logger"
)

func gatewayConfig(ctxURL, recURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Gateway.ContextURL = ctxURL
	cfg.Gateway.RecommendURL = recURL
	cfg.Gateway.Timeout = 2 * time.Second
	cfg.Gateway.Retries = 2
	cfg.Gateway.RetryDelay = time.Millisecond
	return cfg
}

func newTestOrchestrator(t *testing.T, cfg *config.Config) *GatewayOrchestrator {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "info", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	g := NewGatewayOrchestrator(cfg, scoring.NewHTTPRecommendationScorer(cfg), NewOneLinerComposer(), nopMetrics{}, log)
	g.sleep = func(time.Duration) {}
	return g
}

func writeEnveloped(w http.ResponseWriter, data interface{}) {
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  200,
		"message": "OK",
		"data":    data,
	})
}

func contextStub(payload *models.ContextPayload, oneLiner *models.OneLiner, oneLinerFails bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/features/v2"):
			writeEnveloped(w, payload)
		case strings.HasPrefix(r.URL.Path, "/api/one_liner"):
			if oneLinerFails {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			writeEnveloped(w, oneLiner)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func samplePayload() *models.ContextPayload {
	return &models.ContextPayload{
		Ticker:   "NVDA",
		Features: map[string]interface{}{"rv20": 0.12, "sent_mean": 0.3},
		TopHeadline: &models.Headline{
			Title: "Chips rally", Publisher: "Reuters", URL: "https://r/1",
		},
		Refs: []*models.Headline{
			{Title: "Chips rally", Publisher: "Reuters", URL: "https://r/1"},
			nil,
			nil,
		},
		RefsSources: []string{"Reuters"},
		Quote:       map[string]interface{}{"last": 100.0},
		TS:          "2025-03-03T12:00:00Z",
	}
}

func TestGatewayRunAssemblesResponse(t *testing.T) {
	one := &models.OneLiner{Text: "Range-bound, IV watch. Source: Reuters —([1])"}
	ctxSrv := httptest.NewServer(contextStub(samplePayload(), one, false))
	defer ctxSrv.Close()

	recSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"class": "IRON_CONDOR", "confidence": 0.73})
	}))
	defer recSrv.Close()

	g := newTestOrchestrator(t, gatewayConfig(ctxSrv.URL, recSrv.URL))
	g.now = func() time.Time { return time.Date(2025, 3, 3, 12, 0, 40, 0, time.UTC) }

	res, err := g.Run(context.Background(), "NVDA")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Recommendation.Class() != "IRON_CONDOR" {
		t.Fatalf("unexpected class %s", res.Recommendation.Class())
	}
	if res.OneLiner == nil || res.OneLiner.Text != one.Text {
		t.Fatalf("unexpected one-liner %+v", res.OneLiner)
	}
	if res.CacheAgeSeconds == nil || *res.CacheAgeSeconds != 40 {
		t.Fatalf("unexpected cache age %v", res.CacheAgeSeconds)
	}
	if res.TSCtx != "2025-03-03T12:00:00Z" {
		t.Fatalf("unexpected ts_ctx %s", res.TSCtx)
	}
	if res.TopHeadline == nil || res.TopHeadline.Publisher != "Reuters" {
		t.Fatalf("unexpected top headline %+v", res.TopHeadline)
	}
}

func TestGatewayRetriesThenSucceeds(t *testing.T) {
	var featureCalls int32
	payload := samplePayload()
	ctxSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/features/v2") {
			if atomic.AddInt32(&featureCalls, 1) <= 2 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			writeEnveloped(w, payload)
			return
		}
		writeEnveloped(w, &models.OneLiner{Text: "ok"})
	}))
	defer ctxSrv.Close()

	recSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"class": "NO_ACTION", "confidence": 0.1})
	}))
	defer recSrv.Close()

	g := newTestOrchestrator(t, gatewayConfig(ctxSrv.URL, recSrv.URL))
	res, err := g.Run(context.Background(), "NVDA")
	if err != nil {
		t.Fatalf("run should succeed on the third attempt: %v", err)
	}
	if got := atomic.LoadInt32(&featureCalls); got != 3 {
		t.Fatalf("expected exactly 3 feature attempts, got %d", got)
	}
	if res.Ticker != "NVDA" {
		t.Fatalf("unexpected ticker %s", res.Ticker)
	}
}

func TestGatewayExhaustsRetries(t *testing.T) {
	var featureCalls int32
	ctxSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&featureCalls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ctxSrv.Close()

	g := newTestOrchestrator(t, gatewayConfig(ctxSrv.URL, "http://127.0.0.1:0"))
	_, err := g.Run(context.Background(), "NVDA")
	if err == nil {
		t.Fatalf("expected upstream failure")
	}
	if got := atomic.LoadInt32(&featureCalls); got != 3 {
		t.Fatalf("expected retries+1 attempts, got %d", got)
	}
	if !strings.Contains(err.Error(), "feature service unavailable") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestGatewayRecommendFailureIsFatal(t *testing.T) {
	ctxSrv := httptest.NewServer(contextStub(samplePayload(), &models.OneLiner{Text: "x"}, false))
	defer ctxSrv.Close()

	recSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer recSrv.Close()

	g := newTestOrchestrator(t, gatewayConfig(ctxSrv.URL, recSrv.URL))
	_, err := g.Run(context.Background(), "NVDA")
	if err == nil || !strings.Contains(err.Error(), "recommendation service unavailable") {
		t.Fatalf("expected recommendation failure, got %v", err)
	}
}

func TestGatewayOneLinerDegrades(t *testing.T) {
	ctxSrv := httptest.NewServer(contextStub(samplePayload(), nil, true))
	defer ctxSrv.Close()

	recSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"class": "DEBIT_CALL", "confidence": 0.8})
	}))
	defer recSrv.Close()

	g := newTestOrchestrator(t, gatewayConfig(ctxSrv.URL, recSrv.URL))
	res, err := g.Run(context.Background(), "NVDA")
	if err != nil {
		t.Fatalf("composer failure must not fail the request: %v", err)
	}
	if res.OneLiner == nil || res.OneLiner.Text != "DEBIT_CALL · 80% confidence" {
		t.Fatalf("unexpected fallback one-liner %+v", res.OneLiner)
	}
}

func TestCacheAgeUnparsable(t *testing.T) {
	now := time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)
	if got := cacheAge(now, "not-a-timestamp"); got != nil {
		t.Fatalf("unparsable timestamp must yield nil age, got %v", *got)
	}
	if got := cacheAge(now, ""); got != nil {
		t.Fatalf("missing timestamp must yield nil age")
	}
	if got := cacheAge(now, "2025-03-03T11:59:00Z"); got == nil || *got != 60 {
		t.Fatalf("unexpected age %v", got)
	}
}
