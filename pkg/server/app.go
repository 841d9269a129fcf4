package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	domrepo "Midas/internal/domain/repository"
	"Midas/internal/usecase"
	"Midas/pkg/config"
	xhttp "Midas/pkg/http"
	applogger "Midas/pkg/logger"
)

// ContextApp runs the context service: the feature pipeline behind HTTP plus
// the optional streaming quote collector and event publisher.
type ContextApp struct {
	cfg        *config.Config
	log        *applogger.Logger
	handler    xhttp.Handler
	collector  *usecase.QuoteCollector
	events     domrepo.EventPublisher
	httpServer *xhttp.Server
}

func NewContextApp(cfg *config.Config, log *applogger.Logger, handler xhttp.Handler, collector *usecase.QuoteCollector, events domrepo.EventPublisher) *ContextApp {
	return &ContextApp{cfg: cfg, log: log, handler: handler, collector: collector, events: events}
}

// Run starts the service and blocks until interrupted.
func (a *ContextApp) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsMiddleware(a.log, 500*time.Millisecond),
	)

	if a.collector != nil {
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				a.log.Error("quote stream error", applogger.Error(err))
			}
		}()
		a.log.Info("quote stream started",
			applogger.Strings("symbols", a.cfg.Providers.Finnhub.Symbols))
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("context service up", applogger.Int("port", a.cfg.Server.Port))

	waitForSignal()
	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

func (a *ContextApp) shutdown(ctx context.Context) error {
	if a.collector != nil {
		if err := a.collector.Stop(); err != nil {
			a.log.Warn("quote stream stop error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.log.Warn("event publisher close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}

// GatewayApp runs the gateway service.
type GatewayApp struct {
	cfg        *config.Config
	log        *applogger.Logger
	handler    xhttp.Handler
	httpServer *xhttp.Server
}

func NewGatewayApp(cfg *config.Config, log *applogger.Logger, handler xhttp.Handler) *GatewayApp {
	return &GatewayApp{cfg: cfg, log: log, handler: handler}
}

// Run starts the service and blocks until interrupted.
func (a *GatewayApp) Run() error {
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsMiddleware(a.log, 500*time.Millisecond),
	)

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("gateway service up",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("context_url", a.cfg.Gateway.ContextURL),
		applogger.String("recommend_url", a.cfg.Gateway.RecommendURL))

	waitForSignal()
	a.log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		return err
	}
	a.log.Info("shutdown complete")
	return nil
}

func waitForSignal() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
}
