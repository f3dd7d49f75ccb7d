package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/riskibarqy/scoreboard-wall/external/espn"
	"github.com/riskibarqy/scoreboard-wall/internal/config"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/league"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/snapshot"
	"github.com/riskibarqy/scoreboard-wall/internal/interfaces/httpapi"
	"github.com/riskibarqy/scoreboard-wall/internal/observability"
	"github.com/riskibarqy/scoreboard-wall/internal/platform/logging"
	"github.com/riskibarqy/scoreboard-wall/internal/platform/metrics"
	"github.com/riskibarqy/scoreboard-wall/internal/platform/resilience"
	"github.com/riskibarqy/scoreboard-wall/internal/usecase"
)

// App owns every long-lived component of the service.
type App struct {
	cfg       config.Config
	logger    *logging.Logger
	server    *http.Server
	publisher *usecase.SnapshotPublisher

	pprof           *http.Server
	shutdownUptrace observability.ShutdownFunc
	stopPyroscope   func() error
	unsubscribe     func()
}

// New wires the ESPN adapter, the aggregation pipeline, the snapshot publisher and the
// HTTP surface. Nothing is started until Run.
func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	shutdownUptrace, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init uptrace: %w", err)
	}
	stopPyroscope, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		_ = shutdownUptrace(context.Background())
		return nil, fmt.Errorf("init pyroscope: %w", err)
	}

	recorder := metrics.NewRecorder()
	registry := league.DefaultRegistry()

	client := espn.NewClient(espn.ClientConfig{
		BaseURL:   cfg.ESPNBaseURL,
		Timeout:   cfg.ESPNTimeout,
		UserAgent: cfg.ESPNUserAgent,
		Logger:    logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ESPNCircuitEnabled,
			FailureThreshold: cfg.ESPNCircuitFailureCount,
			OpenTimeout:      cfg.ESPNCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ESPNCircuitHalfOpenMaxReq,
		},
	})

	aggregator := usecase.NewAggregationService(registry, client, cfg.Favorites, usecase.AggregationConfig{
		Location:       cfg.DisplayLocation,
		Workers:        cfg.FetchWorkers,
		AuxFeedLimit:   cfg.AuxFeedLimit,
		InjuryCacheTTL: cfg.AuxCacheTTL,
	}, logger, recorder)
	publisher := usecase.NewSnapshotPublisher(aggregator, cfg.PollInterval, logger, recorder)

	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		metricsHandler = recorder.Handler()
	}
	handler := httpapi.NewHandler(publisher, registry, cfg.Favorites, recorder.FeedHealth(), client, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, metricsHandler)

	a := &App{
		cfg:    cfg,
		logger: logger,
		server: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           router,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
		},
		publisher:       publisher,
		shutdownUptrace: shutdownUptrace,
		stopPyroscope:   stopPyroscope,
	}

	a.unsubscribe = publisher.Subscribe(func(s snapshot.Snapshot) {
		logger.Named("wall").Debug("snapshot changed",
			"snapshot_id", s.ID,
			"games", len(s.Games),
			"news", len(s.News),
		)
	})

	logger.Info("app wired",
		"leagues", registry.Len(),
		"categories", len(registry.Categories()),
		"poll_interval", cfg.PollInterval,
		"display_timezone", cfg.DisplayLocation.String(),
	)
	return a, nil
}

// Handler exposes the HTTP router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run starts the refresh loop and the HTTP server and blocks until ctx is done or the
// server fails. It always shuts everything down before returning.
func (a *App) Run(ctx context.Context) error {
	pprofSrv, err := observability.StartPprofServer(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("start pprof: %w", err)
	}
	a.pprof = pprofSrv

	listener, err := net.Listen("tcp", a.cfg.HTTPAddr)
	if err != nil {
		a.shutdown()
		return fmt.Errorf("listen %s: %w", a.cfg.HTTPAddr, err)
	}

	a.publisher.Start(ctx)

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting", "addr", listener.Addr().String())
		if err := a.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown requested")
	case err = <-serveErr:
		if err != nil {
			a.logger.Error("http server failed", "error", err)
		}
	}

	if shutdownErr := a.shutdown(); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	return err
}

const shutdownTimeout = 10 * time.Second

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	if err := a.publisher.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop snapshot publisher: %w", err))
	}
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if err := observability.StopPprofServer(ctx, a.pprof, a.logger); err != nil {
		errs = append(errs, fmt.Errorf("stop pprof: %w", err))
	}
	if err := a.stopPyroscope(); err != nil {
		errs = append(errs, fmt.Errorf("stop pyroscope: %w", err))
	}
	if err := a.shutdownUptrace(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown uptrace: %w", err))
	}

	a.logger.Info("app stopped")
	return errors.Join(errs...)
}
