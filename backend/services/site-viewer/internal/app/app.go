package app

import (
	"context"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"siteviewer/backend/services/site-viewer/internal/config"
	httpserver "siteviewer/backend/services/site-viewer/internal/http"
	"siteviewer/backend/services/site-viewer/internal/http/handlers"
	"siteviewer/backend/services/site-viewer/internal/http/middleware"
	"siteviewer/backend/services/site-viewer/internal/live"
	"siteviewer/backend/services/site-viewer/internal/observability/metrics"
	"siteviewer/backend/services/site-viewer/internal/service"
	"siteviewer/backend/services/site-viewer/internal/socrata"
	"siteviewer/backend/services/site-viewer/internal/ws"
)

// App wires all dependencies for the site viewer.
type App struct {
	server  *httpserver.Server
	manager *ws.Manager
	service *service.BatteryStatusService
	logger  *zap.Logger
}

// New builds the application graph. rt is the transport used for Socrata calls; nil means
// http.DefaultTransport.
func New(cfg *config.Config, rt http.RoundTripper, logger *zap.Logger) (*App, error) {
	metrics.Init()

	opts, err := cfg.SocrataOptions()
	if err != nil {
		return nil, err
	}
	client, err := socrata.NewClient(rt, opts, logger.Named("socrata"))
	if err != nil {
		return nil, err
	}

	manager := ws.NewManager(cfg.PingInterval())
	broadcaster := live.NewBroadcaster(manager, logger.Named("live"))

	pipeline := service.NewPipeline(client, client, cfg.Dedup(), logger.Named("pipeline"))
	statusService := service.NewBatteryStatusService(pipeline, broadcaster, logger.Named("service"))
	broadcaster.Bind(statusService.State)

	wsServer := ws.NewServer(manager, live.NewProcessor(statusService, logger.Named("live")), cfg.WriteTimeout(), logger.Named("ws"))

	router := httpserver.NewRouter(httpserver.RouterDeps{
		StatusHandlers: handlers.NewStatusHandlers(statusService, logger.Named("http")),
		PageHandler:    handlers.NewPageHandler(logger.Named("http")),
		WSHandler:      wsServer.HandleWS,
		MetricsHandler: metrics.Handler(),
		HealthHandler:  handlers.NewHealthHandler(),
	})

	server := httpserver.NewServer(
		cfg.HTTPAddress(),
		router,
		logger,
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger.Named("access")),
	)

	return &App{
		server:  server,
		manager: manager,
		service: statusService,
		logger:  logger,
	}, nil
}

// Run starts the ping loop and HTTP server and blocks until ctx is done.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.manager.Start(ctx)
		return nil
	})
	g.Go(func() error {
		return a.server.Run(ctx)
	})
	return g.Wait()
}

// Service exposes the battery status service.
func (a *App) Service() *service.BatteryStatusService {
	return a.service
}

// Close releases resources (none yet).
func (a *App) Close() {}
