package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apihttp "github.com/GriffinCanCode/deskfolio/internal/api/http"
	"github.com/GriffinCanCode/deskfolio/internal/api/middleware"
	"github.com/GriffinCanCode/deskfolio/internal/api/ws"
	"github.com/GriffinCanCode/deskfolio/internal/domain/catalog"
	"github.com/GriffinCanCode/deskfolio/internal/domain/shell"
	"github.com/GriffinCanCode/deskfolio/internal/domain/visitor"
	"github.com/GriffinCanCode/deskfolio/internal/domain/window"
	"github.com/GriffinCanCode/deskfolio/internal/infrastructure/config"
	"github.com/GriffinCanCode/deskfolio/internal/infrastructure/logging"
	"github.com/GriffinCanCode/deskfolio/internal/infrastructure/media"
	"github.com/GriffinCanCode/deskfolio/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/deskfolio/internal/infrastructure/storage"
	"github.com/GriffinCanCode/deskfolio/internal/infrastructure/tracing"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	registry *visitor.Registry
	store    storage.Store
	tracer   *tracing.Tracer
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logCfg := logging.DefaultConfig()
	if cfg.Logging.Development {
		logCfg = logging.DevelopmentConfig()
	}
	if cfg.Logging.Level != "" {
		logCfg.Level = cfg.Logging.Level
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	logger.Info("Initializing deskfolio server",
		zap.String("port", cfg.Server.Port),
		zap.String("db", cfg.Storage.Path),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New(logger.Component("http"))

	store, err := storage.OpenSQLite(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open preference store: %w", err)
	}

	cat, err := loadCatalog(cfg.Catalog)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	logger.Info("Catalog loaded",
		zap.String("source", catalogSource(cfg.Catalog.Path)),
		zap.Int("icons", len(cat.Icons)),
		zap.Int("tracks", len(cat.Playlist)),
	)

	prober := media.NewProber(media.Config{
		Enabled:           cfg.Media.ProbeEnabled,
		Timeout:           cfg.Media.ProbeTimeout,
		MediaDir:          cfg.Catalog.MediaDir,
		RequestsPerSecond: 5,
	}, metrics, logger.Component("media"))

	windows := window.DefaultConfig()
	windows.RetainGeometry = cfg.Session.RetainGeometry

	registry := visitor.NewRegistry(
		visitor.Config{IdleTTL: cfg.Session.IdleTTL, Max: cfg.Session.Max},
		shell.Options{
			Catalog:   cat,
			Window:    windows,
			SnakeTick: cfg.Snake.Tick,
			Media:     prober,
			Store:     store,
			Metrics:   metrics,
		},
		metrics,
		logger.Component("sessions"),
	)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	router.Use(middleware.Gzip(gzip.DefaultCompression, "/metrics"))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	handlers := apihttp.NewHandlers(registry, cat, metrics, logger.Component("api")).WithMedia(prober)
	if cfg.RateLimit.Enabled && cfg.RateLimit.SessionsPerSecond > 0 {
		handlers.WithCreateGuard(middleware.GlobalRateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.SessionsPerSecond,
			Burst:             cfg.RateLimit.SessionsBurst,
		}))
	}
	stream := ws.NewHandler(apihttp.Current, registry.Touch, metrics, logger.Component("stream"))

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	handlers.Register(router, stream.HandleConnection)

	logger.Info("Server initialized successfully")

	return &Server{
		router:   router,
		registry: registry,
		store:    store,
		tracer:   tracer,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

func loadCatalog(cfg config.CatalogConfig) (*catalog.Catalog, error) {
	if cfg.Path == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(cfg.Path, cfg.MediaDir)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

func catalogSource(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves HTTP and the session janitor until ctx is cancelled or either
// fails, then shuts both down.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Server.Host, s.config.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return s.registry.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close releases the store and flushes telemetry.
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	s.registry.Close()
	s.tracer.Close()

	var errs []error
	if err := s.store.Close(); err != nil {
		s.logger.Error("Failed to close preference store", zap.Error(err))
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}

	_ = s.logger.Sync()
	return errors.Join(errs...)
}
