package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finance-dashboard/internal/auth"
	"finance-dashboard/internal/authsession"
	"finance-dashboard/internal/config"
	"finance-dashboard/internal/events"
	"finance-dashboard/internal/jobs"
	"finance-dashboard/internal/metrics"
	"finance-dashboard/internal/middlewares"
	"finance-dashboard/internal/routeguard"
	"finance-dashboard/internal/tokenstore"
	"finance-dashboard/internal/upstream"
	"finance-dashboard/internal/version"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/extra/redisprometheus/v9"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	cfg         *config.Config
	logger      *slog.Logger
	appCtx      *middlewares.AppContext
	httpServer  *http.Server
	debugServer *http.Server
	redis       *redis.Client
	bus         events.Bus
	registry    *authsession.Registry
	jobManager  *jobs.JobManager
	cancel      context.CancelFunc
}

func New(cfg *config.Config) (*Server, error) {
	return newServer(cfg, setupLogger(cfg))
}

func newServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	ctx, cancel := context.WithCancel(context.Background())

	var redisClient *redis.Client
	if cfg.Sessions.Store == "redis" || cfg.Events.Type == "redis" {
		client, err := auth.NewRedisClient(ctx, logger, cfg.Redis)
		if err != nil {
			cancel()
			return nil, err
		}
		redisClient = client

		if cfg.Server.Debug != nil && cfg.Server.Debug.Enabled {
			collector := redisprometheus.NewCollector(metrics.Namespace, "redis", client)
			if err := prometheus.Register(collector); err != nil {
				logger.Debug("failed to register redis collector: already registered", "error", err)
			}
		}
	}

	sessionManager, err := auth.NewSessionManager(logger, cfg, redisClient)
	if err != nil {
		cancel()
		closeRedis(redisClient)
		return nil, err
	}

	upstreamClient, err := upstream.NewClient(cfg.Upstream, logger)
	if err != nil {
		cancel()
		closeRedis(redisClient)
		return nil, err
	}

	bus, err := setupEventBus(ctx, cfg, redisClient, logger)
	if err != nil {
		cancel()
		closeRedis(redisClient)
		return nil, err
	}

	guard, err := routeguard.New(cfg.Routes, cfg.Auth.SignOutPath)
	if err != nil {
		cancel()
		_ = bus.Close()
		closeRedis(redisClient)
		return nil, fmt.Errorf("invalid route rules: %w", err)
	}

	registry := authsession.NewRegistry(authsession.Options{
		Auth:           upstreamClient,
		Tokens:         tokenstore.NewSessionStore(sessionManager.Manager(), cfg.Auth.TokenExpiryKey),
		Credentials:    sessionManager,
		Bus:            bus,
		Paths:          authsession.Paths{SignIn: cfg.Auth.SignInPath, SignOut: cfg.Auth.SignOutPath},
		ProfileTimeout: cfg.Auth.ProfileTimeout,
		Logger:         logger,
	})

	appCtx := middlewares.NewAppContext(ctx, cfg, logger, sessionManager, registry, guard)

	jobManager := jobs.NewJobManager(logger)
	jobManager.Register(jobs.NewTokenRefreshJob(registry, upstreamClient, bus, cfg.Auth.RefreshInterval, cfg.Auth.RefreshBefore, logger))
	jobManager.Register(jobs.NewSessionSweepJob(registry, cfg.Auth.SweepInterval, cfg.Sessions.IdleTimeout, logger))

	router := setupRouter(appCtx, upstreamClient.BaseURL())
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var debugServer *http.Server
	if cfg.Server.Debug != nil && cfg.Server.Debug.Enabled {
		debugServer = &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Debug.Host, cfg.Server.Debug.Port),
			Handler:           setupDebugRouter(),
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	return &Server{
		cfg:         cfg,
		logger:      logger,
		appCtx:      appCtx,
		httpServer:  httpServer,
		debugServer: debugServer,
		redis:       redisClient,
		bus:         bus,
		registry:    registry,
		jobManager:  jobManager,
		cancel:      cancel,
	}, nil
}

func setupEventBus(ctx context.Context, cfg *config.Config, client *redis.Client, logger *slog.Logger) (events.Bus, error) {
	switch cfg.Events.Type {
	case "redis":
		bus, err := events.NewRedisBus(ctx, client, cfg.Events.Channel, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to start redis event bus: %w", err)
		}
		logger.Debug("event bus configured", "type", "redis", "channel", cfg.Events.Channel)
		return bus, nil
	default:
		logger.Debug("event bus configured", "type", "memory")
		return events.NewMemBus(), nil
	}
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	s.jobManager.Start(s.appCtx)

	go func() {
		s.logger.Info("Server Started", "port", s.cfg.Server.Port, "version", version.GetFullVersion())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server failed to start", "error", err)
			s.cancel()
		}
	}()

	if s.debugServer != nil {
		go func() {
			s.logger.Info("Metrics server starting", "address", s.debugServer.Addr)
			if err := s.debugServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("Metrics server failed to start", "error", err)
				s.cancel()
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		s.logger.Info("Shutdown signal received")
	case <-s.appCtx.Done():
		s.logger.Info("Context canceled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	return s.Shutdown(shutdownCtx)
}

// Shutdown stops accepting requests, stops the jobs and releases the
// session controllers, the event bus and the Redis connection.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting Down Server")

	var errs []error

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Server forced to shutdown", "error", err)
		errs = append(errs, err)
	}

	if s.debugServer != nil {
		if err := s.debugServer.Shutdown(ctx); err != nil {
			s.logger.Error("Debug server forced to shutdown", "error", err)
		}
	}

	s.jobManager.Shutdown(ctx)
	s.registry.Close()
	s.cancel()

	if err := s.bus.Close(); err != nil {
		s.logger.Error("failed to close event bus", "error", err)
	}
	closeRedis(s.redis)

	s.logger.Info("Server Exited")
	return errors.Join(errs...)
}

func closeRedis(client *redis.Client) {
	if client != nil {
		_ = client.Close()
	}
}
