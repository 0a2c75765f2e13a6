// Package app wires the gateway's dependencies into a single container
// consumed by route setup and main.
package app

import (
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/tmsuite/console-gateway/access"
	"github.com/tmsuite/console-gateway/audit"
	"github.com/tmsuite/console-gateway/config"
	"github.com/tmsuite/console-gateway/handlers"
	"github.com/tmsuite/console-gateway/middleware"
	"github.com/tmsuite/console-gateway/session"
	"github.com/tmsuite/console-gateway/upstream"
	"go.uber.org/zap"
)

// Dependencies holds all gateway dependencies. This is the central
// wiring point for dependency injection; nothing here is a package-level
// singleton, so tests can build their own container and throw it away.
type Dependencies struct {
	// Infrastructure
	Config   *config.Config
	Logger   *zap.Logger
	Store    session.Store
	Recorder audit.Recorder

	// Core
	Sessions  *session.Manager
	Evaluator *access.Evaluator
	Cookies   *middleware.SessionCookie
	Guard     *middleware.Guard

	// Upstream
	AuthClient  *upstream.Client
	ProxyClient *http.Client

	// Handlers
	Auth    *handlers.AuthHandler
	Session *handlers.SessionHandler
	Proxy   *handlers.ProxyHandler
	Health  *handlers.HealthHandler

	closers []func() error
}

// NewDependencies creates and wires up all gateway dependencies.
func NewDependencies(cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	healthChecks := make(map[string]handlers.HealthChecker)

	// Session store: redis when configured, in-memory otherwise.
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store := session.NewRedisStore(client, logger)
		deps.Store = store
		healthChecks["session_store"] = store
		deps.closers = append(deps.closers, client.Close)
		logger.Info("using redis session store", zap.String("addr", cfg.Redis.Addr))
	} else {
		deps.Store = session.NewMemoryStore()
		logger.Warn("REDIS_ADDR not set, using in-memory session store")
	}

	// Audit trail: postgres when configured, nop otherwise.
	if cfg.AuditDatabase != nil {
		recorder, err := audit.NewPostgresRecorder(cfg.AuditDatabase, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize audit recorder: %w", err)
		}
		deps.Recorder = recorder
		healthChecks["audit_database"] = recorder
		deps.closers = append(deps.closers, recorder.Close)
	} else {
		deps.Recorder = audit.NopRecorder{}
		logger.Info("audit database not configured, audit trail disabled")
	}

	// Upstream auth client (no bearer transport: login has no token yet,
	// and Me passes its token explicitly).
	deps.AuthClient = upstream.NewClient(cfg.Upstream, nil)

	deps.Sessions = session.NewManager(deps.Store, deps.AuthClient, deps.Recorder, cfg.Session.TTL, logger)
	deps.Evaluator = access.NewEvaluator(logger)
	deps.Cookies = middleware.NewSessionCookie(cfg.Session.SigningKey, cfg.Session.TTL, cfg.Session.Secure)
	deps.Guard = middleware.NewGuard(deps.Sessions, deps.Evaluator, deps.Cookies, deps.Recorder, cfg.Session.LoginPath, logger)

	// Proxy client: bearer token attachment and the 401 teardown hook
	// are registered once here, at construction. Handlers never touch
	// auth headers.
	deps.ProxyClient = &http.Client{
		Timeout: cfg.Upstream.Timeout,
		Transport: &upstream.BearerTransport{
			Resolve: middleware.ResolveUpstreamSession,
			Hook:    deps.Sessions.Hook(),
			Log:     logger,
		},
	}

	deps.Auth = handlers.NewAuthHandler(deps.Sessions, deps.Cookies, cfg.Session.LoginPath, logger)
	deps.Session = handlers.NewSessionHandler(deps.Sessions, deps.Evaluator, logger)
	deps.Proxy = handlers.NewProxyHandler(deps.ProxyClient, cfg.Upstream.BaseURL, logger)
	deps.Health = handlers.NewHealthHandler(healthChecks, logger)

	logger.Info("all dependencies initialized")
	return deps, nil
}

// Close releases held connections.
func (d *Dependencies) Close() error {
	var firstErr error
	for _, closeFn := range d.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
