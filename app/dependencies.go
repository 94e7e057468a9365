package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/lejendary/oauth2-server/auth"
	"github.com/lejendary/oauth2-server/config"
	"github.com/lejendary/oauth2-server/handlers"
	"github.com/lejendary/oauth2-server/internal/observability"
	"github.com/lejendary/oauth2-server/internal/security"
	"github.com/lejendary/oauth2-server/middleware"
	"github.com/lejendary/oauth2-server/repositories"
	"github.com/lejendary/oauth2-server/repositories/postgres"
	"github.com/lejendary/oauth2-server/services"
	"github.com/lejendary/oauth2-server/token"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Users repositories.UserRepository

	// Metrics
	Registry *prometheus.Registry
	Metrics  *observability.PrometheusMetrics

	// Security
	TokenManager   *token.Manager
	AuthMiddleware *middleware.AuthMiddleware

	// Services
	AuthService *services.AuthService
	UserService *services.UserService

	// HTTP handlers
	HealthHandler  *handlers.HealthHandler
	AccountHandler *handlers.AccountHandler
	UserHandler    *handlers.UserHandler
	authHandler    *auth.Handler
}

// AuthHandler returns the auth handler for route wiring (implements handlers.AuthDeps)
func (d *Dependencies) AuthHandler() *auth.Handler {
	return d.authHandler
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps, err := NewDependenciesWithFactory(ctx, cfg, factory, logger)
	if err != nil {
		_ = factory.Close()
		return nil, err
	}
	return deps, nil
}

// NewDependenciesWithFactory wires the application around an existing
// repository factory.
func NewDependenciesWithFactory(ctx context.Context, cfg *config.Config, factory *postgres.RepositoryFactory, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		RepoFactory: factory,
		DB:          factory.GetDB(),
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initRepositories()
	deps.initMetrics()

	if err := deps.initSecurity(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize security: %w", err)
	}

	deps.initServices(cfg)

	if err := deps.seedAdmin(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to seed admin account: %w", err)
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase bootstraps the schema when auto-migration is enabled
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	if !cfg.Database.AutoMigrate {
		return nil
	}
	if err := d.RepoFactory.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()
	d.Users = repos.Users
	d.Logger.Info("repositories initialized")
}

// initMetrics registers the collectors on a private registry
func (d *Dependencies) initMetrics() {
	d.Registry = prometheus.NewRegistry()
	d.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	d.Metrics = observability.NewPrometheusMetrics(d.Registry)
}

func (d *Dependencies) initSecurity(cfg *config.Config) error {
	if cfg.Token.Ephemeral {
		d.Logger.Warn("JWT_SECRET not set, using an ephemeral signing key; tokens will not survive a restart")
	}

	manager, err := token.NewManager(token.Config{
		Secret:   []byte(cfg.Token.Secret),
		Issuer:   cfg.Token.Issuer,
		Audience: cfg.Token.Audience,
		TTL:      cfg.Token.TTL,
		Leeway:   cfg.Token.Leeway,
	})
	if err != nil {
		return fmt.Errorf("failed to create token manager: %w", err)
	}
	d.TokenManager = manager

	d.AuthMiddleware = middleware.NewAuthMiddleware(manager, d.Logger,
		middleware.WithAnonymous(cfg.Security.AnonymousEnabled),
		middleware.WithRecorder(d.Metrics),
	)

	d.Logger.Info("token validation configured",
		zap.String("issuer", cfg.Token.Issuer),
		zap.Duration("ttl", manager.TTL()),
		zap.Bool("anonymous_enabled", cfg.Security.AnonymousEnabled))
	return nil
}

func (d *Dependencies) initServices(cfg *config.Config) {
	d.AuthService = services.NewAuthService(d.Users, d.TokenManager, d.Metrics, d.Logger)
	d.UserService = services.NewUserService(d.Users, d.Logger)

	d.HealthHandler = handlers.NewHealthHandler(d.DB, d.Logger)
	d.AccountHandler = handlers.NewAccountHandler(d.Logger)
	d.UserHandler = handlers.NewUserHandler(d.UserService, d.Logger)
	d.authHandler = auth.NewHandler(d.AuthService, cfg.Security.CookieSecure || cfg.Server.TLS.Enabled, d.Logger)
}

// seedAdmin creates the bootstrap administrator when configured and missing
func (d *Dependencies) seedAdmin(ctx context.Context, cfg *config.Config) error {
	admin := cfg.Security.BootstrapAdmin
	if admin.Login == "" {
		return nil
	}

	existing, err := d.UserService.GetUser(ctx, admin.Login)
	if err == nil {
		if !existing.IsAdmin() {
			d.Logger.Warn("bootstrap admin login exists without ROLE_ADMIN",
				zap.String("login", existing.Login))
		}
		return nil
	}
	if !services.IsNotFoundError(err) {
		return err
	}

	_, err = d.UserService.CreateUser(ctx, services.CreateUserRequest{
		Login:       admin.Login,
		Password:    admin.Password,
		Email:       admin.Email,
		Authorities: []string{security.AdminAuthority, security.UserAuthority},
	})
	if err != nil && !services.IsConflictError(err) {
		return err
	}
	d.Logger.Info("bootstrap admin account created", zap.String("login", admin.Login))
	return nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	_ = d.Logger.Sync()

	return errors.Join(errs...)
}
