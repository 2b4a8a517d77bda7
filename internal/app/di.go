// Package app provides the dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/allisson/privacy/internal/config"
	"github.com/allisson/privacy/internal/database"
	"github.com/allisson/privacy/internal/http"
	"github.com/allisson/privacy/internal/i18n"
	"github.com/allisson/privacy/internal/mail"
	"github.com/allisson/privacy/internal/metrics"
	privacyHTTP "github.com/allisson/privacy/internal/privacy/http"
	privacyRepository "github.com/allisson/privacy/internal/privacy/repository"
	privacyService "github.com/allisson/privacy/internal/privacy/service"
	privacyUseCase "github.com/allisson/privacy/internal/privacy/usecase"
	"github.com/allisson/privacy/internal/routing"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger      *slog.Logger
	db          *sql.DB
	txManager   database.TxManager
	mailer      mail.Mailer
	linkBuilder *routing.LinkBuilder
	catalog     *i18n.Catalog

	// Metrics
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Privacy vertical
	requestRepo    privacyUseCase.RequestRepository
	tokenService   privacyService.TokenService
	requestUseCase privacyUseCase.UseCase

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                 sync.Mutex
	loggerInit         sync.Once
	dbInit             sync.Once
	txManagerInit      sync.Once
	mailerInit         sync.Once
	linkBuilderInit    sync.Once
	catalogInit        sync.Once
	metricsInit        sync.Once
	requestRepoInit    sync.Once
	tokenServiceInit   sync.Once
	requestUseCaseInit sync.Once
	httpServerInit     sync.Once
	metricsServerInit  sync.Once
	initErrors         map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		db, err := database.Connect(database.Config{
			Driver:             c.config.DBDriver,
			ConnectionString:   c.config.DBConnectionString,
			MaxOpenConnections: c.config.DBMaxOpenConnections,
			MaxIdleConnections: c.config.DBMaxIdleConnections,
			ConnMaxLifetime:    c.config.DBConnMaxLifetime,
		})
		if err != nil {
			c.initErrors["db"] = fmt.Errorf("failed to connect to database: %w", err)
			return
		}
		c.db = db
	})
	if err, exists := c.initErrors["db"]; exists {
		return nil, err
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	c.txManagerInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["txManager"] = fmt.Errorf("failed to get database for tx manager: %w", err)
			return
		}
		c.txManager = database.NewTxManager(db)
	})
	if err, exists := c.initErrors["txManager"]; exists {
		return nil, err
	}
	return c.txManager, nil
}

// Mailer returns the SMTP mailer instance.
func (c *Container) Mailer() mail.Mailer {
	c.mailerInit.Do(func() {
		c.mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     c.config.SMTPHost,
			Port:     c.config.SMTPPort,
			Username: c.config.SMTPUsername,
			Password: c.config.SMTPPassword,
			From:     c.config.MailFrom,
		})
	})
	return c.mailer
}

// LinkBuilder returns the confirmation link builder.
func (c *Container) LinkBuilder() (*routing.LinkBuilder, error) {
	c.linkBuilderInit.Do(func() {
		builder, err := routing.NewLinkBuilder(c.config.RootURL, c.config.ForceSSL)
		if err != nil {
			c.initErrors["linkBuilder"] = fmt.Errorf("failed to create link builder: %w", err)
			return
		}
		c.linkBuilder = builder
	})
	if err, exists := c.initErrors["linkBuilder"]; exists {
		return nil, err
	}
	return c.linkBuilder, nil
}

// Catalog returns the notification message catalog.
func (c *Container) Catalog() *i18n.Catalog {
	c.catalogInit.Do(func() {
		c.catalog = i18n.NewCatalog(c.config.Language)
	})
	return c.catalog
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	if err := c.initMetrics(); err != nil {
		return nil, err
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder.
// A no-op implementation is returned when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	if err := c.initMetrics(); err != nil {
		return nil, err
	}
	return c.businessMetrics, nil
}

// initMetrics creates the metrics provider and business metrics together.
func (c *Container) initMetrics() error {
	c.metricsInit.Do(func() {
		if !c.config.MetricsEnabled {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return
		}

		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metrics"] = fmt.Errorf("failed to create metrics provider: %w", err)
			return
		}

		businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metrics"] = fmt.Errorf("failed to create business metrics: %w", err)
			return
		}

		c.metricsProvider = provider
		c.businessMetrics = businessMetrics
	})
	if err, exists := c.initErrors["metrics"]; exists {
		return err
	}
	return nil
}

// RequestRepository returns the privacy request repository instance.
func (c *Container) RequestRepository() (privacyUseCase.RequestRepository, error) {
	c.requestRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["requestRepo"] = fmt.Errorf("failed to get database for request repository: %w", err)
			return
		}

		// Select the appropriate repository based on the database driver
		switch c.config.DBDriver {
		case "mysql":
			c.requestRepo = privacyRepository.NewMySQLRequestRepository(db)
		case "postgres":
			c.requestRepo = privacyRepository.NewPostgreSQLRequestRepository(db)
		default:
			c.initErrors["requestRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if err, exists := c.initErrors["requestRepo"]; exists {
		return nil, err
	}
	return c.requestRepo, nil
}

// TokenService returns the confirmation token service.
func (c *Container) TokenService() (privacyService.TokenService, error) {
	c.tokenServiceInit.Do(func() {
		tokenService, err := privacyService.NewTokenService()
		if err != nil {
			c.initErrors["tokenService"] = fmt.Errorf("failed to create token service: %w", err)
			return
		}
		c.tokenService = tokenService
	})
	if err, exists := c.initErrors["tokenService"]; exists {
		return nil, err
	}
	return c.tokenService, nil
}

// RequestUseCase returns the privacy request use case instance.
// When metrics are enabled the use case is wrapped with the metrics decorator.
func (c *Container) RequestUseCase() (privacyUseCase.UseCase, error) {
	c.requestUseCaseInit.Do(func() {
		useCase, err := c.initRequestUseCase()
		if err != nil {
			c.initErrors["requestUseCase"] = err
			return
		}
		c.requestUseCase = useCase
	})
	if err, exists := c.initErrors["requestUseCase"]; exists {
		return nil, err
	}
	return c.requestUseCase, nil
}

// HTTPServer returns the API HTTP server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	c.httpServerInit.Do(func() {
		server, err := c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}
		c.httpServer = server
	})
	if err, exists := c.initErrors["httpServer"]; exists {
		return nil, err
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server instance, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}

		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
			return
		}

		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if err, exists := c.initErrors["metricsServer"]; exists {
		return nil, err
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	// Shutdown HTTP servers if initialized
	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	// Flush metrics if initialized
	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	// Close database connection if initialized
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initRequestUseCase creates the privacy request use case with all its dependencies.
func (c *Container) initRequestUseCase() (privacyUseCase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for request use case: %w", err)
	}

	requestRepo, err := c.RequestRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get request repository for request use case: %w", err)
	}

	tokenService, err := c.TokenService()
	if err != nil {
		return nil, fmt.Errorf("failed to get token service for request use case: %w", err)
	}

	linkBuilder, err := c.LinkBuilder()
	if err != nil {
		return nil, fmt.Errorf("failed to get link builder for request use case: %w", err)
	}

	useCaseConfig := privacyUseCase.Config{
		SiteName:                c.config.SiteName,
		ConfirmTokenTTL:         c.config.ConfirmTokenExpiration,
		CompensateOnMailFailure: c.config.MailCompensateOnFailure,
	}

	useCase := privacyUseCase.NewRequestUseCase(
		useCaseConfig,
		txManager,
		requestRepo,
		tokenService,
		c.Mailer(),
		linkBuilder,
		c.Catalog(),
		c.Logger(),
	)

	if !c.config.MetricsEnabled {
		return useCase, nil
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for request use case: %w", err)
	}

	return privacyUseCase.NewRequestUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initHTTPServer creates the API HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	requestUseCase, err := c.RequestUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get request use case for http server: %w", err)
	}

	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	requestHandler := privacyHTTP.NewRequestHandler(requestUseCase, c.Catalog(), logger)

	return http.NewServer(c.config, requestHandler, metricsProvider, logger), nil
}
