package container

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/garyjia/order-intake/internal/application/dispatcher"
	"github.com/garyjia/order-intake/internal/application/port"
	"github.com/garyjia/order-intake/internal/application/service"
	"github.com/garyjia/order-intake/internal/domain/event"
	infraLark "github.com/garyjia/order-intake/internal/infrastructure/external/lark"
	"github.com/garyjia/order-intake/internal/infrastructure/metrics"
	"github.com/garyjia/order-intake/internal/infrastructure/persistence/repository"
	"github.com/garyjia/order-intake/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/order-intake/internal/infrastructure/worker"
	apphttp "github.com/garyjia/order-intake/internal/interfaces/http"
	"github.com/garyjia/order-intake/migrations"
	"github.com/garyjia/order-intake/pkg/database"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqlite.TxManager
}

// ProvideDatabase opens the database and applies pending migrations.
func ProvideDatabase(ctx context.Context, cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.Open(ctx, database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		BusyTimeout:     cfg.BusyTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	var source fs.FS = migrations.FS
	if cfg.MigrationsDir != "" {
		source = os.DirFS(cfg.MigrationsDir)
	}
	if _, err := database.NewMigrator(db, logger).Up(ctx, source); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqlite.NewTxManager(db.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories from a database connection.
func ProvideRepositories(sqlDB *sql.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if sqlDB == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		Draft:        repository.NewDraftRepository(sqlDB, logger),
		SalesOrder:   repository.NewSalesOrderRepository(sqlDB, logger),
		Step:         repository.NewStepRepository(sqlDB, logger),
		Notification: repository.NewNotificationRepository(sqlDB, logger),
		VendorQuote:  repository.NewVendorQuoteRepository(sqlDB, logger),
	}, nil
}

// ProvideMetrics creates the prometheus collectors, or nil when disabled.
func ProvideMetrics(cfg *MetricsConfig) *metrics.Metrics {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	return metrics.New(metrics.Config{Namespace: cfg.Namespace, Runtime: cfg.Runtime})
}

// ProvideMessageSender returns the Lark messenger, or a log-only sender when
// Lark delivery is disabled.
func ProvideMessageSender(cfg *LarkConfig, logger *zap.Logger) (port.MessageSender, error) {
	if cfg == nil {
		return nil, fmt.Errorf("lark config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if !cfg.Enabled {
		logger.Info("Lark delivery disabled, chat messages will only be logged")
		return infraLark.NewLogSender(logger), nil
	}

	sdkClient := infraLark.NewSDKClient(infraLark.Config{
		AppID:         cfg.AppID,
		AppSecret:     cfg.AppSecret,
		ReceiveIDType: cfg.ReceiveIDType,
	}, logger)
	return infraLark.NewMessenger(sdkClient, logger), nil
}

// ProvideDispatcher creates the event dispatcher and subscribes the chat
// delivery handlers. m may be nil.
func ProvideDispatcher(sender port.MessageSender, m *metrics.Metrics, logger *zap.Logger) (dispatcher.Dispatcher, error) {
	if sender == nil {
		return nil, fmt.Errorf("message sender is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	opts := []dispatcher.Option{dispatcher.WithLogger(&zapLoggerAdapter{logger: logger})}
	if m != nil {
		opts = append(opts, dispatcher.WithObserver(m))
	}
	d := dispatcher.NewDispatcher(opts...)

	d.SubscribeNamed(event.TypeNotificationCreated, "chat_delivery", dispatcher.NewChatDeliveryHandler(sender))
	d.SubscribeNamed(event.TypeOrderAssigned, "assignment_message", dispatcher.NewAssignmentHandler(sender))

	return d, nil
}

// ServiceDeps holds dependencies required for creating services.
type ServiceDeps struct {
	Repos      *RepositoryBundle
	TxManager  port.TransactionManager
	Dispatcher dispatcher.Dispatcher
	Logger     *zap.Logger
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}
	if deps.Repos == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if deps.TxManager == nil {
		return nil, fmt.Errorf("transaction manager is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	serviceLogger := &zapLoggerAdapter{logger: deps.Logger}

	return &ServiceBundle{
		Draft:        service.NewDraftService(deps.Repos.Draft, serviceLogger),
		Step:         service.NewStepService(deps.Repos.SalesOrder, deps.Repos.Step, serviceLogger),
		Order:        service.NewOrderService(deps.Repos.SalesOrder, deps.Dispatcher, serviceLogger),
		Notification: service.NewNotificationService(deps.Repos.Notification, deps.Dispatcher, serviceLogger),
		Vendor:       service.NewVendorService(deps.Repos.VendorQuote, deps.TxManager, deps.Dispatcher, serviceLogger),
	}, nil
}

// ProvideHTTPServer creates the HTTP server. m may be nil.
func ProvideHTTPServer(
	cfg *ServerConfig,
	services *ServiceBundle,
	m *metrics.Metrics,
	healthCheck func(ctx context.Context) error,
	logger *zap.Logger,
) (*apphttp.Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("server config is required")
	}
	if services == nil {
		return nil, fmt.Errorf("services are required")
	}

	opts := []apphttp.ServerOption{apphttp.WithHealthCheck(healthCheck)}
	if m != nil {
		opts = append(opts, apphttp.WithMetrics(m))
	}

	return apphttp.NewServer(apphttp.ServerConfig{
		Host:            cfg.Host,
		Port:            cfg.Port,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, apphttp.Services{
		Drafts:        services.Draft,
		Steps:         services.Step,
		Orders:        services.Order,
		Notifications: services.Notification,
		Vendors:       services.Vendor,
	}, &zapLoggerAdapter{logger: logger}, opts...), nil
}

// ProvideWorkers creates and registers all background workers.
// The supervisor is returned with all workers added but not started.
func ProvideWorkers(cfg *DraftsConfig, drafts service.DraftService, m *metrics.Metrics, logger *zap.Logger) (*worker.Supervisor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("drafts config is required")
	}
	if drafts == nil {
		return nil, fmt.Errorf("draft service is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	supervisor := worker.NewSupervisor(logger)

	var recorder worker.PurgeRecorder
	if m != nil {
		recorder = m
	}
	janitor := worker.NewDraftJanitor(worker.DraftJanitorConfig{
		Interval:  cfg.CleanupInterval,
		Retention: cfg.Retention,
		Timeout:   cfg.CleanupTimeout,
	}, drafts, recorder, logger)
	supervisor.Add(janitor)

	return supervisor, nil
}
