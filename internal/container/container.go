package container

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/order-intake/internal/application/dispatcher"
	"github.com/garyjia/order-intake/internal/application/port"
	"github.com/garyjia/order-intake/internal/application/service"
	"github.com/garyjia/order-intake/internal/infrastructure/metrics"
	"github.com/garyjia/order-intake/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/order-intake/internal/infrastructure/worker"
	apphttp "github.com/garyjia/order-intake/internal/interfaces/http"
	"github.com/garyjia/order-intake/pkg/database"
)

// Container manages all application dependencies and lifecycle.
// Components start in dependency order and are torn down in reverse.
type Container struct {
	config *Config
	logger *zap.Logger

	// Infrastructure - Data
	db           *database.DB
	txManager    *sqlite.TxManager
	repositories *RepositoryBundle

	// Infrastructure - Observability and messaging
	metrics *metrics.Metrics
	sender  port.MessageSender

	// Application
	dispatcher dispatcher.Dispatcher
	services   *ServiceBundle

	// Interfaces
	server *apphttp.Server

	// Workers
	workers *worker.Supervisor

	// Lifecycle
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	closers []closer
	ready   atomic.Bool
	closed  atomic.Bool
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	Draft        port.DraftRepository
	SalesOrder   port.SalesOrderRepository
	Step         port.StepRepository
	Notification port.NotificationRepository
	VendorQuote  port.VendorQuoteRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Draft        service.DraftService
	Step         service.StepService
	Order        service.OrderService
	Notification service.NotificationService
	Vendor       service.VendorService
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start builds every component in dependency order and starts the workers.
// The HTTP server is built but not listening; run it with Server().Start.
// Each step that acquires a resource pushes its release onto the closer
// stack, so a failed start releases exactly what was built.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.closed.Load():
		return fmt.Errorf("container has been closed")
	case c.ready.Load():
		return fmt.Errorf("container already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)
	c.logger.Info("Starting container")

	for _, step := range []initStep{
		{"database", c.initDatabase},
		{"external clients", c.initExternal},
		{"dispatcher", c.initDispatcher},
		{"services", c.initServices},
		{"http server", c.initServer},
		{"workers", c.initWorkers},
	} {
		if err := step.run(); err != nil {
			c.logger.Error("Container start failed", zap.String("step", step.name), zap.Error(err))
			if tdErr := c.teardown(); tdErr != nil {
				c.logger.Error("Teardown after failed start", zap.Error(tdErr))
			}
			return fmt.Errorf("failed to initialize %s: %w", step.name, err)
		}
		c.logger.Debug("Component initialized", zap.String("component", step.name))
	}

	c.ready.Store(true)
	c.logger.Info("Container started", zap.Int("closers", len(c.closers)))
	return nil
}

type initStep struct {
	name string
	run  func() error
}

type closer struct {
	name  string
	close func() error
}

// onClose registers a release to run at teardown, newest first
func (c *Container) onClose(name string, fn func() error) {
	c.closers = append(c.closers, closer{name: name, close: fn})
}

// Close shuts every component down in reverse start order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Swap(true) {
		return fmt.Errorf("container already closed")
	}
	c.ready.Store(false)

	c.logger.Info("Closing container")
	return c.teardown()
}

func (c *Container) teardown() error {
	if c.cancel != nil {
		c.cancel()
	}

	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		cl := c.closers[i]
		if err := cl.close(); err != nil {
			c.logger.Error("Failed to close component", zap.String("component", cl.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("close %s: %w", cl.name, err))
			continue
		}
		c.logger.Debug("Component closed", zap.String("component", cl.name))
	}
	c.closers = nil

	return errors.Join(errs...)
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health probes the database and reports the worker and dispatcher state.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{Overall: true, Components: make(map[string]ComponentHealth)}
	report := func(name string, healthy bool, msg string) {
		status.Components[name] = ComponentHealth{Healthy: healthy, Message: msg}
		if !healthy {
			status.Overall = false
		}
	}

	switch {
	case c.db == nil:
		report("database", false, "not initialized")
	default:
		if err := c.db.Health(ctx); err != nil {
			report("database", false, err.Error())
		} else {
			report("database", true, "")
		}
	}

	switch {
	case c.workers == nil:
		report("workers", false, "not initialized")
	case !c.workers.Running():
		report("workers", false, "stopped")
	default:
		var failed []string
		for _, w := range c.workers.Status() {
			if w.State != worker.StateRunning {
				failed = append(failed, fmt.Sprintf("%s %s", w.Name, w.State))
			}
		}
		report("workers", len(failed) == 0, strings.Join(failed, ", "))
	}

	if c.dispatcher == nil {
		report("dispatcher", false, "not initialized")
	} else {
		report("dispatcher", true, "")
	}
	return status
}

// healthCheck backs GET /health
func (c *Container) healthCheck(ctx context.Context) error {
	status := c.Health(ctx)
	if status.Overall {
		return nil
	}

	names := make([]string, 0, len(status.Components))
	for name, component := range status.Components {
		if !component.Healthy {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	name := names[0]
	return fmt.Errorf("%s unhealthy: %s", name, status.Components[name].Message)
}

// initDatabase opens the database and builds all repositories.
func (c *Container) initDatabase() error {
	dbBundle, err := ProvideDatabase(c.ctx, &c.config.Database, c.logger)
	if err != nil {
		return err
	}
	c.db = dbBundle.DB
	c.txManager = dbBundle.TransactionMgr
	c.onClose("database", c.db.Close)

	repos, err := ProvideRepositories(c.db.DB, c.logger)
	if err != nil {
		return err
	}
	c.repositories = repos
	return nil
}

// initExternal builds metrics and the chat sender.
func (c *Container) initExternal() error {
	c.metrics = ProvideMetrics(&c.config.Metrics)

	sender, err := ProvideMessageSender(&c.config.Lark, c.logger)
	if err != nil {
		return err
	}
	c.sender = sender
	return nil
}

// initDispatcher creates the dispatcher and registers event handlers.
func (c *Container) initDispatcher() error {
	d, err := ProvideDispatcher(c.sender, c.metrics, c.logger)
	if err != nil {
		return err
	}
	c.dispatcher = d
	c.onClose("dispatcher", d.Close)
	return nil
}

// initServices initializes all application services using providers.
func (c *Container) initServices() error {
	services, err := ProvideServices(&ServiceDeps{
		Repos:      c.repositories,
		TxManager:  c.txManager,
		Dispatcher: c.dispatcher,
		Logger:     c.logger,
	})
	if err != nil {
		return err
	}
	c.services = services
	return nil
}

// initServer builds the HTTP server.
func (c *Container) initServer() error {
	server, err := ProvideHTTPServer(&c.config.Server, c.services, c.metrics, c.healthCheck, c.logger)
	if err != nil {
		return err
	}
	c.server = server
	c.onClose("http server", server.Stop)
	return nil
}

// initWorkers initializes and starts all background workers.
func (c *Container) initWorkers() error {
	workers, err := ProvideWorkers(&c.config.Drafts, c.services.Draft, c.metrics, c.logger)
	if err != nil {
		return err
	}
	c.workers = workers

	if err := workers.Start(c.ctx); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}
	c.onClose("workers", workers.Stop)
	return nil
}

// Getters for accessing container components

// DB returns the transaction manager.
func (c *Container) DB() port.TransactionManager {
	return c.txManager
}

// Repositories returns all repositories.
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}

// Dispatcher returns the event dispatcher.
func (c *Container) Dispatcher() dispatcher.Dispatcher {
	return c.dispatcher
}

// Services returns all application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Server returns the HTTP server.
func (c *Container) Server() *apphttp.Server {
	return c.server
}

// Metrics returns the collectors, or nil when disabled.
func (c *Container) Metrics() *metrics.Metrics {
	return c.metrics
}

// Workers returns the worker supervisor.
func (c *Container) Workers() *worker.Supervisor {
	return c.workers
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *Config {
	return c.config
}

// zapLoggerAdapter adapts zap.Logger to the minimal Info/Error logger
// interfaces of services, the dispatcher and the HTTP layer.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		if err, isErr := keysAndValues[i+1].(error); isErr {
			fields = append(fields, zap.NamedError(key, err))
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
