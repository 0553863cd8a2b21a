package cli

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"

	"github.com/garyjia/order-intake/internal/application/workflow"
	"github.com/garyjia/order-intake/internal/config"
	"github.com/garyjia/order-intake/internal/domain/wizard"
	"github.com/garyjia/order-intake/internal/infrastructure/external/orderapi"
	"github.com/garyjia/order-intake/internal/infrastructure/metrics"
	"github.com/garyjia/order-intake/pkg/utils"
)

const pushJob = "submit_order"

// runtime is everything one command invocation needs
type runtime struct {
	opts    *RootOptions
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	client  *orderapi.Client
	userID  string
}

// newRuntime loads configuration and builds the order service client
func newRuntime(opts *RootOptions, stderr io.Writer) (*runtime, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load configuration", err)
	}
	if opts.BaseURL != "" {
		cfg.Client.BaseURL = opts.BaseURL
	}

	userID := opts.UserID
	if userID == "" {
		userID = cfg.Client.OwnerID
	}

	logger := zap.NewNop()
	if opts.Verbose {
		logger, err = utils.NewLogger(utils.LoggerConfig{Level: "debug", Format: "console", Writer: stderr})
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "create logger", err)
		}
	}

	m := metrics.New(metrics.Config{Namespace: cfg.Metrics.Namespace})

	clientCfg := orderapi.DefaultConfig(cfg.Client.BaseURL)
	clientCfg.Timeout = cfg.Client.Timeout
	clientCfg.Breaker.MaxRequests = cfg.Client.Breaker.MaxRequests
	clientCfg.Breaker.Interval = cfg.Client.Breaker.Interval
	clientCfg.Breaker.Timeout = cfg.Client.Breaker.Timeout
	clientCfg.Breaker.FailureThreshold = cfg.Client.Breaker.FailureThreshold

	client := orderapi.NewClient(clientCfg, logger, orderapi.WithStateListener(m.SetCircuitBreakerState))

	return &runtime{
		opts:    opts,
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		client:  client,
		userID:  userID,
	}, nil
}

// newSession wires a wizard session to the order service
func (r *runtime) newSession(mode wizard.Mode, orderID int64) (*workflow.Session, error) {
	log := &kvLogger{sugar: r.logger.Sugar()}

	drafts := workflow.NewDraftSynchronizer(r.client, r.userID, log)
	steps := workflow.NewStepCommitter(r.client, log)
	finalizer := workflow.NewOrderFinalizer(r.client, r.client, steps, drafts, log,
		workflow.WithRecorder(r.metrics))

	return workflow.NewSession(workflow.SessionConfig{
		Mode:    mode,
		OrderID: orderID,
		UserID:  r.userID,
	}, workflow.SessionDeps{
		Drafts:    drafts,
		Steps:     steps,
		Finalizer: finalizer,
		Orders:    r.client,
		Logger:    log,
	})
}

// finish pushes collected metrics when a pushgateway is configured
func (r *runtime) finish() error {
	defer r.logger.Sync()

	if r.opts.Pushgateway == "" {
		return nil
	}
	if err := push.New(r.opts.Pushgateway, pushJob).Gatherer(r.metrics.Registry()).Push(); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}

// kvLogger adapts a sugared zap logger to the workflow Logger interface
type kvLogger struct {
	sugar *zap.SugaredLogger
}

func (l *kvLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l *kvLogger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}
