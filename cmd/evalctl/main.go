package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"os/user"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/AchilleasB/evaluation-client/internal/adapters/handler"
	"github.com/AchilleasB/evaluation-client/internal/adapters/messaging"
	"github.com/AchilleasB/evaluation-client/internal/adapters/metrics"
	"github.com/AchilleasB/evaluation-client/internal/adapters/session"
	"github.com/AchilleasB/evaluation-client/internal/adapters/transport"
	"github.com/AchilleasB/evaluation-client/internal/adapters/tui"
	"github.com/AchilleasB/evaluation-client/internal/cli"
	"github.com/AchilleasB/evaluation-client/internal/clock"
	"github.com/AchilleasB/evaluation-client/internal/config"
	"github.com/AchilleasB/evaluation-client/internal/core/ports"
	"github.com/AchilleasB/evaluation-client/internal/core/services"
	"github.com/AchilleasB/evaluation-client/internal/logging"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	global := pflag.NewFlagSet("evalctl", pflag.ContinueOnError)
	global.SetInterspersed(false)
	configPath := global.String("config", "", "YAML configuration file (default $EVALCTL_CONFIG)")
	assumeYes := global.BoolP("yes", "y", false, "answer yes to every confirmation")
	if err := global.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	args := global.Args()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration: %v\n", err)
		return 2
	}

	// The respondent form owns the screen, so it logs to the file only.
	console := os.Stderr
	if len(args) > 0 && args[0] == "evaluate" {
		console = nil
	}
	logger, closeLog, err := logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File, Console: console})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		return 2
	}
	defer closeLog()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	store, redisClient := newSessionStore(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	breaker := config.NewCircuitBreaker("Evaluation-API", logger, transport.CountsAsSuccess)
	client := transport.New(transport.Options{
		BaseURL:  cfg.APIBaseURL,
		Timeout:  cfg.RequestTimeout,
		Store:    store,
		Notifier: cli.Notifier{W: os.Stderr},
		Breaker:  breaker,
		Metrics:  m,
		Logger:   logger,
	})

	publisher, closePublisher := newAuditPublisher(cfg, logger)
	defer closePublisher()
	auditor := services.NewAuditor(publisher, store, clock.Real(), logger)

	if cfg.MetricsAddress != "" {
		health := handler.NewHealthHandler(handler.HealthOptions{
			APIBaseURL: cfg.APIBaseURL,
			Redis:      redisClient,
			Breaker:    breaker,
			Version:    version,
			Logger:     logger,
		})
		go handler.Serve(ctx, cfg.MetricsAddress, handler.NewMux(health, registry), logger)
	}

	app := &cli.App{
		Guard:          services.NewGuard(store, clock.Real(), m, logger),
		Auth:           services.NewAuthService(client, store, logger),
		Registration:   services.NewRegistrationService(client),
		Accounts:       services.NewAccountController(client, auditor, logger),
		Departments:    services.NewDepartmentController(client, auditor, logger),
		Questionnaires: services.NewQuestionnaireController(client, auditor, logger),
		Responses:      services.NewResponseController(client, logger),
		Dashboard:      services.NewDashboardService(client, logger),
		Assistant:      services.NewAssistantService(client),
		Evaluate: func(ctx context.Context) error {
			flow := services.NewSubmissionFlow(client, clock.Real(), m, logger)
			return tui.Run(ctx, flow, logger)
		},
		Prompter: cli.NewPrompter(os.Stdin, os.Stderr, *assumeYes),
		Out:      os.Stdout,
		Logger:   logger,
	}

	if err := app.Root().Execute(ctx, args); err != nil {
		logger.Debug("command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, cli.Message(err))
		return 1
	}
	return 0
}

// newSessionStore builds the configured backend. The Redis client is
// returned so the readiness probe can ping it.
func newSessionStore(cfg *config.Config) (ports.SessionStore, *redis.Client) {
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Session.RedisAddress,
			Password: cfg.Session.RedisPassword,
			DB:       cfg.Session.RedisDB,
		})
		sessionID := cfg.Session.ID
		if sessionID == "" {
			sessionID = session.StableSessionID(currentUser(), hostname(), cfg.APIBaseURL)
		}
		return session.NewRedisStore(client, cfg.Session.Prefix, sessionID, cfg.Session.TTL), client
	case config.SessionBackendMemory:
		return session.NewMemoryStore(), nil
	default:
		return session.NewFileStore(cfg.Session.File), nil
	}
}

// newAuditPublisher connects to RabbitMQ when configured. A broker that
// cannot be reached disables auditing rather than the command.
func newAuditPublisher(cfg *config.Config, logger *zap.Logger) (ports.AuditPublisher, func()) {
	if cfg.Audit.RabbitMQURL == "" {
		return messaging.Discard{}, func() {}
	}
	broker, err := messaging.NewRabbitMQBroker(cfg.Audit.RabbitMQURL, cfg.Audit.QueueName, logger)
	if err != nil {
		logger.Warn("audit publishing disabled", zap.Error(err))
		return messaging.Discard{}, func() {}
	}
	return broker, func() {
		if err := broker.Close(); err != nil {
			logger.Warn("closing audit broker", zap.Error(err))
		}
	}
}

func currentUser() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return os.Getenv("USER")
}

func hostname() string {
	name, _ := os.Hostname()
	return name
}
