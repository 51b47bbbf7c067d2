package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/carebook/clinic-api/config"
	"github.com/carebook/clinic-api/internal/repository/postgres"
	"github.com/carebook/clinic-api/pkg/logger"
	"github.com/carebook/clinic-api/pkg/messaging/redis"
	"github.com/carebook/clinic-api/pkg/metrics"
	"github.com/carebook/clinic-api/pkg/worker"
)

// envOverrides lets deployments tune the relay without editing the config
// file.
type envOverrides struct {
	BatchSize    int           `envconfig:"OUTBOX_BATCH_SIZE"`
	PollInterval time.Duration `envconfig:"OUTBOX_POLL_INTERVAL"`
	Channel      string        `envconfig:"OUTBOX_CHANNEL"`
	HealthAddr   string        `envconfig:"HEALTH_ADDR" default:":8081"`
}

func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load config")
	}

	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		log.Fatal(err, "failed to read environment overrides")
	}
	if env.BatchSize > 0 {
		cfg.Outbox.BatchSize = env.BatchSize
	}
	if env.PollInterval > 0 {
		cfg.Outbox.PollInterval = env.PollInterval
	}
	if env.Channel != "" {
		cfg.Outbox.Channel = env.Channel
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})
	if err != nil {
		log.Fatal(err, "failed to connect to redis")
	}
	defer broker.Close()

	processor := worker.NewOutboxProcessor(
		postgres.NewOutboxRepository(db),
		broker,
		worker.OutboxProcessorConfig{
			BatchSize:    cfg.Outbox.BatchSize,
			PollInterval: cfg.Outbox.PollInterval,
			Channel:      cfg.Outbox.Channel,
		},
		log,
		metrics.NewMetrics("clinic_worker"),
	)

	startHealthServer(env.HealthAddr, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down")
		cancel()
	}()

	go processor.CleanupLoop(ctx, 7*24*time.Hour, time.Hour)
	processor.Start(ctx)
}

func startHealthServer(addr string, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error(err, "health server failed")
		}
	}()
}
