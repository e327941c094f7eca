package main

import (
	"fmt"
	"log/slog"
	"time"

	contentservice "proofwall/internal/content/service"
	contentstore "proofwall/internal/content/store"
	"proofwall/internal/ledger/metrics"
	"proofwall/internal/ledger/publisher"
	ledgerservice "proofwall/internal/ledger/service"
	ledgerstore "proofwall/internal/ledger/store"
	"proofwall/internal/platform/config"
	"proofwall/internal/platform/database"
	"proofwall/internal/platform/health"
	"proofwall/internal/platform/kafka/producer"
	redisclient "proofwall/internal/platform/redis"
	"proofwall/migrations"
)

const producerCloseTimeout = 10 * time.Second

// backends holds the selected stores plus whatever connections they need closed.
type backends struct {
	content contentservice.Store
	ledger  ledgerservice.Store
	redis   *redisclient.Client
	closers []func() error
}

func (b *backends) close(log *slog.Logger) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			log.Warn("close failed", "error", err)
		}
	}
}

func openBackends(cfg config.Server, log *slog.Logger, probes *health.Handler) (*backends, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		if err := database.Migrate(migrations.FS, cfg.Database.URL, log); err != nil {
			return nil, err
		}
		pool, err := database.New(cfg.Database)
		if err != nil {
			return nil, err
		}
		probes.RegisterCheck("postgres", pool.Health)
		return &backends{
			content: contentstore.NewPostgres(pool.DB()),
			ledger:  ledgerstore.NewPostgres(pool.DB()),
			closers: []func() error{pool.Close},
		}, nil

	case config.BackendRedis:
		client, err := redisclient.New(cfg.Redis)
		if err != nil {
			return nil, err
		}
		probes.RegisterCheck("redis", client.Health)
		return &backends{
			content: contentstore.NewRedis(client.Client),
			ledger:  ledgerstore.NewRedis(client.Client),
			redis:   client,
			closers: []func() error{client.Close},
		}, nil

	case config.BackendMemory:
		log.Warn("using in-memory stores; state is lost on restart")
		return &backends{
			content: contentstore.NewInMemory(),
			ledger:  ledgerstore.NewInMemory(),
		}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// newPublisher returns nil when Kafka is not configured.
func newPublisher(cfg config.KafkaConfig, log *slog.Logger, m *metrics.Metrics, probes *health.Handler, b *backends) (ledgerservice.Publisher, error) {
	p, err := producer.New(cfg, log)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	probes.RegisterOptional("kafka", p.Health)
	b.closers = append(b.closers, func() error { return p.Close(producerCloseTimeout) })

	log.Info("publishing access grants", "topic", cfg.GrantsTopic)
	return publisher.NewKafka(p, cfg.GrantsTopic,
		publisher.WithLogger(log),
		publisher.WithMetrics(m),
	), nil
}
