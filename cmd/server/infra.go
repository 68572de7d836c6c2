package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"coldchain/internal/platform/config"
	"coldchain/internal/platform/kafka"
	"coldchain/internal/platform/postgres"
	"coldchain/internal/platform/redis"
	"coldchain/internal/supplychain/events"
	"coldchain/internal/supplychain/lock"
	"coldchain/internal/supplychain/metrics"
	"coldchain/internal/supplychain/service"
	"coldchain/internal/supplychain/store"
	dErrors "coldchain/pkg/domain-errors"
	"coldchain/pkg/platform/circuit"
)

const (
	eventBuffer      = 4096
	topicPartitions  = 6
	topicReplication = 1
)

type engineStore interface {
	service.Store
	Ping(ctx context.Context) error
}

// infra holds the backends chosen from configuration.
type infra struct {
	log       *slog.Logger
	store     engineStore
	locker    lock.Locker
	publisher *events.Publisher

	db    *sql.DB
	redis *redis.Client
	kafka *kgo.Client
}

func buildInfra(ctx context.Context, cfg config.Server, log *slog.Logger, m *metrics.Metrics) (*infra, error) {
	in := &infra{log: log}

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}
	if db != nil {
		in.db = db
		if err := store.EnsureSchema(ctx, db); err != nil {
			in.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		in.store = store.NewPostgres(db)
		log.Info("entity store: postgres")
	} else {
		in.store = store.NewInMemory()
		log.Info("entity store: in-memory")
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		in.Close()
		return nil, err
	}
	if rc != nil {
		in.redis = rc
		in.locker = lock.NewRedisLocker(rc.Client,
			lock.WithLease(cfg.Engine.LockLease),
			lock.WithRetryInterval(cfg.Engine.LockRetry),
		)
		log.Info("locker: redis")
	} else {
		in.locker = lock.NewKeyedMutex()
		log.Info("locker: in-process")
	}

	history := events.NewInMemoryStore()
	kc, err := kafka.NewClient(cfg.Kafka)
	if err != nil {
		in.Close()
		return nil, err
	}
	if kc != nil {
		in.kafka = kc
		if err := kafka.EnsureTopic(ctx, kc, cfg.Kafka.Topic, topicPartitions, topicReplication); err != nil {
			in.Close()
			return nil, err
		}
		sink := events.NewGuardedSink(events.NewKafkaSink(kc, cfg.Kafka.Topic),
			circuit.New("kafka", circuit.WithFailureThreshold(5), circuit.WithCooldown(10*time.Second)), log)
		in.publisher = events.NewPublisher(sink,
			events.WithHistory(history),
			events.WithAsyncBuffer(eventBuffer),
			events.WithLogger(log),
			events.WithMetrics(m),
		)
		log.Info("event sink: kafka", "topic", cfg.Kafka.Topic)
	} else {
		in.publisher = events.NewPublisher(history, events.WithLogger(log), events.WithMetrics(m))
		log.Info("event sink: in-memory")
	}
	return in, nil
}

func (in *infra) seed(ctx context.Context, path string) error {
	n, err := store.LoadSeed(ctx, path, in.store)
	if err != nil {
		return err
	}
	in.log.Info("participants loaded", "path", path, "count", n)
	return nil
}

func (in *infra) health(ctx context.Context) error {
	if err := in.store.Ping(ctx); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "entity store unavailable")
	}
	if in.redis != nil {
		if err := in.redis.Health(ctx); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "redis unavailable")
		}
	}
	return nil
}

// Close drains pending events before closing the clients they depend on.
func (in *infra) Close() {
	if in.publisher != nil {
		in.publisher.Close()
	}
	if in.kafka != nil {
		in.kafka.Close()
	}
	if in.redis != nil {
		_ = in.redis.Close()
	}
	if in.db != nil {
		_ = in.db.Close()
	}
}
