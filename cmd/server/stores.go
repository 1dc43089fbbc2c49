package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	anchorstore "spectra/internal/anchor/store"
	credstore "spectra/internal/credential/store"
	"spectra/internal/kyc/queue"
	kycstore "spectra/internal/kyc/store"
	"spectra/internal/platform/config"
	"spectra/internal/platform/database"
	"spectra/internal/platform/health"
	"spectra/internal/platform/kafka"
	"spectra/internal/platform/kafka/producer"
	rlmiddleware "spectra/internal/ratelimit/middleware"
	rlmodels "spectra/internal/ratelimit/models"
	rlstore "spectra/internal/ratelimit/store"
	redisclient "spectra/internal/platform/redis"
	"spectra/migrations"
	audit "spectra/pkg/platform/audit"
	"spectra/pkg/platform/audit/publisher"
	"spectra/pkg/platform/audit/sink"
	auditmemory "spectra/pkg/platform/audit/store/memory"
	auditpostgres "spectra/pkg/platform/audit/store/postgres"
	"spectra/pkg/platform/circuit"
)

// infra holds the optional external backends. Nil fields mean the
// in-process fallback is in use.
type infra struct {
	pool     *database.Pool
	redis    *redisclient.Client
	producer *producer.Producer
}

func (i *infra) Close(logger *slog.Logger) {
	if i.producer != nil {
		if err := i.producer.Close(); err != nil {
			logger.Error("failed to close kafka producer", "error", err)
		}
	}
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			logger.Error("failed to close redis", "error", err)
		}
	}
	if err := i.pool.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
	}
}

func connect(ctx context.Context, cfg config.Server, reg prometheus.Registerer, checks *health.Handler, logger *slog.Logger) (*infra, error) {
	out := &infra{}

	pool, err := database.New(ctx, database.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	if pool != nil {
		applied, err := database.Migrate(ctx, pool.DB(), migrations.FS)
		if err != nil {
			_ = pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("database ready", "migrations_applied", len(applied))
		checks.RegisterCheck("database", pool.Health)
		out.pool = pool
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
	}

	client, err := redisclient.New(ctx, cfg.Redis, reg)
	if err != nil {
		out.Close(logger)
		return nil, err
	}
	if client != nil {
		checks.RegisterCheck("redis", client.Health)
		out.redis = client
	} else {
		logger.Warn("REDIS_URL not set, verification tasks are kept in memory")
	}

	if cfg.Kafka.Brokers != "" {
		p, err := producer.New(producer.DefaultConfig(cfg.Kafka.Brokers), logger)
		if err != nil {
			out.Close(logger)
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		checks.RegisterCheck("kafka", kafka.NewHealthChecker(cfg.Kafka.Brokers).Check)
		out.producer = p
	}
	return out, nil
}

type stores struct {
	users       kycstore.UserStore
	submissions kycstore.SubmissionStore
	credentials credstore.Store
	anchors     anchorstore.Store
	audit       audit.Store
	tasks       queue.Queue

	limiter       rlmiddleware.Limiter
	memoryLimiter *rlstore.InMemoryStore
}

func buildStores(in *infra) stores {
	var s stores
	if in.pool != nil {
		db := in.pool.DB()
		s.users = kycstore.NewPostgresUsers(db)
		s.submissions = kycstore.NewPostgresSubmissions(db)
		s.credentials = credstore.NewPostgres(db)
		s.anchors = anchorstore.NewPostgres(db)
		s.audit = auditpostgres.New(db)
	} else {
		s.users = kycstore.NewInMemoryUsers()
		s.submissions = kycstore.NewInMemorySubmissions()
		s.credentials = credstore.NewInMemory()
		s.anchors = anchorstore.NewInMemory()
		s.audit = auditmemory.NewInMemoryStore()
	}
	if in.redis != nil {
		s.tasks = queue.NewRedis(in.redis.Client, queue.DefaultRedisKey)
		s.limiter = rlstore.NewRedis(in.redis.Client, rlstore.DefaultRedisPrefix)
	} else {
		s.tasks = queue.NewInMemory()
		s.memoryLimiter = rlstore.NewInMemory()
		s.limiter = s.memoryLimiter
	}
	return s
}

func newAuditPublisher(s stores, in *infra, cfg config.Server, logger *slog.Logger) *publisher.Publisher {
	opts := []publisher.Option{
		publisher.WithAsyncBuffer(1024),
		publisher.WithLogger(logger),
	}
	if in.producer != nil {
		kafkaSink := sink.NewKafkaSink(in.producer, cfg.Kafka.AuditTopic)
		breaker := circuit.New("kafka_audit", circuit.WithCooldown(30*time.Second))
		opts = append(opts, publisher.WithSink(sink.NewGuarded(kafkaSink, breaker, logger)))
	}
	return publisher.New(s.audit, opts...)
}

func rateLimitPolicies(cfg config.RateLimitConfig) map[rlmodels.EndpointClass]rlmodels.Policy {
	return map[rlmodels.EndpointClass]rlmodels.Policy{
		rlmodels.ClassSubmit: {Limit: cfg.SubmitPerMinute, Window: time.Minute},
		rlmodels.ClassVerify: {Limit: cfg.VerifyPerMinute, Window: time.Minute},
		rlmodels.ClassRead:   {Limit: cfg.ReadPerMinute, Window: time.Minute},
	}
}
