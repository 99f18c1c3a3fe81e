package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"

	formhandler "github.com/werterpires/salt-in-forms-back-sub000/internal/form/handler"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/intake"
	formmetrics "github.com/werterpires/salt-in-forms-back-sub000/internal/form/metrics"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/pipeline"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/service"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/store"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/validation"
	httpapi "github.com/werterpires/salt-in-forms-back-sub000/internal/http"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/platform/config"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/platform/httpserver"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/platform/jwt"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/platform/logger"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/platform/metrics"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/platform/redis"
	rlmetrics "github.com/werterpires/salt-in-forms-back-sub000/internal/ratelimit/metrics"
	rlmiddleware "github.com/werterpires/salt-in-forms-back-sub000/internal/ratelimit/middleware"
	rlmodels "github.com/werterpires/salt-in-forms-back-sub000/internal/ratelimit/models"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/ratelimit/store/bucket"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/audit"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/audit/publisher"
	auditkafka "github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/audit/store/kafka"
	auditmemory "github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/audit/store/memory"
	auditpostgres "github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/audit/store/postgres"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/circuit"
)

// main wires dependencies, exposes the HTTP router and keeps the server
// lifecycle small. Business logic lives in internal/form.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	formMetrics := formmetrics.New(prometheus.DefaultRegisterer)
	p := pipeline.New(validation.NewRegistry())

	structureOpts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(formMetrics),
		service.WithPipeline(p),
	}
	intakeOpts := []intake.Option{
		intake.WithLogger(log),
		intake.WithMetrics(formMetrics),
	}
	health := map[string]httpapi.HealthCheck{}
	var limiterStore rlmiddleware.BucketStore = bucket.NewInMemoryBucketStore()

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		cache := store.NewRedisFrozenCache(redisClient.Client,
			store.WithFrozenTTL(cfg.Redis.FrozenTTL),
			store.WithFrozenBreaker(circuit.New("frozen-cache")))
		structureOpts = append(structureOpts, service.WithFrozenCache(cache))
		intakeOpts = append(intakeOpts, intake.WithFrozenMarker(cache))
		health["redis"] = redisClient.Health
		limiterStore = bucket.NewRedisBucketStore(redisClient.Client)
		log.Info("frozen-form cache and shared rate limits enabled")
	}

	var (
		structure *service.Service
		answers   *intake.Service
		auditLog  formhandler.AuditLog
		sinks     []audit.Sink
	)
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = openPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		health["postgres"] = db.PingContext

		auditStore := auditpostgres.New(db)
		auditLog, sinks = auditStore, append(sinks, auditStore)
	} else {
		auditStore := auditmemory.NewInMemoryStore()
		auditLog, sinks = auditStore, append(sinks, auditStore)
	}

	if len(cfg.Audit.KafkaBrokers) > 0 {
		sink, err := openAuditTopic(ctx, cfg.Audit)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		defer sink.Close()
		sinks = append(sinks, sink)
		health["kafka"] = sink.Ping
		log.Info("audit events mirrored to kafka", "topic", cfg.Audit.Topic)
	}

	pub := publisher.New(sinks,
		publisher.WithLogger(log),
		publisher.WithMetrics(publisher.NewMetrics(prometheus.DefaultRegisterer)),
		publisher.WithBufferSize(cfg.Audit.BufferSize))
	structureOpts = append(structureOpts, service.WithAuditor(pub))
	intakeOpts = append(intakeOpts, intake.WithAuditor(pub))

	if db != nil {
		pg := store.NewPostgres(db)
		structure = service.New(pg,
			store.NewPostgresTx(pg, cfg.TxTimeout, func(s *store.PostgresStore) service.Store { return s }),
			structureOpts...)
		answers = intake.New(pg,
			store.NewPostgresTx(pg, cfg.TxTimeout, func(s *store.PostgresStore) intake.Store { return s }),
			p, intakeOpts...)
		log.Info("using postgres store")
	} else {
		mem := store.NewInMemoryStore()
		structure = service.New(mem, service.NewAtomicTx[*store.InMemoryStore](mem, cfg.TxTimeout), structureOpts...)
		answers = intake.New(mem, intake.NewAtomicTx[*store.InMemoryStore](mem, cfg.TxTimeout), p, intakeOpts...)
		log.Warn("DATABASE_URL not set, using in-memory store")
	}

	limiter := rlmiddleware.New(limiterStore, log,
		rlmiddleware.WithDisabled(cfg.RateLimit.Disabled),
		rlmiddleware.WithMetrics(rlmetrics.New(prometheus.DefaultRegisterer)))

	router := httpapi.NewRouter(httpapi.Deps{
		Forms:       formhandler.New(structure, answers, log, formhandler.WithAuditLog(auditLog)),
		Tokens:      jwt.NewService(cfg.JWTSigningKey, cfg.AdminIssuer, cfg.AdminAudience),
		Logger:      log,
		Metrics:     metrics.New(prometheus.DefaultRegisterer),
		Gatherer:    prometheus.DefaultGatherer,
		Health:      health,
		PublicLimit: limiter.PerClient("answers", rlmodels.Policy{Limit: cfg.RateLimit.Answers, Window: cfg.RateLimit.Window}),
	})
	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting forms server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdown(srv, pub, log)
}

func openPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.ApplySchema(pingCtx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := auditpostgres.ApplySchema(pingCtx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func openAuditTopic(ctx context.Context, cfg config.AuditConfig) (*auditkafka.Sink, error) {
	sink, err := auditkafka.New(cfg.KafkaBrokers, cfg.Topic)
	if err != nil {
		return nil, err
	}
	topicCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sink.EnsureTopic(topicCtx, cfg.Partitions, 1); err != nil {
		sink.Close()
		return nil, err
	}
	return sink, nil
}

// shutdown stops accepting requests first so the publisher can drain every
// event the last requests emitted.
func shutdown(srv *http.Server, pub *publisher.Publisher, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	pub.Close(ctx)
}
