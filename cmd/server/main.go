package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"marksman/internal/audit"
	auditkafka "marksman/internal/audit/kafka"
	"marksman/internal/compliance"
	compliancehandler "marksman/internal/compliance/handler"
	"marksman/internal/platform/config"
	"marksman/internal/platform/httpserver"
	"marksman/internal/platform/logger"
	platformredis "marksman/internal/platform/redis"
	"marksman/internal/qualification"
	qualificationhandler "marksman/internal/qualification/handler"
	qualificationmetrics "marksman/internal/qualification/metrics"
	"marksman/internal/routing"
	"marksman/internal/routing/claimlease"
	routinghandler "marksman/internal/routing/handler"
	routingmetrics "marksman/internal/routing/metrics"
	routingpostgres "marksman/internal/routing/store/postgres"
	httptransport "marksman/internal/transport/http"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal domain packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	healthChecks := map[string]httptransport.HealthCheck{}

	// Routing store: postgres when configured, in-memory otherwise.
	var routingStore routing.Store = routing.NewInMemoryStore()
	if cfg.PostgresURL != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Error("postgres connect failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		store := routingpostgres.New(pool)
		if err := store.Migrate(ctx); err != nil {
			log.Error("postgres migrate failed", "error", err)
			os.Exit(1)
		}
		routingStore = store
		healthChecks["postgres"] = pool.Ping
	}

	var lease routing.ClaimLease
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		lease = claimlease.New(redisClient.Client, cfg.ClaimLeaseTTL)
		healthChecks["redis"] = redisClient.Health
	}

	// Audit trail: always stored in-process; fanned out to Kafka when
	// brokers are configured.
	auditStore := audit.NewInMemoryStore()
	var outbox chan audit.Event
	var sink audit.Sink
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := auditkafka.New(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("kafka connect failed", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		sink = kafkaSink
		outbox = make(chan audit.Event, 256)
	}
	auditor := audit.NewPublisher(auditStore, outbox)

	routingService := routing.NewService(routingStore, lease, auditor, routingmetrics.New(), log)

	evaluator := qualification.NewEvaluator(cfg.Sustainment)
	aggregator := compliance.NewAggregator()

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:        log,
		JWTSigningKey: cfg.JWTSigningKey,
		Qualification: qualificationhandler.New(evaluator, aggregator, log, qualificationmetrics.New()),
		Compliance:    compliancehandler.New(aggregator, log),
		Routing:       routinghandler.New(routingService, log),
		HealthChecks:  healthChecks,
	})
	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting marksman", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if sink != nil {
		worker := audit.NewWorker(sink, outbox, log)
		group.Go(func() error {
			if err := worker.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
