// Command server runs the marketplace review service: seller verification,
// listing moderation, and the admin dashboard stats.
//
// Storage is selected by configuration. With POSTGRES_URL set the stores are
// durable; without it everything runs in memory, which is enough for local
// development and the test suites. REDIS_URL persists the review cursor,
// KAFKA_BROKERS fans the audit trail out to a topic.
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

	"restyle/internal/jwttoken"
	moderationhandler "restyle/internal/moderation/handler"
	moderationservice "restyle/internal/moderation/service"
	moderationstore "restyle/internal/moderation/store"
	"restyle/internal/platform/config"
	"restyle/internal/platform/httpserver"
	"restyle/internal/platform/logger"
	"restyle/internal/platform/metrics"
	"restyle/internal/platform/postgres"
	platformredis "restyle/internal/platform/redis"
	statshandler "restyle/internal/stats/handler"
	statsservice "restyle/internal/stats/service"
	httptransport "restyle/internal/transport/http"
	verificationhandler "restyle/internal/verification/handler"
	verificationservice "restyle/internal/verification/service"
	verificationstore "restyle/internal/verification/store"
	"restyle/pkg/platform/audit/publisher"
	auditmem "restyle/pkg/platform/audit/store/memory"
	auditpg "restyle/pkg/platform/audit/store/postgres"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	db, err := postgres.Open(cfg.PostgresURL)
	if err != nil {
		log.Error("postgres unavailable", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Storage selection: Postgres when configured, memory otherwise.
	var (
		accounts verificationservice.AccountStore
		listings moderationservice.ListingStore
		cursor   moderationservice.CursorStore
	)
	if db != nil {
		accounts = verificationstore.NewPostgres(db)
		listings = moderationstore.NewPostgres(db)
	} else {
		accounts = verificationstore.NewMemory()
		listings = moderationstore.NewMemory()
	}
	if redisClient != nil {
		cursor = moderationstore.NewRedisCursor(redisClient.Client)
	} else {
		cursor = moderationstore.NewMemoryCursor()
	}

	auditPublisher, closeAudit, err := buildAuditPublisher(cfg, db, log)
	if err != nil {
		log.Error("audit pipeline unavailable", "error", err)
		os.Exit(1)
	}
	defer closeAudit()

	m := metrics.New()
	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)

	verification := verificationservice.New(accounts,
		verificationservice.WithLogger(log),
		verificationservice.WithAuditPublisher(auditPublisher),
		verificationservice.WithMetrics(m),
	)
	moderation := moderationservice.New(listings, cursor,
		moderationservice.WithLogger(log),
		moderationservice.WithAuditPublisher(auditPublisher),
		moderationservice.WithMetrics(m),
	)
	stats := statsservice.New(accounts, listings)

	router := httptransport.NewRouter(httptransport.Deps{
		Handlers: []httptransport.Registrar{
			verificationhandler.New(verification, log, m, jwtService),
			moderationhandler.New(moderation, log, m, jwtService),
			statshandler.New(stats, log, m, jwtService),
		},
		Metrics: m,
		Checks:  healthChecks(db, redisClient),
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting review service", "addr", cfg.Addr,
			"postgres", db != nil, "redis", redisClient != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// buildAuditPublisher chains the audit sinks: a store (Postgres outbox when
// available, memory otherwise) always records, and Kafka fans out when
// brokers are configured. Without Kafka the trail is mirrored to the log.
func buildAuditPublisher(cfg config.Server, db *sql.DB, log *slog.Logger) (moderationservice.AuditPublisher, func(), error) {
	var next publisher.Publisher = publisher.NewLogPublisher(log)
	closeFn := func() {}

	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := publisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaAuditTopic)
		if err != nil {
			return nil, nil, err
		}
		next = kafka
		closeFn = kafka.Close
	}

	if db != nil {
		return publisher.NewStorePublisher(auditpg.New(db), next), closeFn, nil
	}
	return publisher.NewStorePublisher(auditmem.NewInMemoryStore(), next), closeFn, nil
}

func healthChecks(db *sql.DB, redisClient *platformredis.Client) map[string]httptransport.HealthChecker {
	checks := map[string]httptransport.HealthChecker{}
	if db != nil {
		checks["postgres"] = dbHealth{db}
	}
	if redisClient != nil {
		checks["redis"] = redisClient
	}
	return checks
}

type dbHealth struct {
	db *sql.DB
}

func (h dbHealth) Health(ctx context.Context) error {
	return h.db.PingContext(ctx)
}
