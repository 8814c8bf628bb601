package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"deales/internal/account/handler"
	"deales/internal/account/service"
	"deales/internal/account/store"
	"deales/internal/audit"
	"deales/internal/auth/store/revocation"
	httpapi "deales/internal/http"
	jwttoken "deales/internal/jwt_token"
	"deales/internal/platform/config"
	"deales/internal/platform/httpserver"
	"deales/internal/platform/logger"
	"deales/internal/platform/metrics"
	"deales/internal/platform/postgres"
	"deales/internal/platform/redis"
	"deales/internal/ratelimit/authlockout"
)

const revocationPurgeInterval = 10 * time.Minute

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// infra holds the optional backing services. Nil fields fall back to memory.
type infra struct {
	db    *postgres.DB
	redis *redis.Client
	kafka *audit.KafkaStore
}

func (i infra) close() {
	if i.kafka != nil {
		i.kafka.Close()
	}
	if i.redis != nil {
		_ = i.redis.Close()
	}
	if i.db != nil {
		i.db.Close()
	}
}

func connect(ctx context.Context, cfg config.Server, log *slog.Logger) (infra, error) {
	var in infra
	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return in, err
	}
	in.db = db
	if db != nil {
		if err := db.Migrate(ctx); err != nil {
			in.close()
			return infra{}, err
		}
		log.InfoContext(ctx, "postgres connected")
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		in.close()
		return infra{}, err
	}
	in.redis = rc
	if rc != nil {
		log.InfoContext(ctx, "redis connected")
	}

	if len(cfg.Kafka.Brokers) > 0 {
		ks, err := audit.NewKafkaStore(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			in.close()
			return infra{}, err
		}
		in.kafka = ks
		if err := ks.EnsureTopic(ctx, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
			in.close()
			return infra{}, err
		}
		log.InfoContext(ctx, "kafka audit sink ready", "topic", cfg.Kafka.AuditTopic)
	}
	return in, nil
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	in, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer in.close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var accounts service.Store = store.NewInMemoryStore()
	if in.db != nil {
		accounts = store.NewPostgres(in.db.Pool)
	}

	var (
		revocations service.RevocationList = revocation.NewMemoryTRL(time.Now)
		purger      *revocation.PostgresTRL
	)
	switch {
	case in.redis != nil:
		revocations = revocation.NewRedisTRL(in.redis.Client)
	case in.db != nil:
		purger = revocation.NewPostgresTRL(in.db.SQL)
		revocations = purger
	}

	var lockoutStore authlockout.Store = authlockout.NewInMemoryStore(time.Now)
	if in.redis != nil {
		lockoutStore = authlockout.NewRedisStore(in.redis.Client)
	}
	lockout, err := authlockout.New(lockoutStore,
		authlockout.WithLogger(log),
		authlockout.WithConfig(authlockout.Config{
			AttemptsPerWindow: cfg.Lockout.MaxAttempts,
			Window:            cfg.Lockout.Window,
		}),
	)
	if err != nil {
		return err
	}

	var auditStore audit.Store = audit.NewInMemoryStore()
	if in.kafka != nil {
		auditStore = in.kafka
	}
	publisher := audit.NewPublisher(cfg.AuditBuffer, audit.WithPublisherLogger(log))
	worker := audit.NewWorker(auditStore, publisher.Inbox(), log)

	svc, err := service.New(accounts,
		jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience),
		revocations,
		service.WithLogger(log),
		service.WithAuditPublisher(publisher),
		service.WithMetrics(m),
		service.WithTokenTTL(cfg.AccessTokenTTL),
		service.WithLoginLockout(lockout),
	)
	if err != nil {
		return err
	}

	var checks []handler.Option
	if in.db != nil {
		checks = append(checks, handler.WithHealthCheck("postgres", in.db.Health))
	}
	if in.redis != nil {
		checks = append(checks, handler.WithHealthCheck("redis", in.redis.Health))
	}
	if in.kafka != nil {
		checks = append(checks, handler.WithHealthCheck("kafka", in.kafka.Ping))
	}

	router := httpapi.NewRouter(httpapi.Config{
		Logger:         log,
		Metrics:        m,
		AllowedOrigins: cfg.AllowedOrigins,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	}, handler.New(svc, log, checks...))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(gctx, httpserver.New(cfg.Addr, router), log)
	})
	g.Go(func() error {
		return worker.Run(gctx)
	})
	if purger != nil {
		g.Go(func() error {
			return purgeRevocations(gctx, purger, log)
		})
	}

	log.InfoContext(ctx, "deales server started",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"postgres", in.db != nil,
		"redis", in.redis != nil,
		"kafka", in.kafka != nil,
	)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("deales server stopped", "audit_dropped", publisher.Dropped())
	return nil
}

func purgeRevocations(ctx context.Context, trl *revocation.PostgresTRL, log *slog.Logger) error {
	ticker := time.NewTicker(revocationPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := trl.PurgeExpired(ctx)
			if err != nil {
				log.WarnContext(ctx, "revocation purge failed", "error", err)
				continue
			}
			if n > 0 {
				log.InfoContext(ctx, "purged expired revocations", "count", n)
			}
		}
	}
}
