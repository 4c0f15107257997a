package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	bolt "go.etcd.io/bbolt"
	"golang.org/x/sync/errgroup"

	"nftgate/internal/collection"
	"nftgate/internal/platform/config"
	"nftgate/internal/platform/database"
	"nftgate/internal/platform/health"
	"nftgate/internal/platform/httpserver"
	"nftgate/internal/platform/kafka/producer"
	"nftgate/internal/platform/logger"
	"nftgate/internal/platform/redis"
	"nftgate/internal/registration/events"
	"nftgate/internal/registration/handler"
	regmetrics "nftgate/internal/registration/metrics"
	"nftgate/internal/registration/service"
	"nftgate/internal/registration/store"
	httptransport "nftgate/internal/transport/http"
	"nftgate/migrations"
	request "nftgate/pkg/platform/middleware/request"
)

const shutdownTimeout = 10 * time.Second

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// closer is released in reverse order of acquisition on shutdown.
type closer struct {
	name  string
	close func() error
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	log.Info("initializing nftgate",
		"addr", cfg.Server.Addr,
		"env", cfg.Server.Environment,
		"store_backend", cfg.Store.Backend,
		"status_cache", cfg.Redis.URL != "",
		"events", cfg.Kafka.Brokers != "",
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	regMetrics := regmetrics.New(reg)
	probes := health.New(cfg.Server.Environment, log)

	var closers []closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].close(); err != nil {
				log.Warn("close failed", "component", closers[i].name, "error", err)
			}
		}
	}()

	backend, err := openStore(ctx, cfg.Store, probes, &closers)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	var registrations service.Store = backend
	rc, err := redis.New(ctx, cfg.Redis, reg)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if rc != nil {
		closers = append(closers, closer{"redis", rc.Close})
		probes.RegisterCheck("redis", rc.Health)
		registrations = store.NewCached(backend, rc.Client,
			store.WithCacheTTL(cfg.Redis.CacheTTL),
			store.WithCacheMetrics(regMetrics),
			store.WithCacheLogger(log),
		)
		g.Go(func() error {
			rc.RunPoolStats(gctx, 15*time.Second)
			return nil
		})
	}

	var publisher service.EventPublisher = events.NoopPublisher{}
	if cfg.Kafka.Brokers != "" {
		p, err := producer.New(producer.DefaultConfig(cfg.Kafka.Brokers), log)
		if err != nil {
			return fmt.Errorf("kafka producer: %w", err)
		}
		closers = append(closers, closer{"kafka", p.Close})
		probes.RegisterCheck("kafka", p.Health)
		publisher = events.NewKafkaPublisher(p, cfg.Kafka.Topic)
	}

	info, err := collection.Build(cfg.Collection)
	if err != nil {
		return fmt.Errorf("collection: %w", err)
	}

	svc := service.New(registrations,
		service.WithLogger(log),
		service.WithEventPublisher(publisher),
		service.WithMetrics(regMetrics),
	)

	router := httptransport.NewRouter(httptransport.Config{
		Logger:         log,
		Metrics:        request.NewMetrics(reg),
		Gatherer:       reg,
		RequestTimeout: cfg.Server.RequestTimeout,
	}, probes, handler.New(svc, log), collection.NewHandler(info))

	srv := httpserver.New(cfg.Server.Addr, router)

	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// storeBackend is what every configured backend offers.
type storeBackend interface {
	store.Backend
	store.Counter
}

func openStore(ctx context.Context, cfg config.Store, probes *health.Handler, closers *[]closer) (storeBackend, error) {
	switch cfg.Backend {
	case config.BackendPostgres, config.BackendSQLServer:
		dbCfg := database.DefaultConfig()
		dbCfg.MaxOpenConns = cfg.MaxOpenConns
		dbCfg.MaxIdleConns = cfg.MaxIdleConns
		dbCfg.ConnMaxLifetime = cfg.ConnMaxLifetime
		dir := "."
		if cfg.Backend == config.BackendPostgres {
			dbCfg.URL = cfg.DatabaseURL
		} else {
			dbCfg.Driver = database.DriverSQLServer
			dbCfg.URL = database.SQLServerURL(database.SQLServerParams(cfg.SQLServer))
			dir = migrations.SQLServerDir
		}

		pool, err := database.New(ctx, dbCfg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.Backend, err)
		}
		*closers = append(*closers, closer{"database", pool.Close})
		probes.RegisterCheck("store", pool.Health)

		if cfg.AutoMigrate {
			if err := database.Migrate(ctx, pool.DB(), migrations.FS, dir); err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		if cfg.Backend == config.BackendPostgres {
			return store.NewPostgres(pool.DB()), nil
		}
		return store.NewSQLServer(pool.DB()), nil

	case config.BackendBolt:
		if err := os.MkdirAll(filepath.Dir(cfg.BoltPath), 0o750); err != nil {
			return nil, fmt.Errorf("bolt dir: %w", err)
		}
		db, err := bolt.Open(cfg.BoltPath, 0o600, &bolt.Options{Timeout: 2 * time.Second})
		if err != nil {
			return nil, fmt.Errorf("bolt open: %w", err)
		}
		*closers = append(*closers, closer{"bolt", db.Close})
		probes.RegisterCheck("store", func(context.Context) error {
			return db.View(func(*bolt.Tx) error { return nil })
		})
		return store.NewBolt(db)

	default:
		return store.NewInMemory(), nil
	}
}
