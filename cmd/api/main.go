package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/orderform-backend/api/controllers"
	"github.com/angelmondragon/orderform-backend/api/routes"
	"github.com/angelmondragon/orderform-backend/internal/ordercache"
	"github.com/angelmondragon/orderform-backend/internal/orders"
	"github.com/angelmondragon/orderform-backend/internal/theme"
	"github.com/angelmondragon/orderform-backend/pkg/config"
	"github.com/angelmondragon/orderform-backend/pkg/db"
	"github.com/angelmondragon/orderform-backend/pkg/firestore"
	"github.com/angelmondragon/orderform-backend/pkg/instance"
	"github.com/angelmondragon/orderform-backend/pkg/logger"
	"github.com/angelmondragon/orderform-backend/pkg/metrics"
	"github.com/angelmondragon/orderform-backend/pkg/migrate"
	"github.com/angelmondragon/orderform-backend/pkg/pubsub"
	"github.com/angelmondragon/orderform-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i].Close())
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	repo, storePinger, closer, err := openOrderStore(ctx, cfg, logg)
	if err != nil {
		return err
	}
	closers = append(closers, closer)
	repo = orders.Instrument(repo, metrics.NewStoreMetrics(registry, cfg.Metrics.Namespace, cfg.DB.Driver), logg)

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	closers = append(closers, redisClient)

	publisher, err := openPublisher(ctx, cfg, logg)
	if err != nil {
		return err
	}
	closers = append(closers, publisher)

	sessionCaches := ordercache.NewRegistry(redisClient, redisClient.SessionOrdersKey, cfg.Session.OrdersTTL)
	ordersSvc, err := orders.NewService(repo, sessionCaches, publisher, logg)
	if err != nil {
		return err
	}
	themeSvc := theme.NewService(redisClient, redisClient.ThemeKey)

	pingers := map[string]controllers.Pinger{
		"store": storePinger,
		"redis": redisClient,
	}
	if p, ok := publisher.(controllers.Pinger); ok {
		pingers["pubsub"] = p
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"driver":   cfg.DB.Driver,
		"instance": instance.ID(),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			pingers,
			ordersSvc,
			themeSvc,
			metrics.NewHTTPMetrics(registry, cfg.Metrics.Namespace),
			registry,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openOrderStore selects the order backend from ORDERFORM_DB_DRIVER.
func openOrderStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (orders.Repository, controllers.Pinger, io.Closer, error) {
	if cfg.DB.IsFirestore() {
		client, err := firestore.New(ctx, cfg.GCP, cfg.Firestore, logg)
		if err != nil {
			return nil, nil, nil, err
		}
		return orders.NewFirestoreRepository(client), client, client, nil
	}

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := migrate.MaybeRunDev(ctx, cfg, logg, client); err != nil {
		return nil, nil, nil, multierr.Append(err, client.Close())
	}
	return orders.NewRepository(client), client, client, nil
}

type eventPublisher interface {
	orders.EventPublisher
	io.Closer
}

func openPublisher(ctx context.Context, cfg *config.Config, logg *logger.Logger) (eventPublisher, error) {
	if !cfg.PubSub.Enabled() {
		logg.Info(ctx, "orders topic not configured; order events disabled")
		return pubsub.Noop{}, nil
	}
	return pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
}
