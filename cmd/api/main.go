package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/solar-storefront/internal/api"
	"github.com/example/solar-storefront/internal/auth"
	"github.com/example/solar-storefront/internal/catalog"
	"github.com/example/solar-storefront/internal/checkout"
	"github.com/example/solar-storefront/internal/config"
	"github.com/example/solar-storefront/internal/domain/cart"
	"github.com/example/solar-storefront/internal/infrastructure/kafka"
	"github.com/example/solar-storefront/internal/logging"
	"github.com/example/solar-storefront/internal/notification"
	"github.com/example/solar-storefront/internal/storeapi"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const sessionTTL = 24 * time.Hour

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("api stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	if err := cfg.ValidateJWTSecret(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting solar storefront api",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
		zap.String("order_api", cfg.OrderAPIURL),
		zap.Strings("kafka_brokers", cfg.KafkaBrokers),
		zap.String("kafka_topic", cfg.KafkaTopic),
	)

	cache := catalog.NewMemory()
	var source catalog.Reader
	if cfg.DatabaseURL != "" {
		db, err := catalog.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect catalog database: %w", err)
		}
		defer db.Close()
		source = catalog.NewPostgresReader(db)

		n, err := catalog.Refresh(ctx, cache, source)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		logger.Info("catalog loaded from PostgreSQL", zap.Int("products", n))
	} else {
		products, err := catalog.LoadFile(cfg.CatalogFile)
		if err != nil {
			return err
		}
		cache.Replace(products)
		logger.Info("catalog loaded from file", zap.String("file", cfg.CatalogFile), zap.Int("products", len(products)))
	}

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	defer producer.Close()

	notifier := notification.Fanout{
		notification.NewLogger(logger),
		notification.NewPublisher(producer, logger),
	}

	orders := storeapi.NewClient(cfg.OrderAPIURL, cfg.OrderAPITimeout,
		storeapi.WithLogger(logger),
		storeapi.WithTokenSource(auth.TokenFromContext),
	)

	jwtService := auth.NewJWTService(cfg.JWTSecret, 15*time.Minute)

	sessions := api.NewSessions(sessionTTL, func(id string, store *cart.Store) *checkout.Orchestrator {
		return checkout.NewOrchestrator(id, store, orders, auth.ContextIdentity{}, notifier, logger)
	})
	handlers := api.NewHandlers(api.HandlersConfig{
		Catalog:  cache,
		Stock:    cache,
		Orders:   orders,
		Services: orders,
		Notifier: notifier,
		Sessions: sessions,
		Logger:   logger,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(api.RouterConfig{Handlers: handlers, Validator: jwtService, Logger: logger}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if n := sessions.Sweep(); n > 0 {
					logger.Info("expired cart sessions", zap.Int("removed", n))
				}
			}
		}
	})

	if source != nil && cfg.CatalogRefresh > 0 {
		g.Go(func() error {
			return catalog.Sync(ctx, cache, source, cfg.CatalogRefresh, logger)
		})
	}

	return g.Wait()
}
