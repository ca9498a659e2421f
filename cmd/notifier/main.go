package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/solar-storefront/internal/config"
	"github.com/example/solar-storefront/internal/email"
	"github.com/example/solar-storefront/internal/infrastructure/kafka"
	"github.com/example/solar-storefront/internal/logging"
	"github.com/example/solar-storefront/internal/notification"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("service", "notifier"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting checkout notifier",
		zap.Strings("kafka_brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.KafkaTopic),
		zap.String("group", cfg.NotifierGroup),
		zap.String("smtp", cfg.SMTPHost+":"+cfg.SMTPPort),
		zap.String("from", cfg.SMTPFrom),
	)

	emailSvc := email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	handler := notification.NewHandler(emailSvc, logger)

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.NotifierGroup, logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := consumer.Consume(ctx, handler.HandleEvent)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		return consumer.Close()
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("notifier stopped", zap.Error(err))
	}
}
