package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightescrow/config"
	"github.com/Domenick1991/flightescrow/internal/kafka"
	"github.com/Domenick1991/flightescrow/internal/logger"
	"github.com/Domenick1991/flightescrow/internal/notify"
	"github.com/Domenick1991/flightescrow/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(config.Path())
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.Env, cfg.Log.Level).With(zap.String("component", "worker"))
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	producer := kafka.NewProducer(log, cfg.Kafka.Brokers)
	defer func() {
		_ = producer.Close()
	}()
	if err := producer.CheckConnection(ctx); err != nil {
		log.Warn("kafka not reachable yet", zap.Error(err))
	}

	relay := kafka.NewRelay(log, repository.NewPGStore(pool), producer, kafka.RelayConfig{
		EventsTopic:        cfg.Kafka.EventsTopic,
		NotificationsTopic: cfg.Kafka.NotificationsTopic,
		PollInterval:       cfg.Worker.RelayInterval,
		BatchSize:          cfg.Worker.RelayBatch,
		PublishAttempts:    cfg.Worker.PublishAttempts,
		RetryBackoff:       cfg.Worker.RetryBackoff,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return relay.Run(gctx)
	})

	if cfg.Kafka.NotificationsTopic != "" {
		consumer := kafka.NewConsumer(log, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
		defer func() {
			_ = consumer.Close()
		}()
		sender := notify.NewSender(log)
		g.Go(func() error {
			if err := consumer.ConsumeEvents(gctx, sender.Send); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	log.Info("worker started", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("events_topic", cfg.Kafka.EventsTopic))
	if err := g.Wait(); err != nil {
		log.Error("worker stopped", zap.Error(err))
		return
	}
	log.Info("worker stopped")
}
