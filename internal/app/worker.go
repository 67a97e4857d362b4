package app

import (
	"context"

	"go.uber.org/zap"

	"go-staffops/internal/config"
	"go-staffops/internal/messaging/kafka"
	"go-staffops/internal/messaging/kafka/producer"
	"go-staffops/internal/shared/connection"
)

// RunWorker relays the outbox to Kafka until ctx ends.
func RunWorker(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.L()
	}
	log := logger.Named("app.worker")

	if cfg.Kafka.Broker == "" {
		return errKafkaRequired
	}

	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.Kafka.Broker, 5)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(sqlDB)

	producer.RelayOutbox(ctx, outboxRepo, kafkaWriter, logger, cfg.Kafka.PollInterval)

	log.Info("worker shutting down")
	return nil
}
