package producer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"go-staffops/internal/messaging/kafka"
)

const (
	defaultBatchSize = 50

	purgeInterval = time.Hour
	// SentRetention is how long published rows stay in outbox_events.
	SentRetention = 7 * 24 * time.Hour
)

// RelayOutbox publishes due outbox rows every pollInterval until ctx ends
// and hourly deletes rows published more than SentRetention ago.
func RelayOutbox(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	logger *zap.Logger,
	pollInterval time.Duration,
) {
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}
	if logger == nil {
		logger = zap.L()
	}

	log := logger.Named("kafka.producer.relay")
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	purge := time.NewTicker(purgeInterval)
	defer purge.Stop()

	log.Info("outbox relay started", zap.Duration("poll_interval", pollInterval))

	for {
		select {
		case <-ctx.Done():
			log.Info("outbox relay stopped")
			return
		case <-ticker.C:
			if _, err := Drain(ctx, repo, writer, log, defaultBatchSize); err != nil {
				log.Error("drain outbox failed", zap.Error(err))
			}
		case now := <-purge.C:
			Purge(ctx, repo, log, now.Add(-SentRetention))
		}
	}
}

// Purge deletes rows sent before cutoff. Failures are only logged.
func Purge(ctx context.Context, repo kafka.OutboxRepository, logger *zap.Logger, cutoff time.Time) {
	n, err := repo.PurgeSent(ctx, cutoff)
	if err != nil {
		logger.Warn("purge sent outbox rows failed", zap.Error(err))
		return
	}
	if n > 0 {
		logger.Info("purged sent outbox rows", zap.Int64("count", n), zap.Time("before", cutoff))
	}
}

// Drain publishes one batch of due rows and returns how many were sent. A
// row that fails to publish is marked failed and retried on a later pass.
func Drain(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	logger *zap.Logger,
	limit int,
) (int, error) {
	events, err := repo.ListPending(ctx, limit)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	logger.Debug("draining outbox", zap.Int("count", len(events)))

	sent := 0
	for _, event := range events {
		fields := []zap.Field{
			zap.String("outbox_id", event.ID),
			zap.String("event_type", event.EventType),
			zap.String("topic", event.Topic),
			zap.String("request_id", event.RequestID),
		}

		if err := writer.WriteMessages(ctx, toMessage(event)); err != nil {
			logger.Error("publish outbox event failed", append(fields,
				zap.Int("retry_count", event.RetryCount),
				zap.Error(err),
			)...)
			if markErr := repo.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
				logger.Error("mark outbox failed failed", zap.String("outbox_id", event.ID), zap.Error(markErr))
			}
			continue
		}

		if err := repo.MarkSent(ctx, event.ID); err != nil {
			// published but still pending, so it will be sent again
			logger.Error("mark outbox sent failed", zap.String("outbox_id", event.ID), zap.Error(err))
			continue
		}

		sent++
		logger.Info("outbox event sent", fields...)
	}
	return sent, nil
}
