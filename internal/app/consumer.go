package app

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"go-staffops/internal/config"
	"go-staffops/internal/events"
	"go-staffops/internal/messaging/kafka/consumer"
)

// replicaGroupID gives every API process its own consumer group, so each
// replica receives every attendance event.
func replicaGroupID(base string) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "api"
	}
	return fmt.Sprintf("%s-%s-%s", base, host, uuid.NewString()[:8])
}

// startRefreshConsumer feeds attendance.committed events into refresher
// until ctx ends. The returned func closes the reader.
func startRefreshConsumer(
	ctx context.Context,
	cfg config.KafkaConfig,
	refresher consumer.TeamRefresher,
	logger *zap.Logger,
) (func(), error) {
	if cfg.Broker == "" {
		return nil, errKafkaRequired
	}

	groupID := replicaGroupID(cfg.ConsumerGroup)
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.Broker},
		Topic:          events.AttendanceCommittedTopic,
		GroupID:        groupID,
		CommitInterval: 0,
		// a fresh group only cares about commits from now on
		StartOffset: kafkago.LastOffset,
	})
	logger.Named("app.consumer").Info("refresh consumer configured",
		zap.String("topic", events.AttendanceCommittedTopic),
		zap.String("group_id", groupID),
	)

	go consumer.ConsumeAttendanceCommitted(ctx, reader, refresher, logger)

	return func() { _ = reader.Close() }, nil
}
