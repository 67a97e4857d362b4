package consumer

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"go-staffops/internal/events"
	"go-staffops/internal/shared/contextutil"
)

// MessageReader is the part of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// TeamRefresher reloads the live schedule sessions showing a team.
type TeamRefresher interface {
	RefreshTeam(ctx context.Context, teamID string) int
}

// ConsumeAttendanceCommitted refreshes local sessions whenever any replica
// commits attendance for a team. Every API replica needs its own consumer
// group so each one sees every event.
func ConsumeAttendanceCommitted(
	ctx context.Context,
	reader MessageReader,
	refresher TeamRefresher,
	logger *zap.Logger,
) {
	if logger == nil {
		logger = zap.L()
	}
	log := logger.Named("kafka.consumer.attendance_committed")
	log.Info("attendance committed consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("attendance committed consumer stopped")
				return
			}
			log.Error("fetch attendance committed message failed", zap.Error(err))
			continue
		}

		handleAttendanceCommitted(ctx, msg, refresher, log)

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit attendance committed message failed", zap.Error(err))
		}
	}
}

func handleAttendanceCommitted(ctx context.Context, msg kafkago.Message, refresher TeamRefresher, log *zap.Logger) {
	var event events.AttendanceCommittedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil || event.TeamID == "" {
		log.Error("decode attendance committed event failed",
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		return
	}

	if event.RequestID != "" {
		ctx = contextutil.WithRequestID(ctx, event.RequestID)
	}
	refreshed := refresher.RefreshTeam(ctx, event.TeamID)

	log.Debug("attendance committed event applied",
		zap.String("request_id", event.RequestID),
		zap.String("company_id", event.CompanyID),
		zap.String("team_id", event.TeamID),
		zap.String("date", event.Date),
		zap.Int("sessions_refreshed", refreshed),
	)
}
