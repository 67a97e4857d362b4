package attendance

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-staffops/internal/events"
	"go-staffops/internal/messaging/kafka"
	"go-staffops/internal/schedule"
	scheduleerrors "go-staffops/internal/schedule/errors"
	"go-staffops/internal/shared/apperror"
	"go-staffops/internal/shared/contextutil"
)

const commitAttempts = 2

type StoreConfig struct {
	// FetchLimit caps the rows returned for one team and range; 0 means no cap.
	FetchLimit int
}

// NewStoreFactory returns schedule stores backed by Postgres. outbox may be
// nil, in which case commits publish nothing.
func NewStoreFactory(
	db *sql.DB,
	repo Repository,
	outbox kafka.OutboxRepository,
	cache *TeamsCache,
	cfg StoreConfig,
	logger ...*zap.Logger,
) schedule.StoreFactory {
	l := zap.L().Named("attendance.store")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.store")
	}
	if cache == nil {
		cache = NewTeamsCache(nil, 0, l)
	}
	return func(scope schedule.Scope) schedule.Store {
		return &store{
			db:     db,
			repo:   repo,
			outbox: outbox,
			cache:  cache,
			cfg:    cfg,
			scope:  scope,
			logger: l.With(zap.String("company_id", scope.CompanyID)),
		}
	}
}

type store struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	cache  *TeamsCache
	cfg    StoreConfig
	scope  schedule.Scope
	logger *zap.Logger
}

func (s *store) companyTeams(ctx context.Context) ([]schedule.Team, error) {
	return s.cache.Get(ctx, s.scope.CompanyID, func(ctx context.Context) ([]schedule.Team, error) {
		rows, err := s.repo.FindTeamsByCompany(ctx, s.scope.CompanyID)
		if err != nil {
			return nil, err
		}
		teams := make([]schedule.Team, 0, len(rows))
		for _, t := range rows {
			teams = append(teams, toScheduleTeam(t))
		}
		return teams, nil
	})
}

// FetchTeams returns the teams the scope may see: all of the company's
// teams with ReadAll, otherwise those the employee leads or belongs to.
func (s *store) FetchTeams(ctx context.Context) ([]schedule.Team, error) {
	teams, err := s.companyTeams(ctx)
	if err != nil {
		s.logger.Error("fetch teams failed", zap.Error(err))
		return nil, err
	}
	return s.scope.VisibleTeams(teams), nil
}

func (s *store) FetchAttendance(ctx context.Context, q schedule.AttendanceQuery) ([]schedule.AttendanceRecord, error) {
	rows, err := s.repo.FindRecords(ctx, s.scope.CompanyID, q.TeamID, q.From, q.To, s.cfg.FetchLimit)
	if err != nil {
		s.logger.Error("fetch attendance failed",
			zap.String("team_id", q.TeamID),
			zap.Error(err),
		)
		return nil, err
	}
	if s.cfg.FetchLimit > 0 && len(rows) == s.cfg.FetchLimit {
		s.logger.Warn("fetch attendance hit row limit",
			zap.String("team_id", q.TeamID),
			zap.Int("limit", s.cfg.FetchLimit),
		)
	}
	return toScheduleRecords(rows), nil
}

// CommitAttendance upserts every item of b in one transaction and queues an
// attendance.committed event with it. A concurrent insert of the same row
// is retried once, where it becomes an update.
func (s *store) CommitAttendance(ctx context.Context, teamID string, b schedule.Batch) ([]schedule.AttendanceRecord, error) {
	if len(b.Items) == 0 {
		return nil, nil
	}

	teams, err := s.FetchTeams(ctx)
	if err != nil {
		return nil, err
	}
	if !containsTeam(teams, teamID) {
		return nil, apperror.ErrForbidden
	}

	for attempt := 1; ; attempt++ {
		saved, err := s.commitTx(ctx, teamID, b)
		if err == nil {
			return saved, nil
		}
		if attempt < commitAttempts && isUniqueMemberDayViolation(err) {
			s.logger.Warn("attendance row created concurrently, retrying",
				zap.String("team_id", teamID),
				zap.Int("attempt", attempt),
			)
			continue
		}
		return nil, err
	}
}

func containsTeam(teams []schedule.Team, teamID string) bool {
	for _, t := range teams {
		if t.ID == teamID {
			return true
		}
	}
	return false
}

func (s *store) commitTx(ctx context.Context, teamID string, b schedule.Batch) ([]schedule.AttendanceRecord, error) {
	rid := contextutil.GetRequestID(ctx)

	ids, err := parseIDs(s.scope.CompanyID, teamID, b.ShiftID)
	if err != nil {
		return nil, scheduleerrors.ErrTeamNotFound.WithCause(err)
	}
	companyID, teamUUID, shiftUUID := ids[0], ids[1], ids[2]
	date := schedule.DateOnly(b.Date)

	membershipIDs := make([]string, 0, len(b.Items))
	for _, item := range b.Items {
		if _, err := uuid.Parse(item.MembershipID); err != nil {
			return nil, scheduleerrors.ErrMissingMembershipLink.WithCause(
				fmt.Errorf("invalid membership id %q", item.MembershipID))
		}
		membershipIDs = append(membershipIDs, item.MembershipID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("commit attendance begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	memberships, err := qtx.FindMemberships(ctx, teamID, membershipIDs)
	if err != nil {
		s.logger.Error("commit attendance load memberships failed", zap.Error(err))
		return nil, err
	}
	byID := make(map[string]Membership, len(memberships))
	for _, m := range memberships {
		byID[m.ID.String()] = m
	}

	saved := make([]ShiftAttendance, 0, len(b.Items))
	for _, item := range b.Items {
		m, ok := byID[item.MembershipID]
		if !ok {
			// the cached roster is stale
			s.cache.Invalidate(ctx, s.scope.CompanyID)
			return nil, scheduleerrors.ErrMissingMembershipLink.WithCause(
				fmt.Errorf("membership %s is not part of team %s", item.MembershipID, teamID))
		}

		row, err := qtx.FindForUpdate(ctx, item.MembershipID, b.ShiftID, date)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row = &ShiftAttendance{
				ID:             uuid.New(),
				CompanyID:      companyID,
				TeamID:         teamUUID,
				ShiftID:        shiftUUID,
				MembershipID:   m.ID,
				AttendanceDate: date,
				Status:         string(item.Status.OrPending()),
				Notes:          stringPtr(item.Notes),
				UpdatedBy:      stringPtr(s.scope.AccountID),
			}
			if err := qtx.Create(ctx, row); err != nil {
				s.logger.Error("commit attendance insert failed",
					zap.String("membership_id", item.MembershipID),
					zap.Error(err),
				)
				return nil, err
			}
		case err != nil:
			s.logger.Error("commit attendance lookup failed", zap.Error(err))
			return nil, err
		default:
			row.Status = string(item.Status.OrPending())
			row.Notes = stringPtr(item.Notes)
			row.UpdatedBy = stringPtr(s.scope.AccountID)
			if err := qtx.Update(ctx, row); err != nil {
				s.logger.Error("commit attendance update failed",
					zap.String("attendance_id", row.ID.String()),
					zap.Error(err),
				)
				return nil, err
			}
		}
		row.Membership = &m
		saved = append(saved, *row)
	}

	if s.outbox != nil {
		event := events.AttendanceCommittedEvent{
			EventType:   "attendance_committed",
			RequestID:   rid,
			CompanyID:   s.scope.CompanyID,
			TeamID:      teamID,
			ShiftID:     b.ShiftID,
			Date:        schedule.DayKey(date),
			Records:     len(saved),
			CommittedBy: s.scope.AccountID,
			OccurredAt:  time.Now().UTC(),
		}
		payload, err := json.Marshal(event)
		if err != nil {
			return nil, err
		}

		if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
			ID:            uuid.NewString(),
			RequestID:     rid,
			AggregateType: "team",
			AggregateID:   teamID,
			EventType:     event.EventType,
			Topic:         events.AttendanceCommittedTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			s.logger.Error("commit attendance outbox persist failed",
				zap.String("team_id", teamID),
				zap.Error(err),
			)
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("commit attendance failed", zap.String("request_id", rid), zap.Error(err))
		return nil, err
	}

	s.logger.Info("attendance committed",
		zap.String("request_id", rid),
		zap.String("team_id", teamID),
		zap.String("shift_id", b.ShiftID),
		zap.String("date", schedule.DayKey(date)),
		zap.Int("records", len(saved)),
	)
	return toScheduleRecords(saved), nil
}
