package backend

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"go-staffops/internal/schedule"
	"go-staffops/internal/shared/apperror"
)

// Backend paths. Teams come back with shifts and memberships embedded.
const (
	teamsPath      = "/teams"
	attendancePath = "/attendance"
)

// DefaultPageSize is requested when StoreConfig.PageSize is unset. One team
// over one month stays well below it.
const DefaultPageSize = 1000

type StoreConfig struct {
	// PageSize is sent as limit on attendance list requests so that one
	// team and window arrive in a single page.
	PageSize int
}

func bulkPath(teamID string) string {
	return "/teams/" + url.PathEscape(teamID) + "/attendance/bulk"
}

// NewStoreFactory returns schedule stores that read and write through the
// REST backend.
func NewStoreFactory(client *Client, cfg StoreConfig, logger ...*zap.Logger) schedule.StoreFactory {
	l := zap.L().Named("backend.store")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("backend.store")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return func(scope schedule.Scope) schedule.Store {
		return &store{
			client: client,
			cfg:    cfg,
			scope:  scope,
			logger: l.With(zap.String("company_id", scope.CompanyID)),
		}
	}
}

type store struct {
	client *Client
	cfg    StoreConfig
	scope  schedule.Scope
	logger *zap.Logger
}

func (s *store) FetchTeams(ctx context.Context) ([]schedule.Team, error) {
	var rows []teamDTO
	q := url.Values{"company_id": {s.scope.CompanyID}}
	if err := s.client.doJSON(ctx, http.MethodGet, teamsPath, q, nil, &rows); err != nil {
		s.logger.Error("fetch teams failed", zap.Error(err))
		return nil, err
	}

	teams := make([]schedule.Team, 0, len(rows))
	for _, t := range rows {
		teams = append(teams, t.toTeam())
	}
	return s.scope.VisibleTeams(teams), nil
}

func (s *store) FetchAttendance(ctx context.Context, q schedule.AttendanceQuery) ([]schedule.AttendanceRecord, error) {
	var rows recordList
	query := url.Values{
		"team_id": {q.TeamID},
		"from":    {schedule.DayKey(q.From)},
		"to":      {schedule.DayKey(q.To)},
		"page":    {"1"},
		"limit":   {strconv.Itoa(s.cfg.PageSize)},
	}
	if err := s.client.doJSON(ctx, http.MethodGet, attendancePath, query, nil, &rows); err != nil {
		s.logger.Error("fetch attendance failed", zap.String("team_id", q.TeamID), zap.Error(err))
		return nil, err
	}

	records := toRecords(rows)
	if len(records) >= s.cfg.PageSize {
		s.logger.Warn("fetch attendance hit page size, later rows may be missing",
			zap.String("team_id", q.TeamID),
			zap.Int("page_size", s.cfg.PageSize),
		)
	}
	// some deployments omit team and shift on nested list endpoints
	for i := range records {
		if records[i].TeamID == "" {
			records[i].TeamID = q.TeamID
		}
	}
	return records, nil
}

// CommitAttendance posts the batch to the bulk endpoint, which applies it in
// one transaction. The response may list the saved rows as a bare array or
// wrapped in an object.
func (s *store) CommitAttendance(ctx context.Context, teamID string, b schedule.Batch) ([]schedule.AttendanceRecord, error) {
	if len(b.Items) == 0 {
		return nil, nil
	}

	var rows recordList
	if err := s.client.doJSON(ctx, http.MethodPost, bulkPath(teamID), nil, toBulkRequest(b), &rows); err != nil {
		s.logger.Error("commit attendance failed",
			zap.String("team_id", teamID),
			zap.String("shift_id", b.ShiftID),
			zap.Int("items", len(b.Items)),
			zap.Error(err),
		)
		if isForbidden(err) {
			return nil, apperror.ErrForbidden
		}
		return nil, err
	}

	saved := toRecords(rows)
	for i := range saved {
		if saved[i].TeamID == "" {
			saved[i].TeamID = teamID
		}
		if saved[i].ShiftID == "" {
			saved[i].ShiftID = b.ShiftID
		}
		if saved[i].Date.IsZero() {
			saved[i].Date = schedule.DateOnly(b.Date)
		}
	}
	s.logger.Info("attendance committed",
		zap.String("team_id", teamID),
		zap.String("shift_id", b.ShiftID),
		zap.String("date", schedule.DayKey(b.Date)),
		zap.Int("records", len(saved)),
	)
	return saved, nil
}

func isForbidden(err error) bool {
	var re *ResponseError
	return errors.As(err, &re) && re.Status == http.StatusForbidden
}
