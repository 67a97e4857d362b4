package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	scheduleerrors "go-staffops/internal/schedule/errors"
	"go-staffops/internal/shared/apperror"
	"go-staffops/internal/shared/inflight"
	"go-staffops/internal/shared/response"
)

// Viewer is the authenticated user a session belongs to.
type Viewer struct {
	CompanyID  string
	EmployeeID string
	UserID     string
	ReadAll    bool
}

func (v Viewer) Identity() IdentitySet {
	return CandidateIDs(v.EmployeeID, v.UserID)
}

func (v Viewer) Scope() Scope {
	return Scope{
		CompanyID:  v.CompanyID,
		EmployeeID: v.EmployeeID,
		AccountID:  v.UserID,
		ReadAll:    v.ReadAll,
	}
}

func (v Viewer) sessionKey() string {
	return fmt.Sprintf("%s|%s|%s|%t", v.CompanyID, v.EmployeeID, v.UserID, v.ReadAll)
}

type Service interface {
	GetGrid(ctx context.Context, v Viewer, q WindowQuery) (GridResponse, []response.Warning, error)
	GetStats(ctx context.Context, v Viewer, q WindowQuery) (Stats, error)
	StageChange(ctx context.Context, v Viewer, req StageChangeRequest) (PendingGroupResponse, error)
	DiscardChanges(ctx context.Context, v Viewer, req GroupRequest) error
	Commit(ctx context.Context, v Viewer, req GroupRequest) (CommitResponse, []response.Warning, error)
	UpdateRecord(ctx context.Context, v Viewer, req UpdateRecordRequest) (CommitResponse, []response.Warning, error)
	Refresh(ctx context.Context, v Viewer) (GridResponse, []response.Warning, error)
	Snapshot(ctx context.Context, v Viewer, q WindowQuery) (Snapshot, error)
	// RefreshTeam refetches every live session that shows teamID and
	// returns how many were refreshed.
	RefreshTeam(ctx context.Context, teamID string) int
	// Sweep drops sessions idle since before now minus the session TTL.
	Sweep(now time.Time) int
}

type ServiceConfig struct {
	SessionTTL     time.Duration
	EscalationNote string
	Guard          inflight.Guard
}

type session struct {
	engine   *Engine
	lastSeen time.Time
}

type service struct {
	stores StoreFactory
	cfg    ServiceConfig
	logger *zap.Logger
	clock  func() time.Time

	flights  singleflight.Group
	mu       sync.Mutex
	sessions map[string]*session
}

func NewService(stores StoreFactory, cfg ServiceConfig, logger ...*zap.Logger) Service {
	l := zap.L().Named("schedule.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("schedule.service")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	if cfg.Guard == nil {
		cfg.Guard = inflight.NewMemoryGuard()
	}
	return &service{
		stores:   stores,
		cfg:      cfg,
		logger:   l,
		clock:    time.Now,
		sessions: make(map[string]*session),
	}
}

type openedSession struct {
	engine *Engine
	report RefreshReport
}

// engine returns the viewer's session, creating and loading it on first
// use. A non-zero window moves the session to that window.
func (s *service) engine(ctx context.Context, v Viewer, w Window) (*Engine, RefreshReport, error) {
	key := v.sessionKey()

	s.mu.Lock()
	sess, ok := s.sessions[key]
	if ok {
		sess.lastSeen = s.clock()
	}
	s.mu.Unlock()

	if ok {
		if w.IsZero() || w == sess.engine.Window() {
			return sess.engine, RefreshReport{Window: sess.engine.Window()}, nil
		}
		return sess.engine, sess.engine.SetWindow(ctx, w), nil
	}

	val, err, _ := s.flights.Do(key, func() (any, error) {
		initial := w
		if initial.IsZero() {
			initial = DayWindow(s.clock())
		}
		log := s.logger.With(
			zap.String("company_id", v.CompanyID),
			zap.String("employee_id", v.EmployeeID),
		)
		e := NewEngine(s.stores(v.Scope()), v.Identity(), initial,
			WithGuard(s.cfg.Guard),
			WithLogger(log.Named("engine")),
			WithEscalationNote(s.cfg.EscalationNote),
		)
		report, err := e.Load(ctx)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.sessions[key] = &session{engine: e, lastSeen: s.clock()}
		s.mu.Unlock()
		log.Debug("schedule session opened", zap.String("window", initial.String()))
		return openedSession{engine: e, report: report}, nil
	})
	if err != nil {
		return nil, RefreshReport{}, err
	}
	opened := val.(openedSession)
	// a concurrent caller may have opened the session for another window
	if !w.IsZero() && w != opened.engine.Window() {
		return opened.engine, opened.engine.SetWindow(ctx, w), nil
	}
	return opened.engine, opened.report, nil
}

func (s *service) GetGrid(ctx context.Context, v Viewer, q WindowQuery) (GridResponse, []response.Warning, error) {
	w, err := q.Window()
	if err != nil {
		return GridResponse{}, nil, err
	}
	e, report, err := s.engine(ctx, v, w)
	if err != nil {
		return GridResponse{}, nil, err
	}
	return mapSnapshot(e.Snapshot()), reportWarnings(report), nil
}

func (s *service) GetStats(ctx context.Context, v Viewer, q WindowQuery) (Stats, error) {
	w, err := q.Window()
	if err != nil {
		return Stats{}, err
	}
	e, _, err := s.engine(ctx, v, w)
	if err != nil {
		return Stats{}, err
	}
	return e.Stats(), nil
}

func (s *service) StageChange(ctx context.Context, v Viewer, req StageChangeRequest) (PendingGroupResponse, error) {
	key, err := req.Key()
	if err != nil {
		return PendingGroupResponse{}, err
	}
	status, err := ParseStatus(req.Status)
	if err != nil {
		return PendingGroupResponse{}, err
	}
	e, _, err := s.engine(ctx, v, Window{})
	if err != nil {
		return PendingGroupResponse{}, err
	}
	if _, err := e.StageChange(key, req.MemberID, status, req.Notes); err != nil {
		return PendingGroupResponse{}, err
	}
	return mapPendingGroup(key, e.PendingChanges(key)), nil
}

func (s *service) DiscardChanges(ctx context.Context, v Viewer, req GroupRequest) error {
	key, err := req.Key()
	if err != nil {
		return err
	}
	e, _, err := s.engine(ctx, v, Window{})
	if err != nil {
		return err
	}
	e.DiscardGroup(key)
	return nil
}

func (s *service) Commit(ctx context.Context, v Viewer, req GroupRequest) (CommitResponse, []response.Warning, error) {
	key, err := req.Key()
	if err != nil {
		return CommitResponse{}, nil, err
	}
	e, _, err := s.engine(ctx, v, Window{})
	if err != nil {
		return CommitResponse{}, nil, err
	}
	res, err := e.CommitGroup(ctx, key)
	if err != nil {
		return CommitResponse{}, nil, err
	}
	return mapCommitResult(res), errWarnings(res.Warning), nil
}

func (s *service) UpdateRecord(ctx context.Context, v Viewer, req UpdateRecordRequest) (CommitResponse, []response.Warning, error) {
	key, err := req.Key()
	if err != nil {
		return CommitResponse{}, nil, err
	}
	status, err := ParseStatus(req.Status)
	if err != nil {
		return CommitResponse{}, nil, err
	}
	d, _ := ParseDay(key.Day)
	e, _, err := s.engine(ctx, v, Window{})
	if err != nil {
		return CommitResponse{}, nil, err
	}
	res, err := e.UpdateRecord(ctx, CellRef{
		TeamID:   key.TeamID,
		ShiftID:  key.ShiftID,
		Date:     d,
		MemberID: req.MemberID,
	}, status, req.Notes)
	if err != nil {
		return CommitResponse{}, nil, err
	}
	return mapCommitResult(res), errWarnings(res.Warning), nil
}

func (s *service) Refresh(ctx context.Context, v Viewer) (GridResponse, []response.Warning, error) {
	e, _, err := s.engine(ctx, v, Window{})
	if err != nil {
		return GridResponse{}, nil, err
	}
	report, teamsErr := e.Reload(ctx)
	warnings := append(errWarnings(teamsErr), reportWarnings(report)...)
	return mapSnapshot(e.Snapshot()), warnings, nil
}

func (s *service) Snapshot(ctx context.Context, v Viewer, q WindowQuery) (Snapshot, error) {
	w, err := q.Window()
	if err != nil {
		return Snapshot{}, err
	}
	e, _, err := s.engine(ctx, v, w)
	if err != nil {
		return Snapshot{}, err
	}
	return e.Snapshot(), nil
}

func (s *service) RefreshTeam(ctx context.Context, teamID string) int {
	s.mu.Lock()
	engines := make([]*Engine, 0, len(s.sessions))
	for _, sess := range s.sessions {
		engines = append(engines, sess.engine)
	}
	s.mu.Unlock()

	var (
		g       errgroup.Group
		mu      sync.Mutex
		touched int
	)
	g.SetLimit(refreshConcurrency)
	for _, e := range engines {
		if !e.ShowsTeam(teamID) {
			continue
		}
		g.Go(func() error {
			if report := e.Refresh(ctx); report.Partial() {
				s.logger.Warn("session refresh incomplete",
					zap.String("team_id", teamID),
					zap.Error(report.Err()),
				)
			}
			mu.Lock()
			touched++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return touched
}

func (s *service) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for key, sess := range s.sessions {
		if now.Sub(sess.lastSeen) < s.cfg.SessionTTL {
			continue
		}
		if len(sess.engine.DirtyGroups()) > 0 {
			s.logger.Info("dropping idle session with unsaved changes", zap.String("session", key))
		}
		delete(s.sessions, key)
		evicted++
	}
	return evicted
}

func reportWarnings(r RefreshReport) []response.Warning {
	if !r.Partial() {
		return nil
	}
	out := make([]response.Warning, 0, len(r.Failures))
	for _, f := range r.Failures {
		out = append(out, response.Warning{
			Code:    scheduleerrors.ErrFetchPartialFailure.Code,
			Message: fmt.Sprintf("%s (team %s)", scheduleerrors.ErrFetchPartialFailure.Message, f.TeamID),
		})
	}
	return out
}

func errWarnings(err error) []response.Warning {
	if err == nil {
		return nil
	}
	httpErr := apperror.ToHTTP(err)
	return []response.Warning{{Code: httpErr.Code, Message: httpErr.Message}}
}
