package schedule

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	scheduleerrors "go-staffops/internal/schedule/errors"
	"go-staffops/internal/shared/inflight"
)

const (
	defaultEscalationNote = "Auto check-in: all team members recorded"
	refreshConcurrency    = 8
)

// Engine is one viewer's working copy of the schedule. Reads are served from
// memory; Refresh and the commit paths talk to the Store without holding the
// state lock.
type Engine struct {
	store          Store
	guard          inflight.Guard
	logger         *zap.Logger
	viewer         IdentitySet
	escalationNote string

	flights singleflight.Group

	mu      sync.Mutex
	window  Window
	teams   []Team
	records *RecordSet
	pending *PendingBuffer
	// bumped on every commit, teams load and window change; a refresh that
	// started under an older generation is neither shared nor applied
	generation uint64
}

type Option func(*Engine)

// WithGuard replaces the process-local commit de-duplication guard.
func WithGuard(g inflight.Guard) Option {
	return func(e *Engine) {
		if g != nil {
			e.guard = g
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithEscalationNote(note string) Option {
	return func(e *Engine) {
		if note != "" {
			e.escalationNote = note
		}
	}
}

func NewEngine(store Store, viewer IdentitySet, window Window, opts ...Option) *Engine {
	e := &Engine{
		store:          store,
		guard:          inflight.NewMemoryGuard(),
		logger:         zap.L().Named("schedule.engine"),
		viewer:         viewer,
		escalationNote: defaultEscalationNote,
		window:         window,
		records:        NewRecordSet(),
		pending:        NewPendingBuffer(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TeamFailure is one team whose records could not be fetched.
type TeamFailure struct {
	TeamID string
	Err    error
}

type RefreshReport struct {
	Window   Window
	Failures []TeamFailure
	// Stale is set when a commit or window change landed while fetching;
	// the fetched records were dropped.
	Stale bool
}

func (r RefreshReport) Partial() bool { return len(r.Failures) > 0 }

// Err is nil when every team loaded, otherwise FetchPartialFailure wrapping
// the first cause.
func (r RefreshReport) Err() error {
	if !r.Partial() {
		return nil
	}
	f := r.Failures[0]
	return scheduleerrors.ErrFetchPartialFailure.WithCause(fmt.Errorf("team %s: %w", f.TeamID, f.Err))
}

// Load fetches the teams snapshot and then the window's records.
func (e *Engine) Load(ctx context.Context) (RefreshReport, error) {
	teams, err := e.store.FetchTeams(ctx)
	if err != nil {
		e.logger.Error("fetch teams failed", zap.Error(err))
		return RefreshReport{}, scheduleerrors.ErrFetchTeamsFailed.WithCause(err)
	}

	e.setTeams(teams)
	return e.Refresh(ctx), nil
}

// Reload refetches the teams snapshot and then the records, so membership
// and leader changes show up without a new session. A failed teams fetch
// keeps the previous snapshot; records are refreshed either way.
func (e *Engine) Reload(ctx context.Context) (RefreshReport, error) {
	teams, err := e.store.FetchTeams(ctx)
	if err != nil {
		e.logger.Warn("reload teams failed, keeping previous snapshot", zap.Error(err))
		return e.Refresh(ctx), scheduleerrors.ErrFetchTeamsFailed.WithCause(err)
	}
	e.setTeams(teams)
	return e.Refresh(ctx), nil
}

func (e *Engine) setTeams(teams []Team) {
	e.mu.Lock()
	e.teams = teams
	e.generation++
	e.mu.Unlock()
}

// Refresh refetches every team's records for the current window, one fetch
// per team in parallel. Concurrent calls for the same window share a single
// fetch.
func (e *Engine) Refresh(ctx context.Context) RefreshReport {
	e.mu.Lock()
	window := e.window
	gen := e.generation
	teamIDs := teamIDs(e.teams)
	e.mu.Unlock()

	key := fmt.Sprintf("%s#%d", window, gen)
	v, _, _ := e.flights.Do(key, func() (any, error) {
		return e.refresh(ctx, window, gen, teamIDs), nil
	})
	return v.(RefreshReport)
}

func (e *Engine) refresh(ctx context.Context, window Window, gen uint64, ids []string) RefreshReport {
	report := RefreshReport{Window: window}
	if window.IsZero() || len(ids) == 0 {
		return report
	}

	from, to := window.FetchRange()
	fetched := make([][]AttendanceRecord, len(ids))
	errs := make([]error, len(ids))

	// every goroutine returns nil so one failing team never cancels the rest
	var g errgroup.Group
	g.SetLimit(refreshConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			recs, err := e.store.FetchAttendance(ctx, AttendanceQuery{TeamID: id, From: from, To: to})
			fetched[i], errs[i] = recs, err
			return nil
		})
	}
	_ = g.Wait()

	e.mu.Lock()
	defer e.mu.Unlock()

	// a commit or window change happened while fetching; the later refetch
	// it triggers carries fresher rows
	if e.window != window || e.generation != gen {
		e.logger.Debug("dropping stale refresh", zap.String("window", window.String()))
		report.Stale = true
		return report
	}
	for i, id := range ids {
		if errs[i] != nil {
			e.logger.Warn("fetch attendance failed",
				zap.String("team_id", id),
				zap.String("window", window.String()),
				zap.Error(errs[i]),
			)
			report.Failures = append(report.Failures, TeamFailure{TeamID: id, Err: errs[i]})
			continue
		}
		e.records.ReplaceTeam(id, fetched[i])
	}
	return report
}

// SetWindow switches the view, dropping records and staged changes of the
// previous window, and loads the new one.
func (e *Engine) SetWindow(ctx context.Context, w Window) RefreshReport {
	e.mu.Lock()
	if e.window == w {
		e.mu.Unlock()
		return RefreshReport{Window: w}
	}
	e.window = w
	e.records.Reset()
	e.pending.Reset()
	e.generation++
	e.mu.Unlock()

	return e.Refresh(ctx)
}

func (e *Engine) Window() Window {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.window
}

func (e *Engine) Teams() []Team {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.teams)
}

// ShowsTeam reports whether the team is part of this engine's snapshot.
func (e *Engine) ShowsTeam(teamID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.ContainsFunc(e.teams, func(t Team) bool { return t.ID == teamID })
}

func (e *Engine) Grid() Grid {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gridLocked()
}

func (e *Engine) gridLocked() Grid {
	return BuildGrid(e.teams, e.records.All(), e.window, e.viewer)
}

// Snapshot is a consistent view of the grid, its statistics and every
// staged change, taken under one lock.
type Snapshot struct {
	Grid    Grid
	Stats   Stats
	Pending map[GroupKey][]PendingChange
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	pending := make(map[GroupKey][]PendingChange)
	for _, key := range e.pending.DirtyGroups() {
		pending[key] = e.pending.Entries(key)
	}
	return Snapshot{
		Grid:    e.gridLocked(),
		Stats:   Tally(e.records.All(), e.window),
		Pending: pending,
	}
}

func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Tally(e.records.All(), e.window)
}

func (e *Engine) Records() []AttendanceRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.records.All()
}

// StageChange buffers a status edit for one visible cell. memberID may be
// the membership id or any id of the member.
func (e *Engine) StageChange(key GroupKey, memberID string, status Status, notes string) (PendingChange, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cell, ok := e.gridLocked().Cell(key, memberID)
	if !ok {
		return PendingChange{}, scheduleerrors.ErrCellNotFound
	}
	if cell.MembershipID == "" {
		return PendingChange{}, scheduleerrors.ErrMissingMembershipLink
	}

	change := PendingChange{
		MembershipID: cell.MembershipID,
		Status:       status.OrPending(),
		Notes:        notes,
		DisplayName:  cell.Entry.Person.Name,
		Date:         cell.Date,
	}
	if err := e.pending.Stage(key, change); err != nil {
		return PendingChange{}, err
	}
	return change, nil
}

func (e *Engine) DiscardGroup(key GroupKey) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending.Clear(key)
}

func (e *Engine) HasUnsavedChanges(key GroupKey) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending.IsDirty(key)
}

func (e *Engine) PendingChanges(key GroupKey) []PendingChange {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending.Entries(key)
}

func (e *Engine) DirtyGroups() []GroupKey {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending.DirtyGroups()
}

func teamIDs(teams []Team) []string {
	ids := make([]string, 0, len(teams))
	for _, t := range teams {
		ids = append(ids, t.ID)
	}
	return ids
}

// now is replaced in tests.
var now = time.Now
