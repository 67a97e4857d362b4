package schedule

import (
	"context"
	"errors"

	"go.uber.org/zap"

	scheduleerrors "go-staffops/internal/schedule/errors"
	"go-staffops/internal/shared/inflight"
)

// CommitResult is what a successful mutation returns. Warning carries a
// RefetchFailure when the save went through but the reload did not.
type CommitResult struct {
	Group     GroupKey
	Records   []AttendanceRecord
	Warning   error
	Escalated bool
}

// CommitGroup sends every staged change of one (team, shift, day) as a
// single batch. On failure the group is left exactly as it was.
func (e *Engine) CommitGroup(ctx context.Context, key GroupKey) (CommitResult, error) {
	entries := e.PendingChanges(key)
	if len(entries) == 0 {
		return CommitResult{}, scheduleerrors.ErrNothingToCommit
	}
	date, err := ParseDay(key.Day)
	if err != nil {
		return CommitResult{}, err
	}

	release, err := e.acquire(ctx, key.String())
	if err != nil {
		return CommitResult{}, err
	}
	defer release()

	batch := Batch{
		ShiftID: key.ShiftID,
		Date:    date,
		Items:   make([]BatchItem, 0, len(entries)),
	}
	for _, c := range entries {
		batch.Items = append(batch.Items, BatchItem{
			MembershipID: c.MembershipID,
			Status:       c.Status,
			Notes:        c.Notes,
		})
	}

	saved, err := e.store.CommitAttendance(ctx, key.TeamID, batch)
	if err != nil {
		e.logger.Error("commit attendance failed",
			zap.String("group", key.String()),
			zap.Int("items", len(batch.Items)),
			zap.Error(err),
		)
		return CommitResult{}, scheduleerrors.ErrCommitFailed.WithCause(err)
	}

	e.mu.Lock()
	e.pending.Settle(key, entries)
	saved = e.applySavedLocked(key, batch, saved)
	e.generation++
	e.mu.Unlock()

	e.logger.Info("attendance committed",
		zap.String("group", key.String()),
		zap.Int("items", len(batch.Items)),
	)

	result := CommitResult{Group: key, Records: saved}
	result.Warning = e.refetch(ctx)
	result.Escalated = e.escalate(ctx, key)
	return result, nil
}

// UpdateRecord writes one cell immediately, bypassing the pending buffer.
func (e *Engine) UpdateRecord(ctx context.Context, ref CellRef, status Status, notes string) (CommitResult, error) {
	key := ref.Group()

	e.mu.Lock()
	cell, ok := e.gridLocked().Cell(key, ref.MemberID)
	e.mu.Unlock()
	if !ok {
		return CommitResult{}, scheduleerrors.ErrCellNotFound
	}
	if cell.MembershipID == "" {
		return CommitResult{}, scheduleerrors.ErrMissingMembershipLink
	}

	result, err := e.commitCell(ctx, key, cell, status.OrPending(), notes)
	if err != nil {
		return CommitResult{}, err
	}
	result.Warning = e.refetch(ctx)
	if !cell.Entry.IsLeader {
		result.Escalated = e.escalate(ctx, key)
	}
	return result, nil
}

func (e *Engine) commitCell(ctx context.Context, key GroupKey, cell Cell, status Status, notes string) (CommitResult, error) {
	release, err := e.acquire(ctx, key.String()+"|"+cell.MembershipID)
	if err != nil {
		return CommitResult{}, err
	}
	defer release()

	batch := Batch{
		ShiftID: key.ShiftID,
		Date:    DateOnly(cell.Date),
		Items:   []BatchItem{{MembershipID: cell.MembershipID, Status: status, Notes: notes}},
	}
	saved, err := e.store.CommitAttendance(ctx, key.TeamID, batch)
	if err != nil {
		e.logger.Error("update attendance failed",
			zap.String("group", key.String()),
			zap.String("membership_id", cell.MembershipID),
			zap.Error(err),
		)
		return CommitResult{}, scheduleerrors.ErrCommitFailed.WithCause(err)
	}

	e.mu.Lock()
	saved = e.applySavedLocked(key, batch, saved)
	e.generation++
	e.mu.Unlock()

	return CommitResult{Group: key, Records: saved}, nil
}

// applySavedLocked merges the store's answer. Fields the store leaves out
// are taken from the batch; an empty answer falls back to the batch itself.
func (e *Engine) applySavedLocked(key GroupKey, batch Batch, saved []AttendanceRecord) []AttendanceRecord {
	if len(saved) == 0 {
		saved = make([]AttendanceRecord, 0, len(batch.Items))
		for _, item := range batch.Items {
			saved = append(saved, AttendanceRecord{
				MembershipID: item.MembershipID,
				Status:       item.Status,
				Notes:        item.Notes,
				UpdatedAt:    now(),
			})
		}
	}
	for i := range saved {
		r := &saved[i]
		if r.TeamID == "" {
			r.TeamID = key.TeamID
		}
		if r.ShiftID == "" {
			r.ShiftID = key.ShiftID
		}
		if r.Date.IsZero() {
			r.Date = batch.Date
		}
		e.records.Upsert(*r)
	}
	return saved
}

func (e *Engine) acquire(ctx context.Context, key string) (inflight.ReleaseFunc, error) {
	release, err := e.guard.Acquire(ctx, key)
	switch {
	case errors.Is(err, inflight.ErrBusy):
		return nil, scheduleerrors.ErrCommitInProgress
	case err != nil:
		return nil, scheduleerrors.ErrCommitFailed.WithCause(err)
	}
	return release, nil
}

// refetch reloads the window after a mutation. Its failure never undoes the
// mutation.
func (e *Engine) refetch(ctx context.Context) error {
	report := e.Refresh(ctx)
	if !report.Partial() {
		return nil
	}
	e.logger.Warn("refetch after commit failed", zap.Int("failed_teams", len(report.Failures)))
	return scheduleerrors.ErrRefetchFailed.WithCause(report.Err())
}
