package schedule

import (
	"context"
	"slices"
	"time"

	"go.uber.org/zap"
)

// NeedsLeaderCheckIn reports whether the leader of team should be marked
// PRESENT for the slot: the roster has members besides the leader, each of
// them has a non-PENDING record, and the leader has none or a PENDING one.
// A leader status that is already set is never overridden.
func NeedsLeaderCheckIn(team Team, records []AttendanceRecord, shiftID string, date time.Time) (RosterEntry, *AttendanceRecord, bool) {
	roster := BuildRoster(team)
	leader, ok := leaderEntry(roster)
	if !ok {
		return RosterEntry{}, nil, false
	}

	members := 0
	for _, entry := range roster {
		if entry.IsLeader {
			continue
		}
		members++
		rec := MatchRecord(records, team.ID, shiftID, date, entry)
		if rec == nil || rec.Status.OrPending() == StatusPending {
			return RosterEntry{}, nil, false
		}
	}
	if members == 0 {
		return RosterEntry{}, nil, false
	}

	rec := MatchRecord(records, team.ID, shiftID, date, leader)
	if rec != nil && rec.Status.OrPending() != StatusPending {
		return RosterEntry{}, nil, false
	}
	return leader, rec, true
}

// escalate checks the slot in key and, if every member is accounted for,
// checks the leader in. Errors are logged and dropped.
func (e *Engine) escalate(ctx context.Context, key GroupKey) bool {
	date, err := ParseDay(key.Day)
	if err != nil {
		return false
	}

	e.mu.Lock()
	i := slices.IndexFunc(e.teams, func(t Team) bool { return t.ID == key.TeamID })
	if i < 0 {
		e.mu.Unlock()
		return false
	}
	team := e.teams[i]
	records := e.records.ForTeam(key.TeamID)
	e.mu.Unlock()

	leader, rec, ok := NeedsLeaderCheckIn(team, records, key.ShiftID, date)
	if !ok {
		return false
	}

	log := e.logger.With(
		zap.String("group", key.String()),
		zap.String("leader", leader.Person.Name),
	)

	membershipID, err := ResolveMembershipID(MembershipLookup{
		Explicit: leader.Person.MembershipID,
		Record:   rec,
		Cached:   leader.MembershipID,
		Team:     &team,
		Target:   leader.Identity,
	})
	if err != nil {
		log.Warn("auto escalation failed", zap.Error(err))
		return false
	}

	cell := Cell{
		Entry:        leader,
		TeamID:       key.TeamID,
		ShiftID:      key.ShiftID,
		Date:         date,
		Record:       rec,
		MembershipID: membershipID,
		Status:       StatusPending,
	}
	if _, err := e.commitCell(ctx, key, cell, StatusPresent, e.escalationNote); err != nil {
		log.Warn("auto escalation failed", zap.Error(err))
		return false
	}

	log.Info("leader checked in automatically")
	_ = e.refetch(ctx)
	return true
}
