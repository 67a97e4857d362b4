package schedule

import (
	"context"
	"time"
)

// Store is the external source of truth for teams and attendance records.
//
//go:generate mockgen -source=store.go -destination=mock/store_mock.go -package=mock_schedule
type Store interface {
	FetchTeams(ctx context.Context) ([]Team, error)
	FetchAttendance(ctx context.Context, q AttendanceQuery) ([]AttendanceRecord, error)
	// CommitAttendance applies one batch atomically for teamID and returns
	// the records it created or changed.
	CommitAttendance(ctx context.Context, teamID string, batch Batch) ([]AttendanceRecord, error)
}

// AttendanceQuery is team-scoped with an inclusive date range.
type AttendanceQuery struct {
	TeamID string
	From   time.Time
	To     time.Time
}

type Batch struct {
	ShiftID string
	Date    time.Time
	Items   []BatchItem
}

type BatchItem struct {
	MembershipID string
	Status       Status
	Notes        string
}

// Scope is who a Store answers for. ReadAll lifts the restriction to teams
// the employee leads or belongs to.
type Scope struct {
	CompanyID  string
	EmployeeID string
	AccountID  string
	ReadAll    bool
}

type StoreFactory func(scope Scope) Store

// Sees reports whether the scope may see team: always with ReadAll,
// otherwise when the employee leads it or holds one of its memberships.
func (s Scope) Sees(team Team) bool {
	if s.ReadAll {
		return true
	}
	viewer := CandidateIDs(s.EmployeeID, s.AccountID)
	if IsLeaderOf(team, viewer) {
		return true
	}
	for _, m := range team.Members {
		if m.Employee.Identity().Intersects(viewer) {
			return true
		}
	}
	return false
}

func (s Scope) VisibleTeams(teams []Team) []Team {
	visible := make([]Team, 0, len(teams))
	for _, t := range teams {
		if s.Sees(t) {
			visible = append(visible, t)
		}
	}
	return visible
}
