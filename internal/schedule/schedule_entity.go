package schedule

import (
	"strings"
	"time"

	scheduleerrors "go-staffops/internal/schedule/errors"
)

type Status string

const (
	StatusPending Status = "PENDING"
	StatusPresent Status = "PRESENT"
	StatusAbsent  Status = "ABSENT"
	StatusExcused Status = "EXCUSED"
	StatusLate    Status = "LATE"
)

// ParseStatus accepts any casing; empty input means PENDING.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case "":
		return StatusPending, nil
	case StatusPending, StatusPresent, StatusAbsent, StatusExcused, StatusLate:
		return st, nil
	default:
		return "", scheduleerrors.ErrInvalidStatus
	}
}

// OrPending treats an unset status as PENDING.
func (s Status) OrPending() Status {
	if s == "" {
		return StatusPending
	}
	return s
}

// Person carries every id field the upstream systems may populate for one
// human. Any of them may be empty.
type Person struct {
	ID           string
	EmployeeID   string
	AccountID    string
	MembershipID string
	Name         string
}

// MembershipLink binds a person to a team. Its ID is the only id the
// attendance mutation endpoint accepts.
type MembershipLink struct {
	ID       string
	TeamID   string
	Employee Person
}

type ShiftDefinition struct {
	ID        string
	Name      string
	StartTime string
	EndTime   string
	Weekdays  []time.Weekday
}

type TeamShiftAssignment struct {
	Shift ShiftDefinition
	// Weekdays overrides Shift.Weekdays for this team when non-nil.
	Weekdays []time.Weekday
}

func (a TeamShiftAssignment) EffectiveWeekdays() []time.Weekday {
	if a.Weekdays != nil {
		return a.Weekdays
	}
	return a.Shift.Weekdays
}

type Team struct {
	ID      string
	Name    string
	Leader  *Person
	Shifts  []TeamShiftAssignment
	Members []MembershipLink
}

type RosterEntry struct {
	Person       Person
	Identity     IdentitySet
	IsLeader     bool
	MembershipID string
}

// AttendanceRecord is owned by the external store. Date has date-only
// semantics; the time of day is ignored when matching.
type AttendanceRecord struct {
	ID           string
	MembershipID string
	EmployeeID   string
	AccountID    string
	TeamID       string
	ShiftID      string
	Date         time.Time
	Status       Status
	Notes        string
	Employee     *Person
	UpdatedAt    time.Time
}

// Cell is one (member, shift, date) slot of the grid. Record is nil for a
// placeholder.
type Cell struct {
	Entry        RosterEntry
	TeamID       string
	ShiftID      string
	Date         time.Time
	Record       *AttendanceRecord
	MembershipID string
	Status       Status
}

type PendingChange struct {
	MembershipID string
	Status       Status
	Notes        string
	DisplayName  string
	Date         time.Time
}

// GroupKey partitions pending changes by (team, shift, day).
type GroupKey struct {
	TeamID  string
	ShiftID string
	Day     string
}

func (k GroupKey) String() string {
	return k.TeamID + "|" + k.ShiftID + "|" + k.Day
}

// CellRef addresses one cell. MemberID may be the membership id or any id
// of the person's identity.
type CellRef struct {
	TeamID   string
	ShiftID  string
	Date     time.Time
	MemberID string
}

func (r CellRef) Group() GroupKey {
	return GroupKey{TeamID: r.TeamID, ShiftID: r.ShiftID, Day: DayKey(r.Date)}
}
