package attendance

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"go-staffops/internal/schedule"
)

const uniqueMemberDay = "uq_shift_attendance_member_day"

// parseWeekdays reads "1,3,5". Blank or out of range parts are skipped.
func parseWeekdays(s string) []time.Weekday {
	out := make([]time.Weekday, 0, 7)
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 6 {
			continue
		}
		out = append(out, time.Weekday(n))
	}
	return out
}

func employeePerson(e *EmployeeRef, membershipID string) schedule.Person {
	if e == nil {
		return schedule.Person{MembershipID: membershipID}
	}
	p := schedule.Person{
		ID:           e.ID.String(),
		EmployeeID:   e.ID.String(),
		MembershipID: membershipID,
		Name:         e.FullName,
	}
	if e.UserID != nil {
		p.AccountID = e.UserID.String()
	}
	return p
}

func toScheduleTeam(t Team) schedule.Team {
	team := schedule.Team{
		ID:      t.ID.String(),
		Name:    t.Name,
		Shifts:  make([]schedule.TeamShiftAssignment, 0, len(t.Shifts)),
		Members: make([]schedule.MembershipLink, 0, len(t.Memberships)),
	}
	if t.Leader != nil {
		leader := employeePerson(t.Leader, "")
		team.Leader = &leader
	}
	for _, ts := range t.Shifts {
		a := schedule.TeamShiftAssignment{Shift: schedule.ShiftDefinition{
			ID:        ts.Shift.ID.String(),
			Name:      ts.Shift.Name,
			StartTime: ts.Shift.StartTime,
			EndTime:   ts.Shift.EndTime,
			Weekdays:  parseWeekdays(ts.Shift.Weekdays),
		}}
		if ts.Weekdays != nil {
			a.Weekdays = parseWeekdays(*ts.Weekdays)
		}
		team.Shifts = append(team.Shifts, a)
	}
	for _, m := range t.Memberships {
		team.Members = append(team.Members, schedule.MembershipLink{
			ID:       m.ID.String(),
			TeamID:   team.ID,
			Employee: employeePerson(m.Employee, m.ID.String()),
		})
	}
	return team
}

func toScheduleRecord(a ShiftAttendance) schedule.AttendanceRecord {
	rec := schedule.AttendanceRecord{
		ID:           a.ID.String(),
		MembershipID: a.MembershipID.String(),
		TeamID:       a.TeamID.String(),
		ShiftID:      a.ShiftID.String(),
		Date:         schedule.DateOnly(a.AttendanceDate),
		Status:       schedule.Status(a.Status),
		UpdatedAt:    a.UpdatedAt,
	}
	if a.Notes != nil {
		rec.Notes = *a.Notes
	}
	if a.Membership != nil {
		rec.EmployeeID = a.Membership.EmployeeID.String()
		if a.Membership.Employee != nil {
			p := employeePerson(a.Membership.Employee, rec.MembershipID)
			rec.AccountID = p.AccountID
			rec.Employee = &p
		}
	}
	return rec
}

func toScheduleRecords(rows []ShiftAttendance) []schedule.AttendanceRecord {
	out := make([]schedule.AttendanceRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, toScheduleRecord(r))
	}
	return out
}

func parseIDs(ids ...string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		u, err := uuid.Parse(id)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// isUniqueMemberDayViolation reports a concurrent insert of the same
// (membership, shift, date) row.
func isUniqueMemberDayViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == uniqueMemberDay
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, uniqueMemberDay)
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
