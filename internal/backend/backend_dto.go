package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-staffops/internal/schedule"
)

// wireID accepts ids sent as JSON strings or numbers.
type wireID string

func (id *wireID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = wireID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = wireID(n.String())
	return nil
}

// wireDate accepts "2006-01-02" as well as full RFC 3339 timestamps; only
// the calendar date is kept.
type wireDate time.Time

func (d *wireDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*d = wireDate{}
		return nil
	}
	if len(s) >= len(dateLayout) {
		if t, err := time.Parse(dateLayout, s[:len(dateLayout)]); err == nil {
			*d = wireDate(t)
			return nil
		}
	}
	return fmt.Errorf("date: cannot parse %q", s)
}

const dateLayout = "2006-01-02"

// wireWeekdays accepts [1,3,5] or "1,3,5". Sunday is 0; 7 is also read as
// Sunday.
type wireWeekdays []time.Weekday

func (w *wireWeekdays) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		*w = nil
		return nil
	}
	var parts []string
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parts = strings.Split(s, ",")
	} else {
		var nums []json.Number
		if err := json.Unmarshal(b, &nums); err != nil {
			return fmt.Errorf("weekdays: %w", err)
		}
		for _, n := range nums {
			parts = append(parts, n.String())
		}
	}

	out := make(wireWeekdays, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 || n > 7 {
			continue
		}
		out = append(out, time.Weekday(n%7))
	}
	*w = out
	return nil
}

type personDTO struct {
	ID         wireID `json:"id"`
	EmployeeID wireID `json:"employee_id"`
	UserID     wireID `json:"user_id"`
	AccountID  wireID `json:"account_id"`
	FullName   string `json:"full_name"`
	Name       string `json:"name"`
}

func (p *personDTO) toPerson(membershipID string) schedule.Person {
	if p == nil {
		return schedule.Person{MembershipID: membershipID}
	}
	account := p.AccountID
	if account == "" {
		account = p.UserID
	}
	name := p.FullName
	if name == "" {
		name = p.Name
	}
	return schedule.Person{
		ID:           string(p.ID),
		EmployeeID:   string(p.EmployeeID),
		AccountID:    string(account),
		MembershipID: membershipID,
		Name:         name,
	}
}

type shiftDTO struct {
	ID        wireID       `json:"id"`
	Name      string       `json:"name"`
	StartTime string       `json:"start_time"`
	EndTime   string       `json:"end_time"`
	Weekdays  wireWeekdays `json:"weekdays"`
}

type teamShiftDTO struct {
	Shift    shiftDTO     `json:"shift"`
	Weekdays wireWeekdays `json:"weekdays"`
}

type membershipDTO struct {
	ID         wireID     `json:"id"`
	EmployeeID wireID     `json:"employee_id"`
	UserID     wireID     `json:"user_id"`
	Employee   *personDTO `json:"employee"`
}

type teamDTO struct {
	ID       wireID          `json:"id"`
	Name     string          `json:"name"`
	Leader   *personDTO      `json:"leader"`
	LeaderID wireID          `json:"leader_id"`
	Shifts   []teamShiftDTO  `json:"shifts"`
	Members  []membershipDTO `json:"members"`
}

func (t teamDTO) toTeam() schedule.Team {
	team := schedule.Team{
		ID:      string(t.ID),
		Name:    t.Name,
		Shifts:  make([]schedule.TeamShiftAssignment, 0, len(t.Shifts)),
		Members: make([]schedule.MembershipLink, 0, len(t.Members)),
	}
	switch {
	case t.Leader != nil:
		p := t.Leader.toPerson("")
		team.Leader = &p
	case t.LeaderID != "":
		team.Leader = &schedule.Person{ID: string(t.LeaderID)}
	}
	for _, s := range t.Shifts {
		team.Shifts = append(team.Shifts, schedule.TeamShiftAssignment{
			Shift: schedule.ShiftDefinition{
				ID:        string(s.Shift.ID),
				Name:      s.Shift.Name,
				StartTime: s.Shift.StartTime,
				EndTime:   s.Shift.EndTime,
				Weekdays:  s.Shift.Weekdays,
			},
			Weekdays: s.Weekdays,
		})
	}
	for _, m := range t.Members {
		p := m.Employee.toPerson(string(m.ID))
		if p.EmployeeID == "" {
			p.EmployeeID = string(m.EmployeeID)
		}
		if p.AccountID == "" {
			p.AccountID = string(m.UserID)
		}
		team.Members = append(team.Members, schedule.MembershipLink{
			ID:       string(m.ID),
			TeamID:   team.ID,
			Employee: p,
		})
	}
	return team
}

// recordDTO mirrors an attendance row as the backend returns it. Which of
// the identity fields are populated varies by endpoint.
type recordDTO struct {
	ID           wireID     `json:"id"`
	MembershipID wireID     `json:"membership_id"`
	Membership   *struct {
		ID wireID `json:"id"`
	} `json:"membership"`
	EmployeeID wireID     `json:"employee_id"`
	UserID     wireID     `json:"user_id"`
	TeamID     wireID     `json:"team_id"`
	ShiftID    wireID     `json:"shift_id"`
	Date       wireDate   `json:"date"`
	Status     string     `json:"status"`
	Notes      *string    `json:"notes"`
	Employee   *personDTO `json:"employee"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (r recordDTO) toRecord() schedule.AttendanceRecord {
	rec := schedule.AttendanceRecord{
		ID:           string(r.ID),
		MembershipID: string(r.MembershipID),
		EmployeeID:   string(r.EmployeeID),
		AccountID:    string(r.UserID),
		TeamID:       string(r.TeamID),
		ShiftID:      string(r.ShiftID),
		Date:         schedule.DateOnly(time.Time(r.Date)),
		Status:       parseStatus(r.Status),
		UpdatedAt:    r.UpdatedAt,
	}
	if rec.MembershipID == "" && r.Membership != nil {
		rec.MembershipID = string(r.Membership.ID)
	}
	if r.Notes != nil {
		rec.Notes = *r.Notes
	}
	if r.Employee != nil {
		p := r.Employee.toPerson(rec.MembershipID)
		rec.Employee = &p
	}
	return rec
}

// parseStatus maps values the engine does not know to PENDING.
func parseStatus(s string) schedule.Status {
	st, err := schedule.ParseStatus(s)
	if err != nil {
		return schedule.StatusPending
	}
	return st
}

func toRecords(rows []recordDTO) []schedule.AttendanceRecord {
	out := make([]schedule.AttendanceRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toRecord())
	}
	return out
}

// recordList decodes either a bare array or an object carrying the array
// under "records" or "items".
type recordList []recordDTO

func (l *recordList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var rows []recordDTO
		if err := json.Unmarshal(b, &rows); err != nil {
			return err
		}
		*l = rows
		return nil
	}
	var obj struct {
		Records []recordDTO `json:"records"`
		Items   []recordDTO `json:"items"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	if obj.Records != nil {
		*l = obj.Records
	} else {
		*l = obj.Items
	}
	return nil
}

type bulkItemRequest struct {
	MembershipID string `json:"membership_id"`
	Status       string `json:"status"`
	Notes        string `json:"notes,omitempty"`
}

type bulkRequest struct {
	ShiftID string            `json:"shift_id"`
	Date    string            `json:"date"`
	Items   []bulkItemRequest `json:"items"`
}

func toBulkRequest(b schedule.Batch) bulkRequest {
	req := bulkRequest{
		ShiftID: b.ShiftID,
		Date:    schedule.DayKey(b.Date),
		Items:   make([]bulkItemRequest, 0, len(b.Items)),
	}
	for _, item := range b.Items {
		req.Items = append(req.Items, bulkItemRequest{
			MembershipID: item.MembershipID,
			Status:       string(item.Status.OrPending()),
			Notes:        item.Notes,
		})
	}
	return req
}
