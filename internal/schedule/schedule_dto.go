package schedule

import (
	"slices"
	"time"

	scheduleerrors "go-staffops/internal/schedule/errors"
)

// WindowQuery selects the view: date=YYYY-MM-DD for a day, or month and
// year together. Neither keeps the session's current window.
type WindowQuery struct {
	Date  string `form:"date" binding:"omitempty,day"`
	Month int    `form:"month" binding:"omitempty,min=1,max=12"`
	Year  int    `form:"year" binding:"omitempty,min=1"`
}

func (q WindowQuery) Window() (Window, error) {
	switch {
	case q.Date != "":
		d, err := ParseDay(q.Date)
		if err != nil {
			return Window{}, err
		}
		return DayWindow(d), nil
	case q.Month != 0 && q.Year != 0:
		return MonthWindow(q.Year, time.Month(q.Month))
	case q.Month != 0 || q.Year != 0:
		return Window{}, scheduleerrors.ErrInvalidWindow
	default:
		return Window{}, nil
	}
}

type GroupRequest struct {
	TeamID  string `json:"team_id" form:"team_id" binding:"required"`
	ShiftID string `json:"shift_id" form:"shift_id" binding:"required"`
	Date    string `json:"date" form:"date" binding:"required,day"`
}

func (r GroupRequest) Key() (GroupKey, error) {
	d, err := ParseDay(r.Date)
	if err != nil {
		return GroupKey{}, err
	}
	return GroupKey{TeamID: r.TeamID, ShiftID: r.ShiftID, Day: DayKey(d)}, nil
}

// StageChangeRequest stages one cell. MemberID is the membership id or
// any id the member is known by.
type StageChangeRequest struct {
	GroupRequest
	MemberID string `json:"member_id" binding:"required"`
	Status   string `json:"status" binding:"required,attendance_status"`
	Notes    string `json:"notes" binding:"max=500"`
}

type UpdateRecordRequest struct {
	GroupRequest
	MemberID string `json:"member_id" binding:"required"`
	Status   string `json:"status" binding:"required,attendance_status"`
	Notes    string `json:"notes" binding:"max=500"`
}

type GridResponse struct {
	Window      string             `json:"window"`
	View        string             `json:"view"`
	From        string             `json:"from"`
	To          string             `json:"to"`
	Teams       []TeamGridResponse `json:"teams"`
	Stats       Stats              `json:"stats"`
	DirtyGroups []string           `json:"dirty_groups"`
}

type TeamGridResponse struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	IsLeader bool                `json:"is_leader"`
	Shifts   []ShiftGridResponse `json:"shifts"`
}

type ShiftGridResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	StartTime string            `json:"start_time,omitempty"`
	EndTime   string            `json:"end_time,omitempty"`
	Days      []DayGridResponse `json:"days"`
}

type DayGridResponse struct {
	Date  string         `json:"date"`
	Dirty bool           `json:"dirty"`
	Cells []CellResponse `json:"cells"`
}

type CellResponse struct {
	MemberName   string                 `json:"member_name"`
	EmployeeID   string                 `json:"employee_id,omitempty"`
	MembershipID string                 `json:"membership_id,omitempty"`
	IsLeader     bool                   `json:"is_leader"`
	Status       string                 `json:"status"`
	Notes        string                 `json:"notes,omitempty"`
	RecordID     string                 `json:"record_id,omitempty"`
	Placeholder  bool                   `json:"placeholder"`
	Editable     bool                   `json:"editable"`
	Pending      *PendingChangeResponse `json:"pending,omitempty"`
}

type PendingChangeResponse struct {
	MembershipID string `json:"membership_id"`
	Status       string `json:"status"`
	Notes        string `json:"notes,omitempty"`
	DisplayName  string `json:"display_name,omitempty"`
	Date         string `json:"date"`
}

type PendingGroupResponse struct {
	Group   string                  `json:"group"`
	Changes []PendingChangeResponse `json:"changes"`
}

type RecordResponse struct {
	ID           string `json:"id,omitempty"`
	MembershipID string `json:"membership_id,omitempty"`
	EmployeeID   string `json:"employee_id,omitempty"`
	TeamID       string `json:"team_id"`
	ShiftID      string `json:"shift_id"`
	Date         string `json:"date"`
	Status       string `json:"status"`
	Notes        string `json:"notes,omitempty"`
}

type CommitResponse struct {
	Group     string           `json:"group"`
	Records   []RecordResponse `json:"records"`
	Escalated bool             `json:"escalated"`
}

func mapSnapshot(snap Snapshot) GridResponse {
	from, to := snap.Grid.Window.Bounds()
	resp := GridResponse{
		Window:      snap.Grid.Window.String(),
		View:        "month",
		From:        DayKey(from),
		To:          DayKey(to),
		Teams:       make([]TeamGridResponse, 0, len(snap.Grid.Teams)),
		Stats:       snap.Stats,
		DirtyGroups: make([]string, 0, len(snap.Pending)),
	}
	if snap.Grid.Window.IsDay() {
		resp.View = "day"
	}

	for key := range snap.Pending {
		resp.DirtyGroups = append(resp.DirtyGroups, key.String())
	}

	for _, tg := range snap.Grid.Teams {
		team := TeamGridResponse{
			ID:       tg.Team.ID,
			Name:     tg.Team.Name,
			IsLeader: tg.IsLeader,
			Shifts:   make([]ShiftGridResponse, 0, len(tg.Shifts)),
		}
		for _, sg := range tg.Shifts {
			shift := ShiftGridResponse{
				ID:        sg.Shift.ID,
				Name:      sg.Shift.Name,
				StartTime: sg.Shift.StartTime,
				EndTime:   sg.Shift.EndTime,
				Days:      make([]DayGridResponse, 0, len(sg.Days)),
			}
			for _, dg := range sg.Days {
				key := GroupKey{TeamID: tg.Team.ID, ShiftID: sg.Shift.ID, Day: DayKey(dg.Date)}
				staged := snap.Pending[key]
				day := DayGridResponse{
					Date:  key.Day,
					Dirty: len(staged) > 0,
					Cells: make([]CellResponse, 0, len(dg.Cells)),
				}
				for _, cell := range dg.Cells {
					day.Cells = append(day.Cells, mapCell(cell, staged))
				}
				shift.Days = append(shift.Days, day)
			}
			team.Shifts = append(team.Shifts, shift)
		}
		resp.Teams = append(resp.Teams, team)
	}
	slices.Sort(resp.DirtyGroups)
	return resp
}

func mapCell(cell Cell, staged []PendingChange) CellResponse {
	resp := CellResponse{
		MemberName:   cell.Entry.Person.Name,
		EmployeeID:   cell.Entry.Person.ID,
		MembershipID: cell.MembershipID,
		IsLeader:     cell.Entry.IsLeader,
		Status:       string(cell.Status),
		Placeholder:  cell.Record == nil,
		Editable:     cell.MembershipID != "",
	}
	if cell.Record != nil {
		resp.RecordID = cell.Record.ID
		resp.Notes = cell.Record.Notes
	}
	for _, c := range staged {
		if c.MembershipID != "" && c.MembershipID == cell.MembershipID {
			p := mapPendingChange(c)
			resp.Pending = &p
			break
		}
	}
	return resp
}

func mapPendingChange(c PendingChange) PendingChangeResponse {
	return PendingChangeResponse{
		MembershipID: c.MembershipID,
		Status:       string(c.Status),
		Notes:        c.Notes,
		DisplayName:  c.DisplayName,
		Date:         DayKey(c.Date),
	}
}

func mapPendingGroup(key GroupKey, changes []PendingChange) PendingGroupResponse {
	resp := PendingGroupResponse{Group: key.String(), Changes: make([]PendingChangeResponse, 0, len(changes))}
	for _, c := range changes {
		resp.Changes = append(resp.Changes, mapPendingChange(c))
	}
	return resp
}

func mapCommitResult(res CommitResult) CommitResponse {
	resp := CommitResponse{
		Group:     res.Group.String(),
		Records:   make([]RecordResponse, 0, len(res.Records)),
		Escalated: res.Escalated,
	}
	for _, r := range res.Records {
		resp.Records = append(resp.Records, RecordResponse{
			ID:           r.ID,
			MembershipID: r.MembershipID,
			EmployeeID:   r.EmployeeID,
			TeamID:       r.TeamID,
			ShiftID:      r.ShiftID,
			Date:         DayKey(r.Date),
			Status:       string(r.Status.OrPending()),
			Notes:        r.Notes,
		})
	}
	return resp
}
