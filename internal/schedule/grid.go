package schedule

import "time"

// Grid is Team -> Shift -> Date -> cells, in team, assignment and date order.
type Grid struct {
	Window Window
	Teams  []TeamGrid
}

type TeamGrid struct {
	Team     Team
	IsLeader bool
	Roster   []RosterEntry
	Shifts   []ShiftGrid
}

type ShiftGrid struct {
	Shift ShiftDefinition
	Days  []DayGrid
}

type DayGrid struct {
	Date  time.Time
	Cells []Cell
}

// BuildGrid is a pure function of its inputs.
//
// When viewer leads a team every roster entry gets a cell on every expanded
// date, with a PENDING placeholder where no record exists. Otherwise only
// roster entries with a persisted record get a cell, so non-leaders never
// see synthesized rows.
func BuildGrid(teams []Team, records []AttendanceRecord, window Window, viewer IdentitySet) Grid {
	grid := Grid{Window: window, Teams: make([]TeamGrid, 0, len(teams))}

	for i := range teams {
		team := teams[i]
		roster := BuildRoster(team)
		leader := IsLeaderOf(team, viewer)
		teamRecords := recordsForTeam(records, team.ID)

		tg := TeamGrid{
			Team:     team,
			IsLeader: leader,
			Roster:   roster,
			Shifts:   make([]ShiftGrid, 0, len(team.Shifts)),
		}

		for _, assignment := range team.Shifts {
			sg := ShiftGrid{Shift: assignment.Shift}
			for _, date := range ExpandDates(assignment.EffectiveWeekdays(), window) {
				sg.Days = append(sg.Days, DayGrid{
					Date:  date,
					Cells: buildDayCells(&team, roster, teamRecords, assignment.Shift.ID, date, leader),
				})
			}
			tg.Shifts = append(tg.Shifts, sg)
		}

		grid.Teams = append(grid.Teams, tg)
	}

	return grid
}

func buildDayCells(team *Team, roster []RosterEntry, records []AttendanceRecord, shiftID string, date time.Time, leaderPolicy bool) []Cell {
	cells := make([]Cell, 0, len(roster))
	for _, entry := range roster {
		rec := MatchRecord(records, team.ID, shiftID, date, entry)
		if rec == nil && !leaderPolicy {
			continue
		}

		cell := Cell{
			Entry:   entry,
			TeamID:  team.ID,
			ShiftID: shiftID,
			Date:    date,
			Record:  rec,
			Status:  StatusPending,
		}
		if rec != nil {
			cell.Status = rec.Status.OrPending()
		}
		// an unresolved id leaves the cell read-only; mutation reports it
		cell.MembershipID, _ = ResolveMembershipID(MembershipLookup{
			Explicit: entry.Person.MembershipID,
			Record:   rec,
			Cached:   entry.MembershipID,
			Team:     team,
			Target:   entry.Identity,
		})
		cells = append(cells, cell)
	}
	return cells
}

// MatchRecord finds the persisted record for one roster entry in one slot.
// The returned pointer aliases records.
func MatchRecord(records []AttendanceRecord, teamID, shiftID string, date time.Time, entry RosterEntry) *AttendanceRecord {
	for i := range records {
		r := &records[i]
		if r.TeamID != teamID || r.ShiftID != shiftID || !SameDay(r.Date, date) {
			continue
		}
		if recordMatchesEntry(*r, entry) {
			return r
		}
	}
	return nil
}

// Direct id equality first, then the account/primary cross match, which
// the identity intersection covers both ways.
func recordMatchesEntry(r AttendanceRecord, entry RosterEntry) bool {
	if r.EmployeeID != "" && r.EmployeeID == entry.Person.ID {
		return true
	}
	if r.MembershipID != "" && r.MembershipID == entry.MembershipID {
		return true
	}
	return r.Identity().Intersects(entry.Identity)
}

func recordsForTeam(records []AttendanceRecord, teamID string) []AttendanceRecord {
	out := make([]AttendanceRecord, 0, len(records))
	for _, r := range records {
		if r.TeamID == teamID {
			out = append(out, r)
		}
	}
	return out
}

// Cell finds a member's cell in one slot of the grid. memberID may be the
// membership id or any id of the member's identity.
func (g Grid) Cell(key GroupKey, memberID string) (Cell, bool) {
	if memberID == "" {
		return Cell{}, false
	}
	day, ok := g.Day(key)
	if !ok {
		return Cell{}, false
	}
	for _, c := range day.Cells {
		if c.MembershipID == memberID || c.Entry.Identity.Contains(memberID) {
			return c, true
		}
	}
	return Cell{}, false
}

func (g Grid) Day(key GroupKey) (DayGrid, bool) {
	for _, tg := range g.Teams {
		if tg.Team.ID != key.TeamID {
			continue
		}
		for _, sg := range tg.Shifts {
			if sg.Shift.ID != key.ShiftID {
				continue
			}
			for _, dg := range sg.Days {
				if DayKey(dg.Date) == key.Day {
					return dg, true
				}
			}
		}
	}
	return DayGrid{}, false
}

func (g Grid) Team(teamID string) (TeamGrid, bool) {
	for _, tg := range g.Teams {
		if tg.Team.ID == teamID {
			return tg, true
		}
	}
	return TeamGrid{}, false
}

// CellCount is the number of cells across the whole grid.
func (g Grid) CellCount() int {
	n := 0
	for _, tg := range g.Teams {
		for _, sg := range tg.Shifts {
			for _, dg := range sg.Days {
				n += len(dg.Cells)
			}
		}
	}
	return n
}
