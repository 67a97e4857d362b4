package schedule

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"

	scheduleerrors "go-staffops/internal/schedule/errors"
)

const (
	summarySheet   = "Summary"
	maxSheetName   = 31
	clockLayout    = "15:04"
	calendarProdID = "-//go-staffops//schedule//EN"
)

// WriteWorkbook renders the snapshot as one sheet per team and shift:
// roster entries down, dates across, status in each cell. Staged changes
// are shown with a trailing asterisk.
func WriteWorkbook(snap Snapshot) (*bytes.Buffer, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, "", scheduleerrors.ErrExportFailed.WithCause(err)
	}
	writeSummary(f, snap)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	used := map[string]int{summarySheet: 1}
	for _, tg := range snap.Grid.Teams {
		for _, sg := range tg.Shifts {
			name := sheetName(tg.Team.Name, sg.Shift.Name, used)
			if _, err := f.NewSheet(name); err != nil {
				return nil, "", scheduleerrors.ErrExportFailed.WithCause(err)
			}

			_ = f.SetCellValue(name, "A1", fmt.Sprintf("%s / %s (%s-%s)", tg.Team.Name, sg.Shift.Name, sg.Shift.StartTime, sg.Shift.EndTime))
			_ = f.SetCellValue(name, "A2", "Member")
			_ = f.SetColWidth(name, "A", "A", 24)
			for i, dg := range sg.Days {
				col := colName(i + 2)
				_ = f.SetCellValue(name, cellName(col, 2), DayKey(dg.Date))
				_ = f.SetColWidth(name, col, col, 12)
			}
			lastCol := colName(len(sg.Days) + 1)
			_ = f.SetCellStyle(name, "A2", cellName(lastCol, 2), headerStyle)

			for r, entry := range tg.Roster {
				row := r + 3
				label := entry.Person.Name
				if entry.IsLeader {
					label += " (leader)"
				}
				_ = f.SetCellValue(name, cellName("A", row), label)

				for i, dg := range sg.Days {
					key := GroupKey{TeamID: tg.Team.ID, ShiftID: sg.Shift.ID, Day: DayKey(dg.Date)}
					_ = f.SetCellValue(name, cellName(colName(i+2), row), cellText(dg, entry, snap.Pending[key]))
				}
			}
		}
	}

	f.SetActiveSheet(0)
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, "", scheduleerrors.ErrExportFailed.WithCause(err)
	}
	return buf, fmt.Sprintf("attendance_%s.xlsx", snap.Grid.Window.String()), nil
}

func writeSummary(f *excelize.File, snap Snapshot) {
	from, to := snap.Grid.Window.Bounds()
	rows := [][2]any{
		{"Window", snap.Grid.Window.String()},
		{"From", DayKey(from)},
		{"To", DayKey(to)},
		{"Present", snap.Stats.Present},
		{"Late", snap.Stats.Late},
		{"Absent", snap.Stats.Absent},
		{"Excused", snap.Stats.Excused},
		{"Pending", snap.Stats.Pending},
		{"Total", snap.Stats.Total},
	}
	for i, r := range rows {
		_ = f.SetCellValue(summarySheet, cellName("A", i+1), r[0])
		_ = f.SetCellValue(summarySheet, cellName("B", i+1), r[1])
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 12)
}

func cellText(dg DayGrid, entry RosterEntry, staged []PendingChange) string {
	for _, c := range dg.Cells {
		if !c.Entry.Identity.Intersects(entry.Identity) {
			continue
		}
		for _, p := range staged {
			if p.MembershipID == c.MembershipID && p.MembershipID != "" {
				return string(p.Status) + "*"
			}
		}
		return string(c.Status)
	}
	return "-"
}

// sheetName fits Excel's limits: at most 31 characters, none of []:*?/\,
// unique within the workbook.
func sheetName(team, shift string, used map[string]int) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, team+" - "+shift)
	name = truncateRunes(name, maxSheetName)

	used[name]++
	if n := used[name]; n > 1 {
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncateRunes(name, maxSheetName-len(suffix)) + suffix
		used[name]++
	}
	return name
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx)
	return name
}

func cellName(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// BuildCalendar renders the viewer's own cells as iCalendar events, one per
// shift occurrence, with the status in the summary.
func BuildCalendar(snap Snapshot, viewer IdentitySet, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProdID)
	cal.SetName("Attendance " + snap.Grid.Window.String())

	stamp := now().UTC()
	for _, tg := range snap.Grid.Teams {
		for _, sg := range tg.Shifts {
			for _, dg := range sg.Days {
				for _, c := range dg.Cells {
					if !c.Entry.Identity.Intersects(viewer) {
						continue
					}
					uid := fmt.Sprintf("%s-%s-%s@go-staffops", tg.Team.ID, sg.Shift.ID, DayKey(dg.Date))
					event := cal.AddEvent(uid)
					event.SetDtStampTime(stamp)
					event.SetSummary(fmt.Sprintf("%s: %s (%s)", tg.Team.Name, sg.Shift.Name, c.Status))
					if c.Record != nil && c.Record.Notes != "" {
						event.SetDescription(c.Record.Notes)
					}
					start, startErr := clockOn(dg.Date, sg.Shift.StartTime, loc)
					end, endErr := clockOn(dg.Date, sg.Shift.EndTime, loc)
					if startErr != nil || endErr != nil {
						event.SetAllDayStartAt(dg.Date)
						event.SetAllDayEndAt(dg.Date.AddDate(0, 0, 1))
						continue
					}
					if !end.After(start) {
						end = end.AddDate(0, 0, 1) // overnight shift
					}
					event.SetStartAt(start)
					event.SetEndAt(end)
				}
			}
		}
	}
	return cal.Serialize()
}

func clockOn(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(clockLayout, clock)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc), nil
}
