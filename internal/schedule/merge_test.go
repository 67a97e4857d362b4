package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go-staffops/internal/schedule"
)

func TestRecordSet_Upsert(t *testing.T) {
	t.Run("idempotent", func(t *testing.T) {
		r := record("r1", "mem-1", schedule.StatusPresent)
		s := schedule.NewRecordSet()

		s.Upsert(r)
		once := s.All()
		s.Upsert(r)

		assert.Equal(t, once, s.All())
		assert.Equal(t, 1, s.Len())
	})

	t.Run("match by membership and day without id", func(t *testing.T) {
		m := member1
		s := schedule.NewRecordSet(schedule.AttendanceRecord{
			ID:           "r1",
			MembershipID: "mem-1",
			TeamID:       "team-1",
			ShiftID:      morning.ID,
			Date:         monday,
			Status:       schedule.StatusPending,
			Employee:     &m,
		})

		s.Upsert(schedule.AttendanceRecord{
			MembershipID: "mem-1",
			Date:         monday.Add(9 * time.Hour),
			Status:       schedule.StatusLate,
			Notes:        "bus",
		})

		all := s.All()
		if assert.Len(t, all, 1) {
			assert.Equal(t, "r1", all[0].ID)
			assert.Equal(t, schedule.StatusLate, all[0].Status)
			assert.Equal(t, "bus", all[0].Notes)
			// nested employee survives an update that omits it
			assert.Equal(t, "Mika", all[0].Employee.Name)
		}
	})

	t.Run("different shift same day appends", func(t *testing.T) {
		s := schedule.NewRecordSet(record("r1", "mem-1", schedule.StatusPresent))

		pm := record("", "mem-1", schedule.StatusAbsent)
		pm.ShiftID = "shift-pm"
		s.Upsert(pm)

		assert.Equal(t, 2, s.Len())
	})
}

func TestRecordSet_ReplaceTeam(t *testing.T) {
	m := member1
	withEmployee := record("r1", "mem-1", schedule.StatusPending)
	withEmployee.Employee = &m

	other := record("x1", "mem-x", schedule.StatusPresent)
	other.TeamID = "team-2"

	s := schedule.NewRecordSet(withEmployee, other)
	s.ReplaceTeam("team-1", []schedule.AttendanceRecord{
		{ID: "r1", Status: schedule.StatusPresent},
		record("r2", "mem-2", schedule.StatusAbsent),
	})

	assert.Equal(t, 3, s.Len())
	assert.Len(t, s.ForTeam("team-2"), 1)

	team1 := s.ForTeam("team-1")
	if assert.Len(t, team1, 2) {
		assert.Equal(t, schedule.StatusPresent, team1[0].Status)
		assert.NotNil(t, team1[0].Employee)
	}
}

func TestRecordSet_EmployeeOnlyRecords(t *testing.T) {
	byEmployee := schedule.AttendanceRecord{
		EmployeeID: "emp-1",
		TeamID:     "team-1",
		ShiftID:    morning.ID,
		Date:       monday,
		Status:     schedule.StatusPresent,
	}

	t.Run("upsert twice is upsert once", func(t *testing.T) {
		s := schedule.NewRecordSet()

		s.Upsert(byEmployee)
		once := s.All()
		s.Upsert(byEmployee)

		assert.Equal(t, once, s.All())
	})

	t.Run("refetch replaces instead of appending", func(t *testing.T) {
		s := schedule.NewRecordSet()

		s.ReplaceTeam("team-1", []schedule.AttendanceRecord{byEmployee})
		late := byEmployee
		late.Status = schedule.StatusLate
		s.ReplaceTeam("team-1", []schedule.AttendanceRecord{late})
		s.ReplaceTeam("team-1", []schedule.AttendanceRecord{late})

		all := s.All()
		if assert.Len(t, all, 1) {
			assert.Equal(t, schedule.StatusLate, all[0].Status)
		}
		assert.Equal(t, schedule.Stats{Late: 1, Total: 1}, schedule.Tally(all, schedule.DayWindow(monday)))
	})

	t.Run("matches a stored record through its employee", func(t *testing.T) {
		m := member1
		s := schedule.NewRecordSet(schedule.AttendanceRecord{
			ID: "r1", MembershipID: "mem-1", TeamID: "team-1", ShiftID: morning.ID, Date: monday, Employee: &m,
		})

		s.Upsert(schedule.AttendanceRecord{AccountID: "acc-1", TeamID: "team-1", ShiftID: morning.ID, Date: monday, Status: schedule.StatusAbsent})

		all := s.All()
		if assert.Len(t, all, 1) {
			assert.Equal(t, "r1", all[0].ID)
			assert.Equal(t, schedule.StatusAbsent, all[0].Status)
		}
	})

	t.Run("other employee or other team appends", func(t *testing.T) {
		s := schedule.NewRecordSet(byEmployee)

		other := byEmployee
		other.EmployeeID = "emp-2"
		s.Upsert(other)

		elsewhere := byEmployee
		elsewhere.TeamID = "team-2"
		s.Upsert(elsewhere)

		assert.Equal(t, 3, s.Len())
	})
}
