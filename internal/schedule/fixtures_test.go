package schedule_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go-staffops/internal/schedule"
)

var monday = time.Date(2026, time.February, 2, 0, 0, 0, 0, time.UTC)

var (
	leader  = schedule.Person{ID: "emp-l", AccountID: "acc-l", Name: "Lena"}
	member1 = schedule.Person{ID: "emp-1", AccountID: "acc-1", Name: "Mika"}
	member2 = schedule.Person{ID: "emp-2", Name: "Noor"}

	morning = schedule.ShiftDefinition{
		ID:        "shift-am",
		Name:      "Morning",
		StartTime: "08:00",
		EndTime:   "12:00",
		Weekdays:  []time.Weekday{time.Monday},
	}
)

// newTeam is a team led by Lena, who is also listed as a member.
func newTeam() schedule.Team {
	l := leader
	return schedule.Team{
		ID:     "team-1",
		Name:   "Front desk",
		Leader: &l,
		Shifts: []schedule.TeamShiftAssignment{{Shift: morning}},
		Members: []schedule.MembershipLink{
			{ID: "mem-l", TeamID: "team-1", Employee: leader},
			{ID: "mem-1", TeamID: "team-1", Employee: member1},
			{ID: "mem-2", TeamID: "team-1", Employee: member2},
		},
	}
}

func mondayKey() schedule.GroupKey {
	return schedule.GroupKey{TeamID: "team-1", ShiftID: morning.ID, Day: schedule.DayKey(monday)}
}

func record(id, membershipID string, status schedule.Status) schedule.AttendanceRecord {
	return schedule.AttendanceRecord{
		ID:           id,
		MembershipID: membershipID,
		TeamID:       "team-1",
		ShiftID:      morning.ID,
		Date:         monday,
		Status:       status,
	}
}

// memoryStore is an in-process Store that behaves like the backend:
// commits upsert by (membership, date, shift) and fetches filter by team
// and date range.
type memoryStore struct {
	mu       sync.Mutex
	teams    []schedule.Team
	records  []schedule.AttendanceRecord
	batches  []schedule.Batch
	seq      int
	fetchErr error
}

func newMemoryStore(teams ...schedule.Team) *memoryStore {
	return &memoryStore{teams: teams}
}

func (s *memoryStore) FetchTeams(context.Context) ([]schedule.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]schedule.Team(nil), s.teams...), nil
}

func (s *memoryStore) FetchAttendance(_ context.Context, q schedule.AttendanceQuery) ([]schedule.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	var out []schedule.AttendanceRecord
	for _, r := range s.records {
		if r.TeamID != q.TeamID || r.Date.Before(q.From) || r.Date.After(q.To) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *memoryStore) CommitAttendance(_ context.Context, teamID string, b schedule.Batch) ([]schedule.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, b)

	saved := make([]schedule.AttendanceRecord, 0, len(b.Items))
	for _, item := range b.Items {
		i := -1
		for j, r := range s.records {
			if r.MembershipID == item.MembershipID && r.ShiftID == b.ShiftID && schedule.SameDay(r.Date, b.Date) {
				i = j
				break
			}
		}
		if i < 0 {
			s.seq++
			s.records = append(s.records, schedule.AttendanceRecord{
				ID:           fmt.Sprintf("rec-%d", s.seq),
				MembershipID: item.MembershipID,
				EmployeeID:   s.employeeOf(teamID, item.MembershipID),
				TeamID:       teamID,
				ShiftID:      b.ShiftID,
				Date:         b.Date,
			})
			i = len(s.records) - 1
		}
		s.records[i].Status = item.Status
		s.records[i].Notes = item.Notes
		saved = append(saved, s.records[i])
	}
	return saved, nil
}

func (s *memoryStore) employeeOf(teamID, membershipID string) string {
	for _, t := range s.teams {
		if t.ID != teamID {
			continue
		}
		for _, m := range t.Members {
			if m.ID == membershipID {
				return m.Employee.ID
			}
		}
	}
	return ""
}

func (s *memoryStore) batchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

func (s *memoryStore) setFetchErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchErr = err
}

// gatedStore holds the next FetchAttendance after reading, until release
// is closed, so a refresh can be overtaken by a commit.
type gatedStore struct {
	*memoryStore
	gate    chan struct{}
	started chan struct{}
	release chan struct{}
}

func newGatedStore(inner *memoryStore) *gatedStore {
	return &gatedStore{memoryStore: inner}
}

func (s *gatedStore) arm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate = make(chan struct{})
	s.started = make(chan struct{})
	s.release = s.gate
}

func (s *gatedStore) FetchAttendance(ctx context.Context, q schedule.AttendanceQuery) ([]schedule.AttendanceRecord, error) {
	recs, err := s.memoryStore.FetchAttendance(ctx, q)

	s.mu.Lock()
	gate, started := s.gate, s.started
	s.gate = nil
	s.mu.Unlock()

	if gate != nil {
		close(started)
		<-gate
	}
	return recs, err
}
