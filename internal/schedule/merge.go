package schedule

import "slices"

// RecordSet is the in-memory copy of persisted records.
type RecordSet struct {
	records []AttendanceRecord
}

func NewRecordSet(records ...AttendanceRecord) *RecordSet {
	s := &RecordSet{}
	for _, r := range records {
		s.Upsert(r)
	}
	return s
}

// Upsert merges r into the set. Applying the same record twice leaves the
// set unchanged.
func (s *RecordSet) Upsert(r AttendanceRecord) {
	if i := s.indexOf(r); i >= 0 {
		s.records[i] = mergeRecord(s.records[i], r)
		return
	}
	r.Date = DateOnly(r.Date)
	s.records = append(s.records, r)
}

// indexOf finds the stored copy of r: by record id, then by membership
// and day, then for records that carry only a person id, by identity
// within the same team, shift and day.
func (s *RecordSet) indexOf(r AttendanceRecord) int {
	if r.ID != "" {
		if i := slices.IndexFunc(s.records, func(e AttendanceRecord) bool { return e.ID == r.ID }); i >= 0 {
			return i
		}
	}
	if r.MembershipID != "" {
		i := slices.IndexFunc(s.records, func(e AttendanceRecord) bool {
			return e.MembershipID == r.MembershipID && sameSlot(e, r)
		})
		if i >= 0 {
			return i
		}
	}

	who := r.Identity()
	if who.Empty() {
		return -1
	}
	return slices.IndexFunc(s.records, func(e AttendanceRecord) bool {
		if e.MembershipID != "" && r.MembershipID != "" && e.MembershipID != r.MembershipID {
			return false
		}
		if e.TeamID != "" && r.TeamID != "" && e.TeamID != r.TeamID {
			return false
		}
		return sameSlot(e, r) && e.Identity().Intersects(who)
	})
}

// sameSlot compares day and shift. A member may work two shifts on one day;
// a missing shift id matches any.
func sameSlot(a, b AttendanceRecord) bool {
	if !SameDay(a.Date, b.Date) {
		return false
	}
	return a.ShiftID == "" || b.ShiftID == "" || a.ShiftID == b.ShiftID
}

// mergeRecord copies every non-zero field of in over cur. Nested objects
// the incoming record omits are kept.
func mergeRecord(cur, in AttendanceRecord) AttendanceRecord {
	out := cur
	if in.ID != "" {
		out.ID = in.ID
	}
	if in.MembershipID != "" {
		out.MembershipID = in.MembershipID
	}
	if in.EmployeeID != "" {
		out.EmployeeID = in.EmployeeID
	}
	if in.AccountID != "" {
		out.AccountID = in.AccountID
	}
	if in.TeamID != "" {
		out.TeamID = in.TeamID
	}
	if in.ShiftID != "" {
		out.ShiftID = in.ShiftID
	}
	if !in.Date.IsZero() {
		out.Date = DateOnly(in.Date)
	}
	if in.Status != "" {
		out.Status = in.Status
	}
	// notes are user text; an update that carries a status carries its notes
	if in.Notes != "" || in.Status != "" {
		out.Notes = in.Notes
	}
	if in.Employee != nil {
		emp := *in.Employee
		out.Employee = &emp
	}
	if !in.UpdatedAt.IsZero() {
		out.UpdatedAt = in.UpdatedAt
	}
	return out
}

// All returns a copy of the records in insertion order.
func (s *RecordSet) All() []AttendanceRecord {
	return slices.Clone(s.records)
}

func (s *RecordSet) Len() int { return len(s.records) }

// ForTeam returns a copy of the team's records.
func (s *RecordSet) ForTeam(teamID string) []AttendanceRecord {
	return recordsForTeam(s.records, teamID)
}

// ReplaceTeam swaps in a freshly fetched set for one team, merging each
// fetched record over the previous one so nested data survives.
func (s *RecordSet) ReplaceTeam(teamID string, fetched []AttendanceRecord) {
	next := &RecordSet{records: make([]AttendanceRecord, 0, len(s.records)+len(fetched))}
	var previous []AttendanceRecord
	for _, r := range s.records {
		if r.TeamID == teamID {
			previous = append(previous, r)
			continue
		}
		next.records = append(next.records, r)
	}

	prevSet := &RecordSet{records: previous}
	for _, r := range fetched {
		if r.TeamID == "" {
			r.TeamID = teamID
		}
		prevSet.Upsert(r)
	}
	next.records = append(next.records, prevSet.records...)
	s.records = next.records
}

func (s *RecordSet) Reset() {
	s.records = nil
}
