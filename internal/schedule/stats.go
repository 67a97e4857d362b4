package schedule

type Stats struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
	Excused int `json:"excused"`
	Pending int `json:"pending"`
	Total   int `json:"total"`
}

// Tally counts persisted records inside the window by status. Placeholder
// cells are not records and are never counted.
func Tally(records []AttendanceRecord, window Window) Stats {
	var s Stats
	for _, r := range records {
		if !window.Contains(r.Date) {
			continue
		}
		switch r.Status.OrPending() {
		case StatusPresent:
			s.Present++
		case StatusAbsent:
			s.Absent++
		case StatusLate:
			s.Late++
		case StatusExcused:
			s.Excused++
		default:
			s.Pending++
		}
		s.Total++
	}
	return s
}
