package events

import "time"

const AttendanceCommittedTopic = "staffops.attendance.committed.v1"

// AttendanceCommittedEvent is published after a batch or a single record
// is saved for one (team, shift, day).
type AttendanceCommittedEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id,omitempty"`
	CompanyID   string    `json:"company_id"`
	TeamID      string    `json:"team_id"`
	ShiftID     string    `json:"shift_id"`
	Date        string    `json:"date"`
	Records     int       `json:"records"`
	CommittedBy string    `json:"committed_by,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}
