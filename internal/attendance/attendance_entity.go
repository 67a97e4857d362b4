package attendance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShiftAttendance is one member's status for one shift occurrence. A row is
// unique per (membership, shift, date); see uq_shift_attendance_member_day.
type ShiftAttendance struct {
	ID             uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID      uuid.UUID      `gorm:"column:company_id;type:uuid;not null;index"`
	TeamID         uuid.UUID      `gorm:"column:team_id;type:uuid;not null;index"`
	ShiftID        uuid.UUID      `gorm:"column:shift_id;type:uuid;not null"`
	MembershipID   uuid.UUID      `gorm:"column:membership_id;type:uuid;not null"`
	AttendanceDate time.Time      `gorm:"column:attendance_date;type:date;not null;index"`
	Status         string         `gorm:"column:status;type:varchar(20);not null;default:PENDING"`
	Notes          *string        `gorm:"column:notes;type:text"`
	UpdatedBy      *string        `gorm:"column:updated_by;type:varchar(100)"`
	CreatedAt      time.Time      `gorm:"column:created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"column:deleted_at;index"`
	Membership     *Membership    `gorm:"foreignKey:MembershipID;references:ID"`
}

func (ShiftAttendance) TableName() string {
	return "shift_attendances"
}

type Team struct {
	ID               uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	CompanyID        uuid.UUID      `gorm:"column:company_id;type:uuid;not null;index"`
	Name             string         `gorm:"column:name"`
	LeaderEmployeeID *uuid.UUID     `gorm:"column:leader_employee_id;type:uuid"`
	DeletedAt        gorm.DeletedAt `gorm:"column:deleted_at;index"`
	Leader           *EmployeeRef   `gorm:"foreignKey:LeaderEmployeeID;references:ID"`
	Shifts           []TeamShift    `gorm:"foreignKey:TeamID;references:ID"`
	Memberships      []Membership   `gorm:"foreignKey:TeamID;references:ID"`
}

func (Team) TableName() string {
	return "teams"
}

// TeamShift assigns a shift to a team. Weekdays, when set, overrides the
// shift's own days for this team.
type TeamShift struct {
	TeamID   uuid.UUID `gorm:"column:team_id;type:uuid;primaryKey"`
	ShiftID  uuid.UUID `gorm:"column:shift_id;type:uuid;primaryKey"`
	Weekdays *string   `gorm:"column:weekdays;type:varchar(20)"`
	Shift    Shift     `gorm:"foreignKey:ShiftID;references:ID"`
}

func (TeamShift) TableName() string {
	return "team_shifts"
}

// Shift stores weekdays as a comma separated list of 0 (Sunday) to 6.
type Shift struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CompanyID uuid.UUID `gorm:"column:company_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name"`
	StartTime string    `gorm:"column:start_time;type:varchar(5)"`
	EndTime   string    `gorm:"column:end_time;type:varchar(5)"`
	Weekdays  string    `gorm:"column:weekdays;type:varchar(20)"`
}

func (Shift) TableName() string {
	return "shifts"
}

type Membership struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	TeamID     uuid.UUID      `gorm:"column:team_id;type:uuid;not null;index"`
	EmployeeID uuid.UUID      `gorm:"column:employee_id;type:uuid;not null"`
	CreatedAt  time.Time      `gorm:"column:created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"column:deleted_at;index"`
	Employee   *EmployeeRef   `gorm:"foreignKey:EmployeeID;references:ID"`
}

func (Membership) TableName() string {
	return "team_memberships"
}

type EmployeeRef struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID   *uuid.UUID `gorm:"column:user_id;type:uuid"`
	FullName string     `gorm:"column:full_name"`
}

func (EmployeeRef) TableName() string {
	return "employees"
}
