package attendance

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const dateLayout = "2006-01-02"

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindTeamsByCompany(ctx context.Context, companyID string) ([]Team, error)
	FindRecords(ctx context.Context, companyID, teamID string, from, to time.Time, limit int) ([]ShiftAttendance, error)
	FindMemberships(ctx context.Context, teamID string, ids []string) ([]Membership, error)
	FindForUpdate(ctx context.Context, membershipID, shiftID string, date time.Time) (*ShiftAttendance, error)
	Create(ctx context.Context, a *ShiftAttendance) error
	Update(ctx context.Context, a *ShiftAttendance) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx runs the returned repository's queries on tx. The session must
// carry a context so gorm clones the statement before ConnPool is swapped.
func (r *repository) WithTx(tx *sql.Tx) Repository {
	scoped := r.db.Session(&gorm.Session{NewDB: true, Context: context.Background()})
	scoped.Statement.ConnPool = tx
	return &repository{db: scoped}
}

func companyScope(companyID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("company_id = ?", companyID)
	}
}

func (r *repository) FindTeamsByCompany(ctx context.Context, companyID string) ([]Team, error) {
	var teams []Team
	err := r.db.WithContext(ctx).
		Scopes(companyScope(companyID)).
		Preload("Leader").
		Preload("Shifts.Shift").
		Preload("Memberships", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Memberships.Employee").
		Order("name ASC").
		Find(&teams).Error
	return teams, err
}

func (r *repository) FindRecords(ctx context.Context, companyID, teamID string, from, to time.Time, limit int) ([]ShiftAttendance, error) {
	var rows []ShiftAttendance
	q := r.db.WithContext(ctx).
		Scopes(companyScope(companyID)).
		Preload("Membership.Employee").
		Where("team_id = ?", teamID).
		Where("attendance_date BETWEEN ? AND ?", from.Format(dateLayout), to.Format(dateLayout)).
		Order("attendance_date ASC, updated_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&rows).Error
	return rows, err
}

func (r *repository) FindMemberships(ctx context.Context, teamID string, ids []string) ([]Membership, error) {
	var rows []Membership
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("team_id = ?", teamID).
		Where("id IN ?", ids).
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindForUpdate(ctx context.Context, membershipID, shiftID string, date time.Time) (*ShiftAttendance, error) {
	var a ShiftAttendance
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("membership_id = ?", membershipID).
		Where("shift_id = ?", shiftID).
		Where("attendance_date = ?", date.Format(dateLayout)).
		First(&a).Error
	return &a, err
}

func (r *repository) Create(ctx context.Context, a *ShiftAttendance) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repository) Update(ctx context.Context, a *ShiftAttendance) error {
	return r.db.WithContext(ctx).
		Model(a).
		Select("status", "notes", "updated_by", "updated_at").
		Updates(a).Error
}
