package attendance_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"

	"go-staffops/internal/attendance"
	attendanceMock "go-staffops/internal/attendance/mock"
	"go-staffops/internal/events"
	"go-staffops/internal/messaging/kafka"
	kafkaMock "go-staffops/internal/messaging/kafka/mock"
	"go-staffops/internal/schedule"
	scheduleerrors "go-staffops/internal/schedule/errors"
	"go-staffops/internal/shared/apperror"
)

var (
	companyID   = uuid.MustParse("00000000-0000-0000-0000-0000000000c1")
	teamID      = uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
	otherTeamID = uuid.MustParse("00000000-0000-0000-0000-0000000000a2")
	shiftID     = uuid.MustParse("00000000-0000-0000-0000-0000000000b1")
	leaderEmpID = uuid.MustParse("00000000-0000-0000-0000-0000000000e0")
	memberEmpID = uuid.MustParse("00000000-0000-0000-0000-0000000000e1")
	strangerID  = uuid.MustParse("00000000-0000-0000-0000-0000000000e9")
	memberAccID = uuid.MustParse("00000000-0000-0000-0000-0000000000f1")
	leaderMemID = uuid.MustParse("00000000-0000-0000-0000-0000000000d0")
	memberMemID = uuid.MustParse("00000000-0000-0000-0000-0000000000d1")

	monday = time.Date(2026, time.February, 2, 0, 0, 0, 0, time.UTC)
)

type storeDeps struct {
	sqlMock sqlmock.Sqlmock
	repo    *attendanceMock.MockRepository
	outbox  *kafkaMock.MockOutboxRepository
	stores  schedule.StoreFactory
}

func setupStoreTest(t *testing.T) *storeDeps {
	ctrl := gomock.NewController(t)

	db, sqlMock, _ := sqlmock.New()
	t.Cleanup(func() { db.Close() })
	repo := attendanceMock.NewMockRepository(ctrl)
	outbox := kafkaMock.NewMockOutboxRepository(ctrl)

	stores := attendance.NewStoreFactory(db, repo, outbox, attendance.NewTeamsCache(nil, 0), attendance.StoreConfig{FetchLimit: 100})

	return &storeDeps{sqlMock: sqlMock, repo: repo, outbox: outbox, stores: stores}
}

func memberScope() schedule.Scope {
	return schedule.Scope{
		CompanyID:  companyID.String(),
		EmployeeID: memberEmpID.String(),
		AccountID:  memberAccID.String(),
	}
}

func teamRows() []attendance.Team {
	weekdays := "1"
	return []attendance.Team{
		{
			ID:               teamID,
			CompanyID:        companyID,
			Name:             "Front desk",
			LeaderEmployeeID: &leaderEmpID,
			Leader:           &attendance.EmployeeRef{ID: leaderEmpID, FullName: "Lena"},
			Shifts: []attendance.TeamShift{{
				TeamID:   teamID,
				ShiftID:  shiftID,
				Weekdays: &weekdays,
				Shift: attendance.Shift{
					ID: shiftID, Name: "Morning", StartTime: "08:00", EndTime: "12:00", Weekdays: "1,2,3,4,5",
				},
			}},
			Memberships: []attendance.Membership{
				{ID: leaderMemID, TeamID: teamID, EmployeeID: leaderEmpID, Employee: &attendance.EmployeeRef{ID: leaderEmpID, FullName: "Lena"}},
				{ID: memberMemID, TeamID: teamID, EmployeeID: memberEmpID, Employee: &attendance.EmployeeRef{ID: memberEmpID, UserID: &memberAccID, FullName: "Mika"}},
			},
		},
		{ID: otherTeamID, CompanyID: companyID, Name: "Kitchen"},
	}
}

func batch(items ...schedule.BatchItem) schedule.Batch {
	return schedule.Batch{ShiftID: shiftID.String(), Date: monday, Items: items}
}

func TestStore_FetchTeams(t *testing.T) {
	ctx := context.Background()

	t.Run("member sees own teams", func(t *testing.T) {
		deps := setupStoreTest(t)
		deps.repo.EXPECT().FindTeamsByCompany(gomock.Any(), companyID.String()).Return(teamRows(), nil)

		teams, err := deps.stores(memberScope()).FetchTeams(ctx)
		assert.NoError(t, err)
		if assert.Len(t, teams, 1) {
			team := teams[0]
			assert.Equal(t, teamID.String(), team.ID)
			assert.Equal(t, "Lena", team.Leader.Name)
			assert.Len(t, team.Members, 2)
			assert.Equal(t, memberAccID.String(), team.Members[1].Employee.AccountID)
			assert.Equal(t, []time.Weekday{time.Monday}, team.Shifts[0].EffectiveWeekdays())
			assert.Len(t, team.Shifts[0].Shift.Weekdays, 5)
		}
	})

	t.Run("read all sees every team", func(t *testing.T) {
		deps := setupStoreTest(t)
		deps.repo.EXPECT().FindTeamsByCompany(gomock.Any(), companyID.String()).Return(teamRows(), nil)

		scope := memberScope()
		scope.EmployeeID = strangerID.String()
		scope.AccountID = ""
		scope.ReadAll = true
		teams, err := deps.stores(scope).FetchTeams(ctx)
		assert.NoError(t, err)
		assert.Len(t, teams, 2)
	})

	t.Run("repository error", func(t *testing.T) {
		deps := setupStoreTest(t)
		deps.repo.EXPECT().FindTeamsByCompany(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

		_, err := deps.stores(memberScope()).FetchTeams(ctx)
		assert.Error(t, err)
	})
}

func TestStore_FetchAttendance(t *testing.T) {
	deps := setupStoreTest(t)
	notes := "bus"
	from, to := monday, monday.AddDate(0, 0, 6)

	deps.repo.EXPECT().
		FindRecords(gomock.Any(), companyID.String(), teamID.String(), from, to, 100).
		Return([]attendance.ShiftAttendance{{
			ID:             uuid.New(),
			TeamID:         teamID,
			ShiftID:        shiftID,
			MembershipID:   memberMemID,
			AttendanceDate: monday.Add(7 * time.Hour),
			Status:         "LATE",
			Notes:          &notes,
			Membership: &attendance.Membership{
				ID:         memberMemID,
				EmployeeID: memberEmpID,
				Employee:   &attendance.EmployeeRef{ID: memberEmpID, UserID: &memberAccID, FullName: "Mika"},
			},
		}}, nil)

	records, err := deps.stores(memberScope()).FetchAttendance(context.Background(), schedule.AttendanceQuery{
		TeamID: teamID.String(), From: from, To: to,
	})
	assert.NoError(t, err)
	if assert.Len(t, records, 1) {
		r := records[0]
		assert.Equal(t, schedule.StatusLate, r.Status)
		assert.Equal(t, "bus", r.Notes)
		assert.Equal(t, monday, r.Date)
		assert.Equal(t, memberEmpID.String(), r.EmployeeID)
		assert.Equal(t, memberAccID.String(), r.AccountID)
		assert.Equal(t, "Mika", r.Employee.Name)
	}
}

func TestStore_CommitAttendance(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and updates in one transaction with outbox event", func(t *testing.T) {
		deps := setupStoreTest(t)
		existingID := uuid.New()

		deps.repo.EXPECT().FindTeamsByCompany(gomock.Any(), gomock.Any()).Return(teamRows(), nil)
		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			FindMemberships(gomock.Any(), teamID.String(), []string{memberMemID.String(), leaderMemID.String()}).
			Return(teamRows()[0].Memberships, nil)

		deps.repo.EXPECT().
			FindForUpdate(gomock.Any(), memberMemID.String(), shiftID.String(), monday).
			Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, a *attendance.ShiftAttendance) error {
				assert.Equal(t, companyID, a.CompanyID)
				assert.Equal(t, teamID, a.TeamID)
				assert.Equal(t, memberMemID, a.MembershipID)
				assert.Equal(t, "PRESENT", a.Status)
				assert.Nil(t, a.Notes)
				assert.Equal(t, memberAccID.String(), *a.UpdatedBy)
				return nil
			})

		deps.repo.EXPECT().
			FindForUpdate(gomock.Any(), leaderMemID.String(), shiftID.String(), monday).
			Return(&attendance.ShiftAttendance{ID: existingID, TeamID: teamID, ShiftID: shiftID, MembershipID: leaderMemID, AttendanceDate: monday, Status: "PENDING"}, nil)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, a *attendance.ShiftAttendance) error {
				assert.Equal(t, existingID, a.ID)
				assert.Equal(t, "ABSENT", a.Status)
				assert.Equal(t, "sick", *a.Notes)
				return nil
			})

		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, e kafka.OutboxEvent) error {
				assert.NoError(t, e.Validate())
				assert.Equal(t, events.AttendanceCommittedTopic, e.Topic)
				assert.Equal(t, teamID.String(), e.AggregateID)

				var payload events.AttendanceCommittedEvent
				assert.NoError(t, json.Unmarshal(e.Payload, &payload))
				assert.Equal(t, "2026-02-02", payload.Date)
				assert.Equal(t, 2, payload.Records)
				return nil
			})
		deps.sqlMock.ExpectCommit()

		saved, err := deps.stores(memberScope()).CommitAttendance(ctx, teamID.String(), batch(
			schedule.BatchItem{MembershipID: memberMemID.String(), Status: schedule.StatusPresent},
			schedule.BatchItem{MembershipID: leaderMemID.String(), Status: schedule.StatusAbsent, Notes: "sick"},
		))
		assert.NoError(t, err)
		if assert.Len(t, saved, 2) {
			assert.Equal(t, memberEmpID.String(), saved[0].EmployeeID)
			assert.Equal(t, existingID.String(), saved[1].ID)
		}
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("membership outside the team rolls back", func(t *testing.T) {
		deps := setupStoreTest(t)
		foreign := uuid.New()

		deps.repo.EXPECT().FindTeamsByCompany(gomock.Any(), gomock.Any()).Return(teamRows(), nil)
		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindMemberships(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
		deps.sqlMock.ExpectRollback()

		_, err := deps.stores(memberScope()).CommitAttendance(ctx, teamID.String(), batch(
			schedule.BatchItem{MembershipID: foreign.String(), Status: schedule.StatusPresent},
		))
		assert.ErrorIs(t, err, scheduleerrors.ErrMissingMembershipLink)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("concurrent insert is retried as update", func(t *testing.T) {
		deps := setupStoreTest(t)
		dup := &pgconn.PgError{Code: "23505", ConstraintName: "uq_shift_attendance_member_day"}

		deps.repo.EXPECT().FindTeamsByCompany(gomock.Any(), gomock.Any()).Return(teamRows(), nil)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo).Times(2)
		deps.repo.EXPECT().FindMemberships(gomock.Any(), gomock.Any(), gomock.Any()).Return(teamRows()[0].Memberships, nil).Times(2)

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().FindForUpdate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(dup)
		deps.sqlMock.ExpectRollback()

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().FindForUpdate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&attendance.ShiftAttendance{ID: uuid.New(), MembershipID: memberMemID}, nil)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		deps.sqlMock.ExpectCommit()

		saved, err := deps.stores(memberScope()).CommitAttendance(ctx, teamID.String(), batch(
			schedule.BatchItem{MembershipID: memberMemID.String(), Status: schedule.StatusLate},
		))
		assert.NoError(t, err)
		assert.Len(t, saved, 1)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("outbox failure rolls back", func(t *testing.T) {
		deps := setupStoreTest(t)

		deps.repo.EXPECT().FindTeamsByCompany(gomock.Any(), gomock.Any()).Return(teamRows(), nil)
		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindMemberships(gomock.Any(), gomock.Any(), gomock.Any()).Return(teamRows()[0].Memberships, nil)
		deps.repo.EXPECT().FindForUpdate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("outbox down"))
		deps.sqlMock.ExpectRollback()

		_, err := deps.stores(memberScope()).CommitAttendance(ctx, teamID.String(), batch(
			schedule.BatchItem{MembershipID: memberMemID.String(), Status: schedule.StatusPresent},
		))
		assert.Error(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("team outside scope is forbidden", func(t *testing.T) {
		deps := setupStoreTest(t)
		deps.repo.EXPECT().FindTeamsByCompany(gomock.Any(), gomock.Any()).Return(teamRows(), nil)

		_, err := deps.stores(memberScope()).CommitAttendance(ctx, otherTeamID.String(), batch(
			schedule.BatchItem{MembershipID: memberMemID.String(), Status: schedule.StatusPresent},
		))
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		deps := setupStoreTest(t)

		saved, err := deps.stores(memberScope()).CommitAttendance(ctx, teamID.String(), batch())
		assert.NoError(t, err)
		assert.Empty(t, saved)
	})
}
