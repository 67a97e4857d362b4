package schedule_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"go-staffops/internal/schedule"
	scheduleerrors "go-staffops/internal/schedule/errors"
	"go-staffops/internal/shared/apperror"
	"go-staffops/internal/shared/response"
)

type fakeService struct {
	getGridFn      func(ctx context.Context, v schedule.Viewer, q schedule.WindowQuery) (schedule.GridResponse, []response.Warning, error)
	getStatsFn     func(ctx context.Context, v schedule.Viewer, q schedule.WindowQuery) (schedule.Stats, error)
	stageChangeFn  func(ctx context.Context, v schedule.Viewer, req schedule.StageChangeRequest) (schedule.PendingGroupResponse, error)
	discardFn      func(ctx context.Context, v schedule.Viewer, req schedule.GroupRequest) error
	commitFn       func(ctx context.Context, v schedule.Viewer, req schedule.GroupRequest) (schedule.CommitResponse, []response.Warning, error)
	updateRecordFn func(ctx context.Context, v schedule.Viewer, req schedule.UpdateRecordRequest) (schedule.CommitResponse, []response.Warning, error)
	refreshFn      func(ctx context.Context, v schedule.Viewer) (schedule.GridResponse, []response.Warning, error)
	snapshotFn     func(ctx context.Context, v schedule.Viewer, q schedule.WindowQuery) (schedule.Snapshot, error)
}

func (f *fakeService) GetGrid(ctx context.Context, v schedule.Viewer, q schedule.WindowQuery) (schedule.GridResponse, []response.Warning, error) {
	return f.getGridFn(ctx, v, q)
}
func (f *fakeService) GetStats(ctx context.Context, v schedule.Viewer, q schedule.WindowQuery) (schedule.Stats, error) {
	return f.getStatsFn(ctx, v, q)
}
func (f *fakeService) StageChange(ctx context.Context, v schedule.Viewer, req schedule.StageChangeRequest) (schedule.PendingGroupResponse, error) {
	return f.stageChangeFn(ctx, v, req)
}
func (f *fakeService) DiscardChanges(ctx context.Context, v schedule.Viewer, req schedule.GroupRequest) error {
	return f.discardFn(ctx, v, req)
}
func (f *fakeService) Commit(ctx context.Context, v schedule.Viewer, req schedule.GroupRequest) (schedule.CommitResponse, []response.Warning, error) {
	return f.commitFn(ctx, v, req)
}
func (f *fakeService) UpdateRecord(ctx context.Context, v schedule.Viewer, req schedule.UpdateRecordRequest) (schedule.CommitResponse, []response.Warning, error) {
	return f.updateRecordFn(ctx, v, req)
}
func (f *fakeService) Refresh(ctx context.Context, v schedule.Viewer) (schedule.GridResponse, []response.Warning, error) {
	return f.refreshFn(ctx, v)
}
func (f *fakeService) Snapshot(ctx context.Context, v schedule.Viewer, q schedule.WindowQuery) (schedule.Snapshot, error) {
	return f.snapshotFn(ctx, v, q)
}
func (f *fakeService) RefreshTeam(context.Context, string) int { return 0 }
func (f *fakeService) Sweep(time.Time) int                     { return 0 }

func init() {
	apperror.Init(schedule.ValidationRules()...)
}

func newTestContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
		c.Request = httptest.NewRequest(method, target, reader)
		c.Request.Header.Set("Content-Type", "application/json")
	} else {
		c.Request = httptest.NewRequest(method, target, nil)
	}
	c.Set("company_id", "company-1")
	c.Set("employee_id", "emp-l")
	c.Set("user_id", "acc-l")
	return c, w
}

func TestHandler_GetGrid(t *testing.T) {
	svc := &fakeService{
		getGridFn: func(ctx context.Context, v schedule.Viewer, q schedule.WindowQuery) (schedule.GridResponse, []response.Warning, error) {
			assert.Equal(t, "company-1", v.CompanyID)
			assert.Equal(t, "emp-l", v.EmployeeID)
			assert.Equal(t, "acc-l", v.UserID)
			assert.Equal(t, 2, q.Month)
			assert.Equal(t, 2026, q.Year)
			return schedule.GridResponse{Window: "2026-02", View: "month"},
				[]response.Warning{{Code: "UPSTREAM_ERROR", Message: "team-2"}}, nil
		},
	}
	h := schedule.NewHandler(svc, nil)

	c, w := newTestContext(http.MethodGet, "/schedule/grid?month=2&year=2026", "")
	h.GetGrid(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Ok       bool                  `json:"ok"`
		Data     schedule.GridResponse `json:"data"`
		Warnings []response.Warning    `json:"warnings"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Ok)
	assert.Equal(t, "2026-02", resp.Data.Window)
	assert.Len(t, resp.Warnings, 1)
}

func TestHandler_GetGrid_InvalidMonth(t *testing.T) {
	h := schedule.NewHandler(&fakeService{}, nil)

	c, w := newTestContext(http.MethodGet, "/schedule/grid?month=13&year=2026", "")
	h.GetGrid(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_ReadAllNeedsPrivilegedRole(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		granted bool
		want    bool
	}{
		{"manager with grant", "manager", true, true},
		{"employee with grant", "EMPLOYEE", true, false},
		{"manager without grant", "MANAGER", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got bool
			svc := &fakeService{
				getStatsFn: func(ctx context.Context, v schedule.Viewer, q schedule.WindowQuery) (schedule.Stats, error) {
					got = v.ReadAll
					return schedule.Stats{}, nil
				},
			}
			h := schedule.NewHandler(svc, nil)

			c, w := newTestContext(http.MethodGet, "/schedule/stats", "")
			c.Set("role", tt.role)
			c.Set("has_read_all", tt.granted)
			h.GetStats(c)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandler_StageChange(t *testing.T) {
	svc := &fakeService{
		stageChangeFn: func(ctx context.Context, v schedule.Viewer, req schedule.StageChangeRequest) (schedule.PendingGroupResponse, error) {
			assert.Equal(t, "team-1", req.TeamID)
			assert.Equal(t, "shift-am", req.ShiftID)
			assert.Equal(t, "2026-02-02", req.Date)
			assert.Equal(t, "emp-1", req.MemberID)
			assert.Equal(t, "PRESENT", req.Status)
			return schedule.PendingGroupResponse{Group: "team-1|shift-am|2026-02-02"}, nil
		},
	}
	h := schedule.NewHandler(svc, nil)

	c, w := newTestContext(http.MethodPost, "/schedule/changes",
		`{"team_id":"team-1","shift_id":"shift-am","date":"2026-02-02","member_id":"emp-1","status":"PRESENT"}`)
	h.StageChange(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "team-1|shift-am|2026-02-02")
}

func TestHandler_StageChange_MissingMember(t *testing.T) {
	h := schedule.NewHandler(&fakeService{}, nil)

	c, w := newTestContext(http.MethodPost, "/schedule/changes",
		`{"team_id":"team-1","shift_id":"shift-am","date":"2026-02-02","status":"PRESENT"}`)
	h.StageChange(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_StageChange_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantMessage string
	}{
		{
			name:        "unknown status",
			body:        `{"team_id":"team-1","shift_id":"shift-am","date":"2026-02-02","member_id":"emp-1","status":"ASLEEP"}`,
			wantMessage: scheduleerrors.ErrInvalidStatus.Message,
		},
		{
			name:        "malformed date",
			body:        `{"team_id":"team-1","shift_id":"shift-am","date":"02/02/2026","member_id":"emp-1","status":"LATE"}`,
			wantMessage: scheduleerrors.ErrInvalidDate.Message,
		},
		{
			name:        "notes too long",
			body:        `{"team_id":"team-1","shift_id":"shift-am","date":"2026-02-02","member_id":"emp-1","status":"LATE","notes":"` + strings.Repeat("x", 501) + `"}`,
			wantMessage: "Notes must be at most 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := schedule.NewHandler(&fakeService{}, nil)

			c, w := newTestContext(http.MethodPost, "/schedule/changes", tt.body)
			h.StageChange(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantMessage)
		})
	}
}

func TestHandler_DiscardChanges(t *testing.T) {
	called := false
	svc := &fakeService{
		discardFn: func(ctx context.Context, v schedule.Viewer, req schedule.GroupRequest) error {
			called = true
			assert.Equal(t, "team-1", req.TeamID)
			return nil
		},
	}
	h := schedule.NewHandler(svc, nil)

	c, w := newTestContext(http.MethodDelete, "/schedule/changes?team_id=team-1&shift_id=shift-am&date=2026-02-02", "")
	h.DiscardChanges(c)
	c.Writer.WriteHeaderNow()

	assert.True(t, called)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandler_Commit(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"saved", nil, http.StatusOK},
		{"nothing staged", scheduleerrors.ErrNothingToCommit, http.StatusBadRequest},
		{"already saving", scheduleerrors.ErrCommitInProgress, http.StatusConflict},
		{"backend rejected", scheduleerrors.ErrCommitFailed, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{
				commitFn: func(ctx context.Context, v schedule.Viewer, req schedule.GroupRequest) (schedule.CommitResponse, []response.Warning, error) {
					if tt.err != nil {
						return schedule.CommitResponse{}, nil, tt.err
					}
					return schedule.CommitResponse{Group: "team-1|shift-am|2026-02-02", Escalated: true}, nil, nil
				},
			}
			h := schedule.NewHandler(svc, nil)

			c, w := newTestContext(http.MethodPost, "/schedule/commit",
				`{"team_id":"team-1","shift_id":"shift-am","date":"2026-02-02"}`)
			h.Commit(c)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestHandler_UpdateRecord_RefetchWarning(t *testing.T) {
	svc := &fakeService{
		updateRecordFn: func(ctx context.Context, v schedule.Viewer, req schedule.UpdateRecordRequest) (schedule.CommitResponse, []response.Warning, error) {
			assert.Equal(t, "LATE", req.Status)
			return schedule.CommitResponse{Group: "g"}, []response.Warning{{
				Code:    scheduleerrors.ErrRefetchFailed.Code,
				Message: scheduleerrors.ErrRefetchFailed.Message,
			}}, nil
		},
	}
	h := schedule.NewHandler(svc, nil)

	c, w := newTestContext(http.MethodPut, "/schedule/records",
		`{"team_id":"team-1","shift_id":"shift-am","date":"2026-02-02","member_id":"mem-1","status":"LATE","notes":"bus"}`)
	h.UpdateRecord(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "refresh manually")
}

func TestHandler_ExportICS(t *testing.T) {
	store := newMemoryStore(newTeam())
	e := schedule.NewEngine(store, schedule.CandidateIDs("emp-l"), schedule.DayWindow(monday))
	_, err := e.Load(context.Background())
	assert.NoError(t, err)

	svc := &fakeService{
		snapshotFn: func(ctx context.Context, v schedule.Viewer, q schedule.WindowQuery) (schedule.Snapshot, error) {
			return e.Snapshot(), nil
		},
	}
	h := schedule.NewHandler(svc, time.UTC)

	c, w := newTestContext(http.MethodGet, "/schedule/export.ics?date=2026-02-02", "")
	h.ExportICS(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/calendar")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "BEGIN:VCALENDAR")
}

func TestHandler_ExportXLSX_ServiceError(t *testing.T) {
	svc := &fakeService{
		snapshotFn: func(ctx context.Context, v schedule.Viewer, q schedule.WindowQuery) (schedule.Snapshot, error) {
			return schedule.Snapshot{}, scheduleerrors.ErrInvalidWindow
		},
	}
	h := schedule.NewHandler(svc, nil)

	c, w := newTestContext(http.MethodGet, "/schedule/export.xlsx?month=2", "")
	h.ExportXLSX(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
