package schedule

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"go-staffops/internal/shared/apperror"
	"go-staffops/internal/shared/response"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

type Handler struct {
	service  Service
	location *time.Location
}

// NewHandler builds the HTTP handler. loc is used for calendar exports;
// nil means UTC.
func NewHandler(service Service, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{service: service, location: loc}
}

func writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func writeBindError(c *gin.Context, err error) {
	writeServiceError(c, apperror.MapValidationError(err))
}

func viewerFrom(c *gin.Context) Viewer {
	role := strings.ToUpper(strings.TrimSpace(c.GetString("role")))
	return Viewer{
		CompanyID:  c.GetString("company_id"),
		EmployeeID: c.GetString("employee_id"),
		UserID:     c.GetString("user_id"),
		ReadAll:    c.GetBool("has_read_all") && isPrivilegedRole(role),
	}
}

func isPrivilegedRole(role string) bool {
	switch role {
	case "SUPER_ADMIN", "ADMIN", "HR", "MANAGER":
		return true
	default:
		return false
	}
}

func (h *Handler) GetGrid(c *gin.Context) {
	var q WindowQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}

	resp, warnings, err := h.service.GetGrid(c.Request.Context(), viewerFrom(c), q)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.SuccessWithWarnings(c, http.StatusOK, resp, warnings)
}

func (h *Handler) GetStats(c *gin.Context) {
	var q WindowQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}

	stats, err := h.service.GetStats(c.Request.Context(), viewerFrom(c), q)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

func (h *Handler) Refresh(c *gin.Context) {
	resp, warnings, err := h.service.Refresh(c.Request.Context(), viewerFrom(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.SuccessWithWarnings(c, http.StatusOK, resp, warnings)
}

func (h *Handler) StageChange(c *gin.Context) {
	var req StageChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	resp, err := h.service.StageChange(c.Request.Context(), viewerFrom(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

func (h *Handler) DiscardChanges(c *gin.Context) {
	var req GroupRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		writeBindError(c, err)
		return
	}

	if err := h.service.DiscardChanges(c.Request.Context(), viewerFrom(c), req); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Commit(c *gin.Context) {
	var req GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	resp, warnings, err := h.service.Commit(c.Request.Context(), viewerFrom(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.SuccessWithWarnings(c, http.StatusOK, resp, warnings)
}

func (h *Handler) UpdateRecord(c *gin.Context) {
	var req UpdateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	resp, warnings, err := h.service.UpdateRecord(c.Request.Context(), viewerFrom(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.SuccessWithWarnings(c, http.StatusOK, resp, warnings)
}

func (h *Handler) ExportXLSX(c *gin.Context) {
	var q WindowQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}

	snap, err := h.service.Snapshot(c.Request.Context(), viewerFrom(c), q)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	buf, filename, err := WriteWorkbook(snap)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *Handler) ExportICS(c *gin.Context) {
	var q WindowQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}

	v := viewerFrom(c)
	snap, err := h.service.Snapshot(c.Request.Context(), v, q)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	filename := "attendance_" + snap.Grid.Window.String() + ".ics"
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, icsContentType, []byte(BuildCalendar(snap, v.Identity(), h.location)))
}
