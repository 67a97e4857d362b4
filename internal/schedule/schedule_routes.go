package schedule

import (
	"github.com/gin-gonic/gin"

	"go-staffops/internal/domain"
	"go-staffops/internal/middleware"
)

// Middlewares groups what the schedule routes need from the outside.
// WriteLimit and Idempotency may be nil.
type Middlewares struct {
	Auth        gin.HandlerFunc
	WriteLimit  gin.HandlerFunc
	Idempotency gin.HandlerFunc
}

func (m Middlewares) writeChain(rbacService middleware.RBACService, h gin.HandlerFunc, idempotent bool) []gin.HandlerFunc {
	chain := []gin.HandlerFunc{middleware.RBACAuthorize(rbacService, domain.ResourceSchedule, domain.ActionWrite)}
	if m.WriteLimit != nil {
		chain = append(chain, m.WriteLimit)
	}
	if idempotent && m.Idempotency != nil {
		chain = append(chain, m.Idempotency)
	}
	return append(chain, h)
}

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService middleware.RBACService, mw Middlewares) {
	read := middleware.RBACAuthorize(rbacService, domain.ResourceSchedule, domain.ActionRead)

	schedule := r.Group("/schedule")
	schedule.Use(mw.Auth, middleware.ReadAllScope(rbacService, domain.ResourceSchedule))
	{
		schedule.GET("/grid", read, h.GetGrid)
		schedule.GET("/stats", read, h.GetStats)
		schedule.POST("/refresh", read, h.Refresh)
		schedule.GET("/export.xlsx", read, h.ExportXLSX)
		schedule.GET("/export.ics", read, h.ExportICS)

		schedule.POST("/changes", mw.writeChain(rbacService, h.StageChange, false)...)
		schedule.DELETE("/changes", mw.writeChain(rbacService, h.DiscardChanges, false)...)
		schedule.POST("/commit", mw.writeChain(rbacService, h.Commit, true)...)
		schedule.PUT("/records", mw.writeChain(rbacService, h.UpdateRecord, true)...)
	}
}
