package rbac

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the permission check. mw runs before the handler
// and must include authentication.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler, mw ...gin.HandlerFunc) {
	chain := append(append([]gin.HandlerFunc{}, mw...), handler.Enforce)
	r.POST("/rbac/enforce", chain...)
}
