package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-staffops/internal/domain"
	"go-staffops/internal/shared/apperror"
	"go-staffops/internal/shared/contextutil"
	"go-staffops/internal/shared/response"
)

// RBACService is satisfied by anything that can answer an EnforceRequest.
type RBACService interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

func enforceRequest(c *gin.Context, resource, action string) domain.EnforceRequest {
	return domain.EnforceRequest{
		Subject:   c.GetString("employee_id"),
		CompanyID: c.GetString("company_id"),
		Role:      c.GetString("role"),
		Resource:  resource,
		Action:    action,
	}
}

func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("company_id") == "" {
			e := apperror.ErrUnauthorized
			response.Error(c, e.HTTPStatus, e.Code, "missing auth context", nil)
			c.Abort()
			return
		}

		allowed, err := service.Enforce(enforceRequest(c, resource, action))
		if err != nil {
			contextutil.GetLogger(c.Request.Context(), zap.L()).Error("rbac enforce failed",
				zap.String("resource", resource),
				zap.String("action", action),
				zap.Error(err),
			)
			e := apperror.ErrInternal
			response.Error(c, e.HTTPStatus, e.Code, e.Message, nil)
			c.Abort()
			return
		}

		if !allowed {
			e := apperror.ErrForbidden
			response.Error(c, e.HTTPStatus, e.Code, e.Message, gin.H{"required": resource + ":" + action})
			c.Abort()
			return
		}
		c.Next()
	}
}

// ReadAllScope sets has_read_all when the caller may see every team of the
// company, not only the ones they lead or belong to. It never aborts.
func ReadAllScope(service RBACService, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := service.Enforce(enforceRequest(c, resource, domain.ActionReadAll))
		c.Set("has_read_all", err == nil && allowed)
		c.Next()
	}
}
