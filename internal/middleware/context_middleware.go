package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-staffops/internal/shared/contextutil"
)

// ContextLogger attaches a request-scoped logger carrying request_id, and
// user_id when an earlier middleware set it. AuthMiddleware adds user_id
// itself when it runs later.
func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetString("request_id")
		if rid == "" {
			rid = uuid.New().String()
			c.Header(HeaderRequestID, rid)
		}
		uid := c.GetString("user_id")

		reqLogger := logger.With(zap.String("request_id", rid))
		if uid != "" {
			reqLogger = reqLogger.With(zap.String("user_id", uid))
		}

		ctx := c.Request.Context()
		ctx = contextutil.WithRequestID(ctx, rid)
		ctx = contextutil.WithUserID(ctx, uid)
		ctx = contextutil.WithLogger(ctx, reqLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
