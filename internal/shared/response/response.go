package response

import (
	"github.com/gin-gonic/gin"
)

// ApiEnvelope wraps every JSON body. RequestID echoes X-Request-ID so a
// client can quote it when reporting a failed save.
type ApiEnvelope struct {
	Ok        bool      `json:"ok"`
	RequestID string    `json:"request_id,omitempty"`
	Data      any       `json:"data,omitempty"`
	Warnings  []Warning `json:"warnings,omitempty"`
	Error     *Problem  `json:"error,omitempty"`
}

// Warning is a non-fatal problem the client should show to the user,
// e.g. a refetch that failed after a successful write.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Problem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

func write(c *gin.Context, status int, env ApiEnvelope) {
	env.RequestID = c.GetString("request_id")
	c.JSON(status, env)
}

func Success(c *gin.Context, status int, data any) {
	write(c, status, ApiEnvelope{Ok: true, Data: data})
}

func SuccessWithWarnings(c *gin.Context, status int, data any, warnings []Warning) {
	write(c, status, ApiEnvelope{Ok: true, Data: data, Warnings: warnings})
}

func Error(c *gin.Context, status int, errorCode string, message string, details any) {
	write(c, status, ApiEnvelope{
		Error: &Problem{Code: errorCode, Message: message, Details: details},
	})
}
