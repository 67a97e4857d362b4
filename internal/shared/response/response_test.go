package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"go-staffops/internal/shared/response"
)

func serve(h gin.HandlerFunc) response.ApiEnvelope {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		c.Set("request_id", "req-7")
		h(c)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	var env response.ApiEnvelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return env
}

func TestSuccessWithWarnings(t *testing.T) {
	env := serve(func(c *gin.Context) {
		response.SuccessWithWarnings(c, http.StatusOK, "saved", []response.Warning{{Code: "REFETCH_FAILED", Message: "reload"}})
	})

	assert.True(t, env.Ok)
	assert.Equal(t, "req-7", env.RequestID)
	assert.Equal(t, "saved", env.Data)
	assert.Len(t, env.Warnings, 1)
	assert.Nil(t, env.Error)
}

func TestError(t *testing.T) {
	env := serve(func(c *gin.Context) {
		response.Error(c, http.StatusConflict, "CONFLICT", "busy", nil)
	})

	assert.False(t, env.Ok)
	assert.Equal(t, "req-7", env.RequestID)
	if assert.NotNil(t, env.Error) {
		assert.Equal(t, "CONFLICT", env.Error.Code)
		assert.Equal(t, "busy", env.Error.Message)
	}
}
