package tests

import (
	"net/http"
	"strings"
	"testing"

	"github.com/EternisAI/user-directory/internal/api/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestHealthCheck(t *testing.T, router *gin.Engine) {
	rr := do(router, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode[dto.HealthResponse](t, rr).Status)
}

// TestMetrics expects the calls made by the earlier subtests to be counted:
// one refresh for the consumed token and one before the duplicate signup.
func TestMetrics(t *testing.T, router *gin.Engine) {
	rr := do(router, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.True(t, strings.Contains(body, `directory_api_requests_total{operation="list_users",outcome="success"}`), body)
	assert.True(t, strings.Contains(body, `directory_api_requests_total{operation="register",outcome="fail_response"}`), body)
	assert.Contains(t, body, "directory_token_refresh_total 2")
}
