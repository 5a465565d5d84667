package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/appointment-availability-api/internal/service"
	"github.com/noah-isme/appointment-availability-api/pkg/config"
)

func TestRateLimitRejectsBurstOverflow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	limiter := NewRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, Burst: 2})
	require.NotNil(t, limiter)

	router := gin.New()
	router.Use(RateLimit(limiter, metrics, nil))
	router.GET("/availability", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/availability", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "RATE_LIMITED", body.Error.Code)
			assert.Equal(t, "1", rec.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
	assert.Equal(t, uint64(1), metrics.Snapshot().RateLimited)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/availability", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimiterSweepsIdleClients(t *testing.T) {
	limiter := NewRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerSecond: 5, IdleTTL: time.Minute})
	now := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	limiter.lastSweep = now

	assert.True(t, limiter.Allow("a"))
	assert.True(t, limiter.Allow("b"))
	assert.Equal(t, 2, limiter.size())

	now = now.Add(2 * time.Minute)
	assert.True(t, limiter.Allow("c"))
	assert.Equal(t, 1, limiter.size())
}

func TestRateLimiterDisabled(t *testing.T) {
	assert.Nil(t, NewRateLimiter(config.RateLimitConfig{Enabled: false, RequestsPerSecond: 10}))
	assert.Nil(t, NewRateLimiter(config.RateLimitConfig{Enabled: true}))
	var limiter *RateLimiter
	assert.True(t, limiter.Allow("anyone"))
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	router := gin.New()
	router.Use(Metrics(metrics))
	router.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/items/1", "/items/2", "/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `http_requests_total{method="GET",path="/items/:id",status="200"} 2`)
	assert.Contains(t, body, `http_requests_total{method="GET",path="unmatched",status="404"} 1`)
	assert.NotContains(t, body, `path="/missing"`)
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	assert.Nil(t, ExtractMeta(c))
	SetCacheHit(c, true)
	SetIssueCount(c, 0)
	SetIssueCount(c, 2)
	meta := ResponseMeta(c, time.Now())

	assert.Equal(t, true, meta[cacheHitKey])
	assert.Equal(t, 2, meta[issueCountKey])
	assert.Contains(t, meta, processingKey)
	assert.Equal(t, meta, ExtractMeta(c))
}
