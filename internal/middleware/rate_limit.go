package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/noah-isme/appointment-availability-api/internal/service"
	"github.com/noah-isme/appointment-availability-api/pkg/config"
	appErrors "github.com/noah-isme/appointment-availability-api/pkg/errors"
	"github.com/noah-isme/appointment-availability-api/pkg/response"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP. Buckets idle longer than
// the configured TTL are swept lazily.
type RateLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	clients   map[string]*clientLimiter
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter builds a limiter from config. It returns nil when limiting is
// disabled or misconfigured; a nil limiter allows everything.
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	if !cfg.Enabled || cfg.RequestsPerSecond <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
	}
	ttl := cfg.IdleTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RateLimiter{
		limit:     rate.Limit(cfg.RequestsPerSecond),
		burst:     burst,
		idleTTL:   ttl,
		clients:   make(map[string]*clientLimiter),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow consumes one token for key.
func (l *RateLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.idleTTL {
		for k, client := range l.clients {
			if now.Sub(client.lastSeen) > l.idleTTL {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	client, ok := l.clients[key]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = client
	}
	client.lastSeen = now
	return client.limiter.AllowN(now, 1)
}

func (l *RateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// RateLimit rejects clients exceeding their budget with 429.
func RateLimit(limiter *RateLimiter, metrics *service.MetricsService, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		ip := c.ClientIP()
		if !limiter.Allow(ip) {
			metrics.RecordRateLimited()
			logger.Warn("rate limit exceeded", zap.String("client_ip", ip), zap.String("path", c.Request.URL.Path))
			c.Header("Retry-After", "1")
			response.Abort(c, appErrors.ErrTooManyCalls)
			return
		}
		c.Next()
	}
}
