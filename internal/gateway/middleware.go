package gateway

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/bizmatters/agent-builder/success-blueprint/internal/auth"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/models"
)

// RequestLogger logs one structured entry per request
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
		}
		if sessionID := auth.SessionID(c); sessionID != "" {
			fields = append(fields, zap.String("session_id", sessionID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		logger.Info("request", fields...)
	}
}

// RateLimiter throttles generation routes per session. Limiters of idle
// sessions are evicted once more than size sessions are tracked.
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters *lru.Cache[string, *rate.Limiter]
}

// NewRateLimiter allows rps requests per second with the given burst. A
// non-positive rps disables limiting.
func NewRateLimiter(rps float64, burst, size int) (*RateLimiter, error) {
	if size <= 0 {
		size = 1024
	}
	if burst <= 0 {
		burst = 1
	}
	cache, err := lru.New[string, *rate.Limiter](size)
	if err != nil {
		return nil, err
	}
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &RateLimiter{limit: limit, burst: burst, limiters: cache}, nil
}

func (r *RateLimiter) limiter(key string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.limiters.Get(key); ok {
		return l
	}
	l := rate.NewLimiter(r.limit, r.burst)
	r.limiters.Add(key, l)
	return l
}

// Allow reports whether key may make another request now.
func (r *RateLimiter) Allow(key string) bool {
	return r.limiter(key).Allow()
}

// Middleware rejects requests over the session's limit with 429. It must run
// after auth.RequireSession.
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := auth.SessionID(c)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}
		if !r.Allow(key) {
			rejectRateLimited(c)
			return
		}
		c.Next()
	}
}

// ClientMiddleware limits unauthenticated routes per client IP. Requests
// whose TCP peer is loopback, such as the service's own generation client,
// pass unlimited.
func (r *RateLimiter) ClientMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ip := net.ParseIP(c.RemoteIP()); ip != nil && ip.IsLoopback() {
			c.Next()
			return
		}
		if !r.Allow("ip:" + c.ClientIP()) {
			rejectRateLimited(c)
			return
		}
		c.Next()
	}
}

func rejectRateLimited(c *gin.Context) {
	c.Header("Retry-After", "1")
	c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
		Error: "Too many requests. Please slow down.",
		Code:  models.ErrCodeRateLimited,
	})
}
