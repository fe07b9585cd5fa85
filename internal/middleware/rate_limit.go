package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/contactbook/backend/internal/constants"
	"github.com/contactbook/backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimiter is a sliding-window per-client limiter. Each protected route
// group gets its own instance so tight limits on sensitive routes do not
// consume the budget of regular traffic.
type RateLimiter struct {
	hits       map[string][]time.Time
	maxRequest int
	window     time.Duration
	mu         sync.Mutex
	now        func() time.Time
}

func NewRateLimiter(maxRequest int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		hits:       make(map[string][]time.Time),
		maxRequest: maxRequest,
		window:     window,
		now:        time.Now,
	}
}

// Allow records a hit for the client and reports whether it is within the
// limit. remaining is the budget left after this hit.
func (rl *RateLimiter) Allow(client string) (allowed bool, remaining int) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.prune(now)

	hits := rl.hits[client]
	if len(hits) >= rl.maxRequest {
		return false, 0
	}

	rl.hits[client] = append(hits, now)
	return true, rl.maxRequest - len(hits) - 1
}

func (rl *RateLimiter) prune(now time.Time) {
	for client, hits := range rl.hits {
		var valid []time.Time
		for _, t := range hits {
			if now.Sub(t) <= rl.window {
				valid = append(valid, t)
			}
		}
		if len(valid) > 0 {
			rl.hits[client] = valid
		} else {
			delete(rl.hits, client)
		}
	}
}

// Middleware enforces the limit keyed by client IP
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		allowed, remaining := rl.Allow(ip)
		if !allowed {
			logger.GetLogger().Warn("Rate limit exceeded",
				zap.String("client_ip", ip),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Int("max_requests", rl.maxRequest),
				zap.Duration("window", rl.window),
			)

			c.Header("Retry-After", fmt.Sprintf("%d", int(rl.window.Seconds())))
			c.JSON(http.StatusTooManyRequests,
				constants.BuildErrorResponse("Rate limit exceeded", gin.H{
					"retry_after": rl.window.Seconds(),
				}))
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", rl.maxRequest))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", rl.now().Add(rl.window).Unix()))

		c.Next()
	}
}

// RateLimit builds a one-off limiter for a single route group
func RateLimit(maxRequest int, window time.Duration) gin.HandlerFunc {
	return NewRateLimiter(maxRequest, window).Middleware()
}
