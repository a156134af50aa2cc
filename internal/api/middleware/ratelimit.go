package middleware

import (
	"net/http"
	"sync"
	"time"

	"emvi-jobs/internal/config"
	"emvi-jobs/pkg/models"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// clientLimiter tracks the token bucket for a single client IP
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// SubmissionRateLimiter limits job submissions per client IP. Checkout
// session creation hits the payment provider, so abusive clients get cut
// off before that call.
type SubmissionRateLimiter struct {
	limiters map[string]*clientLimiter
	limit    rate.Limit
	burst    int
	mu       sync.Mutex
}

// NewSubmissionRateLimiter creates a per-IP rate limiter from configuration
func NewSubmissionRateLimiter(cfg *config.Config) *SubmissionRateLimiter {
	perMinute := cfg.RateLimit.SubmissionsPerMinute
	if perMinute <= 0 {
		perMinute = 10
	}
	burst := cfg.RateLimit.Burst
	if burst <= 0 {
		burst = 5
	}

	rl := &SubmissionRateLimiter{
		limiters: make(map[string]*clientLimiter),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
	}

	go rl.cleanupLoop()

	return rl
}

// Middleware returns the echo middleware enforcing the limit
func (rl *SubmissionRateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.allow(c.RealIP()) {
				requestID, _ := c.Get("request_id").(string)
				return c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
					Error:     "rate_limited",
					Message:   "Too many submissions, slow down",
					RequestID: requestID,
					Timestamp: time.Now(),
				})
			}
			return next(c)
		}
	}
}

func (rl *SubmissionRateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.limiters[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[ip] = cl
	}
	cl.lastSeen = time.Now()

	return cl.limiter.Allow()
}

// cleanupLoop drops limiters for IPs not seen recently
func (rl *SubmissionRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-10 * time.Minute)
		rl.mu.Lock()
		for ip, cl := range rl.limiters {
			if cl.lastSeen.Before(cutoff) {
				delete(rl.limiters, ip)
			}
		}
		rl.mu.Unlock()
	}
}
