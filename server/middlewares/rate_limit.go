package middlewares

import (
	"context"
	"net/http"
	"sync"
	"time"

	Logger "github.com/Luismorlan/rambagiza/utils/log"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterEntry is one caller's bucket and the last time it was used.
type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per caller. Logged in callers are
// keyed by user id, anonymous ones by client ip.
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*limiterEntry

	now func() time.Time
}

func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		limiters: make(map[string]*limiterEntry),
		now:      time.Now,
	}
}

func (r *RateLimiter) get(key string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.limiters[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.limiters[key] = e
	}
	e.lastSeen = r.now()
	return e.limiter
}

// Size is the number of callers currently tracked.
func (r *RateLimiter) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.limiters)
}

// Cleanup drops the buckets of callers idle for longer than maxIdle. A
// dropped caller starts over with a full bucket.
func (r *RateLimiter) Cleanup(maxIdle time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-maxIdle)
	for key, e := range r.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(r.limiters, key)
		}
	}
}

// StartCleanup runs Cleanup every interval until ctx is done.
func (r *RateLimiter) StartCleanup(ctx context.Context, interval time.Duration, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Cleanup(maxIdle)
			}
		}
	}()
}

func callerKey(c *gin.Context) string {
	if user := CurrentUser(c); user != nil {
		return "user:" + user.Id
	}
	return "ip:" + c.ClientIP()
}

func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := callerKey(c)
		if !r.get(key).Allow() {
			Logger.Log.Warnf("rate limited %s on %s", key, c.FullPath())
			c.String(http.StatusTooManyRequests, "too many requests, slow down")
			c.Abort()
			return
		}
		c.Next()
	}
}
