package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"portal/internal/pkg/errors"
	"portal/internal/pkg/request"
)

const bucketIdle = 10 * time.Minute

// RateLimiter keeps one token bucket per client and route group.
type RateLimiter struct {
	buckets sync.Map // map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	mu       sync.Mutex
	tokens   float64
	updated  time.Time
	lastSeen time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{now: time.Now}
}

// Sweep drops buckets idle for longer than bucketIdle and reports how many.
func (rl *RateLimiter) Sweep() int {
	now := rl.now()
	removed := 0
	rl.buckets.Range(func(key, value interface{}) bool {
		b := value.(*bucket)
		b.mu.Lock()
		if now.Sub(b.lastSeen) > bucketIdle {
			rl.buckets.Delete(key)
			removed++
		}
		b.mu.Unlock()
		return true
	})
	return removed
}

// Allow takes one token from key's bucket, refilled continuously at limit per minute.
func (rl *RateLimiter) Allow(key string, limit int) bool {
	ok, _ := rl.take(key, limit)
	return ok
}

// take returns whether a token was available and, when not, how long until one is.
func (rl *RateLimiter) take(key string, limit int) (bool, time.Duration) {
	now := rl.now()
	val, _ := rl.buckets.LoadOrStore(key, &bucket{tokens: float64(limit), updated: now, lastSeen: now})

	b := val.(*bucket)
	b.mu.Lock()
	defer b.mu.Unlock()

	perSecond := float64(limit) / 60
	b.tokens = math.Min(float64(limit), b.tokens+now.Sub(b.updated).Seconds()*perSecond)
	b.updated = now
	b.lastSeen = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	wait := time.Duration((1 - b.tokens) * 60 / float64(limit) * float64(time.Second))
	return false, wait
}

// Limit caps each client IP at perMinute requests for the named route group.
// A non-positive limit disables the check.
func (rl *RateLimiter) Limit(group string, perMinute int) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		if perMinute <= 0 {
			return next
		}
		return func(w http.ResponseWriter, r *http.Request) {
			ok, wait := rl.take(request.ClientIP(r)+":"+group, perMinute)
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				errors.Write(w, errors.ErrCodeRateLimitExceeded, "Rate limit exceeded", nil)
				return
			}
			next(w, r)
		}
	}
}
