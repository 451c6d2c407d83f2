package middleware

import (
	"net/http"
	"sync"
	"time"

	"blog_backend/internal/model"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const limiterStaleAfter = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore maps client keys to token buckets. Stale entries are swept
// lazily on access, at most once per staleAfter.
type limiterStore struct {
	mu         sync.Mutex
	entries    map[string]*limiterEntry
	staleAfter time.Duration
	lastSweep  time.Time
	limit      rate.Limit
	burst      int
	now        func() time.Time
}

func newLimiterStore(limit rate.Limit, burst int, staleAfter time.Duration, now func() time.Time) *limiterStore {
	return &limiterStore{
		entries:    make(map[string]*limiterEntry),
		staleAfter: staleAfter,
		lastSweep:  now(),
		limit:      limit,
		burst:      burst,
		now:        now,
	}
}

func (s *limiterStore) allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= s.staleAfter {
		cutoff := now.Add(-s.staleAfter)
		for k, e := range s.entries {
			if e.lastSeen.Before(cutoff) {
				delete(s.entries, k)
			}
		}
		s.lastSweep = now
	}

	e, ok := s.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

func (s *limiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// AuthRateLimit applies a per-IP token bucket to the login and registration
// endpoints. A disabled limiter passes every request through.
func AuthRateLimit(enabled bool, rps float64, burst int) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return authRateLimit(newLimiterStore(rate.Limit(rps), burst, limiterStaleAfter, time.Now))
}

func authRateLimit(store *limiterStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		if !store.allow("auth:" + c.ClientIP()) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, model.NewErrorResponse(model.CodeRateLimited, "Too many requests"))
			return
		}
		c.Next()
	}
}
