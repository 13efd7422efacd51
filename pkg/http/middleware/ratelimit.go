package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter hands out one token bucket per client key.
type KeyedLimiter struct {
	mu    sync.Mutex
	m     map[string]*visitor
	rps   rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time
}

// NewKeyedLimiter creates a limiter allowing rps requests per second with the
// given burst for each key. Keys unseen for idle are forgotten by Prune.
func NewKeyedLimiter(rps float64, burst int, idle time.Duration) *KeyedLimiter {
	return &KeyedLimiter{
		m:     make(map[string]*visitor),
		rps:   rate.Limit(rps),
		burst: burst,
		idle:  idle,
		now:   time.Now,
	}
}

// Allow reports whether key may proceed now.
func (l *KeyedLimiter) Allow(key string) bool {
	now := l.now()
	l.mu.Lock()
	v, ok := l.m[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.m[key] = v
	}
	v.lastSeen = now
	l.mu.Unlock()
	return v.limiter.AllowN(now, 1)
}

// Prune drops keys idle longer than the configured window.
func (l *KeyedLimiter) Prune() int {
	cutoff := l.now().Add(-l.idle)
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, v := range l.m {
		if v.lastSeen.Before(cutoff) {
			delete(l.m, k)
			n++
		}
	}
	return n
}

// RateLimit rejects requests over the per-client budget with 429. Clients
// are keyed by echo's RealIP.
func RateLimit(l *KeyedLimiter) echo.MiddlewareFunc {
	var calls int
	var mu sync.Mutex
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.Allow(c.RealIP()) {
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"status":  http.StatusTooManyRequests,
					"message": http.StatusText(http.StatusTooManyRequests),
				})
			}
			mu.Lock()
			calls++
			prune := calls%1024 == 0
			mu.Unlock()
			if prune {
				l.Prune()
			}
			return next(c)
		}
	}
}
