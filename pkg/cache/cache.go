package cache

import (
	"errors"
	"time"
)

// DefaultTTL is how long a fetched value stays fresh.
const DefaultTTL = 15 * time.Minute

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Clock supplies the current time; tests substitute a manual clock.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Observer receives cache events, typically for metrics.
type Observer interface {
	CacheHit(key string)
	CacheMiss(key string)
	FetchCoalesced(key string)
	FetchDone(key string, d time.Duration, err error)
}

// NoopObserver ignores all events.
type NoopObserver struct{}

func (NoopObserver) CacheHit(string)                        {}
func (NoopObserver) CacheMiss(string)                       {}
func (NoopObserver) FetchCoalesced(string)                  {}
func (NoopObserver) FetchDone(string, time.Duration, error) {}
