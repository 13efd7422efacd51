package cache

// Option configures FetchCache.
type Option func(*Config)

// Config holds FetchCache configuration. The TTL is fixed at DefaultTTL.
type Config struct {
	Clock    Clock
	Observer Observer
}

// WithClock sets the clock used to stamp and expire entries.
func WithClock(c Clock) Option {
	return func(cfg *Config) {
		if c != nil {
			cfg.Clock = c
		}
	}
}

// WithObserver sets the event observer.
func WithObserver(o Observer) Option {
	return func(cfg *Config) {
		if o != nil {
			cfg.Observer = o
		}
	}
}
