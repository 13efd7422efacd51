package scheduler

import (
	"context"
	"fmt"
	"time"

	applogger "CommodityPulse/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Warmable is a cache that can be pre-filled and swept.
type Warmable interface {
	Warm(ctx context.Context) error
	Sweep() int
}

// Warmer refreshes every source on a cron schedule so user requests mostly hit
// a warm cache, and evicts expired reports.
type Warmer struct {
	cron    *cron.Cron
	target  Warmable
	log     *applogger.Logger
	timeout time.Duration
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewWarmer creates a Warmer; schedule uses the standard five-field cron
// syntax or descriptors such as "@every 14m".
func NewWarmer(target Warmable, l *applogger.Logger, timeout time.Duration) *Warmer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Warmer{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger{l}),
			cron.SkipIfStillRunning(cronLogger{l}),
		)),
		target:  target,
		log:     l,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Register schedules the warm-up job.
func (w *Warmer) Register(schedule string) error {
	if _, err := w.cron.AddFunc(schedule, w.RunNow); err != nil {
		return fmt.Errorf("register warmup %q: %w", schedule, err)
	}
	return nil
}

// Start starts the cron scheduler.
func (w *Warmer) Start() {
	w.cron.Start()
	w.log.Info("warmer started", applogger.Int("jobs", len(w.cron.Entries())))
}

// Stop cancels a running warm-up and waits for it to return.
func (w *Warmer) Stop() {
	w.cancel()
	<-w.cron.Stop().Done()
	w.log.Info("warmer stopped")
}

// RunNow sweeps expired entries and warms every source once.
func (w *Warmer) RunNow() {
	start := time.Now()
	removed := w.target.Sweep()

	ctx, cancel := context.WithTimeout(w.ctx, w.timeout)
	defer cancel()
	if err := w.target.Warm(ctx); err != nil {
		w.log.Warn("warmup incomplete",
			applogger.Int("evicted", removed),
			applogger.Duration("duration_ms", time.Since(start)),
			applogger.Error(err),
		)
		return
	}
	w.log.Info("warmup done",
		applogger.Int("evicted", removed),
		applogger.Duration("duration_ms", time.Since(start)),
	)
}

// cronLogger adapts applogger.Logger to cron.Logger.
type cronLogger struct {
	l *applogger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, kv(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append(kv(keysAndValues), applogger.Error(err))...)
}

func kv(keysAndValues []interface{}) []applogger.Field {
	fields := make([]applogger.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields = append(fields, applogger.Any(fmt.Sprint(keysAndValues[i]), keysAndValues[i+1]))
	}
	return fields
}
