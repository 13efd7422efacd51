package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"CommodityPulse/internal/scheduler"
	"CommodityPulse/pkg/config"
	xhttp "CommodityPulse/pkg/http"
	applogger "CommodityPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	warmer     *scheduler.Warmer
}

// New creates a new App instance with all dependencies. warmer may be nil.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	warmer *scheduler.Warmer,
) *App {
	return &App{
		cfg:        cfg,
		log:        l,
		httpServer: httpServer,
		warmer:     warmer,
	}
}

// Run starts the application and blocks until interrupted or ctx is done.
// Infrastructure clients are closed by the DI cleanup after Run returns.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.warmer != nil {
		a.warmer.Start()
		go a.warmer.RunNow()
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	names := make([]string, len(a.cfg.Sources))
	for i, s := range a.cfg.Sources {
		names[i] = s.Name
	}
	a.log.Info("application started",
		applogger.Strings("sources", names),
		applogger.Bool("warmup", a.warmer != nil),
		applogger.Bool("kafka", a.cfg.Kafka.Enabled),
	)

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	if a.warmer != nil {
		a.warmer.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.httpServer.ShutdownTimeout())
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		return err
	}

	a.log.Info("shutdown complete")
	return nil
}
