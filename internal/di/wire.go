//go:build wireinject
// +build wireinject

package di

import (
	"CommodityPulse/internal/domain/repository"
	"CommodityPulse/internal/usecase"
	"CommodityPulse/pkg/config"
	"CommodityPulse/pkg/metrics"
	"CommodityPulse/pkg/server"

	"github.com/google/wire"
)

var reportSet = wire.NewSet(
	// Observability
	ProvideLogger,
	ProvideMetrics,
	wire.Bind(new(repository.Metrics), new(*metrics.Recorder)),

	// Infrastructure clients
	ProvideRedisClient,
	ProvideSQLClient,

	// Repositories
	ProvideSources,
	ProvideReportPublisher,

	// Use cases
	ProvideClock,
	ProvideReportCache,
	ProvideReportService,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		reportSet,

		// Transport
		ProvideReportsHandler,
		ProvideHTTPServer,
		ProvideWarmer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}

// InitializeReportService wires the report use case alone, for one-shot CLI commands.
func InitializeReportService(cfg *config.Config) (*usecase.ReportService, func(), error) {
	wire.Build(reportSet)
	return nil, nil, nil
}
