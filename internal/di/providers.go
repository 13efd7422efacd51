package di

import (
	"context"
	"fmt"
	"time"

	"CommodityPulse/internal/domain/models"
	"CommodityPulse/internal/domain/repository"
	"CommodityPulse/internal/handler/api"
	internalrepo "CommodityPulse/internal/repository"
	"CommodityPulse/internal/scheduler"
	"CommodityPulse/internal/services/blocks"
	"CommodityPulse/internal/usecase"
	"CommodityPulse/pkg/cache"
	"CommodityPulse/pkg/config"
	xhttp "CommodityPulse/pkg/http"
	"CommodityPulse/pkg/http/middleware"
	pkgkafka "CommodityPulse/pkg/kafka"
	applogger "CommodityPulse/pkg/logger"
	"CommodityPulse/pkg/metrics"
	"CommodityPulse/pkg/server"
	"CommodityPulse/pkg/sqldb"

	"github.com/redis/go-redis/v9"
)

const (
	defaultSourceTimeout = 30 * time.Second
	warmupTimeout        = 2 * time.Minute
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideClock returns the clock shared by the report cache and report timestamps.
func ProvideClock() cache.Clock {
	return cache.SystemClock
}

// ProvideReportCache creates the report cache, reporting events to the recorder.
func ProvideReportCache(rec *metrics.Recorder, clock cache.Clock) *cache.FetchCache[*models.Report] {
	return cache.NewFetchCache[*models.Report](cache.WithObserver(rec), cache.WithClock(clock))
}

// ProvideRedisClient connects to Redis when a redis source is configured.
func ProvideRedisClient(cfg *config.Config) (redis.UniversalClient, func(), error) {
	if !cfg.HasSourceType(config.SourceRedis) {
		return nil, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, func() { _ = client.Close() }, nil
}

// ProvideSQLClient opens the SQL pool when a sql source is configured.
func ProvideSQLClient(cfg *config.Config) (*sqldb.Client, func(), error) {
	if !cfg.HasSourceType(config.SourceSQL) {
		return nil, func() {}, nil
	}

	client, err := sqldb.NewClient(
		sqldb.WithDriver(cfg.SQL.Driver),
		sqldb.WithDSN(cfg.SQL.DSN),
		sqldb.WithHost(cfg.SQL.Host, cfg.SQL.Port),
		sqldb.WithDatabase(cfg.SQL.Database),
		sqldb.WithCredentials(cfg.SQL.User, cfg.SQL.Password),
		sqldb.WithHTTP(cfg.SQL.UseHTTP),
		sqldb.WithMaxExecutionTime(cfg.SQL.Timeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("sql client: %w", err)
	}

	return client, func() { _ = client.Close() }, nil
}

// ProvideSources builds one RecordSource per configured source.
func ProvideSources(cfg *config.Config, rdb redis.UniversalClient, sqlc *sqldb.Client) ([]repository.RecordSource, error) {
	out := make([]repository.RecordSource, 0, len(cfg.Sources))
	for _, s := range cfg.Sources {
		switch s.Type {
		case config.SourceHTTP:
			timeout := s.Timeout
			if timeout == 0 {
				timeout = defaultSourceTimeout
			}
			out = append(out, internalrepo.NewHTTPSource(s.Name, s.URL, xhttp.NewClient(xhttp.WithTimeout(timeout))))
		case config.SourceRedis:
			if rdb == nil {
				return nil, fmt.Errorf("source %q: redis client unavailable", s.Name)
			}
			out = append(out, internalrepo.NewRedisSource(s.Name, s.Key, rdb))
		case config.SourceSQL:
			if sqlc == nil {
				return nil, fmt.Errorf("source %q: sql client unavailable", s.Name)
			}
			out = append(out, internalrepo.NewSQLSource(s.Name, sqlc.DB(), s.Table, s.DateCol))
		default:
			return nil, fmt.Errorf("source %q: unsupported type %q", s.Name, s.Type)
		}
	}
	return out, nil
}

// ProvideReportPublisher creates the Kafka publisher, or a no-op one when Kafka is disabled.
func ProvideReportPublisher(cfg *config.Config) (repository.ReportPublisher, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NopPublisher{}, nil
	}

	opts := []pkgkafka.ProducerOption{
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithTopic(cfg.Kafka.Topic),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithAsync(cfg.Kafka.Async),
		pkgkafka.WithHashByKey(true),
	}
	if cfg.Kafka.RequiredAcks != 0 {
		opts = append(opts, pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks))
	}
	if cfg.Kafka.MaxAttempts > 0 {
		opts = append(opts, pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts))
	}
	if cfg.Kafka.WriteTimeout > 0 {
		opts = append(opts, pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.WriteTimeout))
	}

	producer, err := pkgkafka.NewProducer(opts...)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaPublisher(producer), nil
}

// ProvideReportService creates the report use case. Sources with a
// price_block use it instead of price block detection.
func ProvideReportService(
	cfg *config.Config,
	sources []repository.RecordSource,
	c *cache.FetchCache[*models.Report],
	clock cache.Clock,
	pub repository.ReportPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) (*usecase.ReportService, func()) {
	opts := []usecase.ReportOption{usecase.WithNow(clock.Now)}
	for _, s := range cfg.Sources {
		if s.PriceBlock != "" {
			opts = append(opts, usecase.WithSourcePricePolicy(s.Name, blocks.KeyPolicy(s.PriceBlock)))
		}
	}
	svc := usecase.NewReportService(sources, c, pub, m, l, opts...)
	return svc, func() {
		if err := svc.Close(); err != nil {
			l.Warn("report publisher close error", applogger.Error(err))
		}
	}
}

// ProvideReportsHandler creates the report HTTP handler.
func ProvideReportsHandler(l *applogger.Logger, svc *usecase.ReportService) *api.ReportsEchoHandler {
	return api.NewReportsEchoHandler(l, svc)
}

// ProvideHTTPServer creates the Echo server with all API handlers.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, reports *api.ReportsEchoHandler) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithAllowOrigins(cfg.Server.AllowOrigins),
	}
	if !cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(""))
	} else {
		opts = append(opts, xhttp.WithMetricsPath(cfg.Metrics.Path))
	}
	if cfg.RateLimit.Enabled {
		opts = append(opts, xhttp.WithRateLimit(middleware.NewKeyedLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 10*time.Minute)))
	}
	return xhttp.NewServer(l, []xhttp.Handler{reports}, opts...)
}

// ProvideWarmer creates the cache warmer, or nil when warm-up is disabled.
func ProvideWarmer(cfg *config.Config, svc *usecase.ReportService, l *applogger.Logger) (*scheduler.Warmer, error) {
	if !cfg.Warmup.Enabled {
		return nil, nil
	}
	w := scheduler.NewWarmer(svc, l, warmupTimeout)
	if err := w.Register(cfg.Warmup.Schedule); err != nil {
		return nil, err
	}
	return w, nil
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	warmer *scheduler.Warmer,
) *server.App {
	return server.New(cfg, l, httpServer, warmer)
}
