package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"CommodityPulse/internal/domain/models"
	drepo "CommodityPulse/internal/domain/repository"
	"CommodityPulse/internal/services/blocks"
	"CommodityPulse/internal/services/ingest"
	"CommodityPulse/pkg/cache"
	applogger "CommodityPulse/pkg/logger"

	"golang.org/x/sync/errgroup"
)

var (
	ErrUnknownSource = errors.New("unknown source")
	ErrUnknownBlock  = errors.New("unknown block")
)

const (
	publishTimeout = 10 * time.Second
	warmParallel   = 4
)

// ReportOption configures ReportService.
type ReportOption func(*ReportService)

// WithSourcePricePolicy replaces the price block heuristic for one source.
func WithSourcePricePolicy(source string, p blocks.PricePolicy) ReportOption {
	return func(s *ReportService) {
		s.policies[source] = p
	}
}

// WithNow replaces the clock used to stamp FetchedAt.
func WithNow(now func() time.Time) ReportOption {
	return func(s *ReportService) {
		s.now = now
	}
}

// ReportService loads, normalizes and caches reports per source. Each source
// is fetched upstream at most once per cache TTL; concurrent requests for a
// cold source share one fetch.
//
// Returned reports are shared between callers and must be treated as read-only.
type ReportService struct {
	sources  map[string]drepo.RecordSource
	order    []string
	cache    *cache.FetchCache[*models.Report]
	pub      drepo.ReportPublisher
	metrics  drepo.Metrics
	log      *applogger.Logger
	policies map[string]blocks.PricePolicy
	now      func() time.Time

	mu         sync.Mutex
	closed     bool
	publishing sync.WaitGroup
}

// NewReportService creates a ReportService. Source names must be unique;
// the first source with a given name wins.
func NewReportService(
	sources []drepo.RecordSource,
	c *cache.FetchCache[*models.Report],
	pub drepo.ReportPublisher,
	metrics drepo.Metrics,
	l *applogger.Logger,
	opts ...ReportOption,
) *ReportService {
	s := &ReportService{
		sources:  make(map[string]drepo.RecordSource, len(sources)),
		cache:    c,
		pub:      pub,
		metrics:  metrics,
		log:      l,
		policies: make(map[string]blocks.PricePolicy),
		now:      time.Now,
	}
	for _, src := range sources {
		if _, dup := s.sources[src.Name()]; dup {
			continue
		}
		s.sources[src.Name()] = src
		s.order = append(s.order, src.Name())
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sources lists the configured sources in configuration order.
func (s *ReportService) Sources() []models.SourceInfo {
	out := make([]models.SourceInfo, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, models.SourceInfo{Name: name, Type: s.sources[name].Type()})
	}
	return out
}

// Report returns the report of source, fetching it when the cache is cold.
func (s *ReportService) Report(ctx context.Context, source string) (*models.Report, error) {
	src, ok := s.sources[source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, source)
	}
	return s.cache.GetOrFetch(ctx, cacheKey(source), func(fctx context.Context) (*models.Report, error) {
		return s.load(fctx, src)
	})
}

// Cached returns the report of source only if it is cached and fresh.
func (s *ReportService) Cached(source string) (*models.Report, error) {
	if _, ok := s.sources[source]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, source)
	}
	r, ok := s.cache.Get(cacheKey(source))
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return r, nil
}

// Block returns one tabular block of the report of source.
func (s *ReportService) Block(ctx context.Context, source, key string) (models.ParsedBlockModel, error) {
	r, err := s.Report(ctx, source)
	if err != nil {
		return models.ParsedBlockModel{}, err
	}
	b, ok := r.Block(key)
	if !ok {
		return models.ParsedBlockModel{}, fmt.Errorf("%w: %s/%s", ErrUnknownBlock, source, key)
	}
	return b, nil
}

// Price returns the price section of the report of source.
func (s *ReportService) Price(ctx context.Context, source string) (models.PriceSection, error) {
	r, err := s.Report(ctx, source)
	if err != nil {
		return models.PriceSection{}, err
	}
	return r.Price, nil
}

// Warm loads every source through the cache, a few at a time. Sources that
// are already fresh cost nothing. Failures are joined, not short-circuited.
func (s *ReportService) Warm(ctx context.Context) error {
	var (
		mu   sync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(warmParallel)
	for _, name := range s.order {
		g.Go(func() error {
			if _, err := s.Report(gctx, name); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Sweep evicts expired reports.
func (s *ReportService) Sweep() int {
	return s.cache.Sweep()
}

// Close stops publishing, waits for pending publishes and closes the
// publisher. Fetches that finish afterwards are cached but not published.
func (s *ReportService) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.publishing.Wait()
	return s.pub.Close()
}

func (s *ReportService) load(ctx context.Context, src drepo.RecordSource) (*models.Report, error) {
	start := s.now()
	rec, err := src.Fetch(ctx)
	if err != nil {
		s.metrics.RecordError("fetch")
		s.log.Error("report fetch failed",
			applogger.String("source", src.Name()),
			applogger.String("type", src.Type()),
			applogger.Error(err),
		)
		return nil, err
	}

	r := blocks.Compose(src.Name(), ingest.Record(rec), s.policy(src.Name()), s.now())

	disabled := 0
	for _, row := range r.Price.Rows {
		if row.Disabled {
			disabled++
		}
	}
	s.metrics.RecordPriceRows(src.Name(), len(r.Price.Rows), disabled)
	s.log.Info("report fetched",
		applogger.String("source", src.Name()),
		applogger.String("date", r.Date),
		applogger.Int("blocks", len(r.Blocks)),
		applogger.Int("price_rows", len(r.Price.Rows)),
		applogger.Duration("duration_ms", s.now().Sub(start)),
	)

	if s.pub.Backend() != "" && s.startPublish() {
		go s.publish(r)
	}
	return r, nil
}

func (s *ReportService) policy(source string) blocks.PricePolicy {
	if p, ok := s.policies[source]; ok {
		return p
	}
	return blocks.FirstMatchPolicy
}

// startPublish registers a publish unless Close has begun.
func (s *ReportService) startPublish() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.publishing.Add(1)
	return true
}

func (s *ReportService) publish(r *models.Report) {
	defer s.publishing.Done()
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := s.pub.Publish(ctx, r); err != nil {
		s.metrics.RecordError("publish")
		s.log.Warn("report publish failed", applogger.String("source", r.Source), applogger.Error(err))
		return
	}
	s.metrics.RecordPublished(s.pub.Backend(), r.Source)
}

func cacheKey(source string) string {
	return cache.GenerateKey("report", source)
}
