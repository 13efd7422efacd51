package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"CommodityPulse/internal/domain/models"
	drepo "CommodityPulse/internal/domain/repository"
	"CommodityPulse/internal/services/blocks"
	"CommodityPulse/pkg/cache"
	applogger "CommodityPulse/pkg/logger"
)

const (
	portBlock  = `{"DataTitle":"Port stocks","DataClass":[{"ClassName":"Port A(Q3600)","keyName":"portA"}],"DataChart":[{"Date":"2025-07-01","portA":100}],"DataForm":[{"Date":"2025-07-01","portA":100}]}`
	priceBlock = `{"title":"价格分析","coal":{"current":{"value":812.5,"comparisonValue":-3.5},"next":{"value":815,"comparisonValue":2.5}},"lignite":{"current":{"value":"n/a","comparisonValue":0},"next":{"value":400,"comparisonValue":1}}}`
)

type fakeSource struct {
	name    string
	calls   atomic.Int64
	release chan struct{}
	err     error
}

func (s *fakeSource) Name() string { return s.name }
func (s *fakeSource) Type() string { return "fake" }

func (s *fakeSource) Fetch(ctx context.Context) (*models.RawRecord, error) {
	s.calls.Add(1)
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return nil, s.err
	}
	return models.NewRawRecord("2025-08-01",
		models.Field{Name: "port", Value: portBlock},
		models.Field{Name: "price", Value: priceBlock},
	), nil
}

type fakeMetrics struct {
	mu        sync.Mutex
	errors    map[string]int
	published int
	disabled  int
}

func (m *fakeMetrics) RecordPublished(string, string) {
	m.mu.Lock()
	m.published++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	if m.errors == nil {
		m.errors = map[string]int{}
	}
	m.errors[kind]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordPriceRows(_ string, _, disabled int) {
	m.mu.Lock()
	m.disabled = disabled
	m.mu.Unlock()
}

type fakePublisher struct {
	mu      sync.Mutex
	reports []*models.Report
	err     error
	closed  atomic.Bool
}

func (p *fakePublisher) Backend() string { return "fake" }

func (p *fakePublisher) Publish(_ context.Context, r *models.Report) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reports = append(p.reports, r)
	return p.err
}

func (p *fakePublisher) Close() error {
	p.closed.Store(true)
	return nil
}

func newService(pub *fakePublisher, m *fakeMetrics, srcs ...*fakeSource) *ReportService {
	sources := make([]drepo.RecordSource, 0, len(srcs))
	for _, s := range srcs {
		sources = append(sources, s)
	}
	fixed := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)
	return NewReportService(sources, cache.NewFetchCache[*models.Report](), pub, m, applogger.NewNop(),
		WithNow(func() time.Time { return fixed }))
}

func TestReportIsComposedAndCached(t *testing.T) {
	src := &fakeSource{name: "coal"}
	pub := &fakePublisher{}
	m := &fakeMetrics{}
	svc := newService(pub, m, src)

	r, err := svc.Report(context.Background(), "coal")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if r.Source != "coal" || r.Date != "2025-08-01" || len(r.Blocks) != 1 || r.Blocks[0].Key != "port" {
		t.Fatalf("unexpected report %+v", r)
	}
	if len(r.Price.Rows) != 2 || !r.Price.Rows[1].Disabled {
		t.Fatalf("unexpected price rows %+v", r.Price.Rows)
	}

	again, err := svc.Report(context.Background(), "coal")
	if err != nil || again != r {
		t.Fatalf("expected the cached report, got %p vs %p (%v)", again, r, err)
	}
	if src.calls.Load() != 1 {
		t.Fatalf("expected one upstream fetch, got %d", src.calls.Load())
	}

	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(pub.reports) != 1 || m.published != 1 || m.disabled != 1 {
		t.Fatalf("expected one publish, got reports=%d published=%d disabled=%d", len(pub.reports), m.published, m.disabled)
	}
}

func TestReportConcurrentCallersShareOneFetch(t *testing.T) {
	src := &fakeSource{name: "coal", release: make(chan struct{})}
	svc := newService(&fakePublisher{}, &fakeMetrics{}, src)

	const n = 16
	var wg sync.WaitGroup
	got := make([]*models.Report, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], _ = svc.Report(context.Background(), "coal")
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(src.release)
	wg.Wait()

	if src.calls.Load() != 1 {
		t.Fatalf("expected one fetch, got %d", src.calls.Load())
	}
	for i := 1; i < n; i++ {
		if got[i] == nil || got[i] != got[0] {
			t.Fatalf("caller %d got a different report", i)
		}
	}
}

func TestReportErrors(t *testing.T) {
	boom := errors.New("upstream down")
	src := &fakeSource{name: "coal", err: boom}
	m := &fakeMetrics{}
	svc := newService(&fakePublisher{}, m, src)
	ctx := context.Background()

	if _, err := svc.Report(ctx, "tin"); !errors.Is(err, ErrUnknownSource) {
		t.Fatalf("expected ErrUnknownSource, got %v", err)
	}
	if _, err := svc.Report(ctx, "coal"); !errors.Is(err, boom) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if _, err := svc.Report(ctx, "coal"); !errors.Is(err, boom) {
		t.Fatalf("expected upstream error again, got %v", err)
	}
	if src.calls.Load() != 2 {
		t.Fatalf("failures must not be cached, got %d calls", src.calls.Load())
	}
	if m.errors["fetch"] != 2 {
		t.Fatalf("expected 2 fetch errors recorded, got %v", m.errors)
	}
}

func TestBlockAndPrice(t *testing.T) {
	svc := newService(&fakePublisher{}, &fakeMetrics{}, &fakeSource{name: "coal"})
	ctx := context.Background()

	b, err := svc.Block(ctx, "coal", "port")
	if err != nil || b.Title != "Port stocks" {
		t.Fatalf("unexpected block %+v %v", b, err)
	}
	if _, err := svc.Block(ctx, "coal", "price"); !errors.Is(err, ErrUnknownBlock) {
		t.Fatalf("expected ErrUnknownBlock, got %v", err)
	}

	p, err := svc.Price(ctx, "coal")
	if err != nil || p.Title != "价格分析" || len(p.Rows) != 2 {
		t.Fatalf("unexpected price section %+v %v", p, err)
	}
}

func TestCachedAndSources(t *testing.T) {
	svc := newService(&fakePublisher{}, &fakeMetrics{}, &fakeSource{name: "coal"}, &fakeSource{name: "steel"}, &fakeSource{name: "coal"})

	srcs := svc.Sources()
	if len(srcs) != 2 || srcs[0].Name != "coal" || srcs[1].Name != "steel" {
		t.Fatalf("unexpected sources %+v", srcs)
	}

	if _, err := svc.Cached("coal"); !errors.Is(err, cache.ErrCacheMiss) {
		t.Fatalf("expected cache miss, got %v", err)
	}
	if _, err := svc.Cached("tin"); !errors.Is(err, ErrUnknownSource) {
		t.Fatalf("expected unknown source, got %v", err)
	}
	if _, err := svc.Report(context.Background(), "coal"); err != nil {
		t.Fatalf("report: %v", err)
	}
	if r, err := svc.Cached("coal"); err != nil || r.Source != "coal" {
		t.Fatalf("expected cached report, got %v", err)
	}
}

func TestWarmJoinsFailures(t *testing.T) {
	boom := errors.New("down")
	ok := &fakeSource{name: "coal"}
	bad := &fakeSource{name: "steel", err: boom}
	svc := newService(&fakePublisher{}, &fakeMetrics{}, ok, bad)

	err := svc.Warm(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined failure, got %v", err)
	}
	if _, err := svc.Cached("coal"); err != nil {
		t.Fatalf("healthy source should be warm: %v", err)
	}
}

func TestFetchFinishingAfterCloseIsNotPublished(t *testing.T) {
	src := &fakeSource{name: "coal", release: make(chan struct{})}
	pub := &fakePublisher{}
	m := &fakeMetrics{}
	svc := newService(pub, m, src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.Report(ctx, "coal")
	}()
	for src.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done

	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !pub.closed.Load() {
		t.Fatalf("publisher should be closed")
	}

	close(src.release)
	for i := 0; i < 100; i++ {
		if _, ok := svc.cache.Get(cacheKey("coal")); ok {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if _, err := svc.Cached("coal"); err != nil {
		t.Fatalf("detached fetch should still fill the cache: %v", err)
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.reports) != 0 {
		t.Fatalf("expected no publish after close, got %d", len(pub.reports))
	}
}

func TestSourcePricePolicy(t *testing.T) {
	coal := &fakeSource{name: "coal"}
	iron := &fakeSource{name: "iron"}
	svc := NewReportService([]drepo.RecordSource{coal, iron}, cache.NewFetchCache[*models.Report](),
		&fakePublisher{}, &fakeMetrics{}, applogger.NewNop(),
		WithSourcePricePolicy("iron", blocks.KeyPolicy("port")))

	r, err := svc.Report(context.Background(), "coal")
	if err != nil {
		t.Fatalf("report coal: %v", err)
	}
	if r.PriceKey != "price" || len(r.Price.Rows) != 2 {
		t.Fatalf("coal should use the default policy, got %q %+v", r.PriceKey, r.Price)
	}

	r, err = svc.Report(context.Background(), "iron")
	if err != nil {
		t.Fatalf("report iron: %v", err)
	}
	if r.PriceKey != "port" || len(r.Blocks) != 0 {
		t.Fatalf("iron should use the pinned block, got %q blocks=%d", r.PriceKey, len(r.Blocks))
	}
}
