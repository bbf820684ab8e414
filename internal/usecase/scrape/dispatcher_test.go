package scrape

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadscout/internal/domain/entity"
	"leadscout/internal/infra/health"
	"leadscout/internal/infra/source"
)

// fakeAdapter is a scripted source adapter for pipeline tests.
type fakeAdapter struct {
	name     string
	hits     []entity.RawHit
	err      error
	fallback []entity.RawHit

	mu       sync.Mutex
	searches int
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Search(_ context.Context, _ []string, maxResults int) ([]entity.RawHit, error) {
	f.mu.Lock()
	f.searches++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if len(f.hits) > maxResults {
		return f.hits[:maxResults], nil
	}
	return f.hits, nil
}

func (f *fakeAdapter) FallbackSearch(_ context.Context, _ []string, _ int) ([]entity.RawHit, error) {
	return f.fallback, nil
}

func makeHits(engine string, n int) []entity.RawHit {
	hits := make([]entity.RawHit, n)
	for i := range hits {
		hits[i] = entity.RawHit{
			Title:  fmt.Sprintf("%s story number %d about hotels", engine, i),
			URL:    fmt.Sprintf("https://%s.example/story-%d", engine, i),
			Source: engine,
			Engine: engine,
		}
	}
	return hits
}

func testConfig() *entity.ScrapeConfig {
	return &entity.ScrapeConfig{
		ID:         1,
		UserID:     1,
		Name:       "hotel watch",
		Keywords:   []string{"hotel"},
		MaxResults: 50,
		Frequency:  "manual",
		IsActive:   true,
	}
}

func TestDispatcher_CombinesAdapters(t *testing.T) {
	registry := source.NewRegistry()
	registry.Register(&fakeAdapter{name: "alpha", hits: makeHits("alpha", 3)})
	registry.Register(&fakeAdapter{name: "beta", hits: makeHits("beta", 2)})

	d := NewDispatcher(registry, health.NewMonitor(nil))
	hits := d.Dispatch(context.Background(), testConfig(), nil)
	assert.Len(t, hits, 5)
}

func TestDispatcher_AdapterFailureDoesNotAbort(t *testing.T) {
	registry := source.NewRegistry()
	registry.Register(&fakeAdapter{name: "alpha", err: errors.New("provider down")})
	registry.Register(&fakeAdapter{name: "beta", hits: makeHits("beta", 2)})

	monitor := health.NewMonitor(nil)
	d := NewDispatcher(registry, monitor)
	hits := d.Dispatch(context.Background(), testConfig(), nil)
	assert.Len(t, hits, 2)

	statuses := monitor.EngineStatuses()
	require.Contains(t, statuses, "alpha")
	assert.Equal(t, health.StatusFailed, statuses["alpha"].Status)
	assert.Equal(t, health.StatusSuccess, statuses["beta"].Status)
}

func TestDispatcher_FallbackWhenAllEmpty(t *testing.T) {
	registry := source.NewRegistry()
	registry.Register(&fakeAdapter{name: "alpha"})
	registry.Register(&fakeAdapter{
		name:     "html_search_google",
		fallback: makeHits("fallback", 2),
	})

	d := NewDispatcher(registry, health.NewMonitor(nil))
	hits := d.Dispatch(context.Background(), testConfig(), nil)
	require.Len(t, hits, 2)
	assert.Equal(t, "fallback", hits[0].Engine)
}

func TestDispatcher_QuotaFloor(t *testing.T) {
	// 10 results over 2 adapters rounds down to 5, the floor.
	adapter := &fakeAdapter{name: "alpha", hits: makeHits("alpha", 20)}
	registry := source.NewRegistry()
	registry.Register(adapter)
	registry.Register(&fakeAdapter{name: "beta"})

	cfg := testConfig()
	cfg.MaxResults = 10

	d := NewDispatcher(registry, health.NewMonitor(nil))
	hits := d.Dispatch(context.Background(), cfg, nil)
	assert.Len(t, hits, 5)
}

func TestDispatcher_ReportsAdapterCompletion(t *testing.T) {
	registry := source.NewRegistry()
	registry.Register(&fakeAdapter{name: "alpha", hits: makeHits("alpha", 1)})
	registry.Register(&fakeAdapter{name: "beta", hits: makeHits("beta", 1)})

	var mu sync.Mutex
	var calls []int
	d := NewDispatcher(registry, health.NewMonitor(nil))
	d.Dispatch(context.Background(), testConfig(), func(done, total int, _ string) {
		mu.Lock()
		calls = append(calls, done)
		mu.Unlock()
		assert.Equal(t, 2, total)
	})
	assert.ElementsMatch(t, []int{1, 2}, calls)
}
