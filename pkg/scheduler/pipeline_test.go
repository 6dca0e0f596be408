package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/newsnexus/pkg/aggregator"
	"github.com/umputun/newsnexus/pkg/domain"
	"github.com/umputun/newsnexus/pkg/notify"
	"github.com/umputun/newsnexus/pkg/scheduler/mocks"
	"github.com/umputun/newsnexus/pkg/source"
)

type pipelineMocks struct {
	settings   *mocks.SettingsStoreMock
	items      *mocks.ItemStoreMock
	aggregator *mocks.AggregatorMock
	annotator  *mocks.AnnotatorMock
	notifier   *mocks.NotifierMock
}

func testReport() aggregator.Report {
	items := []domain.NewsItem{
		{ID: "hn-1", Title: "New model", Source: domain.SourceHackerNews, Timestamp: 300},
		{ID: "devto-2", Title: "Agent sdk", Source: domain.SourceDevTo, Timestamp: 200, AIAnalysis: "already there"},
		{ID: "devto-3", Title: "Funding", Source: domain.SourceDevTo, Timestamp: 100},
	}
	return aggregator.Report{
		Items: items,
		Results: []source.Result{
			source.Ok(domain.SourceHackerNews, "top stories", items[:1]),
			source.Ok(domain.SourceDevTo, "articles", items[1:]),
			source.Failed(domain.SourceRSS, "https://example.com/feed", errors.New("all paths failed")),
		},
	}
}

func newTestPipeline(t *testing.T) (*Pipeline, *pipelineMocks) {
	t.Helper()
	m := &pipelineMocks{
		settings: &mocks.SettingsStoreMock{
			LoadSettingsFunc: func(ctx context.Context, defaults domain.Settings) (domain.Settings, error) {
				return defaults, nil
			},
			SaveStatsFunc: func(ctx context.Context, stats domain.AggregationStats) error { return nil },
		},
		items: &mocks.ItemStoreMock{
			ReplaceItemsFunc: func(ctx context.Context, items []domain.NewsItem) error { return nil },
			CountFunc:        func(ctx context.Context) (int, error) { return 0, nil },
		},
		aggregator: &mocks.AggregatorMock{
			AggregateFunc: func(ctx context.Context, settings domain.Settings) aggregator.Report { return testReport() },
		},
		annotator: &mocks.AnnotatorMock{
			AnnotateFunc: func(ctx context.Context, items []domain.NewsItem) []domain.NewsItem {
				res := append([]domain.NewsItem(nil), items...)
				res[0].AIAnalysis = "a new model"
				return res
			},
		},
		notifier: &mocks.NotifierMock{
			PublishFunc: func(ctx context.Context, ev notify.RefreshEvent) error { return nil },
		},
	}
	p := NewPipeline(PipelineParams{
		Settings:   m.settings,
		Items:      m.items,
		Aggregator: m.aggregator,
		Annotator:  m.annotator,
		Notifier:   m.notifier,
		Defaults:   domain.DefaultSettings(),
	})
	p.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return p, m
}

func TestPipeline_Refresh(t *testing.T) {
	p, m := newTestPipeline(t)

	res, err := p.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Annotated, "pre-existing analysis is not counted")
	assert.Equal(t, []string{"rss: https://example.com/feed"}, res.Failed())
	assert.Len(t, res.Results, 3)
	assert.Equal(t, 3, res.Stats.TotalItems)
	assert.Equal(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC).UnixMilli(), res.Stats.LastUpdated)
	assert.Equal(t, map[domain.SourceType]int{domain.SourceHackerNews: 1, domain.SourceDevTo: 2}, res.Stats.Sources)

	// settings are loaded once with configured defaults and passed to the aggregator
	require.Len(t, m.settings.LoadSettingsCalls(), 1)
	assert.Equal(t, domain.DefaultGlobalFilter(), m.settings.LoadSettingsCalls()[0].Defaults.GlobalFilter)
	require.Len(t, m.aggregator.AggregateCalls(), 1)

	// annotated items are what gets cached
	require.Len(t, m.items.ReplaceItemsCalls(), 1)
	stored := m.items.ReplaceItemsCalls()[0].Items
	require.Len(t, stored, 3)
	assert.Equal(t, "a new model", stored[0].AIAnalysis)
	assert.Equal(t, "already there", stored[1].AIAnalysis)

	require.Len(t, m.settings.SaveStatsCalls(), 1)
	assert.Equal(t, res.Stats, m.settings.SaveStatsCalls()[0].Stats)

	require.Len(t, m.notifier.PublishCalls(), 1)
	ev := m.notifier.PublishCalls()[0].Ev
	assert.Equal(t, res.Stats, ev.Stats)
	assert.Equal(t, []string{"rss: https://example.com/feed"}, ev.Failed)
	assert.Equal(t, 1, ev.Annotated)
}

func TestPipeline_RefreshOptionalParts(t *testing.T) {
	p, m := newTestPipeline(t)
	p.Annotator = nil
	p.Notifier = nil

	res, err := p.Refresh(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Annotated)
	assert.Equal(t, testReport().Items, m.items.ReplaceItemsCalls()[0].Items)
}

func TestPipeline_RefreshErrors(t *testing.T) {
	t.Run("load settings", func(t *testing.T) {
		p, m := newTestPipeline(t)
		m.settings.LoadSettingsFunc = func(ctx context.Context, defaults domain.Settings) (domain.Settings, error) {
			return domain.Settings{}, errors.New("db closed")
		}
		_, err := p.Refresh(context.Background())
		require.EqualError(t, err, "load settings: db closed")
		assert.Empty(t, m.aggregator.AggregateCalls())
	})

	t.Run("save items", func(t *testing.T) {
		p, m := newTestPipeline(t)
		m.items.ReplaceItemsFunc = func(ctx context.Context, items []domain.NewsItem) error {
			return errors.New("disk full")
		}
		_, err := p.Refresh(context.Background())
		require.EqualError(t, err, "save items: disk full")
		assert.Empty(t, m.settings.SaveStatsCalls())
		assert.Empty(t, m.notifier.PublishCalls())
	})

	t.Run("save stats", func(t *testing.T) {
		p, m := newTestPipeline(t)
		m.settings.SaveStatsFunc = func(ctx context.Context, stats domain.AggregationStats) error {
			return errors.New("locked")
		}
		_, err := p.Refresh(context.Background())
		require.EqualError(t, err, "save stats: locked")
		assert.Empty(t, m.notifier.PublishCalls())
	})

	t.Run("publish failure is not fatal", func(t *testing.T) {
		p, m := newTestPipeline(t)
		m.notifier.PublishFunc = func(ctx context.Context, ev notify.RefreshEvent) error {
			return errors.New("nats down")
		}
		res, err := p.Refresh(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, res.Stats.TotalItems)
	})

	t.Run("all sources failed still caches empty list", func(t *testing.T) {
		p, m := newTestPipeline(t)
		m.aggregator.AggregateFunc = func(ctx context.Context, settings domain.Settings) aggregator.Report {
			return aggregator.Report{Items: []domain.NewsItem{}, Results: []source.Result{
				source.Failed(domain.SourceHackerNews, "top stories", errors.New("timeout")),
			}}
		}
		m.annotator.AnnotateFunc = func(ctx context.Context, items []domain.NewsItem) []domain.NewsItem { return items }
		res, err := p.Refresh(context.Background())
		require.NoError(t, err)
		assert.Zero(t, res.Stats.TotalItems)
		assert.Empty(t, m.items.ReplaceItemsCalls()[0].Items)
	})
}

func TestPipeline_RefreshSerialized(t *testing.T) {
	p, m := newTestPipeline(t)
	var running, peak int32
	m.aggregator.AggregateFunc = func(ctx context.Context, settings domain.Settings) aggregator.Report {
		cur := atomic.AddInt32(&running, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return testReport()
	}

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Refresh(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&peak))
	assert.Len(t, m.aggregator.AggregateCalls(), 5)
}

func TestPipeline_Empty(t *testing.T) {
	p, m := newTestPipeline(t)

	empty, err := p.Empty(context.Background())
	require.NoError(t, err)
	assert.True(t, empty)

	m.items.CountFunc = func(ctx context.Context) (int, error) { return 7, nil }
	empty, err = p.Empty(context.Background())
	require.NoError(t, err)
	assert.False(t, empty)

	m.items.CountFunc = func(ctx context.Context) (int, error) { return 0, errors.New("no table") }
	_, err = p.Empty(context.Background())
	require.EqualError(t, err, "count cached items: no table")
}
