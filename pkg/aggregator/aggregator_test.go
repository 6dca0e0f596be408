package aggregator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/umputun/newsnexus/pkg/aggregator/mocks"
	"github.com/umputun/newsnexus/pkg/domain"
	"github.com/umputun/newsnexus/pkg/source"
)

func job(src domain.SourceType, name string, fn func(ctx context.Context) ([]domain.NewsItem, error)) source.Job {
	return source.JobFunc{Src: src, Desc: name, Fn: fn}
}

func items(ts ...int64) []domain.NewsItem {
	res := make([]domain.NewsItem, 0, len(ts))
	for _, t := range ts {
		res = append(res, domain.NewsItem{ID: "id", Timestamp: t})
	}
	return res
}

func TestAggregate_SortAndIsolation(t *testing.T) {
	defer goleak.VerifyNone(t)

	provider := &mocks.JobProviderMock{JobsFunc: func(domain.Settings) []source.Job {
		return []source.Job{
			job(domain.SourceHackerNews, "hn", func(context.Context) ([]domain.NewsItem, error) {
				return []domain.NewsItem{{ID: "a", Timestamp: 100}, {ID: "b", Timestamp: 300}}, nil
			}),
			job(domain.SourceDevTo, "devto", func(context.Context) ([]domain.NewsItem, error) {
				return nil, errors.New("upstream down")
			}),
			job(domain.SourceRSS, "feed", func(context.Context) ([]domain.NewsItem, error) {
				return []domain.NewsItem{{ID: "c", Timestamp: 200}, {ID: "d", Timestamp: 300}}, nil
			}),
		}
	}}

	rep := New(provider, 0).Aggregate(context.Background(), domain.DefaultSettings())
	require.Len(t, rep.Items, 4)
	ids := make([]string, 0, len(rep.Items))
	for _, it := range rep.Items {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"b", "d", "c", "a"}, ids, "newest first, ties keep job order")

	require.Len(t, rep.Results, 3)
	assert.True(t, rep.Results[0].OK())
	assert.Equal(t, 2, rep.Results[0].Count)
	assert.False(t, rep.Results[1].OK())
	assert.Equal(t, "upstream down", rep.Results[1].Error)
	assert.Equal(t, domain.SourceDevTo, rep.Results[1].Source)
	require.Len(t, rep.Failures(), 1)
	assert.Len(t, provider.JobsCalls(), 1)
}

func TestAggregate_Panic(t *testing.T) {
	defer goleak.VerifyNone(t)

	provider := &mocks.JobProviderMock{JobsFunc: func(domain.Settings) []source.Job {
		return []source.Job{
			job(domain.SourceScraper, "broken", func(context.Context) ([]domain.NewsItem, error) { panic("boom") }),
			job(domain.SourceRedditMock, "mock", func(context.Context) ([]domain.NewsItem, error) { return items(5), nil }),
		}
	}}

	rep := New(provider, 2).Aggregate(context.Background(), domain.DefaultSettings())
	require.Len(t, rep.Items, 1)
	require.Len(t, rep.Failures(), 1)
	assert.Contains(t, rep.Results[0].Error, "panic: boom")
}

func TestAggregate_NoJobs(t *testing.T) {
	provider := &mocks.JobProviderMock{JobsFunc: func(domain.Settings) []source.Job { return nil }}
	rep := New(provider, 0).Aggregate(context.Background(), domain.DefaultSettings())
	assert.NotNil(t, rep.Items)
	assert.Empty(t, rep.Items)
	assert.Empty(t, rep.Results)
}

func TestAggregate_AllFail(t *testing.T) {
	provider := &mocks.JobProviderMock{JobsFunc: func(domain.Settings) []source.Job {
		return []source.Job{
			job(domain.SourceHackerNews, "hn", func(context.Context) ([]domain.NewsItem, error) { return nil, errors.New("a") }),
			job(domain.SourceDevTo, "devto", func(context.Context) ([]domain.NewsItem, error) { return nil, errors.New("b") }),
		}
	}}
	rep := New(provider, 0).Aggregate(context.Background(), domain.DefaultSettings())
	assert.Empty(t, rep.Items)
	assert.Len(t, rep.Failures(), 2)
}

func TestAggregate_Parallel(t *testing.T) {
	defer goleak.VerifyNone(t)

	var running, peak atomic.Int32
	slow := func(context.Context) ([]domain.NewsItem, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		running.Add(-1)
		return items(1), nil
	}
	provider := &mocks.JobProviderMock{JobsFunc: func(domain.Settings) []source.Job {
		return []source.Job{job(domain.SourceRSS, "1", slow), job(domain.SourceRSS, "2", slow),
			job(domain.SourceRSS, "3", slow), job(domain.SourceRSS, "4", slow)}
	}}

	st := time.Now()
	rep := New(provider, 0).Aggregate(context.Background(), domain.DefaultSettings())
	assert.Len(t, rep.Items, 4)
	assert.Less(t, time.Since(st), 180*time.Millisecond, "jobs run concurrently")
	assert.Equal(t, int32(4), peak.Load())

	peak.Store(0)
	rep = New(provider, 2).Aggregate(context.Background(), domain.DefaultSettings())
	assert.Len(t, rep.Items, 4)
	assert.LessOrEqual(t, peak.Load(), int32(2), "worker limit respected")
}

func TestAggregate_WithRegistry(t *testing.T) {
	reg := source.NewRegistry(source.NewMock())
	rep := New(reg, 0).Aggregate(context.Background(), domain.DefaultSettings())
	require.Len(t, rep.Items, 2)
	assert.Equal(t, "reddit-1", rep.Items[0].ID, "newer mock post first")

	settings := domain.DefaultSettings()
	settings.EnabledSources[domain.SourceRedditMock] = false
	rep = New(reg, 0).Aggregate(context.Background(), settings)
	assert.Empty(t, rep.Items)
}
