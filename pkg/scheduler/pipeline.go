// Package scheduler runs the refresh pipeline on demand and on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/newsnexus/pkg/aggregator"
	"github.com/umputun/newsnexus/pkg/domain"
	"github.com/umputun/newsnexus/pkg/notify"
	"github.com/umputun/newsnexus/pkg/source"
)

//go:generate moq -out mocks/settings_store.go -pkg mocks -skip-ensure -fmt goimports . SettingsStore
//go:generate moq -out mocks/item_store.go -pkg mocks -skip-ensure -fmt goimports . ItemStore
//go:generate moq -out mocks/aggregator.go -pkg mocks -skip-ensure -fmt goimports . Aggregator
//go:generate moq -out mocks/annotator.go -pkg mocks -skip-ensure -fmt goimports . Annotator
//go:generate moq -out mocks/notifier.go -pkg mocks -skip-ensure -fmt goimports . Notifier

// SettingsStore loads user settings and keeps run stats
type SettingsStore interface {
	LoadSettings(ctx context.Context, defaults domain.Settings) (domain.Settings, error)
	SaveStats(ctx context.Context, stats domain.AggregationStats) error
}

// ItemStore keeps the cached item list
type ItemStore interface {
	ReplaceItems(ctx context.Context, items []domain.NewsItem) error
	Count(ctx context.Context) (int, error)
}

// Aggregator collects items from all enabled sources
type Aggregator interface {
	Aggregate(ctx context.Context, settings domain.Settings) aggregator.Report
}

// Annotator adds AI analyses to items, it never fails
type Annotator interface {
	Annotate(ctx context.Context, items []domain.NewsItem) []domain.NewsItem
}

// Notifier announces finished refreshes
type Notifier interface {
	Publish(ctx context.Context, ev notify.RefreshEvent) error
}

// PipelineParams groups pipeline dependencies, Annotator and Notifier are optional
type PipelineParams struct {
	Settings   SettingsStore
	Items      ItemStore
	Aggregator Aggregator
	Annotator  Annotator
	Notifier   Notifier
	Defaults   domain.Settings
}

// Pipeline is a single refresh: aggregate, annotate, cache, stats, notify
type Pipeline struct {
	PipelineParams
	mu  sync.Mutex
	now func() time.Time
}

// Outcome describes a completed refresh
type Outcome struct {
	Stats     domain.AggregationStats `json:"stats"`
	Results   []source.Result         `json:"results"`
	Annotated int                     `json:"annotated"`
}

// Failed returns "source: job" descriptions of failed jobs
func (o Outcome) Failed() []string {
	var res []string
	for _, r := range o.Results {
		if !r.OK() {
			res = append(res, fmt.Sprintf("%s: %s", r.Source, r.Name))
		}
	}
	return res
}

// NewPipeline makes a refresh pipeline
func NewPipeline(params PipelineParams) *Pipeline {
	return &Pipeline{PipelineParams: params, now: time.Now}
}

// Refresh runs one full refresh. Concurrent calls are serialized.
// Source and annotation failures are logged only, persistence failures are returned.
func (p *Pipeline) Refresh(ctx context.Context) (Outcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := p.now()
	settings, err := p.Settings.LoadSettings(ctx, p.Defaults)
	if err != nil {
		return Outcome{}, fmt.Errorf("load settings: %w", err)
	}

	rep := p.Aggregator.Aggregate(ctx, settings)
	items := rep.Items

	res := Outcome{Results: rep.Results}
	if p.Annotator != nil {
		before := countAnnotated(items)
		items = p.Annotator.Annotate(ctx, items)
		res.Annotated = countAnnotated(items) - before
	}

	if err := p.Items.ReplaceItems(ctx, items); err != nil {
		return Outcome{}, fmt.Errorf("save items: %w", err)
	}

	res.Stats = domain.NewStats(items, p.now())
	if err := p.Settings.SaveStats(ctx, res.Stats); err != nil {
		return Outcome{}, fmt.Errorf("save stats: %w", err)
	}

	if p.Notifier != nil {
		ev := notify.RefreshEvent{Stats: res.Stats, Failed: res.Failed(), Annotated: res.Annotated}
		if err := p.Notifier.Publish(ctx, ev); err != nil {
			lgr.Printf("[WARN] failed to publish refresh event: %v", err)
		}
	}

	lgr.Printf("[INFO] refresh completed in %v: %d items, %d annotated, %d failed jobs",
		p.now().Sub(st), res.Stats.TotalItems, res.Annotated, len(res.Failed()))
	return res, nil
}

// Empty reports whether no items are cached yet
func (p *Pipeline) Empty(ctx context.Context) (bool, error) {
	count, err := p.Items.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count cached items: %w", err)
	}
	return count == 0, nil
}

func countAnnotated(items []domain.NewsItem) int {
	res := 0
	for _, it := range items {
		if it.Annotated() {
			res++
		}
	}
	return res
}
