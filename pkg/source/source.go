// Package source implements adapters turning upstream APIs, feeds and pages into news items.
// Each adapter expands the run settings into jobs, one job per independently failing fetch.
package source

import (
	"context"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/umputun/newsnexus/pkg/domain"
)

// Job is a single fetch unit, a failure affects only its own items
type Job interface {
	Source() domain.SourceType
	Name() string
	Fetch(ctx context.Context) ([]domain.NewsItem, error)
}

// Adapter expands settings into jobs for one source type.
// A disabled source is filtered by the registry, adapters may still return no jobs.
type Adapter interface {
	Type() domain.SourceType
	Jobs(settings domain.Settings) []Job
}

// Result is the outcome of one job, either items or the failure cause
type Result struct {
	Source   domain.SourceType `json:"source"`
	Name     string            `json:"name"`
	Items    []domain.NewsItem `json:"-"`
	Count    int               `json:"count"`
	Err      error             `json:"-"`
	Error    string            `json:"error,omitempty"`
	Duration time.Duration     `json:"duration"`
}

// Ok makes a successful result
func Ok(src domain.SourceType, name string, items []domain.NewsItem) Result {
	return Result{Source: src, Name: name, Items: items, Count: len(items)}
}

// Failed makes a failed result, failures never carry items
func Failed(src domain.SourceType, name string, err error) Result {
	return Result{Source: src, Name: name, Err: err, Error: err.Error()}
}

// OK reports whether the job succeeded
func (r Result) OK() bool {
	return r.Err == nil
}

// JobFunc adapts a function to Job
type JobFunc struct {
	Src  domain.SourceType
	Desc string
	Fn   func(ctx context.Context) ([]domain.NewsItem, error)
}

// Source returns the source type of the job
func (j JobFunc) Source() domain.SourceType { return j.Src }

// Name returns the job description, feed url or scraper name
func (j JobFunc) Name() string { return j.Desc }

// Fetch runs the job function
func (j JobFunc) Fetch(ctx context.Context) ([]domain.NewsItem, error) { return j.Fn(ctx) }

// Registry holds adapters keyed by source type, iteration follows registration order
type Registry struct {
	adapters *orderedmap.OrderedMap[domain.SourceType, Adapter]
}

// NewRegistry makes a registry with given adapters
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: orderedmap.New[domain.SourceType, Adapter]()}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register adds or replaces the adapter for its source type
func (r *Registry) Register(a Adapter) {
	r.adapters.Set(a.Type(), a)
}

// Types returns registered source types in order
func (r *Registry) Types() []domain.SourceType {
	res := make([]domain.SourceType, 0, r.adapters.Len())
	for pair := r.adapters.Oldest(); pair != nil; pair = pair.Next() {
		res = append(res, pair.Key)
	}
	return res
}

// Jobs returns jobs of all enabled adapters in registration order
func (r *Registry) Jobs(settings domain.Settings) []Job {
	var res []Job
	for pair := r.adapters.Oldest(); pair != nil; pair = pair.Next() {
		if !settings.EnabledSources.Enabled(pair.Key) {
			continue
		}
		res = append(res, pair.Value.Jobs(settings)...)
	}
	return res
}
