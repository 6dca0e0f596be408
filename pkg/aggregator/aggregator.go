// Package aggregator runs all enabled source jobs in parallel and merges their items.
// A failing or panicking job contributes nothing and never affects other jobs.
package aggregator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/newsnexus/pkg/domain"
	"github.com/umputun/newsnexus/pkg/source"
)

//go:generate moq -out mocks/jobs.go -pkg mocks -skip-ensure -fmt goimports . JobProvider

// JobProvider expands settings into fetch jobs, implemented by source.Registry
type JobProvider interface {
	Jobs(settings domain.Settings) []source.Job
}

// Aggregator collects items from all jobs of a provider
type Aggregator struct {
	jobs       JobProvider
	maxWorkers int
	now        func() time.Time
}

// Report is the outcome of one aggregation run
type Report struct {
	Items   []domain.NewsItem `json:"items"`
	Results []source.Result   `json:"results"`
}

// Failures returns failed job results
func (r Report) Failures() []source.Result {
	var res []source.Result
	for _, rr := range r.Results {
		if !rr.OK() {
			res = append(res, rr)
		}
	}
	return res
}

// New makes an aggregator, maxWorkers <= 0 runs all jobs at once
func New(jobs JobProvider, maxWorkers int) *Aggregator {
	return &Aggregator{jobs: jobs, maxWorkers: maxWorkers, now: time.Now}
}

// Aggregate runs every job and waits for all of them. Items are sorted newest first,
// ties keep job order. Duplicates across jobs are kept as is.
func (a *Aggregator) Aggregate(ctx context.Context, settings domain.Settings) Report {
	jobs := a.jobs.Jobs(settings)
	results := make([]source.Result, len(jobs))

	// plain group, a failed job must not cancel its siblings
	var g errgroup.Group
	if a.maxWorkers > 0 {
		g.SetLimit(a.maxWorkers)
	}
	for i, job := range jobs {
		g.Go(func() error {
			results[i] = a.run(ctx, job)
			return nil
		})
	}
	_ = g.Wait() // jobs report through results

	rep := Report{Results: results, Items: []domain.NewsItem{}}
	for _, r := range results {
		if !r.OK() {
			lgr.Printf("[WARN] source %s (%s) failed: %v", r.Source, r.Name, r.Err)
			continue
		}
		rep.Items = append(rep.Items, r.Items...)
	}
	sort.SliceStable(rep.Items, func(i, j int) bool { return rep.Items[i].Timestamp > rep.Items[j].Timestamp })
	lgr.Printf("[INFO] aggregated %d items from %d jobs, %d failed", len(rep.Items), len(jobs), len(rep.Failures()))
	return rep
}

func (a *Aggregator) run(ctx context.Context, job source.Job) (res source.Result) {
	st := a.now()
	defer func() {
		if r := recover(); r != nil {
			res = source.Failed(job.Source(), job.Name(), fmt.Errorf("panic: %v", r))
		}
		res.Duration = a.now().Sub(st)
	}()

	items, err := job.Fetch(ctx)
	if err != nil {
		return source.Failed(job.Source(), job.Name(), err)
	}
	lgr.Printf("[DEBUG] source %s (%s) returned %d items", job.Source(), job.Name(), len(items))
	return source.Ok(job.Source(), job.Name(), items)
}
