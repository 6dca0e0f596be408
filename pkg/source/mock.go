package source

import (
	"context"
	"time"

	"github.com/umputun/newsnexus/pkg/classify"
	"github.com/umputun/newsnexus/pkg/domain"
)

// Mock returns fixed illustrative community posts, it never fails
type Mock struct {
	now func() time.Time
}

// NewMock makes the adapter
func NewMock() *Mock {
	return &Mock{now: time.Now}
}

// Type returns reddit_mock
func (m *Mock) Type() domain.SourceType { return domain.SourceRedditMock }

// Jobs returns a single job with static items
func (m *Mock) Jobs(settings domain.Settings) []Job {
	return []Job{JobFunc{Src: m.Type(), Desc: "static posts", Fn: func(context.Context) ([]domain.NewsItem, error) {
		return m.items(settings), nil
	}}}
}

func (m *Mock) items(settings domain.Settings) []domain.NewsItem {
	now := m.now()
	posts := []domain.NewsItem{
		{
			ID:        "reddit-1",
			Title:     "Solo founder: I reached $5k MRR using Gemini API for legal doc parsing",
			URL:       "#",
			Summary:   "Sharing my journey of building a legal tech SaaS wrapper. The key was fine-tuning the prompt.",
			Timestamp: now.Add(-1000 * time.Second).UnixMilli(),
			Score:     domain.IntPtr(4500),
		},
		{
			ID:        "reddit-2",
			Title:     "Open Source tool for local LLM orchestration",
			URL:       "#",
			Timestamp: now.Add(-time.Hour).UnixMilli(),
			Score:     domain.IntPtr(230),
		},
	}
	for i := range posts {
		posts[i].Source = domain.SourceRedditMock
		posts[i].Category = classify.Categorize(posts[i].Title, posts[i].Summary, settings.Keywords)
	}
	return posts
}
