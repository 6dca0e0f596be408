package source

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/umputun/newsnexus/pkg/classify"
	"github.com/umputun/newsnexus/pkg/config"
	"github.com/umputun/newsnexus/pkg/domain"
)

// HackerNews fetches top stories from the structured story API
type HackerNews struct {
	client *Client
	cfg    config.HackerNewsConfig
}

type hnStory struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	By    string `json:"by"`
	Score int    `json:"score"`
	Time  int64  `json:"time"` // unix seconds
}

// NewHackerNews makes the adapter
func NewHackerNews(client *Client, cfg config.HackerNewsConfig) *HackerNews {
	return &HackerNews{client: client, cfg: cfg}
}

// Type returns hackernews
func (h *HackerNews) Type() domain.SourceType { return domain.SourceHackerNews }

// Jobs returns a single job covering listing and details
func (h *HackerNews) Jobs(settings domain.Settings) []Job {
	return []Job{JobFunc{Src: h.Type(), Desc: "top stories", Fn: func(ctx context.Context) ([]domain.NewsItem, error) {
		return h.fetch(ctx, settings)
	}}}
}

func (h *HackerNews) fetch(ctx context.Context, settings domain.Settings) ([]domain.NewsItem, error) {
	var ids []int64
	if err := h.client.GetJSON(ctx, h.cfg.ListURL, &ids); err != nil {
		return nil, fmt.Errorf("get story list: %w", err)
	}
	if h.cfg.MaxStories > 0 && len(ids) > h.cfg.MaxStories {
		ids = ids[:h.cfg.MaxStories]
	}

	// details fetched concurrently, a failed detail drops only that story
	stories := make([]*hnStory, len(ids))
	var failed atomic.Int32
	var g errgroup.Group
	g.SetLimit(max(h.cfg.Workers, 1))
	for i, id := range ids {
		g.Go(func() error {
			var story *hnStory
			u := strings.ReplaceAll(h.cfg.ItemURL, "{id}", strconv.FormatInt(id, 10))
			if err := h.client.GetJSON(ctx, u, &story); err != nil {
				log.Printf("[DEBUG] hackernews story %d skipped: %v", id, err)
				failed.Add(1)
				return nil
			}
			stories[i] = story
			return nil
		})
	}
	_ = g.Wait()

	if len(ids) > 0 && int(failed.Load()) == len(ids) {
		return nil, fmt.Errorf("all %d story details failed", len(ids))
	}

	res := make([]domain.NewsItem, 0, len(stories))
	for _, s := range stories {
		if s == nil || s.Title == "" {
			continue // deleted or dead stories come back as null or without title
		}
		if !classify.IsRelevant(s.Title, "", settings.GlobalFilter) {
			continue
		}
		res = append(res, h.toItem(*s, settings))
	}
	return res, nil
}

func (h *HackerNews) toItem(s hnStory, settings domain.Settings) domain.NewsItem {
	id := strconv.FormatInt(s.ID, 10)
	link := s.URL
	if link == "" {
		link = strings.ReplaceAll(h.cfg.DiscussionURL, "{id}", id)
	}
	ts := s.Time * 1000
	if s.Time == 0 {
		ts = time.Now().UnixMilli()
	}
	return domain.NewsItem{
		ID:        "hn-" + id,
		Title:     s.Title,
		URL:       link,
		Source:    domain.SourceHackerNews,
		Category:  classify.Categorize(s.Title, "", settings.Keywords),
		Timestamp: ts,
		Author:    s.By,
		Score:     domain.IntPtr(s.Score),
	}
}
