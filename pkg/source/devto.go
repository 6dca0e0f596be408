package source

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/araddon/dateparse"

	"github.com/umputun/newsnexus/pkg/classify"
	"github.com/umputun/newsnexus/pkg/config"
	"github.com/umputun/newsnexus/pkg/domain"
)

// DevTo fetches articles from the dev.to listing API, the listing is already scoped by tag
type DevTo struct {
	client *Client
	cfg    config.DevToConfig
	now    func() time.Time
}

type devtoArticle struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	PublishedAt string `json:"published_at"`
	User        struct {
		Name string `json:"name"`
	} `json:"user"`
	Reactions int `json:"public_reactions_count"`
}

// NewDevTo makes the adapter
func NewDevTo(client *Client, cfg config.DevToConfig) *DevTo {
	return &DevTo{client: client, cfg: cfg, now: time.Now}
}

// Type returns devto
func (d *DevTo) Type() domain.SourceType { return domain.SourceDevTo }

// Jobs returns a single listing job
func (d *DevTo) Jobs(settings domain.Settings) []Job {
	return []Job{JobFunc{Src: d.Type(), Desc: "articles", Fn: func(ctx context.Context) ([]domain.NewsItem, error) {
		return d.fetch(ctx, settings)
	}}}
}

func (d *DevTo) fetch(ctx context.Context, settings domain.Settings) ([]domain.NewsItem, error) {
	var articles []devtoArticle
	if err := d.client.GetJSON(ctx, d.cfg.ListURL, &articles); err != nil {
		return nil, fmt.Errorf("get articles: %w", err)
	}

	res := make([]domain.NewsItem, 0, len(articles))
	for _, a := range articles {
		ts := d.now().UnixMilli()
		if a.PublishedAt != "" {
			if t, err := dateparse.ParseAny(a.PublishedAt); err == nil {
				ts = t.UnixMilli()
			} else {
				log.Printf("[DEBUG] devto article %d has unparsable date %q", a.ID, a.PublishedAt)
			}
		}
		res = append(res, domain.NewsItem{
			ID:        "devto-" + strconv.FormatInt(a.ID, 10),
			Title:     a.Title,
			URL:       a.URL,
			Summary:   a.Description,
			Source:    domain.SourceDevTo,
			Category:  classify.Categorize(a.Title, a.Description, settings.Keywords),
			Timestamp: ts,
			Author:    a.User.Name,
			Score:     domain.IntPtr(a.Reactions),
		})
	}
	return res, nil
}
