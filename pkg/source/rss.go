package source

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/umputun/newsnexus/pkg/classify"
	"github.com/umputun/newsnexus/pkg/config"
	"github.com/umputun/newsnexus/pkg/domain"
	"github.com/umputun/newsnexus/pkg/feed"
)

const defaultFeedTitle = "RSS Feed"

// FeedParser parses raw feed documents
type FeedParser interface {
	ParseBytes(data []byte) (*feed.ParsedFeed, error)
}

// RSS fetches feeds through a conversion service with raw XML and mirror fallbacks.
// The curated variant keeps relevant items only, the manual variant keeps everything.
type RSS struct {
	client   *Client
	parser   FeedParser
	cfg      config.RSSConfig
	srcType  domain.SourceType
	feedList func(domain.Settings) []string
	filter   bool
	now      func() time.Time
}

// rssEntry is a feed item from either fetch path
type rssEntry struct {
	Title       string
	Link        string
	Description string
	Author      string
	Published   time.Time
}

type rssDoc struct {
	Title   string
	Entries []rssEntry
}

// conversionResponse is the rss2json-style payload
type conversionResponse struct {
	Status string `json:"status"`
	Feed   struct {
		Title string `json:"title"`
	} `json:"feed"`
	Items []struct {
		Title       string `json:"title"`
		PubDate     string `json:"pubDate"`
		Link        string `json:"link"`
		Author      string `json:"author"`
		Description string `json:"description"`
		Content     string `json:"content"`
	} `json:"items"`
}

// NewCuratedRSS makes the adapter for built-in feeds, items pass the relevance or category check
func NewCuratedRSS(client *Client, parser FeedParser, cfg config.RSSConfig) *RSS {
	return &RSS{client: client, parser: parser, cfg: cfg, srcType: domain.SourceRSS, filter: true, now: time.Now,
		feedList: func(s domain.Settings) []string { return s.RSSFeeds }}
}

// NewManualRSS makes the adapter for user subscriptions, explicit subscription implies relevance
func NewManualRSS(client *Client, parser FeedParser, cfg config.RSSConfig) *RSS {
	return &RSS{client: client, parser: parser, cfg: cfg, srcType: domain.SourceManual, now: time.Now,
		feedList: func(s domain.Settings) []string { return s.ManualFeeds }}
}

// Type returns rss or manual
func (r *RSS) Type() domain.SourceType { return r.srcType }

// Jobs returns one job per feed url
func (r *RSS) Jobs(settings domain.Settings) []Job {
	feeds := r.feedList(settings)
	res := make([]Job, 0, len(feeds))
	seen := make(map[string]bool, len(feeds))
	for _, feedURL := range feeds {
		if strings.TrimSpace(feedURL) == "" || seen[feedURL] {
			continue
		}
		seen[feedURL] = true
		res = append(res, JobFunc{Src: r.srcType, Desc: feedURL, Fn: func(ctx context.Context) ([]domain.NewsItem, error) {
			doc, err := r.fetchFeed(ctx, feedURL)
			if err != nil {
				return nil, err
			}
			return r.toItems(feedURL, doc, settings), nil
		}})
	}
	return res
}

// fetchFeed tries the conversion service first, then raw XML through the proxy for the feed
// and its mirrors. The first candidate yielding items wins.
func (r *RSS) fetchFeed(ctx context.Context, feedURL string) (rssDoc, error) {
	var errs []error

	if r.cfg.ConversionURL != "" && !r.skipConversion(feedURL) {
		doc, err := r.fetchConverted(ctx, feedURL)
		if err == nil && len(doc.Entries) > 0 {
			return doc, nil
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("conversion: %w", err))
			log.Printf("[DEBUG] conversion failed for %s, falling back to raw xml: %v", feedURL, err)
		}
	}

	for _, candidate := range r.candidates(feedURL) {
		doc, err := r.fetchRaw(ctx, candidate)
		if err != nil {
			errs = append(errs, fmt.Errorf("raw %s: %w", candidate, err))
			continue
		}
		if len(doc.Entries) > 0 {
			if candidate != feedURL {
				log.Printf("[INFO] feed %s served from mirror %s", feedURL, candidate)
			}
			return doc, nil
		}
	}

	if len(errs) > 0 {
		return rssDoc{}, fmt.Errorf("fetch feed %s: %w", feedURL, errors.Join(errs...))
	}
	return rssDoc{}, nil
}

func (r *RSS) fetchConverted(ctx context.Context, feedURL string) (rssDoc, error) {
	var resp conversionResponse
	if err := r.client.GetJSON(ctx, expandURL(r.cfg.ConversionURL, feedURL), &resp); err != nil {
		return rssDoc{}, err
	}
	if resp.Status != "ok" {
		return rssDoc{}, fmt.Errorf("conversion status %q", resp.Status)
	}

	doc := rssDoc{Title: resp.Feed.Title, Entries: make([]rssEntry, 0, len(resp.Items))}
	for _, it := range resp.Items {
		e := rssEntry{Title: it.Title, Link: it.Link, Description: it.Description, Author: it.Author}
		if e.Description == "" {
			e.Description = it.Content
		}
		if it.PubDate != "" {
			if t, err := dateparse.ParseIn(it.PubDate, time.UTC); err == nil {
				e.Published = t
			}
		}
		doc.Entries = append(doc.Entries, e)
	}
	return doc, nil
}

func (r *RSS) fetchRaw(ctx context.Context, feedURL string) (rssDoc, error) {
	body, err := r.client.GetBytes(ctx, expandURL(r.cfg.ProxyURL, feedURL), acceptFeed)
	if err != nil {
		return rssDoc{}, err
	}
	parsed, err := r.parser.ParseBytes(body)
	if err != nil {
		return rssDoc{}, err
	}

	doc := rssDoc{Title: parsed.Title, Entries: make([]rssEntry, 0, len(parsed.Items))}
	for _, it := range parsed.Items {
		e := rssEntry{Title: it.Title, Link: it.Link, Description: it.Description, Author: it.Author, Published: it.Published}
		if e.Description == "" {
			e.Description = it.Content
		}
		doc.Entries = append(doc.Entries, e)
	}
	return doc, nil
}

// skipConversion reports whether the feed host is known to fail with the conversion service
func (r *RSS) skipConversion(feedURL string) bool {
	host := hostOf(feedURL)
	for _, h := range r.cfg.SkipConversionHosts {
		if host != "" && strings.EqualFold(host, h) {
			return true
		}
	}
	return false
}

// candidates returns the feed url followed by the same path on each mirror host of a matching group
func (r *RSS) candidates(feedURL string) []string {
	res := []string{feedURL}
	u, err := url.Parse(feedURL)
	if err != nil || u.Host == "" {
		return res
	}
	for _, group := range r.cfg.Mirrors {
		if !strings.EqualFold(u.Hostname(), group.Match) {
			continue
		}
		for _, host := range group.Hosts {
			mirror := *u
			mirror.Host = host
			res = append(res, mirror.String())
		}
	}
	return res
}

func (r *RSS) toItems(feedURL string, doc rssDoc, settings domain.Settings) []domain.NewsItem {
	title := strings.TrimSpace(doc.Title)
	if title == "" {
		title = defaultFeedTitle
	}

	res := make([]domain.NewsItem, 0, len(doc.Entries))
	for idx, e := range doc.Entries {
		// classification sees the whole description, only the stored summary is shortened
		body := plainText(e.Description)
		itemTitle := strings.TrimSpace(plainText(e.Title))
		category := classify.Categorize(itemTitle, body, settings.Keywords)

		if r.filter && category == domain.CategoryGeneral && !classify.IsRelevant(itemTitle, body, settings.GlobalFilter) {
			continue
		}

		ts := r.now().UnixMilli()
		if !e.Published.IsZero() {
			ts = e.Published.UnixMilli()
		}
		author := e.Author
		if author == "" {
			author = title
		}
		res = append(res, domain.NewsItem{
			ID:          fmt.Sprintf("%s-%s-%d", r.srcType, feedURL, idx),
			Title:       itemTitle,
			URL:         e.Link,
			Summary:     truncate(body, r.cfg.PreviewLength),
			Source:      r.srcType,
			SourceLabel: title,
			Category:    category,
			Timestamp:   ts,
			Author:      author,
		})
	}
	return res
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
