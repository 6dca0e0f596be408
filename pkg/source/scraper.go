package source

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/umputun/newsnexus/pkg/classify"
	"github.com/umputun/newsnexus/pkg/config"
	"github.com/umputun/newsnexus/pkg/domain"
)

// defaultMaxScraped caps items per scraper run when config leaves it unset
const defaultMaxScraped = 15

// Scraper extracts items from arbitrary HTML pages using user-defined CSS selectors.
// Scrapers are explicit user choices, so items skip the relevance check.
type Scraper struct {
	client *Client
	cfg    config.ScrapeConfig
	now    func() time.Time
}

// NewScraper makes the adapter
func NewScraper(client *Client, cfg config.ScrapeConfig) *Scraper {
	return &Scraper{client: client, cfg: cfg, now: time.Now}
}

// Type returns scraper
func (s *Scraper) Type() domain.SourceType { return domain.SourceScraper }

// Jobs returns one job per scraper definition
func (s *Scraper) Jobs(settings domain.Settings) []Job {
	res := make([]Job, 0, len(settings.Scrapers))
	seen := make(map[string]bool, len(settings.Scrapers))
	for _, sc := range settings.Scrapers {
		if seen[sc.ID] {
			log.Printf("[WARN] scraper %s listed twice, duplicate skipped", sc.ID)
			continue
		}
		seen[sc.ID] = true
		name := sc.Name
		if name == "" {
			name = sc.URL
		}
		res = append(res, JobFunc{Src: domain.SourceScraper, Desc: name, Fn: func(ctx context.Context) ([]domain.NewsItem, error) {
			return s.scrape(ctx, sc, settings)
		}})
	}
	return res
}

func (s *Scraper) scrape(ctx context.Context, sc domain.ScraperConfig, settings domain.Settings) ([]domain.NewsItem, error) {
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scraper %q: %w", sc.Name, err)
	}
	for name, sel := range map[string]string{"container": sc.ContainerSelector, "title": sc.TitleSelector,
		"link": sc.LinkSelector, "summary": sc.SummarySelector} {
		if sel == "" {
			continue
		}
		if _, err := cascadia.Compile(sel); err != nil {
			return nil, fmt.Errorf("invalid %s selector %q: %w", name, sel, err)
		}
	}

	body, err := s.client.GetBytes(ctx, expandURL(s.cfg.ProxyURL, sc.URL), acceptHTML)
	if err != nil {
		return nil, fmt.Errorf("get page: %w", err)
	}
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)
	base, _ := url.Parse(sc.URL) // validated above

	label := sc.Name
	if label == "" {
		label = domain.SourceScraper.Label()
	}
	ts := s.now().UnixMilli()
	limit := s.cfg.MaxItems
	if limit <= 0 {
		limit = defaultMaxScraped
	}

	var res []domain.NewsItem
	doc.Find(sc.ContainerSelector).EachWithBreak(func(_ int, container *goquery.Selection) bool {
		if len(res) >= limit {
			return false
		}
		title := collapse(container.Find(sc.TitleSelector).First().Text())
		if title == "" {
			return true
		}

		link := sc.URL
		if href, ok := container.Find(sc.LinkSelector).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
			link = resolveLink(base, strings.TrimSpace(href))
		}

		var body string
		if sc.SummarySelector != "" {
			body = collapse(container.Find(sc.SummarySelector).First().Text())
		}

		res = append(res, domain.NewsItem{
			ID:          fmt.Sprintf("scraper-%s-%d", sc.ID, len(res)),
			Title:       title,
			URL:         link,
			Summary:     truncate(body, s.cfg.SummaryLength),
			Source:      domain.SourceScraper,
			SourceLabel: label,
			Category:    classify.Categorize(title, body, settings.Keywords),
			Timestamp:   ts, // pages rarely expose structured dates
		})
		return true
	})
	return res, nil
}

// resolveLink makes relative and root-relative links absolute against the page url
func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil || base == nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
