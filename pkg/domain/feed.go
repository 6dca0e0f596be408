package domain

import (
	"errors"
	"net/url"
	"strings"
)

// SourceType tags the adapter an item came from
type SourceType string

// supported source types
const (
	SourceHackerNews SourceType = "hackernews"
	SourceDevTo      SourceType = "devto"
	SourceRedditMock SourceType = "reddit_mock"
	SourceRSS        SourceType = "rss"
	SourceManual     SourceType = "manual"
	SourceScraper    SourceType = "scraper"
)

var sourceLabels = map[SourceType]string{
	SourceHackerNews: "Hacker News",
	SourceDevTo:      "Dev.to",
	SourceRedditMock: "Reddit (Mock)",
	SourceRSS:        "RSS Feed",
	SourceManual:     "Manual Entry",
	SourceScraper:    "Custom Scraper",
}

// AllSources returns every known source type in display order
func AllSources() []SourceType {
	return []SourceType{SourceHackerNews, SourceDevTo, SourceRedditMock, SourceRSS, SourceManual, SourceScraper}
}

// Label returns the human readable name of the source
func (s SourceType) Label() string {
	if l, ok := sourceLabels[s]; ok {
		return l
	}
	return string(s)
}

// Valid reports whether s is a known source type
func (s SourceType) Valid() bool {
	_, ok := sourceLabels[s]
	return ok
}

// SourceConfig maps a source type to its enabled flag, missing keys are disabled
type SourceConfig map[SourceType]bool

// Enabled reports whether the source is switched on
func (c SourceConfig) Enabled(s SourceType) bool {
	return c[s]
}

// ScraperConfig describes a user-defined HTML scraper
type ScraperConfig struct {
	ID                string `json:"id" yaml:"id"`
	Name              string `json:"name" yaml:"name"`
	URL               string `json:"url" yaml:"url"`
	ContainerSelector string `json:"container_selector" yaml:"container_selector"`
	TitleSelector     string `json:"title_selector" yaml:"title_selector"`
	LinkSelector      string `json:"link_selector" yaml:"link_selector"`
	SummarySelector   string `json:"summary_selector,omitempty" yaml:"summary_selector,omitempty"`
}

// Validate checks that the scraper has everything needed to run
func (s ScraperConfig) Validate() error {
	if strings.TrimSpace(s.URL) == "" {
		return errors.New("scraper url is required")
	}
	u, err := url.Parse(s.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("scraper url must be absolute")
	}
	if strings.TrimSpace(s.ContainerSelector) == "" {
		return errors.New("container selector is required")
	}
	if strings.TrimSpace(s.TitleSelector) == "" {
		return errors.New("title selector is required")
	}
	if strings.TrimSpace(s.LinkSelector) == "" {
		return errors.New("link selector is required")
	}
	return nil
}
