package domain

import (
	"fmt"
	"time"
)

// Setting represents a key-value configuration setting
type Setting struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Settings is the persisted user configuration driving a single aggregation run
type Settings struct {
	EnabledSources SourceConfig    `json:"enabled_sources" yaml:"enabled_sources"`
	Keywords       KeywordTable    `json:"keywords" yaml:"keywords"`
	GlobalFilter   []string        `json:"global_filter" yaml:"global_filter"`
	RSSFeeds       []string        `json:"rss_feeds" yaml:"rss_feeds"`       // curated, relevance-filtered
	ManualFeeds    []string        `json:"manual_feeds" yaml:"manual_feeds"` // user subscriptions, never filtered
	Scrapers       []ScraperConfig `json:"scrapers" yaml:"scrapers"`
}

// MergeDefaults overlays saved settings on top of defaults.
// Enabled sources merge key by key, missing lists fall back to defaults.
func (s Settings) MergeDefaults(defaults Settings) Settings {
	res := defaults.Clone()

	if res.EnabledSources == nil {
		res.EnabledSources = SourceConfig{}
	}
	for k, v := range s.EnabledSources {
		res.EnabledSources[k] = v
	}
	if s.Keywords.Len() > 0 {
		res.Keywords = s.Keywords.Clone()
	}
	if s.GlobalFilter != nil {
		res.GlobalFilter = cloneSlice(s.GlobalFilter)
	}
	if s.RSSFeeds != nil {
		res.RSSFeeds = cloneSlice(s.RSSFeeds)
	}
	if s.ManualFeeds != nil {
		res.ManualFeeds = cloneSlice(s.ManualFeeds)
	}
	if s.Scrapers != nil {
		res.Scrapers = cloneSlice(s.Scrapers)
	}
	return res
}

// Clone makes a deep copy of settings
func (s Settings) Clone() Settings {
	res := Settings{
		EnabledSources: make(SourceConfig, len(s.EnabledSources)),
		Keywords:       s.Keywords.Clone(),
		GlobalFilter:   cloneSlice(s.GlobalFilter),
		RSSFeeds:       cloneSlice(s.RSSFeeds),
		ManualFeeds:    cloneSlice(s.ManualFeeds),
		Scrapers:       cloneSlice(s.Scrapers),
	}
	for k, v := range s.EnabledSources {
		res.EnabledSources[k] = v
	}
	return res
}

// cloneSlice copies a slice keeping nil and empty apart
func cloneSlice[T any](src []T) []T {
	if src == nil {
		return nil
	}
	return append(make([]T, 0, len(src)), src...)
}

// Validate checks user editable parts of settings, feed urls and scraper ids must be unique
func (s Settings) Validate() error {
	ids := make(map[string]bool, len(s.Scrapers))
	for _, sc := range s.Scrapers {
		if err := sc.Validate(); err != nil {
			return err
		}
		if ids[sc.ID] {
			return fmt.Errorf("duplicate scraper id %q", sc.ID)
		}
		ids[sc.ID] = true
	}
	if err := uniqueFeeds("rss_feeds", s.RSSFeeds); err != nil {
		return err
	}
	return uniqueFeeds("manual_feeds", s.ManualFeeds)
}

func uniqueFeeds(name string, feeds []string) error {
	seen := make(map[string]bool, len(feeds))
	for _, f := range feeds {
		if seen[f] {
			return fmt.Errorf("duplicate feed %q in %s", f, name)
		}
		seen[f] = true
	}
	return nil
}

// default keyword lists
var (
	defaultModelKeywords = []string{"gpt", "llm", "transformer", "llama", "gemini", "claude", "mistral",
		"diffusion", "model", "weights", "inference", "huggingface"}
	defaultToolKeywords = []string{"library", "framework", "sdk", "api", "tool", "copilot", "extension",
		"cli", "python", "javascript", "agent", "rag", "cursor", "vscode"}
	defaultStartupKeywords = []string{"funding", "raised", "startup", "yc", "launch", "product", "saas",
		"acquisition", "ipo", "bootstrapped", "indie hacker", "solopreneur", "mrr", "arr", "revenue",
		"monetize", "profit", "side project", "stripe", "built in public"}
	defaultResearchKeywords = []string{"paper", "arxiv", "research", "study", "experiment", "benchmark",
		"state of the art", "sota"}
	defaultExtraFilter = []string{"ai", "artificial intelligence", "ml", "machine learning", "neural",
		"deep learning", "automation", "chatgpt"}
)

// DefaultFeed is the curated feed enabled out of the box
const DefaultFeed = "https://feeds.feedburner.com/TechCrunch/ArtificialIntelligence"

// DefaultKeywordTable returns the built-in keyword table
func DefaultKeywordTable() KeywordTable {
	return NewKeywordTable(
		KeywordEntry{Category: CategoryAll, Keywords: []string{}},
		KeywordEntry{Category: CategoryModels, Keywords: append([]string(nil), defaultModelKeywords...)},
		KeywordEntry{Category: CategoryTools, Keywords: append([]string(nil), defaultToolKeywords...)},
		KeywordEntry{Category: CategoryStartups, Keywords: append([]string(nil), defaultStartupKeywords...)},
		KeywordEntry{Category: CategoryResearch, Keywords: append([]string(nil), defaultResearchKeywords...)},
		KeywordEntry{Category: CategoryGeneral, Keywords: []string{}},
	)
}

// DefaultGlobalFilter returns the built-in relevance keywords
func DefaultGlobalFilter() []string {
	res := make([]string, 0, 64)
	res = append(res, defaultModelKeywords...)
	res = append(res, defaultToolKeywords...)
	res = append(res, defaultStartupKeywords...)
	res = append(res, defaultResearchKeywords...)
	res = append(res, defaultExtraFilter...)
	return res
}

// DefaultSettings returns the built-in settings, every call makes a fresh copy
func DefaultSettings() Settings {
	enabled := SourceConfig{}
	for _, s := range AllSources() {
		enabled[s] = true
	}
	return Settings{
		EnabledSources: enabled,
		Keywords:       DefaultKeywordTable(),
		GlobalFilter:   DefaultGlobalFilter(),
		RSSFeeds:       []string{DefaultFeed},
		ManualFeeds:    []string{},
		Scrapers:       []ScraperConfig{},
	}
}
