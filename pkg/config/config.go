package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/umputun/newsnexus/pkg/domain"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
		BaseURL string        `yaml:"base_url" json:"base_url" jsonschema:"default=http://localhost:8080,description=Base URL for RSS export links"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Database struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:newsnexus.db?cache=shared&mode=rwc,description=Database connection string"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"database" json:"database" jsonschema:"description=Database configuration"`

	Schedule struct {
		RefreshCron        string `yaml:"refresh_cron" json:"refresh_cron" jsonschema:"description=Cron spec for periodic refresh (e.g. @every 30m) or empty to disable"`
		SkipInitialRefresh bool   `yaml:"skip_initial_refresh" json:"skip_initial_refresh" jsonschema:"default=false,description=Do not refresh on start when the item cache is empty"`
	} `yaml:"schedule" json:"schedule" jsonschema:"description=Scheduler configuration"`

	HTTP HTTPConfig `yaml:"http" json:"http" jsonschema:"description=Outbound HTTP client settings shared by all sources"`

	Sources SourcesConfig `yaml:"sources" json:"sources" jsonschema:"description=Source adapter endpoints and limits"`

	LLM LLMConfig `yaml:"llm" json:"llm" jsonschema:"description=LLM configuration for item annotation"`

	Extraction ExtractionConfig `yaml:"extraction" json:"extraction" jsonschema:"description=Content extraction configuration"`

	Notify struct {
		NatsURL string `yaml:"nats_url" json:"nats_url" jsonschema:"description=NATS server URL or empty to disable refresh notifications"`
		Subject string `yaml:"subject" json:"subject" jsonschema:"default=newsnexus.refresh,description=Subject for refresh events"`
	} `yaml:"notify" json:"notify" jsonschema:"description=Refresh notification settings"`

	// Defaults seeds settings on first run, built-in defaults apply when omitted
	Defaults *domain.Settings `yaml:"defaults,omitempty" json:"defaults,omitempty" jsonschema:"description=Default user settings"`
}

// HTTPConfig holds outbound HTTP client settings
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=15s,description=Per-request timeout"`
	UserAgent string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=Mozilla/5.0 (compatible; NewsNexus/1.0),description=User agent for outbound requests"`
	RateLimit float64       `yaml:"rate_limit" json:"rate_limit" jsonschema:"default=0,description=Requests per second across all sources (0 is unlimited)"`
	Burst     int           `yaml:"burst" json:"burst" jsonschema:"default=10,description=Rate limiter burst size"`
}

// SourcesConfig groups per-adapter settings
type SourcesConfig struct {
	HackerNews HackerNewsConfig `yaml:"hackernews" json:"hackernews"`
	DevTo      DevToConfig      `yaml:"devto" json:"devto"`
	RSS        RSSConfig        `yaml:"rss" json:"rss"`
	Scraper    ScrapeConfig     `yaml:"scraper" json:"scraper"`
}

// HackerNewsConfig holds structured API endpoints, {id} is replaced with the story id
type HackerNewsConfig struct {
	ListURL       string `yaml:"list_url" json:"list_url" jsonschema:"default=https://hacker-news.firebaseio.com/v0/topstories.json"`
	ItemURL       string `yaml:"item_url" json:"item_url" jsonschema:"default=https://hacker-news.firebaseio.com/v0/item/{id}.json"`
	DiscussionURL string `yaml:"discussion_url" json:"discussion_url" jsonschema:"default=https://news.ycombinator.com/item?id={id}"`
	MaxStories    int    `yaml:"max_stories" json:"max_stories" jsonschema:"default=100,minimum=1,description=Number of listed stories to fetch details for"`
	Workers       int    `yaml:"workers" json:"workers" jsonschema:"default=10,minimum=1,description=Concurrent detail requests"`
}

// DevToConfig holds the article listing endpoint
type DevToConfig struct {
	ListURL string `yaml:"list_url" json:"list_url" jsonschema:"default=https://dev.to/api/articles?tag=ai&top=5"`
}

// MirrorGroup lists alternative hosts tried in order for feeds whose host matches Match
type MirrorGroup struct {
	Match string   `yaml:"match" json:"match"`
	Hosts []string `yaml:"hosts" json:"hosts"`
}

// RSSConfig holds feed fetching chain settings, {url} in templates is replaced with the escaped feed url
type RSSConfig struct {
	ConversionURL       string        `yaml:"conversion_url" json:"conversion_url" jsonschema:"default=https://api.rss2json.com/v1/api.json?rss_url={url},description=RSS to JSON conversion service or empty to disable"`
	ProxyURL            string        `yaml:"proxy_url" json:"proxy_url" jsonschema:"default=https://api.allorigins.win/raw?url={url},description=Raw XML proxy or empty to fetch directly"`
	SkipConversionHosts []string      `yaml:"skip_conversion_hosts" json:"skip_conversion_hosts" jsonschema:"description=Hosts that go straight to the raw XML path"`
	Mirrors             []MirrorGroup `yaml:"mirrors" json:"mirrors" jsonschema:"description=Mirror hosts tried in order after the original feed host"`
	PreviewLength       int           `yaml:"preview_length" json:"preview_length" jsonschema:"default=150,minimum=1,description=Summary preview length in characters"`
}

// ScrapeConfig holds HTML scraper settings
type ScrapeConfig struct {
	ProxyURL      string `yaml:"proxy_url" json:"proxy_url" jsonschema:"default=https://api.allorigins.win/raw?url={url},description=HTML proxy or empty to fetch directly"`
	MaxItems      int    `yaml:"max_items" json:"max_items" jsonschema:"default=15,minimum=1,description=Maximum items per scraper run"`
	SummaryLength int    `yaml:"summary_length" json:"summary_length" jsonschema:"default=150,minimum=1,description=Summary length in characters"`
}

// LLMConfig holds LLM configuration for item annotation
type LLMConfig struct {
	Provider     string        `yaml:"provider" json:"provider" jsonschema:"default=openai,enum=openai,enum=gemini,description=Generator backend"`
	Endpoint     string        `yaml:"endpoint" json:"endpoint" jsonschema:"description=OpenAI-compatible API endpoint"`
	APIKey       string        `yaml:"api_key" json:"api_key" jsonschema:"description=API key (can use environment variable) or empty to disable annotation"`
	Model        string        `yaml:"model" json:"model" jsonschema:"description=Model name (e.g. gpt-4o-mini or gemini-2.5-flash)"`
	Temperature  float64       `yaml:"temperature" json:"temperature" jsonschema:"default=0.3,description=Temperature for response generation"`
	MaxTokens    int           `yaml:"max_tokens" json:"max_tokens" jsonschema:"default=1000,description=Maximum tokens in response"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Request timeout"`
	SystemPrompt string        `yaml:"system_prompt" json:"system_prompt" jsonschema:"description=System prompt override (optional)"`
	UseJSONMode  bool          `yaml:"use_json_mode" json:"use_json_mode" jsonschema:"default=false,description=Use JSON response format (not all models support this)"`
	MaxItems     int           `yaml:"max_items" json:"max_items" jsonschema:"default=5,minimum=1,description=Maximum items annotated per run"`
}

// ExtractionConfig holds content extraction settings
type ExtractionConfig struct {
	Enabled       bool          `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Extract article text to give the annotator context"`
	Timeout       time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Extraction timeout per article"`
	UserAgent     string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=NewsNexus/1.0,description=User agent for HTTP requests"`
	MinTextLength int           `yaml:"min_text_length" json:"min_text_length" jsonschema:"default=100,description=Minimum text length to consider valid"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	// validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against reflected schema
	if err := VerifyAgainstSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		log.Printf("[WARN] schema validation failed: %v", err)
	}

	return &cfg, nil
}

// Default returns configuration with all defaults applied, used when no config file is given
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

func (c *Config) setDefaults() {
	// set defaults for server
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://localhost:8080"
	}

	// set defaults for database
	if c.Database.DSN == "" {
		c.Database.DSN = "file:newsnexus.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 3600
	}

	// set defaults for http client
	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = 15 * time.Second
	}
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = "Mozilla/5.0 (compatible; NewsNexus/1.0)"
	}
	if c.HTTP.Burst == 0 {
		c.HTTP.Burst = 10
	}

	c.Sources.setDefaults()

	// set defaults for LLM
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.Endpoint == "" && c.LLM.Provider == "openai" {
		c.LLM.Endpoint = "https://api.openai.com/v1"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o-mini"
		if c.LLM.Provider == "gemini" {
			c.LLM.Model = "gemini-2.5-flash"
		}
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.3
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 1000
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 30 * time.Second
	}
	if c.LLM.MaxItems == 0 {
		c.LLM.MaxItems = 5
	}

	// set defaults for extraction
	if c.Extraction.Timeout == 0 {
		c.Extraction.Timeout = 30 * time.Second
	}
	if c.Extraction.UserAgent == "" {
		c.Extraction.UserAgent = "NewsNexus/1.0"
	}
	if c.Extraction.MinTextLength == 0 {
		c.Extraction.MinTextLength = 100
	}

	if c.Notify.Subject == "" {
		c.Notify.Subject = "newsnexus.refresh"
	}
}

func (s *SourcesConfig) setDefaults() {
	if s.HackerNews.ListURL == "" {
		s.HackerNews.ListURL = "https://hacker-news.firebaseio.com/v0/topstories.json"
	}
	if s.HackerNews.ItemURL == "" {
		s.HackerNews.ItemURL = "https://hacker-news.firebaseio.com/v0/item/{id}.json"
	}
	if s.HackerNews.DiscussionURL == "" {
		s.HackerNews.DiscussionURL = "https://news.ycombinator.com/item?id={id}"
	}
	if s.HackerNews.MaxStories == 0 {
		s.HackerNews.MaxStories = 100
	}
	if s.HackerNews.Workers == 0 {
		s.HackerNews.Workers = 10
	}

	if s.DevTo.ListURL == "" {
		s.DevTo.ListURL = "https://dev.to/api/articles?tag=ai&top=5"
	}

	if s.RSS.ConversionURL == "" {
		s.RSS.ConversionURL = "https://api.rss2json.com/v1/api.json?rss_url={url}"
	}
	if s.RSS.ProxyURL == "" {
		s.RSS.ProxyURL = "https://api.allorigins.win/raw?url={url}"
	}
	if s.RSS.SkipConversionHosts == nil {
		s.RSS.SkipConversionHosts = []string{"nitter.net"}
	}
	if s.RSS.Mirrors == nil {
		s.RSS.Mirrors = []MirrorGroup{
			{Match: "nitter.net", Hosts: []string{"nitter.privacydev.net", "nitter.poast.org", "nitter.cz"}},
		}
	}
	if s.RSS.PreviewLength == 0 {
		s.RSS.PreviewLength = 150
	}

	if s.Scraper.ProxyURL == "" {
		s.Scraper.ProxyURL = "https://api.allorigins.win/raw?url={url}"
	}
	if s.Scraper.MaxItems == 0 {
		s.Scraper.MaxItems = 15
	}
	if s.Scraper.SummaryLength == 0 {
		s.Scraper.SummaryLength = 150
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	// validate LLM config
	switch cfg.LLM.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("llm.provider must be openai or gemini, got %q", cfg.LLM.Provider)
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2")
	}
	if cfg.LLM.MaxItems < 1 {
		return fmt.Errorf("llm.max_items must be at least 1")
	}

	// validate sources
	if cfg.Sources.HackerNews.MaxStories < 1 || cfg.Sources.HackerNews.Workers < 1 {
		return fmt.Errorf("sources.hackernews max_stories and workers must be at least 1")
	}
	if !strings.Contains(cfg.Sources.HackerNews.ItemURL, "{id}") {
		return fmt.Errorf("sources.hackernews.item_url must contain {id}")
	}
	for _, tmpl := range []string{cfg.Sources.RSS.ConversionURL, cfg.Sources.RSS.ProxyURL, cfg.Sources.Scraper.ProxyURL} {
		if tmpl != "" && !strings.Contains(tmpl, "{url}") {
			return fmt.Errorf("url template %q must contain {url}", tmpl)
		}
	}
	if cfg.Sources.Scraper.MaxItems < 1 {
		return fmt.Errorf("sources.scraper.max_items must be at least 1")
	}
	if cfg.HTTP.RateLimit < 0 {
		return fmt.Errorf("http.rate_limit must be non-negative")
	}

	// validate extraction config
	if cfg.Extraction.Enabled {
		if cfg.Extraction.Timeout < time.Second {
			return fmt.Errorf("extraction timeout must be at least 1 second")
		}
		if cfg.Extraction.MinTextLength < 0 {
			return fmt.Errorf("extraction min_text_length must be non-negative")
		}
	}

	// validate server config
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}
	if _, err := url.Parse(cfg.Server.BaseURL); err != nil {
		return fmt.Errorf("server.base_url is invalid: %w", err)
	}

	if cfg.Defaults != nil {
		if err := cfg.Defaults.Validate(); err != nil {
			return fmt.Errorf("defaults: %w", err)
		}
	}

	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// DefaultSettings returns user settings defaults, config overrides merged over built-in values
func (c *Config) DefaultSettings() domain.Settings {
	builtin := domain.DefaultSettings()
	if c.Defaults == nil {
		return builtin
	}
	return c.Defaults.MergeDefaults(builtin)
}
