package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/newsnexus/pkg/domain"
	"github.com/umputun/newsnexus/pkg/repository"
	"github.com/umputun/newsnexus/pkg/scheduler"
)

func TestServer_itemsHandler(t *testing.T) {
	d := newTestDeps()
	srv := testServer(t, d)

	w := do(t, srv, "GET", "/api/v1/items?q=llm&category=Models&source=hackernews&limit=10&offset=5", "")
	require.Equal(t, http.StatusOK, w.Code)

	var items []domain.NewsItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "hn-1", items[0].ID)

	require.Len(t, d.items.GetItemsCalls(), 1)
	assert.Equal(t, repository.ItemFilter{Category: domain.CategoryModels, Source: domain.SourceHackerNews,
		Query: "llm", Limit: 10, Offset: 5}, d.items.GetItemsCalls()[0].F)

	t.Run("bad limit", func(t *testing.T) {
		w := do(t, srv, "GET", "/api/v1/items?limit=-1", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		w = do(t, srv, "GET", "/api/v1/items?offset=abc", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("store error", func(t *testing.T) {
		d.items.GetItemsFunc = func(ctx context.Context, f repository.ItemFilter) ([]domain.NewsItem, error) {
			return nil, errors.New("db gone")
		}
		w := do(t, srv, "GET", "/api/v1/items", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"db gone"}`, w.Body.String())
	})
}

func TestServer_statsHandler(t *testing.T) {
	d := newTestDeps()
	srv := testServer(t, d)

	w := do(t, srv, "GET", "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total_items":2,"last_updated":1700000000000,"sources":{"hackernews":2}}`, w.Body.String())

	d.settings.LoadStatsFunc = func(ctx context.Context) (domain.AggregationStats, error) {
		return domain.AggregationStats{}, errors.New("locked")
	}
	w = do(t, srv, "GET", "/api/v1/stats", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestServer_refreshHandler(t *testing.T) {
	d := newTestDeps()
	srv := testServer(t, d)

	w := do(t, srv, "POST", "/api/v1/refresh", "")
	require.Equal(t, http.StatusOK, w.Code)
	var res scheduler.Outcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Stats.TotalItems)
	assert.Len(t, d.refresher.RefreshCalls(), 1)

	d.refresher.RefreshFunc = func(ctx context.Context) (scheduler.Outcome, error) {
		return scheduler.Outcome{}, errors.New("save items: disk full")
	}
	w = do(t, srv, "POST", "/api/v1/refresh", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"refresh failed: save items: disk full"}`, w.Body.String())
}

func TestServer_settingsHandlers(t *testing.T) {
	d := newTestDeps()
	srv := testServer(t, d)

	t.Run("get defaults", func(t *testing.T) {
		w := do(t, srv, "GET", "/api/v1/settings", "")
		require.Equal(t, http.StatusOK, w.Code)
		want, err := json.Marshal(domain.DefaultSettings())
		require.NoError(t, err)
		assert.JSONEq(t, string(want), w.Body.String())
	})

	t.Run("put whole document", func(t *testing.T) {
		body := `{"enabled_sources":{"devto":false},"keywords":{"Research":["paper"]},"manual_feeds":["https://a.com/rss"]}`
		w := do(t, srv, "PUT", "/api/v1/settings", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.NotNil(t, d.saved)
		assert.False(t, d.saved.EnabledSources.Enabled(domain.SourceDevTo))
		assert.True(t, d.saved.EnabledSources.Enabled(domain.SourceHackerNews), "missing keys come from defaults")
		assert.Equal(t, []domain.Category{domain.CategoryResearch}, d.saved.Keywords.Categories())
		assert.Equal(t, []string{"https://a.com/rss"}, d.saved.ManualFeeds)
		assert.Equal(t, []string{domain.DefaultFeed}, d.saved.RSSFeeds)
	})

	t.Run("put invalid json", func(t *testing.T) {
		before := d.saved
		w := do(t, srv, "PUT", "/api/v1/settings", `{"keywords": [1,2]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"invalid JSON format"}`, w.Body.String())
		assert.Same(t, before, d.saved)
	})

	t.Run("put invalid scraper", func(t *testing.T) {
		before := d.saved
		w := do(t, srv, "PUT", "/api/v1/settings", `{"scrapers":[{"id":"x","url":"not a url"}]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid settings")
		assert.Same(t, before, d.saved)
	})

	t.Run("put duplicate feeds", func(t *testing.T) {
		before := d.saved
		w := do(t, srv, "PUT", "/api/v1/settings", `{"manual_feeds":["https://a.com/rss","https://a.com/rss"]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "duplicate feed")
		assert.Same(t, before, d.saved)
	})

	t.Run("reset", func(t *testing.T) {
		w := do(t, srv, "POST", "/api/v1/settings/reset", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, d.saved)
		var got domain.Settings
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.True(t, got.EnabledSources.Enabled(domain.SourceDevTo))
	})

	t.Run("save failure", func(t *testing.T) {
		d.settings.SaveSettingsFunc = func(ctx context.Context, s domain.Settings) error { return errors.New("readonly") }
		defer func() {
			d.settings.SaveSettingsFunc = func(ctx context.Context, s domain.Settings) error {
				c := s.Clone()
				d.saved = &c
				return nil
			}
		}()
		w := do(t, srv, "PUT", "/api/v1/settings", `{}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"save settings: readonly"}`, w.Body.String())
	})
}

func TestServer_putKeywordsHandler(t *testing.T) {
	d := newTestDeps()
	srv := testServer(t, d)

	tbl := []struct {
		name string
		body string
		code int
	}{
		{"not json", `{"Models": ["gpt"`, http.StatusBadRequest},
		{"wrong shape", `["gpt"]`, http.StatusBadRequest},
		{"empty table", `{}`, http.StatusBadRequest},
		{"list of numbers", `{"Models": [1]}`, http.StatusBadRequest},
	}
	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, "PUT", "/api/v1/settings/keywords", tt.body)
			assert.Equal(t, tt.code, w.Code)
			assert.JSONEq(t, `{"error":"invalid JSON format"}`, w.Body.String())
			assert.Nil(t, d.saved, "stored settings untouched")
			assert.Empty(t, d.settings.SaveSettingsCalls())
		})
	}

	t.Run("valid table keeps order", func(t *testing.T) {
		w := do(t, srv, "PUT", "/api/v1/settings/keywords", `{"Tools": ["cli"], "Models": ["gpt", "llm"]}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, `{"Tools":["cli"],"Models":["gpt","llm"]}`+"\n", w.Body.String())
		require.NotNil(t, d.saved)
		assert.Equal(t, []domain.Category{domain.CategoryTools, domain.CategoryModels}, d.saved.Keywords.Categories())
	})
}

func TestServer_toggleSourceHandler(t *testing.T) {
	d := newTestDeps()
	srv := testServer(t, d)

	w := do(t, srv, "POST", "/api/v1/settings/sources/devto/toggle", "")
	require.Equal(t, http.StatusOK, w.Code)
	var enabled map[domain.SourceType]bool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &enabled))
	assert.False(t, enabled[domain.SourceDevTo])
	assert.True(t, enabled[domain.SourceHackerNews])

	w = do(t, srv, "POST", "/api/v1/settings/sources/devto/toggle", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, d.saved.EnabledSources.Enabled(domain.SourceDevTo))

	w = do(t, srv, "POST", "/api/v1/settings/sources/myspace/toggle", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"unknown source \"myspace\""}`, w.Body.String())
}

func TestServer_feedHandlers(t *testing.T) {
	d := newTestDeps()
	srv := testServer(t, d)

	w := do(t, srv, "POST", "/api/v1/settings/feeds", `{"url":" https://a.com/rss "}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, srv, "POST", "/api/v1/settings/feeds", `{"url":"https://b.com/rss"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `["https://a.com/rss","https://b.com/rss"]`, w.Body.String())

	w = do(t, srv, "POST", "/api/v1/settings/feeds", `{"url":"https://a.com/rss"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"feed https://a.com/rss already exists"}`, w.Body.String())
	assert.Equal(t, []string{"https://a.com/rss", "https://b.com/rss"}, d.saved.ManualFeeds)

	for _, body := range []string{`{"url":""}`, `{"url":"ftp://a.com/x"}`, `{"url":"/relative"}`, `not json`} {
		w = do(t, srv, "POST", "/api/v1/settings/feeds", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	w = do(t, srv, "DELETE", "/api/v1/settings/feeds/0", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["https://b.com/rss"]`, w.Body.String())

	w = do(t, srv, "DELETE", "/api/v1/settings/feeds/5", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, srv, "DELETE", "/api/v1/settings/feeds/x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"https://b.com/rss"}, d.saved.ManualFeeds)
}

func TestServer_scraperHandlers(t *testing.T) {
	d := newTestDeps()
	srv := testServer(t, d)

	body := `{"name":"Blog","url":"https://blog.example.com","container_selector":"article",` +
		`"title_selector":"h2","link_selector":"a"}`
	w := do(t, srv, "POST", "/api/v1/settings/scrapers", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sc domain.ScraperConfig
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sc))
	assert.Len(t, sc.ID, 36, "uuid generated")
	require.Len(t, d.saved.Scrapers, 1)
	assert.Equal(t, sc, d.saved.Scrapers[0])

	t.Run("explicit id kept and duplicates rejected", func(t *testing.T) {
		withID := `{"id":"blog2","name":"Blog","url":"https://blog.example.com","container_selector":"article",` +
			`"title_selector":"h2","link_selector":"a"}`
		w := do(t, srv, "POST", "/api/v1/settings/scrapers", withID)
		require.Equal(t, http.StatusCreated, w.Code)
		w = do(t, srv, "POST", "/api/v1/settings/scrapers", withID)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Len(t, d.saved.Scrapers, 2)
	})

	t.Run("invalid scraper", func(t *testing.T) {
		w := do(t, srv, "POST", "/api/v1/settings/scrapers", `{"name":"x","url":"https://x.com"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"invalid scraper: container selector is required"}`, w.Body.String())
		assert.Len(t, d.saved.Scrapers, 2)
	})

	t.Run("delete", func(t *testing.T) {
		w := do(t, srv, "DELETE", "/api/v1/settings/scrapers/"+sc.ID, "")
		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, d.saved.Scrapers, 1)
		assert.Equal(t, "blog2", d.saved.Scrapers[0].ID)

		w = do(t, srv, "DELETE", "/api/v1/settings/scrapers/"+sc.ID, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestServer_settingsLoadError(t *testing.T) {
	d := newTestDeps()
	d.settings.LoadSettingsFunc = func(ctx context.Context, defaults domain.Settings) (domain.Settings, error) {
		return domain.Settings{}, errors.New("no db")
	}
	srv := testServer(t, d)

	w := do(t, srv, "GET", "/api/v1/settings", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = do(t, srv, "POST", "/api/v1/settings/sources/devto/toggle", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"load settings: no db"}`, w.Body.String())
}

func TestIntParam(t *testing.T) {
	n, err := intParam("")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = intParam("42")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = intParam("-3")
	require.Error(t, err)
	_, err = intParam("x")
	require.Error(t, err)
}
