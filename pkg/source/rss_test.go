package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/newsnexus/pkg/config"
	"github.com/umputun/newsnexus/pkg/domain"
	"github.com/umputun/newsnexus/pkg/feed"
)

const rawFeed = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Raw Feed</title>
<item><title>AI agent ships</title><link>https://example.com/1</link>
<description>&lt;b&gt;bold&lt;/b&gt; text</description><pubDate>Wed, 01 May 2024 10:00:00 GMT</pubDate></item>
<item><title>Gardening tips</title><link>https://example.com/2</link><description>tomatoes</description></item>
</channel></rss>`

const emptyFeed = `<?xml version="1.0"?><rss version="2.0"><channel><title>Empty</title></channel></rss>`

const convertedFeed = `{"status": "ok", "feed": {"title": "AI Feed"}, "items": [
	{"title": "New LLM tops benchmark", "pubDate": "2024-05-01 10:00:00", "link": "https://example.com/llm",
	 "author": "", "description": "<p>A new model with a very long description that goes on</p>"},
	{"title": "Gardening tips", "pubDate": "2024-05-01 11:00:00", "link": "https://example.com/garden",
	 "author": "Gardener", "description": "tomatoes"}
]}`

type upstream struct {
	mu         sync.Mutex
	conversion atomic.Int32
	rawTargets []string
	convert    func(target string) (int, string)
	raw        func(target string) (int, string)
}

func (u *upstream) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/convert", func(w http.ResponseWriter, r *http.Request) {
		u.conversion.Add(1)
		code, body := u.convert(r.URL.Query().Get("rss_url"))
		w.WriteHeader(code)
		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("/raw", func(w http.ResponseWriter, r *http.Request) {
		target := r.URL.Query().Get("url")
		u.mu.Lock()
		u.rawTargets = append(u.rawTargets, target)
		u.mu.Unlock()
		code, body := u.raw(target)
		w.WriteHeader(code)
		_, _ = w.Write([]byte(body))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func rssConfig(ts *httptest.Server) config.RSSConfig {
	return config.RSSConfig{
		ConversionURL:       ts.URL + "/convert?rss_url={url}",
		ProxyURL:            ts.URL + "/raw?url={url}",
		SkipConversionHosts: []string{"nitter.net"},
		Mirrors:             []config.MirrorGroup{{Match: "nitter.net", Hosts: []string{"m1.example", "m2.example"}}},
		PreviewLength:       20,
	}
}

func feedSettings(curated, manual []string) domain.Settings {
	s := testSettings()
	s.RSSFeeds = curated
	s.ManualFeeds = manual
	return s
}

func TestRSS_Conversion(t *testing.T) {
	up := &upstream{
		convert: func(target string) (int, string) {
			assert.Equal(t, "https://example.com/feed?x=1", target)
			return http.StatusOK, convertedFeed
		},
		raw: func(string) (int, string) { return http.StatusOK, rawFeed },
	}
	ts := up.server(t)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("curated keeps relevant items", func(t *testing.T) {
		r := NewCuratedRSS(testClient(), feed.NewParser(), rssConfig(ts))
		r.now = func() time.Time { return now }
		jobs := r.Jobs(feedSettings([]string{"https://example.com/feed?x=1", " "}, nil))
		require.Len(t, jobs, 1, "blank feed urls skipped")

		items, err := jobs[0].Fetch(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 1)
		it := items[0]
		assert.Equal(t, "rss-https://example.com/feed?x=1-0", it.ID)
		assert.Equal(t, "New LLM tops benchmark", it.Title)
		assert.Equal(t, "A new model with a v...", it.Summary)
		assert.Equal(t, "AI Feed", it.SourceLabel)
		assert.Equal(t, "AI Feed", it.Author, "feed title used without author")
		assert.Equal(t, domain.CategoryModels, it.Category)
		assert.Equal(t, domain.SourceRSS, it.Source)
		assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC).UnixMilli(), it.Timestamp)
		assert.Empty(t, up.rawTargets, "raw path unused when conversion succeeds")
	})

	t.Run("manual keeps everything", func(t *testing.T) {
		r := NewManualRSS(testClient(), feed.NewParser(), rssConfig(ts))
		assert.Equal(t, domain.SourceManual, r.Type())
		jobs := r.Jobs(feedSettings(nil, []string{"https://example.com/feed?x=1"}))
		require.Len(t, jobs, 1)

		items, err := jobs[0].Fetch(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "manual-https://example.com/feed?x=1-1", items[1].ID)
		assert.Equal(t, "Gardener", items[1].Author)
		assert.Equal(t, domain.CategoryGeneral, items[1].Category)
	})
}

func TestRSS_KeywordPastPreview(t *testing.T) {
	desc := strings.Repeat("lorem ipsum dolor ", 10) + "new LLM release"
	up := &upstream{
		convert: func(string) (int, string) {
			return http.StatusOK, fmt.Sprintf(`{"status": "ok", "feed": {"title": "Digest"}, "items": [
				{"title": "Weekly digest", "pubDate": "2024-05-01 10:00:00", "link": "https://example.com/d",
				 "description": %q}]}`, desc)
		},
		raw: func(string) (int, string) { return http.StatusOK, emptyFeed },
	}
	ts := up.server(t)
	cfg := rssConfig(ts)
	cfg.PreviewLength = 150

	r := NewCuratedRSS(testClient(), feed.NewParser(), cfg)
	items, err := r.Jobs(feedSettings([]string{"https://example.com/feed"}, nil))[0].Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1, "keyword beyond the preview keeps the item")
	assert.Equal(t, domain.CategoryModels, items[0].Category)
	assert.True(t, strings.HasSuffix(items[0].Summary, "..."))
	assert.NotContains(t, items[0].Summary, "LLM")
}

func TestRSS_DuplicateFeedsGiveUniqueIDs(t *testing.T) {
	up := &upstream{
		convert: func(string) (int, string) { return http.StatusOK, convertedFeed },
		raw:     func(string) (int, string) { return http.StatusOK, rawFeed },
	}
	ts := up.server(t)

	r := NewManualRSS(testClient(), feed.NewParser(), rssConfig(ts))
	jobs := r.Jobs(feedSettings(nil, []string{"https://e.com/f", "https://e.com/f", "https://e.com/g"}))
	require.Len(t, jobs, 2, "repeated feed url gives one job")

	ids := map[string]int{}
	for _, j := range jobs {
		items, err := j.Fetch(context.Background())
		require.NoError(t, err)
		for _, it := range items {
			ids[it.ID]++
		}
	}
	assert.Len(t, ids, 4)
	for id, n := range ids {
		assert.Equal(t, 1, n, id)
	}
}

func TestRSS_FallbackToRaw(t *testing.T) {
	up := &upstream{
		convert: func(string) (int, string) { return http.StatusInternalServerError, "" },
		raw:     func(string) (int, string) { return http.StatusOK, rawFeed },
	}
	ts := up.server(t)

	r := NewCuratedRSS(testClient(), feed.NewParser(), rssConfig(ts))
	items, err := r.Jobs(feedSettings([]string{"https://example.com/feed"}, nil))[0].Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1, "irrelevant raw item dropped")
	assert.Equal(t, "AI agent ships", items[0].Title)
	assert.Equal(t, "bold text", items[0].Summary)
	assert.Equal(t, "Raw Feed", items[0].SourceLabel)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC).UnixMilli(), items[0].Timestamp)
	assert.Equal(t, int32(1), up.conversion.Load())
	assert.Equal(t, []string{"https://example.com/feed"}, up.rawTargets)
}

func TestRSS_BadConversionStatus(t *testing.T) {
	up := &upstream{
		convert: func(string) (int, string) { return http.StatusOK, `{"status":"error","message":"bad feed"}` },
		raw:     func(string) (int, string) { return http.StatusOK, rawFeed },
	}
	ts := up.server(t)

	r := NewManualRSS(testClient(), feed.NewParser(), rssConfig(ts))
	items, err := r.Jobs(feedSettings(nil, []string{"https://example.com/feed"}))[0].Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestRSS_MirrorsAndSkipHosts(t *testing.T) {
	up := &upstream{
		convert: func(string) (int, string) { return http.StatusOK, convertedFeed },
		raw: func(target string) (int, string) {
			switch target {
			case "https://nitter.net/someone/rss":
				return http.StatusServiceUnavailable, ""
			case "https://m1.example/someone/rss":
				return http.StatusOK, emptyFeed
			default:
				return http.StatusOK, rawFeed
			}
		},
	}
	ts := up.server(t)

	r := NewManualRSS(testClient(), feed.NewParser(), rssConfig(ts))
	items, err := r.Jobs(feedSettings(nil, []string{"https://nitter.net/someone/rss"}))[0].Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Raw Feed", items[0].SourceLabel)
	assert.Equal(t, int32(0), up.conversion.Load(), "conversion skipped for listed hosts")
	assert.Equal(t, []string{"https://nitter.net/someone/rss", "https://m1.example/someone/rss",
		"https://m2.example/someone/rss"}, up.rawTargets)
}

func TestRSS_AllPathsFail(t *testing.T) {
	up := &upstream{
		convert: func(string) (int, string) { return http.StatusBadGateway, "" },
		raw:     func(string) (int, string) { return http.StatusOK, "not xml at all" },
	}
	ts := up.server(t)

	r := NewCuratedRSS(testClient(), feed.NewParser(), rssConfig(ts))
	_, err := r.Jobs(feedSettings([]string{"https://example.com/feed"}, nil))[0].Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch feed https://example.com/feed")
	assert.Contains(t, err.Error(), "conversion")
}

func TestRSS_Candidates(t *testing.T) {
	r := NewCuratedRSS(testClient(), feed.NewParser(), config.RSSConfig{
		Mirrors: []config.MirrorGroup{{Match: "nitter.net", Hosts: []string{"a.example", "b.example"}}},
	})
	assert.Equal(t, []string{"https://nitter.net/u/rss?p=1", "https://a.example/u/rss?p=1", "https://b.example/u/rss?p=1"},
		r.candidates("https://nitter.net/u/rss?p=1"))
	assert.Equal(t, []string{"https://other.net/rss"}, r.candidates("https://other.net/rss"))
	assert.Equal(t, []string{"not a url"}, r.candidates("not a url"))
}
