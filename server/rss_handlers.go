package server

import (
	"net/http"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/newsnexus/pkg/domain"
	"github.com/umputun/newsnexus/pkg/feed"
	"github.com/umputun/newsnexus/pkg/repository"
)

const defaultRSSLimit = 100

// rssHandler serves cached items as RSS, /rss?category=Tools narrows to one category
func (s *Server) rssHandler(w http.ResponseWriter, r *http.Request) {
	category := domain.Category(r.URL.Query().Get("category"))

	items, err := s.items.GetItems(r.Context(), repository.ItemFilter{Category: category, Limit: defaultRSSLimit})
	if err != nil {
		lgr.Printf("[ERROR] failed to get items for RSS: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusInternalServerError)
		return
	}

	rss, err := feed.NewGenerator(s.cfg.BaseURL).GenerateRSS(items, category)
	if err != nil {
		lgr.Printf("[ERROR] failed to generate RSS feed: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := w.Write([]byte(rss)); err != nil {
		lgr.Printf("[ERROR] failed to write RSS response: %v", err)
	}
}

// opmlHandler exports curated and manual feed subscriptions
func (s *Server) opmlHandler(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settings.LoadSettings(r.Context(), s.cfg.Defaults)
	if err != nil {
		lgr.Printf("[ERROR] failed to load settings for OPML: %v", err)
		http.Error(w, "Failed to generate OPML", http.StatusInternalServerError)
		return
	}

	feeds := append(append([]string{}, settings.RSSFeeds...), settings.ManualFeeds...)
	opml, err := feed.NewGenerator(s.cfg.BaseURL).GenerateOPML(feeds)
	if err != nil {
		lgr.Printf("[ERROR] failed to generate OPML: %v", err)
		http.Error(w, "Failed to generate OPML", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/x-opml; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="newsnexus.opml"`)
	if _, err := w.Write([]byte(opml)); err != nil {
		lgr.Printf("[ERROR] failed to write OPML response: %v", err)
	}
}
