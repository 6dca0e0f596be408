package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/google/uuid"

	"github.com/umputun/newsnexus/pkg/domain"
	"github.com/umputun/newsnexus/pkg/repository"
)

// statusError carries the http status for a failed settings update
type statusError struct {
	code int
	msg  string
}

func (e *statusError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &statusError{code: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) error {
	return &statusError{code: http.StatusNotFound, msg: fmt.Sprintf(format, args...)}
}

func conflict(format string, args ...any) error {
	return &statusError{code: http.StatusConflict, msg: fmt.Sprintf(format, args...)}
}

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":  "ok",
		"version": s.cfg.Version,
		"time":    time.Now().UTC(),
	}
	renderJSON(w, r, http.StatusOK, status)
}

// itemsHandler returns cached items filtered by category and search query
func (s *Server) itemsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.ItemFilter{
		Category: domain.Category(q.Get("category")),
		Source:   domain.SourceType(q.Get("source")),
		Query:    q.Get("q"),
	}
	var err error
	if filter.Limit, err = intParam(q.Get("limit")); err != nil {
		renderError(w, r, fmt.Errorf("invalid limit"), http.StatusBadRequest)
		return
	}
	if filter.Offset, err = intParam(q.Get("offset")); err != nil {
		renderError(w, r, fmt.Errorf("invalid offset"), http.StatusBadRequest)
		return
	}

	items, err := s.items.GetItems(r.Context(), filter)
	if err != nil {
		lgr.Printf("[ERROR] failed to get items: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, items)
}

// statsHandler returns stats of the last refresh
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := s.settings.LoadStats(r.Context())
	if err != nil {
		lgr.Printf("[ERROR] failed to load stats: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, stats)
}

// refreshHandler runs a refresh and waits for it
func (s *Server) refreshHandler(w http.ResponseWriter, r *http.Request) {
	res, err := s.refresher.Refresh(r.Context())
	if err != nil {
		lgr.Printf("[ERROR] refresh failed: %v", err)
		renderError(w, r, fmt.Errorf("refresh failed: %w", err), http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, res)
}

// getSettingsHandler returns current settings merged with defaults
func (s *Server) getSettingsHandler(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settings.LoadSettings(r.Context(), s.cfg.Defaults)
	if err != nil {
		lgr.Printf("[ERROR] failed to load settings: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, settings)
}

// putSettingsHandler replaces the whole settings document
func (s *Server) putSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, fmt.Errorf("invalid JSON format"), http.StatusBadRequest)
		return
	}
	settings, err := s.updateSettings(r.Context(), func(cur *domain.Settings) error {
		*cur = req.MergeDefaults(s.cfg.Defaults)
		return nil
	})
	if err != nil {
		s.renderUpdateError(w, r, err)
		return
	}
	renderJSON(w, r, http.StatusOK, settings)
}

// resetSettingsHandler drops saved settings and returns defaults
func (s *Server) resetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	s.settingsLock.Lock()
	defer s.settingsLock.Unlock()
	if err := s.settings.ResetSettings(r.Context()); err != nil {
		lgr.Printf("[ERROR] failed to reset settings: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	lgr.Printf("[INFO] settings reset to defaults")
	renderJSON(w, r, http.StatusOK, s.cfg.Defaults.Clone())
}

// putKeywordsHandler replaces the keyword table with raw JSON text from the body
func (s *Server) putKeywordsHandler(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		renderError(w, r, fmt.Errorf("read body: %w", err), http.StatusBadRequest)
		return
	}
	table, err := domain.ParseKeywordTable(data)
	if err != nil {
		lgr.Printf("[DEBUG] rejected keyword table: %v", err)
		renderError(w, r, fmt.Errorf("invalid JSON format"), http.StatusBadRequest)
		return
	}
	settings, err := s.updateSettings(r.Context(), func(cur *domain.Settings) error {
		cur.Keywords = table
		return nil
	})
	if err != nil {
		s.renderUpdateError(w, r, err)
		return
	}
	renderJSON(w, r, http.StatusOK, settings.Keywords)
}

// toggleSourceHandler flips the enabled flag of a source
func (s *Server) toggleSourceHandler(w http.ResponseWriter, r *http.Request) {
	src := domain.SourceType(r.PathValue("source"))
	settings, err := s.updateSettings(r.Context(), func(cur *domain.Settings) error {
		if !src.Valid() {
			return badRequest("unknown source %q", src)
		}
		cur.EnabledSources[src] = !cur.EnabledSources.Enabled(src)
		return nil
	})
	if err != nil {
		s.renderUpdateError(w, r, err)
		return
	}
	renderJSON(w, r, http.StatusOK, settings.EnabledSources)
}

// addFeedHandler subscribes to a manual feed
func (s *Server) addFeedHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, fmt.Errorf("invalid JSON format"), http.StatusBadRequest)
		return
	}
	feedURL := strings.TrimSpace(req.URL)
	settings, err := s.updateSettings(r.Context(), func(cur *domain.Settings) error {
		u, err := url.Parse(feedURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return badRequest("feed url must be an absolute http(s) url")
		}
		if slices.Contains(cur.ManualFeeds, feedURL) {
			return conflict("feed %s already exists", feedURL)
		}
		cur.ManualFeeds = append(cur.ManualFeeds, feedURL)
		return nil
	})
	if err != nil {
		s.renderUpdateError(w, r, err)
		return
	}
	lgr.Printf("[INFO] added manual feed %s", feedURL)
	renderJSON(w, r, http.StatusCreated, settings.ManualFeeds)
}

// deleteFeedHandler removes a manual feed by its position
func (s *Server) deleteFeedHandler(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		renderError(w, r, fmt.Errorf("invalid feed index"), http.StatusBadRequest)
		return
	}
	settings, err := s.updateSettings(r.Context(), func(cur *domain.Settings) error {
		if idx < 0 || idx >= len(cur.ManualFeeds) {
			return notFound("feed %d not found", idx)
		}
		cur.ManualFeeds = append(cur.ManualFeeds[:idx:idx], cur.ManualFeeds[idx+1:]...)
		return nil
	})
	if err != nil {
		s.renderUpdateError(w, r, err)
		return
	}
	renderJSON(w, r, http.StatusOK, settings.ManualFeeds)
}

// addScraperHandler adds a custom scraper, an empty id gets generated
func (s *Server) addScraperHandler(w http.ResponseWriter, r *http.Request) {
	var sc domain.ScraperConfig
	if err := json.NewDecoder(r.Body).Decode(&sc); err != nil {
		renderError(w, r, fmt.Errorf("invalid JSON format"), http.StatusBadRequest)
		return
	}
	if sc.ID == "" {
		sc.ID = uuid.NewString()
	}
	_, err := s.updateSettings(r.Context(), func(cur *domain.Settings) error {
		if err := sc.Validate(); err != nil {
			return badRequest("invalid scraper: %v", err)
		}
		for _, existing := range cur.Scrapers {
			if existing.ID == sc.ID {
				return conflict("scraper %s already exists", sc.ID)
			}
		}
		cur.Scrapers = append(cur.Scrapers, sc)
		return nil
	})
	if err != nil {
		s.renderUpdateError(w, r, err)
		return
	}
	lgr.Printf("[INFO] added scraper %s (%s)", sc.Name, sc.ID)
	renderJSON(w, r, http.StatusCreated, sc)
}

// deleteScraperHandler removes a scraper by id
func (s *Server) deleteScraperHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	settings, err := s.updateSettings(r.Context(), func(cur *domain.Settings) error {
		for i, sc := range cur.Scrapers {
			if sc.ID == id {
				cur.Scrapers = append(cur.Scrapers[:i:i], cur.Scrapers[i+1:]...)
				return nil
			}
		}
		return notFound("scraper %s not found", id)
	})
	if err != nil {
		s.renderUpdateError(w, r, err)
		return
	}
	renderJSON(w, r, http.StatusOK, settings.Scrapers)
}

// updateSettings loads settings, applies fn and saves the result.
// Invalid results are rejected before anything is written.
func (s *Server) updateSettings(ctx context.Context, fn func(cur *domain.Settings) error) (domain.Settings, error) {
	s.settingsLock.Lock()
	defer s.settingsLock.Unlock()

	cur, err := s.settings.LoadSettings(ctx, s.cfg.Defaults)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	if cur.EnabledSources == nil {
		cur.EnabledSources = domain.SourceConfig{}
	}
	if err := fn(&cur); err != nil {
		return domain.Settings{}, err
	}
	if err := cur.Validate(); err != nil {
		return domain.Settings{}, badRequest("invalid settings: %v", err)
	}
	if err := s.settings.SaveSettings(ctx, cur); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	return cur, nil
}

func (s *Server) renderUpdateError(w http.ResponseWriter, r *http.Request, err error) {
	var se *statusError
	if errors.As(err, &se) {
		renderError(w, r, se, se.code)
		return
	}
	lgr.Printf("[ERROR] failed to update settings: %v", err)
	renderError(w, r, err, http.StatusInternalServerError)
}

// intParam parses an optional non-negative integer query parameter
func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid value %q", v)
	}
	return n, nil
}
