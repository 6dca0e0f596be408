// Package content fetches article pages and extracts readable text used as annotation context.
package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/markusmobius/go-trafilatura"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/umputun/newsnexus/pkg/config"
)

const maxPageSize = 5 * 1024 * 1024

// ErrTooShort is returned when extracted text is below the configured minimum
var ErrTooShort = errors.New("extracted text too short")

// Result is the readable part of an article page
type Result struct {
	Title string
	Text  string
}

// Snippet returns up to n runes of the text
func (r Result) Snippet(n int) string {
	rs := []rune(r.Text)
	if n <= 0 || len(rs) <= n {
		return r.Text
	}
	return string(rs[:n])
}

// HTTPExtractor extracts article content from URLs using trafilatura
type HTTPExtractor struct {
	client        *http.Client
	userAgent     string
	minTextLength int
}

// NewHTTPExtractor creates a new content extractor
func NewHTTPExtractor(cfg config.ExtractionConfig) *HTTPExtractor {
	return &HTTPExtractor{
		client:        &http.Client{Timeout: cfg.Timeout, Transport: otelhttp.NewTransport(http.DefaultTransport)},
		userAgent:     cfg.UserAgent,
		minTextLength: cfg.MinTextLength,
	}
}

// Extract retrieves the page and extracts its main text
func (e *HTTPExtractor) Extract(ctx context.Context, urlStr string) (Result, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return Result{}, fmt.Errorf("parse URL: %w", err)
	}
	if (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") || parsedURL.Host == "" {
		return Result{}, fmt.Errorf("invalid URL: %s", urlStr)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, http.NoBody)
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := e.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("fetch URL %s: %w", urlStr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("unexpected status code %d for URL %s", resp.StatusCode, urlStr)
	}

	opts := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
		IncludeImages:   false,
		IncludeLinks:    false,
		Deduplicate:     true,
		OriginalURL:     parsedURL,
	}
	extracted, err := trafilatura.Extract(io.LimitReader(resp.Body, maxPageSize), opts)
	if err != nil {
		return Result{}, fmt.Errorf("extract content from %s: %w", urlStr, err)
	}
	if extracted == nil {
		return Result{}, fmt.Errorf("no content extracted from %s", urlStr)
	}

	res := Result{Title: strings.TrimSpace(extracted.Metadata.Title), Text: strings.TrimSpace(extracted.ContentText)}
	if len([]rune(res.Text)) < e.minTextLength {
		return Result{}, fmt.Errorf("%s: %w (%d chars)", urlStr, ErrTooShort, len([]rune(res.Text)))
	}
	return res, nil
}
