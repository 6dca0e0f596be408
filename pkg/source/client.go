package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/umputun/newsnexus/pkg/config"
)

// maxBodySize limits upstream payloads
const maxBodySize = 10 * 1024 * 1024

// Client is the HTTP client shared by all adapters
type Client struct {
	http      *http.Client
	userAgent string
	limiter   *rate.Limiter
}

// NewClient makes a client with timeout, user agent and optional rate limit from config
func NewClient(cfg config.HTTPConfig) *Client {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &Client{
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: otelhttp.NewTransport(&http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			}),
		},
		userAgent: cfg.UserAgent,
		limiter:   rate.NewLimiter(limit, burst),
	}
}

// GetJSON fetches url and decodes JSON response into dest
func (c *Client) GetJSON(ctx context.Context, u string, dest any) error {
	body, err := c.get(ctx, u, acceptJSON)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode json from %s: %w", u, err)
	}
	return nil
}

// GetBytes fetches url and returns the raw body
func (c *Client) GetBytes(ctx context.Context, u, accept string) ([]byte, error) {
	return c.get(ctx, u, accept)
}

func (c *Client) get(ctx context.Context, u, accept string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	addBrowserHeaders(req, accept)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, u)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body from %s: %w", u, err)
	}
	return body, nil
}

// expandURL substitutes {url} in a proxy or service template with the escaped target.
// An empty template means the target is used directly.
func expandURL(tmpl, target string) string {
	if tmpl == "" {
		return target
	}
	return strings.ReplaceAll(tmpl, "{url}", url.QueryEscape(target))
}
