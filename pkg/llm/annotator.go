package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/newsnexus/pkg/content"
	"github.com/umputun/newsnexus/pkg/domain"
)

const (
	defaultMaxItems = 5
	snippetLength   = 500
	extractWorkers  = 3
)

// Extractor fetches article text used as extra prompt context
type Extractor interface {
	Extract(ctx context.Context, url string) (content.Result, error)
}

// Annotator adds one-sentence analyses to items lacking one. It is best-effort,
// any failure leaves the items unchanged.
type Annotator struct {
	gen       Generator
	extractor Extractor
	maxItems  int
}

// promptItem is what the model sees for each item
type promptItem struct {
	ID      string            `json:"id"`
	Title   string            `json:"title"`
	Source  domain.SourceType `json:"source"`
	Content string            `json:"content,omitempty"`
}

// analysis is a single model answer
type analysis struct {
	ID       string `json:"id"`
	Analysis string `json:"analysis"`
}

// NewAnnotator makes an annotator. A nil generator disables annotation, a nil extractor skips article context.
func NewAnnotator(gen Generator, extractor Extractor, maxItems int) *Annotator {
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}
	return &Annotator{gen: gen, extractor: extractor, maxItems: maxItems}
}

// Enabled reports whether a generator is configured
func (a *Annotator) Enabled() bool {
	return a != nil && a.gen != nil
}

// Annotate submits up to maxItems un-annotated items in list order as one batch and merges
// returned analyses by id. Existing analyses are never overwritten.
func (a *Annotator) Annotate(ctx context.Context, items []domain.NewsItem) []domain.NewsItem {
	if !a.Enabled() {
		return items
	}

	var picked []int
	for i, it := range items {
		if len(picked) >= a.maxItems {
			break
		}
		if !it.Annotated() {
			picked = append(picked, i)
		}
	}
	if len(picked) == 0 {
		return items
	}

	prompt, err := a.buildPrompt(ctx, items, picked)
	if err != nil {
		lgr.Printf("[WARN] failed to build annotation prompt: %v", err)
		return items
	}

	text, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		lgr.Printf("[WARN] annotation failed: %v", err)
		return items
	}

	results, err := parseAnalyses(text)
	if err != nil {
		lgr.Printf("[WARN] annotation response rejected: %v", err)
		return items
	}
	byID := make(map[string]string, len(results))
	for _, r := range results {
		if s := strings.TrimSpace(r.Analysis); r.ID != "" && s != "" {
			byID[r.ID] = s
		}
	}

	res := make([]domain.NewsItem, len(items))
	copy(res, items)
	var merged int
	for _, idx := range picked {
		if s, ok := byID[res[idx].ID]; ok {
			res[idx].AIAnalysis = s
			merged++
		}
	}
	lgr.Printf("[INFO] annotated %d of %d submitted items", merged, len(picked))
	return res
}

func (a *Annotator) buildPrompt(ctx context.Context, items []domain.NewsItem, picked []int) (string, error) {
	input := make([]promptItem, len(picked))
	for i, idx := range picked {
		input[i] = promptItem{ID: items[idx].ID, Title: items[idx].Title, Source: items[idx].Source}
	}

	if a.extractor != nil {
		var g errgroup.Group
		g.SetLimit(extractWorkers)
		for i, idx := range picked {
			link := items[idx].URL
			if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
				continue
			}
			g.Go(func() error {
				res, err := a.extractor.Extract(ctx, link)
				if err != nil {
					lgr.Printf("[DEBUG] no article context for %s: %v", link, err)
					return nil
				}
				input[i].Content = res.Snippet(snippetLength)
				return nil
			})
		}
		_ = g.Wait()
	}

	data, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("marshal items: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Analyze the following AI news items. For each item, provide a 1-sentence \"TL;DR\" summary ")
	sb.WriteString("that explains why it matters to a developer or founder.\n\n")
	sb.WriteString("Input JSON:\n")
	sb.Write(data)
	sb.WriteString("\n\nOutput JSON format:\n")
	sb.WriteString(`[{"id": "item_id", "analysis": "The 1-sentence summary."}]`)
	sb.WriteString("\n")
	return sb.String(), nil
}

// parseAnalyses accepts a JSON array of analyses or an object holding one,
// the latter is what JSON-object response modes produce
func parseAnalyses(text string) ([]analysis, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var res []analysis
	if strings.HasPrefix(text, "[") {
		if err := json.Unmarshal([]byte(text), &res); err != nil {
			return nil, fmt.Errorf("failed to parse json array response: %w", err)
		}
		return res, nil
	}

	if strings.HasPrefix(text, "{") {
		var single analysis
		if err := json.Unmarshal([]byte(text), &single); err == nil && single.ID != "" {
			return []analysis{single}, nil
		}
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal([]byte(text), &wrapper); err != nil {
			return nil, fmt.Errorf("failed to parse json object response: %w", err)
		}
		for _, raw := range wrapper {
			var list []analysis
			if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
				return list, nil
			}
		}
		return nil, fmt.Errorf("no analyses array in json object response")
	}

	// model wrapped the array in prose
	start, end := strings.Index(text, "["), strings.LastIndex(text, "]")
	if start == -1 || end == -1 || start >= end {
		return nil, fmt.Errorf("no json array found in response")
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &res); err != nil {
		return nil, fmt.Errorf("failed to parse json array response: %w", err)
	}
	return res, nil
}
