package domain

import "time"

// NewsItem is a single normalized entry produced by a source adapter
type NewsItem struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Summary     string     `json:"summary,omitempty"`
	Source      SourceType `json:"source"`
	SourceLabel string     `json:"source_label,omitempty"`
	Category    Category   `json:"category"`
	Timestamp   int64      `json:"timestamp"` // epoch milliseconds
	Author      string     `json:"author,omitempty"`
	Score       *int       `json:"score,omitempty"`
	AIAnalysis  string     `json:"ai_analysis,omitempty"`
}

// Published returns the item timestamp as time.Time
func (n NewsItem) Published() time.Time {
	return time.UnixMilli(n.Timestamp)
}

// Label returns the display label, falling back to the source type label
func (n NewsItem) Label() string {
	if n.SourceLabel != "" {
		return n.SourceLabel
	}
	return n.Source.Label()
}

// Annotated reports whether the item already carries an AI analysis
func (n NewsItem) Annotated() bool {
	return n.AIAnalysis != ""
}

// IntPtr returns a pointer to v, used for optional scores
func IntPtr(v int) *int {
	return &v
}

// Category is a topic bucket assigned by keyword classification
type Category string

// known categories
const (
	CategoryAll      Category = "All" // filter pseudo-category, never assigned to items
	CategoryModels   Category = "Models"
	CategoryTools    Category = "Tools"
	CategoryStartups Category = "Startups"
	CategoryResearch Category = "Research"
	CategoryGeneral  Category = "General"
)

// AggregationStats summarizes the last aggregation run
type AggregationStats struct {
	TotalItems  int                `json:"total_items"`
	LastUpdated int64              `json:"last_updated"`
	Sources     map[SourceType]int `json:"sources"`
}

// NewStats counts items per source
func NewStats(items []NewsItem, now time.Time) AggregationStats {
	res := AggregationStats{TotalItems: len(items), LastUpdated: now.UnixMilli(), Sources: map[SourceType]int{}}
	for _, item := range items {
		res.Sources[item.Source]++
	}
	return res
}
