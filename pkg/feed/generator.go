package feed

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/umputun/newsnexus/pkg/domain"
)

// Generator creates RSS and OPML exports of aggregated items
type Generator struct {
	baseURL string
}

// NewGenerator creates a new feed generator
func NewGenerator(baseURL string) *Generator {
	return &Generator{
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// GenerateRSS creates an RSS 2.0 feed from cached items, empty or All category means every item
func (g *Generator) GenerateRSS(items []domain.NewsItem, category domain.Category) (string, error) {
	all := category == "" || category == domain.CategoryAll

	// determine title
	title := "NewsNexus - All Categories"
	selfLink := g.baseURL + "/rss"
	if !all {
		title = fmt.Sprintf("NewsNexus - %s", category)
		selfLink = fmt.Sprintf("%s/rss?category=%s", g.baseURL, category)
	}

	// convert items to RSS items
	rssItems := make([]*RSSItem, 0, len(items))
	for _, item := range items {
		rssItems = append(rssItems, g.convertToRSSItem(item))
	}

	// create RSS structure
	feed := &RSS{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: &RSSChannel{
			Title:         title,
			Link:          g.baseURL + "/",
			Description:   "Aggregated AI and developer news",
			AtomLink:      &AtomLink{Href: selfLink, Rel: "self", Type: "application/rss+xml"},
			LastBuildDate: time.Now().Format(time.RFC1123Z),
			Items:         rssItems,
		},
	}

	// marshal to XML
	output, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal RSS: %w", err)
	}

	// add XML declaration
	return xml.Header + string(output), nil
}

// convertToRSSItem converts a news item to an RSS item
func (g *Generator) convertToRSSItem(item domain.NewsItem) *RSSItem {
	// analysis goes first when available, then the summary
	var parts []string
	if item.AIAnalysis != "" {
		parts = append(parts, "TL;DR: "+item.AIAnalysis)
	}
	if item.Summary != "" {
		parts = append(parts, item.Summary)
	}
	if item.Score != nil {
		parts = append(parts, fmt.Sprintf("Score: %d", *item.Score))
	}

	return &RSSItem{
		Title:       fmt.Sprintf("[%s] %s", item.Label(), item.Title),
		Link:        item.URL,
		GUID:        item.ID,
		Description: strings.Join(parts, "\n\n"),
		Author:      item.Author,
		PubDate:     item.Published().UTC().Format(time.RFC1123Z),
		Categories:  []string{string(item.Category), item.Label()},
	}
}

// GenerateOPML creates an OPML file with feed subscriptions
func (g *Generator) GenerateOPML(feeds []string) (string, error) {
	type outline struct {
		XMLName xml.Name `xml:"outline"`
		Text    string   `xml:"text,attr"`
		Title   string   `xml:"title,attr"`
		Type    string   `xml:"type,attr"`
		XMLUrl  string   `xml:"xmlUrl,attr"`
	}

	type body struct {
		XMLName  xml.Name  `xml:"body"`
		Outlines []outline `xml:"outline"`
	}

	type head struct {
		XMLName     xml.Name `xml:"head"`
		Title       string   `xml:"title"`
		DateCreated string   `xml:"dateCreated"`
	}

	type opml struct {
		XMLName xml.Name `xml:"opml"`
		Version string   `xml:"version,attr"`
		Head    head     `xml:"head"`
		Body    body     `xml:"body"`
	}

	// convert feeds to OPML outlines, skipping duplicates
	seen := make(map[string]bool, len(feeds))
	outlines := make([]outline, 0, len(feeds))
	for _, f := range feeds {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		outlines = append(outlines, outline{Text: f, Title: f, Type: "rss", XMLUrl: f})
	}

	// create OPML structure
	doc := opml{
		Version: "2.0",
		Head: head{
			Title:       "NewsNexus Feed Subscriptions",
			DateCreated: time.Now().Format(time.RFC1123Z),
		},
		Body: body{
			Outlines: outlines,
		},
	}

	// marshal to XML
	output, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal OPML: %w", err)
	}

	return xml.Header + string(output), nil
}
