package feed

import (
	"bytes"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"
)

// Parser parses RSS/Atom documents fetched by the caller
type Parser struct {
	parser *gofeed.Parser
}

// NewParser creates a new feed parser
func NewParser() *Parser {
	return &Parser{parser: gofeed.NewParser()}
}

// ParseBytes parses a raw RSS, Atom or JSON feed document
func (p *Parser) ParseBytes(data []byte) (*ParsedFeed, error) {
	feed, err := p.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	// convert to our types
	result := &ParsedFeed{
		Title:       feed.Title,
		Description: feed.Description,
		Link:        feed.Link,
		Items:       make([]ParsedItem, 0, len(feed.Items)),
	}

	for _, item := range feed.Items {
		parsedItem := ParsedItem{
			Title:       item.Title,
			Link:        item.Link,
			Description: item.Description,
			Content:     item.Content,
		}

		// set GUID
		switch {
		case item.GUID != "":
			parsedItem.GUID = item.GUID
		case item.Link != "":
			parsedItem.GUID = item.Link
		default:
			parsedItem.GUID = fmt.Sprintf("%s-%s", feed.Title, item.Title)
		}

		// set author
		if item.Author != nil {
			parsedItem.Author = item.Author.Name
		}

		// set published time
		if item.PublishedParsed != nil {
			parsedItem.Published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			parsedItem.Published = *item.UpdatedParsed
		}

		result.Items = append(result.Items, parsedItem)
	}

	return result, nil
}

// ParsedFeed is a feed document reduced to the fields adapters need
type ParsedFeed struct {
	Title       string
	Description string
	Link        string
	Items       []ParsedItem
}

// ParsedItem is a single feed entry
type ParsedItem struct {
	GUID        string
	Title       string
	Link        string
	Description string
	Content     string
	Author      string
	Published   time.Time // zero when the entry has no date
}
