// ABOUTME: RSS/Atom feed parsing using gofeed library
// ABOUTME: Converts gofeed.Feed to a ParsedFeed keeping both full content and summary for teasers

package parse

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// ParsedFeed represents a normalized feed structure
type ParsedFeed struct {
	Title   string
	Link    string
	Entries []ParsedEntry
}

// ParsedEntry represents a normalized feed entry
type ParsedEntry struct {
	GUID        string
	Title       string
	Link        string
	Author      string
	PublishedAt *time.Time
	// Content is the full body, falling back to the summary.
	Content string
	// Summary is the short description, falling back to the full body.
	Summary string
}

// Parse parses RSS, Atom or JSON Feed data and returns a normalized ParsedFeed
func Parse(data []byte) (*ParsedFeed, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	parsed := &ParsedFeed{
		Title:   strings.TrimSpace(feed.Title),
		Link:    feed.Link,
		Entries: make([]ParsedEntry, 0, len(feed.Items)),
	}

	for _, item := range feed.Items {
		entry := ParsedEntry{
			GUID:    item.GUID,
			Title:   strings.TrimSpace(item.Title),
			Link:    item.Link,
			Content: strings.TrimSpace(item.Content),
			Summary: strings.TrimSpace(item.Description),
		}

		if entry.GUID == "" {
			entry.GUID = item.Link
		}

		if item.Author != nil {
			entry.Author = item.Author.Name
		}

		if item.PublishedParsed != nil {
			entry.PublishedAt = item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			entry.PublishedAt = item.UpdatedParsed
		}

		if entry.Content == "" {
			entry.Content = entry.Summary
		}
		if entry.Summary == "" {
			entry.Summary = entry.Content
		}

		parsed.Entries = append(parsed.Entries, entry)
	}

	return parsed, nil
}
