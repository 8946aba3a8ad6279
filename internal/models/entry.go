// ABOUTME: Entry model representing one rendered item of a loaded feed
// ABOUTME: Carries the raw content alongside the cleaned teaser text shown in the feed container

package models

import (
	"time"

	"github.com/google/uuid"
)

// Entry represents a single item (article) of a loaded feed.
type Entry struct {
	ID          string     `json:"id"`
	GUID        string     `json:"guid"`
	Title       string     `json:"title"`
	Link        string     `json:"link,omitempty"`
	Author      string     `json:"author,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Content     string     `json:"-"`
	Teaser      string     `json:"teaser"`
}

// NewEntry creates an Entry whose ID is derived from the feed URL and GUID,
// so reloading a feed yields the same IDs. Entries without a GUID get a random ID.
func NewEntry(feedURL, guid, title string) Entry {
	id := uuid.New()
	if guid != "" {
		id = uuid.NewSHA1(uuid.NameSpaceURL, []byte(feedURL+"#"+guid))
	}
	return Entry{
		ID:    id.String(),
		GUID:  guid,
		Title: title,
	}
}

// ShortID returns the first 8 characters of the ID for display.
func (e Entry) ShortID() string {
	if len(e.ID) > 8 {
		return e.ID[:8]
	}
	return e.ID
}
