// ABOUTME: Feed descriptor model: a named RSS/Atom source identified by URL
// ABOUTME: The registry of these descriptors is what the reader exposes as allFeeds

package models

import "strings"

// Feed is one entry of the feed registry.
type Feed struct {
	Name   string `json:"name" yaml:"name"`
	URL    string `json:"url" yaml:"url"`
	Folder string `json:"folder,omitempty" yaml:"folder,omitempty"`
}

// NewFeed creates a Feed with surrounding whitespace trimmed from name and url.
func NewFeed(name, url string) Feed {
	return Feed{
		Name: strings.TrimSpace(name),
		URL:  strings.TrimSpace(url),
	}
}

// HasName reports whether the feed carries a non-blank name.
func (f Feed) HasName() bool {
	return strings.TrimSpace(f.Name) != ""
}

// HasURL reports whether the feed carries a non-blank URL.
func (f Feed) HasURL() bool {
	return strings.TrimSpace(f.URL) != ""
}

// DisplayName returns the name, falling back to the URL when the name is blank.
func (f Feed) DisplayName() string {
	if f.HasName() {
		return f.Name
	}
	return f.URL
}
