// ABOUTME: Ordered registry of feed descriptors exposed to the reader as allFeeds
// ABOUTME: Validates that the registry is non-empty and every feed has a name and URL

package feeds

import (
	"errors"
	"fmt"

	"github.com/harper/feedreader/internal/config"
	"github.com/harper/feedreader/internal/models"
	"github.com/harper/feedreader/internal/opml"
)

var (
	ErrEmpty           = errors.New("feed registry is empty")
	ErrBlankURL        = errors.New("feed URL is blank")
	ErrBlankName       = errors.New("feed name is blank")
	ErrIndexOutOfRange = errors.New("feed index out of range")
)

// Registry is an ordered, read-only list of feeds.
type Registry struct {
	feeds []models.Feed
}

// New creates a registry holding feeds in the given order.
func New(feeds ...models.Feed) *Registry {
	r := &Registry{feeds: make([]models.Feed, len(feeds))}
	copy(r.feeds, feeds)
	return r
}

// Default returns the registry the reader ships with.
func Default() *Registry {
	return New(
		models.Feed{Name: "Udacity Blog", URL: "http://blog.udacity.com/feed"},
		models.Feed{Name: "CSS Tricks", URL: "http://feeds.feedburner.com/CssTricks"},
		models.Feed{Name: "HTML5 Rocks", URL: "http://feeds.feedburner.com/html5rocks"},
		models.Feed{Name: "Linear Digressions", URL: "http://feeds.feedburner.com/udacity-linear-digressions"},
	)
}

// FromOPML builds a registry from every feed outline in doc.
func FromOPML(doc *opml.Document) *Registry {
	return New(doc.Feeds()...)
}

// FromConfig resolves the registry a config describes: the OPML file when
// one is set, then the inline feed list, then Default.
func FromConfig(cfg *config.Config) (*Registry, error) {
	if path := cfg.GetOPMLPath(); path != "" {
		doc, err := opml.ParseFile(path)
		if err != nil {
			return nil, fmt.Errorf("load OPML %s: %w", path, err)
		}
		return FromOPML(doc), nil
	}
	if len(cfg.Feeds) > 0 {
		return New(cfg.Feeds...), nil
	}
	return Default(), nil
}

// All returns a copy of the feeds in registry order.
func (r *Registry) All() []models.Feed {
	out := make([]models.Feed, len(r.feeds))
	copy(out, r.feeds)
	return out
}

// Len returns the number of feeds.
func (r *Registry) Len() int {
	return len(r.feeds)
}

// Get returns the feed at index.
func (r *Registry) Get(index int) (models.Feed, error) {
	if index < 0 || index >= len(r.feeds) {
		return models.Feed{}, fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, len(r.feeds))
	}
	return r.feeds[index], nil
}

// Validate checks the registry invariants and reports every violation.
func (r *Registry) Validate() error {
	if len(r.feeds) == 0 {
		return ErrEmpty
	}

	var errs []error
	for i, f := range r.feeds {
		if !f.HasURL() {
			errs = append(errs, fmt.Errorf("feed %d: %w", i, ErrBlankURL))
		}
		if !f.HasName() {
			errs = append(errs, fmt.Errorf("feed %d: %w", i, ErrBlankName))
		}
	}
	return errors.Join(errs...)
}
