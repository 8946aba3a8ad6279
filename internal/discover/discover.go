// ABOUTME: Feed discovery for the registry: finds an RSS/Atom feed behind a site URL
// ABOUTME: Tries the URL itself, then <link rel="alternate"> elements, then well-known paths

package discover

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/harper/feedreader/internal/fetch"
	"github.com/harper/feedreader/internal/models"
	"github.com/harper/feedreader/internal/parse"
)

// Paths probed when the page advertises no feed.
var commonFeedPaths = []string{
	"/feed",
	"/feed.xml",
	"/rss",
	"/rss.xml",
	"/atom.xml",
	"/index.xml",
	"/feeds/posts/default",
}

var (
	ErrNoFeedFound = errors.New("no RSS/Atom feed found at URL")
	ErrInvalidURL  = errors.New("invalid URL")
)

// Fetcher retrieves a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string, cond *fetch.Conditional) (*fetch.Result, error)
}

// Found is a feed located by discovery.
type Found struct {
	URL   string
	Title string
	// Via is how the feed was found: "direct", "link" or "probe".
	Via string
}

// Feed converts the result into a registry entry, naming it after the feed
// title or, failing that, the host.
func (f Found) Feed() models.Feed {
	name := f.Title
	if strings.TrimSpace(name) == "" {
		if u, err := url.Parse(f.URL); err == nil {
			name = u.Host
		}
	}
	return models.NewFeed(name, f.URL)
}

// Discoverer locates feeds.
type Discoverer struct {
	fetcher Fetcher
	log     *slog.Logger
}

// New creates a Discoverer. A nil logger falls back to slog.Default.
func New(f Fetcher, log *slog.Logger) *Discoverer {
	if log == nil {
		log = slog.Default()
	}
	return &Discoverer{fetcher: f, log: log}
}

// Discover returns the feed behind rawURL.
func (d *Discoverer) Discover(ctx context.Context, rawURL string) (*Found, error) {
	base, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: missing scheme or host", ErrInvalidURL)
	}

	found, body, err := d.try(ctx, base.String())
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", base, err)
	}
	if found != nil {
		found.Via = "direct"
		return found, nil
	}

	for _, candidate := range feedLinks(body, base) {
		feed, _, err := d.try(ctx, candidate.URL)
		if err != nil || feed == nil {
			d.log.Debug("advertised feed rejected",
				slog.String("component", "discover"),
				slog.String("url", candidate.URL),
				slog.Any("error", err),
			)
			continue
		}
		if feed.Title == "" {
			feed.Title = candidate.Title
		}
		feed.Via = "link"
		return feed, nil
	}

	root := url.URL{Scheme: base.Scheme, Host: base.Host}
	for _, path := range commonFeedPaths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		feed, _, err := d.try(ctx, root.String()+path)
		if err == nil && feed != nil {
			feed.Via = "probe"
			return feed, nil
		}
	}

	return nil, ErrNoFeedFound
}

// try fetches u and parses it as a feed. A body that is not a feed is
// returned with a nil result and no error.
func (d *Discoverer) try(ctx context.Context, u string) (*Found, []byte, error) {
	result, err := d.fetcher.Fetch(ctx, u, nil)
	if err != nil {
		return nil, nil, err
	}
	parsed, err := parse.Parse(result.Body)
	if err != nil {
		return nil, result.Body, nil //nolint:nilerr // not a feed
	}
	return &Found{URL: u, Title: parsed.Title}, result.Body, nil
}

// feedLinks returns the feeds advertised by <link rel="alternate"> in an HTML page.
func feedLinks(body []byte, base *url.URL) []Found {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var found []Found
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "link" {
			attrs := make(map[string]string, len(n.Attr))
			for _, a := range n.Attr {
				attrs[a.Key] = a.Val
			}
			if hasRel(attrs["rel"], "alternate") && isFeedType(attrs["type"]) && attrs["href"] != "" {
				if ref, err := url.Parse(attrs["href"]); err == nil {
					found = append(found, Found{
						URL:   base.ResolveReference(ref).String(),
						Title: strings.TrimSpace(attrs["title"]),
					})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return found
}

func hasRel(rel, want string) bool {
	for _, r := range strings.Fields(strings.ToLower(rel)) {
		if r == want {
			return true
		}
	}
	return false
}

func isFeedType(contentType string) bool {
	contentType = strings.ToLower(contentType)
	return strings.Contains(contentType, "rss") ||
		strings.Contains(contentType, "atom") ||
		strings.Contains(contentType, "xml")
}
