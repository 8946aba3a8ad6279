// ABOUTME: Feed reader application: loads a registry feed by index and renders its entries
// ABOUTME: Loads run off the caller's goroutine and signal completion through a callback

package reader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/harper/feedreader/internal/config"
	"github.com/harper/feedreader/internal/content"
	"github.com/harper/feedreader/internal/feeds"
	"github.com/harper/feedreader/internal/fetch"
	"github.com/harper/feedreader/internal/menu"
	"github.com/harper/feedreader/internal/models"
	"github.com/harper/feedreader/internal/parse"
)

// ErrNotLoaded is returned when the container is read before any feed loaded.
var ErrNotLoaded = errors.New("no feed loaded")

// Fetcher retrieves a feed document, honoring conditional validators.
type Fetcher interface {
	Fetch(ctx context.Context, url string, cond *fetch.Conditional) (*fetch.Result, error)
}

// Page is the feed container: the entries of the most recently loaded feed.
type Page struct {
	Index    int
	Feed     models.Feed
	Title    string
	Entries  []models.Entry
	LoadedAt time.Time
}

// First returns the first entry of the page.
func (p *Page) First() (models.Entry, bool) {
	if p == nil || len(p.Entries) == 0 {
		return models.Entry{}, false
	}
	return p.Entries[0], true
}

// Entry returns entry n (0-based) of the page.
func (p *Page) Entry(n int) (models.Entry, error) {
	if p == nil {
		return models.Entry{}, ErrNotLoaded
	}
	if n < 0 || n >= len(p.Entries) {
		return models.Entry{}, fmt.Errorf("entry %d out of range (have %d)", n, len(p.Entries))
	}
	return p.Entries[n], nil
}

type cachedFeed struct {
	cond   fetch.Conditional
	parsed *parse.ParsedFeed
}

// Reader owns the feed registry, the menu state and the feed container.
type Reader struct {
	registry  *feeds.Registry
	fetcher   Fetcher
	log       *slog.Logger
	teaserLen int
	now       func() time.Time
	menu      *menu.Menu

	// renderMu serialises replacing the page with notifying the load's
	// callback, so a callback always observes its own page.
	renderMu sync.Mutex

	mu    sync.RWMutex
	page  *Page
	cache map[string]cachedFeed

	inflight sync.WaitGroup
}

// Option configures a Reader.
type Option func(*Reader)

// WithFetcher replaces the HTTP fetcher.
func WithFetcher(f Fetcher) Option {
	return func(r *Reader) { r.fetcher = f }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reader) { r.log = l }
}

// WithTeaserLength caps teaser text in runes; n <= 0 disables the cap.
func WithTeaserLength(n int) Option {
	return func(r *Reader) { r.teaserLen = n }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Reader) { r.now = now }
}

// New creates a Reader over reg.
func New(reg *feeds.Registry, opts ...Option) *Reader {
	r := &Reader{
		registry:  reg,
		log:       slog.Default(),
		teaserLen: config.DefaultTeaserLength,
		now:       time.Now,
		menu:      menu.New(),
		cache:     make(map[string]cachedFeed),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.fetcher == nil {
		r.fetcher = fetch.New(fetch.WithLogger(r.log))
	}
	return r
}

// Fresh returns a Reader over the same registry and fetcher with its own
// menu, container and cache. Loads on the copy leave r untouched.
func (r *Reader) Fresh() *Reader {
	return &Reader{
		registry:  r.registry,
		fetcher:   r.fetcher,
		log:       r.log,
		teaserLen: r.teaserLen,
		now:       r.now,
		menu:      menu.New(),
		cache:     make(map[string]cachedFeed),
	}
}

// AllFeeds returns the registry feeds in order.
func (r *Reader) AllFeeds() []models.Feed {
	return r.registry.All()
}

// Menu returns the menu state.
func (r *Reader) Menu() *menu.Menu {
	return r.menu
}

// ClickMenuIcon toggles the menu.
func (r *Reader) ClickMenuIcon() {
	hidden := r.menu.Click()
	r.log.Debug("menu toggled", slog.String("component", "reader"), slog.Bool("hidden", hidden))
}

// Container returns the current page, or nil before the first load.
func (r *Reader) Container() *Page {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.page
}

// Entry returns entry n (0-based) of the current page.
func (r *Reader) Entry(n int) (models.Entry, error) {
	return r.Container().Entry(n)
}

// LoadFeed fetches the feed at index and replaces the container with its
// entries, then calls done (which may be nil). The work runs on a new
// goroutine; done is always called exactly once, with nil on success. On
// failure the container is left as it was.
func (r *Reader) LoadFeed(ctx context.Context, index int, done func(error)) {
	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()

		page, err := r.build(ctx, index)
		if err != nil {
			r.log.Error("feed load failed",
				slog.String("component", "reader"),
				slog.Int("index", index),
				slog.Any("error", err),
			)
			if done != nil {
				done(err)
			}
			return
		}

		r.renderMu.Lock()
		defer r.renderMu.Unlock()

		r.mu.Lock()
		r.page = page
		r.mu.Unlock()

		r.log.Info("feed loaded",
			slog.String("component", "reader"),
			slog.Int("index", index),
			slog.String("feed", page.Feed.Name),
			slog.Int("entries", len(page.Entries)),
		)
		if done != nil {
			done(nil)
		}
	}()
}

// Load is LoadFeed with a channel in place of the callback.
// The channel receives exactly one value.
func (r *Reader) Load(ctx context.Context, index int) <-chan error {
	ch := make(chan error, 1)
	r.LoadFeed(ctx, index, func(err error) { ch <- err })
	return ch
}

// LoadPage loads the feed at index and returns the page that load rendered,
// even if another load replaces the container before LoadPage returns.
func (r *Reader) LoadPage(ctx context.Context, index int) (*Page, error) {
	type loaded struct {
		page *Page
		err  error
	}
	ch := make(chan loaded, 1)
	r.LoadFeed(ctx, index, func(err error) {
		if err != nil {
			ch <- loaded{err: err}
			return
		}
		ch <- loaded{page: r.Container()}
	})
	select {
	case res := <-ch:
		return res.page, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Init loads the first feed, as the application does on start-up.
func (r *Reader) Init(ctx context.Context, done func(error)) {
	r.LoadFeed(ctx, 0, done)
}

// SelectFeed handles a click on a feed in the menu: the menu hides and the feed loads.
func (r *Reader) SelectFeed(ctx context.Context, index int, done func(error)) {
	r.menu.Hide()
	r.LoadFeed(ctx, index, done)
}

// Wait blocks until every load started so far has called its callback.
func (r *Reader) Wait() {
	r.inflight.Wait()
}

func (r *Reader) build(ctx context.Context, index int) (*Page, error) {
	feed, err := r.registry.Get(index)
	if err != nil {
		return nil, err
	}

	parsed, err := r.fetchParsed(ctx, feed.URL)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", feed.DisplayName(), err)
	}

	page := &Page{
		Index:    index,
		Feed:     feed,
		Title:    parsed.Title,
		Entries:  make([]models.Entry, 0, len(parsed.Entries)),
		LoadedAt: r.now(),
	}
	for _, pe := range parsed.Entries {
		entry := models.NewEntry(feed.URL, pe.GUID, pe.Title)
		entry.Link = pe.Link
		entry.Author = pe.Author
		entry.PublishedAt = pe.PublishedAt
		entry.Content = pe.Content
		entry.Teaser = content.Teaser(pe.Summary, r.teaserLen)
		if entry.Teaser == "" {
			entry.Teaser = content.Teaser(pe.Title, r.teaserLen)
		}
		page.Entries = append(page.Entries, entry)
	}
	return page, nil
}

func (r *Reader) fetchParsed(ctx context.Context, url string) (*parse.ParsedFeed, error) {
	r.mu.RLock()
	cached, ok := r.cache[url]
	r.mu.RUnlock()

	var cond *fetch.Conditional
	if ok {
		cond = &cached.cond
	}

	result, err := r.fetcher.Fetch(ctx, url, cond)
	if err != nil {
		return nil, err
	}

	if result.NotModified {
		if !ok {
			return nil, fmt.Errorf("server reported not modified for an uncached feed")
		}
		r.log.Debug("feed not modified", slog.String("component", "reader"), slog.String("url", url))
		return cached.parsed, nil
	}

	parsed, err := parse.Parse(result.Body)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[url] = cachedFeed{
		cond:   fetch.Conditional{ETag: result.ETag, LastModified: result.LastModified},
		parsed: parsed,
	}
	r.mu.Unlock()

	return parsed, nil
}
