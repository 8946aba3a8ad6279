// ABOUTME: Tests for the reader: asynchronous loads, container replacement, caching, and rendering
// ABOUTME: Uses a stub fetcher so every load is deterministic and offline

package reader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/feedreader/internal/feeds"
	"github.com/harper/feedreader/internal/fetch"
	"github.com/harper/feedreader/internal/logging"
	"github.com/harper/feedreader/internal/models"
)

type item struct {
	guid, title, description string
}

func rss(title string, items ...item) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0"?><rss version="2.0"><channel><title>%s</title><link>https://example.com</link>`, title)
	for _, it := range items {
		fmt.Fprintf(&b, `<item><guid>%s</guid><title>%s</title><link>https://example.com/%s</link><description><![CDATA[%s]]></description></item>`,
			it.guid, it.title, it.guid, it.description)
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

type stubFetcher struct {
	mu     sync.Mutex
	bodies map[string]string
	etags  map[string]string
	fail   map[string]error
	calls  map[string]int
	conds  []*fetch.Conditional
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		bodies: make(map[string]string),
		etags:  make(map[string]string),
		fail:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

func (s *stubFetcher) Fetch(ctx context.Context, url string, cond *fetch.Conditional) (*fetch.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[url]++
	s.conds = append(s.conds, cond)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := s.fail[url]; ok {
		return nil, err
	}
	etag := s.etags[url]
	if cond != nil && etag != "" && cond.ETag == etag {
		return &fetch.Result{NotModified: true}, nil
	}
	body, ok := s.bodies[url]
	if !ok {
		return nil, fmt.Errorf("unexpected status code: 404")
	}
	return &fetch.Result{Body: []byte(body), ETag: etag}, nil
}

const (
	alphaURL = "https://alpha.example/feed"
	betaURL  = "https://beta.example/feed"
)

func newTestReader(t *testing.T, opts ...Option) (*Reader, *stubFetcher) {
	t.Helper()
	stub := newStubFetcher()
	stub.bodies[alphaURL] = rss("Alpha",
		item{"a1", "Alpha One", "<p>First <em>alpha</em> post</p>"},
		item{"a2", "Alpha Two", "<p>Second alpha post</p>"},
	)
	stub.bodies[betaURL] = rss("Beta",
		item{"b1", "Beta One", `<p>Read <a href="https://beta.example">this</a></p>`},
	)

	reg := feeds.New(
		models.NewFeed("Alpha", alphaURL),
		models.NewFeed("Beta", betaURL),
	)
	opts = append([]Option{WithFetcher(stub), WithLogger(logging.Discard())}, opts...)
	return New(reg, opts...), stub
}

func load(t *testing.T, r *Reader, index int) error {
	t.Helper()
	select {
	case err := <-r.Load(context.Background(), index):
		return err
	case <-time.After(5 * time.Second):
		t.Fatalf("load %d did not complete", index)
		return nil
	}
}

func TestLoadFeed_RendersEntries(t *testing.T) {
	r, _ := newTestReader(t)

	require.NoError(t, load(t, r, 0))

	page := r.Container()
	require.NotNil(t, page)
	assert.Equal(t, 0, page.Index)
	assert.Equal(t, "Alpha", page.Feed.Name)
	assert.Equal(t, "Alpha", page.Title)
	require.Len(t, page.Entries, 2)
	assert.Equal(t, "Alpha One", page.Entries[0].Title)
	assert.Equal(t, "First alpha post", page.Entries[0].Teaser)
	assert.Equal(t, "https://example.com/a1", page.Entries[0].Link)
	assert.Equal(t, "<p>First <em>alpha</em> post</p>", page.Entries[0].Content)
}

func TestLoadFeed_ReplacesContainer(t *testing.T) {
	r, _ := newTestReader(t)

	require.NoError(t, load(t, r, 0))
	require.NoError(t, load(t, r, 1))

	page := r.Container()
	require.Len(t, page.Entries, 1, "entries from the previous feed must not remain")
	assert.Equal(t, "Beta One", page.Entries[0].Title)
	assert.Equal(t, "Read this", page.Entries[0].Teaser)
}

func TestLoadFeed_InvalidIndex(t *testing.T) {
	r, stub := newTestReader(t)

	for _, index := range []int{-1, 2, 99} {
		err := load(t, r, index)
		assert.ErrorIs(t, err, feeds.ErrIndexOutOfRange, "index %d", index)
	}
	assert.Nil(t, r.Container())
	assert.Empty(t, stub.calls)
}

func TestLoadFeed_FailureLeavesContainer(t *testing.T) {
	r, stub := newTestReader(t)
	require.NoError(t, load(t, r, 0))

	stub.fail[betaURL] = errors.New("connection refused")
	err := load(t, r, 1)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load Beta")
	assert.Equal(t, "Alpha", r.Container().Feed.Name)
}

func TestLoadFeed_ParseFailure(t *testing.T) {
	r, stub := newTestReader(t)
	stub.bodies[alphaURL] = "this is not a feed"

	err := load(t, r, 0)

	require.Error(t, err)
	assert.Nil(t, r.Container())
}

func TestLoadFeed_NilCallback(t *testing.T) {
	r, _ := newTestReader(t)

	r.LoadFeed(context.Background(), 0, nil)
	r.Wait()

	require.NotNil(t, r.Container())
	assert.Equal(t, "Alpha", r.Container().Feed.Name)
}

func TestLoadFeed_CancelledContext(t *testing.T) {
	r, _ := newTestReader(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := <-r.Load(ctx, 0)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, r.Container())
}

func TestLoadFeed_NotModifiedReusesCache(t *testing.T) {
	r, stub := newTestReader(t)
	stub.etags[alphaURL] = `"v1"`

	require.NoError(t, load(t, r, 0))
	first := r.Container()

	require.NoError(t, load(t, r, 0))
	second := r.Container()

	require.Len(t, stub.conds, 2)
	assert.Nil(t, stub.conds[0])
	require.NotNil(t, stub.conds[1])
	assert.Equal(t, `"v1"`, stub.conds[1].ETag)

	require.Len(t, second.Entries, 2)
	assert.Equal(t, first.Entries[0].ID, second.Entries[0].ID)
	assert.Equal(t, first.Entries[1].Teaser, second.Entries[1].Teaser)
}

func TestLoadFeed_StableEntryIDs(t *testing.T) {
	r, _ := newTestReader(t)

	require.NoError(t, load(t, r, 1))
	before := r.Container().Entries[0].ID
	require.NoError(t, load(t, r, 0))
	require.NoError(t, load(t, r, 1))

	assert.Equal(t, before, r.Container().Entries[0].ID)
}

func TestLoadFeed_TeaserFallsBackToTitle(t *testing.T) {
	r, stub := newTestReader(t)
	stub.bodies[alphaURL] = rss("Alpha", item{"a1", "Only a &lt;b&gt;title&lt;/b&gt;", ""})

	require.NoError(t, load(t, r, 0))

	entry, err := r.Entry(0)
	require.NoError(t, err)
	assert.Equal(t, "Only a title", entry.Teaser)
}

func TestLoadFeed_TeaserLength(t *testing.T) {
	r, stub := newTestReader(t, WithTeaserLength(12))
	stub.bodies[alphaURL] = rss("Alpha", item{"a1", "Long", "<p>one two three four five six</p>"})

	require.NoError(t, load(t, r, 0))

	entry, err := r.Entry(0)
	require.NoError(t, err)
	assert.Equal(t, "one two…", entry.Teaser)
}

func TestLoadFeed_CallbackSeesOwnPage(t *testing.T) {
	r, _ := newTestReader(t)

	for round := 0; round < 20; round++ {
		var wg sync.WaitGroup
		seen := make([]string, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			r.LoadFeed(context.Background(), i, func(err error) {
				defer wg.Done()
				if assert.NoError(t, err) {
					seen[i] = r.Container().Feed.Name
				}
			})
		}
		wg.Wait()
		assert.Equal(t, []string{"Alpha", "Beta"}, seen)
	}
}

func TestLoadFeed_UsesClock(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r, _ := newTestReader(t, WithClock(func() time.Time { return fixed }))

	require.NoError(t, load(t, r, 0))

	assert.Equal(t, fixed, r.Container().LoadedAt)
}

func TestLoadPage_ReturnsOwnPage(t *testing.T) {
	r, _ := newTestReader(t)

	for round := 0; round < 20; round++ {
		var wg sync.WaitGroup
		names := make([]string, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				page, err := r.LoadPage(context.Background(), i)
				if assert.NoError(t, err) {
					names[i] = page.Feed.Name
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, []string{"Alpha", "Beta"}, names)
	}
}

func TestLoadPage_Failure(t *testing.T) {
	r, _ := newTestReader(t)

	page, err := r.LoadPage(context.Background(), 7)
	assert.Error(t, err)
	assert.Nil(t, page)
}

func TestFresh_IsolatedState(t *testing.T) {
	r, stub := newTestReader(t)
	require.NoError(t, load(t, r, 1))
	r.ClickMenuIcon()

	fresh := r.Fresh()
	assert.True(t, fresh.Menu().Hidden())
	assert.Nil(t, fresh.Container())

	page, err := fresh.LoadPage(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", page.Feed.Name)
	fresh.ClickMenuIcon()
	fresh.ClickMenuIcon()

	assert.Equal(t, "Beta", r.Container().Feed.Name)
	assert.False(t, r.Menu().Hidden())
	assert.Equal(t, 1, stub.calls[alphaURL])
}

func TestInit_LoadsFirstFeed(t *testing.T) {
	r, _ := newTestReader(t)
	done := make(chan error, 1)

	r.Init(context.Background(), func(err error) { done <- err })

	require.NoError(t, <-done)
	assert.Equal(t, 0, r.Container().Index)
}

func TestSelectFeed_HidesMenu(t *testing.T) {
	r, _ := newTestReader(t)
	r.ClickMenuIcon()
	require.False(t, r.Menu().Hidden())

	done := make(chan error, 1)
	r.SelectFeed(context.Background(), 1, func(err error) { done <- err })

	require.NoError(t, <-done)
	assert.True(t, r.Menu().Hidden())
	assert.Equal(t, "Beta", r.Container().Feed.Name)
}

func TestClickMenuIcon_Toggles(t *testing.T) {
	r, _ := newTestReader(t)

	assert.True(t, r.Menu().Hidden())
	r.ClickMenuIcon()
	assert.False(t, r.Menu().Hidden())
	r.ClickMenuIcon()
	assert.True(t, r.Menu().Hidden())
}

func TestEntry(t *testing.T) {
	r, _ := newTestReader(t)

	_, err := r.Entry(0)
	assert.ErrorIs(t, err, ErrNotLoaded)

	require.NoError(t, load(t, r, 0))

	entry, err := r.Entry(1)
	require.NoError(t, err)
	assert.Equal(t, "Alpha Two", entry.Title)

	_, err = r.Entry(2)
	assert.Error(t, err)
	_, err = r.Entry(-1)
	assert.Error(t, err)
}

func TestPage_Entry(t *testing.T) {
	var nilPage *Page
	_, err := nilPage.Entry(0)
	assert.ErrorIs(t, err, ErrNotLoaded)

	page := &Page{Entries: []models.Entry{{Title: "x"}}}
	entry, err := page.Entry(0)
	require.NoError(t, err)
	assert.Equal(t, "x", entry.Title)
	_, err = page.Entry(1)
	assert.Error(t, err)
}

func TestPage_First(t *testing.T) {
	var nilPage *Page
	_, ok := nilPage.First()
	assert.False(t, ok)

	_, ok = (&Page{}).First()
	assert.False(t, ok)

	entry, ok := (&Page{Entries: []models.Entry{{Title: "x"}}}).First()
	assert.True(t, ok)
	assert.Equal(t, "x", entry.Title)
}

func TestAllFeeds(t *testing.T) {
	r, _ := newTestReader(t)

	all := r.AllFeeds()
	require.Len(t, all, 2)
	assert.Equal(t, "Alpha", all[0].Name)
	assert.Equal(t, betaURL, all[1].URL)
}

func TestRender_BeforeLoad(t *testing.T) {
	r, _ := newTestReader(t)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf))
	out := buf.String()

	assert.Contains(t, out, `<body class="menu-hidden">`)
	assert.Contains(t, out, `<a class="menu-icon-link"`)
	assert.Contains(t, out, `<h1 class="header-title">Feeds</h1>`)
	assert.Contains(t, out, `<a href="#" data-id="0">Alpha</a>`)
	assert.Contains(t, out, `<a href="#" data-id="1">Beta</a>`)
	assert.NotContains(t, out, `class="entry"`)
}

func TestRender_AfterLoad(t *testing.T) {
	r, _ := newTestReader(t)
	require.NoError(t, load(t, r, 0))

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf))
	out := buf.String()

	assert.Contains(t, out, `<h1 class="header-title">Alpha</h1>`)
	assert.Equal(t, 2, strings.Count(out, `<article class="entry">`))
	assert.Contains(t, out, `<h2>Alpha One</h2><p>First alpha post</p>`)
	assert.Contains(t, out, `<a class="entry-link" href="https://example.com/a1">`)
}

func TestRender_MenuShown(t *testing.T) {
	r, _ := newTestReader(t)
	r.ClickMenuIcon()

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf))

	assert.Contains(t, buf.String(), "<body>")
	assert.NotContains(t, buf.String(), "menu-hidden")
}

func TestRender_EscapesText(t *testing.T) {
	r, stub := newTestReader(t)
	stub.bodies[alphaURL] = rss("Alpha", item{"a1", "Tom &amp; Jerry", "1 &lt; 2"})

	require.NoError(t, load(t, r, 0))

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf))
	assert.Contains(t, buf.String(), "<h2>Tom &amp; Jerry</h2>")
}
