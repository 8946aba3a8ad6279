// ABOUTME: Behavioral checks for a feed reader application: feed registry, menu, and loaded entries
// ABOUTME: Queries the rendered page with CSS selectors the way the browser suite queried the DOM

package checks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/harper/feedreader/internal/menu"
	"github.com/harper/feedreader/internal/models"
)

// App is the application surface the checks drive.
type App interface {
	AllFeeds() []models.Feed
	LoadFeed(ctx context.Context, index int, done func(error))
	ClickMenuIcon()
	Render(w io.Writer) error
}

// State carries values captured by a group's BeforeEach into its specs.
type State struct {
	FirstEntry     string
	SecondEntry    string
	FirstParagraph string
}

// Spec is one named expectation.
type Spec struct {
	Name string
	Run  func(ctx context.Context, app App, st *State) error
}

// Group is a set of specs sharing a BeforeEach, which runs before every spec.
type Group struct {
	Name       string
	BeforeEach func(ctx context.Context, app App, st *State) error
	Specs      []Spec
}

// Selectors used against the rendered page.
const (
	EntrySelector     = ".feed .entry"
	ParagraphSelector = ".entry p"
	MenuIconSelector  = ".menu-icon-link"
)

// Suite returns the reader checks in run order.
func Suite() []Group {
	return []Group{
		{
			Name: "RSS Feeds",
			Specs: []Spec{
				{Name: "are defined", Run: feedsDefined},
				{Name: "each has a URL that is defined and not empty", Run: feedsHaveURL},
				{Name: "each has a name that is defined and not empty", Run: feedsHaveName},
			},
		},
		{
			Name: "The menu",
			Specs: []Spec{
				{Name: "should be hidden by default", Run: menuHiddenByDefault},
				{Name: "should toggle visibility when icon is clicked", Run: menuToggles},
			},
		},
		{
			Name: "Initial Entries",
			BeforeEach: func(ctx context.Context, app App, st *State) error {
				return Await(ctx, app, 1, nil)
			},
			Specs: []Spec{
				{Name: "should have at least one .entry element in the .feed container", Run: hasEntries},
			},
		},
		{
			Name:       "New Feed Selection",
			BeforeEach: loadBothFeeds,
			Specs: []Spec{
				{Name: "should replace content from the first feed when loading a new feed", Run: contentReplaced},
			},
		},
		{
			Name: "Summary Text",
			BeforeEach: func(ctx context.Context, app App, st *State) error {
				return Await(ctx, app, 1, func() error {
					doc, err := Document(app)
					if err != nil {
						return err
					}
					st.FirstParagraph = doc.Find(ParagraphSelector).First().Text()
					return nil
				})
			},
			Specs: []Spec{
				{Name: "should display for each entry", Run: teaserPresent},
				{Name: "should display just text without html tags such as <p> or <a> or <em>", Run: teaserIsText},
			},
		},
	}
}

// Document renders app and parses the result for selector queries.
func Document(app App) (*goquery.Document, error) {
	var buf bytes.Buffer
	if err := app.Render(&buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		return nil, fmt.Errorf("parse rendered page: %w", err)
	}
	return doc, nil
}

// Await loads feed index and blocks until its callback fires or ctx ends.
// then, when set, runs inside the callback before completion is signalled.
func Await(ctx context.Context, app App, index int, then func() error) error {
	result := make(chan error, 1)
	app.LoadFeed(ctx, index, func(err error) {
		if err == nil && then != nil {
			err = then()
		}
		result <- err
	})

	select {
	case err := <-result:
		if err != nil {
			return fmt.Errorf("loadFeed(%d): %w", index, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("loadFeed(%d) did not complete: %w", index, ctx.Err())
	}
}

func loadBothFeeds(ctx context.Context, app App, st *State) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return Await(gctx, app, 0, func() (err error) {
			st.FirstEntry, err = firstEntryHTML(app)
			return err
		})
	})
	g.Go(func() error {
		return Await(gctx, app, 1, func() (err error) {
			st.SecondEntry, err = firstEntryHTML(app)
			return err
		})
	})
	return g.Wait()
}

func firstEntryHTML(app App) (string, error) {
	doc, err := Document(app)
	if err != nil {
		return "", err
	}
	sel := doc.Find(EntrySelector).First()
	if sel.Length() == 0 {
		return "", nil
	}
	return goquery.OuterHtml(sel)
}

func feedsDefined(_ context.Context, app App, _ *State) error {
	all := app.AllFeeds()
	if all == nil {
		return errors.New("expected allFeeds to be defined")
	}
	if len(all) == 0 {
		return errors.New("expected allFeeds not to be empty")
	}
	return nil
}

func feedsHaveURL(_ context.Context, app App, _ *State) error {
	var errs []error
	for i, f := range app.AllFeeds() {
		if strings.TrimSpace(f.URL) == "" {
			errs = append(errs, fmt.Errorf("expected allFeeds[%d].url not to be empty", i))
		}
	}
	return errors.Join(errs...)
}

func feedsHaveName(_ context.Context, app App, _ *State) error {
	var errs []error
	for i, f := range app.AllFeeds() {
		if strings.TrimSpace(f.Name) == "" {
			errs = append(errs, fmt.Errorf("expected allFeeds[%d].name not to be empty", i))
		}
	}
	return errors.Join(errs...)
}

func menuHidden(app App) (bool, error) {
	doc, err := Document(app)
	if err != nil {
		return false, err
	}
	return doc.Find("body").HasClass(menu.HiddenClass), nil
}

func menuHiddenByDefault(_ context.Context, app App, _ *State) error {
	hidden, err := menuHidden(app)
	if err != nil {
		return err
	}
	if !hidden {
		return fmt.Errorf("expected body to have class %q", menu.HiddenClass)
	}
	return nil
}

func menuToggles(_ context.Context, app App, _ *State) error {
	doc, err := Document(app)
	if err != nil {
		return err
	}
	if doc.Find(MenuIconSelector).Length() == 0 {
		return fmt.Errorf("expected a %s element", MenuIconSelector)
	}

	app.ClickMenuIcon()
	hidden, err := menuHidden(app)
	if err != nil {
		return err
	}
	if hidden {
		return fmt.Errorf("expected body not to have class %q after first click", menu.HiddenClass)
	}

	app.ClickMenuIcon()
	hidden, err = menuHidden(app)
	if err != nil {
		return err
	}
	if !hidden {
		return fmt.Errorf("expected body to have class %q after second click", menu.HiddenClass)
	}
	return nil
}

func hasEntries(_ context.Context, app App, _ *State) error {
	doc, err := Document(app)
	if err != nil {
		return err
	}
	if doc.Find(EntrySelector).Length() == 0 {
		return fmt.Errorf("expected at least one %s element", EntrySelector)
	}
	return nil
}

func contentReplaced(_ context.Context, _ App, st *State) error {
	if st.FirstEntry == "" {
		return errors.New("expected feed 0 to render at least one entry")
	}
	if st.SecondEntry == "" {
		return errors.New("expected feed 1 to render at least one entry")
	}
	if st.FirstEntry == st.SecondEntry {
		return errors.New("expected the first entry after loading feed 1 to differ from the first entry after loading feed 0")
	}
	return nil
}

func teaserPresent(_ context.Context, _ App, st *State) error {
	if len(st.FirstParagraph) == 0 {
		return errors.New("expected first entry paragraph text not to be empty")
	}
	return nil
}

func teaserIsText(ctx context.Context, app App, st *State) error {
	if err := teaserPresent(ctx, app, st); err != nil {
		return err
	}
	for _, tag := range []string{"</p>", "</a>", "</em>"} {
		if strings.Contains(st.FirstParagraph, tag) {
			return fmt.Errorf("expected first entry paragraph not to contain %q, got %q", tag, st.FirstParagraph)
		}
	}
	return nil
}
