// ABOUTME: Unit tests for the feed browser bubbletea model.
// ABOUTME: Drives the model with synthetic key messages against an in-memory reader.
package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harper/feedreader/internal/menu"
	"github.com/harper/feedreader/internal/models"
	"github.com/harper/feedreader/internal/reader"
)

type fakeApp struct {
	feeds    []models.Feed
	menu     *menu.Menu
	page     *reader.Page
	selected []int
	fail     error
}

func newFakeApp() *fakeApp {
	return &fakeApp{
		feeds: []models.Feed{
			{Name: "Udacity Blog", URL: "https://udacity.example/feed"},
			{Name: "CSS Tricks", URL: "https://css.example/feed"},
		},
		menu: menu.New(),
	}
}

func (a *fakeApp) AllFeeds() []models.Feed { return a.feeds }
func (a *fakeApp) Menu() *menu.Menu        { return a.menu }
func (a *fakeApp) ClickMenuIcon()          { a.menu.Click() }
func (a *fakeApp) Container() *reader.Page { return a.page }

func (a *fakeApp) Init(ctx context.Context, done func(error)) {
	a.load(0, done)
}

func (a *fakeApp) SelectFeed(ctx context.Context, index int, done func(error)) {
	a.menu.Hide()
	a.selected = append(a.selected, index)
	a.load(index, done)
}

func (a *fakeApp) load(index int, done func(error)) {
	if a.fail != nil {
		done(a.fail)
		return
	}
	feed := a.feeds[index]
	a.page = &reader.Page{
		Index: index,
		Feed:  feed,
		Entries: []models.Entry{
			{Title: feed.Name + " first", Teaser: "first teaser"},
			{Title: feed.Name + " second", Teaser: "second teaser"},
		},
	}
	done(nil)
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

var (
	keyM     = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}}
	keyQ     = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
)

func initialized(t *testing.T, app *fakeApp) Model {
	t.Helper()
	m := NewModel(context.Background(), app)
	cmd := m.Init()
	if cmd == nil {
		t.Fatal("expected Init to return a load command")
	}
	updated, _ := m.Update(cmd())
	return updated.(Model)
}

func TestModel_InitLoadsFirstFeed(t *testing.T) {
	app := newFakeApp()
	m := initialized(t, app)

	if app.page == nil || app.page.Index != 0 {
		t.Fatalf("expected feed 0 loaded, got %+v", app.page)
	}
	view := m.View()
	if !strings.Contains(view, "Udacity Blog first") {
		t.Errorf("expected first entry in view:\n%s", view)
	}
	if !strings.Contains(view, "first teaser") {
		t.Errorf("expected teaser in view:\n%s", view)
	}
}

func TestModel_MenuHiddenByDefault(t *testing.T) {
	app := newFakeApp()
	m := initialized(t, app)

	if !app.menu.Hidden() {
		t.Error("expected menu hidden at start")
	}
	if strings.Contains(m.View(), "CSS Tricks") {
		t.Error("expected feed list not rendered while menu hidden")
	}
}

func TestModel_MenuKeyToggles(t *testing.T) {
	app := newFakeApp()
	m := initialized(t, app)

	m, _ = press(t, m, keyM)
	if app.menu.Hidden() {
		t.Fatal("expected menu shown after first m")
	}
	if !strings.Contains(m.View(), "CSS Tricks") {
		t.Error("expected feed list in view while menu shown")
	}

	m, _ = press(t, m, keyM)
	if !app.menu.Hidden() {
		t.Error("expected menu hidden after second m")
	}
}

func TestModel_SelectFeedFromMenu(t *testing.T) {
	app := newFakeApp()
	m := initialized(t, app)

	m, _ = press(t, m, keyM)
	m, _ = press(t, m, keyDown)
	m, cmd := press(t, m, keyEnter)
	if cmd == nil {
		t.Fatal("expected a load command after enter")
	}
	if !m.loading {
		t.Error("expected loading state until the load message arrives")
	}
	if len(app.selected) != 1 || app.selected[0] != 1 {
		t.Fatalf("expected SelectFeed(1), got %v", app.selected)
	}
	if !app.menu.Hidden() {
		t.Error("expected menu hidden after selecting a feed")
	}

	updated, _ := m.Update(cmd())
	m = updated.(Model)
	if m.loading {
		t.Error("expected loading cleared")
	}
	if !strings.Contains(m.View(), "CSS Tricks first") {
		t.Errorf("expected new feed entries in view:\n%s", m.View())
	}
}

func TestModel_EnterIgnoredWhileMenuHidden(t *testing.T) {
	app := newFakeApp()
	m := initialized(t, app)

	_, cmd := press(t, m, keyEnter)
	if cmd != nil {
		t.Error("expected no command for enter with the menu hidden")
	}
	if len(app.selected) != 0 {
		t.Errorf("expected no selection, got %v", app.selected)
	}
}

func TestModel_CursorMovement(t *testing.T) {
	app := newFakeApp()
	m := initialized(t, app)

	m, _ = press(t, m, keyDown)
	m, _ = press(t, m, keyDown)
	if m.entry != 1 {
		t.Errorf("expected entry cursor clamped at 1, got %d", m.entry)
	}
	m, _ = press(t, m, keyUp)
	m, _ = press(t, m, keyUp)
	if m.entry != 0 {
		t.Errorf("expected entry cursor clamped at 0, got %d", m.entry)
	}

	m, _ = press(t, m, keyM)
	m, _ = press(t, m, keyDown)
	if m.feed != 1 || m.entry != 0 {
		t.Errorf("expected feed cursor to move with menu open, got feed=%d entry=%d", m.feed, m.entry)
	}
}

func TestModel_LoadError(t *testing.T) {
	app := newFakeApp()
	app.fail = errors.New("connection refused")
	m := initialized(t, app)

	if !strings.Contains(m.View(), "connection refused") {
		t.Errorf("expected error in view:\n%s", m.View())
	}
}

func TestModel_Quit(t *testing.T) {
	m := initialized(t, newFakeApp())

	_, cmd := press(t, m, keyQ)
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct{ i, n, want int }{
		{-1, 3, 0},
		{0, 0, 0},
		{5, 3, 2},
		{1, 3, 1},
	}
	for _, tt := range tests {
		if got := clamp(tt.i, tt.n); got != tt.want {
			t.Errorf("clamp(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.want)
		}
	}
}
