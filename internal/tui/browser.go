// ABOUTME: Interactive terminal browser for the feed reader built on bubbletea.
// ABOUTME: The feed menu starts hidden; m toggles it and enter loads the highlighted feed.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harper/feedreader/internal/menu"
	"github.com/harper/feedreader/internal/models"
	"github.com/harper/feedreader/internal/reader"
)

// App is the reader surface the browser drives.
type App interface {
	AllFeeds() []models.Feed
	Menu() *menu.Menu
	ClickMenuIcon()
	Init(ctx context.Context, done func(error))
	SelectFeed(ctx context.Context, index int, done func(error))
	Container() *reader.Page
}

type keyMap struct {
	Menu   key.Binding
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Menu, k.Up, k.Down, k.Select, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultKeys() keyMap {
	return keyMap{
		Menu:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "menu")),
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open feed")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

var (
	brandStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	menuStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("241")).Padding(0, 1)
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	teaserStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241"))
)

// loadedMsg reports the end of a feed load.
type loadedMsg struct {
	index int
	err   error
}

// Model is the bubbletea model for the browser.
type Model struct {
	ctx     context.Context
	app     App
	keys    keyMap
	help    help.Model
	feed    int // highlighted feed in the menu
	entry   int // highlighted entry in the container
	loading bool
	err     error
	width   int
}

// NewModel creates a browser over app.
func NewModel(ctx context.Context, app App) Model {
	return Model{
		ctx:  ctx,
		app:  app,
		keys: defaultKeys(),
		help: help.New(),
	}
}

// Init implements tea.Model. It loads the first feed.
func (m Model) Init() tea.Cmd {
	done := make(chan error, 1)
	m.app.Init(m.ctx, func(err error) { done <- err })
	return waitFor(0, done)
}

func waitFor(index int, done <-chan error) tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{index: index, err: <-done}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.entry = 0
		}
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	menuOpen := !m.app.Menu().Hidden()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Menu):
		m.app.ClickMenuIcon()
		if !m.app.Menu().Hidden() {
			if page := m.app.Container(); page != nil {
				m.feed = page.Index
			}
		}
	case key.Matches(msg, m.keys.Up):
		if menuOpen {
			m.feed = clamp(m.feed-1, len(m.app.AllFeeds()))
		} else {
			m.entry = clamp(m.entry-1, m.entryCount())
		}
	case key.Matches(msg, m.keys.Down):
		if menuOpen {
			m.feed = clamp(m.feed+1, len(m.app.AllFeeds()))
		} else {
			m.entry = clamp(m.entry+1, m.entryCount())
		}
	case key.Matches(msg, m.keys.Select):
		if menuOpen && len(m.app.AllFeeds()) > 0 {
			done := make(chan error, 1)
			m.app.SelectFeed(m.ctx, m.feed, func(err error) { done <- err })
			m.loading = true
			m.err = nil
			return m, waitFor(m.feed, done)
		}
	}
	return m, nil
}

func (m Model) entryCount() int {
	if page := m.app.Container(); page != nil {
		return len(page.Entries)
	}
	return 0
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	page := m.app.Container()

	header := "Feeds"
	if page != nil {
		header = page.Feed.DisplayName()
	}
	b.WriteString("\n")
	b.WriteString(brandStyle.Render("  ☰ "))
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	if !m.app.Menu().Hidden() {
		b.WriteString(m.menuView())
		b.WriteString("\n")
	}

	switch {
	case m.loading:
		b.WriteString(statusStyle.Render("  Loading…"))
		b.WriteString("\n")
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
		b.WriteString("\n")
	}

	if page != nil {
		if len(page.Entries) == 0 {
			b.WriteString(statusStyle.Render("  No entries"))
			b.WriteString("\n")
		}
		for i, e := range page.Entries {
			prefix := "  "
			title := e.Title
			if i == m.entry {
				prefix = cursorStyle.Render("> ")
				title = cursorStyle.Render(title)
			}
			b.WriteString(prefix + title + "\n")
			if e.Teaser != "" {
				b.WriteString("  " + teaserStyle.Render(e.Teaser) + "\n")
			}
		}
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

func (m Model) menuView() string {
	var lines []string
	for i, f := range m.app.AllFeeds() {
		if i == m.feed {
			lines = append(lines, cursorStyle.Render("> "+f.DisplayName()))
		} else {
			lines = append(lines, "  "+f.DisplayName())
		}
	}
	return menuStyle.Render(strings.Join(lines, "\n"))
}

// Run starts the browser on the terminal.
func Run(ctx context.Context, app App) error {
	_, err := tea.NewProgram(NewModel(ctx, app), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
