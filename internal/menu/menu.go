// ABOUTME: Menu visibility state, hidden until the menu icon is clicked
// ABOUTME: Exposes the state both as a boolean and as the body class a page renders

package menu

import "sync"

// HiddenClass is the body class present while the menu is hidden.
const HiddenClass = "menu-hidden"

// Menu tracks whether the feed menu is hidden.
type Menu struct {
	mu     sync.RWMutex
	hidden bool
}

// New returns a hidden menu.
func New() *Menu {
	return &Menu{hidden: true}
}

// Click flips visibility, as a click on the menu icon does, and returns the new hidden state.
func (m *Menu) Click() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hidden = !m.hidden
	return m.hidden
}

// Hide hides the menu.
func (m *Menu) Hide() {
	m.mu.Lock()
	m.hidden = true
	m.mu.Unlock()
}

// Show reveals the menu.
func (m *Menu) Show() {
	m.mu.Lock()
	m.hidden = false
	m.mu.Unlock()
}

// Hidden reports whether the menu is hidden.
func (m *Menu) Hidden() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hidden
}

// BodyClass returns HiddenClass while hidden and "" otherwise.
func (m *Menu) BodyClass() string {
	if m.Hidden() {
		return HiddenClass
	}
	return ""
}
