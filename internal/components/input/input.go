// Package input wraps a single-line prompt box for the chat view.
package input

import (
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/williamcory/console/internal/styles"
)

// Model is the prompt input component.
type Model struct {
	textarea textarea.Model
	width    int
}

// New creates a new input model.
func New(width int) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask the platform assistant…"
	ta.Prompt = "┃ "
	ta.CharLimit = 4000
	ta.SetWidth(width)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	return Model{textarea: ta, width: width}
}

// Init returns the blink command for the cursor.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles input messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// View renders the input box.
func (m Model) View() string {
	return styles.InputBorder.Width(m.width - 2).Render(m.textarea.View())
}

// Value returns the current input text.
func (m Model) Value() string {
	return m.textarea.Value()
}

// Clear empties the input.
func (m *Model) Clear() {
	m.textarea.Reset()
}

// Focus focuses the input and returns the blink command.
func (m *Model) Focus() tea.Cmd {
	return m.textarea.Focus()
}

// Blur removes focus from the input.
func (m *Model) Blur() {
	m.textarea.Blur()
}

// SetWidth updates the input width.
func (m *Model) SetWidth(width int) {
	m.width = width
	m.textarea.SetWidth(width - 4)
}
