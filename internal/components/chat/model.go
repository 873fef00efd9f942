package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// WelcomeText is shown when the chat is empty.
const WelcomeText = "Ask about tickets, documents, or run an agent.\nEnter: send • Ctrl+C: quit • Ctrl+L: clear"

// Model represents the chat timeline component
type Model struct {
	viewport viewport.Model
	items    []Item
	// index into items of the assistant message currently streaming, or -1
	streamingIdx int
	width        int
	height       int
	ready        bool
}

// New creates a new chat model
func New(width, height int) Model {
	vp := viewport.New(width, height)
	vp.SetContent("")
	vp.YPosition = 0

	return Model{
		viewport:     vp,
		items:        []Item{},
		streamingIdx: -1,
		width:        width,
		height:       height,
		ready:        true,
	}
}

// Init initializes the chat component
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the chat component
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "pgup":
			m.viewport.ViewUp()
		case "pgdown":
			m.viewport.ViewDown()
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the chat component
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return m.viewport.View()
}

// AddUserMessage adds a user message to the timeline
func (m *Model) AddUserMessage(content string) {
	m.items = append(m.items, Message{Role: RoleUser, Content: content})
	m.updateContent()
}

// StartAssistantMessage opens a streaming assistant message. No-op if one
// is already open, so start notifications and early tokens can race safely.
func (m *Model) StartAssistantMessage() {
	if m.streamingIdx >= 0 {
		return
	}
	m.items = append(m.items, Message{Role: RoleAssistant, IsStreaming: true})
	m.streamingIdx = len(m.items) - 1
	m.updateContent()
}

// AppendToken appends incremental text to the streaming assistant message
func (m *Model) AppendToken(text string) {
	if m.streamingIdx < 0 {
		m.StartAssistantMessage()
	}
	msg := m.items[m.streamingIdx].(Message)
	msg.Content += text
	m.items[m.streamingIdx] = msg
	m.updateContent()
}

// AddToolActivity records a tool invocation in the timeline
func (m *Model) AddToolActivity(tool string, args map[string]any) {
	m.items = append(m.items, ToolActivity{Tool: tool, Arguments: args})
	m.updateContent()
}

// CompleteToolActivity marks the most recent pending activity for tool done
func (m *Model) CompleteToolActivity(tool, output string, succeeded bool) {
	for i := len(m.items) - 1; i >= 0; i-- {
		if act, ok := m.items[i].(ToolActivity); ok && act.Tool == tool && !act.Completed {
			act.Output = output
			act.Completed = true
			act.Succeeded = succeeded
			m.items[i] = act
			break
		}
	}
	m.updateContent()
}

// AddStepMarker records an agent/thinking progress line
func (m *Model) AddStepMarker(label string) {
	m.items = append(m.items, StepMarker{Label: label})
	m.updateContent()
}

// EndAssistantMessage closes the streaming assistant message. If finalText
// is non-empty it replaces the accumulated content (the backend may send a
// cleaned-up final answer).
func (m *Model) EndAssistantMessage(finalText string) {
	if m.streamingIdx >= 0 {
		msg := m.items[m.streamingIdx].(Message)
		msg.IsStreaming = false
		if finalText != "" {
			msg.Content = finalText
		}
		m.items[m.streamingIdx] = msg
		m.streamingIdx = -1
	}
	m.updateContent()
}

// SetSize updates the chat dimensions
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.updateContent()
}

// updateContent rebuilds the viewport content from the timeline
func (m *Model) updateContent() {
	var content strings.Builder

	for i, item := range m.items {
		content.WriteString(item.Render(m.width))
		if i < len(m.items)-1 {
			content.WriteString("\n")
		}
	}

	m.viewport.SetContent(content.String())
	m.viewport.GotoBottom()
}

// Clear clears the timeline
func (m *Model) Clear() {
	m.items = []Item{}
	m.streamingIdx = -1
	m.viewport.SetContent("")
}

// IsEmpty returns true if there are no items
func (m Model) IsEmpty() bool {
	return len(m.items) == 0
}
