package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/williamcory/console/internal/messages"
	"github.com/williamcory/console/sdk/console"
	"github.com/williamcory/console/sdk/console/stream"
)

// Update handles all application messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// Reserve space for header, input, and status bar.
		chatHeight := msg.Height - 9
		if chatHeight < 5 {
			chatHeight = 5
		}

		m.chat.SetSize(msg.Width, chatHeight)
		m.input.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			if m.state == StateStreaming && m.handle != nil {
				m.handle.Cancel()
				return m, nil
			}
			return m, tea.Quit

		case "enter":
			if m.state != StateStreaming && strings.TrimSpace(m.input.Value()) != "" {
				return m.sendMessage()
			}

		case "ctrl+l":
			if m.state != StateStreaming {
				m.chat.Clear()
				m.err = nil
				m.stats = ""
				m.state = StateIdle
				return m, nil
			}
		}

	case messages.StreamStartMsg:
		m.state = StateStreaming
		m.err = nil
		m.stats = ""
		m.progress = ""
		m.chat.StartAssistantMessage()
		return m, nil

	case messages.StreamEventMsg:
		return m.handleStreamEvent(msg.Event)

	case messages.StreamEndedMsg:
		return m.handleStreamEnded(msg.Status)
	}

	// Update child components when not streaming
	if m.state != StateStreaming {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	// Always allow chat scrolling
	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleStreamEvent renders one transcript event into the timeline.
func (m Model) handleStreamEvent(ev stream.Event) (tea.Model, tea.Cmd) {
	switch ev := ev.(type) {
	case stream.Token:
		m.chat.AppendToken(ev.Text)

	case stream.ThinkingStep:
		m.progress = fmt.Sprintf("thinking (pass %d)", ev.Iteration)

	case stream.ToolCall:
		m.chat.AddToolActivity(ev.Tool, ev.Arguments)

	case stream.ToolResult:
		m.chat.CompleteToolActivity(ev.Tool, fmt.Sprintf("%v", ev.Result), ev.Succeeded)

	case stream.AgentStep:
		m.progress = fmt.Sprintf("%s %d/%d", ev.Role, ev.Iteration, ev.TotalIterations)
		m.chat.AddStepMarker(m.progress)

	case stream.Completion:
		m.chat.EndAssistantMessage(ev.FinalText)
		m.stats = completionStats(ev)

	case stream.StreamError:
		m.err = errors.New(ev.Message)
	}
	return m, nil
}

// handleStreamEnded reconciles the UI with the handle's terminal status.
func (m Model) handleStreamEnded(status stream.Status) (tea.Model, tea.Cmd) {
	m.progress = ""
	m.handle = nil

	switch status {
	case stream.StatusFailed:
		m.state = StateError
		if m.err == nil {
			m.err = errors.New("generation failed")
		}
	case stream.StatusCancelled:
		m.state = StateIdle
		m.stats = "cancelled"
	default:
		m.state = StateIdle
	}

	m.chat.EndAssistantMessage("")
	return m, m.input.Focus()
}

// sendMessage sends the current input to the backend
func (m Model) sendMessage() (tea.Model, tea.Cmd) {
	content := m.input.Value()

	m.chat.AddUserMessage(content)
	m.input.Clear()
	m.input.Blur()

	p := m.shared.GetProgram()
	notify := func(ev stream.Event) {
		if p != nil {
			p.Send(messages.StreamEventMsg{Event: ev})
		}
	}

	handle := m.client.StreamChat(context.Background(), &console.ChatRequest{
		Message: content,
	}, notify)
	m.handle = handle

	start := func() tea.Msg { return messages.StreamStartMsg{} }
	// Report the terminal status back into the event loop.
	wait := func() tea.Msg {
		<-handle.Done()
		return messages.StreamEndedMsg{Status: handle.Status()}
	}
	return m, tea.Batch(start, wait)
}

// completionStats formats the terminal event's metadata for the status bar.
func completionStats(done stream.Completion) string {
	parts := []string{fmt.Sprintf("%dms", done.ElapsedMs)}
	if len(done.ToolsUsed) > 0 {
		parts = append(parts, "tools: "+strings.Join(done.ToolsUsed, ", "))
	}
	return strings.Join(parts, " • ")
}
