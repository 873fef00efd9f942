package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/williamcory/console/internal/styles"
)

// Role represents who sent the message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Item is anything renderable in the chat timeline.
type Item interface {
	Render(width int) string
}

// Message represents a chat message
type Message struct {
	Role        Role
	Content     string
	IsStreaming bool
}

// Render renders a message with the given width
func (m Message) Render(width int) string {
	var sb strings.Builder

	switch m.Role {
	case RoleUser:
		sb.WriteString(styles.UserLabel.Render("You"))
		sb.WriteString("\n")
	case RoleAssistant:
		sb.WriteString(styles.AssistantLabel.Render("Assistant"))
		sb.WriteString("\n")
	}

	content := m.Content
	if m.Role == RoleAssistant && content != "" && !m.IsStreaming {
		// Use glamour for markdown rendering once the answer is complete;
		// re-rendering per token is too slow.
		rendered, err := renderMarkdown(content, width-4)
		if err == nil {
			content = strings.TrimSpace(rendered)
		}
	}

	if m.IsStreaming {
		content += styles.StreamingCursor.Render("▊")
	}

	switch m.Role {
	case RoleUser:
		sb.WriteString(styles.UserMessage.Width(width - 2).Render(content))
	case RoleAssistant:
		sb.WriteString(styles.AssistantMessage.Width(width - 2).Render(content))
	}

	return sb.String()
}

// ToolActivity represents a tool invocation and its eventual result.
type ToolActivity struct {
	Tool      string
	Arguments map[string]any
	Output    string
	Completed bool
	Succeeded bool
}

// Render renders a tool activity line
func (t ToolActivity) Render(width int) string {
	var status string
	switch {
	case !t.Completed:
		status = styles.ToolStatus.Render("…")
	case t.Succeeded:
		status = styles.ToolStatus.Render("✓")
	default:
		status = styles.ToolFailed.Render("✗")
	}

	var detail string
	if !t.Completed {
		detail = summarizeArguments(t.Arguments)
	} else {
		detail = truncate(t.Output, 60)
	}

	toolName := styles.ToolName.Render(t.Tool)
	return styles.ToolEvent.Render(fmt.Sprintf("%s %s %s", status, toolName, detail))
}

// StepMarker is a progress line for agent and thinking steps.
type StepMarker struct {
	Label string
}

// Render renders a step marker line
func (s StepMarker) Render(width int) string {
	return styles.AgentStep.Render("› " + s.Label)
}

// summarizeArguments picks the most recognizable argument for display.
func summarizeArguments(args map[string]any) string {
	for _, key := range []string{"query", "ticket_id", "document_id", "file_path", "input"} {
		if v, ok := args[key].(string); ok {
			return truncate(v, 50)
		}
	}
	if len(args) == 0 {
		return ""
	}
	return truncate(fmt.Sprintf("%v", args), 50)
}

// renderMarkdown renders markdown content for the terminal
func renderMarkdown(content string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content, err
	}
	return r.Render(content)
}

// truncate truncates a string to the given length
func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

var (
	_ Item = Message{}
	_ Item = ToolActivity{}
	_ Item = StepMarker{}
)
