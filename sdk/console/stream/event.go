// Package stream implements the SSE consumer shared by every streaming
// surface of the console: chat, single-agent runs, and multi-agent
// collaboration. It turns incrementally delivered "data: {json}" frames into
// a typed event sequence and accumulates them into a Transcript that a UI
// can snapshot at any point.
package stream

import (
	"log/slog"

	"github.com/tidwall/gjson"
)

// Kind discriminates stream event kinds.
type Kind string

const (
	KindToken      Kind = "token"
	KindThinking   Kind = "thinking"
	KindToolCall   Kind = "tool_call"
	KindToolResult Kind = "tool_result"
	KindAgentStep  Kind = "agent_step"
	KindCompletion Kind = "completion"
	KindError      Kind = "error"
)

// Event is the interface for stream event discrimination.
type Event interface {
	EventKind() Kind
}

// Token is an incremental piece of generated text.
type Token struct {
	Text string
}

// EventKind returns the event kind.
func (Token) EventKind() Kind { return KindToken }

// ThinkingStep marks an intermediate reasoning pass on the backend.
type ThinkingStep struct {
	Iteration int
}

// EventKind returns the event kind.
func (ThinkingStep) EventKind() Kind { return KindThinking }

// ToolCall reports that the backend is invoking a named capability.
type ToolCall struct {
	Tool      string
	Arguments map[string]any
}

// EventKind returns the event kind.
func (ToolCall) EventKind() Kind { return KindToolCall }

// ToolResult is the outcome of a prior ToolCall.
type ToolResult struct {
	Tool      string
	Result    any
	Succeeded bool
}

// EventKind returns the event kind.
func (ToolResult) EventKind() Kind { return KindToolResult }

// AgentStep is a progress marker in a multi-agent or multi-step plan.
type AgentStep struct {
	Role            string
	Iteration       int
	TotalIterations int
}

// EventKind returns the event kind.
func (AgentStep) EventKind() Kind { return KindAgentStep }

// Completion is the terminal success event. FinalText may be empty, in which
// case the transcript's accumulated text is the answer.
type Completion struct {
	FinalText string
	ToolsUsed []string
	ElapsedMs int64
}

// EventKind returns the event kind.
func (Completion) EventKind() Kind { return KindCompletion }

// StreamError is the terminal failure event.
type StreamError struct {
	Message string
}

// EventKind returns the event kind.
func (StreamError) EventKind() Kind { return KindError }

// IsTerminal reports whether ev ends a transcript.
func IsTerminal(ev Event) bool {
	if ev == nil {
		return false
	}
	k := ev.EventKind()
	return k == KindCompletion || k == KindError
}

// Interpret classifies one decoded frame payload into an Event.
//
// Classification is by the "type" discriminator in the payload. Malformed
// JSON and unrecognized types yield nil rather than an error: streams
// interleave heartbeat and keep-alive frames, and the decoder's line framing
// is the primary defense. Interpret never panics.
func Interpret(payload string) Event {
	if !gjson.Valid(payload) {
		slog.Debug("skipping malformed stream frame", "payload_len", len(payload))
		return nil
	}

	switch gjson.Get(payload, "type").String() {
	case "token":
		return interpretToken(payload)

	case "thinking":
		return ThinkingStep{Iteration: int(gjson.Get(payload, "iteration").Int())}

	case "tool_call":
		args, _ := gjson.Get(payload, "arguments").Value().(map[string]any)
		return ToolCall{
			Tool:      gjson.Get(payload, "tool").String(),
			Arguments: args,
		}

	case "tool_result":
		succeeded := true
		if s := gjson.Get(payload, "success"); s.Exists() {
			succeeded = s.Bool()
		}
		return ToolResult{
			Tool:      gjson.Get(payload, "tool").String(),
			Result:    gjson.Get(payload, "result").Value(),
			Succeeded: succeeded,
		}

	case "agent_step":
		return AgentStep{
			Role:            gjson.Get(payload, "role").String(),
			Iteration:       int(gjson.Get(payload, "iteration").Int()),
			TotalIterations: int(gjson.Get(payload, "total_iterations").Int()),
		}

	case "done", "complete":
		return interpretCompletion(payload)

	case "error":
		msg := gjson.Get(payload, "data").String()
		if msg == "" {
			msg = gjson.Get(payload, "message").String()
		}
		return StreamError{Message: msg}

	default:
		slog.Debug("skipping unknown stream event type",
			"type", gjson.Get(payload, "type").String())
		return nil
	}
}

// interpretToken normalizes the two token shapes observed from different
// backend endpoints: a bare string payload and an object payload with a
// "chunk" or "content" field.
func interpretToken(payload string) Event {
	d := gjson.Get(payload, "data")
	switch {
	case d.Type == gjson.String:
		return Token{Text: d.String()}
	case d.IsObject():
		if c := d.Get("chunk"); c.Exists() {
			return Token{Text: c.String()}
		}
		if c := d.Get("content"); c.Exists() {
			return Token{Text: c.String()}
		}
	}
	slog.Debug("skipping token frame with unrecognized data shape")
	return nil
}

func interpretCompletion(payload string) Event {
	final := gjson.Get(payload, "final_text").String()
	if final == "" {
		final = gjson.Get(payload, "response").String()
	}

	var tools []string
	gjson.Get(payload, "tools_used").ForEach(func(_, v gjson.Result) bool {
		tools = append(tools, v.String())
		return true
	})

	elapsed := gjson.Get(payload, "latency_ms").Int()
	if elapsed == 0 {
		elapsed = gjson.Get(payload, "elapsed_ms").Int()
	}

	return Completion{FinalText: final, ToolsUsed: tools, ElapsedMs: elapsed}
}
