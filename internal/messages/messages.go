// Package messages defines the bubbletea messages that bridge the stream
// consumer's events into the UI event loop.
package messages

import "github.com/williamcory/console/sdk/console/stream"

// StreamStartMsg signals that a streaming request was started.
type StreamStartMsg struct{}

// StreamEventMsg carries one event accepted into the transcript.
type StreamEventMsg struct {
	Event stream.Event
}

// StreamEndedMsg signals that the handle reached a terminal status.
type StreamEndedMsg struct {
	Status stream.Status
}
