package mock

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williamcory/console/sdk/console"
	"github.com/williamcory/console/sdk/console/stream"
)

func waitDone(t *testing.T, h *stream.Handle) {
	t.Helper()
	select {
	case <-h.Done():
	case <-time.After(15 * time.Second):
		t.Fatal("stream did not finish")
	}
}

func TestMockChatRoundTrip(t *testing.T) {
	srv := httptest.NewServer(NewServer(0).Handler())
	defer srv.Close()

	client := console.NewClient(srv.URL)
	handle := client.StreamChat(context.Background(), &console.ChatRequest{Message: "hello"}, nil)
	waitDone(t, handle)

	require.Equal(t, stream.StatusCompleted, handle.Status())

	tr := handle.Transcript()
	term := tr.TerminalEvent()
	require.IsType(t, stream.Completion{}, term)
	assert.NotEmpty(t, tr.CurrentText())

	// The heartbeat frame and keep-alive line must not show up as events.
	for _, ev := range tr.Events() {
		assert.Contains(t, []stream.Kind{
			stream.KindToken, stream.KindToolCall, stream.KindToolResult,
			stream.KindCompletion,
		}, ev.EventKind())
	}
}

func TestMockChatWithToolTimeline(t *testing.T) {
	srv := httptest.NewServer(NewServer(0).Handler())
	defer srv.Close()

	client := console.NewClient(srv.URL)
	handle := client.StreamChat(context.Background(), &console.ChatRequest{Message: "look at this ticket"}, nil)
	waitDone(t, handle)

	require.Equal(t, stream.StatusCompleted, handle.Status())

	var calls, results int
	for _, ev := range handle.Transcript().Events() {
		switch ev.EventKind() {
		case stream.KindToolCall:
			calls++
			assert.Equal(t, "ticket_lookup", ev.(stream.ToolCall).Tool)
		case stream.KindToolResult:
			results++
			assert.True(t, ev.(stream.ToolResult).Succeeded)
		}
	}
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, results)

	term := handle.Transcript().TerminalEvent().(stream.Completion)
	assert.Equal(t, []string{"ticket_lookup"}, term.ToolsUsed)
}

func TestMockAgentRun(t *testing.T) {
	srv := httptest.NewServer(NewServer(0).Handler())
	defer srv.Close()

	client := console.NewClient(srv.URL)
	handle := client.RunAgent(context.Background(), "researcher", &console.AgentRunRequest{Input: "plan"}, nil)
	waitDone(t, handle)

	require.Equal(t, stream.StatusCompleted, handle.Status())

	var steps []stream.AgentStep
	for _, ev := range handle.Transcript().Events() {
		if step, ok := ev.(stream.AgentStep); ok {
			steps = append(steps, step)
		}
	}
	require.Len(t, steps, 3)
	assert.Equal(t, "researcher", steps[0].Role)
	assert.Equal(t, 1, steps[0].Iteration)
	assert.Equal(t, 3, steps[2].Iteration)
	assert.Equal(t, 3, steps[2].TotalIterations)
}
