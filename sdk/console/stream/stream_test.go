package stream

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sseServer returns an httptest server that writes each frame followed by a
// flush, so frames arrive as separate transport chunks.
func sseServer(t *testing.T, frames ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)
		for _, frame := range frames {
			fmt.Fprint(w, frame)
			flusher.Flush()
		}
	}))
}

// collector records notified events in order.
type collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *collector) notify(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *collector) all() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

func waitDone(t *testing.T, h *Handle) {
	t.Helper()
	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not finish in time")
	}
}

func TestStreamEndToEnd(t *testing.T) {
	srv := sseServer(t,
		"data: {\"type\":\"token\",\"data\":\"Hel\"}\n",
		"data: {\"type\":\"token\",\"data\":\"lo\"}\n",
		"data: {\"type\":\"done\",\"tools_used\":[],\"latency_ms\":42}\n",
	)
	defer srv.Close()

	var c collector
	s := NewStreamer()
	h := s.Start(context.Background(), Request{
		URL:    srv.URL,
		Body:   map[string]string{"message": "hi"},
		Notify: c.notify,
	})
	waitDone(t, h)

	assert.Equal(t, StatusCompleted, h.Status())

	events := h.Transcript().Events()
	require.Len(t, events, 3)
	assert.Equal(t, Token{Text: "Hel"}, events[0])
	assert.Equal(t, Token{Text: "lo"}, events[1])
	require.IsType(t, Completion{}, events[2])
	assert.Equal(t, int64(42), events[2].(Completion).ElapsedMs)

	assert.Equal(t, "Hello", h.Transcript().CurrentText())
	assert.Equal(t, events, c.all(), "notify sees the same ordered events")
}

func TestStreamSplitFrameAcrossChunks(t *testing.T) {
	// A single event cut mid-JSON across two flushes must decode once the
	// line completes.
	srv := sseServer(t,
		"data: {\"type\":\"tok",
		"en\",\"data\":\"ab\"}\ndata: {\"type\":\"done\"}\n",
	)
	defer srv.Close()

	h := NewStreamer().Start(context.Background(), Request{URL: srv.URL})
	waitDone(t, h)

	require.Equal(t, StatusCompleted, h.Status())
	events := h.Transcript().Events()
	require.Len(t, events, 2)
	assert.Equal(t, Token{Text: "ab"}, events[0])
}

func TestStreamIgnoresNoiseFrames(t *testing.T) {
	srv := sseServer(t,
		"\n",
		"data: {\"type\":\"heartbeat\"}\n",
		"garbage line\n",
		"data: {\"type\":\"token\",\"data\":\"ok\"}\n",
		"data: [DONE]\n",
		"data: {\"type\":\"done\"}\n",
	)
	defer srv.Close()

	h := NewStreamer().Start(context.Background(), Request{URL: srv.URL})
	waitDone(t, h)

	require.Equal(t, StatusCompleted, h.Status())
	events := h.Transcript().Events()
	require.Len(t, events, 2)
	assert.Equal(t, Token{Text: "ok"}, events[0])
}

func TestStreamHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	h := NewStreamer().Start(context.Background(), Request{URL: srv.URL})
	waitDone(t, h)

	assert.Equal(t, StatusFailed, h.Status())
	events := h.Transcript().Events()
	require.Len(t, events, 1)
	require.IsType(t, StreamError{}, events[0])
	assert.Contains(t, events[0].(StreamError).Message, "502")
}

func TestStreamConnectFailure(t *testing.T) {
	// Nothing listens on this address.
	h := NewStreamer().Start(context.Background(), Request{URL: "http://127.0.0.1:1/chat"})
	waitDone(t, h)

	assert.Equal(t, StatusFailed, h.Status())
	require.Equal(t, 1, h.Transcript().Len())
	require.IsType(t, StreamError{}, h.Transcript().TerminalEvent())
}

func TestStreamBackendErrorFrame(t *testing.T) {
	srv := sseServer(t,
		"data: {\"type\":\"token\",\"data\":\"par\"}\n",
		"data: {\"type\":\"error\",\"data\":\"model overloaded\"}\n",
	)
	defer srv.Close()

	h := NewStreamer().Start(context.Background(), Request{URL: srv.URL})
	waitDone(t, h)

	assert.Equal(t, StatusFailed, h.Status())
	assert.Equal(t, "par", h.Transcript().CurrentText(), "partial output survives failure")
	assert.Equal(t, StreamError{Message: "model overloaded"}, h.Transcript().TerminalEvent())
}

func TestStreamTruncation(t *testing.T) {
	// Server closes the stream after some tokens, without a terminal frame.
	srv := sseServer(t,
		"data: {\"type\":\"token\",\"data\":\"cut \"}\n",
		"data: {\"type\":\"token\",\"data\":\"off\"}\n",
	)
	defer srv.Close()

	h := NewStreamer().Start(context.Background(), Request{URL: srv.URL})
	waitDone(t, h)

	assert.Equal(t, StatusFailed, h.Status())
	assert.Equal(t, "cut off", h.Transcript().CurrentText())

	term := h.Transcript().TerminalEvent()
	require.IsType(t, StreamError{}, term)
	assert.Contains(t, term.(StreamError).Message, "ended before completion")
}

func TestStreamCancelMidStream(t *testing.T) {
	firstToken := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "data: {\"type\":\"token\",\"data\":\"par\"}\n")
		flusher.Flush()
		// Hold the stream open until the client goes away.
		<-r.Context().Done()
	}))
	defer srv.Close()

	var c collector
	h := NewStreamer().Start(context.Background(), Request{URL: srv.URL, Notify: func(ev Event) {
		c.notify(ev)
		select {
		case <-firstToken:
		default:
			close(firstToken)
		}
	}})

	select {
	case <-firstToken:
	case <-time.After(5 * time.Second):
		t.Fatal("never received first token")
	}

	h.Cancel()
	waitDone(t, h)

	assert.Equal(t, StatusCancelled, h.Status())
	// The partial transcript remains valid and no synthetic terminal event
	// is appended for an explicit cancel.
	assert.Equal(t, "par", h.Transcript().CurrentText())
	assert.Nil(t, h.Transcript().TerminalEvent())
	assert.Equal(t, 1, h.Transcript().Len())

	// Idempotent: a second cancel changes nothing.
	h.Cancel()
	assert.Equal(t, StatusCancelled, h.Status())
	assert.Equal(t, 1, h.Transcript().Len())
}

func TestStreamCancelAfterCompletion(t *testing.T) {
	srv := sseServer(t, "data: {\"type\":\"done\",\"latency_ms\":1}\n")
	defer srv.Close()

	h := NewStreamer().Start(context.Background(), Request{URL: srv.URL})
	waitDone(t, h)
	require.Equal(t, StatusCompleted, h.Status())

	h.Cancel()
	assert.Equal(t, StatusCompleted, h.Status(), "cancel after terminal is a no-op")
	assert.Equal(t, 1, h.Transcript().Len())
}

func TestStreamConcurrentHandles(t *testing.T) {
	srv := sseServer(t,
		"data: {\"type\":\"token\",\"data\":\"x\"}\n",
		"data: {\"type\":\"done\"}\n",
	)
	defer srv.Close()

	s := NewStreamer()
	var handles []*Handle
	for i := 0; i < 8; i++ {
		handles = append(handles, s.Start(context.Background(), Request{URL: srv.URL}))
	}
	for _, h := range handles {
		waitDone(t, h)
		assert.Equal(t, StatusCompleted, h.Status())
		assert.Equal(t, "x", h.Transcript().CurrentText())
	}
}

func TestStreamContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	h := NewStreamer().Start(ctx, Request{URL: srv.URL})

	// An external timeout is just a caller that cancels; the stream layer
	// has no timer of its own.
	time.AfterFunc(50*time.Millisecond, cancel)
	waitDone(t, h)

	// Parent context cancellation without Handle.Cancel is a transport
	// failure from the handle's point of view.
	assert.Equal(t, StatusFailed, h.Status())
	require.IsType(t, StreamError{}, h.Transcript().TerminalEvent())
}
