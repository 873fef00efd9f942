package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// Status of a streaming request handle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusStreaming Status = "streaming"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// terminal reports whether s is a terminal handle status.
func (s Status) terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Request describes one streaming request.
type Request struct {
	// Method defaults to POST.
	Method string
	URL    string
	// Body is JSON-encoded when non-nil.
	Body any
	// Notify, when set, is invoked from the read loop for every event
	// accepted into the transcript, in order. It must not block for long;
	// the loop is serialized behind it.
	Notify func(Event)
}

// Handle represents one in-flight or completed streaming request. It is
// created by Streamer.Start and owns its Transcript, decoder buffer, and
// cancellation state; callers hold it only to observe and cancel.
type Handle struct {
	transcript *Transcript

	mu     sync.Mutex
	status Status
	cancel context.CancelFunc

	done chan struct{}
}

// Transcript returns the transcript fed by this handle's read loop.
func (h *Handle) Transcript() *Transcript {
	return h.transcript
}

// Status returns the handle's current lifecycle status.
func (h *Handle) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// Done is closed when the read loop has exited and the status is terminal.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Cancel aborts the underlying transport read. It is idempotent, and a
// no-op once the handle has reached a terminal status. Events appended
// before cancellation remain in the transcript; no synthetic terminal event
// is added for an explicit cancel.
func (h *Handle) Cancel() {
	h.mu.Lock()
	if h.status.terminal() {
		h.mu.Unlock()
		return
	}
	h.status = StatusCancelled
	cancel := h.cancel
	h.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// transition moves the handle to next unless a terminal status was already
// reached (e.g. a concurrent Cancel). Returns whether the move happened.
func (h *Handle) transition(next Status) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status.terminal() {
		return false
	}
	h.status = next
	return true
}

func (h *Handle) cancelled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status == StatusCancelled
}

// Streamer drives streaming requests end-to-end: it opens the connection,
// feeds transport chunks to a Decoder, decoded payloads to Interpret, and
// events to the handle's Transcript. One Streamer may serve many concurrent
// handles; each handle gets its own read loop and decoder buffer.
type Streamer struct {
	httpClient *http.Client
}

// StreamerOption configures a Streamer.
type StreamerOption func(*Streamer)

// WithHTTPClient sets a custom HTTP client. The client's timeout applies to
// the whole stream, so it is usually left at zero.
func WithHTTPClient(c *http.Client) StreamerOption {
	return func(s *Streamer) {
		s.httpClient = c
	}
}

// NewStreamer creates a Streamer.
func NewStreamer(opts ...StreamerOption) *Streamer {
	s := &Streamer{
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins a streaming request and returns its handle immediately.
//
// Start never returns an error: transport-level failures (connect error,
// non-2xx status, mid-stream read error, truncation) surface as a single
// synthetic StreamError terminal event in the transcript and a "failed"
// status. A caller distinguishes completed from failed by the terminal
// event's kind, never by the absence of further events.
func (s *Streamer) Start(ctx context.Context, req Request) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		transcript: NewTranscript(),
		status:     StatusPending,
		cancel:     cancel,
		done:       make(chan struct{}),
	}

	go func() {
		defer close(h.done)
		defer cancel()
		s.run(ctx, h, req)
	}()

	return h
}

func (s *Streamer) run(ctx context.Context, h *Handle, req Request) {
	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	var bodyReader io.Reader
	if req.Body != nil {
		jsonBody, err := json.Marshal(req.Body)
		if err != nil {
			s.fail(h, req.Notify, fmt.Sprintf("marshal request body: %v", err))
			return
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, bodyReader)
	if err != nil {
		s.fail(h, req.Notify, fmt.Sprintf("create request: %v", err))
		return
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		if h.cancelled() {
			return
		}
		s.fail(h, req.Notify, fmt.Sprintf("request failed: %v", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		s.fail(h, req.Notify, fmt.Sprintf("HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(body)))
		return
	}

	if !h.transition(StatusStreaming) {
		return
	}

	s.readLoop(h, req, resp.Body)
}

// readLoop pumps transport chunks through the decoder and interpreter into
// the transcript until a terminal event, read error, or cancellation.
// Cancellation is cooperative: checked once per chunk, so a cancel takes
// effect without draining a fully buffered response.
func (s *Streamer) readLoop(h *Handle, req Request, body io.Reader) {
	dec := &Decoder{}
	buf := make([]byte, 4096)

	for {
		if h.cancelled() {
			return
		}

		n, err := body.Read(buf)
		if n > 0 {
			for _, payload := range dec.Feed(string(buf[:n])) {
				ev := Interpret(payload)
				if ev == nil || !h.transcript.Append(ev) {
					continue
				}
				if req.Notify != nil {
					req.Notify(ev)
				}
				if IsTerminal(ev) {
					if ev.EventKind() == KindError {
						h.transition(StatusFailed)
					} else {
						h.transition(StatusCompleted)
					}
					return
				}
			}
		}

		if err != nil {
			if h.cancelled() {
				return
			}
			if err == io.EOF {
				// The server closed the stream without a terminal event.
				// Surface the truncation instead of silently stopping.
				s.fail(h, req.Notify, "stream ended before completion")
			} else {
				s.fail(h, req.Notify, fmt.Sprintf("stream read: %v", err))
			}
			return
		}
	}
}

// fail appends a synthetic StreamError and moves the handle to failed,
// unless a terminal status (e.g. cancelled) was reached first.
func (s *Streamer) fail(h *Handle, notify func(Event), msg string) {
	if !h.transition(StatusFailed) {
		return
	}
	ev := StreamError{Message: msg}
	if h.transcript.Append(ev) && notify != nil {
		notify(ev)
	}
}
