package mock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tidwall/sjson"
)

// streamWriter emits the flattened SSE wire protocol: every event is one
// "data: {json}" line whose "type" field discriminates the payload.
type streamWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newStreamWriter(w http.ResponseWriter) (*streamWriter, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return nil, false
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	return &streamWriter{w: w, flusher: flusher}, true
}

// sendEvent marshals data and stamps the type discriminator into the
// payload, so the frame is self-describing without an "event:" field line.
func (st *streamWriter) sendEvent(eventType string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	payload, err = sjson.SetBytes(payload, "type", eventType)
	if err != nil {
		return
	}
	fmt.Fprintf(st.w, "data: %s\n", payload)
	st.flusher.Flush()
}

// sendKeepAlive writes the blank line some proxies inject between events.
func (st *streamWriter) sendKeepAlive() {
	fmt.Fprint(st.w, "\n")
	st.flusher.Flush()
}

// sendHeartbeat writes a frame with an unrecognized type; consumers must
// drop it silently.
func (st *streamWriter) sendHeartbeat() {
	st.sendEvent("heartbeat", map[string]any{"ts": time.Now().UnixMilli()})
}

// sendDoneSentinel writes the legacy terminator some backends still emit
// after the terminal event.
func (st *streamWriter) sendDoneSentinel() {
	fmt.Fprint(st.w, "data: [DONE]\n")
	st.flusher.Flush()
}

// streamTokens streams text in small batches for a realistic delivery
// pattern, alternating between the two token payload shapes found in the
// wild.
func (st *streamWriter) streamTokens(response string) {
	batchSize := 3
	runes := []rune(response)

	for i := 0; i < len(runes); i += batchSize {
		end := i + batchSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := string(runes[i:end])

		if (i/batchSize)%2 == 0 {
			st.sendEvent("token", map[string]any{"data": chunk})
		} else {
			st.sendEvent("token", map[string]any{"data": map[string]any{"chunk": chunk}})
		}

		delay := 15 * time.Millisecond
		if chunk == "\n" || chunk == "." || chunk == "!" || chunk == "?" {
			delay = 50 * time.Millisecond
		}
		time.Sleep(delay)
	}
}
