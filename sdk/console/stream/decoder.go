package stream

import "strings"

const (
	dataPrefix   = "data:"
	doneSentinel = "[DONE]"
)

// Decoder splits raw transport chunks into complete SSE frame payloads.
//
// The transport may cut a logical line anywhere, including mid-JSON, so the
// decoder carries the trailing incomplete line across calls. It performs no
// I/O; feeding it the same lines in one chunk or one byte at a time yields
// the same payload sequence.
type Decoder struct {
	pending string
}

// Feed consumes the next raw chunk and returns the payloads of every
// complete "data:" line it finishes. Non-"data:" lines (keep-alives,
// comments) and the legacy "[DONE]" sentinel are dropped. A trailing
// incomplete line is buffered, never emitted.
func (d *Decoder) Feed(chunk string) []string {
	d.pending += chunk

	var payloads []string
	for {
		i := strings.IndexByte(d.pending, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimSuffix(d.pending[:i], "\r")
		d.pending = d.pending[i+1:]

		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
		if payload == "" || payload == doneSentinel {
			continue
		}
		payloads = append(payloads, payload)
	}
	return payloads
}

// Pending returns the buffered incomplete line. Useful for diagnostics when
// a stream ends mid-frame.
func (d *Decoder) Pending() string {
	return d.pending
}
