package utils

import (
	"context"
	"io"
	"regexp"
	"strings"
)

// chunkPattern matches the upstream chunked wire encoding: a numeric prefix
// followed by a quoted text segment, e.g. `0:"Hello"`.
var chunkPattern = regexp.MustCompile(`\d+:"(.*?)"`)

// CleanStreamResponse extracts plain text from the bracketed chunk format.
// Input that does not match the format at all is returned unchanged.
func CleanStreamResponse(response string) string {
	matches := chunkPattern.FindAllStringSubmatch(response, -1)
	if len(matches) == 0 {
		return response
	}

	var b strings.Builder
	for _, m := range matches {
		b.WriteString(m[1])
	}
	return b.String()
}

const (
	relayChunkBuffer = 8
	relayReadSize    = 4096
)

// StreamRelay forwards an upstream byte stream chunk by chunk while
// accumulating the full text for persistence after the stream ends. One
// goroutine reads upstream and feeds a bounded channel; the caller drains
// the channel to the client. Cancel stops the upstream read, which is how
// a client disconnect propagates back to the upstream connection.
type StreamRelay struct {
	chunks chan []byte
	cancel context.CancelFunc

	// written only by the pump goroutine, read after chunks is closed
	accum strings.Builder
	err   error
}

// NewStreamRelay starts relaying from body. The relay owns body and closes
// it when the pump goroutine exits.
func NewStreamRelay(ctx context.Context, body io.ReadCloser) *StreamRelay {
	ctx, cancel := context.WithCancel(ctx)
	r := &StreamRelay{
		chunks: make(chan []byte, relayChunkBuffer),
		cancel: cancel,
	}
	go r.pump(ctx, body)
	return r
}

func (r *StreamRelay) pump(ctx context.Context, body io.ReadCloser) {
	defer close(r.chunks)
	defer body.Close()

	buf := make([]byte, relayReadSize)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			r.accum.Write(chunk)

			select {
			case r.chunks <- chunk:
			case <-ctx.Done():
				r.err = ctx.Err()
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				r.err = err
			}
			return
		}
	}
}

// Chunks is the outbound stream. It closes when the upstream ends, fails,
// or the relay is cancelled; check Err afterwards.
func (r *StreamRelay) Chunks() <-chan []byte {
	return r.chunks
}

// Cancel aborts the upstream read. Safe to call more than once.
func (r *StreamRelay) Cancel() {
	r.cancel()
}

// Err reports why the stream ended. Only valid after Chunks has closed;
// nil means the upstream completed cleanly.
func (r *StreamRelay) Err() error {
	return r.err
}

// Text returns the full accumulated stream content. Only valid after
// Chunks has closed.
func (r *StreamRelay) Text() string {
	return r.accum.String()
}
