package utils

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestCleanStreamResponse(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "chunked format",
			input: `0:"Hello" 1:" world"`,
			want:  "Hello world",
		},
		{
			name:  "plain text unchanged",
			input: "plain text",
			want:  "plain text",
		},
		{
			name:  "single chunk",
			input: `0:"only"`,
			want:  "only",
		},
		{
			name:  "chunks without separators",
			input: `0:"a"1:"b"2:"c"`,
			want:  "abc",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CleanStreamResponse(tc.input)
			if got != tc.want {
				t.Errorf("CleanStreamResponse(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestStreamRelayForwardsAndAccumulates(t *testing.T) {
	payload := strings.Repeat("chunky stream data ", 1000)
	relay := NewStreamRelay(context.Background(), io.NopCloser(strings.NewReader(payload)))

	var forwarded strings.Builder
	for chunk := range relay.Chunks() {
		forwarded.Write(chunk)
	}

	if err := relay.Err(); err != nil {
		t.Fatalf("unexpected relay error: %v", err)
	}
	if forwarded.String() != payload {
		t.Errorf("forwarded %d bytes, want %d", forwarded.Len(), len(payload))
	}
	if relay.Text() != payload {
		t.Errorf("accumulated %d bytes, want %d", len(relay.Text()), len(payload))
	}
}

type failingReader struct {
	data string
	read bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.read {
		r.read = true
		n := copy(p, r.data)
		return n, nil
	}
	return 0, errors.New("connection reset")
}

func (r *failingReader) Close() error { return nil }

func TestStreamRelayReadError(t *testing.T) {
	relay := NewStreamRelay(context.Background(), &failingReader{data: "partial"})

	var forwarded strings.Builder
	for chunk := range relay.Chunks() {
		forwarded.Write(chunk)
	}

	if err := relay.Err(); err == nil {
		t.Fatal("expected relay error after upstream read failure")
	}
	if forwarded.String() != "partial" {
		t.Errorf("forwarded %q before the failure, want %q", forwarded.String(), "partial")
	}
}

type closeTrackingReader struct {
	io.Reader
	closed chan struct{}
}

func (r *closeTrackingReader) Close() error {
	close(r.closed)
	return nil
}

func TestStreamRelayCancelStopsUpstreamRead(t *testing.T) {
	// Endless upstream: without cancellation the pump would never stop
	body := &closeTrackingReader{
		Reader: &endlessReader{},
		closed: make(chan struct{}),
	}
	relay := NewStreamRelay(context.Background(), body)

	// Take one chunk, then simulate a client disconnect
	<-relay.Chunks()
	relay.Cancel()
	for range relay.Chunks() {
	}

	select {
	case <-body.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("upstream body was not closed after cancel")
	}

	if err := relay.Err(); !errors.Is(err, context.Canceled) {
		t.Errorf("relay error = %v, want context.Canceled", err)
	}
}

type endlessReader struct{}

func (endlessReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 'x'
	}
	return len(p), nil
}
