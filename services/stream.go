package services

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
	"sync"
)

const (
	streamDataPrefix = "data: "
	streamTerminator = "[DONE]"
)

// streamFrame is one data-prefixed frame of the event feed. Content is a
// pointer so an absent delta can be told apart from an empty one.
type streamFrame struct {
	Choices []struct {
		Delta struct {
			Content *string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// CompletionStream is a single-pass, forward-only sequence of text
// fragments over one live connection. Fragments arrive strictly in order
// and no buffering happens beyond the frame being parsed, so backpressure
// follows the consumer's pace.
//
// The connection is released on whichever comes first: the feed is
// exhausted, the terminator frame is seen, or the consumer calls Close.
// Callers that stop early must call Close.
type CompletionStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner

	mu     sync.Mutex
	closed bool
}

func newCompletionStream(body io.ReadCloser) *CompletionStream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &CompletionStream{
		body:    body,
		scanner: scanner,
	}
}

// Recv returns the next content fragment. It reports io.EOF once the feed
// terminates, after which the connection has been released. Frames without
// a content delta and frames that fail to parse are skipped, not fatal.
func (s *CompletionStream) Recv() (string, error) {
	if s.isClosed() {
		return "", io.EOF
	}

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" || !strings.HasPrefix(line, streamDataPrefix) {
			continue
		}

		data := strings.TrimPrefix(line, streamDataPrefix)
		if data == streamTerminator {
			s.Close()
			return "", io.EOF
		}

		var frame streamFrame
		if err := json.Unmarshal([]byte(data), &frame); err != nil {
			// Malformed frames are skipped silently.
			continue
		}
		if len(frame.Choices) == 0 || frame.Choices[0].Delta.Content == nil {
			continue
		}

		return *frame.Choices[0].Delta.Content, nil
	}

	err := s.scanner.Err()
	s.Close()
	if err != nil {
		return "", err
	}
	return "", io.EOF
}

// Collect drains the stream and concatenates all remaining fragments.
func (s *CompletionStream) Collect() (string, error) {
	var out strings.Builder
	for {
		fragment, err := s.Recv()
		if err == io.EOF {
			return out.String(), nil
		}
		if err != nil {
			return out.String(), err
		}
		out.WriteString(fragment)
	}
}

// Close releases the underlying connection. It is idempotent and safe to
// call from a deferred abandonment path.
func (s *CompletionStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}

func (s *CompletionStream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
