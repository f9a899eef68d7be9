package services

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventFeed(frames ...string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(strings.Join(frames, "")))
}

func contentFrame(content string) string {
	return `data: {"choices":[{"delta":{"content":"` + content + `"}}]}` + "\n\n"
}

func TestCompletionStream_Recv(t *testing.T) {
	stream := newCompletionStream(eventFeed(
		contentFrame("Hello"),
		contentFrame(", world"),
		"data: [DONE]\n\n",
	))

	fragment, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "Hello", fragment)

	fragment, err = stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, ", world", fragment)

	_, err = stream.Recv()
	assert.Equal(t, io.EOF, err)

	// Subsequent calls keep reporting EOF.
	_, err = stream.Recv()
	assert.Equal(t, io.EOF, err)
}

func TestCompletionStream_Collect(t *testing.T) {
	stream := newCompletionStream(eventFeed(
		contentFrame("ab"),
		contentFrame("cd"),
		"data: [DONE]\n\n",
	))

	out, err := stream.Collect()
	require.NoError(t, err)
	assert.Equal(t, "abcd", out)
}

func TestCompletionStream_SkipsMalformedFrames(t *testing.T) {
	stream := newCompletionStream(eventFeed(
		"data: {not json}\n\n",
		contentFrame("ok"),
		"data: [DONE]\n\n",
	))

	out, err := stream.Collect()
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestCompletionStream_SkipsFramesWithoutContent(t *testing.T) {
	stream := newCompletionStream(eventFeed(
		`data: {"choices":[]}`+"\n\n",
		`data: {"choices":[{"delta":{}}]}`+"\n\n",
		contentFrame("only"),
		"data: [DONE]\n\n",
	))

	out, err := stream.Collect()
	require.NoError(t, err)
	assert.Equal(t, "only", out)
}

func TestCompletionStream_EmptyContentDelivered(t *testing.T) {
	// An explicit empty delta is a real fragment, distinct from an absent one.
	stream := newCompletionStream(eventFeed(
		`data: {"choices":[{"delta":{"content":""}}]}`+"\n\n",
		"data: [DONE]\n\n",
	))

	fragment, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "", fragment)

	_, err = stream.Recv()
	assert.Equal(t, io.EOF, err)
}

func TestCompletionStream_NonDataLinesIgnored(t *testing.T) {
	stream := newCompletionStream(eventFeed(
		": keepalive comment\n\n",
		"event: message\n",
		contentFrame("x"),
		"data: [DONE]\n\n",
	))

	out, err := stream.Collect()
	require.NoError(t, err)
	assert.Equal(t, "x", out)
}

func TestCompletionStream_EOFWithoutTerminator(t *testing.T) {
	stream := newCompletionStream(eventFeed(contentFrame("tail")))

	fragment, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "tail", fragment)

	_, err = stream.Recv()
	assert.Equal(t, io.EOF, err)
}

func TestCompletionStream_CloseIsIdempotent(t *testing.T) {
	stream := newCompletionStream(eventFeed(contentFrame("x"), "data: [DONE]\n\n"))

	require.NoError(t, stream.Close())
	require.NoError(t, stream.Close())

	_, err := stream.Recv()
	assert.Equal(t, io.EOF, err)
}
