package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debugtutor/backend/config"
	"github.com/debugtutor/backend/models"
	"github.com/debugtutor/backend/utils"
)

func newTestClient(t *testing.T, baseURL, apiKey string) (*Client, *[]time.Duration) {
	t.Helper()

	cfg := &config.Config{
		OpenRouterAPIKey:  apiKey,
		OpenRouterBaseURL: baseURL,
		OpenRouterModel:   "test-model",
		RequestTimeout:    2 * time.Second,
		MaxRetries:        3,
	}
	client := NewClient(cfg, utils.NewLogger("error", "json"))

	// Shrink the backoff unit and record sleeps instead of waiting.
	var sleeps []time.Duration
	client.baseDelay = time.Millisecond
	client.sleep = func(d time.Duration) {
		sleeps = append(sleeps, d)
	}
	return client, &sleeps
}

func testMessages() []models.ConversationTurn {
	return []models.ConversationTurn{
		{Role: "system", Content: "system prompt"},
		{Role: "user", Content: "user prompt"},
	}
}

func TestClient_Complete_Success(t *testing.T) {
	var gotAuth, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"the answer"}}]}`))
	}))
	defer server.Close()

	client, sleeps := newTestClient(t, server.URL, "test-key")

	answer, err := client.complete(context.Background(), testMessages())

	require.NoError(t, err)
	assert.Equal(t, "the answer", answer)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Empty(t, *sleeps)
}

func TestClient_Complete_NoAPIKey(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, "")

	_, err := client.complete(context.Background(), testMessages())

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "OPENROUTER_API_KEY")
	assert.Zero(t, atomic.LoadInt32(&calls), "no request should be made without a credential")
}

func TestClient_Complete_RateLimitThenSuccess(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"recovered"}}]}`))
	}))
	defer server.Close()

	client, sleeps := newTestClient(t, server.URL, "test-key")

	answer, err := client.complete(context.Background(), testMessages())

	require.NoError(t, err)
	assert.Equal(t, "recovered", answer)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	// Exponential: one unit after the first rejection, two after the second.
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, *sleeps)
}

func TestClient_Complete_RateLimitExhausted(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, sleeps := newTestClient(t, server.URL, "test-key")

	_, err := client.complete(context.Background(), testMessages())

	var rateErr *RateLimitError
	require.ErrorAs(t, err, &rateErr)
	assert.Equal(t, 3, rateErr.Attempts)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	// The terminal attempt does not sleep.
	assert.Len(t, *sleeps, 2)
}

func TestClient_Complete_RequestErrorNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"backend exploded"}}`))
	}))
	defer server.Close()

	client, sleeps := newTestClient(t, server.URL, "test-key")

	_, err := client.complete(context.Background(), testMessages())

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusInternalServerError, reqErr.StatusCode)
	assert.Equal(t, "backend exploded", reqErr.Message)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "non-429 rejections are not retried")
	assert.Empty(t, *sleeps)
}

func TestClient_Complete_MalformedEnvelope(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "<html>gateway error</html>"},
		{name: "empty choices", body: `{"choices":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, _ := newTestClient(t, server.URL, "test-key")

			_, err := client.complete(context.Background(), testMessages())

			var formatErr *ResponseFormatError
			require.ErrorAs(t, err, &formatErr)
		})
	}
}

func TestClient_Complete_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client, sleeps := newTestClient(t, server.URL, "test-key")
	client.httpClient.Timeout = 20 * time.Millisecond

	_, err := client.complete(context.Background(), testMessages())

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 3, timeoutErr.Attempts)
	// Timeout retries wait a fixed unit, no doubling.
	assert.Equal(t, []time.Duration{time.Millisecond, time.Millisecond}, *sleeps)
}

func TestClient_Complete_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	client, sleeps := newTestClient(t, serverURL, "test-key")

	_, err := client.complete(context.Background(), testMessages())

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, 3, netErr.Attempts)
	assert.NotNil(t, netErr.Cause)
	assert.Len(t, *sleeps, 2)
}

func TestClient_Complete_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, "test-key")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.complete(ctx, testMessages())
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestClient_Stream_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(`data: {"choices":[{"delta":{"content":"Hel"}}]}` + "\n\n"))
		w.Write([]byte(`data: {"choices":[{"delta":{"content":"lo"}}]}` + "\n\n"))
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, "test-key")

	stream, err := client.stream(context.Background(), testMessages())
	require.NoError(t, err)
	defer stream.Close()

	out, err := stream.Collect()
	require.NoError(t, err)
	assert.Equal(t, "Hello", out)
}

func TestClient_Stream_ConfigurationError(t *testing.T) {
	client, _ := newTestClient(t, "http://localhost:0", "")

	_, err := client.stream(context.Background(), testMessages())

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestClient_IsConfigured(t *testing.T) {
	client, _ := newTestClient(t, "http://localhost:0", "")
	assert.False(t, client.IsConfigured())

	client.SetAPIKey("late-key")
	assert.True(t, client.IsConfigured())
}

func TestClient_ExplainError_EndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"explained"}}]}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, "test-key")

	analysis := &models.AnalysisResult{
		Language:     "python",
		LineCount:    1,
		SyntaxErrors: []models.Diagnostic{{Line: 1, Message: "invalid syntax", Kind: models.KindSyntaxError}},
		Warnings:     []models.Diagnostic{},
	}

	answer, err := client.ExplainError(context.Background(), "def f(:", "python", analysis)

	require.NoError(t, err)
	assert.Equal(t, "explained", answer)
}
