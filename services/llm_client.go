package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/debugtutor/backend/config"
	"github.com/debugtutor/backend/models"
	"github.com/debugtutor/backend/observability"
	"github.com/debugtutor/backend/utils"
)

const (
	completionMaxTokens   = 2000
	completionTemperature = 0.7
	completionTopP        = 0.9
)

// Client executes tutoring prompts against an OpenRouter-style chat
// completion backend, in buffered or streaming mode. Configuration fields
// are read-only after construction except for the deprecated SetAPIKey
// path; that update is not safe concurrently with in-flight requests.
type Client struct {
	mu      sync.RWMutex
	apiKey  string
	baseURL string
	model   string

	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int

	// baseDelay is the 1-unit backoff base: rate-limit retries double it
	// per attempt, timeout and network retries use it fixed. sleep is
	// swapped out in tests.
	baseDelay time.Duration
	sleep     func(time.Duration)

	logger *utils.Logger
}

// NewClient creates a completion client from configuration. A missing API
// key is not an error here: requests fail with a ConfigurationError until
// a credential is provided.
func NewClient(cfg *config.Config, logger *utils.Logger) *Client {
	if logger == nil {
		logger = utils.GetLogger()
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 3
	}

	perMinute := cfg.RateLimitPerMinute
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60.0)
	}

	return &Client{
		apiKey:  cfg.OpenRouterAPIKey,
		baseURL: cfg.OpenRouterBaseURL,
		model:   cfg.OpenRouterModel,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		limiter:    rate.NewLimiter(limit, 10),
		maxRetries: maxRetries,
		baseDelay:  time.Second,
		sleep:      time.Sleep,
		logger:     logger,
	}
}

// IsConfigured reports whether a credential is set.
func (c *Client) IsConfigured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey != ""
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// SetAPIKey replaces the credential at runtime.
//
// Deprecated: prefer environment-provided configuration at construction.
// Last write wins; callers must not race this with in-flight requests.
func (c *Client) SetAPIKey(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apiKey = key
}

// completionRequest is the JSON body sent to the backend.
type completionRequest struct {
	Model       string                    `json:"model"`
	Messages    []models.ConversationTurn `json:"messages"`
	MaxTokens   int                       `json:"max_tokens"`
	Temperature float64                   `json:"temperature"`
	TopP        float64                   `json:"top_p"`
	Stream      bool                      `json:"stream"`
}

// completionResponse is the non-streaming response envelope.
type completionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// errorEnvelope is the provider-supplied error body on non-2xx statuses.
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// send runs the shared retry loop and returns the raw HTTP response on
// success. Retry policy per failure class:
//
//   - missing credential: fail immediately (configuration error)
//   - 429: exponential backoff, base delay doubling per attempt
//   - timeout / transport error: fixed base delay
//   - any other non-2xx: fail immediately, no retry
func (c *Client) send(ctx context.Context, messages []models.ConversationTurn, stream bool) (*http.Response, error) {
	c.mu.RLock()
	apiKey := c.apiKey
	c.mu.RUnlock()

	if apiKey == "" {
		return nil, &ConfigurationError{}
	}

	payload, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   completionMaxTokens,
		Temperature: completionTemperature,
		TopP:        completionTopP,
		Stream:      stream,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request payload: %w", err)
	}

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("building request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if isTimeout(err) {
				if attempt < c.maxRetries-1 {
					c.retryWait(attempt, utils.FixedBackoff(c.baseDelay, false), "timeout")
					continue
				}
				return nil, &TimeoutError{Attempts: c.maxRetries}
			}
			if attempt < c.maxRetries-1 {
				c.retryWait(attempt, utils.FixedBackoff(c.baseDelay, false), "network")
				continue
			}
			return nil, &NetworkError{Attempts: c.maxRetries, Cause: err}
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp, nil

		case resp.StatusCode == http.StatusTooManyRequests:
			drain(resp)
			if attempt < c.maxRetries-1 {
				delay := utils.ExponentialBackoff(attempt+1, c.baseDelay, 0, 2.0, false)
				c.retryWait(attempt, delay, "rate_limit")
				continue
			}
			return nil, &RateLimitError{Attempts: c.maxRetries}

		default:
			message := providerErrorMessage(resp)
			drain(resp)
			return nil, &RequestError{StatusCode: resp.StatusCode, Message: message}
		}
	}

	return nil, ErrRetriesExhausted
}

// complete executes a buffered request and extracts the text payload.
func (c *Client) complete(ctx context.Context, messages []models.ConversationTurn) (string, error) {
	resp, err := c.send(ctx, messages, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var envelope completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", &ResponseFormatError{Message: err.Error()}
	}
	if len(envelope.Choices) == 0 {
		return "", &ResponseFormatError{Message: "response contains no choices"}
	}

	return envelope.Choices[0].Message.Content, nil
}

// stream executes a streaming request and hands ownership of the live
// connection to the returned CompletionStream.
func (c *Client) stream(ctx context.Context, messages []models.ConversationTurn) (*CompletionStream, error) {
	resp, err := c.send(ctx, messages, true)
	if err != nil {
		return nil, err
	}
	return newCompletionStream(resp.Body), nil
}

func (c *Client) retryWait(attempt int, delay time.Duration, reason string) {
	observability.CompletionRetriesTotal.WithLabelValues(reason).Inc()
	c.logger.WithSource("llm_client").Warn("Request failed, retrying", map[string]interface{}{
		"attempt":     attempt + 1,
		"max_retries": c.maxRetries,
		"reason":      reason,
		"retry_delay": delay.String(),
	})
	c.sleep(delay)
}

// providerErrorMessage extracts the provider error text from a non-2xx
// body, tolerating absent or malformed bodies.
func providerErrorMessage(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return ""
	}
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	return envelope.Error.Message
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4*1024))
	resp.Body.Close()
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
