// Package completion talks to an OpenAI-compatible chat-completion API.
package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

var (
	// ErrMissingAPIKey is returned before any network call when no key is configured.
	ErrMissingAPIKey = errors.New("completion: API key is not configured")
	// ErrEmptyCompletion is returned when the API answers without any message text.
	ErrEmptyCompletion = errors.New("completion: response has no message content")
)

// StatusError reports a non-success HTTP status from the completion API.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("completion: API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("completion: API returned status %d: %s", e.StatusCode, e.Message)
}

// Config selects the endpoint, credentials and model.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client implements a single-shot, non-streaming chat completion.
// It is safe for concurrent use and holds no per-request state.
type Client struct {
	api   *openai.Client
	model string
	ready bool
}

// NewClient returns a Client for cfg. The underlying http.Client has no
// overall timeout: a completion runs until the API answers, the connection
// fails, or ctx ends.
func NewClient(cfg Config) *Client {
	return newClient(cfg, &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	})
}

func newClient(cfg Config, httpClient *http.Client) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	apiCfg.HTTPClient = httpClient

	return &Client{
		api:   openai.NewClientWithConfig(apiCfg),
		model: cfg.Model,
		ready: cfg.APIKey != "",
	}
}

// Configured reports whether an API key is available.
func (c *Client) Configured() bool {
	return c.ready
}

// Model returns the model name sent with every request.
func (c *Client) Model() string {
	return c.model
}

// Complete sends the system and user messages and returns the text of the
// first choice.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if !c.ready {
		return "", ErrMissingAPIKey
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", classify(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}

	return resp.Choices[0].Message.Content, nil
}

// classify turns go-openai's status-bearing errors into a StatusError and
// wraps everything else.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &StatusError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		msg := ""
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return &StatusError{StatusCode: reqErr.HTTPStatusCode, Message: msg}
	}

	return fmt.Errorf("completion: request failed: %w", err)
}
