// Package client calls the analysis proxy over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/abdorenouni/WEB-TESTER/internal/model"
	"github.com/abdorenouni/WEB-TESTER/internal/platform/errs"
	"github.com/abdorenouni/WEB-TESTER/internal/platform/requestid"
)

const maxResponseBody = 1 << 20 // 1 MB

var errMissingData = errors.New("client: success response without data")

// Result is a completed analysis together with the URL that was submitted.
type Result struct {
	URL    string
	Report *model.AnalysisReport
}

// Client posts URLs to a running analysis proxy.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New returns a Client for the proxy served at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Analyze normalizes input, submits it, and decodes the envelope. Failure
// envelopes come back as *errs.AppError carrying the proxy's message, with
// Kind recovered from the HTTP status.
func (c *Client) Analyze(ctx context.Context, input string) (*Result, error) {
	target, err := NormalizeURL(input)
	if err != nil {
		return nil, &errs.AppError{Kind: errs.InvalidInput, Message: "Enter a URL to analyze", Cause: err}
	}

	body, err := json.Marshal(model.AnalysisRequest{URL: target})
	if err != nil {
		return nil, fmt.Errorf("client: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("client: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: calling proxy: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var env model.Envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&env); err != nil {
		return nil, fmt.Errorf("client: decoding response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "Analysis failed"
		}
		return nil, &errs.AppError{
			Kind:           errs.KindFromStatus(resp.StatusCode),
			UpstreamStatus: resp.StatusCode,
			Message:        msg,
		}
	}

	if env.Data == nil {
		return nil, errMissingData
	}

	return &Result{URL: target, Report: env.Data}, nil
}
