package completion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newTestClient(t *testing.T, key string, handler http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(ts.Close)

	c := newClient(Config{APIKey: key, BaseURL: ts.URL + "/v1", Model: "test-model"}, ts.Client())
	return c, &hits
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]string{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	})
}

func TestNewClient(t *testing.T) {
	c := NewClient(Config{APIKey: "sk-test", Model: "gpt-4-turbo-preview"})
	require.NotNil(t, c)
	assert.True(t, c.Configured())
	assert.Equal(t, "gpt-4-turbo-preview", c.Model())

	assert.False(t, NewClient(Config{}).Configured())
}

func TestComplete_Success(t *testing.T) {
	var got capturedRequest
	c, hits := newTestClient(t, "sk-test", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeCompletion(w, `{"performance":80}`)
	})

	text, err := c.Complete(context.Background(), "system text", "user text")
	require.NoError(t, err)
	assert.Equal(t, `{"performance":80}`, text)
	assert.EqualValues(t, 1, hits.Load())

	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "system text", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "user text", got.Messages[1].Content)
}

func TestComplete_MissingKeyMakesNoCall(t *testing.T) {
	c, hits := newTestClient(t, "", func(w http.ResponseWriter, _ *http.Request) {
		writeCompletion(w, "{}")
	})

	_, err := c.Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Zero(t, hits.Load())
}

func TestComplete_StatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "rate limited json body", status: http.StatusTooManyRequests, body: `{"error":{"message":"Rate limit reached","type":"requests"}}`},
		{name: "payment required json body", status: http.StatusPaymentRequired, body: `{"error":{"message":"Insufficient credits","type":"billing"}}`},
		{name: "bad gateway plain body", status: http.StatusBadGateway, body: `upstream unavailable`},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":{"message":"Incorrect API key provided"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, "sk-test", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.Complete(context.Background(), "s", "u")
			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr), "got %T: %v", err, err)
			assert.Equal(t, tt.status, statusErr.StatusCode)
		})
	}
}

func TestComplete_NoChoices(t *testing.T) {
	c, _ := newTestClient(t, "sk-test", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	})

	_, err := c.Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestComplete_EmptyContent(t *testing.T) {
	c, _ := newTestClient(t, "sk-test", func(w http.ResponseWriter, _ *http.Request) {
		writeCompletion(w, "")
	})

	_, err := c.Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestComplete_TransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	c := newClient(Config{APIKey: "sk-test", BaseURL: ts.URL + "/v1", Model: "m"}, ts.Client())
	ts.Close()

	_, err := c.Complete(context.Background(), "s", "u")
	require.Error(t, err)

	var statusErr *StatusError
	assert.False(t, errors.As(err, &statusErr), "transport failures carry no status")
}

func TestStatusError_Error(t *testing.T) {
	assert.Equal(t, "completion: API returned status 503", (&StatusError{StatusCode: 503}).Error())
	assert.Equal(t, "completion: API returned status 429: slow down", (&StatusError{StatusCode: 429, Message: "slow down"}).Error())
}
