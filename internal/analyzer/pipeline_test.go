package analyzer

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/abdorenouni/WEB-TESTER/internal/completion"
	"github.com/abdorenouni/WEB-TESTER/internal/insight"
	"github.com/abdorenouni/WEB-TESTER/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI serves /v1/chat/completions with a fixed status and either an
// error body or a completion whose content is reply.
func fakeAPI(t *testing.T, status int, reply string) (string, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = io.WriteString(w, `{"error":{"message":"upstream says no"}}`)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(ts.Close)
	return ts.URL + "/v1", &hits
}

func newPipeline(apiKey, baseURL string) http.Handler {
	logger := slog.New(slog.DiscardHandler)
	client := completion.NewClient(completion.Config{APIKey: apiKey, BaseURL: baseURL, Model: "gpt-4-turbo-preview"})
	engine := insight.NewEngine(client, logger)
	return NewTransport(NewService(engine, logger), logger).Handler()
}

func serve(h http.Handler, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPipeline_FencedReply(t *testing.T) {
	reply := "```json\n{\"performance\":80,\"security\":70,\"accessibility\":90,\"seo\":60,\"issues\":[],\"summary\":\"ok\"}\n```"
	baseURL, hits := fakeAPI(t, http.StatusOK, reply)

	rec := serve(newPipeline("sk-test", baseURL), http.MethodPost, `{"url":"https://example.com"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"success":true,"data":{"performance":80,"security":70,"accessibility":90,"seo":60,"issues":[],"summary":"ok"}}`,
		rec.Body.String())
	assert.EqualValues(t, 1, hits.Load())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestPipeline_UpstreamStatuses(t *testing.T) {
	tests := []struct {
		name       string
		upstream   int
		wantStatus int
		wantError  string
	}{
		{"rate limited", http.StatusTooManyRequests, http.StatusTooManyRequests, "Rate limit exceeded. Please try again in a moment."},
		{"credits exhausted", http.StatusPaymentRequired, http.StatusPaymentRequired, "AI credits exhausted. Please add credits to continue."},
		{"gateway failure", http.StatusBadGateway, http.StatusInternalServerError, "AI gateway error: 502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			baseURL, _ := fakeAPI(t, tt.upstream, "")

			rec := serve(newPipeline("sk-test", baseURL), http.MethodPost, `{"url":"https://example.com"}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var env model.Envelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantError, env.Error)
		})
	}
}

func TestPipeline_UnparsableReply(t *testing.T) {
	baseURL, _ := fakeAPI(t, http.StatusOK, "not json at all")

	rec := serve(newPipeline("sk-test", baseURL), http.MethodPost, `{"url":"https://example.com"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Failed to parse analysis results"}`, rec.Body.String())
}

func TestPipeline_NoNetworkCallOnBadInputOrConfig(t *testing.T) {
	tests := []struct {
		name       string
		apiKey     string
		body       string
		wantStatus int
		wantError  string
	}{
		{"absent url", "sk-test", `{}`, http.StatusBadRequest, "URL is required"},
		{"empty url", "sk-test", `{"url":""}`, http.StatusBadRequest, "URL is required"},
		{"missing key", "", `{"url":"https://example.com"}`, http.StatusInternalServerError, "API key is not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			baseURL, hits := fakeAPI(t, http.StatusOK, "{}")

			rec := serve(newPipeline(tt.apiKey, baseURL), http.MethodPost, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, `{"success":false,"error":"`+tt.wantError+`"}`, rec.Body.String())
			assert.Zero(t, hits.Load())
		})
	}
}

func TestPipeline_Preflight(t *testing.T) {
	baseURL, hits := fakeAPI(t, http.StatusOK, "{}")

	rec := serve(newPipeline("sk-test", baseURL), http.MethodOptions, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "authorization, x-client-info, apikey, content-type", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Zero(t, hits.Load())
}

func TestPipeline_ResponseShapeIsStable(t *testing.T) {
	reply := `{"performance":42,"security":43,"accessibility":44,"seo":45,"issues":[{"type":"info","message":"m","count":1}],"summary":"s"}`
	baseURL, _ := fakeAPI(t, http.StatusOK, reply)
	h := newPipeline("sk-test", baseURL)

	keys := func() []string {
		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(serve(h, http.MethodPost, `{"url":"https://example.com"}`).Body.Bytes(), &raw))
		var data map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw["data"], &data))
		var out []string
		for k := range data {
			out = append(out, k)
		}
		return out
	}

	assert.ElementsMatch(t, keys(), keys())
}
