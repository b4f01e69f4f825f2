package azure

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/brandreview/pkg/llm"
)

func newTestClient(srv *httptest.Server, retries int) *Client {
	c := New(srv.URL+"/", "gpt-4o", "secret", "", 2*time.Second, retries)
	c.backoff = func(int) time.Duration { return time.Millisecond }
	return c
}

func TestClient_URL(t *testing.T) {
	c := New("https://example.openai.azure.com/", "gpt-4o", "k", "", 0, 0)
	assert.Equal(t,
		"https://example.openai.azure.com/openai/deployments/gpt-4o/chat/completions?api-version=2024-08-01-preview",
		c.URL())
}

func TestClient_CompleteVision(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/openai/deployments/gpt-4o/chat/completions", r.URL.Path)
		assert.Equal(t, "2024-08-01-preview", r.URL.Query().Get("api-version"))
		assert.Equal(t, "secret", r.Header.Get("api-key"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"{\"complianceScore\":90}"}}]}`))
	}))
	defer srv.Close()

	out, err := newTestClient(srv, 0).Complete(context.Background(), llm.Request{
		Messages: []llm.Message{
			llm.TextMessage(llm.RoleSystem, "sys"),
			llm.VisionMessage("check", "data:image/png;base64,AAAA", "high"),
		},
		MaxTokens:   800,
		Temperature: 0.15,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"complianceScore":90}`, out)

	assert.EqualValues(t, 800, got["max_tokens"])
	assert.InDelta(t, 0.15, got["temperature"], 0.001)
	msgs := got["messages"].([]any)
	require.Len(t, msgs, 2)
	parts := msgs[1].(map[string]any)["content"].([]any)
	img := parts[1].(map[string]any)["image_url"].(map[string]any)
	assert.Equal(t, "data:image/png;base64,AAAA", img["url"])
	assert.Equal(t, "high", img["detail"])
}

func TestClient_StatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, llm.ErrInvalidAPIKey},
		{http.StatusNotFound, llm.ErrDeploymentNotFound},
		{http.StatusTooManyRequests, llm.ErrRateLimited},
		{http.StatusBadRequest, llm.ErrUpstream},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"error":{"code":"x","message":"content filter triggered"}}`))
			}))
			defer srv.Close()

			_, err := newTestClient(srv, 0).Complete(context.Background(), llm.Request{})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestClient_UpstreamMessageIsKept(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"content filter triggered"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv, 0).Complete(context.Background(), llm.Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content filter triggered")
}

func TestClient_RetriesOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	out, err := newTestClient(srv, 2).Complete(context.Background(), llm.Request{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestClient_NoRetryOnAuthError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv, 3).Complete(context.Background(), llm.Request{})
	assert.ErrorIs(t, err, llm.ErrInvalidAPIKey)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestClient_EmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  "}}]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv, 0).Complete(context.Background(), llm.Request{})
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "d", "k", "", 50*time.Millisecond, 0)
	_, err := c.Complete(context.Background(), llm.Request{})
	assert.ErrorIs(t, err, llm.ErrTimeout)
}

func TestClient_MissingKey(t *testing.T) {
	c := New("http://localhost", "d", "", "", 0, 0)
	_, err := c.Complete(context.Background(), llm.Request{})
	assert.ErrorIs(t, err, llm.ErrInvalidAPIKey)
}
