package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/config"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
)

func testClient(baseURL string, attempts int) *OpenAIClient {
	return NewOpenAIClient(&config.OpenAIConfig{
		APIKey:            "sk-test",
		APIBase:           baseURL,
		ChatModel:         "gpt-test",
		EmbeddingModel:    "embed-test",
		BatchSize:         2,
		Timeout:           5,
		Enabled:           true,
		RetryMaxAttempts:  attempts,
		RetryInitialDelay: time.Millisecond,
		RetryMaxDelay:     5 * time.Millisecond,
	}, zerolog.Nop())
}

func completionBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{{"index": 0, "message": map[string]string{"role": "assistant", "content": content}}},
	})
	return string(b)
}

func TestCompleteRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-test", req.Model)
		assert.Len(t, req.Messages, 2)

		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"slow down"}`))
			return
		}
		_, _ = w.Write([]byte(completionBody("готово")))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5)
	out, err := c.Complete(context.Background(), []model.ChatMessage{
		{Role: model.RoleSystem, Content: "sys"},
		{Role: model.RoleUser, Content: "привет"},
	})
	require.NoError(t, err)
	assert.Equal(t, "готово", out)
	assert.EqualValues(t, 3, calls.Load())
}

func TestCompleteRateLimitBudgetExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 3).Complete(context.Background(), []model.ChatMessage{{Role: model.RoleUser, Content: "x"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.EqualValues(t, 3, calls.Load())
}

func TestCompleteServerErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 5).Complete(context.Background(), []model.ChatMessage{{Role: model.RoleUser, Content: "x"}})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "boom", apiErr.Body)
	assert.EqualValues(t, 1, calls.Load())
}

func TestCompleteDisabled(t *testing.T) {
	c := NewOpenAIClient(&config.OpenAIConfig{Enabled: false}, zerolog.Nop())
	_, err := c.Complete(context.Background(), nil)
	assert.ErrorIs(t, err, ErrAPIDisabled)

	_, err = c.CreateEmbeddings(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, ErrAPIDisabled)
}

func TestCreateEmbeddingsBatchesInOrder(t *testing.T) {
	var batches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		batches.Add(1)

		var req EmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		type item struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]item, 0, len(req.Input))
		// reversed on purpose, the client must order by index
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, item{Embedding: []float32{float32(len(req.Input[i]))}, Index: i})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data, "model": req.Model})
	}))
	defer srv.Close()

	out, err := testClient(srv.URL, 1).CreateEmbeddings(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1}, {2}, {3}}, out)
	assert.EqualValues(t, 2, batches.Load())
}
