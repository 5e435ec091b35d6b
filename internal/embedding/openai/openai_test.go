package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	t.Setenv("TEST_EMBED_KEY", "secret")
	c, err := NewClient(Config{BaseURL: srv.URL, APIKeyEnv: "TEST_EMBED_KEY"})
	require.NoError(t, err)
	return c
}

func TestNewClient_MissingKey(t *testing.T) {
	_, err := NewClient(Config{APIKeyEnv: "TEST_EMBED_KEY_UNSET"})
	assert.Error(t, err)
}

func TestEmbed_OpenAIShape(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []interface{}{map[string]interface{}{"embedding": []float64{0.1, 0.2}}},
		})
	})

	vecs, err := c.Embed(context.Background(), []string{"ก", "ข"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0.1, 0.2}, {0.1, 0.2}}, vecs)
	assert.Equal(t, 2, c.Dimension())
}

func TestEmbed_OllamaShapeAfterRetry(t *testing.T) {
	var calls atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"embedding": []float64{1, 2, 3}})
	})

	vecs, err := c.Embed(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, vecs[0])
	assert.Equal(t, int32(2), calls.Load())
}

func TestEmbed_ClientError(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.Embed(context.Background(), []string{"x"})
	assert.Error(t, err)
}

func TestEmbed_BatchesInIndexOrder(t *testing.T) {
	var calls atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var body struct {
			Input []string `json:"input"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body.Input, 2)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []interface{}{
				map[string]interface{}{"index": 1, "embedding": []float64{0, 1}},
				map[string]interface{}{"index": 0, "embedding": []float64{1, 0}},
			},
		})
	})

	vecs, err := c.Embed(context.Background(), []string{"ก", "ข"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0}, {0, 1}}, vecs)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetryDelay(t *testing.T) {
	assert.Equal(t, 200*time.Millisecond, retryDelay(0, nil))
	assert.Equal(t, 5*time.Second, retryDelay(10, nil))
	assert.Equal(t, 2*time.Second, retryDelay(0, &retryableError{status: "429", retryAfter: "2"}))
}
