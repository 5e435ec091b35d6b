// Package openai embeds text through an OpenAI-compatible /embeddings
// endpoint. Ollama's single-prompt endpoint is accepted too.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"thai-legal-rag/internal/logger"
)

// batchSize bounds the inputs sent in one request.
const batchSize = 64

// Client implements domain.Embedder. Inputs go out in batches until the
// server answers a batch with something other than one vector per input;
// from then on the client sends one prompt per request.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	client     *http.Client
	maxRetries int
	log        *zap.Logger

	mu        sync.Mutex
	dimension int
	single    bool
}

// Config configures the OpenAI-compatible embeddings client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = logger.OrNop(l) }
}

// NewClient reads the API key from cfg.APIKeyEnv.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	c := &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     key,
		model:      cfg.Model,
		client:     &http.Client{Timeout: cfg.Timeout},
		maxRetries: 5,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Name() string { return "openai" }

// Prepare is a no-op; the dimension is learned from the first response.
func (c *Client) Prepare([]string) error { return nil }

func (c *Client) Dimension() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dimension
}

// Embed returns one vector per text, in order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))
		vecs, err := c.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	for _, v := range out {
		if err := c.checkDimension(len(v)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *Client) embedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	c.mu.Lock()
	single := c.single
	c.mu.Unlock()

	if !single && len(texts) > 1 {
		payload, err := c.post(ctx, batchRequest{Input: texts, Model: c.model})
		if err != nil {
			return nil, err
		}
		if vecs := decodeBatch(payload, len(texts)); vecs != nil {
			return vecs, nil
		}
		c.log.Info("embeddings endpoint does not batch, sending one prompt per request", zap.String("url", c.baseURL))
		c.mu.Lock()
		c.single = true
		c.mu.Unlock()
	}

	out := make([][]float64, len(texts))
	for i, text := range texts {
		payload, err := c.post(ctx, promptRequest{Input: text, Prompt: text, Model: c.model})
		if err != nil {
			return nil, err
		}
		v := decodeSingle(payload)
		if len(v) == 0 {
			return nil, errors.New("no embedding returned")
		}
		out[i] = v
	}
	return out, nil
}

func (c *Client) checkDimension(n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dimension == 0 {
		c.dimension = n
		return nil
	}
	if n != c.dimension {
		return fmt.Errorf("embedding dimension changed from %d to %d", c.dimension, n)
	}
	return nil
}

type batchRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

// promptRequest carries both field names: OpenAI reads input, Ollama prompt.
type promptRequest struct {
	Input  string `json:"input,omitempty"`
	Prompt string `json:"prompt,omitempty"`
	Model  string `json:"model"`
}

// post retries transport errors, 429 and 5xx with backoff, honouring Retry-After.
func (c *Client) post(ctx context.Context, body any) ([]byte, error) {
	url := c.baseURL + "/embeddings"
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, retryDelay(attempt-1, lastErr)); err != nil {
				return nil, err
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}
		payload, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = &retryableError{status: resp.Status, retryAfter: resp.Header.Get("Retry-After")}
			c.log.Debug("embeddings request throttled", zap.String("status", resp.Status), zap.Int("attempt", attempt))
			continue
		case resp.StatusCode >= 300:
			return nil, fmt.Errorf("openai embeddings failed: %s", resp.Status)
		case err != nil:
			lastErr = err
			continue
		}
		return payload, nil
	}
	return nil, fmt.Errorf("openai embeddings failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

type retryableError struct {
	status     string
	retryAfter string
}

func (e *retryableError) Error() string { return e.status }

// decodeBatch returns nil unless payload holds exactly n OpenAI embeddings.
func decodeBatch(payload []byte, n int) [][]float64 {
	var out struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &out); err != nil || len(out.Data) != n {
		return nil
	}
	sort.SliceStable(out.Data, func(i, j int) bool { return out.Data[i].Index < out.Data[j].Index })
	vecs := make([][]float64, n)
	for i, d := range out.Data {
		if len(d.Embedding) == 0 {
			return nil
		}
		vecs[i] = d.Embedding
	}
	return vecs
}

// decodeSingle tries the OpenAI shape first, then Ollama's.
func decodeSingle(payload []byte) []float64 {
	var openaiOut struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &openaiOut); err == nil && len(openaiOut.Data) > 0 && len(openaiOut.Data[0].Embedding) > 0 {
		return openaiOut.Data[0].Embedding
	}
	var ollamaOut struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.Unmarshal(payload, &ollamaOut); err == nil {
		return ollamaOut.Embedding
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// retryDelay is exponential from 200ms, capped at 5s, unless the server
// named a Retry-After.
func retryDelay(attempt int, cause error) time.Duration {
	var re *retryableError
	if errors.As(cause, &re) {
		if secs, err := strconv.Atoi(re.retryAfter); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	d := 200 * time.Millisecond << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
