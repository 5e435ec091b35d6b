// Package gemini is a small REST client for the Gemini generateContent and
// batchEmbedContents endpoints, used for PDF OCR, embeddings and answers.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"thai-legal-rag/internal/logger"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Config configures Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// MaxRetries bounds retries on 429, 5xx and transport errors.
	MaxRetries int
	// RequestsPerMinute paces calls across all keys; 0 disables pacing.
	RequestsPerMinute int
}

// Client sends JSON requests with key rotation, pacing and backoff.
type Client struct {
	baseURL    string
	keys       *KeyRotator
	http       *http.Client
	maxRetries int
	limiter    *rate.Limiter
	log        *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) { c.log = logger.OrNop(l) }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// NewClient fails with ErrNoAPIKeys when keys is empty.
func NewClient(keys *KeyRotator, cfg Config, opts ...ClientOption) (*Client, error) {
	if keys.Len() == 0 {
		return nil, ErrNoAPIKeys
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	c := &Client{
		baseURL:    cfg.BaseURL,
		keys:       keys,
		http:       &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
		log:        zap.NewNop(),
	}
	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// APIError is a non-retryable HTTP failure.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini: HTTP %d: %s", e.Status, e.Body)
}

// post sends body to {baseURL}/{path} and decodes the response into out.
// Each attempt takes the next key, so a rate-limited key is skipped on retry.
func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	url := c.baseURL + "/" + path

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		key, err := c.keys.Next()
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", key)

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := c.backoff(ctx, attempt, ""); err != nil {
				return err
			}
			continue
		}

		payload, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = &APIError{Status: resp.StatusCode, Body: truncate(string(payload), 300)}
			c.log.Warn("gemini request throttled or failed, retrying",
				zap.String("path", path), zap.Int("status", resp.StatusCode), zap.Int("attempt", attempt))
			if attempt == c.maxRetries {
				break
			}
			if err := c.backoff(ctx, attempt, resp.Header.Get("Retry-After")); err != nil {
				return err
			}
			continue
		}
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode, Body: truncate(string(payload), 300)}
		}
		if readErr != nil {
			lastErr = readErr
			if err := c.backoff(ctx, attempt, ""); err != nil {
				return err
			}
			continue
		}
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("gemini: retries exhausted: %w", lastErr)
}

func (c *Client) backoff(ctx context.Context, attempt int, retryAfter string) error {
	d := retryDelay(attempt)
	if retryAfter != "" {
		if secs, err := strconv.Atoi(retryAfter); err == nil {
			d = time.Duration(secs) * time.Second
		}
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	// exponential backoff capped at 5s
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature *float64 `json:"temperature,omitempty"`
}

type generateRequest struct {
	SystemInstruction *content          `json:"system_instruction,omitempty"`
	Contents          []content         `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

func (r generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b bytes.Buffer
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// generate calls models/{model}:generateContent.
func (c *Client) generate(ctx context.Context, model string, req generateRequest) (string, error) {
	var resp generateResponse
	if err := c.post(ctx, "models/"+model+":generateContent", req, &resp); err != nil {
		return "", err
	}
	return resp.text(), nil
}
