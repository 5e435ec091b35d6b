package gemini

import (
	"context"
	"fmt"
)

const (
	DefaultEmbedModel = "text-embedding-004"
	embedBatchSize    = 100
)

// Embedder implements domain.Embedder on batchEmbedContents.
type Embedder struct {
	client    *Client
	model     string
	dimension int
}

func NewEmbedder(client *Client, model string) *Embedder {
	if model == "" {
		model = DefaultEmbedModel
	}
	return &Embedder{client: client, model: model}
}

func (e *Embedder) Name() string { return "gemini" }

// Prepare is a no-op; the dimension is learned from the first response.
func (e *Embedder) Prepare([]string) error { return nil }

func (e *Embedder) Dimension() int { return e.dimension }

type embedRequest struct {
	Model   string  `json:"model"`
	Content content `json:"content"`
}

type batchEmbedRequest struct {
	Requests []embedRequest `json:"requests"`
}

type batchEmbedResponse struct {
	Embeddings []struct {
		Values []float64 `json:"values"`
	} `json:"embeddings"`
}

// Embed returns one vector per text, in order.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		req := batchEmbedRequest{Requests: make([]embedRequest, 0, end-start)}
		for _, t := range texts[start:end] {
			req.Requests = append(req.Requests, embedRequest{
				Model:   "models/" + e.model,
				Content: content{Parts: []part{{Text: t}}},
			})
		}
		var resp batchEmbedResponse
		if err := e.client.post(ctx, "models/"+e.model+":batchEmbedContents", req, &resp); err != nil {
			return nil, fmt.Errorf("embed: %w", err)
		}
		if len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("embed: got %d vectors for %d texts", len(resp.Embeddings), end-start)
		}
		for _, emb := range resp.Embeddings {
			if e.dimension == 0 {
				e.dimension = len(emb.Values)
			}
			out = append(out, emb.Values)
		}
	}
	return out, nil
}
