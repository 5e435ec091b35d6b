package gemini

import (
	"context"
	"strings"
)

const DefaultGenerateModel = "gemini-2.0-flash"

// Generator implements domain.Generator.
type Generator struct {
	client      *Client
	model       string
	temperature float64
}

func NewGenerator(client *Client, model string, temperature float64) *Generator {
	if model == "" {
		model = DefaultGenerateModel
	}
	return &Generator{client: client, model: model, temperature: temperature}
}

func (g *Generator) Model() string { return g.model }

// Generate sends system as the system instruction and prompt as the user turn.
func (g *Generator) Generate(ctx context.Context, system, prompt string) (string, error) {
	temp := g.temperature
	req := generateRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{Temperature: &temp},
	}
	if system != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}
	text, err := g.client.generate(ctx, g.model, req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
