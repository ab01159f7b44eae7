package explain

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/moolen/sparkmap/internal/config"
	"github.com/moolen/sparkmap/internal/models"
)

const ollamaDefaultModel = "llama3.1:latest"

// ollamaProvider explains findings via a local ollama instance. The host
// comes from the config, falling back to the OLLAMA_HOST environment
// variable and the ollama default.
type ollamaProvider struct {
	client *api.Client
	model  string
}

func newOllamaProvider(cfg config.ExplainConfig) (*ollamaProvider, error) {
	var client *api.Client
	if cfg.Host != "" {
		u, err := url.Parse(cfg.Host)
		if err != nil {
			return nil, fmt.Errorf("ollama: bad host %q: %w", cfg.Host, err)
		}
		client = api.NewClient(u, nil)
	} else {
		c, err := api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("ollama client init: %w", err)
		}
		client = c
	}

	model := cfg.Model
	if model == "" {
		model = ollamaDefaultModel
	}
	return &ollamaProvider{client: client, model: model}, nil
}

// Name implements Provider.
func (p *ollamaProvider) Name() string {
	return "ollama"
}

// ExplainFinding implements Provider.
func (p *ollamaProvider) ExplainFinding(ctx context.Context, summary models.FindingSummary) (string, error) {
	return p.generate(ctx, buildPrompt(summary))
}

// Summarize implements Provider.
func (p *ollamaProvider) Summarize(ctx context.Context, overall models.Severity, findings []models.FindingSummary) (string, error) {
	return p.generate(ctx, buildSummaryPrompt(overall, findings))
}

func (p *ollamaProvider) generate(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  p.model,
		System: systemPrompt,
		Prompt: prompt,
		Stream: &stream,
	}

	var out strings.Builder
	if err := p.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		out.WriteString(resp.Response)
		return nil
	}); err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	return strings.TrimSpace(out.String()), nil
}
