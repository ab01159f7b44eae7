package explain

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/moolen/sparkmap/internal/config"
	"github.com/moolen/sparkmap/internal/models"
)

const anthropicDefaultModel = "claude-sonnet-4-5"

const explainMaxTokens = 1024

// anthropicProvider explains findings via the Anthropic Claude API.
// The API key is read from the ANTHROPIC_API_KEY environment variable.
type anthropicProvider struct {
	client anthropic.Client
	model  string
}

func newAnthropicProvider(cfg config.ExplainConfig) (*anthropicProvider, error) {
	model := cfg.Model
	if model == "" {
		model = anthropicDefaultModel
	}
	return &anthropicProvider{
		client: anthropic.NewClient(),
		model:  model,
	}, nil
}

// Name implements Provider.
func (p *anthropicProvider) Name() string {
	return "anthropic"
}

// ExplainFinding implements Provider.
func (p *anthropicProvider) ExplainFinding(ctx context.Context, summary models.FindingSummary) (string, error) {
	return p.generate(ctx, buildPrompt(summary))
}

// Summarize implements Provider.
func (p *anthropicProvider) Summarize(ctx context.Context, overall models.Severity, findings []models.FindingSummary) (string, error) {
	return p.generate(ctx, buildSummaryPrompt(overall, findings))
}

func (p *anthropicProvider) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: explainMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call failed: %w", err)
	}

	var parts []string
	for i := range resp.Content {
		block := &resp.Content[i]
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "")), nil
}
