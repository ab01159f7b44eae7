package explain

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"github.com/moolen/sparkmap/internal/config"
	"github.com/moolen/sparkmap/internal/models"
)

const geminiDefaultModel = "gemini-2.0-flash"

// geminiProvider explains findings via the Gemini API. The API key is
// read from the GEMINI_API_KEY environment variable.
type geminiProvider struct {
	client *genai.Client
	model  string
}

func newGeminiProvider(cfg config.ExplainConfig) (*geminiProvider, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client init: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = geminiDefaultModel
	}
	return &geminiProvider{client: client, model: model}, nil
}

// Name implements Provider.
func (p *geminiProvider) Name() string {
	return "gemini"
}

// ExplainFinding implements Provider.
func (p *geminiProvider) ExplainFinding(ctx context.Context, summary models.FindingSummary) (string, error) {
	return p.generate(ctx, buildPrompt(summary))
}

// Summarize implements Provider.
func (p *geminiProvider) Summarize(ctx context.Context, overall models.Severity, findings []models.FindingSummary) (string, error) {
	return p.generate(ctx, buildSummaryPrompt(overall, findings))
}

func (p *geminiProvider) generate(ctx context.Context, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: empty response")
	}
	return strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text), nil
}
