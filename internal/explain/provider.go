// Package explain optionally annotates findings with natural-language
// explanations from an LLM provider. The layer is strictly additive: it
// consumes finding summaries, never raw event data, and its output lives
// beside the report, never inside it. A provider failure degrades to a
// report without explanations.
package explain

import (
	"context"

	"github.com/moolen/sparkmap/internal/config"
	"github.com/moolen/sparkmap/internal/models"
)

// Provider generates explanations for findings. Implementations must be
// safe for sequential reuse across findings of one run.
type Provider interface {
	// Name returns the provider name for logging and metadata
	Name() string

	// ExplainFinding returns a short explanation of one finding
	ExplainFinding(ctx context.Context, summary models.FindingSummary) (string, error)

	// Summarize returns an overall assessment of the run's findings
	Summarize(ctx context.Context, overall models.Severity, findings []models.FindingSummary) (string, error)
}

// NewProvider constructs the configured provider. Selection is explicit;
// an empty provider name means explanations are disabled and the caller
// gets nil without error.
func NewProvider(cfg config.ExplainConfig) (Provider, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "anthropic":
		return newAnthropicProvider(cfg)
	case "ollama":
		return newOllamaProvider(cfg)
	case "gemini":
		return newGeminiProvider(cfg)
	default:
		return nil, config.NewConfigError("unknown explain provider %q", cfg.Provider)
	}
}
