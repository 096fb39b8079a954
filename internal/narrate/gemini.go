package narrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/petalworks/bloomcast/backend/pkg/config"
	"github.com/petalworks/bloomcast/backend/pkg/logger"
)

// Streamer is implemented by narrators that can deliver their answer
// incrementally. emit is called once per text chunk, in order; a
// non-nil return from emit aborts the stream.
type Streamer interface {
	SummarizeStream(ctx context.Context, prompt string, emit func(chunk string) error) error
}

// Gemini narrates forecast summaries through the Gemini API. The
// service is external and unreliable: calls fail, and even successful
// calls may return nothing usable, so every path surfaces an explicit
// error instead of assuming well-formed output.
type Gemini struct {
	client *genai.Client
	model  string
	logger *logger.Logger
}

// NewGemini creates a narrator from config.
func NewGemini(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Gemini, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.Gemini.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  cfg.Gemini.Model,
		logger: log,
	}, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// Summarize implements contracts.Narrator.
func (g *Gemini) Summarize(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		g.logger.WithError(err).Error("Narration request failed")
		return "", fmt.Errorf("narration request failed: %w", err)
	}

	text := extractText(resp)
	if strings.TrimSpace(text) == "" {
		g.logger.Warn("Narration service returned empty response")
		return "", fmt.Errorf("narration service returned empty response")
	}

	return text, nil
}

// SummarizeStream implements Streamer. At least one non-empty chunk
// must arrive or the stream counts as failed.
func (g *Gemini) SummarizeStream(ctx context.Context, prompt string, emit func(chunk string) error) error {
	model := g.client.GenerativeModel(g.model)
	iter := model.GenerateContentStream(ctx, genai.Text(prompt))

	emitted := false
	for {
		resp, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			g.logger.WithError(err).Error("Narration stream failed")
			return fmt.Errorf("narration stream failed: %w", err)
		}

		chunk := extractText(resp)
		if chunk == "" {
			continue
		}
		if err := emit(chunk); err != nil {
			return err
		}
		emitted = true
	}

	if !emitted {
		g.logger.Warn("Narration stream produced no text")
		return fmt.Errorf("narration service returned empty response")
	}
	return nil
}

// extractText flattens the candidate parts into plain text. Anything
// that is not text is ignored.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return b.String()
}
