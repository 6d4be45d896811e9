// Package scoring turns a finished interview into a narrative hiring report.
package scoring

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/voxhire/voxhire/server/domain/entities"
)

// GeminiReporter implements relay.Reporter using Google's Gemini API
type GeminiReporter struct {
	client *genai.Client
	logger *zap.Logger
	model  string
}

// NewGeminiReporter creates a new Gemini-backed reporter.
func NewGeminiReporter(ctx context.Context, apiKey, model string, logger *zap.Logger) (*GeminiReporter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiReporter{
		client: client,
		logger: logger,
		model:  model,
	}, nil
}

// Report produces a short hiring report for the recruiter from the interview
// outcome.
func (r *GeminiReporter) Report(ctx context.Context, lang string, outcome *entities.InterviewOutcome) (string, error) {
	prompt := buildPrompt(lang, outcome)

	result, err := r.client.Models.GenerateContent(ctx, r.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate report: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("generate report: empty response")
	}

	r.logger.Debug("interview report generated",
		zap.String("model", r.model),
		zap.Int("length", len(text)),
	)
	return text, nil
}

func buildPrompt(lang string, outcome *entities.InterviewOutcome) string {
	var b strings.Builder

	if entities.NormalizeLanguage(lang) == "ru" {
		b.WriteString("Ты HR-аналитик. Составь краткий отчёт по итогам голосового интервью для рекрутера.\n")
		b.WriteString("Пиши по-русски, 3-5 абзацев, без приветствий.\n\n")
	} else {
		b.WriteString("You are an HR analyst. Write a concise post-interview report for the recruiter.\n")
		b.WriteString("Write in English, 3-5 paragraphs, no greetings.\n\n")
	}

	fmt.Fprintf(&b, "Overall score: %d/100\n", outcome.Score)
	fmt.Fprintf(&b, "Recommendation: %s\n", outcome.Recommendation)
	fmt.Fprintf(&b, "Decision: %s\n", outcome.Decision)
	if len(outcome.Strengths) > 0 {
		fmt.Fprintf(&b, "Strengths: %s\n", strings.Join(outcome.Strengths, "; "))
	}
	if len(outcome.Weaknesses) > 0 {
		fmt.Fprintf(&b, "Weaknesses: %s\n", strings.Join(outcome.Weaknesses, "; "))
	}
	for _, score := range outcome.Scores {
		fmt.Fprintf(&b, "Question %d: %d/100. %s\n", score.QuestionIndex, score.Score, score.Reasoning)
	}
	fmt.Fprintf(&b, "Conversation items: %d, duration: %s\n", outcome.ConversationItemCount, outcome.Duration)

	return b.String()
}
