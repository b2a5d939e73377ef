// Package gemini implements flashcard drafting against Google's Gemini API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/prepdeck/prepdeck-api/internal/config"
	"github.com/prepdeck/prepdeck-api/internal/domain"
	"github.com/prepdeck/prepdeck-api/internal/generation"
	"github.com/prepdeck/prepdeck-api/internal/platform/logger"
)

// Verify interface satisfaction at compile time
var _ generation.Generator = (*GeminiGenerator)(nil)

const (
	defaultModel = "gemini-2.0-flash"

	maxRetries     = 2
	baseRetryDelay = 2 * time.Second
)

// promptTemplate asks for a strict JSON batch so the response parses without
// any free-text stripping.
const promptTemplate = `You are drafting study flashcards for the "{{.DomainName}}" knowledge area of a professional certification exam.
{{if .Topic}}Focus on the subtopic: {{.Topic}}.
{{end}}Write exactly {{.Count}} flashcards. Each card has a clear question on the front and a concise, factually correct answer on the back. Assign each card a difficulty of EASY, MEDIUM, or HARD.

Respond with JSON only, in this shape:
{"cards": [{"front": "...", "back": "...", "difficulty": "MEDIUM"}]}`

type promptData struct {
	DomainName string
	Topic      string
	Count      int
}

type draftSchema struct {
	Front      string `json:"front"`
	Back       string `json:"back"`
	Difficulty string `json:"difficulty"`
}

type responseSchema struct {
	Cards []draftSchema `json:"cards"`
}

// GeminiGenerator drafts flashcards with the Gemini API. Drafted cards are
// inactive until an author approves them.
type GeminiGenerator struct {
	client *genai.Client
	model  string
	tmpl   *template.Template
	logger *slog.Logger
}

// NewGeminiGenerator creates a generator from the LLM configuration.
// Returns ErrInvalidConfig if the API key is missing.
func NewGeminiGenerator(
	ctx context.Context,
	cfg config.LLMConfig,
	log *slog.Logger,
) (*GeminiGenerator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key is empty", generation.ErrInvalidConfig)
	}
	if log == nil {
		log = slog.Default()
	}

	model := cfg.ModelName
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create client: %v", generation.ErrInvalidConfig, err)
	}

	return &GeminiGenerator{
		client: client,
		model:  model,
		tmpl:   template.Must(template.New("drafts").Parse(promptTemplate)),
		logger: log.With(slog.String("component", "gemini_generator")),
	}, nil
}

// DraftCards implements generation.Generator.
func (g *GeminiGenerator) DraftCards(
	ctx context.Context,
	req generation.DraftRequest,
) ([]*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	prompt, err := buildPrompt(g.tmpl, req)
	if err != nil {
		return nil, err
	}

	log.Debug("drafting flashcards",
		slog.String("domain", req.Domain.Name),
		slog.Int("count", req.Count),
		slog.String("model", g.model))

	parsed, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	cards, err := parseDrafts(parsed, req.Domain.ID)
	if err != nil {
		return nil, err
	}

	log.Info("flashcards drafted",
		slog.String("domain", req.Domain.Name),
		slog.Int("drafted", len(cards)))
	return cards, nil
}

// callWithRetry calls the model, retrying transient failures with exponential
// backoff and jitter. Blocked or malformed responses return immediately.
func (g *GeminiGenerator) callWithRetry(ctx context.Context, prompt string) (*responseSchema, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := float64(baseRetryDelay) * math.Pow(2, float64(attempt-1))
			delay := time.Duration(backoff * (0.5 + rng.Float64()*0.5))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
			}
		}

		parsed, err := g.callOnce(ctx, prompt)
		if err == nil {
			return parsed, nil
		}
		if errors.Is(err, generation.ErrContentBlocked) ||
			errors.Is(err, generation.ErrInvalidResponse) {
			return nil, err
		}

		lastErr = err
		log.Warn("gemini call failed",
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()))
	}

	return nil, fmt.Errorf("%w: exhausted %d attempts: %v",
		generation.ErrTransientFailure, maxRetries+1, lastErr)
}

func (g *GeminiGenerator) callOnce(ctx context.Context, prompt string) (*responseSchema, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt),
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"})
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates", generation.ErrInvalidResponse)
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: safety filter", generation.ErrContentBlocked)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("%w: empty response text", generation.ErrInvalidResponse)
	}

	var parsed responseSchema
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrInvalidResponse, err)
	}
	return &parsed, nil
}

// buildPrompt renders the draft prompt. Returns ErrInvalidRequest for an
// unusable request.
func buildPrompt(tmpl *template.Template, req generation.DraftRequest) (string, error) {
	if req.Domain == nil {
		return "", fmt.Errorf("%w: domain is nil", generation.ErrInvalidRequest)
	}
	if req.Count <= 0 {
		return "", fmt.Errorf("%w: count must be positive", generation.ErrInvalidRequest)
	}

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, promptData{
		DomainName: req.Domain.Name,
		Topic:      req.Topic,
		Count:      req.Count,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}

// parseDrafts turns a model response into inactive domain cards. Any invalid
// card fails the whole batch; partial draft sets are worse than a clean retry.
func parseDrafts(resp *responseSchema, domainID uuid.UUID) ([]*domain.Flashcard, error) {
	if resp == nil || len(resp.Cards) == 0 {
		return nil, fmt.Errorf("%w: no cards in response", generation.ErrInvalidResponse)
	}

	cards := make([]*domain.Flashcard, 0, len(resp.Cards))
	for i, draft := range resp.Cards {
		card, err := domain.NewFlashcard(
			domainID,
			strings.TrimSpace(draft.Front),
			strings.TrimSpace(draft.Back),
			parseDifficulty(draft.Difficulty),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: card %d: %v", generation.ErrInvalidResponse, i, err)
		}
		card.Active = false
		cards = append(cards, card)
	}
	return cards, nil
}

// parseDifficulty maps the model's difficulty tag to a domain value, falling
// back to medium for anything unrecognized.
func parseDifficulty(s string) domain.Difficulty {
	d := domain.Difficulty(strings.ToUpper(strings.TrimSpace(s)))
	if d.Valid() {
		return d
	}
	return domain.DifficultyMedium
}
