package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adevbeo/hr-management-platform/internal/config"
	"github.com/adevbeo/hr-management-platform/pkg/retry"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("text generation is not configured")

// TextGenerator produces text for a prompt and reports which model answered.
type TextGenerator interface {
	Generate(ctx context.Context, prompt, system string) (text string, model string, err error)
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClient tries the configured models in order. A model that does not
// exist moves on to the next one; anything else is retried on the same model.
type GeminiClient struct {
	models      contentGenerator
	modelNames  []string
	policy      retry.Policy
	timeout     time.Duration
	temperature float32
	logger      *zap.Logger
}

func NewGeminiClient(cfg *config.Config, logger *zap.Logger) (TextGenerator, error) {
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set, AI features are disabled")
		return &GeminiClient{logger: logger}, nil
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	return newGeminiClient(client.Models, cfg, logger), nil
}

func newGeminiClient(models contentGenerator, cfg *config.Config, logger *zap.Logger) *GeminiClient {
	policy := retry.Policy{
		MaxRetries: cfg.AIMaxRetries,
		BaseDelay:  cfg.AIBaseDelay,
		MaxDelay:   10 * time.Second,
		OnRetry: func(model string, attempt int, delay time.Duration, err error) {
			logger.Warn("Gemini call failed, retrying",
				zap.String("model", model),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(err))
		},
	}
	return &GeminiClient{
		models:      models,
		modelNames:  cfg.GeminiModels,
		policy:      policy,
		timeout:     cfg.AITimeout,
		temperature: 0.2,
		logger:      logger,
	}
}

type generation struct {
	text  string
	model string
}

func (g *GeminiClient) Generate(ctx context.Context, prompt, system string) (string, string, error) {
	if g.models == nil {
		return "", "", ErrNotConfigured
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	out, err := retry.Do(ctx, g.policy, g.modelNames, func(ctx context.Context, model string) (generation, error) {
		callCtx := ctx
		if g.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, g.timeout)
			defer cancel()
		}

		resp, err := g.models.GenerateContent(callCtx, model, contents, cfg)
		if err != nil {
			return generation{}, classify(err)
		}
		text := responseText(resp)
		if text == "" {
			return generation{}, errors.New("empty response from model " + model)
		}
		return generation{text: text, model: model}, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("text generation failed: %w", err)
	}
	return out.text, out.model, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.Text != "" {
				b.WriteString(part.Text)
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	return b.String()
}

// classify reads the status out of the API error text, as in "Error 404, Message: ..., Status: NOT_FOUND".
func classify(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "NOT_FOUND") || strings.Contains(msg, "Error 404"):
		return retry.NotFound(err)
	case strings.Contains(msg, "INVALID_ARGUMENT") || strings.Contains(msg, "PERMISSION_DENIED") ||
		strings.Contains(msg, "UNAUTHENTICATED") || strings.Contains(msg, "Error 400") ||
		strings.Contains(msg, "Error 401") || strings.Contains(msg, "Error 403"):
		return retry.Permanent(err)
	}
	return err
}
