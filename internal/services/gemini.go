package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"alfredoptarigan/talentflow/internal/config"
)

const maxEmbeddingInput = 40000

type GeminiService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
	GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32) (string, error)
}

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
	limiter    *rate.Limiter
	retry      config.WorkerConfig
	log        *zap.Logger
}

// NewGeminiService shares one rate limiter between embedding and generation
// calls so the whole process stays under GEMINI_RPM.
func NewGeminiService(ctx context.Context, cfg config.GeminiConfig, retry config.WorkerConfig, log *zap.Logger) (GeminiService, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	log.Info("🤖 Gemini client ready",
		zap.String("chat_model", cfg.ChatModel),
		zap.String("embedding_model", cfg.EmbeddingModel),
		zap.Int("rpm", cfg.RequestsPerMinute),
	)

	return &geminiService{
		client:     client,
		modelName:  cfg.ChatModel,
		embedModel: cfg.EmbeddingModel,
		limiter:    newLimiter(cfg.RequestsPerMinute),
		retry:      retry,
		log:        log,
	}, nil
}

func newLimiter(rpm int) *rate.Limiter {
	if rpm <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
}

func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if len(text) > maxEmbeddingInput {
		text = text[:maxEmbeddingInput]
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return result.Embeddings[0].Values, nil
}

func (g *geminiService) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}
	return text, nil
}

// GenerateTextWithRetry retries with exponential backoff starting at
// RETRY_INITIAL_DELAY.
func (g *geminiService) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32) (string, error) {
	return withRetry(ctx, g.retry.RetryMaxAttempts, g.retry.RetryInitialDelay, g.log, func() (string, error) {
		return g.GenerateText(ctx, prompt, temperature)
	})
}

func withRetry[T any](ctx context.Context, attempts int, delay time.Duration, log *zap.Logger, fn func() (T, error)) (T, error) {
	var zero T
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if attempt == attempts {
			break
		}

		log.Warn("⚠️ Attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, fmt.Errorf("context cancelled: %w", ctx.Err())
		case <-timer.C:
		}
		delay *= 2
	}

	return zero, fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}
