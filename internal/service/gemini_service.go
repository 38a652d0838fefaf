package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/talentbridge/profile-matcher/internal/config"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiServiceInterface is the Gemini-backed implementation surface used
// by the matching core (embedding encoder + narrative generator).
type GeminiServiceInterface interface {
	Encode(ctx context.Context, text string) ([]float32, error)
	GenerateNarrative(ctx context.Context, prompt string) (string, error)
	ProviderName() string
}

type GeminiService struct {
	client            *genai.Client
	logger            *zap.Logger
	generateModel     string
	embeddingModel    string
	maxRetries        int
	baseDelay         time.Duration
	maxDelay          time.Duration
	requestTimeout    time.Duration
	consecutiveErrors int
	circuitBreakerMax int
}

func NewGeminiService(ctx context.Context, logger *zap.Logger) (*GeminiService, error) {
	geminiConfig := config.LoadGeminiConfig()
	if geminiConfig.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  geminiConfig.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiService{
		client:            client,
		logger:            logger,
		generateModel:     geminiConfig.GenerateModel,
		embeddingModel:    geminiConfig.EmbeddingModel,
		maxRetries:        3,
		baseDelay:         time.Second,
		maxDelay:          60 * time.Second,
		requestTimeout:    60 * time.Second,
		circuitBreakerMax: 5,
	}, nil
}

func (s *GeminiService) ProviderName() string {
	return "gemini"
}

const maxEmbeddingInputRunes = 10000

// truncateRunes cuts s to at most max runes without splitting a UTF-8
// sequence.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// Encode embeds text into a dense vector, retrying transient API failures
// with jittered exponential backoff.
func (s *GeminiService) Encode(ctx context.Context, text string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("text for embedding cannot be empty")
	}
	if truncated := truncateRunes(trimmed, maxEmbeddingInputRunes); truncated != trimmed {
		s.logger.Warn("embedding input truncated", zap.Int("length", len(trimmed)))
		trimmed = truncated
	}

	if s.consecutiveErrors >= s.circuitBreakerMax {
		return nil, fmt.Errorf("circuit breaker open: %d consecutive errors", s.consecutiveErrors)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	content := []*genai.Content{genai.NewContentFromText(trimmed, genai.RoleUser)}

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(s.backoff(attempt)):
			case <-timeoutCtx.Done():
				return nil, fmt.Errorf("context timeout during retry: %w", timeoutCtx.Err())
			}
		}

		result, err := s.client.Models.EmbedContent(timeoutCtx, s.embeddingModel, content, nil)
		if err == nil {
			s.consecutiveErrors = 0
			return s.validateEmbedding(result)
		}

		lastErr = err
		if !s.isRetryable(err) {
			s.consecutiveErrors++
			return nil, fmt.Errorf("generate embedding: %w", err)
		}
		s.logger.Warn("retryable embedding error",
			zap.Int("attempt", attempt+1), zap.Error(err))
	}

	s.consecutiveErrors++
	return nil, fmt.Errorf("max retries (%d) exceeded for embedding: %w", s.maxRetries, lastErr)
}

// GenerateNarrative asks Gemini for a match summary. Callers treat any
// error as recoverable and keep the statistical summary.
func (s *GeminiService) GenerateNarrative(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}
	if s.consecutiveErrors >= s.circuitBreakerMax {
		return "", fmt.Errorf("circuit breaker open: %d consecutive errors", s.consecutiveErrors)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	genConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.2)),
	}

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(s.backoff(attempt)):
			case <-timeoutCtx.Done():
				return "", fmt.Errorf("context timeout during retry: %w", timeoutCtx.Err())
			}
		}

		result, err := s.client.Models.GenerateContent(timeoutCtx, s.generateModel, genai.Text(prompt), genConfig)
		if err == nil {
			s.consecutiveErrors = 0
			if err := validateGeneration(result); err != nil {
				return "", fmt.Errorf("invalid response: %w", err)
			}
			return result.Text(), nil
		}

		lastErr = err
		if !s.isRetryable(err) {
			s.consecutiveErrors++
			return "", fmt.Errorf("generate narrative: %w", err)
		}
		s.logger.Warn("retryable generation error",
			zap.Int("attempt", attempt+1), zap.Error(err))
	}

	s.consecutiveErrors++
	return "", fmt.Errorf("max retries (%d) exceeded for narrative: %w", s.maxRetries, lastErr)
}

func (s *GeminiService) backoff(attempt int) time.Duration {
	delay := s.baseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	if delay > s.maxDelay {
		delay = s.maxDelay
	}
	jitter := time.Duration(float64(delay) * 0.25)
	return delay - jitter/2 + time.Duration(float64(jitter)*0.5)
}

func (s *GeminiService) isRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if strings.Contains(msg, "context canceled") ||
		strings.Contains(msg, "context deadline exceeded") {
		return false
	}
	if apiErr, ok := err.(*genai.APIError); ok {
		switch apiErr.Code {
		case 429, 500, 502, 503, 504:
			return true
		case 400, 401, 403, 404:
			return false
		}
	}
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "temporary failure") ||
		strings.Contains(msg, "EOF")
}

func (s *GeminiService) validateEmbedding(resp *genai.EmbedContentResponse) ([]float32, error) {
	if resp == nil || len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	values := resp.Embeddings[0].Values
	if len(values) == 0 {
		return nil, fmt.Errorf("embedding vector is empty")
	}
	for i, v := range values {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, fmt.Errorf("invalid embedding value at index %d: %v", i, v)
		}
	}
	return values, nil
}

func validateGeneration(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return fmt.Errorf("response is nil")
	}
	if len(resp.Candidates) == 0 {
		return fmt.Errorf("no candidates in response")
	}
	if resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("candidate content is empty")
	}
	return nil
}
