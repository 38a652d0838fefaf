package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/talentbridge/profile-matcher/internal/config"
	"github.com/tidwall/gjson"
)

const openRouterEndpoint = "https://openrouter.ai/api/v1/chat/completions"

// OpenRouterService is the alternative narrative provider, kept behind the
// same NarrativeGenerator surface as Gemini so the explainer does not care
// which one is configured.
type OpenRouterService struct {
	client *resty.Client
	apiKey string
	model  string
}

func NewOpenRouterService() *OpenRouterService {
	cfg := config.LoadOpenRouterConfig()
	return &OpenRouterService{
		client: resty.New().SetTimeout(60 * time.Second),
		apiKey: cfg.APIKey,
		model:  cfg.Model,
	}
}

func (s *OpenRouterService) ProviderName() string {
	return "openrouter"
}

func (s *OpenRouterService) GenerateNarrative(ctx context.Context, prompt string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("OPENROUTER_API_KEY not set")
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+s.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"model": s.model,
			"messages": []map[string]string{
				{"role": "system", "content": "You are a technical staffing assistant explaining how well a consultant profile fits a job description."},
				{"role": "user", "content": prompt},
			},
		}).
		Post(openRouterEndpoint)
	if err != nil {
		return "", fmt.Errorf("openrouter request: %w", err)
	}
	if resp.StatusCode() >= 400 {
		return "", fmt.Errorf("openrouter returned status %d: %s",
			resp.StatusCode(), gjson.Get(resp.String(), "error.message").String())
	}

	text := gjson.Get(resp.String(), "choices.0.message.content").String()
	if text == "" {
		return "", fmt.Errorf("openrouter returned no content")
	}
	return text, nil
}
