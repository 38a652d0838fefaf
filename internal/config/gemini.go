package config

import (
	"os"
	"sync"
)

type GeminiConfig struct {
	APIKey         string
	GenerateModel  string
	EmbeddingModel string
}

var (
	geminiConfig *GeminiConfig
	geminiOnce   sync.Once
)

func LoadGeminiConfig() *GeminiConfig {
	geminiOnce.Do(func() {
		generateModel := os.Getenv("GEMINI_GENERATE_MODEL")
		if generateModel == "" {
			generateModel = "gemini-2.5-flash"
		}
		embeddingModel := os.Getenv("GEMINI_EMBEDDING_MODEL")
		if embeddingModel == "" {
			embeddingModel = "gemini-embedding-001"
		}
		geminiConfig = &GeminiConfig{
			APIKey:         os.Getenv("GEMINI_API_KEY"),
			GenerateModel:  generateModel,
			EmbeddingModel: embeddingModel,
		}
	})
	return geminiConfig
}
