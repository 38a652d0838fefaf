package config

import (
	"log"
	"os"
	"strconv"
	"sync"
)

type MatchingConfig struct {
	// Threshold is the operator match threshold on a 1-100 scale.
	Threshold int
	// Strategy selects "lexical" or "semantic" scoring.
	Strategy string
	// NarrativeEnabled turns on the generative match summary.
	NarrativeEnabled bool
	// NarrativeProvider is "gemini" or "openrouter".
	NarrativeProvider string
	// PromptInstruction overrides the default narrative instruction.
	PromptInstruction string
	TopN              int
}

var (
	matchingConfig *MatchingConfig
	matchingOnce   sync.Once
)

func LoadMatchingConfig() *MatchingConfig {
	matchingOnce.Do(func() {
		threshold := envInt("MATCH_THRESHOLD", 100)
		if threshold < 1 || threshold > 100 {
			log.Printf("Warning: MATCH_THRESHOLD %d out of range, using 100", threshold)
			threshold = 100
		}
		strategy := os.Getenv("MATCH_STRATEGY")
		if strategy == "" {
			strategy = "lexical"
		}
		provider := os.Getenv("NARRATIVE_PROVIDER")
		if provider == "" {
			provider = "gemini"
		}
		matchingConfig = &MatchingConfig{
			Threshold:         threshold,
			Strategy:          strategy,
			NarrativeEnabled:  os.Getenv("NARRATIVE_ENABLED") == "true",
			NarrativeProvider: provider,
			PromptInstruction: os.Getenv("NARRATIVE_PROMPT"),
			TopN:              envInt("MATCH_TOP_N", 3),
		}
	})
	return matchingConfig
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: %s=%q is not an integer, using %d", key, raw, fallback)
		return fallback
	}
	return v
}
