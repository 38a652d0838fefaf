package matching

import "context"

// Encoder turns text into a dense embedding vector. Implemented by the
// Gemini service; tests substitute stub encoders.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
}

// NarrativeGenerator produces a free-text match narrative from a prompt.
// The generative step is always optional: callers fall back to the
// statistical summary when it fails.
type NarrativeGenerator interface {
	GenerateNarrative(ctx context.Context, prompt string) (string, error)
	ProviderName() string
}

// Source is the minimal capability a document must expose to be matched.
// Both JDs and consultant profiles satisfy it, replacing the ad hoc
// "resume-like" stand-ins the legacy system passed around.
type Source interface {
	ID() string
	// Identity is the business identity used for deduplication (emp_id for
	// profiles, the record id otherwise).
	Identity() string
	RawText() string
	// StoredEmbedding returns the persisted JSON embedding, or "" when the
	// document has none.
	StoredEmbedding() string
}
