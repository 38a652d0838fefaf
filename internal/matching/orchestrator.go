package matching

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Match type tags persisted with every result record.
const (
	MatchTypeJDToResume = "jd-to-resume"
	MatchTypeResumeToJD = "resume-to-jd"
	MatchTypeOneToOne   = "one-to-one"
)

// DefaultTopN is the result cardinality for batch match modes.
const DefaultTopN = 3

// Result is the outcome of one JD/candidate comparison. Score is kept
// unrounded; rounding belongs to the persistence and display boundaries.
type Result struct {
	CandidateID string
	Identity    string
	Score       float64
	Label       Label
	Explanation Explanation
	Latency     float64
}

// Matcher drives the match pipeline: normalize, score, label, explain,
// then rank, deduplicate and truncate. One instance is safe for sequential
// reuse across invocations; it holds no per-run state.
type Matcher struct {
	strategy   Strategy
	encoder    Encoder
	explainer  *Explainer
	logger     *zap.Logger
	threshold  int
	topN       int
	generative bool
}

// MatcherOption customizes a Matcher.
type MatcherOption func(*Matcher)

// WithStrategy selects lexical or semantic scoring. Lexical is the default.
func WithStrategy(s Strategy) MatcherOption {
	return func(m *Matcher) { m.strategy = s }
}

// WithThreshold sets the operator match threshold (1-100) feeding the score
// multiplier.
func WithThreshold(threshold int) MatcherOption {
	return func(m *Matcher) { m.threshold = threshold }
}

// WithTopN overrides the batch result cardinality.
func WithTopN(n int) MatcherOption {
	return func(m *Matcher) {
		if n > 0 {
			m.topN = n
		}
	}
}

// WithGenerativeNarrative turns on the generative summary step for every
// produced explanation.
func WithGenerativeNarrative(enabled bool) MatcherOption {
	return func(m *Matcher) { m.generative = enabled }
}

func NewMatcher(encoder Encoder, explainer *Explainer, logger *zap.Logger, opts ...MatcherOption) *Matcher {
	m := &Matcher{
		strategy:  StrategyLexical,
		encoder:   encoder,
		explainer: explainer,
		logger:    logger,
		threshold: 100,
		topN:      DefaultTopN,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	return m
}

// Strategy reports the configured scoring strategy.
func (m *Matcher) Strategy() Strategy {
	return m.strategy
}

// MatchOne compares a single JD/candidate pair. Unlike batch mode, a
// normalization failure on either side is surfaced to the caller.
func (m *Matcher) MatchOne(ctx context.Context, target, candidate Source) (*Result, error) {
	targetText, err := CleanText(target.RawText())
	if err != nil {
		return nil, fmt.Errorf("target %s: %w", target.ID(), err)
	}

	result, err := m.matchCandidate(ctx, target, targetText, candidate, MatchTypeOneToOne)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MatchBatch compares one target document against every candidate, then
// ranks and deduplicates by candidate identity. The full scored set comes
// back so every pair can be persisted; display truncation is Top's job. A
// candidate that fails is logged and skipped; only an unreadable target
// fails the whole run.
func (m *Matcher) MatchBatch(ctx context.Context, target Source, candidates []Source, matchType string) ([]Result, error) {
	targetText, err := CleanText(target.RawText())
	if err != nil {
		return nil, fmt.Errorf("target %s: %w", target.ID(), err)
	}

	results := make([]Result, 0, len(candidates))
	for _, candidate := range candidates {
		result, err := m.matchCandidate(ctx, target, targetText, candidate, matchType)
		if err != nil {
			m.logger.Warn("candidate skipped",
				zap.String("match_type", matchType),
				zap.String("target_id", target.ID()),
				zap.String("candidate_id", candidate.ID()),
				zap.Error(err),
			)
			continue
		}
		results = append(results, *result)
	}

	results = rankResults(results)
	results = dedupeByIdentity(results)

	m.logger.Info("match batch finalized",
		zap.String("match_type", matchType),
		zap.String("target_id", target.ID()),
		zap.Int("candidates", len(candidates)),
		zap.Int("scored", len(results)),
	)
	return results, nil
}

// Top returns the leading results up to the configured batch cardinality.
func (m *Matcher) Top(results []Result) []Result {
	if len(results) > m.topN {
		return results[:m.topN]
	}
	return results
}

func (m *Matcher) matchCandidate(ctx context.Context, target Source, targetText string, candidate Source, matchType string) (*Result, error) {
	started := time.Now()

	candText, err := CleanText(candidate.RawText())
	if err != nil {
		return nil, fmt.Errorf("candidate %s: %w", candidate.ID(), err)
	}

	raw := m.score(ctx, target, targetText, candidate, candText)
	score := AdjustScore(raw, m.threshold, targetText, candText)

	// the explanation contract is JD-first regardless of match direction
	jdText, resumeText := targetText, candText
	if matchType == MatchTypeResumeToJD {
		jdText, resumeText = candText, targetText
	}
	explanation := m.explainer.Explain(ctx, jdText, resumeText, m.generative)

	return &Result{
		CandidateID: candidate.ID(),
		Identity:    candidate.Identity(),
		Score:       score,
		Label:       LabelFor(score),
		Explanation: explanation,
		Latency:     time.Since(started).Seconds(),
	}, nil
}

// score runs the configured strategy. Every failure in the semantic path is
// recoverable and scores 0.0, so one malformed embedding cannot sink a run.
func (m *Matcher) score(ctx context.Context, target Source, targetText string, candidate Source, candText string) float64 {
	if m.strategy != StrategySemantic {
		return LexicalScore(targetText, candText)
	}

	targetVec, err := m.embedding(ctx, target, targetText)
	if err != nil {
		m.logger.Warn("target embedding unavailable, scoring 0",
			zap.String("id", target.ID()), zap.Error(err))
		return 0.0
	}
	candVec, err := m.embedding(ctx, candidate, candText)
	if err != nil {
		m.logger.Warn("candidate embedding unavailable, scoring 0",
			zap.String("id", candidate.ID()), zap.Error(err))
		return 0.0
	}
	return SemanticScore(targetVec, candVec)
}

// embedding prefers the stored vector and falls back to encoding the
// cleaned text when none is persisted.
func (m *Matcher) embedding(ctx context.Context, doc Source, text string) ([]float32, error) {
	if stored := doc.StoredEmbedding(); stored != "" {
		vec, err := ParseStoredEmbedding(stored)
		if err == nil {
			return vec, nil
		}
		m.logger.Warn("stored embedding malformed, re-encoding",
			zap.String("id", doc.ID()), zap.Error(err))
	}
	if m.encoder == nil {
		return nil, fmt.Errorf("no encoder configured and no stored embedding for %s", doc.ID())
	}
	return m.encoder.Encode(ctx, text)
}

// rankResults sorts by score descending. The sort is stable so candidates
// with equal scores keep their original iteration order.
func rankResults(results []Result) []Result {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// dedupeByIdentity keeps only the first (highest ranked) result per
// candidate identity.
func dedupeByIdentity(results []Result) []Result {
	seen := make(map[string]bool, len(results))
	deduped := results[:0]
	for _, r := range results {
		if seen[r.Identity] {
			continue
		}
		seen[r.Identity] = true
		deduped = append(deduped, r)
	}
	return deduped
}
