package matching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSource struct {
	id        string
	identity  string
	text      string
	embedding string
}

func (s stubSource) ID() string              { return s.id }
func (s stubSource) Identity() string        { return s.identity }
func (s stubSource) RawText() string         { return s.text }
func (s stubSource) StoredEmbedding() string { return s.embedding }

const filler = "generic consultant profile describing delivery work across several client engagements"

func semanticMatcher(t *testing.T) *Matcher {
	t.Helper()
	return NewMatcher(nil, NewExplainer(nil, zap.NewNop()), zap.NewNop(),
		WithStrategy(StrategySemantic))
}

func TestMatchBatchRankingAndTopN(t *testing.T) {
	target := stubSource{id: "jd-1", identity: "jd-1", text: filler, embedding: "[1, 0]"}
	candidates := []Source{
		stubSource{id: "p1", identity: "e1", text: filler, embedding: "[0.5, 0.866]"},
		stubSource{id: "p2", identity: "e2", text: filler, embedding: "[1, 0]"},
		stubSource{id: "p3", identity: "e3", text: filler, embedding: "[0.9, 0.436]"},
		stubSource{id: "p4", identity: "e4", text: filler, embedding: "[0.7, 0.714]"},
	}

	m := semanticMatcher(t)
	results, err := m.MatchBatch(context.Background(), target, candidates, MatchTypeJDToResume)
	require.NoError(t, err)
	require.Len(t, results, len(candidates), "every scored pair is returned")

	top := m.Top(results)
	require.Len(t, top, DefaultTopN)
	assert.Equal(t, "p2", top[0].CandidateID)
	assert.Equal(t, "p3", top[1].CandidateID)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
	for _, r := range results {
		assert.Equal(t, LabelFor(r.Score), r.Label, "score and label must stay consistent")
		assert.GreaterOrEqual(t, r.Latency, 0.0)
	}
}

func TestMatchBatchTieKeepsInsertionOrder(t *testing.T) {
	target := stubSource{id: "jd-1", identity: "jd-1", text: filler, embedding: "[1, 0]"}
	candidates := []Source{
		stubSource{id: "x", identity: "ex", text: filler, embedding: "[0.6, 0.8]"},
		stubSource{id: "y", identity: "ey", text: filler, embedding: "[0.6, 0.8]"},
		stubSource{id: "z", identity: "ez", text: filler, embedding: "[1, 0]"},
	}

	results, err := semanticMatcher(t).MatchBatch(context.Background(), target, candidates, MatchTypeJDToResume)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "z", results[0].CandidateID)
	assert.Equal(t, "x", results[1].CandidateID)
	assert.Equal(t, "y", results[2].CandidateID)
}

func TestMatchBatchDeduplicatesIdentity(t *testing.T) {
	target := stubSource{id: "jd-1", identity: "jd-1", text: filler, embedding: "[1, 0]"}
	// same consultant stored twice, the lower scoring copy must drop
	candidates := []Source{
		stubSource{id: "p1a", identity: "emp-1", text: filler, embedding: "[0.5, 0.866]"},
		stubSource{id: "p2", identity: "emp-2", text: filler, embedding: "[0.8, 0.6]"},
		stubSource{id: "p1b", identity: "emp-1", text: filler, embedding: "[1, 0]"},
	}

	results, err := semanticMatcher(t).MatchBatch(context.Background(), target, candidates, MatchTypeJDToResume)
	require.NoError(t, err)

	seen := map[string]int{}
	for _, r := range results {
		seen[r.Identity]++
	}
	for identity, count := range seen {
		assert.Equal(t, 1, count, "identity %s appeared %d times", identity, count)
	}
	// the higher scoring copy survives
	assert.Equal(t, "p1b", results[0].CandidateID)
}

func TestMatchBatchSkipsUnreadableCandidate(t *testing.T) {
	target := stubSource{id: "jd-1", identity: "jd-1", text: filler, embedding: "[1, 0]"}
	candidates := []Source{
		stubSource{id: "bad", identity: "e0", text: "   ", embedding: "[1, 0]"},
		stubSource{id: "good", identity: "e1", text: filler, embedding: "[0.9, 0.436]"},
	}

	results, err := semanticMatcher(t).MatchBatch(context.Background(), target, candidates, MatchTypeJDToResume)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "good", results[0].CandidateID)
}

func TestMatchBatchUnreadableTargetFails(t *testing.T) {
	target := stubSource{id: "jd-1", identity: "jd-1", text: ""}
	_, err := semanticMatcher(t).MatchBatch(context.Background(), target, nil, MatchTypeJDToResume)
	assert.ErrorIs(t, err, ErrTextUnreadable)
}

func TestMatchBatchMalformedEmbeddingScoresZero(t *testing.T) {
	target := stubSource{id: "jd-1", identity: "jd-1", text: filler, embedding: "[1, 0]"}
	candidates := []Source{
		stubSource{id: "broken", identity: "e1", text: filler, embedding: "not json"},
	}

	// no encoder configured, so the malformed vector cannot be recomputed
	results, err := semanticMatcher(t).MatchBatch(context.Background(), target, candidates, MatchTypeJDToResume)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].Score)
	assert.Equal(t, LabelNotRecommended, results[0].Label)
}

func TestMatchBatchReverseModeOrientsExplanation(t *testing.T) {
	// resume-to-jd flips target and candidate, but the explanation fields
	// stay JD-first: jd years from the JD, highlights from the resume
	profile := stubSource{id: "p1", identity: "emp-1",
		text: "Senior consultant with python and react, 5 years delivering client platforms"}
	jds := []Source{
		stubSource{id: "jd-1", identity: "jd-1",
			text: "Hiring python and react developer, 3+ years experience required"},
	}

	m := NewMatcher(nil, NewExplainer(nil, zap.NewNop()), zap.NewNop())
	results, err := m.MatchBatch(context.Background(), profile, jds, MatchTypeResumeToJD)
	require.NoError(t, err)
	require.Len(t, results, 1)

	expl := results[0].Explanation
	assert.Equal(t, 3, expl.ExperienceYearsJD)
	assert.Equal(t, 5, expl.ExperienceYearsResume)
	assert.False(t, expl.ExperienceMatch)
	assert.Equal(t, []string{"python", "react"}, expl.SkillsMatched)
	require.NotEmpty(t, expl.ResumeHighlights)
	assert.Contains(t, expl.ResumeHighlights[0], "Senior consultant")
}

func TestMatchOne(t *testing.T) {
	jd := stubSource{id: "jd-1", identity: "jd-1",
		text: "Hiring python and react developer, 3+ years experience building web platforms"}
	cand := stubSource{id: "p1", identity: "emp-1",
		text: "Consultant with python and react delivery, 2 years on product dashboards"}

	m := NewMatcher(nil, NewExplainer(nil, zap.NewNop()), zap.NewNop())
	result, err := m.MatchOne(context.Background(), jd, cand)
	require.NoError(t, err)

	assert.Greater(t, result.Score, 0.0)
	assert.LessOrEqual(t, result.Score, 1.0)
	assert.Equal(t, LabelFor(result.Score), result.Label)
	assert.Equal(t, []string{"python", "react"}, result.Explanation.SkillsMatched)
	assert.True(t, result.Explanation.ExperienceMatch)
}

func TestMatchOneUnreadableCandidate(t *testing.T) {
	jd := stubSource{id: "jd-1", identity: "jd-1", text: filler}
	cand := stubSource{id: "p1", identity: "emp-1", text: ""}

	m := NewMatcher(nil, NewExplainer(nil, zap.NewNop()), zap.NewNop())
	_, err := m.MatchOne(context.Background(), jd, cand)
	assert.ErrorIs(t, err, ErrTextUnreadable)
}

func TestMatchBatchLexicalStrategy(t *testing.T) {
	target := stubSource{id: "jd-1", identity: "jd-1",
		text: "python django postgresql developer needed for analytics platform"}
	candidates := []Source{
		stubSource{id: "close", identity: "e1",
			text: "python django postgresql consultant building analytics pipelines"},
		stubSource{id: "far", identity: "e2",
			text: "java spring mysql engineer maintaining legacy billing systems"},
	}

	m := NewMatcher(nil, NewExplainer(nil, zap.NewNop()), zap.NewNop())
	results, err := m.MatchBatch(context.Background(), target, candidates, MatchTypeJDToResume)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "close", results[0].CandidateID)
	assert.Greater(t, results[0].Score, results[1].Score)
}
