package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubEncoder struct {
	vectors map[string][]float32
}

func (s *stubEncoder) Encode(_ context.Context, text string) ([]float32, error) {
	vec, ok := s.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no stub vector for %q", text)
	}
	return vec, nil
}

type stubGenerator struct {
	response   string
	err        error
	name       string
	lastPrompt string
}

func (s *stubGenerator) GenerateNarrative(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) ProviderName() string {
	if s.name == "" {
		return "stub"
	}
	return s.name
}

func TestExplainExactAndExperience(t *testing.T) {
	jd := "Looking for Python and React developer, 3+ years experience"
	resume := "Consultant skilled in python and react.\nDelivered dashboards for 2 years at a product firm."

	e := NewExplainer(nil, zap.NewNop())
	expl := e.Explain(context.Background(), jd, resume, false)

	assert.Equal(t, []string{"python", "react"}, expl.SkillsMatched)
	assert.Empty(t, expl.SkillsMissing)
	assert.Equal(t, 3, expl.ExperienceYearsJD)
	assert.Equal(t, 2, expl.ExperienceYearsResume)
	assert.True(t, expl.ExperienceMatch, "one year difference is within tolerance")
	assert.Equal(t, SourceStatistical, expl.Source)
	assert.NotEmpty(t, expl.Summary)
}

func TestExplainMissingSkills(t *testing.T) {
	jd := "Need python, docker and kubernetes engineers for platform work"
	resume := "Long career writing python services and operating linux fleets"

	e := NewExplainer(nil, zap.NewNop())
	expl := e.Explain(context.Background(), jd, resume, false)

	assert.Equal(t, []string{"python"}, expl.SkillsMatched)
	assert.ElementsMatch(t, []string{"docker", "kubernetes"}, expl.SkillsMissing)
	assert.Contains(t, expl.SkillCategories["Cloud & DevOps"], "linux")
}

func TestExplainSemanticPairs(t *testing.T) {
	jd := "We require postgresql experience and python fluency"
	resume := "Deep python background with production mysql administration"

	encoder := &stubEncoder{vectors: map[string][]float32{
		"postgresql": {1, 0},
		"mysql":      {0.95, 0.05},
	}}
	e := NewExplainer(encoder, zap.NewNop())
	expl := e.Explain(context.Background(), jd, resume, false)

	require.Len(t, expl.SkillsSemantic, 1)
	pair := expl.SkillsSemantic[0]
	assert.Equal(t, "postgresql", pair.JDSkill)
	assert.Equal(t, "mysql", pair.ResumeSkill)
	assert.Greater(t, pair.Score, 0.5)

	// exact python + semantic postgresql~mysql over two JD skills
	assert.InDelta(t, 1.0, expl.SemanticMatchRatio, 1e-9)
}

func TestExplainSemanticPairsClaimOnce(t *testing.T) {
	// two JD skills compete for the same candidate skill; only the first
	// (JD order) claims it
	jd := "Must have postgresql and oracle skills"
	resume := "Ran large mysql clusters in production for a decade"

	encoder := &stubEncoder{vectors: map[string][]float32{
		"postgresql": {1, 0},
		"oracle":     {1, 0},
		"mysql":      {1, 0},
	}}
	e := NewExplainer(encoder, zap.NewNop())
	expl := e.Explain(context.Background(), jd, resume, false)

	require.Len(t, expl.SkillsSemantic, 1)
	assert.Equal(t, "oracle", expl.SkillsSemantic[0].JDSkill)
	assert.Equal(t, "mysql", expl.SkillsSemantic[0].ResumeSkill)
}

func TestExplainPairThresholdOption(t *testing.T) {
	jd := "We require postgresql experience for reporting workloads"
	resume := "Years of production mysql administration and tuning"

	encoder := &stubEncoder{vectors: map[string][]float32{
		"postgresql": {1, 0},
		"mysql":      {0.95, 0.05},
	}}
	e := NewExplainer(encoder, zap.NewNop(), WithPairThreshold(0.999))
	expl := e.Explain(context.Background(), jd, resume, false)

	assert.Empty(t, expl.SkillsSemantic, "pairs below the raised threshold are rejected")
}

func TestExplainHighlightsStripPII(t *testing.T) {
	jd := "Hiring python developer for data platform work"
	resume := strings.Join([]string{
		"- Built python pipelines for retail analytics at scale",
		"Contact me: jane.doe@example.com or +1 (555) 123-4567, python expert",
		"python", // too few words after scrubbing
		"See linkedin.com/in/janedoe for python references and more",
	}, "\n")

	e := NewExplainer(nil, zap.NewNop())
	expl := e.Explain(context.Background(), jd, resume, false)

	require.NotEmpty(t, expl.ResumeHighlights)
	for _, h := range expl.ResumeHighlights {
		assert.NotContains(t, h, "@")
		assert.NotContains(t, h, "555")
		assert.NotContains(t, h, "linkedin.com")
		assert.False(t, strings.HasPrefix(h, "-"), "bullet marker should be stripped")
		assert.GreaterOrEqual(t, len(strings.Fields(h)), 3)
	}
	assert.LessOrEqual(t, len(expl.ResumeHighlights), 5)
}

func TestExplainNarrativeSuccess(t *testing.T) {
	gen := &stubGenerator{response: "Strong fit: shared python stack.", name: "gemini"}
	e := NewExplainer(nil, zap.NewNop(), WithNarrativeGenerator(gen, "Explain the fit."))

	expl := e.Explain(context.Background(),
		"python developer role with django experience required",
		"python and django consultant with 4 years experience", true)

	assert.Equal(t, "gemini", expl.Source)
	assert.Equal(t, "Strong fit: shared python stack.", expl.GPTSummary)
	assert.Empty(t, expl.GPTError)
	assert.Contains(t, gen.lastPrompt, "Explain the fit.")
}

func TestExplainNarrativeFailureFallsBack(t *testing.T) {
	gen := &stubGenerator{err: errors.New("missing api key")}
	e := NewExplainer(nil, zap.NewNop(), WithNarrativeGenerator(gen, ""))

	expl := e.Explain(context.Background(),
		"python developer role for banking client",
		"experienced python consultant from insurance background", true)

	assert.Equal(t, SourceStatistical, expl.Source)
	assert.Empty(t, expl.GPTSummary)
	assert.Equal(t, "missing api key", expl.GPTError)
	assert.NotEmpty(t, expl.Summary, "statistical summary survives the failure")
}

func TestExplainNarrativeTruncation(t *testing.T) {
	gen := &stubGenerator{response: strings.Repeat("x", 3000)}
	e := NewExplainer(nil, zap.NewNop(), WithNarrativeGenerator(gen, ""))

	expl := e.Explain(context.Background(),
		"golang engineer wanted for microservices",
		"golang services developer with kafka exposure", true)

	assert.Len(t, expl.GPTSummary, 2000)
}

func TestExtractExperienceYears(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"3+ years experience required", 3},
		{"over 10 yrs in backend work", 10},
		{"5 years with java, 8 years total", 8},
		{"founded in 1999, 100 years of heritage", 0},
		{"no experience mentioned", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ExtractExperienceYears(tc.text), tc.text)
	}
}
