package matching

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Summary source tags. SourceStatistical is the always-available fallback.
const (
	SourceStatistical = "statistical"
)

const (
	maxMatchedSkills   = 15
	maxMissingSkills   = 10
	maxHighlights      = 5
	maxPromptChars     = 1500
	maxNarrativeChars  = 2000
	maxExperienceYears = 40

	defaultSemanticPairThreshold = 0.5
)

// SemanticPair is one greedy JD-skill to candidate-skill alignment.
type SemanticPair struct {
	JDSkill     string  `json:"jd_skill"`
	ResumeSkill string  `json:"resume_skill"`
	Score       float64 `json:"score"`
}

// Explanation is the structured justification attached to every match.
// Field names are a stable contract with downstream consumers.
type Explanation struct {
	Summary               string              `json:"summary"`
	SkillsMatched         []string            `json:"skills_matched"`
	SkillsMissing         []string            `json:"skills_missing"`
	SkillsSemantic        []SemanticPair      `json:"skills_semantic"`
	SemanticMatchRatio    float64             `json:"semantic_match_ratio"`
	ResumeHighlights      []string            `json:"resume_highlights"`
	ExperienceYearsJD     int                 `json:"experience_years_jd"`
	ExperienceYearsResume int                 `json:"experience_years_resume"`
	ExperienceMatch       bool                `json:"experience_match"`
	SkillCategories       map[string][]string `json:"skill_categories"`
	Source                string              `json:"source"`
	GPTSummary            string              `json:"gpt_summary,omitempty"`
	GPTError              string              `json:"gpt_error,omitempty"`
}

// Explainer builds explanations. The encoder powers semantic skill pairing;
// the generator, when present and enabled, replaces the statistical summary
// with a generated narrative.
type Explainer struct {
	encoder       Encoder
	generator     NarrativeGenerator
	logger        *zap.Logger
	pairThreshold float64
	instruction   string
}

// ExplainerOption customizes an Explainer.
type ExplainerOption func(*Explainer)

// WithNarrativeGenerator enables the generative summary step.
func WithNarrativeGenerator(g NarrativeGenerator, instruction string) ExplainerOption {
	return func(e *Explainer) {
		e.generator = g
		e.instruction = instruction
	}
}

// WithPairThreshold overrides the minimum similarity for a semantic skill pair.
func WithPairThreshold(threshold float64) ExplainerOption {
	return func(e *Explainer) {
		e.pairThreshold = threshold
	}
}

func NewExplainer(encoder Encoder, logger *zap.Logger, opts ...ExplainerOption) *Explainer {
	e := &Explainer{
		encoder:       encoder,
		logger:        logger,
		pairThreshold: defaultSemanticPairThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

var (
	emailPattern      = regexp.MustCompile(`\b[\w.+-]+@[\w.-]+\.\w{2,}\b`)
	phonePattern      = regexp.MustCompile(`(\+?\d[\d\s().-]{7,}\d)`)
	profileURLPattern = regexp.MustCompile(`(?i)\b(?:https?://)?(?:www\.)?(?:linkedin\.com|github\.com|bitbucket\.org)/\S+`)
	bulletPattern     = regexp.MustCompile(`^[\s]*[-*•▪‣·o]+[\s]+`)
	experiencePattern = regexp.MustCompile(`(\d{1,2})\s*\+?\s*(?:years?|yrs?)\b`)
)

// Explain runs the full explanation pipeline for one JD/candidate pair.
// It never fails: every step degrades to a usable default.
func (e *Explainer) Explain(ctx context.Context, jdText, resumeText string, generative bool) Explanation {
	jdSkills := ExtractSkills(jdText)
	resumeSkills := ExtractSkills(resumeText)

	matched, missing := intersectSkills(jdSkills, resumeSkills)

	pairs, ratio := e.semanticPairs(ctx, jdSkills, resumeSkills, matched)

	jdYears := ExtractExperienceYears(jdText)
	resumeYears := ExtractExperienceYears(resumeText)
	expMatch := absInt(jdYears-resumeYears) <= 1

	expl := Explanation{
		SkillsMatched:         capSlice(matched, maxMatchedSkills),
		SkillsMissing:         capSlice(missing, maxMissingSkills),
		SkillsSemantic:        pairs,
		SemanticMatchRatio:    ratio,
		ResumeHighlights:      extractHighlights(resumeText, matched),
		ExperienceYearsJD:     jdYears,
		ExperienceYearsResume: resumeYears,
		ExperienceMatch:       expMatch,
		SkillCategories:       CategorizeSkills(resumeSkills),
		Source:                SourceStatistical,
	}
	expl.Summary = statisticalSummary(len(matched), len(missing), len(pairs), jdYears, resumeYears, expMatch)

	if generative && e.generator != nil {
		e.applyNarrative(ctx, &expl, jdText, resumeText)
	}
	return expl
}

// applyNarrative attempts the generative summary and records the failure
// reason instead of propagating it.
func (e *Explainer) applyNarrative(ctx context.Context, expl *Explanation, jdText, resumeText string) {
	prompt := e.buildPrompt(jdText, resumeText)

	narrative, err := e.generator.GenerateNarrative(ctx, prompt)
	if err != nil {
		e.logger.Warn("narrative generation failed, keeping statistical summary",
			zap.String("provider", e.generator.ProviderName()),
			zap.Error(err),
		)
		expl.GPTError = err.Error()
		return
	}

	narrative = strings.TrimSpace(narrative)
	if narrative == "" {
		expl.GPTError = "narrative provider returned empty response"
		return
	}

	expl.GPTSummary = truncate(narrative, maxNarrativeChars)
	expl.Source = e.generator.ProviderName()
}

func (e *Explainer) buildPrompt(jdText, resumeText string) string {
	instruction := strings.TrimSpace(e.instruction)
	if instruction == "" {
		instruction = "Summarize in 3-4 sentences how well this consultant profile fits the job description. Mention concrete skill overlap and experience fit."
	}
	return fmt.Sprintf("%s\n\nJob Description:\n%s\n\nConsultant Profile:\n%s",
		instruction, truncate(jdText, maxPromptChars), truncate(resumeText, maxPromptChars))
}

// semanticPairs greedily aligns each JD skill with the best still-unclaimed
// candidate skill above the pair threshold. Greedy in JD-skill order, not a
// global optimum; a candidate skill is claimed at most once.
func (e *Explainer) semanticPairs(ctx context.Context, jdSkills, resumeSkills, exact []string) ([]SemanticPair, float64) {
	pairs := []SemanticPair{}
	if len(jdSkills) == 0 {
		return pairs, 0.0
	}
	if e.encoder == nil || len(resumeSkills) == 0 {
		return pairs, RoundScore(float64(len(exact))/float64(maxInt(len(jdSkills), 1)), 4)
	}

	exactSet := make(map[string]bool, len(exact))
	for _, s := range exact {
		exactSet[s] = true
	}

	claimed := make(map[string]bool)
	for _, jdSkill := range jdSkills {
		if exactSet[jdSkill] {
			continue
		}
		jdVec, err := e.encoder.Encode(ctx, jdSkill)
		if err != nil {
			e.logger.Debug("skill embedding failed", zap.String("skill", jdSkill), zap.Error(err))
			continue
		}

		best := SemanticPair{Score: -1}
		for _, resumeSkill := range resumeSkills {
			if claimed[resumeSkill] || exactSet[resumeSkill] || resumeSkill == jdSkill {
				continue
			}
			resumeVec, err := e.encoder.Encode(ctx, resumeSkill)
			if err != nil {
				continue
			}
			if score := SemanticScore(jdVec, resumeVec); score > best.Score {
				best = SemanticPair{JDSkill: jdSkill, ResumeSkill: resumeSkill, Score: score}
			}
		}
		if best.Score >= e.pairThreshold {
			best.Score = RoundScore(best.Score, 4)
			claimed[best.ResumeSkill] = true
			pairs = append(pairs, best)
		}
	}

	matchedCount := len(exact) + len(pairs)
	ratio := float64(matchedCount) / float64(maxInt(len(jdSkills), 1))
	return pairs, RoundScore(ratio, 4)
}

// ExtractExperienceYears finds the largest plausible "N years" mention in
// text. Values of 40 or more are treated as noise. Returns 0 when nothing
// matches.
func ExtractExperienceYears(text string) int {
	best := 0
	for _, m := range experiencePattern.FindAllStringSubmatch(strings.ToLower(text), -1) {
		years, err := strconv.Atoi(m[1])
		if err != nil || years >= maxExperienceYears {
			continue
		}
		if years > best {
			best = years
		}
	}
	return best
}

// extractHighlights scans resume lines for matched skills and returns up to
// five PII-stripped snippets with at least three words left.
func extractHighlights(resumeText string, matched []string) []string {
	highlights := []string{}
	if len(matched) == 0 {
		return highlights
	}
	for _, line := range strings.Split(resumeText, "\n") {
		if len(highlights) >= maxHighlights {
			break
		}
		lower := strings.ToLower(line)
		hit := false
		for _, skill := range matched {
			if strings.Contains(lower, skill) {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}
		snippet := scrubPII(line)
		if len(strings.Fields(snippet)) < 3 {
			continue
		}
		highlights = append(highlights, snippet)
	}
	return highlights
}

func scrubPII(line string) string {
	line = bulletPattern.ReplaceAllString(line, "")
	line = emailPattern.ReplaceAllString(line, "")
	line = profileURLPattern.ReplaceAllString(line, "")
	line = phonePattern.ReplaceAllString(line, "")
	return strings.TrimSpace(line)
}

func statisticalSummary(matched, missing, semantic, jdYears, resumeYears int, expMatch bool) string {
	verdict := "experience aligned"
	if !expMatch {
		verdict = fmt.Sprintf("experience gap (%dy required vs %dy stated)", jdYears, resumeYears)
	}
	return fmt.Sprintf("%d exact skill matches, %d semantically related, %d missing; %s.",
		matched, semantic, missing, verdict)
}

func intersectSkills(jdSkills, resumeSkills []string) (matched, missing []string) {
	resumeSet := make(map[string]bool, len(resumeSkills))
	for _, s := range resumeSkills {
		resumeSet[s] = true
	}
	matched = []string{}
	missing = []string{}
	for _, s := range jdSkills {
		if resumeSet[s] {
			matched = append(matched, s)
		} else {
			missing = append(missing, s)
		}
	}
	return matched, missing
}

func capSlice(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
