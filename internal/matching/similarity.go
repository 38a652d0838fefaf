package matching

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Strategy selects how two texts are compared.
type Strategy string

const (
	StrategyLexical  Strategy = "lexical"
	StrategySemantic Strategy = "semantic"
)

// matchDomains is the coarse vocabulary used for the domain boost.
var matchDomains = []string{
	"banking", "healthcare", "ecommerce", "automotive", "insurance", "retail",
}

const domainBoost = 0.05

// LexicalScore computes TF-IDF cosine similarity over exactly the two input
// texts. A degenerate vocabulary (either side empty after tokenization)
// scores 0.0 instead of failing.
func LexicalScore(a, b string) float64 {
	tokensA := tokenize(a)
	tokensB := tokenize(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0.0
	}

	vocab := make(map[string]int)
	for _, t := range tokensA {
		if _, ok := vocab[t]; !ok {
			vocab[t] = len(vocab)
		}
	}
	for _, t := range tokensB {
		if _, ok := vocab[t]; !ok {
			vocab[t] = len(vocab)
		}
	}

	vecA := tfidfVector(tokensA, tokensB, vocab)
	vecB := tfidfVector(tokensB, tokensA, vocab)

	score := cosine(vecA, vecB)
	if math.IsNaN(score) || score < 0 {
		return 0.0
	}
	return math.Min(score, 1.0)
}

func tokenize(text string) []string {
	lower := strings.ToLower(text)
	raw := tokenPattern.FindAllString(lower, -1)
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.Trim(t, ".-")
		if len(t) < 2 || stopWords[t] {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

// tfidfVector builds the l2-normalized TF-IDF vector for doc against the
// two-document corpus {doc, other}, with smoothed idf so terms present in
// both documents still contribute.
func tfidfVector(doc, other []string, vocab map[string]int) []float64 {
	tf := make(map[string]float64, len(doc))
	for _, t := range doc {
		tf[t]++
	}
	inOther := make(map[string]bool, len(other))
	for _, t := range other {
		inOther[t] = true
	}

	vec := make([]float64, len(vocab))
	for term, count := range tf {
		df := 1.0
		if inOther[term] {
			df = 2.0
		}
		// smooth idf: ln((1+n)/(1+df)) + 1 with n = 2 documents
		idf := math.Log(3.0/(1.0+df)) + 1.0
		vec[vocab[term]] = count * idf
	}

	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return vec
	}
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// SemanticScore computes cosine similarity between two dense embedding
// vectors. Mismatched dimensions or a zero-norm vector score 0.0.
func SemanticScore(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0.0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0.0
	}
	score := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if math.IsNaN(score) || score < 0 {
		return 0.0
	}
	return math.Min(score, 1.0)
}

// ParseStoredEmbedding decodes the JSON float-array format used for
// embeddings persisted alongside documents.
func ParseStoredEmbedding(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("stored embedding is empty")
	}
	var vec []float32
	if err := json.Unmarshal([]byte(s), &vec); err != nil {
		return nil, fmt.Errorf("decode stored embedding: %w", err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("stored embedding has no values")
	}
	return vec, nil
}

// DetectDomain returns the first coarse business domain mentioned in text,
// or an empty string when none matches.
func DetectDomain(text string) string {
	lower := strings.ToLower(text)
	for _, domain := range matchDomains {
		if strings.Contains(lower, domain) {
			return domain
		}
	}
	return ""
}

// ThresholdMultiplier converts the operator-facing match threshold (1-100)
// into a score multiplier. Lower thresholds loosen recommendations by
// inflating the raw score, capped at 2x. Out-of-range values are treated as
// the neutral 100.
func ThresholdMultiplier(threshold int) float64 {
	if threshold < 1 || threshold > 100 {
		return 1.0
	}
	normalized := float64(threshold) / 100.0
	return math.Min(2.0, 1.0/normalized)
}

// AdjustScore layers the ordering decision for the two score heuristics:
// the threshold multiplier first, then the domain boost, clamping after
// each step so neither can push the score past 1.0.
func AdjustScore(raw float64, threshold int, jdText, candText string) float64 {
	score := math.Min(raw*ThresholdMultiplier(threshold), 1.0)

	if domain := DetectDomain(jdText); domain != "" &&
		strings.Contains(strings.ToLower(candText), domain) {
		score = math.Min(score+domainBoost, 1.0)
	}
	return score
}

// RoundScore rounds to the given number of decimal digits. Rounding is a
// presentation concern: records store 4 digits, display uses 2, ranking
// always uses the raw value.
func RoundScore(score float64, digits int) float64 {
	factor := math.Pow(10, float64(digits))
	return math.Round(score*factor) / factor
}
