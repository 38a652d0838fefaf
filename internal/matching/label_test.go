package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabelFor(t *testing.T) {
	cases := []struct {
		score float64
		want  Label
	}{
		{1.0, LabelHighlyRecommended},
		{0.85, LabelHighlyRecommended},
		{0.84, LabelRecommended},
		{0.70, LabelRecommended},
		{0.69, LabelDecent},
		{0.50, LabelDecent},
		{0.49, LabelNotRecommended},
		{0.0, LabelNotRecommended},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, LabelFor(tc.score), "score %v", tc.score)
	}
}

func TestLabelMonotonic(t *testing.T) {
	prev := LabelFor(0.0)
	for score := 0.0; score <= 1.0; score += 0.01 {
		current := LabelFor(score)
		assert.LessOrEqual(t, current.Rank(), prev.Rank(),
			"label rank regressed at score %v", score)
		prev = current
	}
}
