package matching

// Label is the discrete recommendation tier derived from a match score.
type Label string

const (
	LabelHighlyRecommended Label = "Highly Recommended"
	LabelRecommended       Label = "Recommended"
	LabelDecent            Label = "Decent"
	LabelNotRecommended    Label = "Not Recommended"
)

// Canonical tier boundaries. The legacy system used three different sets
// depending on the call site; these are unified on the strictest one so a
// "Highly Recommended" really means it.
const (
	thresholdHighlyRecommended = 0.85
	thresholdRecommended       = 0.70
	thresholdDecent            = 0.50
)

// LabelFor maps a score to its recommendation tier. Monotonic: a higher
// score never yields a lower tier.
func LabelFor(score float64) Label {
	switch {
	case score >= thresholdHighlyRecommended:
		return LabelHighlyRecommended
	case score >= thresholdRecommended:
		return LabelRecommended
	case score >= thresholdDecent:
		return LabelDecent
	default:
		return LabelNotRecommended
	}
}

// Rank orders labels from best (0) to worst (3), for monotonicity checks
// and sorting by tier.
func (l Label) Rank() int {
	switch l {
	case LabelHighlyRecommended:
		return 0
	case LabelRecommended:
		return 1
	case LabelDecent:
		return 2
	default:
		return 3
	}
}

func (l Label) String() string {
	return string(l)
}
