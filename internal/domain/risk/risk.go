// Package risk maps cosine-similarity scores to infringement-risk labels.
package risk

// Label is an ordinal risk tier derived from a similarity score.
type Label string

// Risk tiers, ordered Low < Medium < High.
const (
	Low    Label = "LOW"
	Medium Label = "MEDIUM"
	High   Label = "HIGH"
)

// Classification thresholds. Both boundary scores fall into Medium:
// HIGH requires strictly more than HighThreshold, MEDIUM starts at
// MediumThreshold inclusive.
const (
	HighThreshold   = 0.70
	MediumThreshold = 0.40
)

// Classify maps a similarity score in [0,1] to a risk tier.
// Total and deterministic; scores outside [0,1] are clamped by the
// comparisons themselves (negative → Low, >1 → High).
func Classify(score float64) Label {
	switch {
	case score > HighThreshold:
		return High
	case score >= MediumThreshold:
		return Medium
	default:
		return Low
	}
}

// Ordinal returns the tier rank: Low=0, Medium=1, High=2.
func (l Label) Ordinal() int {
	switch l {
	case High:
		return 2
	case Medium:
		return 1
	default:
		return 0
	}
}

// String returns the wire representation of the label.
func (l Label) String() string { return string(l) }
