package result

import "github.com/stevnnyee/thinkStruct-search-engine/internal/domain/risk"

// ScoredResult is a single ranked search hit. Derived per query, never stored.
type ScoredResult struct {
	id             string
	title          string
	classification string
	score          float64
	risk           risk.Label
}

// New creates a scored result.
func New(id, title, classification string, score float64, label risk.Label) ScoredResult {
	return ScoredResult{
		id: id, title: title, classification: classification,
		score: score, risk: label,
	}
}

// ID returns the patent document number.
func (r ScoredResult) ID() string { return r.id }

// Title returns the patent title.
func (r ScoredResult) Title() string { return r.title }

// Classification returns the patent classification code.
func (r ScoredResult) Classification() string { return r.classification }

// Score returns the cosine similarity in [0,1].
func (r ScoredResult) Score() float64 { return r.score }

// Risk returns the risk tier derived from the score.
func (r ScoredResult) Risk() risk.Label { return r.risk }
