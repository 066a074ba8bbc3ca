// Package query holds validated query value objects for the three search
// operations: free-text search, find-similar and hybrid search.
package query

import (
	"fmt"

	"github.com/stevnnyee/thinkStruct-search-engine/internal/domain"
	"github.com/stevnnyee/thinkStruct-search-engine/internal/domain/search/filter"
)

// Query parameter limits.
const (
	// MaxQueryLength is the maximum allowed free-text query length.
	MaxQueryLength = 4096
	DefaultTopK    = 5
	MaxTopK        = 500
)

// Text is a validated free-text search query.
type Text struct {
	query string
	topK  int
}

// NewText validates and creates a free-text query.
// TopK must be positive; values above MaxTopK are clamped.
func NewText(q string, topK int) (Text, error) {
	if q == "" {
		return Text{}, fmt.Errorf("query is required")
	}
	if len(q) > MaxQueryLength {
		return Text{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	topK, err := validateTopK(topK)
	if err != nil {
		return Text{}, err
	}
	return Text{query: q, topK: topK}, nil
}

// Query returns the free-text query.
func (t Text) Query() string { return t.query }

// TopK returns the maximum number of results.
func (t Text) TopK() int { return t.topK }

// Similar is a validated find-similar (prior-art) query.
type Similar struct {
	documentID string
	topK       int
}

// NewSimilar validates and creates a find-similar query.
func NewSimilar(documentID string, topK int) (Similar, error) {
	if documentID == "" {
		return Similar{}, fmt.Errorf("document id is required")
	}
	topK, err := validateTopK(topK)
	if err != nil {
		return Similar{}, err
	}
	return Similar{documentID: documentID, topK: topK}, nil
}

// DocumentID returns the id of the reference patent.
func (s Similar) DocumentID() string { return s.documentID }

// TopK returns the maximum number of results.
func (s Similar) TopK() int { return s.topK }

// Hybrid is a validated hybrid-search query: a free-text query plus
// attribute predicates applied after ranking.
type Hybrid struct {
	text    Text
	filters filter.Expression
}

// NewHybrid validates and creates a hybrid query.
func NewHybrid(q string, topK int, filters filter.Expression) (Hybrid, error) {
	text, err := NewText(q, topK)
	if err != nil {
		return Hybrid{}, err
	}
	return Hybrid{text: text, filters: filters}, nil
}

// Query returns the free-text query.
func (h Hybrid) Query() string { return h.text.query }

// TopK returns the maximum number of results.
func (h Hybrid) TopK() int { return h.text.topK }

// Filters returns the post-rank predicate expression.
func (h Hybrid) Filters() filter.Expression { return h.filters }

func validateTopK(topK int) (int, error) {
	if topK <= 0 {
		return 0, fmt.Errorf("%w: got %d", domain.ErrInvalidTopK, topK)
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}
	return topK, nil
}
