package search

import (
	"context"

	"github.com/stevnnyee/thinkStruct-search-engine/internal/corpus"
)

// CorpusLoader produces a fresh corpus snapshot.
type CorpusLoader interface {
	Load(ctx context.Context) (*corpus.Store, error)
}

// Stats describes the active snapshot.
type Stats struct {
	Documents       int
	VocabularyTerms int
	FieldCoverage   map[string]float64
}
