// Package corpus holds the in-memory document store: an ordered, immutable
// snapshot of patent records plus the loader that populates it from JSON
// batch files.
package corpus

import (
	"fmt"

	"github.com/stevnnyee/thinkStruct-search-engine/internal/domain"
	"github.com/stevnnyee/thinkStruct-search-engine/internal/domain/patent"
)

// Store is an ordered immutable snapshot of the corpus. Position i is the
// implicit document id aligning record i with row i of the TF-IDF matrix;
// the mapping never changes after construction.
type Store struct {
	records []patent.Record
	byID    map[string]int
}

// NewStore creates a snapshot over the given records. Record order is
// preserved. Duplicate ids are rejected — the id is the only lookup key.
func NewStore(records []patent.Record) (*Store, error) {
	byID := make(map[string]int, len(records))
	for i, r := range records {
		if prev, ok := byID[r.ID()]; ok {
			return nil, fmt.Errorf("%w: %s at positions %d and %d",
				domain.ErrDuplicateDocument, r.ID(), prev, i)
		}
		byID[r.ID()] = i
	}
	return &Store{records: records, byID: byID}, nil
}

// Len returns the number of records.
func (s *Store) Len() int { return len(s.records) }

// At returns the record at corpus position i.
func (s *Store) At(i int) patent.Record { return s.records[i] }

// ByID returns the record with the given id and its corpus position.
func (s *Store) ByID(id string) (patent.Record, int, bool) {
	i, ok := s.byID[id]
	if !ok {
		return patent.Record{}, 0, false
	}
	return s.records[i], i, true
}

// Claims returns the claims text of every record in corpus order, the
// input of the vector-space build.
func (s *Store) Claims() []string {
	claims := make([]string, len(s.records))
	for i, r := range s.records {
		claims[i] = r.Claims()
	}
	return claims
}

// Coverage reports the non-empty ratio per field across the corpus.
// Critical fields are always 1.0 by loader contract; optional fields
// (classification, metadata keys) vary.
func (s *Store) Coverage() map[string]float64 {
	if len(s.records) == 0 {
		return map[string]float64{}
	}

	counts := map[string]int{}
	for _, r := range s.records {
		if r.ID() != "" {
			counts["doc_number"]++
		}
		if r.Title() != "" {
			counts["title"]++
		}
		if r.Abstract() != "" {
			counts["abstract"]++
		}
		if r.Claims() != "" {
			counts["claims"]++
		}
		if r.Classification() != "" {
			counts["classification"]++
		}
		for k, v := range r.Meta() {
			if v != "" {
				counts[k]++
			}
		}
	}

	n := float64(len(s.records))
	coverage := make(map[string]float64, len(counts))
	for field, c := range counts {
		coverage[field] = float64(c) / n
	}
	return coverage
}
