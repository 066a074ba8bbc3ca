// Package index builds a TF-IDF vector space over patent claims text and
// scores cosine similarity against it. A VectorSpace is immutable after
// Build; a corpus change requires a fresh Build.
package index

import (
	"math"
	"sort"

	"github.com/stevnnyee/thinkStruct-search-engine/internal/domain"
)

// Config controls vocabulary construction.
type Config struct {
	// NGramMax emits adjacent-pair bigrams in addition to unigrams when 2.
	// 0 or 1 means unigrams only.
	NGramMax int
	// MinDocFreq drops terms appearing in fewer documents. 0 or 1 keeps all.
	MinDocFreq int
	// MaxFeatures keeps only the top-N terms by total corpus frequency.
	// 0 means unlimited.
	MaxFeatures int
}

// Vector is a sparse L2-normalized term-weight vector.
// Term column indices are strictly increasing.
type Vector struct {
	terms   []int
	weights []float64
}

// IsZero reports whether the vector has no non-zero components.
func (v Vector) IsZero() bool { return len(v.terms) == 0 }

// VectorSpace is a fitted TF-IDF model: vocabulary, per-term smoothed IDF
// and one normalized vector per corpus document. Row i corresponds to the
// i-th document of the claims slice passed to Build, forever.
type VectorSpace struct {
	cfg   Config
	vocab map[string]int
	idf   []float64
	docs  []Vector
}

// Build fits the vector space over the whole corpus's claims text.
// Returns domain.ErrEmptyCorpus for a zero-document corpus and
// domain.ErrEmptyVocabulary when no terms survive stop-word removal and
// vocabulary pruning.
func Build(claims []string, cfg Config) (*VectorSpace, error) {
	if len(claims) == 0 {
		return nil, domain.ErrEmptyCorpus
	}

	docTerms := make([][]string, len(claims))
	for i, text := range claims {
		docTerms[i] = tokenize(text, cfg.NGramMax)
	}

	df := make(map[string]int)
	totalTF := make(map[string]int)
	for _, terms := range docTerms {
		seen := make(map[string]bool, len(terms))
		for _, t := range terms {
			totalTF[t]++
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}

	if cfg.MinDocFreq > 1 {
		for t, n := range df {
			if n < cfg.MinDocFreq {
				delete(df, t)
			}
		}
	}

	kept := make([]string, 0, len(df))
	for t := range df {
		kept = append(kept, t)
	}
	if cfg.MaxFeatures > 0 && len(kept) > cfg.MaxFeatures {
		// Keep the most frequent terms; ties break alphabetically so the
		// vocabulary is deterministic.
		sort.Slice(kept, func(i, j int) bool {
			if totalTF[kept[i]] != totalTF[kept[j]] {
				return totalTF[kept[i]] > totalTF[kept[j]]
			}
			return kept[i] < kept[j]
		})
		kept = kept[:cfg.MaxFeatures]
	}
	if len(kept) == 0 {
		return nil, domain.ErrEmptyVocabulary
	}
	sort.Strings(kept)

	vocab := make(map[string]int, len(kept))
	for col, t := range kept {
		vocab[t] = col
	}

	// Smoothed IDF: log((1+N)/(1+df)) + 1. Never divides by zero and keeps
	// universal terms at a positive weight.
	n := float64(len(claims))
	idf := make([]float64, len(kept))
	for t, col := range vocab {
		idf[col] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}

	vs := &VectorSpace{cfg: cfg, vocab: vocab, idf: idf}
	vs.docs = make([]Vector, len(claims))
	for i, terms := range docTerms {
		vs.docs[i] = vs.vectorize(terms)
	}
	return vs, nil
}

// Project maps query text into the fitted vocabulary. Out-of-vocabulary
// terms contribute nothing; a fully out-of-vocabulary query yields the zero
// vector, which scores 0 against every document.
func (vs *VectorSpace) Project(text string) Vector {
	return vs.vectorize(tokenize(text, vs.cfg.NGramMax))
}

// ScoreAll returns the cosine similarity of the query vector against every
// document row. All vectors are L2-normalized, so cosine reduces to a dot
// product and every score lies in [0,1].
func (vs *VectorSpace) ScoreAll(query Vector) []float64 {
	scores := make([]float64, len(vs.docs))
	if query.IsZero() {
		return scores
	}
	for i, doc := range vs.docs {
		scores[i] = dot(query, doc)
	}
	return scores
}

// DocVector returns the fitted vector of corpus row i.
func (vs *VectorSpace) DocVector(i int) Vector { return vs.docs[i] }

// Len returns the number of document rows.
func (vs *VectorSpace) Len() int { return len(vs.docs) }

// VocabSize returns the fitted vocabulary size.
func (vs *VectorSpace) VocabSize() int { return len(vs.vocab) }

// vectorize computes the L2-normalized TF-IDF vector of a token sequence.
func (vs *VectorSpace) vectorize(terms []string) Vector {
	tf := make(map[int]float64)
	for _, t := range terms {
		if col, ok := vs.vocab[t]; ok {
			tf[col]++
		}
	}
	if len(tf) == 0 {
		return Vector{}
	}

	cols := make([]int, 0, len(tf))
	for col := range tf {
		cols = append(cols, col)
	}
	sort.Ints(cols)

	weights := make([]float64, len(cols))
	var norm float64
	for i, col := range cols {
		w := tf[col] * vs.idf[col]
		weights[i] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for i := range weights {
		weights[i] /= norm
	}
	return Vector{terms: cols, weights: weights}
}

// dot multiplies two sorted sparse vectors with a merge walk.
func dot(a, b Vector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.terms) && j < len(b.terms) {
		switch {
		case a.terms[i] == b.terms[j]:
			sum += a.weights[i] * b.weights[j]
			i++
			j++
		case a.terms[i] < b.terms[j]:
			i++
		default:
			j++
		}
	}
	// Normalized non-negative vectors can still exceed 1 by a few ULPs.
	if sum > 1 {
		sum = 1
	}
	return sum
}
