// Package filter holds the hard attribute predicates of hybrid search.
// Predicates prune an already-ranked candidate list; they never rescore
// or reorder survivors.
package filter

import (
	"strings"

	"github.com/stevnnyee/thinkStruct-search-engine/internal/domain/patent"
)

// Expression is a conjunction of the supported hybrid-search predicates.
// Zero or more predicates may be set; an empty expression matches everything.
type Expression struct {
	classification string
	titleKeywords  string
	specificTitle  string
}

// NewExpression creates a filter expression. All predicates are optional.
func NewExpression(classification, titleKeywords, specificTitle string) Expression {
	return Expression{
		classification: strings.TrimSpace(classification),
		titleKeywords:  strings.TrimSpace(titleKeywords),
		specificTitle:  strings.TrimSpace(specificTitle),
	}
}

// Classification returns the classification-code prefix predicate.
func (e Expression) Classification() string { return e.classification }

// TitleKeywords returns the title-keywords predicate phrase.
func (e Expression) TitleKeywords() string { return e.titleKeywords }

// SpecificTitle returns the specific-title substring predicate.
func (e Expression) SpecificTitle() string { return e.specificTitle }

// IsEmpty reports whether no predicate is set.
func (e Expression) IsEmpty() bool {
	return e.classification == "" && e.titleKeywords == "" && e.specificTitle == ""
}

// Matches reports whether the record satisfies every set predicate.
//
//   - classification: the record's code equals the predicate or has it as a
//     prefix, so "B60" admits "B60B".
//   - title keywords: every whitespace-separated word of the phrase appears
//     in the title, case-insensitively.
//   - specific title: the whole phrase appears in the title,
//     case-insensitively.
func (e Expression) Matches(rec *patent.Record) bool {
	if e.classification != "" && !strings.HasPrefix(rec.Classification(), e.classification) {
		return false
	}

	if e.titleKeywords != "" {
		title := strings.ToLower(rec.Title())
		for _, kw := range strings.Fields(strings.ToLower(e.titleKeywords)) {
			if !strings.Contains(title, kw) {
				return false
			}
		}
	}

	if e.specificTitle != "" {
		if !strings.Contains(strings.ToLower(rec.Title()), strings.ToLower(e.specificTitle)) {
			return false
		}
	}

	return true
}
