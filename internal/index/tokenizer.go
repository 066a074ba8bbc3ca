package index

import (
	"strings"
	"unicode"
)

// tokenize turns raw claims text into index terms: lower-case, punctuation
// stripped, whitespace-split, single-character and stop-word tokens dropped.
// No stemming — patent terminology is precise and stemming can collapse
// legally distinct terms.
//
// When ngramMax is 2 the adjacent-pair bigrams of the surviving tokens are
// appended after the unigrams ("tire pressure" becomes a term of its own).
func tokenize(text string, ngramMax int) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteByte(' ')
		}
	}

	raw := strings.Fields(b.String())
	tokens := raw[:0]
	for _, tok := range raw {
		if len(tok) < 2 || isStopWord(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}

	if ngramMax < 2 || len(tokens) < 2 {
		return tokens
	}

	terms := make([]string, len(tokens), 2*len(tokens)-1)
	copy(terms, tokens)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}
