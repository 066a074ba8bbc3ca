package domain

import "errors"

var (
	// ErrEmptyCorpus signals an index build over zero documents.
	ErrEmptyCorpus = errors.New("empty corpus")
	// ErrEmptyVocabulary signals that no terms survived tokenization and pruning.
	ErrEmptyVocabulary = errors.New("empty vocabulary")
	// ErrUnknownDocument signals a lookup of a patent id absent from the corpus.
	ErrUnknownDocument = errors.New("unknown document")
	// ErrInvalidTopK signals a non-positive top-K request.
	ErrInvalidTopK = errors.New("top_k must be positive")
	// ErrNotReady signals a query against an engine whose index has not been built.
	ErrNotReady = errors.New("index not built")
	// ErrDuplicateDocument signals two corpus records sharing an id.
	ErrDuplicateDocument = errors.New("duplicate document id")
)
