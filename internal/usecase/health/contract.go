package health

// IndexChecker reports whether the search index can serve queries.
type IndexChecker interface {
	Ready() bool
}
