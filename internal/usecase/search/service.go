package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/stevnnyee/thinkStruct-search-engine/internal/corpus"
	"github.com/stevnnyee/thinkStruct-search-engine/internal/domain"
	"github.com/stevnnyee/thinkStruct-search-engine/internal/domain/patent"
	"github.com/stevnnyee/thinkStruct-search-engine/internal/domain/risk"
	"github.com/stevnnyee/thinkStruct-search-engine/internal/domain/search/query"
	"github.com/stevnnyee/thinkStruct-search-engine/internal/domain/search/result"
	"github.com/stevnnyee/thinkStruct-search-engine/internal/index"
	"github.com/stevnnyee/thinkStruct-search-engine/internal/metrics"
)

// Hybrid search over-fetches semantic candidates before filtering:
// topK × defaultCandidateMultiplier, with a floor of minCandidatePool.
const (
	defaultCandidateMultiplier = 3
	minCandidatePool           = 10
)

// snapshot pairs a corpus with the vector space fitted over it.
// Immutable; queries read whichever snapshot is active when they start.
type snapshot struct {
	store *corpus.Store
	space *index.VectorSpace
}

// Service answers text, find-similar and hybrid queries over the active
// corpus snapshot. Queries are pure reads and may run concurrently;
// Reload swaps in a freshly built snapshot and is serialized internally.
type Service struct {
	loader     CorpusLoader
	idxCfg     index.Config
	multiplier int
	logger     *zap.Logger

	buildMu sync.Mutex   // serializes rebuilds
	mu      sync.RWMutex // guards snap
	snap    *snapshot
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets a custom logger. Default is zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCandidateMultiplier sets the hybrid-search over-fetch factor.
func WithCandidateMultiplier(m int) Option {
	return func(s *Service) {
		if m >= 1 {
			s.multiplier = m
		}
	}
}

// New creates a search service. The index is not built until Reload.
func New(loader CorpusLoader, idxCfg index.Config, opts ...Option) *Service {
	s := &Service{
		loader:     loader,
		idxCfg:     idxCfg,
		multiplier: defaultCandidateMultiplier,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reload loads the corpus and rebuilds the TF-IDF index, then swaps the
// new snapshot in. Concurrent calls queue; queries keep reading the
// previous snapshot until the swap, so a failed rebuild leaves the
// service untouched.
func (s *Service) Reload(ctx context.Context) error {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	start := time.Now()

	store, err := s.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}

	space, err := index.Build(store.Claims(), s.idxCfg)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	s.mu.Lock()
	s.snap = &snapshot{store: store, space: space}
	s.mu.Unlock()

	elapsed := time.Since(start)
	metrics.ObserveIndexBuild(elapsed.Seconds(), store.Len(), space.VocabSize())
	s.logger.Info("index rebuilt",
		zap.Int("documents", store.Len()),
		zap.Int("vocabulary_terms", space.VocabSize()),
		zap.Duration("took", elapsed),
	)
	return nil
}

// Ready reports whether an index has been built.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap != nil
}

// SearchText ranks the whole corpus against a free-text query.
func (s *Service) SearchText(ctx context.Context, q query.Text) ([]result.ScoredResult, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	scores := snap.space.ScoreAll(snap.space.Project(q.Query()))
	rows := rankTop(scores, -1, q.TopK())
	hits := annotate(snap.store, rows, scores)
	metrics.ObserveSearch("text", time.Since(start).Seconds())
	return hits, nil
}

// FindSimilar ranks the corpus against an existing patent's claims vector
// for prior-art/conflict detection. The query document never appears in
// its own results — a self-match of 1.0 carries no information.
func (s *Service) FindSimilar(ctx context.Context, q query.Similar) ([]result.ScoredResult, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	_, row, ok := snap.store.ByID(q.DocumentID())
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownDocument, q.DocumentID())
	}

	start := time.Now()
	scores := snap.space.ScoreAll(snap.space.DocVector(row))
	rows := rankTop(scores, row, q.TopK())
	hits := annotate(snap.store, rows, scores)
	metrics.ObserveSearch("similar", time.Since(start).Seconds())
	return hits, nil
}

// HybridSearch runs the text path over an inflated candidate pool, then
// prunes the ranked candidates with the query's attribute predicates.
// Filters only drop candidates — survivors keep their similarity order.
// Predicates that match nothing yield an empty list, not an error.
func (s *Service) HybridSearch(ctx context.Context, q query.Hybrid) ([]result.ScoredResult, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	scores := snap.space.ScoreAll(snap.space.Project(q.Query()))

	pool := q.TopK()
	filters := q.Filters()
	if !filters.IsEmpty() {
		pool = q.TopK() * s.multiplier
		if pool < minCandidatePool {
			pool = minCandidatePool
		}
	}

	rows := rankTop(scores, -1, pool)

	hits := make([]result.ScoredResult, 0, q.TopK())
	for _, row := range rows {
		rec := snap.store.At(row)
		if !filters.Matches(&rec) {
			continue
		}
		hits = append(hits, newHit(&rec, scores[row]))
		if len(hits) == q.TopK() {
			break
		}
	}

	metrics.ObserveSearch("hybrid", time.Since(start).Seconds())
	return hits, nil
}

// Get returns the patent record with the given id.
func (s *Service) Get(ctx context.Context, id string) (patent.Record, error) {
	snap, err := s.snapshot()
	if err != nil {
		return patent.Record{}, err
	}
	rec, _, ok := snap.store.ByID(id)
	if !ok {
		return patent.Record{}, fmt.Errorf("%w: %s", domain.ErrUnknownDocument, id)
	}
	return rec, nil
}

// List pages through the corpus in corpus order. cursor is the id of the
// last record of the previous page ("" for the first page); the returned
// cursor is empty on the final page.
func (s *Service) List(ctx context.Context, cursor string, limit int) ([]patent.Record, string, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, "", err
	}
	if limit <= 0 {
		limit = 20
	}

	start := 0
	if cursor != "" {
		_, pos, ok := snap.store.ByID(cursor)
		if !ok {
			return nil, "", fmt.Errorf("%w: cursor %s", domain.ErrUnknownDocument, cursor)
		}
		start = pos + 1
	}

	end := start + limit
	if end > snap.store.Len() {
		end = snap.store.Len()
	}

	page := make([]patent.Record, 0, end-start)
	for i := start; i < end; i++ {
		page = append(page, snap.store.At(i))
	}

	next := ""
	if end < snap.store.Len() && len(page) > 0 {
		next = page[len(page)-1].ID()
	}
	return page, next, nil
}

// Stats describes the active snapshot: corpus size, vocabulary size and
// per-field coverage.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	snap, err := s.snapshot()
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Documents:       snap.store.Len(),
		VocabularyTerms: snap.space.VocabSize(),
		FieldCoverage:   snap.store.Coverage(),
	}, nil
}

// snapshot returns the active snapshot, or domain.ErrNotReady before the
// first successful Reload.
func (s *Service) snapshot() (*snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, domain.ErrNotReady
	}
	return s.snap, nil
}

// annotate converts ranked corpus rows into risk-labelled results.
func annotate(store *corpus.Store, rows []int, scores []float64) []result.ScoredResult {
	hits := make([]result.ScoredResult, len(rows))
	for i, row := range rows {
		rec := store.At(row)
		hits[i] = newHit(&rec, scores[row])
	}
	return hits
}

func newHit(rec *patent.Record, score float64) result.ScoredResult {
	return result.New(rec.ID(), rec.Title(), rec.Classification(), score, risk.Classify(score))
}
