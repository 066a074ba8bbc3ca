package search

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stevnnyee/thinkStruct-search-engine/internal/corpus"
	"github.com/stevnnyee/thinkStruct-search-engine/internal/domain"
	"github.com/stevnnyee/thinkStruct-search-engine/internal/domain/patent"
	"github.com/stevnnyee/thinkStruct-search-engine/internal/domain/risk"
	"github.com/stevnnyee/thinkStruct-search-engine/internal/domain/search/filter"
	"github.com/stevnnyee/thinkStruct-search-engine/internal/domain/search/query"
	"github.com/stevnnyee/thinkStruct-search-engine/internal/index"
)

// --- Mocks ---

type staticLoader struct {
	records []patent.Record
	err     error
	calls   int
}

func (l *staticLoader) Load(_ context.Context) (*corpus.Store, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return corpus.NewStore(l.records)
}

// --- Fixtures ---

// demoCorpus is the two-patent conflict-detection scenario plus a third
// record sharing vocabulary with the first.
func demoCorpus() []patent.Record {
	return []patent.Record{
		patent.Reconstruct("P1", "TIRE PRESSURE SENSOR", "abs",
			"a wireless sensor for tire pressure monitoring", "B60C", nil),
		patent.Reconstruct("P2", "ENGINE OIL FILTER", "abs",
			"an oil filtration assembly", "F01M", nil),
		patent.Reconstruct("P3", "WHEEL SPEED SENSOR", "abs",
			"a wireless sensor attached to a wheel", "B60B", nil),
	}
}

func readyService(t *testing.T, records []patent.Record) *Service {
	t.Helper()
	svc := New(&staticLoader{records: records}, index.Config{})
	if err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	return svc
}

func textQuery(t *testing.T, q string, topK int) query.Text {
	t.Helper()
	tq, err := query.NewText(q, topK)
	if err != nil {
		t.Fatalf("query.NewText: %v", err)
	}
	return tq
}

func hybridQuery(t *testing.T, q string, topK int, f filter.Expression) query.Hybrid {
	t.Helper()
	hq, err := query.NewHybrid(q, topK, f)
	if err != nil {
		t.Fatalf("query.NewHybrid: %v", err)
	}
	return hq
}

// --- Tests ---

func TestSearchText_RanksByOverlap(t *testing.T) {
	svc := readyService(t, demoCorpus())

	hits, err := svc.SearchText(context.Background(), textQuery(t, "wireless tire sensor", 3))
	if err != nil {
		t.Fatalf("SearchText: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
	if hits[0].ID() != "P1" {
		t.Errorf("expected P1 ranked first, got %s", hits[0].ID())
	}
	// P2 shares no vocabulary with the query, so it scores 0 and trails.
	last := hits[len(hits)-1]
	if last.ID() != "P2" || last.Score() != 0 {
		t.Errorf("expected P2 last with score 0, got %s (%v)", last.ID(), last.Score())
	}
	if hits[0].Score() <= hits[1].Score() {
		t.Errorf("expected P1 materially above P3: %v vs %v", hits[0].Score(), hits[1].Score())
	}
}

func TestSearchText_ScoresInRangeAndAnnotated(t *testing.T) {
	svc := readyService(t, demoCorpus())

	hits, err := svc.SearchText(context.Background(), textQuery(t, "wireless sensor", 3))
	if err != nil {
		t.Fatalf("SearchText: %v", err)
	}
	for _, h := range hits {
		if h.Score() < 0 || h.Score() > 1 {
			t.Errorf("%s: score %v outside [0,1]", h.ID(), h.Score())
		}
		if h.Risk() != risk.Classify(h.Score()) {
			t.Errorf("%s: risk label %v does not match score %v", h.ID(), h.Risk(), h.Score())
		}
	}
}

func TestSearchText_Truncation(t *testing.T) {
	svc := readyService(t, demoCorpus())

	hits, err := svc.SearchText(context.Background(), textQuery(t, "sensor", 2))
	if err != nil {
		t.Fatalf("SearchText: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("expected topK=2 hits, got %d", len(hits))
	}
}

func TestSearchText_Idempotent(t *testing.T) {
	svc := readyService(t, demoCorpus())
	q := textQuery(t, "wireless tire sensor", 3)

	first, err := svc.SearchText(context.Background(), q)
	if err != nil {
		t.Fatalf("SearchText: %v", err)
	}
	second, err := svc.SearchText(context.Background(), q)
	if err != nil {
		t.Fatalf("SearchText: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("identical queries against an unchanged corpus must return identical results")
	}
}

func TestSearchText_OutOfVocabularyQuery(t *testing.T) {
	svc := readyService(t, demoCorpus())

	hits, err := svc.SearchText(context.Background(), textQuery(t, "quantum hyperdrive", 3))
	if err != nil {
		t.Fatalf("SearchText: %v", err)
	}
	// Zero scores are valid results, not an error.
	for _, h := range hits {
		if h.Score() != 0 {
			t.Errorf("%s: expected score 0, got %v", h.ID(), h.Score())
		}
		if h.Risk() != risk.Low {
			t.Errorf("%s: expected LOW risk, got %v", h.ID(), h.Risk())
		}
	}
}

func TestSearchText_NotReady(t *testing.T) {
	svc := New(&staticLoader{records: demoCorpus()}, index.Config{})
	_, err := svc.SearchText(context.Background(), textQuery(t, "sensor", 3))
	if !errors.Is(err, domain.ErrNotReady) {
		t.Errorf("expected ErrNotReady, got %v", err)
	}
}

func TestFindSimilar_ExcludesSelf(t *testing.T) {
	svc := readyService(t, demoCorpus())

	for _, id := range []string{"P1", "P2", "P3"} {
		q, err := query.NewSimilar(id, 5)
		if err != nil {
			t.Fatalf("query.NewSimilar: %v", err)
		}
		hits, err := svc.FindSimilar(context.Background(), q)
		if err != nil {
			t.Fatalf("FindSimilar(%s): %v", id, err)
		}
		for _, h := range hits {
			if h.ID() == id {
				t.Errorf("FindSimilar(%s) returned the query document itself", id)
			}
		}
	}
}

func TestFindSimilar_RanksSharedVocabularyFirst(t *testing.T) {
	svc := readyService(t, demoCorpus())

	q, err := query.NewSimilar("P1", 5)
	if err != nil {
		t.Fatalf("query.NewSimilar: %v", err)
	}
	hits, err := svc.FindSimilar(context.Background(), q)
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	// P3 shares "wireless sensor" with P1; P2 shares nothing.
	if hits[0].ID() != "P3" || hits[1].ID() != "P2" {
		t.Errorf("unexpected ranking: %s, %s", hits[0].ID(), hits[1].ID())
	}
	if hits[0].Score() <= hits[1].Score() {
		t.Errorf("expected P3 above P2: %v vs %v", hits[0].Score(), hits[1].Score())
	}
}

func TestFindSimilar_UnknownDocument(t *testing.T) {
	svc := readyService(t, demoCorpus())

	q, err := query.NewSimilar("NOPE", 5)
	if err != nil {
		t.Fatalf("query.NewSimilar: %v", err)
	}
	if _, err := svc.FindSimilar(context.Background(), q); !errors.Is(err, domain.ErrUnknownDocument) {
		t.Errorf("expected ErrUnknownDocument, got %v", err)
	}
}

func TestFindSimilar_SingleOtherDocument(t *testing.T) {
	// A corpus where the only other document shares no vocabulary: the
	// result list still contains it, at score 0.
	svc := readyService(t, demoCorpus()[:2])

	q, err := query.NewSimilar("P1", 5)
	if err != nil {
		t.Fatalf("query.NewSimilar: %v", err)
	}
	hits, err := svc.FindSimilar(context.Background(), q)
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	if len(hits) != 1 || hits[0].ID() != "P2" {
		t.Fatalf("expected only P2, got %d hits", len(hits))
	}
}

func TestHybridSearch_ClassificationPrefix(t *testing.T) {
	svc := readyService(t, demoCorpus())

	hits, err := svc.HybridSearch(context.Background(),
		hybridQuery(t, "sensor", 3, filter.NewExpression("B60", "", "")))
	if err != nil {
		t.Fatalf("HybridSearch: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected B60-classified hits")
	}
	for _, h := range hits {
		if h.Classification() != "B60C" && h.Classification() != "B60B" {
			t.Errorf("filter leaked %s (%s)", h.ID(), h.Classification())
		}
	}
}

func TestHybridSearch_ExcludesHigherScoringMismatch(t *testing.T) {
	svc := readyService(t, demoCorpus())

	// P1 scores highest for "sensor" but its B60C code fails the F01 filter.
	hits, err := svc.HybridSearch(context.Background(),
		hybridQuery(t, "sensor", 3, filter.NewExpression("F01", "", "")))
	if err != nil {
		t.Fatalf("HybridSearch: %v", err)
	}
	for _, h := range hits {
		if h.ID() == "P1" {
			t.Error("P1 must be excluded: B60C does not start with F01")
		}
	}
}

func TestHybridSearch_NoPredicatesPassThrough(t *testing.T) {
	svc := readyService(t, demoCorpus())

	hybrid, err := svc.HybridSearch(context.Background(),
		hybridQuery(t, "wireless tire sensor", 3, filter.NewExpression("", "", "")))
	if err != nil {
		t.Fatalf("HybridSearch: %v", err)
	}
	text, err := svc.SearchText(context.Background(), textQuery(t, "wireless tire sensor", 3))
	if err != nil {
		t.Fatalf("SearchText: %v", err)
	}
	if !reflect.DeepEqual(hybrid, text) {
		t.Error("hybrid search without predicates must equal plain text search")
	}
}

func TestHybridSearch_UnmatchedPredicateYieldsEmpty(t *testing.T) {
	svc := readyService(t, demoCorpus())

	hits, err := svc.HybridSearch(context.Background(),
		hybridQuery(t, "sensor", 3, filter.NewExpression("Z99", "", "")))
	if err != nil {
		t.Fatalf("HybridSearch: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected empty result list, got %d hits", len(hits))
	}
}

func TestHybridSearch_PreservesSimilarityOrder(t *testing.T) {
	svc := readyService(t, demoCorpus())

	hits, err := svc.HybridSearch(context.Background(),
		hybridQuery(t, "wireless sensor", 3, filter.NewExpression("B60", "", "")))
	if err != nil {
		t.Fatalf("HybridSearch: %v", err)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score() > hits[i-1].Score() {
			t.Errorf("filter reordered survivors: %v after %v", hits[i].Score(), hits[i-1].Score())
		}
	}
}

func TestHybridSearch_TitleKeywords(t *testing.T) {
	svc := readyService(t, demoCorpus())

	hits, err := svc.HybridSearch(context.Background(),
		hybridQuery(t, "sensor", 3, filter.NewExpression("", "wheel speed", "")))
	if err != nil {
		t.Fatalf("HybridSearch: %v", err)
	}
	if len(hits) != 1 || hits[0].ID() != "P3" {
		t.Fatalf("expected only P3, got %v hits", len(hits))
	}
}

func TestReload_SwapsSnapshot(t *testing.T) {
	loader := &staticLoader{records: demoCorpus()}
	svc := New(loader, index.Config{})
	if svc.Ready() {
		t.Fatal("service must not be ready before the first Reload")
	}
	if err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if !svc.Ready() {
		t.Fatal("service must be ready after Reload")
	}

	// Second reload with a shrunk corpus replaces the snapshot.
	loader.records = demoCorpus()[:2]
	if err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Documents != 2 {
		t.Errorf("expected 2 documents after reload, got %d", stats.Documents)
	}
}

func TestReload_FailureKeepsPreviousSnapshot(t *testing.T) {
	loader := &staticLoader{records: demoCorpus()}
	svc := New(loader, index.Config{})
	if err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	loader.err = errors.New("disk gone")
	if err := svc.Reload(context.Background()); err == nil {
		t.Fatal("expected reload error")
	}

	// Previous snapshot still serves.
	hits, err := svc.SearchText(context.Background(), textQuery(t, "sensor", 3))
	if err != nil {
		t.Fatalf("SearchText after failed reload: %v", err)
	}
	if len(hits) == 0 {
		t.Error("expected previous snapshot to keep serving")
	}
}

func TestReload_EmptyCorpus(t *testing.T) {
	svc := New(&staticLoader{}, index.Config{})
	if err := svc.Reload(context.Background()); !errors.Is(err, domain.ErrEmptyCorpus) {
		t.Errorf("expected ErrEmptyCorpus, got %v", err)
	}
}

func TestGet(t *testing.T) {
	svc := readyService(t, demoCorpus())

	rec, err := svc.Get(context.Background(), "P2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Title() != "ENGINE OIL FILTER" {
		t.Errorf("unexpected title %q", rec.Title())
	}

	if _, err := svc.Get(context.Background(), "NOPE"); !errors.Is(err, domain.ErrUnknownDocument) {
		t.Errorf("expected ErrUnknownDocument, got %v", err)
	}
}

func TestList_Pagination(t *testing.T) {
	svc := readyService(t, demoCorpus())

	page, next, err := svc.List(context.Background(), "", 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page) != 2 || page[0].ID() != "P1" || page[1].ID() != "P2" {
		t.Fatalf("unexpected first page: %d records", len(page))
	}
	if next != "P2" {
		t.Fatalf("expected cursor P2, got %q", next)
	}

	page, next, err = svc.List(context.Background(), next, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page) != 1 || page[0].ID() != "P3" {
		t.Fatalf("unexpected second page: %d records", len(page))
	}
	if next != "" {
		t.Errorf("expected empty cursor on final page, got %q", next)
	}
}

func TestStats(t *testing.T) {
	svc := readyService(t, demoCorpus())

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Documents != 3 {
		t.Errorf("expected 3 documents, got %d", stats.Documents)
	}
	if stats.VocabularyTerms == 0 {
		t.Error("expected non-empty vocabulary")
	}
	if stats.FieldCoverage["claims"] != 1.0 {
		t.Errorf("expected full claims coverage, got %v", stats.FieldCoverage["claims"])
	}
}
