package index

import (
	"errors"
	"math"
	"testing"

	"github.com/stevnnyee/thinkStruct-search-engine/internal/domain"
)

const epsilon = 1e-9

func TestBuild_EmptyCorpus(t *testing.T) {
	if _, err := Build(nil, Config{}); !errors.Is(err, domain.ErrEmptyCorpus) {
		t.Errorf("expected ErrEmptyCorpus, got %v", err)
	}
}

func TestBuild_EmptyVocabulary(t *testing.T) {
	// Nothing but stop words and single characters.
	_, err := Build([]string{"the of and", "a an it"}, Config{})
	if !errors.Is(err, domain.ErrEmptyVocabulary) {
		t.Errorf("expected ErrEmptyVocabulary, got %v", err)
	}
}

func TestBuild_DocVectorsNormalized(t *testing.T) {
	vs, err := Build([]string{
		"a wireless sensor for tire pressure monitoring",
		"an oil filtration assembly",
		"tire tread wear sensor",
	}, Config{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for i := 0; i < vs.Len(); i++ {
		v := vs.DocVector(i)
		var norm float64
		for _, w := range v.weights {
			norm += w * w
		}
		if math.Abs(norm-1) > epsilon {
			t.Errorf("doc %d: squared norm = %v, want 1", i, norm)
		}
	}
}

func TestScoreAll_Range(t *testing.T) {
	vs, err := Build([]string{
		"a wireless sensor for tire pressure monitoring",
		"an oil filtration assembly for engines",
		"wireless tire pressure sensor with telemetry",
	}, Config{NGramMax: 2})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	q := vs.Project("wireless tire sensor")
	scores := vs.ScoreAll(q)
	if len(scores) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(scores))
	}
	for i, s := range scores {
		if s < 0 || s > 1 {
			t.Errorf("score[%d] = %v, outside [0,1]", i, s)
		}
	}
}

func TestScoreAll_SelfSimilarityIsOne(t *testing.T) {
	claims := []string{
		"a wireless sensor for tire pressure monitoring",
		"an oil filtration assembly",
	}
	vs, err := Build(claims, Config{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	scores := vs.ScoreAll(vs.DocVector(0))
	if math.Abs(scores[0]-1) > epsilon {
		t.Errorf("self-similarity = %v, want 1", scores[0])
	}
}

func TestScoreAll_DisjointVocabularyScoresZero(t *testing.T) {
	vs, err := Build([]string{
		"wireless sensor tire pressure",
		"oil filtration assembly engine",
	}, Config{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	q := vs.Project("wireless tire sensor")
	scores := vs.ScoreAll(q)
	if scores[0] <= 0 {
		t.Errorf("expected positive score for overlapping doc, got %v", scores[0])
	}
	if scores[1] != 0 {
		t.Errorf("expected 0 for disjoint doc, got %v", scores[1])
	}
}

func TestProject_OutOfVocabularyQuery(t *testing.T) {
	vs, err := Build([]string{"wireless sensor", "oil filter"}, Config{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	q := vs.Project("quantum hyperdrive")
	if !q.IsZero() {
		t.Error("fully out-of-vocabulary query should project to the zero vector")
	}
	for i, s := range vs.ScoreAll(q) {
		if s != 0 {
			t.Errorf("score[%d] = %v, want 0 for zero query", i, s)
		}
	}
}

func TestProject_DoesNotGrowVocabulary(t *testing.T) {
	vs, err := Build([]string{"wireless sensor", "oil filter"}, Config{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	before := vs.VocabSize()
	vs.Project("entirely novel words everywhere")
	if vs.VocabSize() != before {
		t.Error("Project must never mutate the fitted vocabulary")
	}
}

func TestBuild_MinDocFreq(t *testing.T) {
	vs, err := Build([]string{
		"sensor assembly",
		"sensor housing",
		"sensor bracket",
	}, Config{MinDocFreq: 2})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// Only "sensor" appears in >= 2 documents.
	if vs.VocabSize() != 1 {
		t.Errorf("expected vocabulary of 1, got %d", vs.VocabSize())
	}
}

func TestBuild_MinDocFreqCanEmptyVocabulary(t *testing.T) {
	_, err := Build([]string{"sensor", "filter"}, Config{MinDocFreq: 2})
	if !errors.Is(err, domain.ErrEmptyVocabulary) {
		t.Errorf("expected ErrEmptyVocabulary, got %v", err)
	}
}

func TestBuild_MaxFeatures(t *testing.T) {
	vs, err := Build([]string{
		"sensor sensor sensor tire tire valve",
		"sensor tire brake",
	}, Config{MaxFeatures: 2})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if vs.VocabSize() != 2 {
		t.Fatalf("expected 2 features, got %d", vs.VocabSize())
	}
	// The two most frequent terms are sensor (4) and tire (3); valve and
	// brake are pruned, so a valve query projects to zero.
	if q := vs.Project("valve brake"); !q.IsZero() {
		t.Error("pruned terms must not survive in the vocabulary")
	}
	if q := vs.Project("sensor tire"); q.IsZero() {
		t.Error("kept terms must remain queryable")
	}
}

func TestBuild_SmoothedIDF(t *testing.T) {
	// A term present in every document keeps a positive weight under
	// smoothed IDF, so a universal-term query still ranks.
	vs, err := Build([]string{"sensor tire", "sensor oil"}, Config{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	q := vs.Project("sensor")
	scores := vs.ScoreAll(q)
	if scores[0] <= 0 || scores[1] <= 0 {
		t.Errorf("universal term should still score: %v", scores)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	claims := []string{
		"a wireless sensor for tire pressure monitoring",
		"an oil filtration assembly",
		"tire tread wear sensor",
	}
	a, err := Build(claims, Config{NGramMax: 2, MinDocFreq: 1})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b, err := Build(claims, Config{NGramMax: 2, MinDocFreq: 1})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	q := "wireless tire sensor"
	sa := a.ScoreAll(a.Project(q))
	sb := b.ScoreAll(b.Project(q))
	for i := range sa {
		if sa[i] != sb[i] {
			t.Fatalf("score[%d] differs between identical builds: %v vs %v", i, sa[i], sb[i])
		}
	}
}
