package matcher

import (
	"context"
	"math"
	"testing"

	"github.com/ziadkadry99/gitscout/internal/config"
	"github.com/ziadkadry99/gitscout/internal/embeddings"
	"github.com/ziadkadry99/gitscout/internal/store"
)

func TestCosine(t *testing.T) {
	cases := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 0}, []float64{1, 0}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"zero norm", []float64{0, 0}, []float64{1, 0}, 0},
		{"length mismatch", []float64{1}, []float64{1, 0}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Cosine(tc.a, tc.b)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("Cosine(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

// queryEmbedder returns a fixed vector for the query so similarities are
// fully controlled by the stored records.
type queryEmbedder struct {
	*embeddings.MockEmbedder
	vec []float64
}

func (e queryEmbedder) EmbedOne(ctx context.Context, text string) ([]float64, error) {
	return e.vec, nil
}

func TestQueryThresholdLaw(t *testing.T) {
	embs := map[string]store.CommitEmbedding{
		"strong": {Messages: []string{"m"}, Embeddings: [][]float64{{1, 0}}},
		"weak":   {Messages: []string{"m"}, Embeddings: [][]float64{{0.25, 0.97}}},
		"anti":   {Messages: []string{"m"}, Embeddings: [][]float64{{-1, 0}}},
	}

	m := New(queryEmbedder{embeddings.NewMockEmbedder(), []float64{1, 0}})
	matches, err := m.Query(context.Background(), embs, "query", config.StrengthMid, 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	threshold := config.StrengthMid.Threshold()
	for _, match := range matches {
		if match.Similarity < threshold {
			t.Errorf("%s below threshold: %.3f < %.3f", match.OID, match.Similarity, threshold)
		}
	}
	if len(matches) != 1 || matches[0].OID != "strong" {
		t.Errorf("expected only the strong match, got %+v", matches)
	}
}

func TestQueryTopNAndOrdering(t *testing.T) {
	embs := map[string]store.CommitEmbedding{}
	vecs := [][]float64{{1, 0}, {0.95, 0.31}, {0.9, 0.43}, {0.85, 0.52}}
	oids := []string{"a", "b", "c", "d"}
	for i, oid := range oids {
		embs[oid] = store.CommitEmbedding{Messages: []string{"m"}, Embeddings: [][]float64{vecs[i]}}
	}

	m := New(queryEmbedder{embeddings.NewMockEmbedder(), []float64{1, 0}})
	matches, err := m.Query(context.Background(), embs, "query", config.StrengthLow, 3)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("top_n not applied: got %d", len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Similarity > matches[i-1].Similarity {
			t.Errorf("results not sorted descending at %d: %+v", i, matches)
		}
	}
	if matches[0].OID != "a" {
		t.Errorf("closest vector should rank first, got %s", matches[0].OID)
	}
}

func TestQueryUsesMaxOverCommitVectors(t *testing.T) {
	embs := map[string]store.CommitEmbedding{
		"mixed": {
			Messages:   []string{"far", "near"},
			Embeddings: [][]float64{{0, 1}, {1, 0}},
		},
	}

	m := New(queryEmbedder{embeddings.NewMockEmbedder(), []float64{1, 0}})
	matches, err := m.Query(context.Background(), embs, "query", config.StrengthHigh, 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 1 || math.Abs(matches[0].Similarity-1) > 1e-9 {
		t.Fatalf("commit score should be the max over its vectors: %+v", matches)
	}
}

// scriptedEmbedder maps exact texts to hand-set vectors, standing in for a
// real model that places related phrasings near each other.
type scriptedEmbedder struct {
	*embeddings.MockEmbedder
	vectors map[string][]float64
}

func (e scriptedEmbedder) EmbedOne(ctx context.Context, text string) ([]float64, error) {
	return e.vectors[text], nil
}

func TestQueryMatchesRelatedPhrasing(t *testing.T) {
	// "fix auth bug" and "authentication crash" share no words, but a
	// semantic model embeds them close together; "update readme" lands far
	// away from both.
	script := scriptedEmbedder{embeddings.NewMockEmbedder(), map[string][]float64{
		"fix auth bug": {0.95, 0.31, 0},
	}}
	embs := map[string]store.CommitEmbedding{
		"auth-commit": {
			Messages:   []string{"authentication crash"},
			Embeddings: [][]float64{{1, 0.2, 0.1}},
		},
		"docs-commit": {
			Messages:   []string{"update readme"},
			Embeddings: [][]float64{{0, 0.1, 1}},
		},
	}

	matches, err := New(script).Query(context.Background(), embs, "fix auth bug", config.StrengthMid, 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 1 || matches[0].OID != "auth-commit" {
		t.Fatalf("reworded query should surface the auth commit only, got %+v", matches)
	}
	if matches[0].Similarity < config.StrengthHigh.Threshold() {
		t.Errorf("related phrasings should score as a strong match, got %.3f", matches[0].Similarity)
	}
}

func TestQueryEmptyQueryRejected(t *testing.T) {
	m := New(embeddings.NewMockEmbedder())
	if _, err := m.Query(context.Background(), nil, "", config.StrengthMid, 10); err == nil {
		t.Fatal("empty query should be rejected")
	}
}

func TestQueryDefaultTopN(t *testing.T) {
	embs := map[string]store.CommitEmbedding{}
	for i := 0; i < 15; i++ {
		oid := string(rune('a' + i))
		embs[oid] = store.CommitEmbedding{Messages: []string{"m"}, Embeddings: [][]float64{{1, 0}}}
	}

	m := New(queryEmbedder{embeddings.NewMockEmbedder(), []float64{1, 0}})
	matches, err := m.Query(context.Background(), embs, "query", config.StrengthLow, 0)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != DefaultTopN {
		t.Errorf("expected default top_n %d, got %d", DefaultTopN, len(matches))
	}
}
