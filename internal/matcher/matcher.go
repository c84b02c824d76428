package matcher

import (
	"context"
	"math"
	"sort"

	"github.com/ziadkadry99/gitscout/internal/config"
	"github.com/ziadkadry99/gitscout/internal/embeddings"
	"github.com/ziadkadry99/gitscout/internal/errs"
	"github.com/ziadkadry99/gitscout/internal/store"
)

// DefaultTopN bounds result lists when the caller does not specify one.
const DefaultTopN = 10

// Match is one commit scored against a query.
type Match struct {
	OID        string  `json:"oid"`
	Similarity float64 `json:"similarity"`
}

// Matcher ranks indexed commits against natural-language queries by cosine
// similarity over the persisted embedding records.
type Matcher struct {
	embedder embeddings.Embedder
}

// New creates a Matcher.
func New(embedder embeddings.Embedder) *Matcher {
	return &Matcher{embedder: embedder}
}

// Query embeds query once and scores every commit in embs. A commit's score
// is the maximum cosine similarity across its vectors, so one strong message
// or summary is enough to surface it. Results below the strength threshold
// are dropped; survivors are sorted by similarity descending and truncated
// to topN (DefaultTopN when topN < 1).
func (m *Matcher) Query(ctx context.Context, embs map[string]store.CommitEmbedding, query string, strength config.MatchStrength, topN int) ([]Match, error) {
	if query == "" {
		return nil, errs.ErrValidation
	}
	if topN < 1 {
		topN = DefaultTopN
	}
	threshold := strength.Threshold()

	qv, err := m.embedder.EmbedOne(ctx, query)
	if err != nil {
		return nil, err
	}

	var matches []Match
	for oid, rec := range embs {
		best := -1.0
		for _, vec := range rec.Embeddings {
			if s := Cosine(qv, vec); s > best {
				best = s
			}
		}
		if best >= threshold {
			matches = append(matches, Match{OID: oid, Similarity: best})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].OID < matches[j].OID
	})
	if len(matches) > topN {
		matches = matches[:topN]
	}
	return matches, nil
}

// Cosine returns the cosine similarity of a and b, or 0 when either vector
// is empty, mismatched in length, or has zero norm.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
