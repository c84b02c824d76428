package indexer

import (
	"context"

	"github.com/ziadkadry99/gitscout/internal/embeddings"
	"github.com/ziadkadry99/gitscout/internal/store"
)

// CommitEmbedder turns each new commit's message list and file summaries
// into embedding records, reusing cached summary vectors where possible and
// amortizing the rest into a single batched embed call.
type CommitEmbedder struct {
	embedder   embeddings.Embedder
	onProgress ProgressFunc
}

// NewCommitEmbedder creates a CommitEmbedder.
func NewCommitEmbedder(embedder embeddings.Embedder, onProgress ProgressFunc) *CommitEmbedder {
	return &CommitEmbedder{embedder: embedder, onProgress: onProgress}
}

// slotRef locates one pending text inside a commit's assembly plan.
type slotRef struct {
	commit int // index into commits
	pos    int // position within the commit's assembled message list
}

// Run merges embedding records for all new commits into embs and returns
// the new oids, newest-first. For every commit, the embedded messages keep
// the order original+amplified messages first, then summaries in file
// order. Summaries equal to the EmptySummary sentinel carry no signal and
// are excluded from the record entirely, preserving the messages/embeddings
// pairing invariant.
func (ce *CommitEmbedder) Run(ctx context.Context, commits []store.CommitRecord, cache map[string]store.FileCacheEntry, embs map[string]store.CommitEmbedding) ([]string, error) {
	type plan struct {
		messages []string
		vectors  [][]float64
	}

	plans := make([]plan, len(commits))
	var toEmbed []string
	var refs []slotRef

	for ci, rec := range commits {
		p := plan{}

		for _, msg := range rec.Messages {
			p.messages = append(p.messages, msg)
			p.vectors = append(p.vectors, nil)
			toEmbed = append(toEmbed, msg)
			refs = append(refs, slotRef{commit: ci, pos: len(p.messages) - 1})
		}

		for fi, summary := range rec.Summaries {
			if summary == store.EmptySummary {
				continue
			}
			p.messages = append(p.messages, summary)
			p.vectors = append(p.vectors, nil)

			if entry, ok := cache[rec.Files[fi]]; ok && entry.Summary == summary && len(entry.Embedding) > 0 {
				p.vectors[len(p.vectors)-1] = entry.Embedding
				continue
			}
			toEmbed = append(toEmbed, summary)
			refs = append(refs, slotRef{commit: ci, pos: len(p.messages) - 1})
		}

		plans[ci] = p
	}

	// One batched call across every commit amortizes the network cost.
	vectors, err := ce.embedder.EmbedMany(ctx, toEmbed)
	if err != nil {
		return nil, err
	}
	for i, ref := range refs {
		plans[ref.commit].vectors[ref.pos] = vectors[i]
	}

	var newOIDs []string
	for ci, rec := range commits {
		p := plans[ci]

		// Blank texts yield no vector; drop both sides to keep alignment.
		var messages []string
		var vecs [][]float64
		for i, v := range p.vectors {
			if v == nil {
				continue
			}
			messages = append(messages, p.messages[i])
			vecs = append(vecs, v)
		}

		embs[rec.OID] = store.CommitEmbedding{Messages: messages, Embeddings: vecs}
		newOIDs = append(newOIDs, rec.OID)

		if ce.onProgress != nil {
			ce.onProgress(ci+1, len(commits))
		}
	}

	if err := store.ValidateCommitEmbeddings(embs); err != nil {
		return nil, err
	}
	return newOIDs, nil
}
