package indexer

import (
	"context"
	"strings"
	"testing"

	"github.com/ziadkadry99/gitscout/internal/embeddings"
	"github.com/ziadkadry99/gitscout/internal/ignore"
	"github.com/ziadkadry99/gitscout/internal/store"
)

func newSummaryIndexer(chat *countingChat, emb *countingEmbedder, src *fakeSource, patterns []string) *SummaryIndexer {
	return NewSummaryIndexer(SummaryIndexerConfig{
		Chat:     chat,
		Embedder: emb,
		Src:      src,
		Ignorer:  ignore.New(patterns),
		Model:    "test-model",
	})
}

func TestSummariesAlignWithFiles(t *testing.T) {
	src := &fakeSource{files: map[string][]byte{
		"a.go": []byte("package a"),
		"b.go": []byte("package b"),
	}}
	commits := []store.CommitRecord{{
		OID:      "c1",
		Messages: []string{"add a and b"},
		Files:    []string{"a.go", "b.go"},
	}}
	cache := map[string]store.FileCacheEntry{}

	chat := &countingChat{}
	emb := &countingEmbedder{inner: embeddings.NewMockEmbedder()}
	si := newSummaryIndexer(chat, emb, src, nil)

	if err := si.Run(context.Background(), commits, cache); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(commits[0].Summaries) != len(commits[0].Files) {
		t.Fatalf("summaries misaligned: %d vs %d", len(commits[0].Summaries), len(commits[0].Files))
	}
	for i, s := range commits[0].Summaries {
		if s == "" || s == store.EmptySummary {
			t.Errorf("summary %d should be real, got %q", i, s)
		}
	}
	for _, path := range commits[0].Files {
		entry, ok := cache[path]
		if !ok {
			t.Errorf("cache missing %s", path)
			continue
		}
		if entry.Summary == store.EmptySummary || len(entry.Embedding) == 0 {
			t.Errorf("cache entry for %s incomplete: %+v", path, entry)
		}
	}
}

func TestCachedFilesSkipChatAndEmbed(t *testing.T) {
	src := &fakeSource{files: map[string][]byte{
		"a.go": []byte("package a"),
	}}
	commits := []store.CommitRecord{{
		OID:      "c1",
		Messages: []string{"touch a"},
		Files:    []string{"a.go"},
	}}
	cache := map[string]store.FileCacheEntry{
		"a.go": {Summary: "already summarized", Embedding: []float64{0.1, 0.2}},
	}

	chat := &countingChat{}
	emb := &countingEmbedder{inner: embeddings.NewMockEmbedder()}
	si := newSummaryIndexer(chat, emb, src, nil)

	if err := si.Run(context.Background(), commits, cache); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if chat.callCount() != 0 {
		t.Errorf("cached file triggered %d chat calls", chat.callCount())
	}
	if n := len(emb.embeddedTexts()); n != 0 {
		t.Errorf("cached file triggered %d embed inputs", n)
	}
	if commits[0].Summaries[0] != "already summarized" {
		t.Errorf("cached summary not reused: %q", commits[0].Summaries[0])
	}
}

func TestIgnoredFilesGetEmptySummaryAndNoCacheEntry(t *testing.T) {
	src := &fakeSource{files: map[string][]byte{
		"main.go":    []byte("package main"),
		"secret.env": []byte("TOKEN=x"),
	}}
	commits := []store.CommitRecord{{
		OID:      "c1",
		Messages: []string{"add files"},
		Files:    []string{"main.go", "secret.env"},
	}}
	cache := map[string]store.FileCacheEntry{}

	chat := &countingChat{}
	emb := &countingEmbedder{inner: embeddings.NewMockEmbedder()}
	si := newSummaryIndexer(chat, emb, src, []string{"*.env"})

	if err := si.Run(context.Background(), commits, cache); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if commits[0].Summaries[1] != store.EmptySummary {
		t.Errorf("ignored file should get the empty-summary sentinel, got %q", commits[0].Summaries[1])
	}
	if _, ok := cache["secret.env"]; ok {
		t.Error("ignored file must not enter the cache")
	}
	for _, text := range emb.embeddedTexts() {
		if strings.Contains(text, "secret") {
			t.Errorf("ignored file content leaked into embedding input: %q", text)
		}
	}
}

func TestMissingAndBinaryFilesGetEmptySummary(t *testing.T) {
	src := &fakeSource{files: map[string][]byte{
		"blob.bin": {0x00, 0x01, 0x02, 0x03},
	}}
	commits := []store.CommitRecord{{
		OID:      "c1",
		Messages: []string{"binary and deleted"},
		Files:    []string{"blob.bin", "deleted.go"},
	}}
	cache := map[string]store.FileCacheEntry{}

	chat := &countingChat{}
	emb := &countingEmbedder{inner: embeddings.NewMockEmbedder()}
	si := newSummaryIndexer(chat, emb, src, nil)

	if err := si.Run(context.Background(), commits, cache); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for i, path := range commits[0].Files {
		if commits[0].Summaries[i] != store.EmptySummary {
			t.Errorf("%s should be EMPTY_SUMMARY, got %q", path, commits[0].Summaries[i])
		}
	}
	if chat.callCount() != 0 {
		t.Errorf("binary/missing files should not reach the chat, got %d calls", chat.callCount())
	}
}

func TestChatFailureDegradesToEmptySummary(t *testing.T) {
	src := &fakeSource{files: map[string][]byte{
		"good.go": []byte("package good"),
		"bad.go":  []byte("package bad"),
	}}
	commits := []store.CommitRecord{{
		OID:      "c1",
		Messages: []string{"two files"},
		Files:    []string{"good.go", "bad.go"},
	}}
	cache := map[string]store.FileCacheEntry{}

	chat := &countingChat{failOn: func(prompt string) bool {
		return strings.Contains(prompt, "bad.go")
	}}
	emb := &countingEmbedder{inner: embeddings.NewMockEmbedder()}
	si := newSummaryIndexer(chat, emb, src, nil)

	if err := si.Run(context.Background(), commits, cache); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if commits[0].Summaries[0] == store.EmptySummary {
		t.Error("good.go should have a real summary")
	}
	if commits[0].Summaries[1] != store.EmptySummary {
		t.Errorf("failed summarization should degrade to EMPTY_SUMMARY, got %q", commits[0].Summaries[1])
	}
}

func TestSharedFileSummarizedOnce(t *testing.T) {
	src := &fakeSource{files: map[string][]byte{
		"shared.go": []byte("package shared"),
	}}
	commits := []store.CommitRecord{
		{OID: "c2", Messages: []string{"touch again"}, Files: []string{"shared.go"}},
		{OID: "c1", Messages: []string{"touch"}, Files: []string{"shared.go"}},
	}
	cache := map[string]store.FileCacheEntry{}

	chat := &countingChat{}
	emb := &countingEmbedder{inner: embeddings.NewMockEmbedder()}
	si := newSummaryIndexer(chat, emb, src, nil)

	if err := si.Run(context.Background(), commits, cache); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if chat.callCount() != 1 {
		t.Errorf("shared file should be summarized once, got %d calls", chat.callCount())
	}
	if commits[0].Summaries[0] != commits[1].Summaries[0] {
		t.Error("both commits should carry the same summary")
	}
}
