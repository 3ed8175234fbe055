package chunker

import (
	"strings"
	"testing"

	"github.com/mkalinin/docqa-backend/internal/config"
)

func TestChunkGroupsSentences(t *testing.T) {
	c := NewSentenceChunker(config.IndexerConfig{SentencesPerChunk: 2, OverlapSentences: 0})

	chunks := c.Chunk("One. Two. Three. Four.")
	want := []string{"One. Two.", "Three. Four."}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %v", len(want), len(chunks), chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Fatalf("chunk %d: expected %q, got %q", i, want[i], chunks[i])
		}
	}
}

func TestChunkOverlapRepeatsTrailingSentences(t *testing.T) {
	c := NewSentenceChunker(config.IndexerConfig{SentencesPerChunk: 2, OverlapSentences: 1})

	chunks := c.Chunk("One. Two. Three. Four.")
	want := []string{"One. Two.", "Two. Three.", "Three. Four."}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %v", len(want), len(chunks), chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Fatalf("chunk %d: expected %q, got %q", i, want[i], chunks[i])
		}
	}
}

func TestChunkTextWithoutTerminators(t *testing.T) {
	c := NewSentenceChunker(config.IndexerConfig{SentencesPerChunk: 5, OverlapSentences: 1})

	chunks := c.Chunk("  a bare heading without punctuation  ")
	if len(chunks) != 1 || chunks[0] != "a bare heading without punctuation" {
		t.Fatalf("expected single trimmed chunk, got %v", chunks)
	}
}

func TestChunkBlankText(t *testing.T) {
	c := NewSentenceChunker(config.IndexerConfig{SentencesPerChunk: 5, OverlapSentences: 1})

	if chunks := c.Chunk("   \n\t  "); chunks != nil {
		t.Fatalf("expected no chunks for blank text, got %v", chunks)
	}
}

func TestChunkClampsDegenerateConfig(t *testing.T) {
	// Overlap >= chunk size would never advance; it is clamped instead.
	c := NewSentenceChunker(config.IndexerConfig{SentencesPerChunk: 2, OverlapSentences: 5})

	chunks := c.Chunk("One. Two. Three. Four. Five. Six.")
	if len(chunks) == 0 || len(chunks) > 6 {
		t.Fatalf("expected bounded chunking, got %d chunks", len(chunks))
	}
	joined := strings.Join(chunks, " ")
	for _, s := range []string{"One.", "Six."} {
		if !strings.Contains(joined, s) {
			t.Fatalf("expected %q to be covered, got %v", s, chunks)
		}
	}
}
