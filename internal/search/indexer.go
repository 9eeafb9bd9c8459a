package search

import (
	"context"
	"fmt"
)

// Document is one catalog entry to be indexed for semantic search.
type Document struct {
	ID      string
	Text    string
	Payload map[string]any
}

// PointWriter is a vector store that accepts new points.
type PointWriter interface {
	Upsert(ctx context.Context, points []ScoredPoint) error
}

// BatchEmbedder embeds many texts at once.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Indexer embeds documents and writes them to a vector store.
type Indexer struct {
	embed BatchEmbedder
	store PointWriter
}

func NewIndexer(embed BatchEmbedder, store PointWriter) *Indexer {
	return &Indexer{embed: embed, store: store}
}

// Index embeds all documents and upserts them in one batch.
func (ix *Indexer) Index(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}
	vectors, err := ix.embed.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding documents: %w", err)
	}

	points := make([]ScoredPoint, len(docs))
	for i, d := range docs {
		points[i] = ScoredPoint{ID: d.ID, Payload: d.Payload, Vector: vectors[i]}
	}
	if err := ix.store.Upsert(ctx, points); err != nil {
		return fmt.Errorf("writing points: %w", err)
	}
	return nil
}
