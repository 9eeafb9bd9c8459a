package search

import (
	"context"
	"log/slog"
)

// Searcher runs semantic product search over a vector store.
// Search failures degrade to empty results rather than surfacing errors:
// the conversational layer always has a fallback answer to give.
type Searcher struct {
	embed Embedder
	store VectorStore
	topK  int
}

func NewSearcher(embed Embedder, store VectorStore, topK int) *Searcher {
	if topK <= 0 {
		topK = 5
	}
	return &Searcher{embed: embed, store: store, topK: topK}
}

// Search embeds the query and returns matching products ordered by score.
// An unconfigured searcher or any backend failure yields an empty slice.
func (s *Searcher) Search(ctx context.Context, query, collection string) []Product {
	if s == nil || s.embed == nil || s.store == nil {
		return nil
	}

	vector, err := s.embed.Embed(ctx, query)
	if err != nil {
		slog.Warn("product search embedding failed", "error", err)
		return nil
	}

	points, err := s.store.Search(ctx, vector, s.topK, collection)
	if err != nil {
		slog.Warn("product search query failed", "error", err)
		return nil
	}

	products := make([]Product, 0, len(points))
	for _, p := range points {
		products = append(products, productFromPayload(p.Payload, p.Score, query))
	}
	return products
}
