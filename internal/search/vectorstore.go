package search

import (
	"context"
	"math"
	"sync"
)

// ScoredPoint is one similarity-search hit.
type ScoredPoint struct {
	ID      string
	Score   float32
	Payload map[string]any

	// Vector is set on points being written; search results omit it.
	Vector []float32
}

// VectorStore is the similarity-search backend for the product collection.
// The production implementation talks to Qdrant over REST; MemoryStore is a
// brute-force in-process alternative used by tests and local development.
type VectorStore interface {
	Search(ctx context.Context, vector []float32, topK int, collectionFilter string) ([]ScoredPoint, error)
}

// MemoryStore is an in-process VectorStore using brute-force cosine
// similarity. Safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	points []memoryPoint
}

type memoryPoint struct {
	id      string
	vector  []float32
	payload map[string]any
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Add inserts a point.
func (m *MemoryStore) Add(id string, vector []float32, payload map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.points = append(m.points, memoryPoint{id: id, vector: vector, payload: payload})
}

// Upsert replaces points with matching IDs and appends the rest.
func (m *MemoryStore) Upsert(ctx context.Context, points []ScoredPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range points {
		replaced := false
		for i := range m.points {
			if m.points[i].id == p.ID {
				m.points[i] = memoryPoint{id: p.ID, vector: p.Vector, payload: p.Payload}
				replaced = true
				break
			}
		}
		if !replaced {
			m.points = append(m.points, memoryPoint{id: p.ID, vector: p.Vector, payload: p.Payload})
		}
	}
	return nil
}

func (m *MemoryStore) Search(ctx context.Context, vector []float32, topK int, collectionFilter string) ([]ScoredPoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var hits []ScoredPoint
	for _, p := range m.points {
		if collectionFilter != "" {
			if c, _ := p.payload["collection"].(string); c != collectionFilter {
				continue
			}
		}
		hits = append(hits, ScoredPoint{
			ID:      p.id,
			Score:   cosine(vector, p.vector),
			Payload: p.payload,
		})
	}

	// Insertion sort is fine at this scale; keeps the top K by score.
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].Score > hits[j-1].Score; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
