package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// QdrantStore is a minimal REST client to a Qdrant collection.
type QdrantStore struct {
	baseURL    string
	apiKey     string
	collection string
	httpClient *http.Client
}

// QdrantConfig configures a QdrantStore.
type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// NewQdrantStore creates a QdrantStore. A zero Timeout defaults to 10s.
func NewQdrantStore(cfg QdrantConfig) *QdrantStore {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &QdrantStore{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Upsert writes points to the collection, waiting for them to be persisted.
func (q *QdrantStore) Upsert(ctx context.Context, points []ScoredPoint) error {
	if len(points) == 0 {
		return nil
	}

	body := make([]map[string]any, len(points))
	for i, p := range points {
		body[i] = map[string]any{
			"id":      p.ID,
			"vector":  p.Vector,
			"payload": p.Payload,
		}
	}

	url := fmt.Sprintf("%s/collections/%s/points?wait=true", q.baseURL, q.collection)
	return q.doJSON(ctx, http.MethodPut, url, map[string]any{"points": body}, nil)
}

func (q *QdrantStore) Search(ctx context.Context, vector []float32, topK int, collectionFilter string) ([]ScoredPoint, error) {
	if topK <= 0 {
		topK = 5
	}

	body := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	if collectionFilter != "" {
		body["filter"] = map[string]any{
			"must": []map[string]any{
				{"key": "collection", "match": map[string]any{"value": collectionFilter}},
			},
		}
	}

	var decoded struct {
		Result []struct {
			ID      any            `json:"id"`
			Score   float32        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", q.baseURL, q.collection)
	if err := q.doJSON(ctx, http.MethodPost, url, body, &decoded); err != nil {
		return nil, err
	}

	points := make([]ScoredPoint, 0, len(decoded.Result))
	for _, r := range decoded.Result {
		points = append(points, ScoredPoint{
			ID:      fmt.Sprint(r.ID),
			Score:   r.Score,
			Payload: r.Payload,
		})
	}
	return points, nil
}

// doJSON sends a JSON request and decodes the JSON response into out, if
// out is non-nil. Non-2xx statuses are returned as errors with the body.
func (q *QdrantStore) doJSON(ctx context.Context, method, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshalling qdrant request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating qdrant request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}

	resp, err := q.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling qdrant: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("qdrant %s %s returned status %d: %s", method, url, resp.StatusCode, string(b))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding qdrant response: %w", err)
	}
	return nil
}
