package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ats-ingest/resumeforge/pkg/models"
)

// RemoteBackend speaks a generic, Pinecone-shaped upsert/query/delete
// REST contract against one base URL, selecting the index via a path
// segment and the namespace via a request field, matching the spec's
// naming of the indexing route ("/index-pinecone").
type RemoteBackend struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewRemoteBackend constructs a RemoteBackend. apiKeyEnv names the
// environment variable holding the bearer credential, never the
// credential itself, so it is never logged or checked into config.
func NewRemoteBackend(baseURL, apiKeyEnv string, timeout time.Duration) *RemoteBackend {
	return &RemoteBackend{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     os.Getenv(apiKeyEnv),
	}
}

type remoteVector struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata"`
}

type upsertRequest struct {
	Namespace string         `json:"namespace"`
	Vectors   []remoteVector `json:"vectors"`
}

// Upsert writes records in bounded batches of upsertBatchSize so a single
// request body never grows unbounded for large resumes.
const upsertBatchSize = 100

func (b *RemoteBackend) Upsert(ctx context.Context, indexName, namespace string, records []models.VectorRecord) error {
	for start := 0; start < len(records); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(records) {
			end = len(records)
		}

		vectors := make([]remoteVector, 0, end-start)
		for _, r := range records[start:end] {
			vectors = append(vectors, remoteVector{ID: r.ID, Values: r.Embedding, Metadata: r.Metadata})
		}

		if err := b.post(ctx, indexName, "/vectors/upsert", upsertRequest{Namespace: namespace, Vectors: vectors}, nil); err != nil {
			return fmt.Errorf("upsert batch [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}

type deleteRequest struct {
	Namespace string   `json:"namespace"`
	IDs       []string `json:"ids"`
}

func (b *RemoteBackend) Delete(ctx context.Context, indexName, namespace string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return b.post(ctx, indexName, "/vectors/delete", deleteRequest{Namespace: namespace, IDs: ids}, nil)
}

type queryRequest struct {
	Namespace       string    `json:"namespace"`
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []struct {
		ID       string         `json:"id"`
		Score    float64        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"matches"`
}

func (b *RemoteBackend) Query(ctx context.Context, indexName, namespace string, embedding []float32, topK int) ([]QueryMatch, error) {
	var resp queryResponse
	req := queryRequest{Namespace: namespace, Vector: embedding, TopK: topK, IncludeMetadata: true}
	if err := b.post(ctx, indexName, "/query", req, &resp); err != nil {
		return nil, err
	}

	matches := make([]QueryMatch, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, QueryMatch{ID: m.ID, Score: m.Score, Metadata: m.Metadata})
	}
	return matches, nil
}

func (b *RemoteBackend) post(ctx context.Context, indexName, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/indexes/%s%s", b.baseURL, indexName, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("vector store request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("vector store returned HTTP %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding vector store response: %w", err)
	}
	return nil
}
