package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func magnitude(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

func TestEmbedReturnsUnitNormalizedVector(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req embedRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(embedResponse{Embedding: []float32{3, 4}})
	})

	gw := New(srv.URL, "nomic-embed-text", "all-minilm", 768, 5*time.Second)
	vec, err := gw.Embed(context.Background(), "golang engineer")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, magnitude(vec), 1e-6)
	assert.InDelta(t, 0.6, vec[0], 1e-6)
	assert.InDelta(t, 0.8, vec[1], 1e-6)
}

func TestEmbedFallsBackToSecondaryModelAfterExhaustingRetries(t *testing.T) {
	var preferredCalls, fallbackCalls int
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req embedRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		switch req.Model {
		case "nomic-embed-text":
			preferredCalls++
			w.WriteHeader(http.StatusInternalServerError)
		case "all-minilm":
			fallbackCalls++
			_ = json.NewEncoder(w).Encode(embedResponse{Embedding: []float32{1, 0}})
		}
	})

	gw := New(srv.URL, "nomic-embed-text", "all-minilm", 768, 5*time.Second)
	vec, err := gw.Embed(context.Background(), "golang engineer")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vec)
	assert.Equal(t, maxEmbedRetries, preferredCalls)
	assert.Equal(t, 1, fallbackCalls)
}

func TestEmbedMalformedResponseIsRetried(t *testing.T) {
	calls := 0
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"embedding": []}`))
	})

	gw := New(srv.URL, "nomic-embed-text", "nomic-embed-text", 768, 5*time.Second)
	_, err := gw.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.Equal(t, maxEmbedRetries*2, calls)
}

func TestChunkTextProducesOverlappingWindows(t *testing.T) {
	chunks := ChunkText("abcdefghij", 4, 2)
	require.Equal(t, []string{"abcd", "cdef", "efgh", "ghij"}, chunks)
}

func TestChunkTextEmptyInput(t *testing.T) {
	assert.Nil(t, ChunkText("", 100, 10))
}

func TestEmbedChunksAssignsSequentialIndexesAndMetadata(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(embedResponse{Embedding: []float32{1, 1}})
	})

	gw := New(srv.URL, "nomic-embed-text", "all-minilm", 768, 5*time.Second)
	meta := map[string]any{"resume_id": int64(42)}
	chunks, err := gw.EmbedChunks(context.Background(), "abcdefghijklmnop", 6, 2, 2, meta)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for i, c := range chunks {
		assert.Equal(t, i, c.ChunkIndex)
		assert.Equal(t, meta, c.Metadata)
		assert.NotEmpty(t, c.Text)
	}
}
