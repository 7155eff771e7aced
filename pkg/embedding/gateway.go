// Package embedding implements the Embedding Gateway: unit-normalized
// dense vectors from a local Ollama-shaped model server, with the same
// preferred/fallback model probing and retry shape as the LLM Gateway.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"strings"
	"time"
)

const maxEmbedRetries = 3

var (
	ErrUnavailableServer = errors.New("embedding server unavailable")
	ErrMalformedResponse = errors.New("embedding server returned a malformed response")
)

// HTTPStatusError wraps an unexpected HTTP status from the embedding endpoint.
type HTTPStatusError struct {
	Code int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("embedding server returned HTTP %d", e.Code)
}

// Gateway produces embeddings for chunked text.
type Gateway struct {
	httpClient     *http.Client
	baseURL        string
	logger         *slog.Logger
	preferredModel string
	fallbackModel  string
	dimension      int
}

// New constructs a Gateway.
func New(baseURL, preferredModel, fallbackModel string, dimension int, timeout time.Duration) *Gateway {
	return &Gateway{
		httpClient:     &http.Client{Timeout: timeout},
		baseURL:        strings.TrimRight(baseURL, "/"),
		logger:         slog.With("component", "embedding_gateway"),
		preferredModel: preferredModel,
		fallbackModel:  fallbackModel,
		dimension:      dimension,
	}
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed returns a unit-normalized embedding for text, making up to
// maxEmbedRetries attempts with jittered exponential backoff, then falling
// back from the preferred to the fallback model if every preferred-model
// attempt fails.
func (g *Gateway) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := g.embedWithModel(ctx, g.preferredModel, text)
	if err == nil {
		return vec, nil
	}

	g.logger.Warn("preferred embedding model failed, trying fallback", "error", err, "fallback_model", g.fallbackModel)
	return g.embedWithModel(ctx, g.fallbackModel, text)
}

func (g *Gateway) embedWithModel(ctx context.Context, model, text string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt < maxEmbedRetries; attempt++ {
		if attempt > 0 {
			if err := jitteredBackoff(ctx, attempt); err != nil {
				return nil, err
			}
		}

		vec, err := g.doEmbed(ctx, model, text)
		if err == nil {
			return normalize(vec), nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (g *Gateway) doEmbed(ctx context.Context, model, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Model: model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailableServer, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, fmt.Errorf("%w: %v", ErrUnavailableServer, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailableServer, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPStatusError{Code: resp.StatusCode}
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(out.Embedding) == 0 {
		return nil, ErrMalformedResponse
	}

	return out.Embedding, nil
}

// normalize returns vec scaled to unit length (cosine-ready). A zero
// vector is returned unchanged to avoid dividing by zero.
func normalize(vec []float32) []float32 {
	var sumSquares float64
	for _, v := range vec {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares == 0 {
		return vec
	}
	norm := math.Sqrt(sumSquares)
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}

func jitteredBackoff(ctx context.Context, attempt int) error {
	base := 100 * time.Millisecond
	maxDelay := base * time.Duration(1<<uint(attempt))
	delay := time.Duration(rand.Int64N(int64(maxDelay)))
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ChunkText splits text into overlapping windows of size windowSize with
// overlap characters shared between consecutive windows. The last chunk
// may be shorter than windowSize.
func ChunkText(text string, windowSize, overlap int) []string {
	if windowSize <= 0 || len(text) == 0 {
		return nil
	}
	if overlap >= windowSize {
		overlap = windowSize - 1
	}

	runes := []rune(text)
	var chunks []string
	step := windowSize - overlap
	for start := 0; start < len(runes); start += step {
		end := start + windowSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// EmbeddedChunk pairs one chunk's text and index with its embedding and
// caller-supplied metadata.
type EmbeddedChunk struct {
	Embedding  []float32
	Text       string
	ChunkIndex int
	Metadata   map[string]any
}

// EmbedChunks chunks text and embeds each chunk, processing batches of
// size batchSize so memory is released between batches.
func (g *Gateway) EmbedChunks(ctx context.Context, text string, windowSize, overlap, batchSize int, metadata map[string]any) ([]EmbeddedChunk, error) {
	chunks := ChunkText(text, windowSize, overlap)
	if len(chunks) == 0 {
		return nil, nil
	}

	out := make([]EmbeddedChunk, 0, len(chunks))
	for batchStart := 0; batchStart < len(chunks); batchStart += batchSize {
		batchEnd := batchStart + batchSize
		if batchEnd > len(chunks) {
			batchEnd = len(chunks)
		}

		for i := batchStart; i < batchEnd; i++ {
			vec, err := g.Embed(ctx, chunks[i])
			if err != nil {
				return nil, fmt.Errorf("embedding chunk %d: %w", i, err)
			}
			out = append(out, EmbeddedChunk{
				Embedding:  vec,
				Text:       chunks[i],
				ChunkIndex: i,
				Metadata:   metadata,
			})
		}
	}

	return out, nil
}
