// Package llmgateway implements the LLM Gateway: one-shot JSON completion
// against a local Ollama-shaped model server, with model discovery,
// generate→chat endpoint fallback, and a single bounded retry on
// transient I/O errors.
package llmgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// retry backoff bounds for the single transient-I/O retry, grounded in the
// jittered-backoff idiom used for collaborator calls elsewhere in this
// codebase.
const (
	retryBackoffMin = 250 * time.Millisecond
	retryBackoffMax = 750 * time.Millisecond
)

// Options configures a single Complete call.
type Options struct {
	Temperature  float64
	TopP         float64
	MaxTokens    int
	FreshContext bool // not read: the chat fallback always supplies the "fresh isolated agent" system message
}

// Gateway talks to a local Ollama-shaped model server.
type Gateway struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger

	preferredModel string
	fallbackModel  string

	modelOnce      sync.Once
	modelOnceErr   error
	resolvedModel  string
	modelMu        sync.RWMutex
}

// New constructs a Gateway. baseURL is the model server root, e.g.
// "http://localhost:11434".
func New(baseURL, preferredModel, fallbackModel string, timeout time.Duration) *Gateway {
	return &Gateway{
		httpClient:     &http.Client{Timeout: timeout},
		baseURL:        strings.TrimRight(baseURL, "/"),
		logger:         slog.With("component", "llmgateway"),
		preferredModel: preferredModel,
		fallbackModel:  fallbackModel,
	}
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// resolveModel polls /api/tags once per process lifetime and picks the
// configured preferred model, falling back to any model whose name
// contains "llama3". The result is cached for the lifetime of the Gateway.
func (g *Gateway) resolveModel(ctx context.Context) (string, error) {
	g.modelOnce.Do(func() {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/api/tags", nil)
		if err != nil {
			g.modelOnceErr = fmt.Errorf("%w: %v", ErrUnavailableServer, err)
			return
		}

		resp, err := g.httpClient.Do(req)
		if err != nil {
			g.modelOnceErr = classifyNetErr(err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			g.modelOnceErr = &HTTPStatusError{Code: resp.StatusCode, Body: readBody(resp.Body)}
			return
		}

		var tags tagsResponse
		if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
			g.modelOnceErr = fmt.Errorf("%w: %v", ErrMalformedResponse, err)
			return
		}

		g.modelMu.Lock()
		defer g.modelMu.Unlock()

		for _, m := range tags.Models {
			if m.Name == g.preferredModel {
				g.resolvedModel = m.Name
				return
			}
		}
		for _, m := range tags.Models {
			if strings.Contains(m.Name, "llama3") {
				g.resolvedModel = m.Name
				return
			}
		}
		if len(tags.Models) > 0 {
			g.resolvedModel = tags.Models[0].Name
			return
		}
		g.modelOnceErr = ErrNoModelDiscovered
	})

	g.modelMu.RLock()
	defer g.modelMu.RUnlock()
	return g.resolvedModel, g.modelOnceErr
}

// Complete issues a one-shot completion. It resolves the model (preferring
// the configured name, see resolveModel), tries the single-shot generate
// endpoint, and falls back to the chat endpoint on 404.
func (g *Gateway) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	model, err := g.resolveModel(ctx)
	if err != nil {
		g.logger.Warn("model discovery failed, using configured preferred model", "error", err)
		model = g.preferredModel
	}

	text, err := g.completeWithRetry(ctx, model, prompt, opts)
	if err == nil {
		return text, nil
	}

	var httpErr *HTTPStatusError
	if errors.As(err, &httpErr) && httpErr.Code == http.StatusNotFound {
		g.logger.Info("generate endpoint returned 404, falling back to chat endpoint", "model", model)
		return g.chatWithRetry(ctx, model, prompt, opts)
	}

	return "", err
}

func (g *Gateway) completeWithRetry(ctx context.Context, model, prompt string, opts Options) (string, error) {
	text, err := g.generate(ctx, model, prompt, opts)
	if err == nil || !isTransient(err) {
		return text, err
	}

	g.logger.Warn("transient error calling generate endpoint, retrying once", "error", err)
	if sleepErr := jitteredSleep(ctx); sleepErr != nil {
		return "", sleepErr
	}
	return g.generate(ctx, model, prompt, opts)
}

func (g *Gateway) chatWithRetry(ctx context.Context, model, prompt string, opts Options) (string, error) {
	text, err := g.chat(ctx, model, prompt, opts)
	if err == nil || !isTransient(err) {
		return text, err
	}

	g.logger.Warn("transient error calling chat endpoint, retrying once", "error", err)
	if sleepErr := jitteredSleep(ctx); sleepErr != nil {
		return "", sleepErr
	}
	return g.chat(ctx, model, prompt, opts)
}

type generateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options options `json:"options,omitempty"`
}

type options struct {
	Temperature float64 `json:"temperature,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

func (g *Gateway) generate(ctx context.Context, model, prompt string, opts Options) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
		Options: options{
			Temperature: opts.Temperature,
			TopP:        opts.TopP,
			NumPredict:  opts.MaxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal generate request: %w", err)
	}

	resp, err := g.post(ctx, "/api/generate", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &HTTPStatusError{Code: resp.StatusCode, Body: readBody(resp.Body)}
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return out.Response, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  options       `json:"options,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

// chat supplies a leading system message that explicitly instructs the
// model it is a fresh isolated agent. The chat endpoint carries implicit
// conversational priors (prior turns, persona) that corrupt determinism
// if left unset.
func (g *Gateway) chat(ctx context.Context, model, prompt string, opts Options) (string, error) {
	messages := []chatMessage{
		{Role: "system", Content: "You are a fresh, isolated agent with no prior conversation history. Respond only to the following request."},
		{Role: "user", Content: prompt},
	}

	body, err := json.Marshal(chatRequest{
		Model:    model,
		Messages: messages,
		Stream:   false,
		Options: options{
			Temperature: opts.Temperature,
			TopP:        opts.TopP,
			NumPredict:  opts.MaxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	resp, err := g.post(ctx, "/api/chat", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &HTTPStatusError{Code: resp.StatusCode, Body: readBody(resp.Body)}
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return out.Message.Content, nil
}

func (g *Gateway) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailableServer, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, classifyNetErr(err)
	}
	return resp, nil
}

func classifyNetErr(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailableServer, err)
}

// isTransient reports whether err is eligible for the single bounded
// retry: timeouts and connection resets, never 4xx statuses (other than
// the 404 that drives endpoint fallback, handled separately).
func isTransient(err error) bool {
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrUnavailableServer) {
		return true
	}
	var httpErr *HTTPStatusError
	if errors.As(err, &httpErr) {
		return false
	}
	return false
}

func jitteredSleep(ctx context.Context) error {
	span := retryBackoffMax - retryBackoffMin
	delay := retryBackoffMin + time.Duration(rand.Int64N(int64(span)))
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func readBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	return string(b)
}
