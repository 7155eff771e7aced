package extract

import (
	"context"

	"github.com/ats-ingest/resumeforge/pkg/llmgateway"
)

// stubCompleter returns a fixed response or error, ignoring the prompt.
type stubCompleter struct {
	response string
	err      error
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string, opts llmgateway.Options) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

// capturingCompleter records the last prompt it was called with.
type capturingCompleter struct {
	response   string
	err        error
	lastPrompt string
}

func (c *capturingCompleter) Complete(ctx context.Context, prompt string, opts llmgateway.Options) (string, error) {
	c.lastPrompt = prompt
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}
