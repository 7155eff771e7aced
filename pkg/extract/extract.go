// Package extract implements the per-field extractors: each composes the
// LLM Gateway with the JSON Coercer and field-specific deterministic
// post-processing, never crashing the pipeline on failure.
package extract

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/ats-ingest/resumeforge/pkg/jsoncoerce"
	"github.com/ats-ingest/resumeforge/pkg/llmgateway"
)

// Status describes the outcome of a single extraction call.
type Status string

const (
	StatusOK       Status = "ok"
	StatusNull     Status = "null"
	StatusRejected Status = "rejected"
	StatusError    Status = "error"
)

// Result is the common return shape: (value | null, status).
type Result struct {
	Value  *string
	Status Status
	Reason string
}

func ok(value string) Result   { return Result{Value: &value, Status: StatusOK} }
func null() Result             { return Result{Status: StatusNull} }
func rejected(reason string) Result {
	return Result{Status: StatusRejected, Reason: reason}
}
func failed(reason string) Result { return Result{Status: StatusError, Reason: reason} }

// Completer is the subset of the LLM Gateway contract extractors need.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts llmgateway.Options) (string, error)
}

var sentinels = map[string]bool{"null": true, "none": true, "other": true, "": true}

func isSentinel(v string) bool {
	return sentinels[strings.ToLower(strings.TrimSpace(v))]
}

func truncate(text string, limit int) string {
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	return string(r[:limit])
}

// callForField invokes the LLM then extracts fieldKey via the JSON
// Coercer, returning a trimmed raw value and ok=false on any failure.
func callForField(ctx context.Context, llm Completer, prompt, fieldKey string, timeout time.Duration) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := llm.Complete(ctx, prompt, llmgateway.Options{Temperature: 0.1, TopP: 0.9})
	if err != nil {
		return "", false, err
	}

	value, found := jsoncoerce.StringField(text, fieldKey)
	if !found {
		return "", false, nil
	}

	value = strings.TrimSpace(value)
	if isSentinel(value) {
		return "", false, nil
	}
	return value, true, nil
}

var (
	emailPattern      = regexp.MustCompile(`(?i)[\w.+-]+@[\w-]+\.[\w.-]+`)
	phonePattern      = regexp.MustCompile(`(?:\+?\d[\d\-.\s]{8,}\d)`)
	urlPattern        = regexp.MustCompile(`(?i)https?://|www\.`)
	datePattern       = regexp.MustCompile(`(?i)\b(19|20)\d{2}\b`)
	sectionHeaderLine = regexp.MustCompile(`(?i)^(summary|experience|education|skills|objective|profile|projects|certifications|contact|references)\s*:?$`)
	twoConsecDigits   = regexp.MustCompile(`\d{2,}`)
	forbiddenPunct    = regexp.MustCompile(`[@#$%^&*()_+=\[\]{};:"\\|<>/~` + "`" + `]`)
	capWordLinePattern = regexp.MustCompile(`^([A-Z][a-z'-]+(?:\s+[A-Z][a-z'-]+){1,3})$`)
)

func looksLikeNoise(line string) bool {
	return emailPattern.MatchString(line) || phonePattern.MatchString(line) ||
		urlPattern.MatchString(line) || datePattern.MatchString(line)
}
