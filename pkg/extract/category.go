package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ats-ingest/resumeforge/pkg/models"
)

const categoryCharLimit = 2000

const categoryPrompt = `
IMPORTANT: This is a FRESH, ISOLATED extraction task. Ignore all prior context.

The candidate has been classified as master-category "%s". Produce a short,
free-form category label describing their specific field within that
master-category (for example "Full Stack Development", "Nursing",
"Accounting & Finance"). Return strict JSON: {"category": "string | null"}.
Return null if no clear specific category applies.

Resume text:
%s

Output (JSON only):`

// Category extracts a free-form category label, consuming masterCategory
// for prompt context. The result is used only as a vector-store namespace
// and prompt-lookup key, so it is returned trimmed and lowercased (final
// canonicalization still happens at lookup time in pkg/promptstore).
func Category(ctx context.Context, llm Completer, resumeText string, masterCategory models.MasterCategory, timeout time.Duration) Result {
	input := truncate(resumeText, categoryCharLimit)
	prompt := fmt.Sprintf(categoryPrompt, string(masterCategory), input)

	value, found, err := callForField(ctx, llm, prompt, "category", timeout)
	if err != nil {
		return failed(err.Error())
	}
	if !found {
		return null()
	}
	return ok(strings.ToLower(strings.TrimSpace(value)))
}
