package extract

import (
	"context"
	"fmt"
	"time"
)

// titlePrompt is shared by Designation and Role: a straight LLM
// extraction of exactly one title string, selecting current > most
// recent > headline > first occurrence. No normalization is applied.
const titlePrompt = `
IMPORTANT: This is a FRESH, ISOLATED extraction task. Ignore all prior context.

Extract the candidate's %s from the resume text below. Selection priority:
1. The title of their current role, if any.
2. Otherwise the title of their most recent role.
3. Otherwise a title stated in the resume headline or summary.
4. Otherwise the first title mentioned.
Return strict JSON: {"%s": "string | null"}. Preserve the title exactly as
written. Never invent or normalize it.

Resume text:
%s

Output (JSON only):`

func extractTitle(ctx context.Context, llm Completer, resumeText, label, fieldKey string, charLimit int, timeout time.Duration) Result {
	input := truncate(resumeText, charLimit)
	prompt := fmt.Sprintf(titlePrompt, label, fieldKey, input)

	value, found, err := callForField(ctx, llm, prompt, fieldKey, timeout)
	if err != nil {
		return failed(err.Error())
	}
	if !found {
		return null()
	}
	return ok(value)
}
