package extract

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const experienceCharLimit = 6000

const experiencePrompt = `
IMPORTANT: This is a FRESH, ISOLATED extraction task. Ignore all prior context.

Summarize the candidate's total professional experience as a short
free-form string (e.g. "8 years", "5+ years in software engineering",
"2 years as a registered nurse"). Base it only on dates and roles stated
in the resume; never invent a figure. Return strict JSON:
{"experience": "string | null"}. Return null if experience cannot be
determined.

Resume text:
%s

Output (JSON only):`

// Experience extracts a free-form summary of the candidate's total
// professional experience. The numeric years-of-experience figure used
// for vector metadata is parsed from this string downstream, not here.
func Experience(ctx context.Context, llm Completer, resumeText string, timeout time.Duration) Result {
	input := truncate(resumeText, experienceCharLimit)
	prompt := fmt.Sprintf(experiencePrompt, input)

	value, found, err := callForField(ctx, llm, prompt, "experience", timeout)
	if err != nil {
		return failed(err.Error())
	}
	if !found {
		return null()
	}
	return ok(strings.TrimSpace(value))
}
