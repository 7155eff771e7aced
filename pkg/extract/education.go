package extract

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	educationLinesBefore = 1
	educationLinesAfter  = 4
	educationCharLimit   = 3000
)

var educationKeywords = []string{
	"education", "academic", "qualification", "qualifications",
	"degree", "university", "college", "institute",
}

const educationPrompt = `
IMPORTANT: This is a FRESH, ISOLATED extraction task. Ignore all prior context.

Summarize the candidate's education from the isolated text below: degree(s),
field of study, institution(s). Return strict JSON:
{"education": "string | null"}. Return null if no education information is
present.

Isolated text:
%s

Output (JSON only):`

// Education extracts a summary of the candidate's education, first
// isolating education-relevant text by a keyword-context-window scan (1
// line before + the keyword line + 4 lines after, non-overlapping), then
// asking the LLM to summarize the isolated text.
func Education(ctx context.Context, llm Completer, resumeText string, timeout time.Duration) Result {
	isolated := isolateEducationText(resumeText)
	if isolated == "" {
		return null()
	}

	input := truncate(isolated, educationCharLimit)
	prompt := fmt.Sprintf(educationPrompt, input)

	value, found, err := callForField(ctx, llm, prompt, "education", timeout)
	if err != nil {
		return failed(err.Error())
	}
	if !found {
		return null()
	}
	return ok(strings.TrimSpace(value))
}

// isolateEducationText scans resumeText for lines containing an
// education keyword and extracts a context window (educationLinesBefore
// lines before through educationLinesAfter lines after) around each hit,
// skipping windows that overlap an already-extracted range.
func isolateEducationText(resumeText string) string {
	if strings.TrimSpace(resumeText) == "" {
		return ""
	}

	lines := strings.Split(resumeText, "\n")
	total := len(lines)
	extracted := make([]bool, total)

	var chunks []string
	for i, line := range lines {
		lower := strings.ToLower(line)
		hasKeyword := false
		for _, kw := range educationKeywords {
			if strings.Contains(lower, kw) {
				hasKeyword = true
				break
			}
		}
		if !hasKeyword {
			continue
		}

		start := i - educationLinesBefore
		if start < 0 {
			start = 0
		}
		end := i + educationLinesAfter + 1
		if end > total {
			end = total
		}

		overlap := false
		for j := start; j < end; j++ {
			if extracted[j] {
				overlap = true
				break
			}
		}
		if overlap {
			continue
		}

		chunks = append(chunks, strings.Join(lines[start:end], "\n"))
		for j := start; j < end; j++ {
			extracted[j] = true
		}
	}

	return strings.Join(chunks, "\n\n")
}
