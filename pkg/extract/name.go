package extract

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const namePrompt = `
IMPORTANT: This is a FRESH, ISOLATED extraction task. Ignore all prior context.

Extract the candidate's full name from the resume header. Return strict JSON:
{"name": "string | null"}. Never guess; return null if no explicit name appears.

Resume header text:
%s

Output (JSON only):`

const nameCharLimit = 1200

// Name extracts the candidate's name via LLM, falling back to a
// deterministic capitalized-word-sequence line scan.
func Name(ctx context.Context, llm Completer, resumeText string, timeout time.Duration) Result {
	header := truncate(resumeText, nameCharLimit)

	value, found, err := callForField(ctx, llm, fmt.Sprintf(namePrompt, header), "name", timeout)
	if err == nil && found {
		if r, valid := validateName(value); valid {
			return r
		}
	}

	if name, found := deterministicName(header); found {
		return ok(name)
	}

	return null()
}

func validateName(name string) (Result, bool) {
	if !isPlausibleName(name) {
		return Result{}, false
	}
	return ok(name), true
}

func isPlausibleName(name string) bool {
	if len(name) == 0 || len(name) > 100 {
		return false
	}
	alpha := 0
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			alpha++
		}
	}
	if alpha < 2 {
		return false
	}
	if twoConsecDigits.MatchString(name) {
		return false
	}
	if forbiddenPunct.MatchString(name) {
		return false
	}
	return true
}

// deterministicName scans header lines for a capitalized word sequence
// at the start of a line, skipping noise lines and section headers.
func deterministicName(header string) (string, bool) {
	for _, line := range strings.Split(header, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if looksLikeNoise(trimmed) || sectionHeaderLine.MatchString(trimmed) {
			continue
		}
		if m := capWordLinePattern.FindStringSubmatch(trimmed); m != nil {
			return m[1], true
		}
	}
	return "", false
}
