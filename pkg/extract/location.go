package extract

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	locationCharLimit = 1500
	locationOutputCap = 255
)

const locationPrompt = `
IMPORTANT: This is a FRESH, ISOLATED extraction task. Ignore all prior context.

Extract the candidate's current location (city, state/region, and/or
country) from the profile text below. Prefer a location in the header or
contact/address section, clearly labeled (e.g. "Location:", "Based in").
If multiple locations appear, prefer the one that reads as current
residence. Return a single concise string (e.g. "Bangalore, India"), never
a full street address. Do not infer location from company names,
university names, project names, email domain, or phone country code.
Return strict JSON: {"location": "string | null"}. Return null if no
explicit location is found.

Resume text:
%s

Output (JSON only):`

// Location extracts the candidate's current location string, restricted
// to the resume header/contact area where it usually appears.
func Location(ctx context.Context, llm Completer, resumeText string, timeout time.Duration) Result {
	input := truncate(resumeText, locationCharLimit)
	prompt := fmt.Sprintf(locationPrompt, input)

	value, found, err := callForField(ctx, llm, prompt, "location", timeout)
	if err != nil {
		return failed(err.Error())
	}
	if !found {
		return null()
	}

	value = strings.TrimSpace(value)
	if len(value) > locationOutputCap {
		r := []rune(value)
		value = strings.TrimSpace(string(r[:locationOutputCap]))
	}
	return ok(value)
}
