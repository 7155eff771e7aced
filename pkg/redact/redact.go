// Package redact scrubs PII from resume text before it is written to
// structured logs, so troubleshooting output never carries a candidate's
// email, phone number, or government ID in the clear.
package redact

import "regexp"

// pattern pairs a pre-compiled regex with its replacement token, the same
// shape the teacher's output-masking layer compiles once at construction
// rather than per call.
type pattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

var builtinPatterns = []pattern{
	{name: "email", regex: regexp.MustCompile(`(?i)[\w.+-]+@[\w-]+\.[\w.-]+`), replacement: "[REDACTED_EMAIL]"},
	{name: "phone", regex: regexp.MustCompile(`(?:\+?\d[\d\-.\s]{8,}\d)`), replacement: "[REDACTED_PHONE]"},
	{name: "ssn", regex: regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), replacement: "[REDACTED_SSN]"},
}

// Redactor applies a fixed set of PII patterns to arbitrary text.
type Redactor struct {
	patterns []pattern
}

// New constructs a Redactor with the built-in email/phone/SSN patterns.
func New() *Redactor {
	return &Redactor{patterns: builtinPatterns}
}

// Redact returns text with every matched pattern replaced by its
// placeholder token. Safe to call on arbitrary, possibly empty, input.
func (r *Redactor) Redact(text string) string {
	for _, p := range r.patterns {
		text = p.regex.ReplaceAllString(text, p.replacement)
	}
	return text
}

// Preview truncates text to maxRunes runes before redacting, for
// debug-log previews of long resume bodies.
func (r *Redactor) Preview(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) > maxRunes {
		runes = runes[:maxRunes]
	}
	return r.Redact(string(runes))
}
