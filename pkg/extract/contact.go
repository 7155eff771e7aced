package extract

import (
	"regexp"
	"strings"
)

// contactCharLimit bounds the header slice scanned for contact details;
// email and phone always appear near the top of a resume.
const contactCharLimit = 2000

var strictEmailPattern = regexp.MustCompile(`(?i)^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}$`)
var phoneDigitsPattern = regexp.MustCompile(`[^\d+]`)

// Email scans resumeText's header for the first email address and
// normalizes it to lowercase. Deterministic: no LLM round-trip, matching
// the original implementation's normalize_email behavior.
func Email(resumeText string) Result {
	header := truncate(resumeText, contactCharLimit)
	match := emailPattern.FindString(header)
	if match == "" {
		return null()
	}

	normalized := strings.ToLower(strings.TrimSpace(match))
	if !strictEmailPattern.MatchString(normalized) {
		return null()
	}
	return ok(normalized)
}

// Mobile scans resumeText's header for the first phone-shaped token and
// normalizes it to E.164 where the digit count allows it, matching the
// original implementation's normalize_phone behavior: a 10-digit US
// number gets a "+1" prefix, an 11-digit number starting with "1" gets a
// leading "+", and anything already "+"-prefixed with >=10 digits passes
// through unchanged.
func Mobile(resumeText string) Result {
	header := truncate(resumeText, contactCharLimit)
	match := phonePattern.FindString(header)
	if match == "" {
		return null()
	}

	cleaned := phoneDigitsPattern.ReplaceAllString(strings.TrimSpace(match), "")
	if cleaned == "" {
		return null()
	}

	if strings.HasPrefix(cleaned, "+") {
		if len(cleaned)-1 >= 10 {
			return ok(cleaned)
		}
		return null()
	}

	switch {
	case len(cleaned) == 10:
		return ok("+1" + cleaned)
	case len(cleaned) == 11 && strings.HasPrefix(cleaned, "1"):
		return ok("+" + cleaned)
	default:
		return ok(cleaned)
	}
}
