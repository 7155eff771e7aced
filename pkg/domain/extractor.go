// Package domain implements the hybrid domain extractor: an LLM guess
// validated against deterministic rules, falling back to a weighted
// keyword scorer when the LLM is rejected or silent.
package domain

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ats-ingest/resumeforge/pkg/jsoncoerce"
	"github.com/ats-ingest/resumeforge/pkg/llmgateway"
)

const promptTemplate = `
IMPORTANT: This is a FRESH, ISOLATED extraction task. Ignore all prior context.

Identify the single business domain (industry sector) most consistent with the
candidate's most recent role. Return strict JSON: {"domain": "string | null"}.

Role text:
%s

Output (JSON only):`

// platformRolePattern recognizes platform-specific job titles (e.g. "AWS
// Solutions Architect") used to validate platform-class LLM domains.
var platformRolePattern = regexp.MustCompile(`(?i)\b(aws|azure|gcp|google cloud)\s+(solutions?\s+)?architect\b|\bsalesforce\s+(developer|administrator|architect)\b|\bsap\s+(consultant|abap\s+developer)\b|\boracle\s+(dba|developer|consultant)\b|\bservicenow\s+developer\b|\bworkday\s+(consultant|analyst)\b`)

var healthcareKeywords = []string{"patient", "clinic", "hospital", "medical", "healthcare", "physician", "nurse", "clinical"}
var bankingKeywords = []string{"bank", "banking", "mortgage", "lending", "loan", "teller", "deposit"}
var retailKeywords = []string{"retail", "store", "merchandising", "point of sale", "inventory management"}

// Completer is the subset of the LLM Gateway contract this extractor needs.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts llmgateway.Options) (string, error)
}

// Extractor produces a domain label from an isolated role span.
type Extractor struct {
	llm Completer
}

// New constructs an Extractor.
func New(llm Completer) *Extractor {
	return &Extractor{llm: llm}
}

// Extract returns the domain for roleBody, or "" when no rule matches.
// roleBody is the validated, most-recent role span (see pkg/roleiso); a
// null result is the correct answer for ambiguous resumes, not a failure.
func (e *Extractor) Extract(ctx context.Context, roleBody string) (string, error) {
	llmDomain, err := e.callLLM(ctx, roleBody)
	if err != nil {
		llmDomain = ""
	}

	if llmDomain != "" && validateLLMDomain(llmDomain, roleBody) {
		return llmDomain, nil
	}

	return fallback(roleBody), nil
}

func (e *Extractor) callLLM(ctx context.Context, roleBody string) (string, error) {
	prompt := fmt.Sprintf(promptTemplate, roleBody)
	text, err := e.llm.Complete(ctx, prompt, llmgateway.Options{Temperature: 0.1, TopP: 0.9})
	if err != nil {
		return "", fmt.Errorf("domain extraction LLM call failed: %w", err)
	}

	value, ok := jsoncoerce.StringField(text, "domain")
	if !ok {
		return "", nil
	}
	return strings.TrimSpace(value), nil
}

// validateLLMDomain applies the deterministic acceptance rules before an
// LLM-proposed domain is trusted.
func validateLLMDomain(llmDomain, roleBody string) bool {
	lower := strings.ToLower(roleBody)

	if isPlatformDomain(llmDomain) {
		return platformRolePattern.MatchString(roleBody)
	}

	if employerDomain, ok := matchEmployer(lower); ok {
		return strings.EqualFold(employerDomain, llmDomain)
	}

	if countMatches(lower, healthcareKeywords) >= 2 {
		return strings.EqualFold(llmDomain, "Healthcare")
	}
	if countMatches(lower, bankingKeywords) >= 2 {
		return strings.EqualFold(llmDomain, "Banking")
	}
	if countMatches(lower, retailKeywords) >= 2 {
		return strings.EqualFold(llmDomain, "Retail")
	}

	return true
}

// fallback applies the deterministic chain: employer map, sector
// keyword sets, platform-role regex, then the weighted keyword scorer.
func fallback(roleBody string) string {
	lower := strings.ToLower(roleBody)

	if d, ok := matchEmployer(lower); ok {
		return d
	}
	if countMatches(lower, healthcareKeywords) >= 2 {
		return "Healthcare"
	}
	if countMatches(lower, bankingKeywords) >= 2 {
		return "Banking"
	}
	if countMatches(lower, retailKeywords) >= 2 {
		return "Retail"
	}
	if platformRolePattern.MatchString(roleBody) {
		if d, ok := matchPlatform(lower); ok {
			return d
		}
	}

	return scoreKeywords(lower)
}

func isPlatformDomain(d string) bool {
	for _, p := range PlatformDomains {
		if strings.EqualFold(p, d) {
			return true
		}
	}
	return false
}

func matchEmployer(lower string) (string, bool) {
	for employer, d := range EmployerDomainMap {
		if strings.Contains(lower, employer) {
			return d, true
		}
	}
	return "", false
}

func matchPlatform(lower string) (string, bool) {
	for platform, keywords := range PlatformKeywords {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return platform, true
			}
		}
	}
	return "", false
}

func countMatches(lower string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			n++
		}
	}
	return n
}

type domainScore struct {
	score         int
	highMatches   int
	mediumMatches int
}

// scoreKeywords implements the weighted keyword scorer: accepts a domain
// only when score >= 10 and (>=1 high match or >=2 medium matches),
// resolving ties via DomainPrecedence.
func scoreKeywords(lower string) string {
	scores := make(map[string]domainScore)

	for d, group := range DomainKeywords {
		var s domainScore
		for _, kw := range group.High {
			if strings.Contains(lower, kw) {
				s.score += int(WeightHigh)
				s.highMatches++
			}
		}
		for _, kw := range group.Medium {
			if strings.Contains(lower, kw) {
				s.score += int(WeightMedium)
				s.mediumMatches++
			}
		}
		for _, kw := range group.Low {
			if strings.Contains(lower, kw) {
				s.score += int(WeightLow)
			}
		}
		if s.score > 0 && (s.highMatches > 0 || s.mediumMatches > 0) {
			scores[d] = s
		}
	}

	var candidates []string
	for d, s := range scores {
		if s.score >= 10 && (s.highMatches > 0 || s.mediumMatches >= 2) {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	if len(candidates) == 1 {
		return candidates[0]
	}

	for _, d := range DomainPrecedence {
		for _, c := range candidates {
			if c == d {
				return d
			}
		}
	}
	return candidates[0]
}
