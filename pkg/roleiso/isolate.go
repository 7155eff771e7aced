// Package roleiso segments resume text into dated role spans and picks
// the single most recent one so downstream field extraction is not
// biased by older positions.
package roleiso

import (
	"regexp"
	"strings"

	"github.com/ats-ingest/resumeforge/pkg/dategrammar"
	"github.com/ats-ingest/resumeforge/pkg/models"
)

// bodyCap is the fixed character limit on the role body sent downstream.
const bodyCap = 1800

// validation thresholds, compiled once.
var (
	businessContextPattern = regexp.MustCompile(`(?i)\b(engineer|developer|manager|analyst|consultant|architect|lead|director|specialist|officer|executive|administrator|designer|scientist|associate|coordinator|intern|inc\.?|ltd\.?|llc|corp\.?|technologies|solutions|systems|pvt\.?)\b`)
	separationKeywordPattern = regexp.MustCompile(`(?i)\b(previous(ly)?|prior)\b`)
	academicSectionPattern   = regexp.MustCompile(`(?i)\b(university|college|b\.?tech|m\.?tech|bachelor|master|degree|gpa|cgpa)\b`)
	yearTokenPattern         = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

const (
	minBodyLength     = 30
	maxDistinctYears  = 5
	maxDistinctEmpls  = 4
)

// Result is the outcome of isolation: either exactly one validated role,
// or a signal to fall back to a coarser extraction strategy.
type Result struct {
	Role       models.Role
	Valid      bool
	FallbackTo string // "experience_section" or "resume_head" when Valid is false
}

// Isolate scans resumeText line by line, assembles dated role spans, and
// returns the most recent one after strict validation.
func Isolate(resumeText string) Result {
	roles := scanRoles(resumeText)
	if len(roles) == 0 {
		return Result{FallbackTo: "experience_section"}
	}

	best := roles[0]
	bestScore := best.RecencyScore()
	for _, r := range roles[1:] {
		if s := r.RecencyScore(); s > bestScore {
			best = r
			bestScore = s
		}
	}

	if len(best.Body) > bodyCap {
		best.Body = best.Body[:bodyCap]
	}

	if !validate(best, roles, bestScore) {
		return Result{FallbackTo: "experience_section"}
	}

	return Result{Role: best, Valid: true}
}

func scanRoles(resumeText string) []models.Role {
	lines := strings.Split(resumeText, "\n")

	var roles []models.Role
	var current *models.Role
	var bodyLines []string

	flush := func() {
		if current != nil {
			current.Body = strings.TrimSpace(strings.Join(bodyLines, "\n"))
			roles = append(roles, *current)
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if dategrammar.IsContactLine(trimmed) {
			continue
		}

		if dr, ok := dategrammar.ExtractDateRange(trimmed); ok {
			flush()
			current = &models.Role{
				DateText:  trimmed,
				StartYear: dr.Start.Year,
				EndYear:   dr.End.Year,
				EndMonth:  dr.End.Month,
				IsCurrent: dr.End.IsPresent,
			}
			bodyLines = []string{trimmed}
			continue
		}

		if current != nil {
			bodyLines = append(bodyLines, trimmed)
		}
	}
	flush()

	return roles
}

// validate applies the isolation algorithm's strict pre-use checks.
func validate(role models.Role, allRoles []models.Role, bestScore int) bool {
	if len(role.Body) < minBodyLength || len(role.Body) > 2*bodyCap {
		return false
	}
	if !businessContextPattern.MatchString(role.Body) {
		return false
	}
	if countDistinctYears(role.Body) >= maxDistinctYears {
		return false
	}
	if countDistinctEmployerTokens(role.Body) >= maxDistinctEmpls {
		return false
	}
	if separationKeywordPattern.MatchString(role.Body) {
		return false
	}
	if academicSectionPattern.MatchString(role.Body) && !businessContextPattern.MatchString(role.Body) {
		return false
	}
	if len(allRoles) >= 2 {
		for _, r := range allRoles {
			if r.RecencyScore() > bestScore {
				return false
			}
		}
	}
	return true
}

func countDistinctYears(text string) int {
	seen := make(map[string]struct{})
	for _, y := range yearTokenPattern.FindAllString(text, -1) {
		seen[y] = struct{}{}
	}
	return len(seen)
}

// employerSuffixPattern anchors employer-token counting on common company
// legal suffixes rather than any capitalized word, which would otherwise
// over-count ordinary proper nouns and titles in the role body.
var employerSuffixPattern = regexp.MustCompile(`\b([A-Z][\w&]*(?:\s[A-Z][\w&]*){0,3}\s(?:Inc\.?|Ltd\.?|LLC|Corp\.?|Technologies|Solutions|Systems|Pvt\.?))\b`)

// countDistinctEmployerTokens approximates employer-token diversity by
// counting distinct company-suffixed name phrases, a proxy for "how many
// different employers appear in this span".
func countDistinctEmployerTokens(text string) int {
	seen := make(map[string]struct{})
	for _, m := range employerSuffixPattern.FindAllString(text, -1) {
		seen[strings.ToLower(strings.TrimSpace(m))] = struct{}{}
	}
	return len(seen)
}
