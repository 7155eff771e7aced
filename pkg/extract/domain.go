package extract

import (
	"context"
	"strings"
	"time"

	"github.com/ats-ingest/resumeforge/pkg/domain"
	"github.com/ats-ingest/resumeforge/pkg/roleiso"
)

const experienceSectionCharLimit = 3000

var experienceSectionKeywords = []string{"experience", "employment", "work history", "professional background"}

// DomainExtractor is the subset of the domain package's hybrid extractor
// contract this field needs.
type DomainExtractor interface {
	Extract(ctx context.Context, roleBody string) (string, error)
}

// Domain extracts the business domain for resumeText: isolate the most
// recent role span (falling back to a coarser experience-section scan,
// then to the resume head when isolation doesn't validate), then run the
// hybrid LLM+deterministic extractor over that text.
func Domain(ctx context.Context, extractor DomainExtractor, resumeText string, timeout time.Duration) Result {
	roleBody := resolveDomainInput(resumeText)
	if roleBody == "" {
		return null()
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	value, err := extractor.Extract(ctx, roleBody)
	if err != nil {
		return failed(err.Error())
	}
	if value == "" {
		return null()
	}
	return ok(value)
}

// NewDomainExtractor adapts an LLM Completer into the domain package's
// hybrid extractor, satisfying DomainExtractor.
func NewDomainExtractor(llm Completer) DomainExtractor {
	return domain.New(llm)
}

// resolveDomainInput applies the fallback chain: isolated role body, then
// the experience-section keyword scan, then the resume head.
func resolveDomainInput(resumeText string) string {
	isolated := roleiso.Isolate(resumeText)
	if isolated.Valid {
		return isolated.Role.Body
	}

	if section := isolateExperienceSection(resumeText); section != "" {
		return section
	}

	return truncate(strings.TrimSpace(resumeText), experienceSectionCharLimit)
}

// isolateExperienceSection finds the first experience-section keyword line
// and returns the text from that line to the end of the resume, capped.
func isolateExperienceSection(resumeText string) string {
	lines := strings.Split(resumeText, "\n")
	for i, line := range lines {
		lower := strings.ToLower(line)
		for _, kw := range experienceSectionKeywords {
			if strings.Contains(lower, kw) {
				return truncate(strings.TrimSpace(strings.Join(lines[i:], "\n")), experienceSectionCharLimit)
			}
		}
	}
	return ""
}
