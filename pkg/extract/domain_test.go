package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubDomainExtractor struct {
	domain string
	err    error
}

func (s stubDomainExtractor) Extract(ctx context.Context, roleBody string) (string, error) {
	return s.domain, s.err
}

func TestDomainReturnsNullOnEmptyResumeText(t *testing.T) {
	result := Domain(context.Background(), stubDomainExtractor{domain: "Banking"}, "", time.Second)
	assert.Equal(t, StatusNull, result.Status)
}

func TestDomainUsesIsolatedRoleBody(t *testing.T) {
	resumeText := "Senior Developer at Bank of America Inc. (2022 - present)\nBuilt lending platforms."
	result := Domain(context.Background(), stubDomainExtractor{domain: "Banking"}, resumeText, time.Second)
	assert.Equal(t, StatusOK, result.Status)
	assert.Equal(t, "Banking", *result.Value)
}

func TestDomainFallsBackToExperienceSectionWhenIsolationFails(t *testing.T) {
	resumeText := "Objective: seeking growth.\n\nExperience\nWorked across several short-term contract gigs."
	result := Domain(context.Background(), stubDomainExtractor{domain: "Retail"}, resumeText, time.Second)
	assert.Equal(t, StatusOK, result.Status)
}

func TestDomainPropagatesExtractorFailure(t *testing.T) {
	resumeText := "Senior Developer at Bank of America Inc. (2022 - present)\nBuilt lending platforms."
	result := Domain(context.Background(), stubDomainExtractor{err: errors.New("llm down")}, resumeText, time.Second)
	assert.Equal(t, StatusError, result.Status)
}

func TestDomainNullWhenExtractorReturnsEmpty(t *testing.T) {
	resumeText := "Senior Developer at Bank of America Inc. (2022 - present)\nBuilt lending platforms."
	result := Domain(context.Background(), stubDomainExtractor{domain: ""}, resumeText, time.Second)
	assert.Equal(t, StatusNull, result.Status)
}
