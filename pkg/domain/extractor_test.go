package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ats-ingest/resumeforge/pkg/llmgateway"
)

type stubCompleter struct {
	response string
	err      error
}

func (s stubCompleter) Complete(_ context.Context, _ string, _ llmgateway.Options) (string, error) {
	return s.response, s.err
}

func TestExtractAcceptsLLMDomainWhenNoConflict(t *testing.T) {
	e := New(stubCompleter{response: `{"domain": "Manufacturing"}`})
	d, err := e.Extract(context.Background(), "Senior Production Manager overseeing a factory assembly line operation.")
	require.NoError(t, err)
	assert.Equal(t, "Manufacturing", d)
}

func TestExtractRejectsPlatformDomainWithoutRoleRegex(t *testing.T) {
	e := New(stubCompleter{response: `{"domain": "AWS"}`})
	d, err := e.Extract(context.Background(), "Backend Engineer building cloud services and deployment pipelines.")
	require.NoError(t, err)
	assert.NotEqual(t, "AWS", d)
}

func TestExtractAcceptsPlatformDomainWithRoleRegex(t *testing.T) {
	e := New(stubCompleter{response: `{"domain": "AWS"}`})
	d, err := e.Extract(context.Background(), "AWS Solutions Architect designing multi-region cloud infrastructure.")
	require.NoError(t, err)
	assert.Equal(t, "AWS", d)
}

func TestExtractRejectsLLMDomainConflictingWithEmployerMap(t *testing.T) {
	e := New(stubCompleter{response: `{"domain": "Retail"}`})
	d, err := e.Extract(context.Background(), "Engagement Manager at Mayo Clinic leading digital transformation projects.")
	require.NoError(t, err)
	assert.Equal(t, "Healthcare", d)
}

func TestExtractFallsBackToKeywordScorerWhenLLMNull(t *testing.T) {
	e := New(stubCompleter{response: `{"domain": null}`})
	d, err := e.Extract(context.Background(), "Led insurance claims underwriting and actuarial risk management for a national insurance carrier.")
	require.NoError(t, err)
	assert.Equal(t, "Insurance", d)
}

func TestExtractReturnsEmptyWhenNothingMatches(t *testing.T) {
	e := New(stubCompleter{response: `{"domain": null}`})
	d, err := e.Extract(context.Background(), "Organized team lunches and scheduled conference rooms for the office.")
	require.NoError(t, err)
	assert.Equal(t, "", d)
}

func TestExtractFallsBackOnLLMError(t *testing.T) {
	e := New(stubCompleter{err: assertError{}})
	d, err := e.Extract(context.Background(), "Bank Teller processing deposits, loans, and mortgage applications daily.")
	require.NoError(t, err)
	assert.Equal(t, "Banking", d)
}

type assertError struct{}

func (assertError) Error() string { return "llm unavailable" }
