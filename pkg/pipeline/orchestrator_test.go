package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ats-ingest/resumeforge/pkg/llmgateway"
	"github.com/ats-ingest/resumeforge/pkg/models"
)

// fakeRepo implements ResumeStore in memory for orchestrator tests.
type fakeRepo struct {
	mu        sync.Mutex
	nextID    int64
	rows      map[int64]*models.Resume
	insertErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[int64]*models.Resume)}
}

func (f *fakeRepo) Insert(ctx context.Context, filename string) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := f.nextID
	f.rows[id] = &models.Resume{ID: id, Filename: filename, Status: models.StatusPending}
	return id, nil
}

func (f *fakeRepo) Update(ctx context.Context, resumeID int64, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[resumeID]
	if !ok {
		return errors.New("no such resume")
	}
	for k, v := range fields {
		switch k {
		case "raw_text":
			s := v.(string)
			r.RawText = &s
		case "master_category":
			mc := models.MasterCategory(v.(string))
			r.MasterCategory = &mc
		case "category":
			s := v.(string)
			r.Category = &s
		case "designation":
			s := v.(string)
			r.Designation = &s
		case "candidate_name":
			s := v.(string)
			r.CandidateName = &s
		case "email":
			s := v.(string)
			r.Email = &s
		case "mobile":
			s := v.(string)
			r.Mobile = &s
		case "experience":
			s := v.(string)
			r.Experience = &s
		case "domain":
			s := v.(string)
			r.Domain = &s
		case "education":
			s := v.(string)
			r.Education = &s
		case "job_role":
			s := v.(string)
			r.JobRole = &s
		case "location":
			s := v.(string)
			r.Location = &s
		case "skillset":
			s := v.(string)
			r.Skillset = &s
		case "status":
			r.Status = v.(string)
		}
	}
	return nil
}

func (f *fakeRepo) Get(ctx context.Context, resumeID int64) (*models.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[resumeID]
	if !ok {
		return nil, errors.New("no such resume")
	}
	cp := *r
	return &cp, nil
}

// fakeCompleter returns a fixed response regardless of prompt, driven by
// a per-field keyword match so master_category/category/field extractors
// each get a plausible JSON body back from the JSON Coercer.
type fakeCompleter struct {
	response string
	err      error
	calls    int
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string, opts llmgateway.Options) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeDomainExtractor struct {
	value string
	err   error
}

func (f *fakeDomainExtractor) Extract(ctx context.Context, roleBody string) (string, error) {
	return f.value, f.err
}

type fakePrompts struct {
	prompt string
	err    error
}

func (f *fakePrompts) Lookup(ctx context.Context, masterCategory models.MasterCategory, category *string) (string, error) {
	return f.prompt, f.err
}

func testConfig() Config {
	return Config{
		MaxConcurrentExtractors: 4,
		PerResumeDeadline:       5 * time.Second,
		DefaultExtractorTimeout: time.Second,
		ShutdownGracePeriod:     time.Second,
	}
}

func TestParseExtractModulesEmptySelectsAll(t *testing.T) {
	selected := ParseExtractModules("")
	assert.Len(t, selected, len(allSelectableModules))
	for _, m := range allSelectableModules {
		assert.True(t, selected[m])
	}
}

func TestParseExtractModulesAllKeyword(t *testing.T) {
	selected := ParseExtractModules("ALL")
	assert.Len(t, selected, len(allSelectableModules))
}

func TestParseExtractModulesNumericAliases(t *testing.T) {
	selected := ParseExtractModules("1,3,8")
	assert.True(t, selected[ModuleDesignation])
	assert.True(t, selected[ModuleEmail])
	assert.True(t, selected[ModuleSkills])
	assert.False(t, selected[ModuleName])
	assert.Len(t, selected, 3)
}

func TestParseExtractModulesLiteralNames(t *testing.T) {
	selected := ParseExtractModules("name, email")
	assert.True(t, selected[ModuleName])
	assert.True(t, selected[ModuleEmail])
	assert.Len(t, selected, 2)
}

func TestParseExtractModulesIgnoresUnknownTokens(t *testing.T) {
	selected := ParseExtractModules("name, bogus")
	assert.True(t, selected[ModuleName])
	assert.Len(t, selected, 1)
}

func TestProcessRejectsEmptyFilename(t *testing.T) {
	o := New(newFakeRepo(), &fakeCompleter{response: `{"master_category":"IT"}`}, &fakeDomainExtractor{}, &fakePrompts{}, testConfig(), nil)

	_, err := o.Process(context.Background(), "  ", "some text", nil)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestProcessPropagatesRowCreationFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.insertErr = errors.New("db down")
	o := New(repo, &fakeCompleter{response: `{"value":"x"}`}, &fakeDomainExtractor{}, &fakePrompts{}, testConfig(), nil)

	_, err := o.Process(context.Background(), "resume.pdf", "some text", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRowCreationFailed))
}

func TestProcessRunsClassificationAndFanOut(t *testing.T) {
	repo := newFakeRepo()
	llm := &fakeCompleter{response: `{"email": "jane@example.com"}`}
	o := New(repo, llm, &fakeDomainExtractor{value: "fintech"}, &fakePrompts{prompt: "extract skills"}, testConfig(), nil)

	modules := ParseExtractModules("all")
	resume, err := o.Process(context.Background(), "resume.pdf", "Jane Doe\njane@example.com\n555-123-4567", modules)
	require.NoError(t, err)
	require.NotNil(t, resume)
	assert.Equal(t, "resume.pdf", resume.Filename)
	assert.Equal(t, models.StatusOK, resume.Status)
	require.NotNil(t, resume.Email)
	assert.Equal(t, "jane@example.com", *resume.Email)
}

func TestProcessGatesOptionalModules(t *testing.T) {
	repo := newFakeRepo()
	llm := &fakeCompleter{response: `{"value":"x"}`}
	o := New(repo, llm, &fakeDomainExtractor{}, &fakePrompts{}, testConfig(), nil)

	modules := map[string]bool{ModuleEmail: true}
	resume, err := o.Process(context.Background(), "resume.pdf", "Jane Doe\njane@example.com", modules)
	require.NoError(t, err)
	assert.NotNil(t, resume.Email)
	assert.Nil(t, resume.Designation)
	assert.Nil(t, resume.CandidateName)
}

func TestShutdownRejectsNewProcessCalls(t *testing.T) {
	repo := newFakeRepo()
	o := New(repo, &fakeCompleter{response: `{"value":"x"}`}, &fakeDomainExtractor{}, &fakePrompts{}, testConfig(), nil)

	o.Shutdown(100 * time.Millisecond)

	_, err := o.Process(context.Background(), "resume.pdf", "text", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShuttingDown))
}
