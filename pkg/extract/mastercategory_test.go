package extract

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ats-ingest/resumeforge/pkg/models"
)

func TestMasterCategoryReturnsITWhenLLMSaysIT(t *testing.T) {
	llm := &stubCompleter{response: `{"master_category": "IT"}`}
	category, res := MasterCategory(context.Background(), llm, "Senior Go Engineer, AWS, Kubernetes", time.Second)
	assert.Equal(t, models.MasterCategoryIT, category)
	assert.Equal(t, StatusOK, res.Status)
}

func TestMasterCategoryDefaultsToNonITOnLLMError(t *testing.T) {
	llm := &stubCompleter{err: assert.AnError}
	category, res := MasterCategory(context.Background(), llm, "some resume text", time.Second)
	assert.Equal(t, models.MasterCategoryNonIT, category)
	assert.Equal(t, StatusOK, res.Status)
}

func TestMasterCategoryDefaultsToNonITOnNullResponse(t *testing.T) {
	llm := &stubCompleter{response: `{"master_category": null}`}
	category, _ := MasterCategory(context.Background(), llm, "some resume text", time.Second)
	assert.Equal(t, models.MasterCategoryNonIT, category)
}

func TestMasterCategoryDefaultsToNonITOnAmbiguousResponse(t *testing.T) {
	llm := &stubCompleter{response: `{"master_category": "maybe"}`}
	category, _ := MasterCategory(context.Background(), llm, "some resume text", time.Second)
	assert.Equal(t, models.MasterCategoryNonIT, category)
}

func TestMasterCategoryAcceptsNonITDirectly(t *testing.T) {
	llm := &stubCompleter{response: `{"master_category": "NON_IT"}`}
	category, _ := MasterCategory(context.Background(), llm, "Registered nurse with ICU experience", time.Second)
	assert.Equal(t, models.MasterCategoryNonIT, category)
}

func TestMasterCategoryTruncatesInputToCharLimit(t *testing.T) {
	long := make([]byte, masterCategoryCharLimit*3)
	for i := range long {
		long[i] = 'a'
	}
	capturing := &capturingCompleter{response: `{"master_category": "IT"}`}
	_, _ = MasterCategory(context.Background(), capturing, string(long), time.Second)
	assert.LessOrEqual(t, len(capturing.lastPrompt), len(masterCategoryPrompt)+masterCategoryCharLimit+10)
}
