package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ats-ingest/resumeforge/pkg/models"
)

const masterCategoryCharLimit = 1000

const masterCategoryPrompt = `
IMPORTANT: This is a FRESH, ISOLATED classification task. Ignore all prior context.

Classify the candidate profile below as exactly one of "IT" or "NON_IT".
IT covers software development, data, cloud, DevOps, AI/ML, and IT
business/program management. NON_IT covers everything else (finance,
sales, HR, operations, healthcare, manufacturing, and similar). On any
uncertainty, answer "NON_IT". Return strict JSON:
{"master_category": "IT" | "NON_IT"}

Resume text:
%s

Output (JSON only):`

// MasterCategory classifies a resume into models.MasterCategoryIT or
// models.MasterCategoryNonIT. It never returns null: on any uncertainty
// or extraction failure, it defaults to NON_IT, per the classifier
// contract.
func MasterCategory(ctx context.Context, llm Completer, resumeText string, timeout time.Duration) (models.MasterCategory, Result) {
	input := truncate(resumeText, masterCategoryCharLimit)
	prompt := fmt.Sprintf(masterCategoryPrompt, input)

	value, found, err := callForField(ctx, llm, prompt, "master_category", timeout)
	if err != nil || !found {
		return models.MasterCategoryNonIT, ok(string(models.MasterCategoryNonIT))
	}

	normalized := strings.ToUpper(strings.TrimSpace(value))
	switch normalized {
	case string(models.MasterCategoryIT):
		return models.MasterCategoryIT, ok(normalized)
	case string(models.MasterCategoryNonIT), "NON-IT", "NONIT":
		return models.MasterCategoryNonIT, ok(string(models.MasterCategoryNonIT))
	default:
		return models.MasterCategoryNonIT, ok(string(models.MasterCategoryNonIT))
	}
}
