package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ats-ingest/resumeforge/pkg/jsoncoerce"
	"github.com/ats-ingest/resumeforge/pkg/llmgateway"
	"github.com/ats-ingest/resumeforge/pkg/models"
	"github.com/ats-ingest/resumeforge/pkg/skillnorm"
)

const (
	skillsCharLimit = 10000
	maxSkills       = 100
)

// PromptLookup is the subset of the Prompt Store contract skills
// extraction needs: (master category, category) -> prompt text, with the
// "other" fallback handled by the implementation.
type PromptLookup interface {
	Lookup(ctx context.Context, masterCategory models.MasterCategory, category *string) (string, error)
}

// SkillsResult extends Result with the normalized skill list used for
// vector-index metadata; Value holds the comma-joined storage form.
type SkillsResult struct {
	Result
	Normalized []string
}

const skillsOutputInstruction = `

<<<RESUME_TEXT>>>
%s

Output strict JSON only, one of:
{"skills": ["skill1", "skill2", ...]}
or a bare array: ["skill1", "skill2", ...]
No other text, no explanations.`

// Skills extracts a candidate's skill list. It requires masterCategory to
// be present and valid: skills extraction has no hard-coded fallback
// prompt and depends entirely on a database-sourced prompt resolved via
// prompts, keyed by (masterCategory, category) with the "other" fallback.
// If masterCategory is nil or invalid, or no prompt can be resolved, the
// skillset is stored as null and the pipeline continues without it.
func Skills(ctx context.Context, llm Completer, prompts PromptLookup, resumeText string, masterCategory *models.MasterCategory, category *string, timeout time.Duration) SkillsResult {
	if masterCategory == nil || !masterCategory.IsValid() {
		return SkillsResult{Result: null()}
	}

	prompt, err := prompts.Lookup(ctx, *masterCategory, category)
	if err != nil {
		return SkillsResult{Result: failed(fmt.Sprintf("no skills prompt available: %v", err))}
	}

	input := truncate(resumeText, skillsCharLimit)
	fullPrompt := prompt + fmt.Sprintf(skillsOutputInstruction, input)

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := llm.Complete(callCtx, fullPrompt, llmgateway.Options{Temperature: 0.1, TopP: 0.9})
	if err != nil {
		return SkillsResult{Result: failed(err.Error())}
	}

	raw, found := parseSkills(text)
	if !found {
		return SkillsResult{Result: null()}
	}

	trimmed := trimDedupeCapSkills(raw)
	if len(trimmed) == 0 {
		return SkillsResult{Result: null()}
	}

	return SkillsResult{
		Result:     ok(strings.Join(trimmed, ", ")),
		Normalized: skillnorm.NormalizeList(trimmed),
	}
}

// parseSkills coerces raw model output into a skill-string slice,
// accepting either {"skills": [...]} or a bare JSON array.
func parseSkills(raw string) ([]string, bool) {
	if obj, ok := jsoncoerce.Object(raw); ok {
		if v, ok := obj["skills"]; ok {
			return toStringSlice(v), true
		}
	}
	if arr, ok := jsoncoerce.Array(raw); ok {
		return toStringSlice(arr), true
	}
	return nil, false
}

func toStringSlice(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		s, ok := item.(string)
		if !ok {
			continue
		}
		out = append(out, s)
	}
	return out
}

// trimDedupeCapSkills trims whitespace, rejects sentinels, dedupes
// case-insensitively while preserving first-occurrence order, and caps
// the result at maxSkills entries.
func trimDedupeCapSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))

	for _, s := range skills {
		trimmed := strings.TrimSpace(s)
		if trimmed == "" || isSentinel(trimmed) {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
		if len(out) == maxSkills {
			break
		}
	}
	return out
}
