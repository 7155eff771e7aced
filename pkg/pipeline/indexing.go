package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/semaphore"

	"github.com/ats-ingest/resumeforge/pkg/models"
	"github.com/ats-ingest/resumeforge/pkg/skillnorm"
)

// IndexStore is the subset of the Resume Repository contract the batch
// indexing driver needs, beyond ResumeStore.
type IndexStore interface {
	ListPendingForIndex(ctx context.Context, limit int, resumeIDs []int64, force bool) ([]*models.Resume, error)
}

// ResumeIndexer is the subset of the Vector Indexer contract the batch
// driver needs.
type ResumeIndexer interface {
	IndexResume(ctx context.Context, r *models.Resume, normalizedSkills []string, force bool) error
}

// IndexReport summarizes one batch indexing pass, driven by POST
// /index-pinecone or POST /reindex-resumes.
type IndexReport struct {
	Attempted int
	Indexed   int
	Failed    int
	Errors    map[int64]string
}

// IndexBatcher drives the Vector Indexer across pending resumes,
// independent of the extraction orchestrator, matching the HTTP
// contract's separate indexing routes.
type IndexBatcher struct {
	store   IndexStore
	indexer ResumeIndexer
	sem     *semaphore.Weighted
	logger  *slog.Logger
}

// NewIndexBatcher constructs an IndexBatcher bounded by maxConcurrent
// simultaneous IndexResume calls, the same bounded-concurrency idiom the
// extraction fan-out uses.
func NewIndexBatcher(store IndexStore, indexer ResumeIndexer, maxConcurrent int, logger *slog.Logger) *IndexBatcher {
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IndexBatcher{store: store, indexer: indexer, sem: semaphore.NewWeighted(int64(maxConcurrent)), logger: logger}
}

// Run indexes up to limit pending resumes (or exactly resumeIDs, when
// non-empty), applying force to override the idempotent indexed-flag
// check. Per-resume failures are collected in the report rather than
// aborting the batch.
func (b *IndexBatcher) Run(ctx context.Context, limit int, resumeIDs []int64, force bool) (IndexReport, error) {
	resumes, err := b.store.ListPendingForIndex(ctx, limit, resumeIDs, force)
	if err != nil {
		return IndexReport{}, err
	}

	report := IndexReport{Attempted: len(resumes), Errors: make(map[int64]string)}
	if len(resumes) == 0 {
		return report, nil
	}

	type outcome struct {
		id  int64
		err error
	}
	results := make(chan outcome, len(resumes))

	for _, r := range resumes {
		r := r
		if err := b.sem.Acquire(ctx, 1); err != nil {
			results <- outcome{id: r.ID, err: err}
			continue
		}
		go func() {
			defer b.sem.Release(1)
			normalizedSkills := skillnorm.NormalizeList(splitSkillset(r.Skillset))
			err := b.indexer.IndexResume(ctx, r, normalizedSkills, force)
			results <- outcome{id: r.ID, err: err}
		}()
	}

	for range resumes {
		o := <-results
		if o.err != nil {
			report.Failed++
			report.Errors[o.id] = o.err.Error()
			b.logger.Error("failed to index resume", "resume_id", o.id, "error", o.err)
			continue
		}
		report.Indexed++
	}

	return report, nil
}

// splitSkillset parses the comma-joined storage form of a resume's
// skillset back into individual tokens for re-normalization at index
// time.
func splitSkillset(skillset *string) []string {
	if skillset == nil || *skillset == "" {
		return nil
	}
	var out []string
	start := 0
	s := *skillset
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			tok := trimSpaceASCII(s[start:i])
			if tok != "" {
				out = append(out, tok)
			}
			start = i + 1
		}
	}
	return out
}

func trimSpaceASCII(s string) string {
	start, end := 0, len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}
