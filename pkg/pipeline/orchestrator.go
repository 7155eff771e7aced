// Package pipeline implements the Pipeline Orchestrator: it persists the
// initial pending row, drives master-category then category sequentially,
// fans the remaining field extractors out concurrently under a capacity
// semaphore, and funnels each typed result into a single-column repository
// update. Vector indexing is driven separately (see IndexBatcher in this
// package) so it can be triggered as its own batch operation from the
// HTTP API.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/ats-ingest/resumeforge/pkg/extract"
	"github.com/ats-ingest/resumeforge/pkg/models"
	"github.com/ats-ingest/resumeforge/pkg/redact"
)

// previewRunes bounds how much of a failed raw_text write gets echoed into
// the error log, after redaction, to help debugging without dumping whole
// resumes into log storage.
const previewRunes = 200

// ResumeStore is the subset of the Resume Repository contract the
// orchestrator needs.
type ResumeStore interface {
	Insert(ctx context.Context, filename string) (int64, error)
	Update(ctx context.Context, resumeID int64, fields map[string]any) error
	Get(ctx context.Context, resumeID int64) (*models.Resume, error)
}

// Config bounds orchestrator concurrency and timeouts.
type Config struct {
	MaxConcurrentExtractors int
	PerResumeDeadline       time.Duration
	DefaultExtractorTimeout time.Duration
	ExtractorTimeouts       map[string]time.Duration
	ShutdownGracePeriod     time.Duration
}

func (c Config) timeoutFor(name string) time.Duration {
	if d, ok := c.ExtractorTimeouts[name]; ok {
		return d
	}
	return c.DefaultExtractorTimeout
}

// Module names gate the optional field extractors fanned out after
// master-category/category, matching the extract_modules selection set
// in POST /upload-resume. Numeric aliases "1".."8" map onto these in the
// order the HTTP contract lists them (designation, name, email, mobile,
// experience, domain, education, skills) — the original numbering was
// never recovered from the distillation, so this ordering is the
// resolved, documented choice (see DESIGN.md).
const (
	ModuleDesignation = "designation"
	ModuleName        = "name"
	ModuleEmail       = "email"
	ModuleMobile      = "mobile"
	ModuleExperience  = "experience"
	ModuleDomain      = "domain"
	ModuleEducation   = "education"
	ModuleSkills      = "skills"

	// ModuleRole and ModuleLocation are always run: they are not part of
	// the selectable set in the HTTP contract.
	ModuleRole     = "role"
	ModuleLocation = "location"
)

var moduleNumericAliases = map[string]string{
	"1": ModuleDesignation,
	"2": ModuleName,
	"3": ModuleEmail,
	"4": ModuleMobile,
	"5": ModuleExperience,
	"6": ModuleDomain,
	"7": ModuleEducation,
	"8": ModuleSkills,
}

var allSelectableModules = []string{
	ModuleDesignation, ModuleName, ModuleEmail, ModuleMobile,
	ModuleExperience, ModuleDomain, ModuleEducation, ModuleSkills,
}

// ParseExtractModules resolves the extract_modules query/form value into
// a selection set. "all" or an empty string selects every module.
// Unrecognized tokens are ignored rather than rejected, matching the
// orchestrator's never-crash-the-pipeline posture for non-fatal input.
func ParseExtractModules(raw string) map[string]bool {
	raw = strings.TrimSpace(raw)
	selected := make(map[string]bool)
	if raw == "" || strings.EqualFold(raw, "all") {
		for _, m := range allSelectableModules {
			selected[m] = true
		}
		return selected
	}

	for _, tok := range strings.Split(raw, ",") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}
		if alias, ok := moduleNumericAliases[tok]; ok {
			selected[alias] = true
			continue
		}
		for _, m := range allSelectableModules {
			if tok == m {
				selected[m] = true
			}
		}
	}
	return selected
}

// Orchestrator drives one resume at a time through extraction.
type Orchestrator struct {
	repo     ResumeStore
	llm      extract.Completer
	domain   extract.DomainExtractor
	prompts  extract.PromptLookup
	cfg      Config
	sem      *semaphore.Weighted
	logger   *slog.Logger
	redactor *redact.Redactor

	mu       sync.Mutex
	draining bool
	wg       sync.WaitGroup
}

// New constructs an Orchestrator.
func New(repo ResumeStore, llm extract.Completer, domainExtractor extract.DomainExtractor, prompts extract.PromptLookup, cfg Config, logger *slog.Logger) *Orchestrator {
	if cfg.MaxConcurrentExtractors <= 0 {
		cfg.MaxConcurrentExtractors = 8
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		repo:     repo,
		llm:      llm,
		domain:   domainExtractor,
		prompts:  prompts,
		cfg:      cfg,
		sem:      semaphore.NewWeighted(int64(cfg.MaxConcurrentExtractors)),
		logger:   logger,
		redactor: redact.New(),
	}
}

// Shutdown rejects new calls to Process from the moment it is called, then
// blocks until all in-flight Process calls finish or gracePeriod elapses.
// This mirrors the worker pool's drain-then-stop shape: survivors of the
// grace period are left to finish on their own context deadlines while
// Shutdown returns so the caller can proceed with process exit.
func (o *Orchestrator) Shutdown(gracePeriod time.Duration) {
	o.mu.Lock()
	o.draining = true
	o.mu.Unlock()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(gracePeriod):
		o.logger.Warn("shutdown grace period elapsed with extractions still in flight")
	}
}

// Process runs the full extraction pipeline for one resume: creates the
// pending row, classifies master-category and category sequentially,
// fans the selected field extractors out under the concurrency semaphore,
// and marks the row's terminal status. Once the row has been created, the
// only error it returns is a failure to read the row back; per-field
// failures are isolated to their own column and reported only through the
// returned Resume's fields.
func (o *Orchestrator) Process(ctx context.Context, filename, rawText string, modules map[string]bool) (*models.Resume, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, NewValidationError("filename", "must not be empty")
	}

	o.mu.Lock()
	if o.draining {
		o.mu.Unlock()
		return nil, ErrShuttingDown
	}
	o.wg.Add(1)
	o.mu.Unlock()
	defer o.wg.Done()

	id, err := o.repo.Insert(ctx, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRowCreationFailed, err)
	}

	traceID := uuid.New().String()

	resumeCtx, cancel := context.WithTimeout(ctx, o.cfg.PerResumeDeadline)
	defer cancel()

	if err := o.repo.Update(resumeCtx, id, map[string]any{"raw_text": rawText}); err != nil {
		o.logger.Error("failed to persist raw text", "trace_id", traceID, "resume_id", id, "error", err, "text_preview", o.redactor.Preview(rawText, previewRunes))
	}

	masterCategory, category := o.classify(resumeCtx, id, rawText)
	o.fanOutFields(resumeCtx, id, rawText, masterCategory, category, modules)

	status := models.StatusOK
	if ctx.Err() != nil {
		status = models.FailedStatus(models.FailureReasonShutdown)
	}
	if err := o.repo.Update(context.Background(), id, map[string]any{"status": status}); err != nil {
		o.logger.Error("failed to set terminal status", "trace_id", traceID, "resume_id", id, "error", err)
	}

	return o.repo.Get(context.Background(), id)
}

// classify runs master-category then category sequentially, since every
// later extractor depends on master-category and skills also depends on
// category.
func (o *Orchestrator) classify(ctx context.Context, id int64, rawText string) (*models.MasterCategory, *string) {
	mc, _ := extract.MasterCategory(ctx, o.llm, rawText, o.cfg.timeoutFor("master_category"))
	if err := o.repo.Update(ctx, id, map[string]any{"master_category": string(mc)}); err != nil {
		o.logger.Error("failed to persist master_category", "resume_id", id, "error", err)
	}

	categoryResult := extract.Category(ctx, o.llm, rawText, mc, o.cfg.timeoutFor("category"))
	var category *string
	if categoryResult.Status == extract.StatusOK {
		category = categoryResult.Value
		if err := o.repo.Update(ctx, id, map[string]any{"category": *category}); err != nil {
			o.logger.Error("failed to persist category", "resume_id", id, "error", err)
		}
	}

	return &mc, category
}

// fieldJob pairs a module name with the work it performs once its
// semaphore slot is acquired.
type fieldJob struct {
	module string
	run    func() columnUpdate
}

// columnUpdate is a field extractor's outcome ready for a single-column
// repository update. An empty Column means the result was null,
// rejected, or errored and should not overwrite the existing column.
type columnUpdate struct {
	Column string
	Value  any
}

// fanOutFields runs the selected independent extractors concurrently,
// bounded by the capacity semaphore, and persists each result as it
// completes.
func (o *Orchestrator) fanOutFields(ctx context.Context, id int64, rawText string, masterCategory *models.MasterCategory, category *string, modules map[string]bool) {
	jobs := []fieldJob{
		{module: ModuleRole, run: func() columnUpdate {
			return fieldResult("job_role", extract.Role(ctx, o.llm, rawText, o.cfg.timeoutFor("role")))
		}},
		{module: ModuleLocation, run: func() columnUpdate {
			return fieldResult("location", extract.Location(ctx, o.llm, rawText, o.cfg.timeoutFor("location")))
		}},
	}

	if modules[ModuleDesignation] {
		jobs = append(jobs, fieldJob{module: ModuleDesignation, run: func() columnUpdate {
			return fieldResult("designation", extract.Designation(ctx, o.llm, rawText, o.cfg.timeoutFor("designation")))
		}})
	}
	if modules[ModuleName] {
		jobs = append(jobs, fieldJob{module: ModuleName, run: func() columnUpdate {
			return fieldResult("candidate_name", extract.Name(ctx, o.llm, rawText, o.cfg.timeoutFor("name")))
		}})
	}
	if modules[ModuleEmail] {
		jobs = append(jobs, fieldJob{module: ModuleEmail, run: func() columnUpdate {
			return fieldResult("email", extract.Email(rawText))
		}})
	}
	if modules[ModuleMobile] {
		jobs = append(jobs, fieldJob{module: ModuleMobile, run: func() columnUpdate {
			return fieldResult("mobile", extract.Mobile(rawText))
		}})
	}
	if modules[ModuleExperience] {
		jobs = append(jobs, fieldJob{module: ModuleExperience, run: func() columnUpdate {
			return fieldResult("experience", extract.Experience(ctx, o.llm, rawText, o.cfg.timeoutFor("experience")))
		}})
	}
	if modules[ModuleDomain] {
		jobs = append(jobs, fieldJob{module: ModuleDomain, run: func() columnUpdate {
			return fieldResult("domain", extract.Domain(ctx, o.domain, rawText, o.cfg.timeoutFor("domain")))
		}})
	}
	if modules[ModuleEducation] {
		jobs = append(jobs, fieldJob{module: ModuleEducation, run: func() columnUpdate {
			return fieldResult("education", extract.Education(ctx, o.llm, rawText, o.cfg.timeoutFor("education")))
		}})
	}
	if modules[ModuleSkills] {
		jobs = append(jobs, fieldJob{module: ModuleSkills, run: func() columnUpdate {
			return o.skillsResult(ctx, rawText, masterCategory, category)
		}})
	}

	var wg sync.WaitGroup
	for _, job := range jobs {
		job := job
		if err := o.sem.Acquire(ctx, 1); err != nil {
			o.logger.Warn("skipping extractor: semaphore acquire failed", "module", job.module, "error", err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer o.sem.Release(1)

			result := job.run()
			if result.Column == "" {
				return
			}
			if err := o.repo.Update(context.Background(), id, map[string]any{result.Column: result.Value}); err != nil {
				o.logger.Error("failed to persist extractor result", "resume_id", id, "module", job.module, "error", err)
			}
		}()
	}
	wg.Wait()
}

func (o *Orchestrator) skillsResult(ctx context.Context, rawText string, masterCategory *models.MasterCategory, category *string) columnUpdate {
	skills := extract.Skills(ctx, o.llm, o.prompts, rawText, masterCategory, category, o.cfg.timeoutFor("skills"))
	if skills.Status != extract.StatusOK {
		return columnUpdate{}
	}
	return columnUpdate{Column: "skillset", Value: *skills.Value}
}

// fieldResult converts an extract.Result into a single-column update,
// skipping the update entirely on null/rejected/error so the column is
// left untouched rather than overwritten with an empty value.
func fieldResult(column string, r extract.Result) columnUpdate {
	if r.Status != extract.StatusOK {
		return columnUpdate{}
	}
	return columnUpdate{Column: column, Value: *r.Value}
}
