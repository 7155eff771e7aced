package config

import (
	"fmt"
	"net/url"
)

// Validator validates configuration comprehensively with clear error messages.
type Validator struct {
	cfg *Config
}

// NewValidator creates a validator for the given configuration.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAll performs comprehensive validation (fail-fast — stops at the
// first error). Order matters: model server and embedding are validated
// before the pipeline settings that depend on them being reachable-shaped.
func (v *Validator) ValidateAll() error {
	if err := v.validateModelServer(); err != nil {
		return fmt.Errorf("model_server validation failed: %w", err)
	}
	if err := v.validateEmbedding(); err != nil {
		return fmt.Errorf("embedding validation failed: %w", err)
	}
	if err := v.validateChunking(); err != nil {
		return fmt.Errorf("chunking validation failed: %w", err)
	}
	if err := v.validateVectorIndex(); err != nil {
		return fmt.Errorf("vector_index validation failed: %w", err)
	}
	if err := v.validateDatabase(); err != nil {
		return fmt.Errorf("database validation failed: %w", err)
	}
	if err := v.validatePipeline(); err != nil {
		return fmt.Errorf("pipeline validation failed: %w", err)
	}
	if err := v.validateJobCache(); err != nil {
		return fmt.Errorf("job_cache validation failed: %w", err)
	}
	if err := v.validateServer(); err != nil {
		return fmt.Errorf("server validation failed: %w", err)
	}
	return nil
}

func (v *Validator) validateModelServer() error {
	m := v.cfg.ModelServer
	if m == nil {
		return NewValidationError("model_server", "", "", fmt.Errorf("configuration is nil"))
	}
	if m.BaseURL == "" {
		return NewValidationError("model_server", "", "base_url", ErrMissingRequiredField)
	}
	if _, err := url.ParseRequestURI(m.BaseURL); err != nil {
		return NewValidationError("model_server", "", "base_url", fmt.Errorf("%w: %v", ErrInvalidValue, err))
	}
	if m.PreferredModel == "" {
		return NewValidationError("model_server", "", "preferred_model", ErrMissingRequiredField)
	}
	if m.RequestTimeout <= 0 {
		return NewValidationError("model_server", "", "request_timeout", fmt.Errorf("must be positive, got %v", m.RequestTimeout))
	}
	if m.MaxRetries < 0 {
		return NewValidationError("model_server", "", "max_retries", fmt.Errorf("must be non-negative, got %d", m.MaxRetries))
	}
	if m.RetryBackoffMin <= 0 || m.RetryBackoffMax <= 0 {
		return NewValidationError("model_server", "", "retry_backoff", fmt.Errorf("min/max must be positive"))
	}
	if m.RetryBackoffMin > m.RetryBackoffMax {
		return NewValidationError("model_server", "", "retry_backoff", fmt.Errorf("retry_backoff_min (%v) must not exceed retry_backoff_max (%v)", m.RetryBackoffMin, m.RetryBackoffMax))
	}
	return nil
}

func (v *Validator) validateEmbedding() error {
	e := v.cfg.Embedding
	if e == nil {
		return NewValidationError("embedding", "", "", fmt.Errorf("configuration is nil"))
	}
	if e.PreferredModel == "" {
		return NewValidationError("embedding", "", "preferred_model", ErrMissingRequiredField)
	}
	if e.Dimension < 1 {
		return NewValidationError("embedding", "", "dimension", fmt.Errorf("must be at least 1, got %d", e.Dimension))
	}
	if e.BatchSize < 1 {
		return NewValidationError("embedding", "", "batch_size", fmt.Errorf("must be at least 1, got %d", e.BatchSize))
	}
	if e.RequestTimeout <= 0 {
		return NewValidationError("embedding", "", "request_timeout", fmt.Errorf("must be positive, got %v", e.RequestTimeout))
	}
	return nil
}

func (v *Validator) validateChunking() error {
	c := v.cfg.Chunking
	if c == nil {
		return NewValidationError("chunking", "", "", fmt.Errorf("configuration is nil"))
	}
	if c.ChunkSize < 1 {
		return NewValidationError("chunking", "", "chunk_size", fmt.Errorf("must be at least 1, got %d", c.ChunkSize))
	}
	if c.ChunkOverlap < 0 {
		return NewValidationError("chunking", "", "chunk_overlap", fmt.Errorf("must be non-negative, got %d", c.ChunkOverlap))
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return NewValidationError("chunking", "", "chunk_overlap", fmt.Errorf("must be less than chunk_size, got overlap=%d size=%d", c.ChunkOverlap, c.ChunkSize))
	}
	return nil
}

func (v *Validator) validateVectorIndex() error {
	vi := v.cfg.VectorIndex
	if vi == nil {
		return NewValidationError("vector_index", "", "", fmt.Errorf("configuration is nil"))
	}
	switch vi.Backend {
	case "remote":
		if vi.Remote == nil {
			return NewValidationError("vector_index", "remote", "remote", fmt.Errorf("backend is 'remote' but no remote config provided"))
		}
		if vi.Remote.BaseURL == "" {
			return NewValidationError("vector_index", "remote", "base_url", ErrMissingRequiredField)
		}
		if vi.Remote.IndexName == "" {
			return NewValidationError("vector_index", "remote", "index_name", ErrMissingRequiredField)
		}
	case "local":
		if vi.Local == nil {
			return NewValidationError("vector_index", "local", "local", fmt.Errorf("backend is 'local' but no local config provided"))
		}
		if vi.Local.DBPath == "" {
			return NewValidationError("vector_index", "local", "db_path", ErrMissingRequiredField)
		}
	default:
		return NewValidationError("vector_index", vi.Backend, "backend", ErrVectorBackendNotFound)
	}
	if vi.SimilarityThresh < 0 || vi.SimilarityThresh > 1 {
		return NewValidationError("vector_index", "", "similarity_threshold", fmt.Errorf("must be in [0,1], got %v", vi.SimilarityThresh))
	}
	if vi.DefaultTopK < 1 {
		return NewValidationError("vector_index", "", "default_top_k", fmt.Errorf("must be at least 1, got %d", vi.DefaultTopK))
	}
	if vi.MetadataTextCap < 0 {
		return NewValidationError("vector_index", "", "metadata_text_cap_bytes", fmt.Errorf("must be non-negative, got %d", vi.MetadataTextCap))
	}
	return nil
}

func (v *Validator) validateDatabase() error {
	d := v.cfg.Database
	if d == nil {
		return NewValidationError("database", "", "", fmt.Errorf("configuration is nil"))
	}
	if d.Host == "" {
		return NewValidationError("database", "", "host", ErrMissingRequiredField)
	}
	if d.Port < 1 || d.Port > 65535 {
		return NewValidationError("database", "", "port", fmt.Errorf("must be in [1,65535], got %d", d.Port))
	}
	if d.Database == "" {
		return NewValidationError("database", "", "database", ErrMissingRequiredField)
	}
	if d.MaxOpenConns < 1 {
		return NewValidationError("database", "", "max_open_conns", fmt.Errorf("must be at least 1, got %d", d.MaxOpenConns))
	}
	if d.MaxIdleConns < 0 {
		return NewValidationError("database", "", "max_idle_conns", fmt.Errorf("must be non-negative, got %d", d.MaxIdleConns))
	}
	if d.MaxIdleConns > d.MaxOpenConns {
		return NewValidationError("database", "", "max_idle_conns", fmt.Errorf("cannot exceed max_open_conns (%d), got %d", d.MaxOpenConns, d.MaxIdleConns))
	}
	return nil
}

func (v *Validator) validatePipeline() error {
	p := v.cfg.Pipeline
	if p == nil {
		return NewValidationError("pipeline", "", "", fmt.Errorf("configuration is nil"))
	}
	if p.MaxConcurrentResumes < 1 || p.MaxConcurrentResumes > 64 {
		return NewValidationError("pipeline", "", "max_concurrent_resumes", fmt.Errorf("must be between 1 and 64, got %d", p.MaxConcurrentResumes))
	}
	if p.PerResumeDeadline <= 0 {
		return NewValidationError("pipeline", "", "per_resume_deadline", fmt.Errorf("must be positive, got %v", p.PerResumeDeadline))
	}
	if p.DefaultExtractorTimeout <= 0 {
		return NewValidationError("pipeline", "", "default_extractor_timeout", fmt.Errorf("must be positive, got %v", p.DefaultExtractorTimeout))
	}
	if p.DefaultExtractorTimeout >= p.PerResumeDeadline {
		return NewValidationError("pipeline", "", "default_extractor_timeout", fmt.Errorf("must be less than per_resume_deadline, got timeout=%v deadline=%v", p.DefaultExtractorTimeout, p.PerResumeDeadline))
	}
	if p.ShutdownGracePeriod <= 0 {
		return NewValidationError("pipeline", "", "shutdown_grace_period", fmt.Errorf("must be positive, got %v", p.ShutdownGracePeriod))
	}
	for name, d := range v.cfg.ExtractorTimeouts {
		if d <= 0 {
			return NewValidationError("pipeline", name, "extractor_timeouts", fmt.Errorf("must be positive, got %v", d))
		}
	}
	return nil
}

func (v *Validator) validateJobCache() error {
	jc := v.cfg.JobCache
	if jc == nil {
		return NewValidationError("job_cache", "", "", fmt.Errorf("configuration is nil"))
	}
	if jc.Capacity < 1 {
		return NewValidationError("job_cache", "", "capacity", fmt.Errorf("must be at least 1, got %d", jc.Capacity))
	}
	return nil
}

func (v *Validator) validateServer() error {
	s := v.cfg.Server
	if s == nil {
		return NewValidationError("server", "", "", fmt.Errorf("configuration is nil"))
	}
	if s.Port < 1 || s.Port > 65535 {
		return NewValidationError("server", "", "port", fmt.Errorf("must be in [1,65535], got %d", s.Port))
	}
	return nil
}
