package config

import "time"

// Config is the fully resolved, validated configuration for the ingestion
// engine: model server, embedding, chunking, vector backend, database,
// pipeline concurrency, job cache and HTTP server settings.
type Config struct {
	configDir string

	ModelServer *ModelServerConfig
	Embedding   *EmbeddingConfig
	Chunking    *ChunkingConfig
	VectorIndex *VectorIndexConfig
	Database    *DatabaseConfig
	Pipeline    *PipelineConfig
	JobCache    *JobCacheConfig
	Server      *ServerConfig

	// ExtractorTimeouts maps an extractor name (name, designation, role,
	// experience, domain, education, skills, location, master_category,
	// category) to its per-call timeout. Extractors not present here use
	// Pipeline.DefaultExtractorTimeout.
	ExtractorTimeouts map[string]time.Duration
}

// ConfigDir returns the directory this configuration was loaded from.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// ExtractorTimeout returns the timeout configured for name, or the
// pipeline-wide default when no override exists.
func (c *Config) ExtractorTimeout(name string) time.Duration {
	if d, ok := c.ExtractorTimeouts[name]; ok {
		return d
	}
	return c.Pipeline.DefaultExtractorTimeout
}

// ModelServerConfig describes the Ollama-shaped local model server used for
// both completion and embedding calls.
type ModelServerConfig struct {
	BaseURL         string        `yaml:"base_url"`
	PreferredModel  string        `yaml:"preferred_model"`
	FallbackModel   string        `yaml:"fallback_model"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	MaxRetries      int           `yaml:"max_retries"`
	RetryBackoffMin time.Duration `yaml:"retry_backoff_min"`
	RetryBackoffMax time.Duration `yaml:"retry_backoff_max"`
}

// EmbeddingConfig describes the embedding model and batching behavior.
type EmbeddingConfig struct {
	PreferredModel string        `yaml:"preferred_model"`
	FallbackModel  string        `yaml:"fallback_model"`
	Dimension      int           `yaml:"dimension"`
	BatchSize      int           `yaml:"batch_size"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// ChunkingConfig controls how resume/job text is split before embedding.
type ChunkingConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// VectorIndexConfig selects and configures the vector storage backend.
type VectorIndexConfig struct {
	Backend           string              `yaml:"backend"` // "remote" or "local"
	SimilarityThresh  float64             `yaml:"similarity_threshold"`
	DefaultTopK       int                 `yaml:"default_top_k"`
	MetadataTextCap   int                 `yaml:"metadata_text_cap_bytes"`
	Remote            *RemoteBackendConfig `yaml:"remote,omitempty"`
	Local             *LocalBackendConfig  `yaml:"local,omitempty"`
}

// RemoteBackendConfig configures a Pinecone-shaped remote vector store.
type RemoteBackendConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKeyEnv  string `yaml:"api_key_env"`
	IndexName  string `yaml:"index_name"`
	Namespace  string `yaml:"namespace,omitempty"`
}

// LocalBackendConfig configures the sqlite-vec backed local index.
type LocalBackendConfig struct {
	DBPath string `yaml:"db_path"`
}

// DatabaseConfig mirrors pkg/database.Config, specified through YAML instead
// of (or in addition to) environment variables.
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	PasswordEnv     string        `yaml:"password_env"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// PipelineConfig bounds per-resume orchestration.
type PipelineConfig struct {
	MaxConcurrentResumes   int           `yaml:"max_concurrent_resumes"`
	PerResumeDeadline      time.Duration `yaml:"per_resume_deadline"`
	DefaultExtractorTimeout time.Duration `yaml:"default_extractor_timeout"`
	ShutdownGracePeriod    time.Duration `yaml:"shutdown_grace_period"`
}

// JobCacheConfig bounds the in-memory job-description embedding cache.
type JobCacheConfig struct {
	Capacity int `yaml:"capacity"`
}

// ServerConfig configures the gin HTTP listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}
