package config

import "time"

// DefaultModelServerConfig returns the baseline model server configuration,
// applied for any field left unset in YAML.
func DefaultModelServerConfig() *ModelServerConfig {
	return &ModelServerConfig{
		BaseURL:         "http://localhost:11434",
		PreferredModel:  "llama3.1",
		FallbackModel:   "llama3",
		RequestTimeout:  60 * time.Second,
		MaxRetries:      3,
		RetryBackoffMin: 250 * time.Millisecond,
		RetryBackoffMax: 750 * time.Millisecond,
	}
}

// DefaultEmbeddingConfig returns the baseline embedding configuration.
func DefaultEmbeddingConfig() *EmbeddingConfig {
	return &EmbeddingConfig{
		PreferredModel: "nomic-embed-text",
		FallbackModel:  "all-minilm",
		Dimension:      768,
		BatchSize:      16,
		RequestTimeout: 30 * time.Second,
	}
}

// DefaultChunkingConfig returns the baseline chunking configuration.
func DefaultChunkingConfig() *ChunkingConfig {
	return &ChunkingConfig{
		ChunkSize:    1000,
		ChunkOverlap: 200,
	}
}

// DefaultVectorIndexConfig returns the baseline vector index configuration,
// defaulting to the local sqlite-vec backend so the system runs without
// external dependencies out of the box.
func DefaultVectorIndexConfig() *VectorIndexConfig {
	return &VectorIndexConfig{
		Backend:          "local",
		SimilarityThresh: 0.75,
		DefaultTopK:      10,
		MetadataTextCap:  30 * 1024,
		Local: &LocalBackendConfig{
			DBPath: "./data/resumeforge-vectors.db",
		},
	}
}

// DefaultDatabaseConfig returns the baseline database configuration.
func DefaultDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Host:            "localhost",
		Port:            5432,
		User:            "resumeforge",
		PasswordEnv:     "DB_PASSWORD",
		Database:        "resumeforge",
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 15 * time.Minute,
	}
}

// DefaultPipelineConfig returns the baseline orchestrator configuration.
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		MaxConcurrentResumes:    8,
		PerResumeDeadline:       2 * time.Minute,
		DefaultExtractorTimeout: 20 * time.Second,
		ShutdownGracePeriod:     30 * time.Second,
	}
}

// DefaultJobCacheConfig returns the baseline job cache configuration.
func DefaultJobCacheConfig() *JobCacheConfig {
	return &JobCacheConfig{
		Capacity: 256,
	}
}

// DefaultServerConfig returns the baseline HTTP server configuration.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host: "0.0.0.0",
		Port: 8080,
	}
}
