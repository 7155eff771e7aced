package config

import "dario.cat/mergo"

// mergeModelServer merges a user-supplied model server section onto the
// baseline defaults. Zero-value fields in user are left at their default.
func mergeModelServer(user *ModelServerConfig) (*ModelServerConfig, error) {
	cfg := DefaultModelServerConfig()
	if user == nil {
		return cfg, nil
	}
	if err := mergo.Merge(cfg, user, mergo.WithOverride); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeEmbedding merges a user-supplied embedding section onto defaults.
func mergeEmbedding(user *EmbeddingConfig) (*EmbeddingConfig, error) {
	cfg := DefaultEmbeddingConfig()
	if user == nil {
		return cfg, nil
	}
	if err := mergo.Merge(cfg, user, mergo.WithOverride); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeChunking merges a user-supplied chunking section onto defaults.
func mergeChunking(user *ChunkingConfig) (*ChunkingConfig, error) {
	cfg := DefaultChunkingConfig()
	if user == nil {
		return cfg, nil
	}
	if err := mergo.Merge(cfg, user, mergo.WithOverride); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeVectorIndex merges a user-supplied vector index section onto
// defaults. Remote/Local sub-sections merge independently so a user can
// supply just the backend name plus partial overrides.
func mergeVectorIndex(user *VectorIndexConfig) (*VectorIndexConfig, error) {
	cfg := DefaultVectorIndexConfig()
	if user == nil {
		return cfg, nil
	}
	if user.Remote != nil {
		cfg.Remote = user.Remote
	}
	if user.Local != nil {
		if cfg.Local == nil {
			cfg.Local = &LocalBackendConfig{}
		}
		if err := mergo.Merge(cfg.Local, user.Local, mergo.WithOverride); err != nil {
			return nil, err
		}
	}
	// Clear sub-sections before merging scalars so mergo doesn't clobber
	// the pointer fields we just resolved above.
	userScalars := *user
	userScalars.Remote = nil
	userScalars.Local = nil
	if err := mergo.Merge(cfg, &userScalars, mergo.WithOverride); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeDatabase merges a user-supplied database section onto defaults.
func mergeDatabase(user *DatabaseConfig) (*DatabaseConfig, error) {
	cfg := DefaultDatabaseConfig()
	if user == nil {
		return cfg, nil
	}
	if err := mergo.Merge(cfg, user, mergo.WithOverride); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergePipeline merges a user-supplied pipeline section onto defaults.
func mergePipeline(user *PipelineConfig) (*PipelineConfig, error) {
	cfg := DefaultPipelineConfig()
	if user == nil {
		return cfg, nil
	}
	if err := mergo.Merge(cfg, user, mergo.WithOverride); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeJobCache merges a user-supplied job cache section onto defaults.
func mergeJobCache(user *JobCacheConfig) (*JobCacheConfig, error) {
	cfg := DefaultJobCacheConfig()
	if user == nil {
		return cfg, nil
	}
	if err := mergo.Merge(cfg, user, mergo.WithOverride); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeServer merges a user-supplied server section onto defaults.
func mergeServer(user *ServerConfig) (*ServerConfig, error) {
	cfg := DefaultServerConfig()
	if user == nil {
		return cfg, nil
	}
	if err := mergo.Merge(cfg, user, mergo.WithOverride); err != nil {
		return nil, err
	}
	return cfg, nil
}
