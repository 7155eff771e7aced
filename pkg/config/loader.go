package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the complete resumeforge.yaml file structure.
type YAMLConfig struct {
	ModelServer       *ModelServerConfig       `yaml:"model_server"`
	Embedding         *EmbeddingConfig         `yaml:"embedding"`
	Chunking          *ChunkingConfig          `yaml:"chunking"`
	VectorIndex       *VectorIndexConfig       `yaml:"vector_index"`
	Database          *DatabaseConfig          `yaml:"database"`
	Pipeline          *PipelineConfig          `yaml:"pipeline"`
	JobCache          *JobCacheConfig          `yaml:"job_cache"`
	Server            *ServerConfig            `yaml:"server"`
	ExtractorTimeouts map[string]string        `yaml:"extractor_timeouts"`
}

// Initialize loads, validates, and returns ready-to-use configuration. This
// is the primary entry point for configuration loading.
//
// Steps performed:
//  1. Load resumeforge.yaml from configDir
//  2. Expand environment variables
//  3. Parse YAML into a YAMLConfig
//  4. Merge user-defined sections onto built-in defaults
//  5. Parse extractor timeout overrides
//  6. Validate all configuration
//  7. Return Config ready for use
func Initialize(_ context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("initializing configuration")

	cfg, err := load(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	log.Info("configuration initialized successfully",
		"vector_backend", cfg.VectorIndex.Backend,
		"max_concurrent_resumes", cfg.Pipeline.MaxConcurrentResumes,
		"embedding_model", cfg.Embedding.PreferredModel)

	return cfg, nil
}

// load is the internal loader (not exported).
func load(configDir string) (*Config, error) {
	loader := &configLoader{configDir: configDir}

	yc, err := loader.loadYAMLConfig()
	if err != nil {
		return nil, NewLoadError("resumeforge.yaml", err)
	}

	modelServer, err := mergeModelServer(yc.ModelServer)
	if err != nil {
		return nil, fmt.Errorf("failed to merge model_server config: %w", err)
	}
	embedding, err := mergeEmbedding(yc.Embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to merge embedding config: %w", err)
	}
	chunking, err := mergeChunking(yc.Chunking)
	if err != nil {
		return nil, fmt.Errorf("failed to merge chunking config: %w", err)
	}
	vectorIndex, err := mergeVectorIndex(yc.VectorIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to merge vector_index config: %w", err)
	}
	database, err := mergeDatabase(yc.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to merge database config: %w", err)
	}
	pipeline, err := mergePipeline(yc.Pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to merge pipeline config: %w", err)
	}
	jobCache, err := mergeJobCache(yc.JobCache)
	if err != nil {
		return nil, fmt.Errorf("failed to merge job_cache config: %w", err)
	}
	server, err := mergeServer(yc.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to merge server config: %w", err)
	}

	timeouts, err := parseExtractorTimeouts(yc.ExtractorTimeouts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse extractor_timeouts: %w", err)
	}

	return &Config{
		configDir:         configDir,
		ModelServer:       modelServer,
		Embedding:         embedding,
		Chunking:          chunking,
		VectorIndex:       vectorIndex,
		Database:          database,
		Pipeline:          pipeline,
		JobCache:          jobCache,
		Server:            server,
		ExtractorTimeouts: timeouts,
	}, nil
}

// validate performs comprehensive validation on loaded configuration.
func validate(cfg *Config) error {
	v := NewValidator(cfg)
	return v.ValidateAll()
}

func parseExtractorTimeouts(raw map[string]string) (map[string]time.Duration, error) {
	out := make(map[string]time.Duration, len(raw))
	for name, s := range raw {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("extractor %q: %w", name, err)
		}
		out[name] = d
	}
	return out, nil
}

type configLoader struct {
	configDir string
}

func (l *configLoader) loadYAML(filename string, target any) error {
	path := filepath.Join(l.configDir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}

	// Expand environment variables using {{.VAR}} template syntax.
	data = ExpandEnv(data)

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return nil
}

func (l *configLoader) loadYAMLConfig() (*YAMLConfig, error) {
	var cfg YAMLConfig
	cfg.ExtractorTimeouts = make(map[string]string)

	if err := l.loadYAML("resumeforge.yaml", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
