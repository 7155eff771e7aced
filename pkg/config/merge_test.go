package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeModelServerNilUsesDefaults(t *testing.T) {
	cfg, err := mergeModelServer(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultModelServerConfig(), cfg)
}

func TestMergeModelServerOverridesOnlySetFields(t *testing.T) {
	cfg, err := mergeModelServer(&ModelServerConfig{PreferredModel: "mixtral"})
	require.NoError(t, err)
	assert.Equal(t, "mixtral", cfg.PreferredModel)
	assert.Equal(t, DefaultModelServerConfig().BaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultModelServerConfig().MaxRetries, cfg.MaxRetries)
}

func TestMergeEmbeddingOverride(t *testing.T) {
	cfg, err := mergeEmbedding(&EmbeddingConfig{Dimension: 1536})
	require.NoError(t, err)
	assert.Equal(t, 1536, cfg.Dimension)
	assert.Equal(t, DefaultEmbeddingConfig().PreferredModel, cfg.PreferredModel)
}

func TestMergeChunkingOverride(t *testing.T) {
	cfg, err := mergeChunking(&ChunkingConfig{ChunkSize: 500, ChunkOverlap: 50})
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.ChunkSize)
	assert.Equal(t, 50, cfg.ChunkOverlap)
}

func TestMergeVectorIndexSwitchesBackend(t *testing.T) {
	cfg, err := mergeVectorIndex(&VectorIndexConfig{
		Backend: "remote",
		Remote: &RemoteBackendConfig{
			BaseURL:   "https://vectors.example.com",
			IndexName: "resumes",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "remote", cfg.Backend)
	require.NotNil(t, cfg.Remote)
	assert.Equal(t, "resumes", cfg.Remote.IndexName)
	// Local defaults are still present even though backend switched to remote.
	require.NotNil(t, cfg.Local)
}

func TestMergeVectorIndexLocalPartialOverride(t *testing.T) {
	cfg, err := mergeVectorIndex(&VectorIndexConfig{
		Local: &LocalBackendConfig{DBPath: "/tmp/custom.db"},
	})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.db", cfg.Local.DBPath)
	assert.Equal(t, DefaultVectorIndexConfig().Backend, cfg.Backend)
}

func TestMergeDatabaseOverride(t *testing.T) {
	cfg, err := mergeDatabase(&DatabaseConfig{Host: "db.internal", Port: 6543})
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, 6543, cfg.Port)
	assert.Equal(t, DefaultDatabaseConfig().SSLMode, cfg.SSLMode)
}

func TestMergePipelineOverride(t *testing.T) {
	cfg, err := mergePipeline(&PipelineConfig{MaxConcurrentResumes: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.MaxConcurrentResumes)
	assert.Equal(t, DefaultPipelineConfig().PerResumeDeadline, cfg.PerResumeDeadline)
}

func TestMergeJobCacheOverride(t *testing.T) {
	cfg, err := mergeJobCache(&JobCacheConfig{Capacity: 64})
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Capacity)
}

func TestMergeServerOverride(t *testing.T) {
	cfg, err := mergeServer(&ServerConfig{Port: 9090})
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, DefaultServerConfig().Host, cfg.Host)
}

func TestMergePreservesDurationFields(t *testing.T) {
	cfg, err := mergeModelServer(&ModelServerConfig{RequestTimeout: 5 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
}
