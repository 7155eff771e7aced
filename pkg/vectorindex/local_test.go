package vectorindex

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ats-ingest/resumeforge/pkg/models"
)

func newTestLocalBackend(t *testing.T) *LocalBackend {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "vectors.db")
	backend, err := NewLocalBackend(dbPath, 4)
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })
	return backend
}

func TestLocalBackendUpsertAndQueryRoundTrip(t *testing.T) {
	backend := newTestLocalBackend(t)

	records := []models.VectorRecord{
		{ID: "resume_1_chunk_0", Embedding: []float32{1, 0, 0, 0}, Metadata: map[string]any{"role": "engineer"}},
		{ID: "resume_2_chunk_0", Embedding: []float32{0, 1, 0, 0}, Metadata: map[string]any{"role": "analyst"}},
	}

	err := backend.Upsert(t.Context(), "resumes-it", "backend", records)
	require.NoError(t, err)

	matches, err := backend.Query(t.Context(), "resumes-it", "backend", []float32{1, 0, 0, 0}, 2)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "resume_1_chunk_0", matches[0].ID)
	assert.Equal(t, "engineer", matches[0].Metadata["role"])
}

func TestLocalBackendDeleteIsLogicalTombstone(t *testing.T) {
	backend := newTestLocalBackend(t)

	records := []models.VectorRecord{
		{ID: "resume_1_chunk_0", Embedding: []float32{1, 0, 0, 0}, Metadata: map[string]any{}},
	}
	require.NoError(t, backend.Upsert(t.Context(), "resumes-it", "backend", records))
	require.NoError(t, backend.Delete(t.Context(), "resumes-it", "backend", []string{"resume_1_chunk_0"}))

	matches, err := backend.Query(t.Context(), "resumes-it", "backend", []float32{1, 0, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestLocalBackendQueryFiltersByNamespace(t *testing.T) {
	backend := newTestLocalBackend(t)

	require.NoError(t, backend.Upsert(t.Context(), "resumes-it", "backend", []models.VectorRecord{
		{ID: "resume_1_chunk_0", Embedding: []float32{1, 0, 0, 0}, Metadata: map[string]any{}},
	}))
	require.NoError(t, backend.Upsert(t.Context(), "resumes-it", "frontend", []models.VectorRecord{
		{ID: "resume_2_chunk_0", Embedding: []float32{1, 0, 0, 0}, Metadata: map[string]any{}},
	}))

	matches, err := backend.Query(t.Context(), "resumes-it", "backend", []float32{1, 0, 0, 0}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "resume_1_chunk_0", matches[0].ID)
}

func TestSanitizeTableName(t *testing.T) {
	assert.Equal(t, "vec_resumes_it", sanitizeTableName("resumes-it"))
	assert.Equal(t, "vec_resumes_non_it", sanitizeTableName("resumes-non-it"))
}

func TestSerializeFloat32RoundTripsLength(t *testing.T) {
	v := []float32{1, 2, 3, 4}
	buf := serializeFloat32(v)
	assert.Len(t, buf, len(v)*4)
}
