package jobcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ats-ingest/resumeforge/pkg/models"
)

func TestStoreAndGet(t *testing.T) {
	c := New(3)
	c.Store("job-1", models.JobCacheEntry{Embedding: []float32{1, 0}})

	entry, ok := c.Get("job-1")
	require.True(t, ok)
	assert.Equal(t, []float32{1, 0}, entry.Embedding)
}

func TestGetMissingReturnsFalse(t *testing.T) {
	c := New(3)
	_, ok := c.Get("missing")
	assert.False(t, ok)
}

func TestEvictsLeastRecentlyUsedWhenFull(t *testing.T) {
	c := New(2)
	c.Store("job-1", models.JobCacheEntry{})
	c.Store("job-2", models.JobCacheEntry{})
	c.Store("job-3", models.JobCacheEntry{})

	_, ok := c.Get("job-1")
	assert.False(t, ok, "job-1 should have been evicted as least recently used")

	_, ok = c.Get("job-2")
	assert.True(t, ok)
	_, ok = c.Get("job-3")
	assert.True(t, ok)
}

func TestGetPromotesRecency(t *testing.T) {
	c := New(2)
	c.Store("job-1", models.JobCacheEntry{})
	c.Store("job-2", models.JobCacheEntry{})

	_, ok := c.Get("job-1")
	require.True(t, ok)

	c.Store("job-3", models.JobCacheEntry{})

	_, ok = c.Get("job-2")
	assert.False(t, ok, "job-2 should have been evicted, job-1 was touched more recently")
	_, ok = c.Get("job-1")
	assert.True(t, ok)
}

func TestStoreExistingKeyUpdatesValueAndPromotes(t *testing.T) {
	c := New(2)
	c.Store("job-1", models.JobCacheEntry{Embedding: []float32{1}})
	c.Store("job-2", models.JobCacheEntry{})
	c.Store("job-1", models.JobCacheEntry{Embedding: []float32{2}})
	c.Store("job-3", models.JobCacheEntry{})

	_, ok := c.Get("job-2")
	assert.False(t, ok, "job-2 should have been evicted since job-1 was refreshed more recently")

	entry, ok := c.Get("job-1")
	require.True(t, ok)
	assert.Equal(t, []float32{2}, entry.Embedding)
}

func TestDelete(t *testing.T) {
	c := New(2)
	c.Store("job-1", models.JobCacheEntry{})
	c.Delete("job-1")

	_, ok := c.Get("job-1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}
