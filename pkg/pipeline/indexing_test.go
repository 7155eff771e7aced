package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ats-ingest/resumeforge/pkg/models"
)

type fakeIndexStore struct {
	resumes []*models.Resume
	err     error
}

func (f *fakeIndexStore) ListPendingForIndex(ctx context.Context, limit int, resumeIDs []int64, force bool) ([]*models.Resume, error) {
	return f.resumes, f.err
}

type fakeResumeIndexer struct {
	mu       sync.Mutex
	indexed  []int64
	failFor  map[int64]error
}

func (f *fakeResumeIndexer) IndexResume(ctx context.Context, r *models.Resume, normalizedSkills []string, force bool) error {
	if err, ok := f.failFor[r.ID]; ok {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed = append(f.indexed, r.ID)
	return nil
}

func skillStr(s string) *string { return &s }

func TestIndexBatcherRunIndexesAllPending(t *testing.T) {
	store := &fakeIndexStore{resumes: []*models.Resume{
		{ID: 1, Skillset: skillStr("Go, Python")},
		{ID: 2, Skillset: nil},
		{ID: 3, Skillset: skillStr("")},
	}}
	indexer := &fakeResumeIndexer{}
	batcher := NewIndexBatcher(store, indexer, 2, nil)

	report, err := batcher.Run(context.Background(), 10, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Attempted)
	assert.Equal(t, 3, report.Indexed)
	assert.Equal(t, 0, report.Failed)
	assert.ElementsMatch(t, []int64{1, 2, 3}, indexer.indexed)
}

func TestIndexBatcherRunCollectsPerResumeFailures(t *testing.T) {
	store := &fakeIndexStore{resumes: []*models.Resume{
		{ID: 1},
		{ID: 2},
	}}
	indexer := &fakeResumeIndexer{failFor: map[int64]error{2: errors.New("embedding failed")}}
	batcher := NewIndexBatcher(store, indexer, 4, nil)

	report, err := batcher.Run(context.Background(), 10, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Attempted)
	assert.Equal(t, 1, report.Indexed)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, "embedding failed", report.Errors[2])
}

func TestIndexBatcherRunPropagatesStoreError(t *testing.T) {
	store := &fakeIndexStore{err: errors.New("db unreachable")}
	batcher := NewIndexBatcher(store, &fakeResumeIndexer{}, 2, nil)

	_, err := batcher.Run(context.Background(), 10, nil, false)
	require.Error(t, err)
}

func TestIndexBatcherRunNoOpOnEmptyPending(t *testing.T) {
	store := &fakeIndexStore{}
	batcher := NewIndexBatcher(store, &fakeResumeIndexer{}, 2, nil)

	report, err := batcher.Run(context.Background(), 10, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Attempted)
}

func TestSplitSkillsetParsesCommaJoinedTokens(t *testing.T) {
	s := "Go, Python,  Kubernetes"
	out := splitSkillset(&s)
	assert.Equal(t, []string{"Go", "Python", "Kubernetes"}, out)
}

func TestSplitSkillsetNilReturnsNil(t *testing.T) {
	assert.Nil(t, splitSkillset(nil))
}
