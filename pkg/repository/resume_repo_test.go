package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testdb "github.com/ats-ingest/resumeforge/test/database"
)

func TestInsertAndGet(t *testing.T) {
	client := testdb.NewTestClient(t)
	repo := New(client.DB())

	id, err := repo.Insert(context.Background(), "jane-doe.pdf")
	require.NoError(t, err)
	require.NotZero(t, id)

	resume, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "jane-doe.pdf", resume.Filename)
	assert.Equal(t, "pending", resume.Status)
	assert.Nil(t, resume.MasterCategory)
}

func TestUpdatePartialFields(t *testing.T) {
	client := testdb.NewTestClient(t)
	repo := New(client.DB())

	id, err := repo.Insert(context.Background(), "jane-doe.pdf")
	require.NoError(t, err)

	name := "Jane Doe"
	err = repo.Update(context.Background(), id, map[string]any{
		"candidate_name":  name,
		"master_category": "IT",
	})
	require.NoError(t, err)

	resume, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, resume.CandidateName)
	assert.Equal(t, name, *resume.CandidateName)
	require.NotNil(t, resume.MasterCategory)
	assert.Equal(t, "IT", string(*resume.MasterCategory))
}

func TestUpdateRejectsNonWhitelistedColumn(t *testing.T) {
	client := testdb.NewTestClient(t)
	repo := New(client.DB())

	id, err := repo.Insert(context.Background(), "jane-doe.pdf")
	require.NoError(t, err)

	err = repo.Update(context.Background(), id, map[string]any{"id": int64(999)})
	assert.ErrorIs(t, err, ErrColumnNotWhitelisted)
}

func TestUpdateRejectsNilOnNotNullColumn(t *testing.T) {
	client := testdb.NewTestClient(t)
	repo := New(client.DB())

	id, err := repo.Insert(context.Background(), "jane-doe.pdf")
	require.NoError(t, err)

	err = repo.Update(context.Background(), id, map[string]any{"filename": nil})
	assert.ErrorIs(t, err, ErrNotNullViolation)
}

func TestUpdateUnknownResumeReturnsNotFound(t *testing.T) {
	client := testdb.NewTestClient(t)
	repo := New(client.DB())

	err := repo.Update(context.Background(), 999999, map[string]any{"candidate_name": "Nobody"})
	assert.ErrorIs(t, err, ErrResumeNotFound)
}

func TestGetAsMapReturnsPlainMap(t *testing.T) {
	client := testdb.NewTestClient(t)
	repo := New(client.DB())

	id, err := repo.Insert(context.Background(), "jane-doe.pdf")
	require.NoError(t, err)

	m, err := repo.GetAsMap(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "jane-doe.pdf", m["filename"])
	assert.Nil(t, m["master_category"])
}
