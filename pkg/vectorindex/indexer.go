package vectorindex

import (
	"context"
	"errors"
	"fmt"

	"github.com/ats-ingest/resumeforge/pkg/embedding"
	"github.com/ats-ingest/resumeforge/pkg/models"
)

// ErrResumeNotReady is returned when IndexResume is asked to index a row
// missing text or master category.
var ErrResumeNotReady = errors.New("resume is not ready for indexing: text and master category are required")

// Embedder is the subset of the Embedding Gateway contract the Indexer
// needs.
type Embedder interface {
	EmbedChunks(ctx context.Context, text string, windowSize, overlap, batchSize int, metadata map[string]any) ([]embedding.EmbeddedChunk, error)
}

// ResumeUpdater is the subset of the Resume Repository contract needed
// to flip the indexed flag after a durable write.
type ResumeUpdater interface {
	Update(ctx context.Context, resumeID int64, fields map[string]any) error
}

// Indexer drives chunking, batched embedding, and backend upsert for one
// resume at a time. It holds no per-call state; backend and embedder
// handles are supplied at construction and reused across calls.
type Indexer struct {
	backend  Backend
	embedder Embedder
	repo     ResumeUpdater

	windowSize      int
	overlap         int
	batchSize       int
	metadataTextCap int
}

// New constructs an Indexer.
func New(backend Backend, embedder Embedder, repo ResumeUpdater, windowSize, overlap, batchSize, metadataTextCap int) *Indexer {
	return &Indexer{
		backend:         backend,
		embedder:        embedder,
		repo:            repo,
		windowSize:      windowSize,
		overlap:         overlap,
		batchSize:       batchSize,
		metadataTextCap: metadataTextCap,
	}
}

// IndexResume chunks r's text, embeds each chunk, and upserts the full
// vector set into the index selected by master category and the
// namespace selected by category (falling back to "other"). The
// indexed flag is set to true only after the upsert durably succeeds;
// on any failure it is left untouched so the resume can be re-picked.
//
// When force is false and r is already indexed, this is a no-op — a
// resume is indexed at most once unless force-reindex is requested.
func (ix *Indexer) IndexResume(ctx context.Context, r *models.Resume, normalizedSkills []string, force bool) error {
	if !r.ReadyForIndexing() {
		return ErrResumeNotReady
	}
	if r.Indexed && !force {
		return nil
	}

	baseMetadata := buildBaseMetadata(r, normalizedSkills, ix.metadataTextCap)

	chunks, err := ix.embedder.EmbedChunks(ctx, *r.RawText, ix.windowSize, ix.overlap, ix.batchSize, baseMetadata)
	if err != nil {
		return fmt.Errorf("embedding resume %d: %w", r.ID, err)
	}
	if len(chunks) == 0 {
		return nil
	}

	records := make([]models.VectorRecord, 0, len(chunks))
	for _, c := range chunks {
		md := cloneMetadata(c.Metadata)
		md["chunk_index"] = c.ChunkIndex
		md["chunk_text"] = c.Text

		records = append(records, models.VectorRecord{
			ID:        models.VectorID(r.ID, c.ChunkIndex),
			Embedding: c.Embedding,
			Metadata:  md,
		})
	}

	indexName := IndexNameForMasterCategory(*r.MasterCategory)
	namespace := r.CategoryOrOther()

	if err := ix.backend.Upsert(ctx, indexName, namespace, records); err != nil {
		return fmt.Errorf("upserting %d vectors for resume %d: %w", len(records), r.ID, err)
	}

	return ix.repo.Update(ctx, r.ID, map[string]any{"indexed": true})
}
