// Package vectorindex implements the Vector Indexer: chunking, batched
// embedding, and upsert into a configured vector backend, with the
// indexed-flag flip happening strictly after a durable write.
//
// Two backend variants exist, matching design note "Vector backend
// abstraction: two variants {Remote, LocalIndex}": Remote speaks a
// generic Pinecone-shaped upsert/query/delete REST contract; LocalIndex
// is a sqlite-vec flat index acting as the disaster-recovery fallback.
package vectorindex

import (
	"context"
	"errors"

	"github.com/ats-ingest/resumeforge/pkg/models"
)

// ErrBackendNotFound reports a requested backend name that matches no
// backend. No function in this package returns it.
var ErrBackendNotFound = errors.New("vector backend not found")

// Backend is the vector-store contract the Indexer drives: named indexes
// with per-record {id, values, metadata} and namespaces within an index.
type Backend interface {
	// Upsert writes records into indexName/namespace. Implementations
	// bound batch size internally if the backend requires it.
	Upsert(ctx context.Context, indexName, namespace string, records []models.VectorRecord) error

	// Delete removes ids from indexName/namespace. The Indexer does not
	// call it: force-reindex upserts over the existing chunk ids.
	Delete(ctx context.Context, indexName, namespace string, ids []string) error

	// Query performs a top-k similarity search, scoped to indexName and
	// optionally namespace (empty string searches all namespaces).
	// Out of the ingestion core's scope (see AI-search Non-goal) but
	// exposed here since both backend variants implement it naturally.
	Query(ctx context.Context, indexName, namespace string, embedding []float32, topK int) ([]QueryMatch, error)
}

// QueryMatch is one result of a similarity search.
type QueryMatch struct {
	ID       string
	Score    float64
	Metadata map[string]any
}

// IndexNameForMasterCategory selects one of the two target indexes by
// master category, per "Select target index by master-category (two
// indexes: IT, Non-IT)".
func IndexNameForMasterCategory(mc models.MasterCategory) string {
	if mc == models.MasterCategoryIT {
		return "resumes-it"
	}
	return "resumes-non-it"
}
