package vectorindex

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sync"

	sqlitevec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ats-ingest/resumeforge/pkg/models"
)

func init() {
	sqlitevec.Auto()
}

// LocalBackend is a persisted flat inner-product index over sqlite-vec,
// acting as the disaster-recovery fallback for the Remote backend. It
// holds one vec0 virtual table per index name, keyed by a sanitized
// table identifier. Deletion is a logical tombstone applied at
// query-time, since vec0 does not support arbitrary row deletion by
// filter.
type LocalBackend struct {
	db        *sql.DB
	dimension int

	mu     sync.Mutex
	tables map[string]bool
}

// NewLocalBackend opens (creating if absent) the sqlite database at
// dbPath for dimension-D embeddings.
func NewLocalBackend(dbPath string, dimension int) (*LocalBackend, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening local vector store: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging local vector store: %w", err)
	}

	return &LocalBackend{
		db:        db,
		dimension: dimension,
		tables:    make(map[string]bool),
	}, nil
}

// Close closes the underlying sqlite connection.
func (b *LocalBackend) Close() error {
	return b.db.Close()
}

var tableNamePattern = regexp.MustCompile(`[^a-z0-9_]+`)

func sanitizeTableName(indexName string) string {
	return "vec_" + tableNamePattern.ReplaceAllString(indexName, "_")
}

func (b *LocalBackend) ensureTable(indexName string) (string, error) {
	table := sanitizeTableName(indexName)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.tables[table] {
		return table, nil
	}

	_, err := b.db.Exec(fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS %s USING vec0(
			id TEXT PRIMARY KEY,
			embedding FLOAT[%d]
		)`, table, b.dimension))
	if err != nil {
		return "", fmt.Errorf("creating vec0 table %s: %w", table, err)
	}

	metaTable := table + "_meta"
	_, err = b.db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			namespace TEXT NOT NULL,
			metadata TEXT NOT NULL,
			tombstoned INTEGER NOT NULL DEFAULT 0
		)`, metaTable))
	if err != nil {
		return "", fmt.Errorf("creating metadata table %s: %w", metaTable, err)
	}

	b.tables[table] = true
	return table, nil
}

// Upsert writes records into the vec0 table for indexName; namespace is
// stored per-row in the companion metadata table since vec0 itself has
// no namespace concept.
func (b *LocalBackend) Upsert(ctx context.Context, indexName, namespace string, records []models.VectorRecord) error {
	table, err := b.ensureTable(indexName)
	if err != nil {
		return err
	}
	metaTable := table + "_meta"

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning local upsert transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	vecStmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (id, embedding) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET embedding = excluded.embedding`, table))
	if err != nil {
		return fmt.Errorf("preparing vector insert: %w", err)
	}
	defer vecStmt.Close()

	metaStmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (id, namespace, metadata, tombstoned) VALUES (?, ?, ?, 0)
		 ON CONFLICT(id) DO UPDATE SET namespace = excluded.namespace, metadata = excluded.metadata, tombstoned = 0`, metaTable))
	if err != nil {
		return fmt.Errorf("preparing metadata insert: %w", err)
	}
	defer metaStmt.Close()

	for _, r := range records {
		if _, err := vecStmt.ExecContext(ctx, r.ID, serializeFloat32(r.Embedding)); err != nil {
			return fmt.Errorf("inserting vector %s: %w", r.ID, err)
		}

		metadataJSON, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("marshaling metadata for %s: %w", r.ID, err)
		}
		if _, err := metaStmt.ExecContext(ctx, r.ID, namespace, string(metadataJSON)); err != nil {
			return fmt.Errorf("inserting metadata %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// Delete applies a logical tombstone to ids within indexName/namespace:
// the vec0 rows are left in place (vec0 DELETE support is limited) but
// future Query calls filter tombstoned rows out.
func (b *LocalBackend) Delete(ctx context.Context, indexName, namespace string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	table, err := b.ensureTable(indexName)
	if err != nil {
		return err
	}
	metaTable := table + "_meta"

	placeholders := make([]any, 0, len(ids)+1)
	placeholders = append(placeholders, namespace)
	inClause := ""
	for i, id := range ids {
		if i > 0 {
			inClause += ", "
		}
		inClause += "?"
		placeholders = append(placeholders, id)
	}

	query := fmt.Sprintf(`UPDATE %s SET tombstoned = 1 WHERE namespace = ? AND id IN (%s)`, metaTable, inClause)
	_, err = b.db.ExecContext(ctx, query, placeholders...)
	if err != nil {
		return fmt.Errorf("tombstoning %d ids in %s/%s: %w", len(ids), indexName, namespace, err)
	}
	return nil
}

// Query performs a KNN search over the vec0 table, filtering out
// tombstoned rows and rows outside namespace (when namespace is set).
func (b *LocalBackend) Query(ctx context.Context, indexName, namespace string, embedding []float32, topK int) ([]QueryMatch, error) {
	table, err := b.ensureTable(indexName)
	if err != nil {
		return nil, err
	}
	metaTable := table + "_meta"

	query := fmt.Sprintf(`
		SELECT v.id, v.distance, m.metadata
		FROM %s v
		JOIN %s m ON m.id = v.id
		WHERE v.embedding MATCH ? AND k = ? AND m.tombstoned = 0`, table, metaTable)
	args := []any{serializeFloat32(embedding), topK}
	if namespace != "" {
		query += " AND m.namespace = ?"
		args = append(args, namespace)
	}
	query += " ORDER BY v.distance"

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("local vector query: %w", err)
	}
	defer rows.Close()

	var matches []QueryMatch
	for rows.Next() {
		var id, metadataJSON string
		var distance float64
		if err := rows.Scan(&id, &distance, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scanning local vector match: %w", err)
		}

		var metadata map[string]any
		if err := json.Unmarshal([]byte(metadataJSON), &metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata for %s: %w", id, err)
		}

		matches = append(matches, QueryMatch{ID: id, Score: 1.0 - distance, Metadata: metadata})
	}
	return matches, rows.Err()
}

// serializeFloat32 converts a float32 slice to little-endian bytes, the
// wire format sqlite-vec expects for a FLOAT[N] column.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
