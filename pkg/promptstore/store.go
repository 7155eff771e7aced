// Package promptstore is a read-through cache over the prompts table,
// keyed by (master category, category) with an "other" fallback.
package promptstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ats-ingest/resumeforge/pkg/models"
)

const defaultCategoryFallback = "other"

// ErrPromptNotFound is returned when no prompt row matches the lookup
// key, even after the "other" fallback.
var ErrPromptNotFound = errors.New("no prompt found for master category")

type cacheEntry struct {
	prompt    string
	fetchedAt time.Time
}

// Store is a thread-safe read-through cache over the prompts table.
// Expired entries are cleaned up lazily on Lookup, no background
// goroutine, same shape as the teacher's runbook cache.
type Store struct {
	db  *sql.DB
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]*cacheEntry
}

// New constructs a Store backed by db, caching hits for ttl.
func New(db *sql.DB, ttl time.Duration) *Store {
	return &Store{
		db:      db,
		ttl:     ttl,
		entries: make(map[string]*cacheEntry),
	}
}

// Lookup returns the prompt for (masterCategory, category), falling back
// to (masterCategory, "other") when category is nil or has no row of its
// own. masterCategory is mapped to its prompt-table lookup string via
// models.MasterCategory.PromptLookupKey.
func (s *Store) Lookup(ctx context.Context, masterCategory models.MasterCategory, category *string) (string, error) {
	lookupKey := masterCategory.PromptLookupKey()

	normalized := normalizeCategory(category)
	if normalized != "" {
		if prompt, err := s.lookupOne(ctx, lookupKey, normalized); err == nil {
			return prompt, nil
		} else if !errors.Is(err, ErrPromptNotFound) {
			return "", err
		}
	}

	return s.lookupOne(ctx, lookupKey, defaultCategoryFallback)
}

// normalizeCategory lowercases and trims category before lookup, matching
// the original skills_service._normalize_category behavior. A nil or
// blank category normalizes to "".
func normalizeCategory(category *string) string {
	if category == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*category))
}

func (s *Store) lookupOne(ctx context.Context, masterCategoryKey, category string) (string, error) {
	cacheKey := masterCategoryKey + "\x00" + category

	if prompt, ok := s.getCached(cacheKey); ok {
		return prompt, nil
	}

	const query = `SELECT prompt FROM prompts WHERE master_category = $1 AND category = $2`
	var prompt string
	err := s.db.QueryRowContext(ctx, query, masterCategoryKey, category).Scan(&prompt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrPromptNotFound
	}
	if err != nil {
		return "", fmt.Errorf("prompt lookup failed for %s/%s: %w", masterCategoryKey, category, err)
	}

	s.setCached(cacheKey, prompt)
	return prompt, nil
}

func (s *Store) getCached(key string) (string, bool) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return "", false
	}

	if time.Since(entry.fetchedAt) > s.ttl {
		s.mu.Lock()
		if current, ok := s.entries[key]; ok && time.Since(current.fetchedAt) > s.ttl {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return "", false
	}

	return entry.prompt, true
}

func (s *Store) setCached(key, prompt string) {
	s.mu.Lock()
	s.entries[key] = &cacheEntry{prompt: prompt, fetchedAt: time.Now()}
	s.mu.Unlock()
}

// HealthCheck verifies the (IT, "other") and (non IT, "other") rows
// exist. The pipeline degrades without them since skills extraction has
// no hard-coded fallback prompt.
func (s *Store) HealthCheck(ctx context.Context) error {
	for _, mc := range []models.MasterCategory{models.MasterCategoryIT, models.MasterCategoryNonIT} {
		if _, err := s.lookupOne(ctx, mc.PromptLookupKey(), defaultCategoryFallback); err != nil {
			return fmt.Errorf("required prompt missing for %s/%s: %w", mc.PromptLookupKey(), defaultCategoryFallback, err)
		}
	}
	return nil
}
