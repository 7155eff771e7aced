package models

// JobCacheEntry is the value stored per job-id in the bounded Job Cache:
// an embedding alongside free-form metadata (title, location, etc.).
type JobCacheEntry struct {
	Embedding []float32
	Metadata  map[string]any
}
