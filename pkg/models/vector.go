package models

import "fmt"

// VectorRecord is one embedded chunk of a resume's text, ready for upsert
// into the configured vector backend.
type VectorRecord struct {
	ID        string
	Embedding []float32
	Metadata  map[string]any
}

// VectorID formats the stable chunk identifier "resume_{id}_chunk_{index}".
func VectorID(resumeID int64, chunkIndex int) string {
	return fmt.Sprintf("resume_%d_chunk_%d", resumeID, chunkIndex)
}

// Chunk is one windowed slice of resume text prior to embedding.
type Chunk struct {
	Index int
	Text  string
}
