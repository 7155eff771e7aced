// Package models holds the plain data types shared across the ingestion
// pipeline: the persistent Resume row, transient Role spans, Prompt lookup
// rows, vector records, and job cache entries.
package models

import "time"

// MasterCategory is the top-level classification that routes prompt lookup
// and vector index selection.
type MasterCategory string

const (
	MasterCategoryIT    MasterCategory = "IT"
	MasterCategoryNonIT MasterCategory = "NON_IT"
)

// IsValid reports whether m is one of the two allowed sentinel values.
func (m MasterCategory) IsValid() bool {
	return m == MasterCategoryIT || m == MasterCategoryNonIT
}

// PromptLookupKey maps the resume-column form of MasterCategory to the
// distinct string used as a key in the prompts table ("NON_IT" -> "non IT").
func (m MasterCategory) PromptLookupKey() string {
	if m == MasterCategoryNonIT {
		return "non IT"
	}
	return string(m)
}

// Status values a Resume row can carry. Failure statuses carry a reason
// suffix, e.g. "failed:insufficient_text".
const (
	StatusPending = "pending"
	StatusOK      = "ok"

	FailureReasonInsufficientText = "insufficient_text"
	FailureReasonCollaborator     = "collaborator"
	FailureReasonShutdown         = "shutdown"
)

// FailedStatus formats a "failed:<reason>" status string.
func FailedStatus(reason string) string {
	return "failed:" + reason
}

// Resume is the persistent row created for every uploaded document. Only
// Filename is required; every other extractable field starts nil and is
// populated independently by its extractor.
type Resume struct {
	ID       int64
	Filename string

	RawText *string

	MasterCategory *MasterCategory
	Category       *string

	CandidateName *string
	Designation   *string
	JobRole       *string
	Experience    *string
	Domain        *string
	Mobile        *string
	Email         *string
	Education     *string
	Location      *string
	Skillset      *string

	Status  string
	Indexed bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CategoryOrOther returns Category if set, otherwise the "other" fallback
// sentinel used for prompt lookup and vector namespace selection.
func (r *Resume) CategoryOrOther() string {
	if r.Category != nil && *r.Category != "" {
		return *r.Category
	}
	return "other"
}

// ReadyForIndexing reports whether the row carries enough state for the
// Vector Indexer to run: non-empty text and a resolved master category.
func (r *Resume) ReadyForIndexing() bool {
	return r.RawText != nil && *r.RawText != "" && r.MasterCategory != nil
}
