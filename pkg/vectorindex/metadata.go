package vectorindex

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ats-ingest/resumeforge/pkg/models"
)

// truncationMarker is appended to resume text cut down to the metadata
// size budget, per "resume-text in metadata is capped (<=30 KB) ...
// ends with the truncation marker".
const truncationMarker = "...[truncated]"

var experienceYearsPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*\+?\s*year`)

// ParseExperienceYears extracts a numeric years-of-experience figure from
// a free-form experience string (e.g. "8 years", "5+ years in software
// engineering"). Returns (0, false) when no figure can be parsed; a
// missing figure is a legal, meaningful result, not an error.
func ParseExperienceYears(experience string) (float64, bool) {
	m := experienceYearsPattern.FindStringSubmatch(experience)
	if m == nil {
		return 0, false
	}
	years, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return years, true
}

// buildBaseMetadata assembles the metadata shared by every chunk of one
// resume: all resume fields, a numeric experience-in-years figure,
// skills as a normalized array, designation/role lowercased for
// case-insensitive filtering, and the full resume text truncated to
// metadataTextCap bytes with a truncation marker. Chunk-specific fields
// (chunk index, chunk text) are added by the caller per chunk.
func buildBaseMetadata(r *models.Resume, normalizedSkills []string, metadataTextCap int) map[string]any {
	md := map[string]any{
		"resume_id": r.ID,
		"filename":  r.Filename,
		"status":    r.Status,
	}

	if r.MasterCategory != nil {
		md["master_category"] = string(*r.MasterCategory)
	}
	if r.Category != nil {
		md["category"] = *r.Category
	}
	if r.CandidateName != nil {
		md["candidate_name"] = *r.CandidateName
	}
	if r.Designation != nil {
		md["designation"] = strings.ToLower(*r.Designation)
	}
	if r.JobRole != nil {
		md["role"] = strings.ToLower(*r.JobRole)
	}
	if r.Experience != nil {
		md["experience"] = *r.Experience
		if years, ok := ParseExperienceYears(*r.Experience); ok {
			md["experience_years"] = years
		}
	}
	if r.Domain != nil {
		md["domain"] = *r.Domain
	}
	if r.Mobile != nil {
		md["mobile"] = *r.Mobile
	}
	if r.Email != nil {
		md["email"] = *r.Email
	}
	if r.Education != nil {
		md["education"] = *r.Education
	}
	if r.Location != nil {
		md["location"] = *r.Location
	}
	if r.Skillset != nil {
		md["skillset"] = *r.Skillset
	}
	md["skills"] = normalizedSkills

	if r.RawText != nil {
		md["resume_text"] = truncateToBytes(*r.RawText, metadataTextCap)
	}

	return md
}

// truncateToBytes caps text at capBytes (accounting for the marker's own
// length) and appends truncationMarker when truncation occurred.
func truncateToBytes(text string, capBytes int) string {
	if len(text) <= capBytes {
		return text
	}

	limit := capBytes - len(truncationMarker)
	if limit < 0 {
		limit = 0
	}

	// Trim on a rune boundary so the cut never splits a multi-byte
	// character: back up while the first dropped byte is a continuation
	// byte.
	for limit > 0 && text[limit]&0xC0 == 0x80 {
		limit--
	}

	return text[:limit] + truncationMarker
}

// cloneMetadata returns a shallow copy of md so per-chunk fields can be
// added without mutating the shared base metadata map.
func cloneMetadata(md map[string]any) map[string]any {
	out := make(map[string]any, len(md)+2)
	for k, v := range md {
		out[k] = v
	}
	return out
}
