package vectorindex

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ats-ingest/resumeforge/pkg/models"
)

func TestIndexNameForMasterCategory(t *testing.T) {
	assert.Equal(t, "resumes-it", IndexNameForMasterCategory(models.MasterCategoryIT))
	assert.Equal(t, "resumes-non-it", IndexNameForMasterCategory(models.MasterCategoryNonIT))
}
