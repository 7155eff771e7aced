package api

import (
	"context"

	"github.com/ats-ingest/resumeforge/pkg/database"
)

// DatabaseHealth adapts *database.Client to DatabaseHealthChecker,
// matching the teacher's inline health-check route shape
// (cmd/tarsy/main.go) but exposed as a reusable handler dependency.
type DatabaseHealth struct {
	Client *database.Client
}

func (h DatabaseHealth) Health(ctx context.Context) (any, error) {
	return database.Health(ctx, h.Client.DB())
}
