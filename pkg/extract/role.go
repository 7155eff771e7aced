package extract

import (
	"context"
	"time"
)

const roleCharLimit = 4000

// Role extracts the candidate's primary job role (functional role or
// position type), no normalization.
func Role(ctx context.Context, llm Completer, resumeText string, timeout time.Duration) Result {
	return extractTitle(ctx, llm, resumeText, "primary job role", "role", roleCharLimit, timeout)
}
