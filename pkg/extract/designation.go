package extract

import (
	"context"
	"time"
)

const designationCharLimit = 4000

// Designation extracts the candidate's job title, no normalization.
func Designation(ctx context.Context, llm Completer, resumeText string, timeout time.Duration) Result {
	return extractTitle(ctx, llm, resumeText, "job title or designation", "designation", designationCharLimit, timeout)
}
