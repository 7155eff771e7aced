package llmgateway

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Complete. Callers use errors.Is/errors.As;
// the gateway never panics across its call boundary.
var (
	ErrUnavailableServer  = errors.New("model server unavailable")
	ErrTimeout            = errors.New("model server call timed out")
	ErrMalformedResponse  = errors.New("model server returned a malformed response")
	ErrNoModelDiscovered  = errors.New("no usable model discovered on model server")
)

// HTTPStatusError wraps an unexpected (non-404) HTTP status returned by
// the model server.
type HTTPStatusError struct {
	Code int
	Body string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("model server returned HTTP %d: %s", e.Code, e.Body)
}
