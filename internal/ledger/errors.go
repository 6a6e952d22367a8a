package ledger

import (
	"errors"
	"fmt"
)

// RejectionError is a well-formed ledger response carrying an explicit error field.
// Its message is meant to be shown to the user verbatim.
type RejectionError struct {
	Message string
}

func (e *RejectionError) Error() string {
	return e.Message
}

// HTTPError is a non-2xx response without a usable error field.
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

// IsRejection reports whether err is an application-level rejection and returns it.
func IsRejection(err error) (*RejectionError, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
