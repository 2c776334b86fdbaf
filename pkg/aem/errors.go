package aem

import (
	"errors"
	"fmt"
)

// ErrMissingContent indicates a page update was requested without any JCR
// content. Helpers return it before issuing any network call.
var ErrMissingContent = errors.New("no JCR content provided")

// ErrNotReachable indicates the AEM connectivity probe failed where a flow
// requires the instance to be reachable before attempting a write.
var ErrNotReachable = errors.New("cannot connect to AEM instance")

// ReadError is returned when a content read against AEM fails, either with a
// non-2xx status or a transport-level error.
type ReadError struct {
	Path       string
	StatusCode int // 0 for transport failures
	Err        error
}

func (e *ReadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("aem: read %s: status %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("aem: read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError is returned when a content write against AEM fails. For non-2xx
// responses the response body is kept as diagnostic detail.
type WriteError struct {
	Path       string
	StatusCode int // 0 for transport failures
	Detail     string
	Err        error
}

func (e *WriteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("aem: write %s: status %d: %s", e.Path, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("aem: write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
