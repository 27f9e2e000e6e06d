package wp

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrNotFound is returned by single-post lookups when no post could be
// resolved, including when the integration is disabled.
var ErrNotFound = errors.New("wp: post not found")

const snippetLen = 200

// FetchError describes a failed REST call.
type FetchError struct {
	Status  int    // HTTP status, 0 for transport failures
	URL     string // requested URL
	Snippet string // start of the response body
	NonJSON bool   // 2xx response with a non-JSON content type
	Err     error  // underlying transport or decode error
}

func (e *FetchError) Error() string {
	var b strings.Builder
	switch {
	case e.NonJSON:
		fmt.Fprintf(&b, "wp fetch failed %d: non-JSON response from %s", e.Status, e.URL)
	case e.Status == 0:
		fmt.Fprintf(&b, "wp fetch failed: %s", e.URL)
	default:
		fmt.Fprintf(&b, "wp fetch failed %d: %s", e.Status, e.URL)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.Snippet != "" {
		fmt.Fprintf(&b, ": %q", e.Snippet)
	}
	return b.String()
}

func (e *FetchError) Unwrap() error { return e.Err }

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) <= snippetLen {
		return s
	}
	s = s[:snippetLen]
	for !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
