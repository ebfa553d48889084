package mock

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Typed errors below unwrap to them so callers can use
// errors.Is without depending on the concrete type.
var (
	ErrInvalidMatcher            = errors.New("invalid matcher")
	ErrInvalidMatcherCombination = errors.New("invalid matcher combination")
	ErrNoMatch                   = errors.New("no response can be found")
	ErrAmbiguousRequest          = errors.New("more than one request matched")
	ErrUnrequestedResponses      = errors.New("responses were not requested")
	ErrUnexpectedRequests        = errors.New("requests were not expected")
)

// NoMatchError is returned to the client code when no registered entry can
// answer a request.
type NoMatchError struct {
	Request *Request
	// Entries is a snapshot of every registered entry, in registration
	// order, taken when the request failed.
	Entries []Entry
	// Message is the full human readable description, including the
	// registered entries and their near-miss details.
	Message string
}

func (e *NoMatchError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s for %s request on %s", ErrNoMatch, e.Request.Method, e.Request.URL)
}

func (e *NoMatchError) Unwrap() error { return ErrNoMatch }

// AmbiguousRequestError is returned by single-request lookups when more than
// one recorded request satisfies the filter.
type AmbiguousRequestError struct {
	Count int
}

func (e *AmbiguousRequestError) Error() string {
	return fmt.Sprintf("More than one request (%d) matched, use GetRequests instead or refine your filters.", e.Count)
}

func (e *AmbiguousRequestError) Unwrap() error { return ErrAmbiguousRequest }

// UnrequestedResponsesError lists mandatory entries nobody requested.
type UnrequestedResponsesError struct {
	Descriptions []string
}

func (e *UnrequestedResponsesError) Error() string {
	return "The following responses are mocked but not requested:\n" + bulletList(e.Descriptions) +
		"\n\nIf this is on purpose, refer to https://github.com/getmockd/httpmock#optional-responses"
}

func (e *UnrequestedResponsesError) Unwrap() error { return ErrUnrequestedResponses }

// UnexpectedRequestsError lists requests no entry answered, together with
// the registry they were matched against.
type UnexpectedRequestsError struct {
	Descriptions []string
	// Entries is a snapshot of the registry at verification time.
	Entries []Entry
	// Registered describes Entries, one line each.
	Registered []string
}

func (e *UnexpectedRequestsError) Error() string {
	var b strings.Builder
	b.WriteString("The following requests were not expected:\n")
	b.WriteString(bulletList(e.Descriptions))
	if len(e.Registered) > 0 {
		b.WriteString("\n\nRegistered responses:\n")
		b.WriteString(bulletList(e.Registered))
	} else {
		b.WriteString("\n\nNo response is registered.")
	}
	b.WriteString("\n\nIf this is on purpose, refer to https://github.com/getmockd/httpmock#allow-unexpected-requests")
	return b.String()
}

func (e *UnexpectedRequestsError) Unwrap() error { return ErrUnexpectedRequests }

func bulletList(items []string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("  - ")
		b.WriteString(item)
	}
	return b.String()
}
