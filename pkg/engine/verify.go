package engine

import (
	"errors"

	"github.com/getmockd/httpmock/internal/matching"
	"github.com/getmockd/httpmock/pkg/mock"
)

// UnrequestedEntries returns the entries that must be requested but were
// not. An entry without an explicit Optional setting is mandatory when the
// session asserts that all responses were requested. An entry registered
// with Optional(false) is mandatory even when the session does not assert
// it, so a single entry can opt in to the check.
func (e *Engine) UnrequestedEntries() []*mock.Entry {
	e.mu.Lock()
	defer e.mu.Unlock()

	defaultOptional := !e.opts.AssertAllResponsesWereRequested
	var out []*mock.Entry
	for _, entry := range e.registry.entries {
		if entry.UsedCount() == 0 && !entry.IsOptional(defaultOptional) {
			out = append(out, entry)
		}
	}
	return out
}

// UnexpectedRequests returns the requests no entry answered, in issue
// order. Passthrough requests are never part of it.
func (e *Engine) UnexpectedRequests() []*mock.Request {
	records := e.requests.Unmatched()
	out := make([]*mock.Request, len(records))
	for i, rec := range records {
		out[i] = rec.Request
	}
	return out
}

// Verify runs the teardown assertions. Both checks run independently; the
// result joins a *mock.UnrequestedResponsesError and a
// *mock.UnexpectedRequestsError as applicable.
func (e *Engine) Verify() error {
	var errs []error

	if unrequested := e.UnrequestedEntries(); len(unrequested) > 0 {
		descriptions := make([]string, len(unrequested))
		for i, entry := range unrequested {
			descriptions[i] = matching.Describe(entry.Matcher, false)
		}
		errs = append(errs, &mock.UnrequestedResponsesError{Descriptions: descriptions})
	}

	e.mu.Lock()
	assertExpected := e.opts.AssertAllRequestsWereExpected
	snapshot := e.registry.Snapshot()
	e.mu.Unlock()

	if assertExpected {
		if unexpected := e.UnexpectedRequests(); len(unexpected) > 0 {
			matchers := make([]*mock.Matcher, len(snapshot))
			registered := make([]string, len(snapshot))
			for i := range snapshot {
				matchers[i] = snapshot[i].Matcher
				registered[i] = matching.Describe(snapshot[i].Matcher, snapshot[i].UsedCount() > 0)
			}
			descriptions := make([]string, len(unexpected))
			for i, req := range unexpected {
				descriptions[i] = matching.DescribeRequest(req, matchers)
			}
			errs = append(errs, &mock.UnexpectedRequestsError{
				Descriptions: descriptions,
				Entries:      snapshot,
				Registered:   registered,
			})
		}
	}

	if len(errs) > 0 {
		e.log.Debug("verification failed", "violations", len(errs))
	}
	return errors.Join(errs...)
}
