package engine

import (
	"fmt"
	"strings"

	"github.com/getmockd/httpmock/internal/matching"
	"github.com/getmockd/httpmock/pkg/mock"
)

// selector picks the entry answering a request. Callers must hold the
// engine mutex for the whole claim so that two concurrent requests never
// claim the same unused entry.
type selector struct {
	registry              *Registry
	canSendAlreadyMatched bool
}

// claim selects and marks the entry answering req.
func (s *selector) claim(req *mock.Request) (*mock.Entry, error) {
	var candidates []*mock.Entry
	for _, e := range s.registry.entries {
		if matching.Match(e.Matcher, req) {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return nil, s.noMatch(req)
	}

	for _, c := range candidates {
		if c.UsedCount() == 0 {
			c.MarkUsed()
			return c, nil
		}
	}

	newest := candidates[len(candidates)-1]
	if newest.Reusable || s.canSendAlreadyMatched {
		newest.MarkUsed()
		return newest, nil
	}
	return nil, s.noMatch(req)
}

func (s *selector) noMatch(req *mock.Request) *mock.NoMatchError {
	return &mock.NoMatchError{
		Request: req.Clone(),
		Entries: s.registry.Snapshot(),
		Message: explainNoMatch(req, s.registry.entries),
	}
}

// explainNoMatch renders the request, every registered entry and the
// closest partial match.
func explainNoMatch(req *mock.Request, entries []*mock.Entry) string {
	matchers := make([]*mock.Matcher, len(entries))
	for i, e := range entries {
		matchers[i] = e.Matcher
	}

	var b strings.Builder
	b.WriteString("No response can be found for ")
	b.WriteString(matching.DescribeRequest(req, matchers))
	if len(entries) == 0 {
		return b.String()
	}
	b.WriteString(" amongst:")
	for _, e := range entries {
		b.WriteString("\n- ")
		b.WriteString(matching.Describe(e.Matcher, e.UsedCount() > 0))
	}

	// Entries that fully match were already used and are described above.
	for _, nm := range matching.CollectNearMisses(entries, req, len(entries)) {
		if nm.Score < nm.MaxPossibleScore {
			fmt.Fprintf(&b, "\n\nClosest entry #%d (%d%% match): %s", nm.EntryIndex, nm.MatchPercentage, nm.Reason)
			break
		}
	}
	return b.String()
}
