package matching

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getmockd/httpmock/pkg/mock"
)

// FieldResult describes whether a single matcher field matched the request.
type FieldResult struct {
	Field    string `json:"field"`
	Matched  bool   `json:"matched"`
	Score    int    `json:"score"`
	MaxScore int    `json:"maxScore"`
	Expected any    `json:"expected,omitempty"`
	Actual   any    `json:"actual,omitempty"`
	Details  any    `json:"details,omitempty"`
}

// HeaderDetail describes the match result for a single header.
type HeaderDetail struct {
	Key      string `json:"key"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Matched  bool   `json:"matched"`
}

// NearMiss is an entry whose matcher partially matched a request.
type NearMiss struct {
	EntryID          string        `json:"entryId"`
	EntryIndex       int           `json:"entryIndex"`
	Score            int           `json:"score"`
	MaxPossibleScore int           `json:"maxPossibleScore"`
	MatchPercentage  int           `json:"matchPercentage"`
	Fields           []FieldResult `json:"fields"`
	Reason           string        `json:"reason"`
}

// Breakdown evaluates every field of the matcher against the request
// without short-circuiting. Only fields the matcher sets are included.
func Breakdown(m *mock.Matcher, r *mock.Request) *NearMiss {
	result := &NearMiss{}
	if m == nil {
		result.Reason = GenerateReason(nil)
		return result
	}
	result.Fields = evaluate(m, r, true)
	for _, f := range result.Fields {
		result.Score += f.Score
		result.MaxPossibleScore += f.MaxScore
	}
	if result.MaxPossibleScore > 0 {
		result.MatchPercentage = (result.Score * 100) / result.MaxPossibleScore
	}
	result.Reason = GenerateReason(result.Fields)
	return result
}

// CollectNearMisses evaluates all entries against the request and returns
// the top N by partial match score. Entries with no matched field are
// skipped. Only called for requests nobody answered.
func CollectNearMisses(entries []*mock.Entry, r *mock.Request, topN int) []NearMiss {
	if topN <= 0 {
		topN = 3
	}

	var candidates []NearMiss
	for _, e := range entries {
		if e == nil {
			continue
		}
		nm := Breakdown(e.Matcher, r)
		if nm.Score == 0 {
			continue
		}
		nm.EntryID = e.ID
		nm.EntryIndex = e.Index
		candidates = append(candidates, *nm)
	}

	// Score descending, then percentage descending, then oldest entry first.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if candidates[i].MatchPercentage != candidates[j].MatchPercentage {
			return candidates[i].MatchPercentage > candidates[j].MatchPercentage
		}
		return candidates[i].EntryIndex < candidates[j].EntryIndex
	})

	if len(candidates) > topN {
		candidates = candidates[:topN]
	}
	return candidates
}

// GenerateReason creates a human-readable explanation of why a matcher
// partially matched but ultimately failed.
func GenerateReason(fields []FieldResult) string {
	if len(fields) == 0 {
		return "no fields to compare"
	}

	var matched []string
	var firstMismatch *FieldResult
	for i := range fields {
		if fields[i].Matched {
			matched = append(matched, fields[i].Field)
		} else if firstMismatch == nil {
			firstMismatch = &fields[i]
		}
	}

	if firstMismatch == nil {
		return "all specified fields matched"
	}
	if len(matched) == 0 {
		return formatMismatch(firstMismatch)
	}
	return joinFields(matched) + " matched, but " + formatMismatch(firstMismatch)
}

// formatMismatch formats a single field mismatch into a human-readable string.
func formatMismatch(f *FieldResult) string {
	switch f.Field {
	case "method":
		return fmt.Sprintf("method expected %q, got %q", f.Expected, f.Actual)
	case "url":
		return fmt.Sprintf("url expected %q, got %q", f.Expected, f.Actual)
	case "proxyUrl":
		return fmt.Sprintf("proxy url expected %q, got %q", f.Expected, f.Actual)
	case "headers":
		if details, ok := f.Details.([]HeaderDetail); ok {
			for _, d := range details {
				if !d.Matched {
					return fmt.Sprintf("header %s expected %q, got %q", d.Key, d.Expected, d.Actual)
				}
			}
		}
		return "header mismatch"
	case "extensions":
		return fmt.Sprintf("extensions expected %v, got %v", f.Expected, f.Actual)
	case "content":
		return fmt.Sprintf("body expected exact match %q", f.Expected)
	case "json":
		return fmt.Sprintf("json body expected %s", renderJSON(f.Expected))
	case "multipart":
		return "multipart body did not match"
	case "jsonPath":
		if failed, ok := f.Details.([]string); ok && len(failed) > 0 {
			return fmt.Sprintf("body JSONPath condition %s not satisfied", failed[0])
		}
		return "body JSONPath condition not satisfied"
	default:
		return f.Field + " did not match"
	}
}

// joinFields joins field names with commas and "and".
func joinFields(fields []string) string {
	switch len(fields) {
	case 0:
		return ""
	case 1:
		return fields[0]
	case 2:
		return fields[0] + " and " + fields[1]
	default:
		return strings.Join(fields[:len(fields)-1], ", ") + ", and " + fields[len(fields)-1]
	}
}

// truncate shortens a string to maxLen, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
