package requestlog

import (
	"time"

	"github.com/getmockd/httpmock/pkg/mock"
)

// Record is one intercepted request.
type Record struct {
	// ID uniquely identifies the record.
	ID string `json:"id"`

	// Sequence is the issue order within the session, starting at 0.
	// It is unrelated to entry registration indexes.
	Sequence int `json:"sequence"`

	Timestamp time.Time     `json:"timestamp"`
	Request   *mock.Request `json:"-"`

	// Matched is set once a registered entry was selected for the request.
	Matched bool `json:"matched"`

	// MatchedEntryID is the ID of the selected entry.
	MatchedEntryID string `json:"matchedEntryId,omitempty"`

	// Error describes why nothing answered the request.
	Error string `json:"error,omitempty"`
}

// Summary renders "METHOD URL" for diagnostics.
func (r *Record) Summary() string {
	if r.Request == nil {
		return ""
	}
	return r.Request.String()
}
