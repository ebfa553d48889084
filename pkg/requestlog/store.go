package requestlog

import "github.com/getmockd/httpmock/pkg/mock"

// Predicate selects records in Query and GetOne. A nil predicate selects
// every record.
type Predicate func(*Record) bool

// Store defines the interface for request history storage.
type Store interface {
	// Record appends a new unmatched record for req with the next
	// sequence number.
	Record(req *mock.Request) *Record

	// MarkMatched flags rec as answered by the entry with entryID.
	MarkMatched(rec *Record, entryID string)

	// MarkUnmatched flags rec as not answered, keeping err's message.
	MarkUnmatched(rec *Record, err error)

	// Query returns the records selected by pred, in issue order.
	Query(pred Predicate) []*Record

	// GetOne returns the single record selected by pred, nil when none is,
	// or a *mock.AmbiguousRequestError when several are.
	GetOne(pred Predicate) (*Record, error)

	// Unmatched returns the records nothing answered, in issue order.
	Unmatched() []*Record

	// Clear removes all records and restarts sequence numbering.
	Clear()

	// Count returns the number of records.
	Count() int
}
