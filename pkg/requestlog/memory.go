package requestlog

import (
	"sync"
	"time"

	"github.com/getmockd/httpmock/pkg/mock"
	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store. Records are kept for the whole
// session; there is no eviction.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*Record
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// Record appends a new record for req.
func (s *MemoryStore) Record(req *mock.Request) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := &Record{
		ID:        uuid.NewString(),
		Sequence:  len(s.records),
		Timestamp: s.now(),
		Request:   req,
	}
	s.records = append(s.records, rec)
	return rec
}

// MarkMatched flags rec as answered.
func (s *MemoryStore) MarkMatched(rec *Record, entryID string) {
	if rec == nil {
		return
	}
	s.mu.Lock()
	rec.Matched = true
	rec.MatchedEntryID = entryID
	rec.Error = ""
	s.mu.Unlock()
}

// MarkUnmatched flags rec as not answered.
func (s *MemoryStore) MarkUnmatched(rec *Record, err error) {
	if rec == nil {
		return
	}
	s.mu.Lock()
	rec.Matched = false
	rec.MatchedEntryID = ""
	if err != nil {
		rec.Error = err.Error()
	}
	s.mu.Unlock()
}

// Query returns the selected records in issue order.
func (s *MemoryStore) Query(pred Predicate) []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Record, 0, len(s.records))
	for _, rec := range s.records {
		if pred == nil || pred(rec) {
			result = append(result, rec)
		}
	}
	return result
}

// GetOne returns the single selected record.
func (s *MemoryStore) GetOne(pred Predicate) (*Record, error) {
	found := s.Query(pred)
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return found[0], nil
	default:
		return nil, &mock.AmbiguousRequestError{Count: len(found)}
	}
}

// Unmatched returns the records nothing answered.
func (s *MemoryStore) Unmatched() []*Record {
	return s.Query(func(r *Record) bool { return !r.Matched })
}

// Clear removes all records.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	s.records = nil
	s.mu.Unlock()
}

// Count returns the number of records.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
