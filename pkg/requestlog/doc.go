// Package requestlog records every intercepted request of a mock session,
// in the order the requests were issued, for later inspection by the test
// and for the end-of-test assertions.
//
// It is distinct from operational logging (which uses log/slog): a Record
// is data the test asserts on, not a diagnostic message.
//
// # Core Types
//
// Record is one intercepted request together with its sequence number and
// whether a registered entry answered it. Store is the ordered, append-only
// collection of records; MemoryStore implements it in memory and is safe
// for concurrent use.
//
// # Usage
//
//	store := requestlog.NewMemoryStore()
//	rec := store.Record(req)
//	store.MarkMatched(rec, entry.ID)
//
//	posts := store.Query(func(r *requestlog.Record) bool {
//	    return r.Request.Method == http.MethodPost
//	})
//
// Records are never removed individually; Clear empties the store when the
// owning session is reset.
package requestlog
