// Package mock defines the data model shared by every httpmock component:
// the registered Entry (a Matcher plus a response template, callback or
// error), the plain Request value the engine matches against, the Response
// template it materializes, and the two-case Outcome handed back to the
// transport.
//
// # Entries
//
// An Entry is built from a payload and a list of options. Matcher options
// narrow the requests the entry answers; every criterion left unset is a
// wildcard:
//
//	entry, err := mock.NewResponseEntry(
//	    mock.NewResponse(mock.WithStatus(201), mock.WithJSON(map[string]any{"id": 1})),
//	    mock.MatchMethod("POST"),
//	    mock.MatchURL("https://api.example.com/items?page=1"),
//	    mock.MatchJSON(map[string]any{"name": "widget", "tags": mock.Any}),
//	    mock.Reusable(),
//	)
//
// At most one body criterion (content, JSON or multipart) may be set on an
// entry. Violations are reported by NewResponseEntry and friends with
// ErrInvalidMatcherCombination and the entry is never registered.
//
// # Outcomes
//
// Entry.Produce turns a selected entry into an Outcome. Response entries
// always yield a fresh clone of their template, so bodies can be replayed
// independently across repeated matches.
package mock
