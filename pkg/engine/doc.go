// Package engine resolves intercepted requests against registered entries.
//
// An Engine is one mock session: it owns an ordered Registry of entries, a
// request log and the session options. Handle filters a request through the
// passthrough rules, records it, selects the entry that answers it and
// produces the outcome:
//
//	eng, err := engine.New(config.DefaultOptions())
//	if err != nil {
//		return err
//	}
//	resp := mock.NewResponse(mock.WithJSON(map[string]any{"ok": true}))
//	if _, err := eng.AddResponse(resp, mock.MatchURL("https://api.example.org/ping")); err != nil {
//		return err
//	}
//	out := eng.Handle(ctx, req)
//
// Selection is first-unused-wins in registration order. Once every matching
// entry was used, the newest one answers again only when it is reusable or
// the session allows already matched responses. Verify reports, at the end
// of a test, the entries nobody requested and the requests nobody expected.
//
// The engine performs no I/O. Transports such as pkg/testing adapt it to
// http.Client.
package engine
