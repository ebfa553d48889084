// Package testing intercepts the HTTP requests of code under test.
//
// A Mock is created per test. Its Client (or Transport) answers requests
// from registered entries instead of the network, and the test fails at
// cleanup when a registered response was never requested or a request was
// not expected.
//
// # Basic Usage
//
//	import httpmock "github.com/getmockd/httpmock/pkg/testing"
//
//	func TestFetchUser(t *testing.T) {
//	    m := httpmock.New(t)
//	    m.AddResponse(
//	        mock.NewResponse(mock.WithJSON(map[string]any{"id": 1, "name": "Ada"})),
//	        mock.MatchURL("https://api.example.org/users/1"),
//	    )
//
//	    user, err := NewAPI(m.Client()).FetchUser(1)
//	    // ...
//	}
//
// # Selection
//
// Entries answer in registration order: the oldest entry whose criteria
// hold and that was not used yet is selected. When every matching entry was
// used, the newest one answers again only if it is mock.Reusable() or the
// session was created with config.WithCanSendAlreadyMatchedResponses(true).
// Otherwise the client receives a *mock.NoMatchError describing the request
// and every registered entry.
//
// # Criteria
//
// Criteria are mock.Match* options. Unset criteria match anything:
//
//	m.AddResponse(nil,
//	    mock.MatchMethod("POST"),
//	    mock.MatchURL("https://api.example.org/items?draft=true"),
//	    mock.MatchHeaders(map[string]string{"Authorization": "Bearer token"}),
//	    mock.MatchJSON(map[string]any{"name": "widget", "id": mock.Any}),
//	)
//
// Header names are compared as sent. Go canonicalizes names set with
// Header.Set, so match "Content-Type" rather than "content-type".
//
// # Fluent Builder API
//
//	m.Expect("GET", "https://api.example.org/users/1").
//	    WithRequestHeader("Authorization", "Bearer token").
//	    RespondJSON(map[string]any{"id": 1})
//
// # Errors and Callbacks
//
//	m.AddException(errors.New("connection reset"), mock.MatchURL("https://api.example.org/flaky"))
//	m.AddCallback(func(ctx context.Context, req *mock.Request) (*mock.Response, error) {
//	    return mock.NewResponse(mock.WithText(req.URL.Query().Get("q"))), nil
//	})
//
// # Inspecting Requests
//
//	req := m.GetRequest(mock.MatchMethod("POST"))
//	httpmock.AssertJSONBody(t, req, `{"name": "widget"}`)
//	m.AssertCalledTimes(t, 2, mock.MatchURL("https://api.example.org/items"))
//
// # Optional Responses
//
// Entries registered with mock.Optional(true) may go unrequested. Creating
// the session with config.WithAssertAllResponsesWereRequested(false) makes
// every entry optional unless it says mock.Optional(false).
//
// # Allow Unexpected Requests
//
// config.WithAssertAllRequestsWereExpected(false) stops teardown from
// failing for requests nothing answered. The client still gets the error.
//
// # Passthrough
//
// config.WithPassthroughHosts, config.WithMockedHosts, config.WithShouldMock
// and config.WithShouldMockExpr select requests that go to the real
// network through the base transport (see WrapTransport).
//
// # Fixtures
//
// LoadFixtures registers entries described in YAML files, which
// `httpmock validate` checks from the command line.
package testing
