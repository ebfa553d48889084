package engine

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/getmockd/httpmock/pkg/config"
	"github.com/getmockd/httpmock/pkg/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, opts ...config.Option) *Engine {
	t.Helper()
	e, err := New(config.DefaultOptions().Apply(opts...))
	require.NoError(t, err)
	return e
}

func newRequest(t *testing.T, method, rawURL string, body []byte) *mock.Request {
	t.Helper()
	req, err := mock.NewRequest(method, rawURL, body)
	require.NoError(t, err)
	return req
}

func text(s string) *mock.Response {
	return mock.NewResponse(mock.WithText(s))
}

func handleText(t *testing.T, e *Engine, req *mock.Request) string {
	t.Helper()
	out := e.Handle(context.Background(), req)
	require.NoError(t, out.Err)
	require.NotNil(t, out.Response)
	return string(out.Response.Content())
}

func TestEngine_RegistrationOrder(t *testing.T) {
	e := newEngine(t)
	for i := range 3 {
		_, err := e.AddResponse(text(fmt.Sprintf("response %d", i)), mock.MatchURL("https://example.org/a"))
		require.NoError(t, err)
	}

	for i := range 3 {
		got := handleText(t, e, newRequest(t, "GET", "https://example.org/a", nil))
		assert.Equal(t, fmt.Sprintf("response %d", i), got)
	}
	require.NoError(t, e.Verify())
}

func TestEngine_IndexesAreMonotonic(t *testing.T) {
	e := newEngine(t)
	a, err := e.AddResponse(nil)
	require.NoError(t, err)
	b, err := e.AddError(errors.New("boom"))
	require.NoError(t, err)

	assert.Equal(t, 0, a.Index)
	assert.Equal(t, 1, b.Index)
	assert.Len(t, e.Entries(), 2)
}

func TestEngine_InvalidCombinationIsNotRegistered(t *testing.T) {
	e := newEngine(t, config.WithAssertAllRequestsWereExpected(false))

	entry, err := e.AddResponse(nil, mock.MatchContent([]byte("a")), mock.MatchJSON(map[string]any{"a": 1}))
	require.ErrorIs(t, err, mock.ErrInvalidMatcherCombination)
	assert.Nil(t, entry)
	assert.Empty(t, e.Entries())

	out := e.Handle(context.Background(), newRequest(t, "POST", "https://example.org", []byte("a")))
	assert.ErrorIs(t, out.Err, mock.ErrNoMatch)
}

func TestEngine_ExcessRequestFails(t *testing.T) {
	e := newEngine(t, config.WithAssertAllRequestsWereExpected(false))
	_, err := e.AddResponse(text("only"))
	require.NoError(t, err)

	assert.Equal(t, "only", handleText(t, e, newRequest(t, "GET", "https://example.org", nil)))

	out := e.Handle(context.Background(), newRequest(t, "GET", "https://example.org", nil))
	var nm *mock.NoMatchError
	require.ErrorAs(t, out.Err, &nm)
	assert.Equal(t, "No response can be found for GET request on https://example.org amongst:\n- Already matched any request", nm.Error())
	assert.Equal(t, "GET", nm.Request.Method)
	require.Len(t, nm.Entries, 1)
	assert.Equal(t, 0, nm.Entries[0].Index)
	assert.Equal(t, 1, nm.Entries[0].UsedCount())
	assert.Equal(t, "only", string(nm.Entries[0].Response.Content()))
}

func TestEngine_CanSendAlreadyMatchedResponses(t *testing.T) {
	e := newEngine(t, config.WithCanSendAlreadyMatchedResponses(true))
	_, err := e.AddResponse(text("first"))
	require.NoError(t, err)
	_, err = e.AddResponse(text("second"))
	require.NoError(t, err)
	_, err = e.AddResponse(text("other"), mock.MatchMethod("POST"), mock.Optional(true))
	require.NoError(t, err)

	req := func() *mock.Request { return newRequest(t, "GET", "https://example.org", nil) }
	assert.Equal(t, "first", handleText(t, e, req()))
	assert.Equal(t, "second", handleText(t, e, req()))
	assert.Equal(t, "second", handleText(t, e, req()), "newest matching entry answers again")
	require.NoError(t, e.Verify())
}

func TestEngine_Reusable(t *testing.T) {
	e := newEngine(t)
	_, err := e.AddResponse(text("once"))
	require.NoError(t, err)
	reusable, err := e.AddResponse(text("again"), mock.Reusable())
	require.NoError(t, err)

	req := func() *mock.Request { return newRequest(t, "GET", "https://example.org", nil) }
	assert.Equal(t, "once", handleText(t, e, req()))
	assert.Equal(t, "again", handleText(t, e, req()))
	assert.Equal(t, "again", handleText(t, e, req()))
	assert.Equal(t, 2, reusable.UsedCount())
}

func TestEngine_ReusableOnlyCountsWhenNewest(t *testing.T) {
	e := newEngine(t, config.WithAssertAllRequestsWereExpected(false))
	_, err := e.AddResponse(text("reusable"), mock.Reusable())
	require.NoError(t, err)
	_, err = e.AddResponse(text("plain"))
	require.NoError(t, err)

	req := func() *mock.Request { return newRequest(t, "GET", "https://example.org", nil) }
	assert.Equal(t, "reusable", handleText(t, e, req()))
	assert.Equal(t, "plain", handleText(t, e, req()))

	out := e.Handle(context.Background(), req())
	assert.ErrorIs(t, out.Err, mock.ErrNoMatch)
}

func TestEngine_GetRequest(t *testing.T) {
	e := newEngine(t, config.WithAssertAllResponsesWereRequested(false))
	_, err := e.AddResponse(nil, mock.Reusable())
	require.NoError(t, err)

	none, err := e.GetRequest()
	require.NoError(t, err)
	assert.Nil(t, none)

	e.Handle(context.Background(), newRequest(t, "GET", "https://example.org/one", nil))
	got, err := e.GetRequest()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "https://example.org/one", got.URL.String())

	e.Handle(context.Background(), newRequest(t, "POST", "https://example.org/two", []byte(`{"a":1}`)))
	_, err = e.GetRequest()
	var ambiguous *mock.AmbiguousRequestError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, 2, ambiguous.Count)

	post, err := e.GetRequest(mock.MatchMethod("post"))
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Equal(t, "POST", post.Method)

	assert.Len(t, e.GetRequests(), 2)
	assert.Len(t, e.GetRequests(mock.MatchJSON(map[string]any{"a": mock.Any})), 1)
	assert.Empty(t, e.GetRequests(mock.MatchURL("https://example.org/three")))
}

func TestEngine_RecordedRequestIsACopy(t *testing.T) {
	e := newEngine(t)
	_, err := e.AddResponse(nil)
	require.NoError(t, err)

	req := newRequest(t, "GET", "https://example.org", nil)
	req.Header.Set("X-Id", "1")
	e.Handle(context.Background(), req)
	req.Header.Set("X-Id", "2")

	got, err := e.GetRequest()
	require.NoError(t, err)
	assert.Equal(t, "1", got.Header.Get("X-Id"))
}

func TestEngine_ResetThenHandleFails(t *testing.T) {
	e := newEngine(t, config.WithAssertAllRequestsWereExpected(false))
	_, err := e.AddResponse(text("gone"), mock.Reusable())
	require.NoError(t, err)
	e.Handle(context.Background(), newRequest(t, "GET", "https://example.org", nil))

	e.Reset()
	assert.Empty(t, e.Entries())
	assert.Empty(t, e.GetRequests())

	out := e.Handle(context.Background(), newRequest(t, "GET", "https://example.org", nil))
	var nm *mock.NoMatchError
	require.ErrorAs(t, out.Err, &nm)
	assert.Equal(t, "No response can be found for GET request on https://example.org", nm.Error())
}

func TestEngine_ResetRestoresOptions(t *testing.T) {
	e := newEngine(t)
	require.NoError(t, e.Configure(config.WithCanSendAlreadyMatchedResponses(true)))
	assert.True(t, e.Options().CanSendAlreadyMatchedResponses)

	e.Reset()
	assert.False(t, e.Options().CanSendAlreadyMatchedResponses)
	assert.NoError(t, e.Verify(), "reset leaves nothing to verify")
}

func TestEngine_ConfigureRejectsInvalidOptions(t *testing.T) {
	e := newEngine(t)
	require.Error(t, e.Configure(config.WithShouldMockExpr("method ==")))
	assert.Empty(t, e.Options().ShouldMockExpr, "failed configuration keeps the previous options")
}

func TestEngine_UnrequestedResponses(t *testing.T) {
	e := newEngine(t)
	_, err := e.AddResponse(nil, mock.MatchURL("https://example.org/used"))
	require.NoError(t, err)
	_, err = e.AddResponse(nil, mock.MatchMethod("PUT"), mock.MatchURL("https://example.org/unused"))
	require.NoError(t, err)
	_, err = e.AddResponse(nil, mock.MatchURL("https://example.org/optional"), mock.Optional(true))
	require.NoError(t, err)

	e.Handle(context.Background(), newRequest(t, "GET", "https://example.org/used", nil))

	err = e.Verify()
	var unrequested *mock.UnrequestedResponsesError
	require.ErrorAs(t, err, &unrequested)
	assert.Equal(t, []string{"Match PUT request on https://example.org/unused"}, unrequested.Descriptions)
	assert.ErrorIs(t, err, mock.ErrUnrequestedResponses)
	assert.NotErrorIs(t, err, mock.ErrUnexpectedRequests)
}

func TestEngine_OptionalDefaultsFollowSession(t *testing.T) {
	tests := []struct {
		name        string
		assertAll   bool
		opts        []mock.EntryOption
		wantFailure bool
	}{
		{"asserting session, default entry", true, nil, true},
		{"asserting session, optional entry", true, []mock.EntryOption{mock.Optional(true)}, false},
		{"lenient session, default entry", false, nil, false},
		{"lenient session, explicitly mandatory entry", false, []mock.EntryOption{mock.Optional(false)}, true},
		{"lenient session, reusable mandatory entry", false, []mock.EntryOption{mock.Optional(false), mock.Reusable()}, true},
		{"asserting session, reusable optional entry", true, []mock.EntryOption{mock.Optional(true), mock.Reusable()}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, config.WithAssertAllResponsesWereRequested(tt.assertAll))
			_, err := e.AddResponse(nil, tt.opts...)
			require.NoError(t, err)

			err = e.Verify()
			if tt.wantFailure {
				assert.ErrorIs(t, err, mock.ErrUnrequestedResponses)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEngine_UnexpectedRequests(t *testing.T) {
	e := newEngine(t)
	_, err := e.AddResponse(nil, mock.MatchURL("https://example.org/a"), mock.MatchHeaders(map[string]string{"X-Id": "1"}))
	require.NoError(t, err)

	req := newRequest(t, "GET", "https://example.org/b", nil)
	req.Header["X-Id"] = []string{"2"}
	out := e.Handle(context.Background(), req)
	require.ErrorIs(t, out.Err, mock.ErrNoMatch)

	err = e.Verify()
	var unexpected *mock.UnexpectedRequestsError
	require.ErrorAs(t, err, &unexpected)
	assert.Equal(t, []string{`GET request on https://example.org/b with {"X-Id": "2"} headers`}, unexpected.Descriptions)
	require.Len(t, unexpected.Entries, 1)
	assert.Equal(t, "https://example.org/a", unexpected.Entries[0].Matcher.URL)
	assert.Equal(t, 0, unexpected.Entries[0].UsedCount())
	assert.Equal(t, []string{`Match any request on https://example.org/a with {"X-Id": "1"} headers`}, unexpected.Registered)
	assert.Contains(t, unexpected.Error(), "Registered responses:\n  - Match any request on https://example.org/a")

	// Both checks are reported together.
	assert.ErrorIs(t, err, mock.ErrUnrequestedResponses)
	assert.ErrorIs(t, err, mock.ErrUnexpectedRequests)
}

func TestEngine_UnexpectedRequestsCanBeAllowed(t *testing.T) {
	e := newEngine(t, config.WithAssertAllRequestsWereExpected(false))
	out := e.Handle(context.Background(), newRequest(t, "GET", "https://example.org", nil))
	require.ErrorIs(t, out.Err, mock.ErrNoMatch)
	assert.NoError(t, e.Verify())
	assert.Len(t, e.UnexpectedRequests(), 1)
}

func TestEngine_QueryOrderIsIrrelevantAcrossKeys(t *testing.T) {
	e := newEngine(t, config.WithAssertAllRequestsWereExpected(false), config.WithAssertAllResponsesWereRequested(false))
	_, err := e.AddResponse(text("ab"), mock.MatchURL("https://example.org?a=1&b=2"))
	require.NoError(t, err)
	_, err = e.AddResponse(text("aa"), mock.MatchURL("https://example.org?a=1&a=2"))
	require.NoError(t, err)

	assert.Equal(t, "ab", handleText(t, e, newRequest(t, "GET", "https://example.org?b=2&a=1", nil)))

	out := e.Handle(context.Background(), newRequest(t, "GET", "https://example.org?a=2&a=1", nil))
	var nm *mock.NoMatchError
	require.ErrorAs(t, out.Err, &nm)
	assert.Contains(t, nm.Error(), "No response can be found for GET request on https://example.org?a=2&a=1 amongst:\n"+
		"- Already matched any request on https://example.org?a=1&b=2\n"+
		"- Match any request on https://example.org?a=1&a=2")
}

func TestEngine_NoMatchIncludesClosestEntry(t *testing.T) {
	e := newEngine(t, config.WithAssertAllRequestsWereExpected(false), config.WithAssertAllResponsesWereRequested(false))
	_, err := e.AddResponse(nil, mock.MatchMethod("POST"), mock.MatchURL("https://example.org/items"))
	require.NoError(t, err)

	out := e.Handle(context.Background(), newRequest(t, "GET", "https://example.org/items", nil))
	require.Error(t, out.Err)
	assert.Contains(t, out.Err.Error(), "Closest entry #0")
	assert.Contains(t, out.Err.Error(), `method expected "POST", got "GET"`)
}

func TestEngine_CallbackAndErrorEntries(t *testing.T) {
	e := newEngine(t)
	boom := errors.New("connection reset")

	_, err := e.AddCallback(func(_ context.Context, req *mock.Request) (*mock.Response, error) {
		return mock.NewResponse(mock.WithText("echo " + req.URL.Path)), nil
	}, mock.MatchURL("https://example.org/echo"))
	require.NoError(t, err)
	_, err = e.AddError(boom, mock.MatchURL("https://example.org/fail"))
	require.NoError(t, err)

	assert.Equal(t, "echo /echo", handleText(t, e, newRequest(t, "GET", "https://example.org/echo", nil)))

	out := e.Handle(context.Background(), newRequest(t, "GET", "https://example.org/fail", nil))
	assert.Same(t, boom, out.Err)
	assert.True(t, out.Failed())
	require.NoError(t, e.Verify(), "error outcomes still count as expected requests")
	assert.Len(t, e.GetRequests(), 2)
}

func TestEngine_FailingCallbackRequestIsRecorded(t *testing.T) {
	e := newEngine(t)
	boom := errors.New("callback failed")
	_, err := e.AddCallback(func(context.Context, *mock.Request) (*mock.Response, error) {
		return nil, boom
	}, mock.MatchURL("https://example.org/cb"))
	require.NoError(t, err)

	out := e.Handle(context.Background(), newRequest(t, "POST", "https://example.org/cb", []byte("payload")))
	assert.Same(t, boom, out.Err)

	requests := e.GetRequests()
	require.Len(t, requests, 1)
	assert.Equal(t, "POST", requests[0].Method)
	assert.Equal(t, []byte("payload"), requests[0].Body)
	assert.Empty(t, e.UnexpectedRequests())
	assert.NoError(t, e.Verify())
}

func TestEngine_CallbackRunsOutsideTheLock(t *testing.T) {
	e := newEngine(t)
	_, err := e.AddCallback(func(ctx context.Context, _ *mock.Request) (*mock.Response, error) {
		// Re-entering the engine would deadlock if the lock were held.
		_, err := e.AddResponse(text("registered from callback"))
		if err != nil {
			return nil, err
		}
		return text("outer"), nil
	})
	require.NoError(t, err)

	assert.Equal(t, "outer", handleText(t, e, newRequest(t, "GET", "https://example.org", nil)))
	assert.Equal(t, "registered from callback", handleText(t, e, newRequest(t, "GET", "https://example.org", nil)))
}

func TestEngine_ResponsesAreFreshCopies(t *testing.T) {
	e := newEngine(t)
	_, err := e.AddResponse(text("template"), mock.Reusable())
	require.NoError(t, err)

	first := e.Handle(context.Background(), newRequest(t, "GET", "https://example.org", nil))
	require.NoError(t, first.Err)
	first.Response.Body[0] = 'X'
	first.Response.Header.Set("X-Mutated", "yes")

	second := e.Handle(context.Background(), newRequest(t, "GET", "https://example.org", nil))
	require.NoError(t, second.Err)
	assert.Equal(t, "template", string(second.Response.Content()))
	assert.Empty(t, second.Response.Header.Get("X-Mutated"))
}

func TestEngine_Passthrough(t *testing.T) {
	e := newEngine(t,
		config.WithPassthroughHosts("*.internal"),
		config.WithShouldMock(func(r *mock.Request) bool { return r.URL.Path != "/health" }),
	)

	out := e.Handle(context.Background(), newRequest(t, "GET", "http://db.internal/query", nil))
	assert.True(t, out.Passthrough)
	assert.NoError(t, out.Err)

	out = e.Handle(context.Background(), newRequest(t, "GET", "https://example.org/health", nil))
	assert.True(t, out.Passthrough)

	assert.Empty(t, e.GetRequests(), "passthrough requests are not recorded")
	assert.NoError(t, e.Verify())
}

func TestEngine_HandleNilRequest(t *testing.T) {
	e := newEngine(t)
	out := e.Handle(context.Background(), nil)
	assert.Error(t, out.Err)
}

func TestEngine_HandleAsync(t *testing.T) {
	e := newEngine(t)
	_, err := e.AddResponse(text("async"))
	require.NoError(t, err)

	out := <-e.HandleAsync(context.Background(), newRequest(t, "GET", "https://example.org", nil))
	require.NoError(t, out.Err)
	assert.Equal(t, "async", string(out.Response.Content()))
}

func TestEngine_HandleAsyncHonoursCancellation(t *testing.T) {
	e := newEngine(t)
	release := make(chan struct{})
	started := make(chan struct{})
	_, err := e.AddCallback(func(context.Context, *mock.Request) (*mock.Response, error) {
		close(started)
		<-release
		return text("late"), nil
	})
	require.NoError(t, err)
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	ch := e.HandleAsync(ctx, newRequest(t, "GET", "https://example.org", nil))
	<-started
	cancel()

	select {
	case out := <-ch:
		assert.ErrorIs(t, out.Err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("HandleAsync did not honour cancellation")
	}

	// The abandoned request stays recorded and its entry stays claimed.
	requests := e.GetRequests()
	require.Len(t, requests, 1)
	assert.Equal(t, "https://example.org", requests[0].URL.String())
	assert.Empty(t, e.UnexpectedRequests())
	assert.Empty(t, e.UnrequestedEntries())
}

func TestEngine_ConcurrentRequestsClaimDistinctEntries(t *testing.T) {
	const n = 50
	e := newEngine(t)
	for i := range n {
		_, err := e.AddResponse(text(fmt.Sprintf("%d", i)), mock.MatchURLPattern(regexp.MustCompile(`https://example\.org/.*`)))
		require.NoError(t, err)
	}

	reqs := make([]*mock.Request, n)
	for i := range reqs {
		reqs[i] = newRequest(t, "GET", fmt.Sprintf("https://example.org/%d", i), nil)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = map[string]int{}
	)
	for _, req := range reqs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := e.Handle(context.Background(), req)
			if out.Err != nil {
				return
			}
			mu.Lock()
			seen[string(out.Response.Content())]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n, "every entry answered exactly once")
	for body, count := range seen {
		assert.Equal(t, 1, count, body)
	}
	assert.NoError(t, e.Verify())
}

func TestEngine_AddFixtures(t *testing.T) {
	fixtures, err := config.ParseFixtures([]byte(`
- match: {url: 'https://example.org/a'}
  response: {text: a}
- match: {url: 'https://example.org/b'}
  error: refused
`), "inline.yaml")
	require.NoError(t, err)

	e := newEngine(t)
	entries, err := e.AddFixtures(fixtures)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[1].Index)

	assert.Equal(t, "a", handleText(t, e, newRequest(t, "GET", "https://example.org/a", nil)))
	out := e.Handle(context.Background(), newRequest(t, "GET", "https://example.org/b", nil))
	assert.EqualError(t, out.Err, "refused")
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(config.DefaultOptions().Apply(config.WithMockedHosts("[")))
	require.Error(t, err)
}
