package testing

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/getmockd/httpmock/pkg/mock"
)

// EntryBuilder registers an entry through a fluent API:
//
//	m.Expect("GET", "https://api.example.org/users/1").
//	    WithRequestHeader("Authorization", "Bearer token").
//	    RespondJSON(map[string]any{"id": 1})
//
// Nothing is registered until one of the terminal methods (Reply,
// RespondWith, RespondJSON, Fail, Call) is called.
type EntryBuilder struct {
	mock     *Mock
	matchers []mock.MatcherOption
	entry    []mock.EntryOption
	response []mock.ResponseOption
	err      error // First error encountered during building
}

// Expect starts an entry matching method and url. Empty values match any
// method or URL.
func (m *Mock) Expect(method, url string) *EntryBuilder {
	b := &EntryBuilder{mock: m}
	if method != "" {
		b.matchers = append(b.matchers, mock.MatchMethod(method))
	}
	if url != "" {
		b.matchers = append(b.matchers, mock.MatchURL(url))
	}
	return b
}

// ExpectPattern starts an entry whose URL must fully match pattern.
func (m *Mock) ExpectPattern(method, pattern string) *EntryBuilder {
	b := m.Expect(method, "")
	re, err := regexp.Compile(pattern)
	if err != nil {
		b.setError(fmt.Errorf("ExpectPattern: %w", err))
		return b
	}
	b.matchers = append(b.matchers, mock.MatchURLPattern(re))
	return b
}

// setError records the first error encountered during building.
// Subsequent errors are ignored (first error wins pattern).
func (b *EntryBuilder) setError(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Err returns any error encountered during building.
func (b *EntryBuilder) Err() error {
	return b.err
}

// WithRequestHeader requires a request header value.
func (b *EntryBuilder) WithRequestHeader(name, value string) *EntryBuilder {
	return b.WithRequestHeaders(map[string]string{name: value})
}

// WithRequestHeaders requires several request header values.
func (b *EntryBuilder) WithRequestHeaders(headers map[string]string) *EntryBuilder {
	b.matchers = append(b.matchers, mock.MatchHeaders(headers))
	return b
}

// WithBodyEquals requires the exact request body.
func (b *EntryBuilder) WithBodyEquals(body string) *EntryBuilder {
	b.matchers = append(b.matchers, mock.MatchContent([]byte(body)))
	return b
}

// WithJSONBody requires a request body equal to v as JSON.
func (b *EntryBuilder) WithJSONBody(v any) *EntryBuilder {
	b.matchers = append(b.matchers, mock.MatchJSON(v))
	return b
}

// WithJSONPath requires a JSONPath expression to yield expected.
func (b *EntryBuilder) WithJSONPath(path string, expected any) *EntryBuilder {
	b.matchers = append(b.matchers, mock.MatchJSONPath(map[string]any{path: expected}))
	return b
}

// WithExtension requires a request extension value.
func (b *EntryBuilder) WithExtension(key string, value any) *EntryBuilder {
	b.matchers = append(b.matchers, mock.MatchExtensions(map[string]any{key: value}))
	return b
}

// Optional lets the entry go unrequested.
func (b *EntryBuilder) Optional() *EntryBuilder {
	b.entry = append(b.entry, mock.Optional(true))
	return b
}

// Required makes the entry mandatory even when the session is lenient.
func (b *EntryBuilder) Required() *EntryBuilder {
	b.entry = append(b.entry, mock.Optional(false))
	return b
}

// Reusable lets the entry answer repeatedly.
func (b *EntryBuilder) Reusable() *EntryBuilder {
	b.entry = append(b.entry, mock.Reusable())
	return b
}

// WithStatus sets the response status code.
// Default is 200 (OK).
func (b *EntryBuilder) WithStatus(status int) *EntryBuilder {
	b.response = append(b.response, mock.WithStatus(status))
	return b
}

// WithHeader adds a response header.
func (b *EntryBuilder) WithHeader(name, value string) *EntryBuilder {
	b.response = append(b.response, mock.WithHeader(name, value))
	return b
}

// WithBody sets the response body. Strings and byte slices are sent as is,
// other values are encoded as JSON.
func (b *EntryBuilder) WithBody(body any) *EntryBuilder {
	switch v := body.(type) {
	case string:
		b.response = append(b.response, mock.WithContent([]byte(v)))
	case []byte:
		b.response = append(b.response, mock.WithContent(v))
	default:
		b.response = append(b.response, mock.WithJSON(v))
	}
	return b
}

func (b *EntryBuilder) options() []mock.EntryOption {
	opts := make([]mock.EntryOption, 0, len(b.matchers)+len(b.entry))
	for _, o := range b.matchers {
		opts = append(opts, o)
	}
	return append(opts, b.entry...)
}

// Reply registers the entry with the configured response.
func (b *EntryBuilder) Reply() *mock.Entry {
	b.mock.t.Helper()
	if b.err != nil {
		b.mock.t.Fatalf("httpmock: %v", b.err)
	}
	return b.mock.AddResponse(mock.NewResponse(b.response...), b.options()...)
}

// RespondWith sets the status and body and registers the entry.
func (b *EntryBuilder) RespondWith(status int, body any) *mock.Entry {
	b.mock.t.Helper()
	return b.WithStatus(status).WithBody(body).Reply()
}

// RespondJSON registers the entry answering 200 with v as JSON.
func (b *EntryBuilder) RespondJSON(v any) *mock.Entry {
	b.mock.t.Helper()
	b.response = append(b.response, mock.WithJSON(v))
	return b.Reply()
}

// RespondNotFound registers the entry answering 404.
func (b *EntryBuilder) RespondNotFound() *mock.Entry {
	b.mock.t.Helper()
	return b.WithStatus(http.StatusNotFound).Reply()
}

// RespondServerError registers the entry answering 500 with message.
func (b *EntryBuilder) RespondServerError(message string) *mock.Entry {
	b.mock.t.Helper()
	b.response = append(b.response, mock.WithStatus(http.StatusInternalServerError), mock.WithText(message))
	return b.Reply()
}

// RespondNoContent registers the entry answering 204.
func (b *EntryBuilder) RespondNoContent() *mock.Entry {
	b.mock.t.Helper()
	return b.WithStatus(http.StatusNoContent).Reply()
}

// Fail registers the entry failing matching requests with err.
func (b *EntryBuilder) Fail(err error) *mock.Entry {
	b.mock.t.Helper()
	if b.err != nil {
		b.mock.t.Fatalf("httpmock: %v", b.err)
	}
	return b.mock.AddException(err, b.options()...)
}

// Call registers the entry answering through fn.
func (b *EntryBuilder) Call(fn mock.Callback) *mock.Entry {
	b.mock.t.Helper()
	if b.err != nil {
		b.mock.t.Fatalf("httpmock: %v", b.err)
	}
	return b.mock.AddCallback(fn, b.options()...)
}
