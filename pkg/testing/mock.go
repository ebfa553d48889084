package testing

import (
	"net/http"
	"testing"

	"github.com/getmockd/httpmock/pkg/config"
	"github.com/getmockd/httpmock/pkg/engine"
	"github.com/getmockd/httpmock/pkg/logging"
	"github.com/getmockd/httpmock/pkg/mock"
)

// Mock is the mock session of one test. Create it with New; the teardown
// assertions run automatically when the test completes.
type Mock struct {
	t         testing.TB
	engine    *engine.Engine
	transport *Transport
}

// New creates a session for t. Options are resolved on top of the
// HTTPMOCK_CONFIG file and HTTPMOCK_* environment variables. Unless Reset
// is the last call, the session verifies at cleanup that every mandatory
// entry was requested and every request was expected, and reports
// violations through t.Errorf.
func New(t testing.TB, opts ...config.Option) *Mock {
	t.Helper()

	o, err := config.Resolve(opts...)
	if err != nil {
		t.Fatalf("httpmock: %v", err)
	}

	var eopts []engine.Option
	if cfg, ok := o.LoggingConfig(); ok {
		eopts = append(eopts, engine.WithLogger(logging.NewTestLogger(t, cfg)))
	}
	e, err := engine.New(o, eopts...)
	if err != nil {
		t.Fatalf("httpmock: %v", err)
	}

	m := &Mock{t: t, engine: e}
	m.transport = NewTransport(e)
	t.Cleanup(func() {
		if err := e.Verify(); err != nil {
			t.Errorf("httpmock: %v", err)
		}
	})
	return m
}

// AddResponse registers a canned response. A nil resp is an empty 200.
func (m *Mock) AddResponse(resp *mock.Response, opts ...mock.EntryOption) *mock.Entry {
	m.t.Helper()
	entry, err := m.engine.AddResponse(resp, opts...)
	if err != nil {
		m.t.Fatalf("httpmock: add response: %v", err)
	}
	return entry
}

// AddCallback registers a function computing the response.
func (m *Mock) AddCallback(fn mock.Callback, opts ...mock.EntryOption) *mock.Entry {
	m.t.Helper()
	entry, err := m.engine.AddCallback(fn, opts...)
	if err != nil {
		m.t.Fatalf("httpmock: add callback: %v", err)
	}
	return entry
}

// AddException registers an entry failing matching requests with err,
// which the client receives as the transport error.
func (m *Mock) AddException(err error, opts ...mock.EntryOption) *mock.Entry {
	m.t.Helper()
	entry, aerr := m.engine.AddError(err, opts...)
	if aerr != nil {
		m.t.Fatalf("httpmock: add exception: %v", aerr)
	}
	return entry
}

// AddError is an alias of AddException.
func (m *Mock) AddError(err error, opts ...mock.EntryOption) *mock.Entry {
	m.t.Helper()
	return m.AddException(err, opts...)
}

// LoadFixtures registers the entries of every fixture file matching the
// glob patterns.
func (m *Mock) LoadFixtures(patterns ...string) []*mock.Entry {
	m.t.Helper()
	fixtures, err := config.LoadFixtures(patterns...)
	if err != nil {
		m.t.Fatalf("httpmock: %v", err)
	}
	entries, err := m.engine.AddFixtures(fixtures)
	if err != nil {
		m.t.Fatalf("httpmock: %v", err)
	}
	return entries
}

// GetRequests returns the intercepted requests satisfying every criterion,
// in issue order.
func (m *Mock) GetRequests(opts ...mock.MatcherOption) []*mock.Request {
	return m.engine.GetRequests(opts...)
}

// GetRequest returns the only intercepted request satisfying the criteria,
// or nil. Several matching requests fail the test.
func (m *Mock) GetRequest(opts ...mock.MatcherOption) *mock.Request {
	m.t.Helper()
	req, err := m.engine.GetRequest(opts...)
	if err != nil {
		m.t.Fatalf("httpmock: %v", err)
	}
	return req
}

// Configure changes the session options until the next Reset.
func (m *Mock) Configure(opts ...config.Option) {
	m.t.Helper()
	if err := m.engine.Configure(opts...); err != nil {
		m.t.Fatalf("httpmock: %v", err)
	}
}

// Reset forgets every entry and request and restores the session options.
// Nothing is verified for what was forgotten.
func (m *Mock) Reset() {
	m.engine.Reset()
}

// Transport returns the intercepting transport. Passthrough requests go
// to http.DefaultTransport.
func (m *Mock) Transport() *Transport {
	return m.transport
}

// WrapTransport returns an intercepting transport sending passthrough
// requests to base.
func (m *Mock) WrapTransport(base http.RoundTripper, opts ...TransportOption) *Transport {
	return NewTransport(m.engine, append([]TransportOption{WithBaseTransport(base)}, opts...)...)
}

// Client returns an http.Client using Transport.
func (m *Mock) Client() *http.Client {
	return &http.Client{Transport: m.transport}
}

// Engine returns the underlying session for error-returning access.
func (m *Mock) Engine() *engine.Engine {
	return m.engine
}
