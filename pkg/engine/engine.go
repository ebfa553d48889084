package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/getmockd/httpmock/internal/matching"
	"github.com/getmockd/httpmock/pkg/config"
	"github.com/getmockd/httpmock/pkg/logging"
	"github.com/getmockd/httpmock/pkg/mock"
	"github.com/getmockd/httpmock/pkg/requestlog"
)

// Engine is one mock session.
type Engine struct {
	// mu guards registry, usage counters, opts and filter. Entry selection
	// holds it from matching until the chosen entry is marked used.
	mu       sync.Mutex
	registry *Registry
	selector selector
	opts     config.Options
	filter   *PassthroughFilter

	// defaults are the options Reset restores.
	defaults config.Options

	requests requestlog.Store
	log      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithRequestStore replaces the in-memory request log.
func WithRequestStore(store requestlog.Store) Option {
	return func(e *Engine) {
		if store != nil {
			e.requests = store
		}
	}
}

// New creates a session with opts. Reset restores opts.
func New(opts config.Options, eopts ...Option) (*Engine, error) {
	e := &Engine{
		registry: NewRegistry(),
		requests: requestlog.NewMemoryStore(),
		log:      logging.Nop(),
	}
	for _, o := range eopts {
		if o != nil {
			o(e)
		}
	}
	e.selector.registry = e.registry
	e.defaults = opts.Clone()
	if err := e.setOptions(opts); err != nil {
		return nil, err
	}
	return e, nil
}

// setOptions validates and installs o. Callers must hold mu, or own e
// exclusively.
func (e *Engine) setOptions(o config.Options) error {
	if err := o.Validate(); err != nil {
		return err
	}
	filter, err := NewPassthroughFilter(o, e.log)
	if err != nil {
		return err
	}
	e.opts = o.Clone()
	e.filter = filter
	e.selector.canSendAlreadyMatched = o.CanSendAlreadyMatchedResponses
	return nil
}

// Options returns a copy of the current session options.
func (e *Engine) Options() config.Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opts.Clone()
}

// Configure changes the current session options. Reset discards the
// change.
func (e *Engine) Configure(opts ...config.Option) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setOptions(e.opts.Apply(opts...))
}

// Add registers a prepared entry.
func (e *Engine) Add(entry *mock.Entry) (*mock.Entry, error) {
	if entry == nil {
		return nil, errors.New("entry cannot be nil")
	}
	if err := entry.Matcher.Validate(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.registry.Add(entry)
	e.mu.Unlock()

	e.log.Debug("entry registered",
		"id", entry.ID,
		"index", entry.Index,
		"kind", string(entry.Kind),
		"matcher", matching.Describe(entry.Matcher, false),
	)
	return entry, nil
}

// AddResponse registers a canned response. A nil resp is an empty 200.
func (e *Engine) AddResponse(resp *mock.Response, opts ...mock.EntryOption) (*mock.Entry, error) {
	entry, err := mock.NewResponseEntry(resp, opts...)
	if err != nil {
		return nil, err
	}
	return e.Add(entry)
}

// AddCallback registers a callback computing the response.
func (e *Engine) AddCallback(fn mock.Callback, opts ...mock.EntryOption) (*mock.Entry, error) {
	entry, err := mock.NewCallbackEntry(fn, opts...)
	if err != nil {
		return nil, err
	}
	return e.Add(entry)
}

// AddError registers an entry failing matching requests with err.
func (e *Engine) AddError(err error, opts ...mock.EntryOption) (*mock.Entry, error) {
	entry, nerr := mock.NewErrorEntry(err, opts...)
	if nerr != nil {
		return nil, nerr
	}
	return e.Add(entry)
}

// AddFixtures registers the entries described by fixtures, in order.
func (e *Engine) AddFixtures(fixtures []config.Fixture) ([]*mock.Entry, error) {
	entries := make([]*mock.Entry, 0, len(fixtures))
	for i := range fixtures {
		entry, err := fixtures[i].Entry()
		if err != nil {
			return entries, err
		}
		if _, err := e.Add(entry); err != nil {
			return entries, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Entries returns the registered entries in registration order.
func (e *Engine) Entries() []*mock.Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.All()
}

// Handle resolves req. The outcome is a passthrough when the filter lets
// the request through, a *mock.NoMatchError failure when no entry can
// answer, or the outcome produced by the selected entry.
func (e *Engine) Handle(ctx context.Context, req *mock.Request) mock.Outcome {
	if req == nil {
		return mock.Outcome{Err: errors.New("request cannot be nil")}
	}

	e.mu.Lock()
	filter := e.filter
	e.mu.Unlock()

	if !filter.ShouldIntercept(req) {
		e.log.Debug("request passed through", "request", req.String())
		return mock.Outcome{Passthrough: true}
	}

	rec := e.requests.Record(req.Clone())

	e.mu.Lock()
	entry, err := e.selector.claim(req)
	e.mu.Unlock()

	if err != nil {
		e.requests.MarkUnmatched(rec, err)
		e.log.Warn("no entry matched request",
			"request", req.String(),
			"sequence", rec.Sequence,
			"body", logging.Body(req.Body, 0),
		)
		return mock.Outcome{Err: err}
	}
	e.requests.MarkMatched(rec, entry.ID)
	e.log.Debug("request matched",
		"request", req.String(),
		"sequence", rec.Sequence,
		"entry", entry.ID,
		"index", entry.Index,
	)

	return entry.Produce(ctx, req)
}

// HandleAsync runs Handle in a goroutine. The channel receives exactly
// one outcome. When ctx ends first, the channel receives a failure
// wrapping ctx.Err(); the request itself stays recorded.
func (e *Engine) HandleAsync(ctx context.Context, req *mock.Request) <-chan mock.Outcome {
	out := make(chan mock.Outcome, 1)
	done := make(chan mock.Outcome, 1)
	go func() {
		done <- e.Handle(ctx, req)
	}()
	go func() {
		select {
		case o := <-done:
			out <- o
		case <-ctx.Done():
			out <- mock.Outcome{Err: fmt.Errorf("waiting for mocked response: %w", ctx.Err())}
		}
	}()
	return out
}

// GetRequests returns the recorded requests satisfying every criterion, in
// issue order. Without criteria every recorded request is returned.
func (e *Engine) GetRequests(opts ...mock.MatcherOption) []*mock.Request {
	m := mock.NewMatcher(opts...)
	records := e.requests.Query(func(rec *requestlog.Record) bool {
		return matching.Match(m, rec.Request)
	})
	out := make([]*mock.Request, len(records))
	for i, rec := range records {
		out[i] = rec.Request
	}
	return out
}

// GetRequest returns the single recorded request satisfying the criteria,
// nil when there is none, or a *mock.AmbiguousRequestError when there are
// several.
func (e *Engine) GetRequest(opts ...mock.MatcherOption) (*mock.Request, error) {
	m := mock.NewMatcher(opts...)
	rec, err := e.requests.GetOne(func(rec *requestlog.Record) bool {
		return matching.Match(m, rec.Request)
	})
	if err != nil || rec == nil {
		return nil, err
	}
	return rec.Request, nil
}

// Records returns the request log in issue order.
func (e *Engine) Records() []*requestlog.Record {
	return e.requests.Query(nil)
}

// Reset clears entries and recorded requests and restores the options the
// engine was created with. No assertion runs.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.registry.Clear()
	// defaults were validated by New.
	_ = e.setOptions(e.defaults)
	e.mu.Unlock()

	e.requests.Clear()
	e.log.Debug("session reset")
}
