package mock

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Kind identifies how an Entry produces its outcome.
type Kind string

const (
	KindResponse Kind = "response"
	KindCallback Kind = "callback"
	KindError    Kind = "error"
)

// Callback computes the response for a matched request. Returning a non-nil
// error makes the error the outcome of the request, unchanged.
type Callback func(ctx context.Context, req *Request) (*Response, error)

// Entry is one registered rule: a Matcher, a payload and usage bookkeeping.
type Entry struct {
	// ID uniquely identifies the entry within and across sessions.
	ID string

	// Index is the registration index assigned by the owning registry.
	// Entries registered earlier have smaller indexes.
	Index int

	// Kind selects which payload field is used.
	Kind Kind

	// Matcher holds the criteria a request must satisfy. Never nil.
	Matcher *Matcher

	// Payloads. Exactly one is set, according to Kind.
	Response *Response
	Callback Callback
	Err      error

	// Optional, when set, overrides the session default for whether this
	// entry must be requested before teardown.
	Optional *bool

	// Reusable entries keep answering once every matching entry was used.
	Reusable bool

	usedCount int
}

// EntryOption configures an Entry at construction time.
// MatcherOption values are EntryOptions too.
type EntryOption interface {
	applyEntry(*Entry)
}

type entryOptionFunc func(*Entry)

func (f entryOptionFunc) applyEntry(e *Entry) { f(e) }

// Optional marks whether the entry may be left unrequested at teardown.
func Optional(optional bool) EntryOption {
	return entryOptionFunc(func(e *Entry) {
		e.Optional = &optional
	})
}

// Reusable lets the entry answer again after every matching entry was used.
func Reusable() EntryOption {
	return entryOptionFunc(func(e *Entry) {
		e.Reusable = true
	})
}

// NewResponseEntry creates an entry answering with a copy of resp.
// A nil resp stands for an empty 200 response.
func NewResponseEntry(resp *Response, opts ...EntryOption) (*Entry, error) {
	if resp == nil {
		resp = NewResponse()
	}
	if err := resp.Err(); err != nil {
		return nil, fmt.Errorf("building response: %w", err)
	}
	e := newEntry(KindResponse, opts)
	e.Response = resp.Clone()
	return validated(e)
}

// NewCallbackEntry creates an entry that delegates to fn.
func NewCallbackEntry(fn Callback, opts ...EntryOption) (*Entry, error) {
	if fn == nil {
		return nil, errors.New("callback is required")
	}
	e := newEntry(KindCallback, opts)
	e.Callback = fn
	return validated(e)
}

// NewErrorEntry creates an entry that fails matching requests with err.
func NewErrorEntry(err error, opts ...EntryOption) (*Entry, error) {
	if err == nil {
		return nil, errors.New("error value is required")
	}
	e := newEntry(KindError, opts)
	e.Err = err
	return validated(e)
}

func validated(e *Entry) (*Entry, error) {
	if err := e.Matcher.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func newEntry(kind Kind, opts []EntryOption) *Entry {
	e := &Entry{
		ID:      uuid.NewString(),
		Kind:    kind,
		Matcher: &Matcher{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt.applyEntry(e)
		}
	}
	return e
}

// UsedCount returns how many requests the entry answered.
func (e *Entry) UsedCount() int {
	return e.usedCount
}

// MarkUsed records one more answered request. Callers must hold the lock of
// the registry owning e.
func (e *Entry) MarkUsed() {
	e.usedCount++
}

// IsOptional resolves the Optional override against the session default.
func (e *Entry) IsOptional(defaultOptional bool) bool {
	if e.Optional != nil {
		return *e.Optional
	}
	return defaultOptional
}

// Snapshot returns a copy of the entry suitable for diagnostics.
func (e *Entry) Snapshot() Entry {
	return *e
}

// Produce materializes the outcome for req. For callbacks this runs user
// code, so it must be called without holding any session lock.
func (e *Entry) Produce(ctx context.Context, req *Request) Outcome {
	switch e.Kind {
	case KindResponse:
		return Outcome{Entry: e, Response: e.Response.Clone()}
	case KindCallback:
		resp, err := e.Callback(ctx, req)
		if err != nil {
			return Outcome{Entry: e, Err: err}
		}
		if resp == nil {
			return Outcome{Entry: e, Err: fmt.Errorf("callback %s returned neither a response nor an error", e.ID)}
		}
		if err := resp.Err(); err != nil {
			return Outcome{Entry: e, Err: fmt.Errorf("callback %s built an invalid response: %w", e.ID, err)}
		}
		return Outcome{Entry: e, Response: resp}
	case KindError:
		return Outcome{Entry: e, Err: e.Err}
	default:
		return Outcome{Entry: e, Err: fmt.Errorf("unknown entry kind: %s", e.Kind)}
	}
}

// Outcome is the result of handling one request: either a produced response
// or a failure. Passthrough outcomes carry neither and tell the transport to
// forward the request to the real network.
type Outcome struct {
	Response    *Response
	Err         error
	Entry       *Entry
	Passthrough bool
}

// Failed reports whether the outcome is a failure.
func (o Outcome) Failed() bool {
	return o.Err != nil
}
