package config

import (
	"fmt"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/getmockd/httpmock/pkg/logging"
	"github.com/getmockd/httpmock/pkg/mock"
)

// Options configures a mock session.
type Options struct {
	// AssertAllResponsesWereRequested fails teardown when a non-optional
	// entry was never selected. It also sets the default of
	// mock.Optional: entries are optional when this is false.
	AssertAllResponsesWereRequested bool `yaml:"assertAllResponsesWereRequested"`

	// AssertAllRequestsWereExpected fails teardown when a request was not
	// answered by any entry.
	AssertAllRequestsWereExpected bool `yaml:"assertAllRequestsWereExpected"`

	// CanSendAlreadyMatchedResponses lets the newest matching entry answer
	// again once every matching entry was used, even if it is not reusable.
	CanSendAlreadyMatchedResponses bool `yaml:"canSendAlreadyMatchedResponses"`

	// ShouldMock decides which requests are intercepted. Requests it
	// rejects are sent to the real transport. Nil intercepts everything.
	ShouldMock func(*mock.Request) bool `yaml:"-"`

	// ShouldMockExpr is an expr-lang boolean expression evaluated against
	// RequestEnv. Combined with ShouldMock: both must accept a request.
	ShouldMockExpr string `yaml:"shouldMock"`

	// PassthroughHosts lists glob patterns of hosts never intercepted.
	PassthroughHosts []string `yaml:"passthroughHosts"`

	// MockedHosts, when not empty, restricts interception to hosts
	// matching one of its glob patterns.
	MockedHosts []string `yaml:"mockedHosts"`

	// Log configures engine logging. Empty level disables it.
	Log LogOptions `yaml:"log"`
}

// LogOptions selects engine log verbosity and format.
type LogOptions struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultOptions returns the options of a session nobody configured.
func DefaultOptions() Options {
	return Options{
		AssertAllResponsesWereRequested: true,
		AssertAllRequestsWereExpected:   true,
		CanSendAlreadyMatchedResponses:  false,
	}
}

// Option changes Options.
type Option func(*Options)

// WithAssertAllResponsesWereRequested sets AssertAllResponsesWereRequested.
func WithAssertAllResponsesWereRequested(v bool) Option {
	return func(o *Options) { o.AssertAllResponsesWereRequested = v }
}

// WithAssertAllRequestsWereExpected sets AssertAllRequestsWereExpected.
func WithAssertAllRequestsWereExpected(v bool) Option {
	return func(o *Options) { o.AssertAllRequestsWereExpected = v }
}

// WithCanSendAlreadyMatchedResponses sets CanSendAlreadyMatchedResponses.
func WithCanSendAlreadyMatchedResponses(v bool) Option {
	return func(o *Options) { o.CanSendAlreadyMatchedResponses = v }
}

// WithShouldMock sets the interception predicate.
func WithShouldMock(fn func(*mock.Request) bool) Option {
	return func(o *Options) { o.ShouldMock = fn }
}

// WithShouldMockExpr sets the interception expression.
func WithShouldMockExpr(expression string) Option {
	return func(o *Options) { o.ShouldMockExpr = expression }
}

// WithPassthroughHosts adds host patterns that are never intercepted.
func WithPassthroughHosts(patterns ...string) Option {
	return func(o *Options) { o.PassthroughHosts = append(o.PassthroughHosts, patterns...) }
}

// WithMockedHosts adds host patterns that are intercepted.
func WithMockedHosts(patterns ...string) Option {
	return func(o *Options) { o.MockedHosts = append(o.MockedHosts, patterns...) }
}

// WithLogLevel enables engine logging at level.
func WithLogLevel(level string) Option {
	return func(o *Options) { o.Log.Level = level }
}

// Apply returns a copy of o with opts applied.
func (o Options) Apply(opts ...Option) Options {
	c := o.Clone()
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	return c
}

// Clone returns a copy that shares no slices with o.
func (o Options) Clone() Options {
	o.PassthroughHosts = slices.Clone(o.PassthroughHosts)
	o.MockedHosts = slices.Clone(o.MockedHosts)
	return o
}

// Validate checks host patterns and the shouldMock expression.
func (o Options) Validate() error {
	for _, p := range o.PassthroughHosts {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid passthrough host pattern %q", p)
		}
	}
	for _, p := range o.MockedHosts {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid mocked host pattern %q", p)
		}
	}
	if o.ShouldMockExpr != "" {
		if _, err := CompileShouldMock(o.ShouldMockExpr); err != nil {
			return err
		}
	}
	return nil
}

// LoggingConfig returns the logging configuration, and false when logging
// is disabled.
func (o Options) LoggingConfig() (logging.Config, bool) {
	if o.Log.Level == "" {
		return logging.Config{}, false
	}
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(o.Log.Level)
	cfg.Format = logging.ParseFormat(o.Log.Format)
	return cfg, true
}
