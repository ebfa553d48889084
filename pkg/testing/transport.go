package testing

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/getmockd/httpmock/pkg/engine"
	"github.com/getmockd/httpmock/pkg/mock"
	"golang.org/x/net/http/httpproxy"
)

// Transport is an http.RoundTripper answering requests from an engine.
type Transport struct {
	engine *engine.Engine
	base   http.RoundTripper
	proxy  func(*url.URL) (*url.URL, error)
}

// TransportOption configures a Transport.
type TransportOption func(*Transport)

// WithBaseTransport sets the transport passthrough requests are sent to.
func WithBaseTransport(rt http.RoundTripper) TransportOption {
	return func(t *Transport) {
		if rt != nil {
			t.base = rt
		}
	}
}

// WithProxy overrides how the upstream proxy of a request is resolved.
func WithProxy(fn func(*url.URL) (*url.URL, error)) TransportOption {
	return func(t *Transport) { t.proxy = fn }
}

// NewTransport creates a Transport for e.
func NewTransport(e *engine.Engine, opts ...TransportOption) *Transport {
	t := &Transport{engine: e, base: http.DefaultTransport}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// RoundTrip implements http.RoundTripper. Requests nothing answers fail
// with a *mock.NoMatchError; error entries fail with their error.
func (t *Transport) RoundTrip(r *http.Request) (*http.Response, error) {
	req, err := mock.FromHTTP(r)
	if err != nil {
		return nil, err
	}
	req.ProxyURL, err = t.resolveProxy(r)
	if err != nil {
		return nil, fmt.Errorf("resolving proxy: %w", err)
	}

	out := t.engine.Handle(r.Context(), req)
	switch {
	case out.Passthrough:
		return t.base.RoundTrip(r)
	case out.Err != nil:
		return nil, out.Err
	default:
		return out.Response.ToHTTP(r), nil
	}
}

// resolveProxy returns the proxy the real transport would use: the Proxy
// func of an *http.Transport base, otherwise the HTTP_PROXY, HTTPS_PROXY
// and NO_PROXY environment.
func (t *Transport) resolveProxy(r *http.Request) (*url.URL, error) {
	if t.proxy != nil {
		return t.proxy(r.URL)
	}
	if ht, ok := t.base.(*http.Transport); ok {
		if ht.Proxy == nil {
			return nil, nil
		}
		return ht.Proxy(r)
	}
	return httpproxy.FromEnvironment().ProxyFunc()(r.URL)
}
