package mock

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strings"
)

// Request is the transport-independent view of an intercepted request.
type Request struct {
	Method string
	URL    *url.URL
	// Header keeps names exactly as the client set them.
	Header http.Header
	Body   []byte
	// Extensions carries request-scoped metadata set by the caller through
	// WithExtensions.
	Extensions map[string]any
	// ProxyURL is the upstream proxy the request would have been sent
	// through, nil when none applies.
	ProxyURL *url.URL
}

// NewRequest builds a Request from a method and a raw URL.
func NewRequest(method, rawURL string, body []byte) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing request url: %w", err)
	}
	return &Request{
		Method: strings.ToUpper(method),
		URL:    u,
		Header: http.Header{},
		Body:   body,
	}, nil
}

// FromHTTP converts an outgoing *http.Request. The body is fully read and
// put back so the original request can still be sent elsewhere.
func FromHTTP(r *http.Request) (*Request, error) {
	var body []byte
	if r.Body != nil && r.Body != http.NoBody {
		b, err := io.ReadAll(r.Body)
		_ = r.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}
		body = b
		r.Body = io.NopCloser(bytes.NewReader(b))
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(b)), nil
		}
	}
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	u := *r.URL
	if u.Host == "" && r.Host != "" {
		u.Host = r.Host
	}
	header := r.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	if _, ok := header["Host"]; !ok && u.Host != "" {
		header["Host"] = []string{u.Host}
	}
	return &Request{
		Method:     method,
		URL:        &u,
		Header:     header,
		Body:       body,
		Extensions: ExtensionsFromContext(r.Context()),
	}, nil
}

// Clone returns a deep copy of the request.
func (r *Request) Clone() *Request {
	c := *r
	if r.URL != nil {
		u := *r.URL
		c.URL = &u
	}
	if r.ProxyURL != nil {
		u := *r.ProxyURL
		c.ProxyURL = &u
	}
	c.Header = r.Header.Clone()
	if r.Body != nil {
		c.Body = append([]byte{}, r.Body...)
	}
	c.Extensions = maps.Clone(r.Extensions)
	return &c
}

// Host returns the request host name without port.
func (r *Request) Host() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.Hostname()
}

// String renders "METHOD URL".
func (r *Request) String() string {
	u := ""
	if r.URL != nil {
		u = r.URL.String()
	}
	return r.Method + " " + u
}

type extensionsKey struct{}

// WithExtensions attaches request extensions to ctx. Requests built with
// http.NewRequestWithContext(ctx, ...) carry them into the mock.
func WithExtensions(ctx context.Context, ext map[string]any) context.Context {
	merged := maps.Clone(ExtensionsFromContext(ctx))
	if merged == nil {
		merged = make(map[string]any, len(ext))
	}
	maps.Copy(merged, ext)
	return context.WithValue(ctx, extensionsKey{}, merged)
}

// ExtensionsFromContext returns the extensions attached with WithExtensions.
func ExtensionsFromContext(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	ext, _ := ctx.Value(extensionsKey{}).(map[string]any)
	return maps.Clone(ext)
}
