package mock

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// Response is a response template. Every use produces a fresh copy so that
// reading a body never affects later requests.
type Response struct {
	StatusCode  int
	HTTPVersion string
	Header      http.Header
	Body        []byte
	// Chunks, when set, are streamed one after another instead of Body.
	Chunks [][]byte

	err error
}

// ResponseOption configures a Response.
type ResponseOption func(*Response)

// NewResponse builds a 200 HTTP/1.1 response with no body, then applies
// opts. Option errors are kept and reported by Err; the first one wins.
func NewResponse(opts ...ResponseOption) *Response {
	r := &Response{
		StatusCode:  http.StatusOK,
		HTTPVersion: "HTTP/1.1",
		Header:      http.Header{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Err returns the first error recorded while building the response.
func (r *Response) Err() error {
	return r.err
}

func (r *Response) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// WithStatus sets the status code.
func WithStatus(code int) ResponseOption {
	return func(r *Response) {
		if code < 100 || code > 999 {
			r.fail(fmt.Errorf("invalid status code %d", code))
			return
		}
		r.StatusCode = code
	}
}

// WithHTTPVersion sets the protocol, such as "HTTP/2.0".
func WithHTTPVersion(version string) ResponseOption {
	return func(r *Response) {
		if _, _, ok := http.ParseHTTPVersion(version); !ok {
			r.fail(fmt.Errorf("invalid HTTP version %q", version))
			return
		}
		r.HTTPVersion = version
	}
}

// WithHeader adds one header value.
func WithHeader(name, value string) ResponseOption {
	return func(r *Response) { r.Header.Add(name, value) }
}

// WithHeaders adds several header values.
func WithHeaders(headers map[string]string) ResponseOption {
	return func(r *Response) {
		for k, v := range headers {
			r.Header.Add(k, v)
		}
	}
}

// WithContent sets the raw body.
func WithContent(body []byte) ResponseOption {
	return func(r *Response) {
		r.Body = append([]byte{}, body...)
		r.Chunks = nil
	}
}

// WithText sets a text/plain UTF-8 body.
func WithText(text string) ResponseOption {
	return func(r *Response) {
		r.Body = []byte(text)
		r.Chunks = nil
		setDefaultContentType(r, "text/plain; charset=utf-8")
	}
}

// WithHTML sets a text/html UTF-8 body.
func WithHTML(html string) ResponseOption {
	return func(r *Response) {
		r.Body = []byte(html)
		r.Chunks = nil
		setDefaultContentType(r, "text/html; charset=utf-8")
	}
}

// WithJSON sets a JSON body encoded from v.
func WithJSON(v any) ResponseOption {
	return func(r *Response) {
		b, err := json.Marshal(v)
		if err != nil {
			r.fail(fmt.Errorf("encoding json body: %w", err))
			return
		}
		r.Body = b
		r.Chunks = nil
		setDefaultContentType(r, "application/json")
	}
}

// WithStream makes the body a sequence of chunks.
func WithStream(chunks ...[]byte) ResponseOption {
	return func(r *Response) {
		r.Chunks = make([][]byte, len(chunks))
		for i, c := range chunks {
			r.Chunks[i] = append([]byte{}, c...)
		}
		r.Body = nil
	}
}

func setDefaultContentType(r *Response, ct string) {
	if r.Header.Get("Content-Type") == "" {
		r.Header.Set("Content-Type", ct)
	}
}

// Content returns the full body, concatenating chunks for streams.
func (r *Response) Content() []byte {
	if r.Chunks != nil {
		return bytes.Join(r.Chunks, nil)
	}
	return r.Body
}

// Clone returns an independent copy.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	c := *r
	c.Header = r.Header.Clone()
	if c.Header == nil {
		c.Header = http.Header{}
	}
	if r.Body != nil {
		c.Body = append([]byte{}, r.Body...)
	}
	if r.Chunks != nil {
		c.Chunks = make([][]byte, len(r.Chunks))
		for i, ch := range r.Chunks {
			c.Chunks[i] = append([]byte{}, ch...)
		}
	}
	return &c
}

// ToHTTP builds a new *http.Response for req.
func (r *Response) ToHTTP(req *http.Request) *http.Response {
	proto := r.HTTPVersion
	if proto == "" {
		proto = "HTTP/1.1"
	}
	major, minor, ok := http.ParseHTTPVersion(proto)
	if !ok {
		major, minor = 1, 1
	}
	header := r.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	status := r.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	resp := &http.Response{
		Status:     strconv.Itoa(status) + " " + http.StatusText(status),
		StatusCode: status,
		Proto:      proto,
		ProtoMajor: major,
		ProtoMinor: minor,
		Header:     header,
		Request:    req,
	}
	if r.Chunks != nil {
		resp.Body = io.NopCloser(&chunkReader{chunks: r.Clone().Chunks})
		resp.ContentLength = -1
		resp.TransferEncoding = []string{"chunked"}
	} else {
		body := append([]byte{}, r.Body...)
		resp.Body = io.NopCloser(bytes.NewReader(body))
		resp.ContentLength = int64(len(body))
	}
	if req != nil && req.Method == http.MethodHead {
		resp.Body = http.NoBody
	}
	return resp
}

// String renders a short description used in diagnostics.
func (r *Response) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d", r.StatusCode)
	if n := len(r.Header); n > 0 {
		fmt.Fprintf(&b, " with %d headers", n)
	}
	if n := len(r.Content()); n > 0 {
		fmt.Fprintf(&b, " and %d bytes", n)
	}
	return b.String()
}

// chunkReader yields each chunk through a separate Read call.
type chunkReader struct {
	chunks [][]byte
}

func (c *chunkReader) Read(p []byte) (int, error) {
	for len(c.chunks) > 0 && len(c.chunks[0]) == 0 {
		c.chunks = c.chunks[1:]
	}
	if len(c.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, c.chunks[0])
	c.chunks[0] = c.chunks[0][n:]
	return n, nil
}
