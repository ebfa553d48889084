package mock

import (
	"maps"
	"regexp"
)

// Matcher holds the criteria an Entry (or a request-log query) applies to a
// request. The zero value matches every request.
type Matcher struct {
	// Method is compared case-insensitively.
	Method string

	// URL is compared to the request URL: scheme, host and path must be
	// equal and query parameters must hold the same values per key, in the
	// same order for repeated keys. Mutually exclusive with URLPattern.
	URL string

	// URLPattern must match the whole serialized request URL.
	URLPattern *regexp.Regexp

	// ProxyURL and ProxyURLPattern apply the URL semantics to the upstream
	// proxy the request would have been sent through.
	ProxyURL        string
	ProxyURLPattern *regexp.Regexp

	// Headers lists header names (case preserved) and their exact values.
	// Repeated headers are compared joined with ", ".
	Headers map[string]string

	// Content is compared byte for byte to the request body. Nil means unset.
	Content []byte

	// JSON is compared to the request body decoded as JSON. Any matches
	// every value at its position. Nil means unset.
	JSON any

	// Data and Files are compared to the decoded multipart form fields and
	// file parts. Data requires Files.
	Data  map[string]string
	Files map[string]File

	// Extensions lists request-scoped metadata keys and expected values.
	Extensions map[string]any

	// JSONPath maps JSONPath expressions to the value they must select.
	JSONPath map[string]any
}

// File describes one multipart file part.
type File struct {
	Filename    string `json:"filename" yaml:"filename"`
	Content     []byte `json:"content" yaml:"content"`
	ContentType string `json:"contentType,omitempty" yaml:"contentType,omitempty"`
}

// anyValue is the type of the Any wildcard.
type anyValue struct{}

func (anyValue) String() string { return "ANY" }

// MarshalJSON renders the wildcard in diagnostics.
func (anyValue) MarshalJSON() ([]byte, error) { return []byte(`"<ANY>"`), nil }

// Any is a JSON wildcard: placed anywhere inside a JSON criterion, it matches
// whatever value the request carries at that position.
var Any any = anyValue{}

// IsAny reports whether v is the Any wildcard.
func IsAny(v any) bool {
	_, ok := v.(anyValue)
	return ok
}

// IsEmpty reports whether the matcher has no criteria at all.
func (m *Matcher) IsEmpty() bool {
	return m.Method == "" && m.URL == "" && m.URLPattern == nil &&
		m.ProxyURL == "" && m.ProxyURLPattern == nil &&
		len(m.Headers) == 0 && !m.ExpectsBody() &&
		len(m.Extensions) == 0
}

// ExpectsBody reports whether any criterion inspects the request body.
func (m *Matcher) ExpectsBody() bool {
	return m.Content != nil || m.JSON != nil || len(m.Files) > 0 || len(m.Data) > 0 || len(m.JSONPath) > 0
}

// ExpectsProxy reports whether a proxy criterion is set.
func (m *Matcher) ExpectsProxy() bool {
	return m.ProxyURL != "" || m.ProxyURLPattern != nil
}

// Clone returns a copy of the matcher with its own maps.
func (m *Matcher) Clone() *Matcher {
	c := *m
	c.Headers = maps.Clone(m.Headers)
	c.Data = maps.Clone(m.Data)
	c.Files = maps.Clone(m.Files)
	c.Extensions = maps.Clone(m.Extensions)
	c.JSONPath = maps.Clone(m.JSONPath)
	if m.Content != nil {
		c.Content = append([]byte{}, m.Content...)
	}
	return &c
}

// MatcherOption sets one criterion. It can be passed wherever an
// EntryOption is accepted.
type MatcherOption func(*Matcher)

func (o MatcherOption) applyEntry(e *Entry) { o(e.Matcher) }

// NewMatcher builds a Matcher from options.
func NewMatcher(opts ...MatcherOption) *Matcher {
	m := &Matcher{}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// MatchMethod restricts the HTTP method.
func MatchMethod(method string) MatcherOption {
	return func(m *Matcher) { m.Method = method }
}

// MatchURL restricts the request URL.
func MatchURL(url string) MatcherOption {
	return func(m *Matcher) { m.URL = url }
}

// MatchURLPattern restricts the request URL to a full regular-expression match.
func MatchURLPattern(re *regexp.Regexp) MatcherOption {
	return func(m *Matcher) { m.URLPattern = re }
}

// MatchProxyURL restricts the upstream proxy URL.
func MatchProxyURL(url string) MatcherOption {
	return func(m *Matcher) { m.ProxyURL = url }
}

// MatchProxyURLPattern restricts the upstream proxy URL to a full
// regular-expression match.
func MatchProxyURLPattern(re *regexp.Regexp) MatcherOption {
	return func(m *Matcher) { m.ProxyURLPattern = re }
}

// MatchHeaders requires each listed header with exactly the given value.
func MatchHeaders(headers map[string]string) MatcherOption {
	return func(m *Matcher) { m.Headers = maps.Clone(headers) }
}

// MatchContent requires the exact request body.
func MatchContent(content []byte) MatcherOption {
	return func(m *Matcher) {
		if content == nil {
			content = []byte{}
		}
		m.Content = append([]byte{}, content...)
	}
}

// MatchJSON requires the request body to decode to a value equal to v.
func MatchJSON(v any) MatcherOption {
	return func(m *Matcher) { m.JSON = v }
}

// MatchFiles requires the multipart file parts to equal files.
func MatchFiles(files map[string]File) MatcherOption {
	return func(m *Matcher) { m.Files = maps.Clone(files) }
}

// MatchData requires the multipart form fields to equal data. Use together
// with MatchFiles.
func MatchData(data map[string]string) MatcherOption {
	return func(m *Matcher) { m.Data = maps.Clone(data) }
}

// MatchExtensions requires each listed extension with an equal value.
func MatchExtensions(ext map[string]any) MatcherOption {
	return func(m *Matcher) { m.Extensions = maps.Clone(ext) }
}

// MatchJSONPath requires every JSONPath expression to select the given value.
func MatchJSONPath(conditions map[string]any) MatcherOption {
	return func(m *Matcher) { m.JSONPath = maps.Clone(conditions) }
}
