package mock

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/ohler55/ojg/jp"
)

// ValidationError represents a validation failure with context.
type ValidationError struct {
	Field   string
	Message string
	// Kind is ErrInvalidMatcher or ErrInvalidMatcherCombination.
	Kind error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is reach the sentinel kind.
func (e *ValidationError) Unwrap() error {
	if e.Kind == nil {
		return ErrInvalidMatcher
	}
	return e.Kind
}

// headerNameRegex validates HTTP header names (RFC 7230).
var headerNameRegex = regexp.MustCompile(`^[A-Za-z0-9!#$%&'*+\-.^_\x60|~]+$`)

// Validate checks that the criteria can be combined and evaluated.
func (m *Matcher) Validate() error {
	var bodyCriteria []string
	if m.Content != nil {
		bodyCriteria = append(bodyCriteria, "content")
	}
	if m.JSON != nil {
		bodyCriteria = append(bodyCriteria, "json")
	}
	if len(m.Files) > 0 || len(m.Data) > 0 {
		bodyCriteria = append(bodyCriteria, "files")
	}
	if len(bodyCriteria) > 1 {
		return &ValidationError{
			Field:   "body",
			Message: "only one way of matching against the body can be provided (" + strings.Join(bodyCriteria, ", ") + ")",
			Kind:    ErrInvalidMatcherCombination,
		}
	}
	if len(m.Data) > 0 && len(m.Files) == 0 {
		return &ValidationError{
			Field:   "data",
			Message: "multipart data can only be matched together with files",
			Kind:    ErrInvalidMatcher,
		}
	}

	if m.URL != "" && m.URLPattern != nil {
		return &ValidationError{Field: "url", Message: "url and urlPattern are mutually exclusive", Kind: ErrInvalidMatcherCombination}
	}
	if m.ProxyURL != "" && m.ProxyURLPattern != nil {
		return &ValidationError{Field: "proxyUrl", Message: "proxyUrl and proxyUrlPattern are mutually exclusive", Kind: ErrInvalidMatcherCombination}
	}
	if m.URL != "" {
		if _, err := url.Parse(m.URL); err != nil {
			return &ValidationError{Field: "url", Message: err.Error(), Kind: ErrInvalidMatcher}
		}
	}
	if m.ProxyURL != "" {
		if _, err := url.Parse(m.ProxyURL); err != nil {
			return &ValidationError{Field: "proxyUrl", Message: err.Error(), Kind: ErrInvalidMatcher}
		}
	}

	for name := range m.Headers {
		if !headerNameRegex.MatchString(name) {
			return &ValidationError{Field: "headers", Message: fmt.Sprintf("invalid header name: %q", name), Kind: ErrInvalidMatcher}
		}
	}

	for path := range m.JSONPath {
		if _, err := jp.ParseString(path); err != nil {
			return &ValidationError{Field: "jsonPath", Message: fmt.Sprintf("invalid JSONPath %q: %v", path, err), Kind: ErrInvalidMatcher}
		}
	}
	return nil
}
