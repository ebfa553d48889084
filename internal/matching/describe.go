package matching

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/getmockd/httpmock/pkg/mock"
)

// Describe renders a matcher for diagnostics, for example
// `Match GET request on https://example.org with {"X-Id": "1"} headers`.
// Used matchers are prefixed with "Already matched".
func Describe(m *mock.Matcher, used bool) string {
	var b strings.Builder
	if used {
		b.WriteString("Already matched")
	} else {
		b.WriteString("Match")
	}
	method := "any"
	if m != nil && m.Method != "" {
		method = strings.ToUpper(m.Method)
	}
	b.WriteString(" " + method + " request")
	if m == nil {
		return b.String()
	}

	switch {
	case m.URLPattern != nil:
		b.WriteString(" on " + m.URLPattern.String())
	case m.URL != "":
		b.WriteString(" on " + m.URL)
	}

	var extra []string
	if len(m.Headers) > 0 {
		extra = append(extra, formatStringMap(m.Headers)+" headers")
	}
	if m.Content != nil {
		extra = append(extra, fmt.Sprintf("%q body", m.Content))
	}
	if m.JSON != nil {
		extra = append(extra, renderJSON(m.JSON)+" json body")
	}
	switch {
	case m.ProxyURLPattern != nil:
		extra = append(extra, m.ProxyURLPattern.String()+" proxy URL")
	case m.ProxyURL != "":
		extra = append(extra, m.ProxyURL+" proxy URL")
	}
	if len(m.Data) > 0 {
		extra = append(extra, formatStringMap(m.Data)+" multipart data")
	}
	if len(m.Files) > 0 {
		extra = append(extra, formatFiles(m.Files)+" files")
	}
	if len(m.JSONPath) > 0 {
		extra = append(extra, formatAnyMap(m.JSONPath)+" JSONPath")
	}
	if len(m.Extensions) > 0 {
		extra = append(extra, formatAnyMap(m.Extensions)+" extensions")
	}
	if len(extra) > 0 {
		b.WriteString(" with " + strings.Join(extra, " and "))
	}
	return b.String()
}

// DescribeRequest renders a request for diagnostics. Only the parts that at
// least one of the given matchers inspects are shown: the headers they name,
// the body, the proxy and the extensions they name.
func DescribeRequest(r *mock.Request, matchers []*mock.Matcher) string {
	var b strings.Builder
	b.WriteString(r.Method + " request on " + displayURL(r.URL))

	expectedHeaders := map[string]bool{}
	expectedExtensions := map[string]bool{}
	var expectBody, expectProxy bool
	for _, m := range matchers {
		if m == nil {
			continue
		}
		for name := range m.Headers {
			expectedHeaders[name] = true
		}
		for name := range m.Extensions {
			expectedExtensions[name] = true
		}
		expectBody = expectBody || m.ExpectsBody()
		expectProxy = expectProxy || m.ExpectsProxy()
	}

	var extra []string
	if len(expectedHeaders) > 0 {
		present := map[string]string{}
		for name := range expectedHeaders {
			if v, ok := HeaderValue(r.Header, name); ok {
				present[name] = v
			}
		}
		extra = append(extra, formatStringMap(present)+" headers")
	}
	if expectBody {
		extra = append(extra, fmt.Sprintf("%q body", r.Body))
	}
	if expectProxy {
		if r.ProxyURL != nil {
			extra = append(extra, r.ProxyURL.String()+" proxy URL")
		} else {
			extra = append(extra, "no proxy URL")
		}
	}
	if len(expectedExtensions) > 0 {
		present := map[string]any{}
		for name := range expectedExtensions {
			if v, ok := r.Extensions[name]; ok {
				present[name] = v
			}
		}
		extra = append(extra, formatAnyMap(present)+" extensions")
	}
	if len(extra) > 0 {
		b.WriteString(" with " + strings.Join(extra, " and "))
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

func formatStringMap(m map[string]string) string {
	parts := make([]string, 0, len(m))
	for _, k := range sortedKeys(m) {
		parts = append(parts, fmt.Sprintf("%q: %q", k, m[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func formatAnyMap(m map[string]any) string {
	parts := make([]string, 0, len(m))
	for _, k := range sortedKeys(m) {
		parts = append(parts, fmt.Sprintf("%q: %s", k, renderJSON(m[k])))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func formatFiles(files map[string]mock.File) string {
	parts := make([]string, 0, len(files))
	for _, k := range sortedKeys(files) {
		f := files[k]
		parts = append(parts, fmt.Sprintf("%q: (%q, %q)", k, f.Filename, f.Content))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// renderJSON prints v as compact JSON, falling back to %v for values
// encoding/json cannot handle.
func renderJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
