package testing

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"github.com/getmockd/httpmock/internal/matching"
	"github.com/getmockd/httpmock/pkg/mock"
	"github.com/ohler55/ojg/jp"
)

// AssertCalled asserts that at least one intercepted request satisfies
// the criteria.
func (m *Mock) AssertCalled(t testing.TB, opts ...mock.MatcherOption) {
	t.Helper()

	if len(m.GetRequests(opts...)) == 0 {
		t.Errorf("expected a request matching %s, but none was sent", describeCriteria(opts))
	}
}

// AssertCalledTimes asserts that exactly n intercepted requests satisfy the
// criteria.
func (m *Mock) AssertCalledTimes(t testing.TB, n int, opts ...mock.MatcherOption) {
	t.Helper()

	if count := len(m.GetRequests(opts...)); count != n {
		t.Errorf("expected %d requests matching %s, but got %d", n, describeCriteria(opts), count)
	}
}

// AssertNotCalled asserts that no intercepted request satisfies the
// criteria.
func (m *Mock) AssertNotCalled(t testing.TB, opts ...mock.MatcherOption) {
	t.Helper()

	if count := len(m.GetRequests(opts...)); count > 0 {
		t.Errorf("expected no request matching %s, but got %d", describeCriteria(opts), count)
	}
}

func describeCriteria(opts []mock.MatcherOption) string {
	return strings.TrimPrefix(matching.Describe(mock.NewMatcher(opts...), false), "Match ")
}

// AssertJSONBody asserts that the request body matches the expected JSON.
// The expected value can be a string, []byte, or any struct/map that will be JSON encoded.
func AssertJSONBody(t testing.TB, req *mock.Request, expected any) {
	t.Helper()

	var expectedJSON, actualJSON any

	switch v := expected.(type) {
	case string:
		if err := json.Unmarshal([]byte(v), &expectedJSON); err != nil {
			t.Errorf("failed to parse expected JSON: %v", err)
			return
		}
	case []byte:
		if err := json.Unmarshal(v, &expectedJSON); err != nil {
			t.Errorf("failed to parse expected JSON: %v", err)
			return
		}
	default:
		// Marshal and unmarshal to normalize
		data, err := json.Marshal(v)
		if err != nil {
			t.Errorf("failed to marshal expected value: %v", err)
			return
		}
		if err := json.Unmarshal(data, &expectedJSON); err != nil {
			t.Errorf("failed to parse expected JSON: %v", err)
			return
		}
	}

	if err := json.Unmarshal(req.Body, &actualJSON); err != nil {
		t.Errorf("request body is not valid JSON: %v\nbody: %s", err, req.Body)
		return
	}

	if !reflect.DeepEqual(actualJSON, expectedJSON) {
		expectedBytes, _ := json.MarshalIndent(expectedJSON, "", "  ")
		actualBytes, _ := json.MarshalIndent(actualJSON, "", "  ")
		t.Errorf("request body does not match expected JSON\nexpected:\n%s\nactual:\n%s",
			string(expectedBytes), string(actualBytes))
	}
}

// AssertHeader asserts that the request carried the header with the
// expected value. Repeated values are joined with ", ".
func AssertHeader(t testing.TB, req *mock.Request, name, expected string) {
	t.Helper()

	actual, ok := matching.HeaderValue(req.Header, name)
	if !ok {
		actual, ok = matching.HeaderValue(req.Header, http.CanonicalHeaderKey(name))
	}
	if !ok {
		t.Errorf("request does not have header %q", name)
		return
	}
	if actual != expected {
		t.Errorf("header %q value mismatch\nexpected: %q\nactual: %q", name, expected, actual)
	}
}

// AssertQueryParam asserts that the request URL carried the query
// parameter with the expected first value.
func AssertQueryParam(t testing.TB, req *mock.Request, key, expected string) {
	t.Helper()

	values, ok := req.URL.Query()[key]
	if !ok {
		t.Errorf("request does not have query parameter %q", key)
		return
	}
	if values[0] != expected {
		t.Errorf("query parameter %q value mismatch\nexpected: %q\nactual: %q", key, expected, values[0])
	}
}

// JSONField extracts a value from the request body JSON. path is a JSONPath
// expression, or a dotted field name such as "user.name". Returns nil if
// the body is not valid JSON or nothing is found.
func JSONField(req *mock.Request, path string) any {
	if !strings.HasPrefix(path, "$") {
		path = "$." + path
	}
	x, err := jp.ParseString(path)
	if err != nil {
		return nil
	}
	var data any
	if err := json.Unmarshal(req.Body, &data); err != nil {
		return nil
	}
	results := x.Get(data)
	if len(results) == 0 {
		return nil
	}
	return results[0]
}

// AssertJSONField asserts that a JSON field in the request body has the
// expected value. Numbers compare by value.
func AssertJSONField(t testing.TB, req *mock.Request, path string, expected any) {
	t.Helper()

	actual := JSONField(req, path)
	if actual == nil {
		t.Errorf("JSON field %q not found in request body: %s", path, req.Body)
		return
	}
	if !matching.MatchJSONValue(expected, actual) {
		t.Errorf("JSON field %q mismatch\nexpected: %v (%T)\nactual: %v (%T)",
			path, expected, expected, actual, actual)
	}
}
