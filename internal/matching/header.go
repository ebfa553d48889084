package matching

import (
	"net/http"
	"strings"
)

// HeaderValue returns the values stored under exactly name, joined with
// ", ". The lookup does not canonicalize name. The second result reports
// whether the header is present at all.
func HeaderValue(headers http.Header, name string) (string, bool) {
	values, ok := headers[name]
	if !ok {
		return "", false
	}
	return strings.Join(values, ", "), true
}

// MatchHeader checks that the header exists under exactly name with
// exactly the expected value.
func MatchHeader(name, expected string, headers http.Header) bool {
	actual, ok := HeaderValue(headers, name)
	return ok && actual == expected
}
