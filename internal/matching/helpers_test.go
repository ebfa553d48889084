package matching

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/getmockd/httpmock/pkg/mock"
	"github.com/stretchr/testify/require"
)

// newTestRequest builds a request without going through net/http so that
// header names stay exactly as written.
func newTestRequest(t *testing.T, method, rawURL string, headers map[string][]string, body string) *mock.Request {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	h := http.Header{}
	for k, v := range headers {
		h[k] = v
	}
	var b []byte
	if body != "" {
		b = []byte(body)
	}
	return &mock.Request{Method: method, URL: u, Header: h, Body: b}
}

func mustProxy(t *testing.T, rawURL string) *url.URL {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return u
}
