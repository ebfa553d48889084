package config

import (
	"testing"

	"github.com/getmockd/httpmock/pkg/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequestEnv(t *testing.T) {
	req, err := mock.NewRequest("post", "https://api.example.org:8443/v1/items?tag=a&tag=b", []byte(`{"a":1}`))
	require.NoError(t, err)
	req.Header["X-Trace"] = []string{"1", "2"}
	req.Extensions = map[string]any{"tenant": "acme"}

	env := NewRequestEnv(req)
	assert.Equal(t, "POST", env.Method)
	assert.Equal(t, "https", env.Scheme)
	assert.Equal(t, "api.example.org", env.Host)
	assert.Equal(t, "8443", env.Port)
	assert.Equal(t, "/v1/items", env.Path)
	assert.Equal(t, []string{"a", "b"}, env.Query["tag"])
	assert.Equal(t, "1, 2", env.Headers["X-Trace"])
	assert.Equal(t, `{"a":1}`, env.Body)
	assert.Equal(t, "acme", env.Extensions["tenant"])
}

func TestShouldMockProgram(t *testing.T) {
	tests := []struct {
		name string
		expr string
		url  string
		want bool
	}{
		{"host comparison", `host != "localhost"`, "http://localhost/x", false},
		{"host comparison other host", `host != "localhost"`, "http://example.org/x", true},
		{"path prefix", `!(path startsWith "/health")`, "http://example.org/healthz", false},
		{"header lookup", `headers["X-Mock"] == "yes"`, "http://example.org", true},
		{"query lookup", `"debug" in query`, "http://example.org/?debug=1", true},
		{"method", `method in ["GET", "HEAD"]`, "http://example.org", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := CompileShouldMock(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.expr, p.String())

			req, err := mock.NewRequest("POST", tt.url, nil)
			require.NoError(t, err)
			req.Header["X-Mock"] = []string{"yes"}

			got, err := p.Eval(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileShouldMock_Invalid(t *testing.T) {
	_, err := CompileShouldMock(`unknownField == 1`)
	require.Error(t, err)

	_, err = CompileShouldMock(`method`)
	require.Error(t, err)
}
