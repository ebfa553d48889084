package engine

import (
	"testing"

	"github.com/getmockd/httpmock/pkg/config"
	"github.com/getmockd/httpmock/pkg/logging"
	"github.com/getmockd/httpmock/pkg/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassthroughFilter(t *testing.T) {
	tests := []struct {
		name string
		opts []config.Option
		url  string
		want bool
	}{
		{"default intercepts everything", nil, "https://example.org", true},
		{"passthrough host", []config.Option{config.WithPassthroughHosts("localhost")}, "http://localhost:8080/x", false},
		{"passthrough host with port", []config.Option{config.WithPassthroughHosts("localhost:9*")}, "http://localhost:9090", false},
		{"passthrough host port mismatch", []config.Option{config.WithPassthroughHosts("localhost:9*")}, "http://localhost:8080", true},
		{"passthrough wildcard", []config.Option{config.WithPassthroughHosts("*.svc.cluster.local")}, "http://api.svc.cluster.local", false},
		{"mocked hosts allow list", []config.Option{config.WithMockedHosts("api.example.org")}, "https://api.example.org/v1", true},
		{"outside mocked hosts", []config.Option{config.WithMockedHosts("api.example.org")}, "https://cdn.example.org", false},
		{"passthrough wins over mocked", []config.Option{config.WithMockedHosts("*.example.org"), config.WithPassthroughHosts("cdn.example.org")}, "https://cdn.example.org", false},
		{"expression rejects", []config.Option{config.WithShouldMockExpr(`path != "/health"`)}, "https://example.org/health", false},
		{"expression accepts", []config.Option{config.WithShouldMockExpr(`path != "/health"`)}, "https://example.org/users", true},
		{"expression error intercepts", []config.Option{config.WithShouldMockExpr(`int(body) > 0`)}, "https://example.org", true},
		{"predicate rejects", []config.Option{config.WithShouldMock(func(r *mock.Request) bool { return r.Method != "GET" })}, "https://example.org", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewPassthroughFilter(config.DefaultOptions().Apply(tt.opts...), logging.Nop())
			require.NoError(t, err)

			req, err := mock.NewRequest("GET", tt.url, []byte("not a number"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.ShouldIntercept(req))
		})
	}
}

func TestPassthroughFilter_PredicateAndExpressionCombine(t *testing.T) {
	f, err := NewPassthroughFilter(config.DefaultOptions().Apply(
		config.WithShouldMock(func(r *mock.Request) bool { return r.Method == "POST" }),
		config.WithShouldMockExpr(`host == "example.org"`),
	), logging.Nop())
	require.NoError(t, err)

	post, err := mock.NewRequest("POST", "https://example.org", nil)
	require.NoError(t, err)
	assert.True(t, f.ShouldIntercept(post))

	other, err := mock.NewRequest("POST", "https://other.org", nil)
	require.NoError(t, err)
	assert.False(t, f.ShouldIntercept(other))
}

func TestNewPassthroughFilter_InvalidExpression(t *testing.T) {
	_, err := NewPassthroughFilter(config.Options{ShouldMockExpr: "host =="}, logging.Nop())
	require.Error(t, err)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a, err := mock.NewResponseEntry(nil)
	require.NoError(t, err)
	b, err := mock.NewErrorEntry(assert.AnError)
	require.NoError(t, err)

	r.Add(a)
	r.Add(b)
	require.Equal(t, 2, r.Len())
	assert.Equal(t, []*mock.Entry{a, b}, r.All())
	assert.Equal(t, 1, b.Index)

	snap := r.Snapshot()
	a.MarkUsed()
	assert.Equal(t, 0, snap[0].UsedCount(), "snapshots do not follow later usage")
	assert.Equal(t, a.ID, snap[0].ID)

	all := r.All()
	all[0] = nil
	assert.Same(t, a, r.All()[0], "All returns a copy")

	r.Clear()
	assert.Zero(t, r.Len())
	c, err := mock.NewResponseEntry(nil)
	require.NoError(t, err)
	r.Add(c)
	assert.Equal(t, 0, c.Index)
}
