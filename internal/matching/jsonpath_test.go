package matching

import (
	"testing"

	"github.com/getmockd/httpmock/pkg/mock"
	"github.com/stretchr/testify/assert"
)

func TestMatchJSONPath(t *testing.T) {
	tests := []struct {
		name       string
		conditions map[string]any
		body       string
		wantScore  int
		wantMatch  bool
	}{
		{"string field", map[string]any{"$.status": "active"}, `{"status": "active", "name": "test"}`, 15, true},
		{"string mismatch", map[string]any{"$.status": "active"}, `{"status": "inactive"}`, 0, false},
		{"int expected matches json number", map[string]any{"$.count": 42}, `{"count": 42}`, 15, true},
		{"float expected", map[string]any{"$.price": 19.99}, `{"price": 19.99}`, 15, true},
		{"string number does not match number", map[string]any{"$.count": "42"}, `{"count": 42}`, 0, false},
		{"null field", map[string]any{"$.deleted": nil}, `{"deleted": null}`, 15, true},
		{"nested path", map[string]any{"$.user.address.city": "NYC"}, `{"user": {"address": {"city": "NYC"}}}`, 15, true},
		{"array index", map[string]any{"$.items[1].id": 2}, `{"items": [{"id": 1}, {"id": 2}]}`, 15, true},
		{"wildcard any element", map[string]any{"$.items[*].id": 2}, `{"items": [{"id": 1}, {"id": 2}]}`, 15, true},
		{"all conditions", map[string]any{"$.a": 1, "$.b": 2}, `{"a": 1, "b": 2}`, 30, true},
		{"one condition fails keeps partial score", map[string]any{"$.a": 1, "$.b": 2}, `{"a": 1, "b": 3}`, 15, false},
		{"missing field", map[string]any{"$.missing": "value"}, `{"status": "active"}`, 0, false},
		{"exists true present", map[string]any{"$.token": map[string]any{"exists": true}}, `{"token": "abc"}`, 15, true},
		{"exists true missing", map[string]any{"$.token": map[string]any{"exists": true}}, `{}`, 0, false},
		{"exists false missing", map[string]any{"$.deleted": map[string]any{"exists": false}}, `{}`, 15, true},
		{"exists false present", map[string]any{"$.deleted": map[string]any{"exists": false}}, `{"deleted": 1}`, 0, false},
		{"any wildcard present", map[string]any{"$.id": mock.Any}, `{"id": "x"}`, 15, true},
		{"any wildcard missing", map[string]any{"$.id": mock.Any}, `{}`, 0, false},
		{"composite value", map[string]any{"$.user": map[string]any{"name": "a", "age": mock.Any}}, `{"user": {"name": "a", "age": 3}}`, 15, true},
		{"plain text body", map[string]any{"$.field": "value"}, "not json", 0, false},
		{"empty body", map[string]any{"$.field": "value"}, "", 0, false},
		{"invalid expression", map[string]any{"$[?(": "value"}, `{"field": "value"}`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MatchJSONPath(tt.conditions, []byte(tt.body))
			assert.Equal(t, tt.wantScore, result.Score)
			assert.Equal(t, tt.wantMatch, result.Matched())
		})
	}
}

func TestMatchJSONPath_FailedAreSorted(t *testing.T) {
	result := MatchJSONPath(map[string]any{"$.b": 1, "$.a": 1, "$.c": 3}, []byte(`{"c": 3}`))
	assert.Equal(t, []string{"$.a", "$.b"}, result.Failed)
}

func TestMatchJSONPath_EmptyConditions(t *testing.T) {
	result := MatchJSONPath(nil, []byte(`{"field": "value"}`))
	assert.Equal(t, 0, result.Score)
	assert.True(t, result.Matched())
}
