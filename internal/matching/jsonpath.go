package matching

import (
	"encoding/json"
	"reflect"
	"sort"

	"github.com/getmockd/httpmock/pkg/mock"
	"github.com/ohler55/ojg/jp"
)

// JSONPathResult contains the results of JSONPath matching.
type JSONPathResult struct {
	// Score is ScoreJSONPathCondition per satisfied condition.
	Score int
	// Failed lists the expressions that were not satisfied, sorted.
	Failed []string
}

// Matched reports whether every condition was satisfied.
func (r JSONPathResult) Matched() bool {
	return len(r.Failed) == 0
}

// MatchJSONPath evaluates JSONPath conditions against a JSON body.
// Each condition maps an expression to the value it must select; when the
// expression selects several values one equal value is enough. The expected
// value may also be mock.Any (anything selected) or {"exists": bool}.
// A body that is not valid JSON fails every condition.
func MatchJSONPath(conditions map[string]any, body []byte) JSONPathResult {
	var result JSONPathResult
	if len(conditions) == 0 {
		return result
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		for path := range conditions {
			result.Failed = append(result.Failed, path)
		}
		sort.Strings(result.Failed)
		return result
	}

	for path, expected := range conditions {
		if matchSingleJSONPath(path, expected, data) {
			result.Score += ScoreJSONPathCondition
		} else {
			result.Failed = append(result.Failed, path)
		}
	}
	sort.Strings(result.Failed)
	return result
}

// matchSingleJSONPath evaluates a single JSONPath condition.
func matchSingleJSONPath(path string, expected, data any) bool {
	expr, err := jp.ParseString(path)
	if err != nil {
		return false
	}
	results := expr.Get(data)

	if exists, ok := existenceCheck(expected); ok {
		return (len(results) > 0) == exists
	}
	if mock.IsAny(expected) {
		return len(results) > 0
	}
	for _, r := range results {
		if valuesEqual(r, expected) {
			return true
		}
	}
	return false
}

// existenceCheck recognizes {"exists": bool} expectations.
func existenceCheck(expected any) (exists, ok bool) {
	m, isMap := expected.(map[string]any)
	if !isMap || len(m) != 1 {
		return false, false
	}
	b, isBool := m["exists"].(bool)
	return b, isBool
}

// valuesEqual compares two values for equality, coercing numbers so that a
// decoded float64 equals the int written in a matcher.
func valuesEqual(actual, expected any) bool {
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}
	if reflect.DeepEqual(actual, expected) {
		return true
	}
	actualNum, actualIsNum := toFloat64(actual)
	expectedNum, expectedIsNum := toFloat64(expected)
	if actualIsNum && expectedIsNum {
		return actualNum == expectedNum
	}
	// Composite JSON values: compare the normalized forms.
	switch expected.(type) {
	case map[string]any, []any:
		return MatchJSONValue(expected, actual)
	}
	return false
}

// MatchJSONValue compares an already decoded JSON value with an expected
// Go value, honouring mock.Any.
func MatchJSONValue(expected, actual any) bool {
	n, err := normalizeJSON(expected)
	if err != nil {
		return false
	}
	return jsonEqual(n, actual)
}

// toFloat64 attempts to convert a value to float64.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case int16:
		return float64(n), true
	case int8:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint8:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
