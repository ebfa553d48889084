package matching

import (
	"strings"

	"github.com/getmockd/httpmock/pkg/mock"
)

// Match reports whether every criterion set on m holds for r. A nil or
// empty matcher matches every request.
func Match(m *mock.Matcher, r *mock.Request) bool {
	return MatchScore(m, r) > 0
}

// MatchScore calculates the match score for a request against a matcher.
// Returns 0 if there's no match, higher scores indicate more specific
// matchers.
func MatchScore(m *mock.Matcher, r *mock.Request) int {
	if m == nil {
		return ScoreAny
	}
	score := ScoreAny
	for _, f := range evaluate(m, r, false) {
		if !f.Matched {
			return 0
		}
		score += f.Score
	}
	return score
}

// MatchMethod checks if the request method matches.
func MatchMethod(expected, actual string) bool {
	return strings.EqualFold(expected, actual)
}

// criterion is one matcher field: whether it is set and how it scores.
type criterion struct {
	field string
	isSet func(m *mock.Matcher) bool
	check func(m *mock.Matcher, r *mock.Request) FieldResult
}

// criteria are evaluated in order; cheap checks come first so that Match
// rarely decodes a body.
var criteria = []criterion{
	{"method", func(m *mock.Matcher) bool { return m.Method != "" }, checkMethod},
	{"url", func(m *mock.Matcher) bool { return m.URL != "" || m.URLPattern != nil }, checkURL},
	{"proxyUrl", func(m *mock.Matcher) bool { return m.ExpectsProxy() }, checkProxyURL},
	{"headers", func(m *mock.Matcher) bool { return len(m.Headers) > 0 }, checkHeaders},
	{"extensions", func(m *mock.Matcher) bool { return len(m.Extensions) > 0 }, checkExtensions},
	{"content", func(m *mock.Matcher) bool { return m.Content != nil }, checkContent},
	{"json", func(m *mock.Matcher) bool { return m.JSON != nil }, checkJSON},
	{"multipart", func(m *mock.Matcher) bool { return len(m.Files) > 0 || len(m.Data) > 0 }, checkMultipart},
	{"jsonPath", func(m *mock.Matcher) bool { return len(m.JSONPath) > 0 }, checkJSONPath},
}

// evaluate checks every set criterion. Unless all is true it stops at the
// first mismatch.
func evaluate(m *mock.Matcher, r *mock.Request, all bool) []FieldResult {
	var results []FieldResult
	for _, c := range criteria {
		if !c.isSet(m) {
			continue
		}
		res := c.check(m, r)
		res.Field = c.field
		results = append(results, res)
		if !res.Matched && !all {
			break
		}
	}
	return results
}

func scored(matched bool, score int) int {
	if matched {
		return score
	}
	return 0
}

func checkMethod(m *mock.Matcher, r *mock.Request) FieldResult {
	matched := MatchMethod(m.Method, r.Method)
	return FieldResult{
		Matched:  matched,
		Score:    scored(matched, ScoreMethod),
		MaxScore: ScoreMethod,
		Expected: strings.ToUpper(m.Method),
		Actual:   r.Method,
	}
}

func checkURL(m *mock.Matcher, r *mock.Request) FieldResult {
	actual := ""
	if r.URL != nil {
		actual = r.URL.String()
	}
	if m.URLPattern != nil {
		matched := MatchURLPattern(m.URLPattern, r.URL)
		return FieldResult{
			Matched:  matched,
			Score:    scored(matched, ScoreURLPattern),
			MaxScore: ScoreURLPattern,
			Expected: m.URLPattern.String(),
			Actual:   actual,
		}
	}
	matched := MatchURL(m.URL, r.URL)
	return FieldResult{
		Matched:  matched,
		Score:    scored(matched, ScoreURL),
		MaxScore: ScoreURL,
		Expected: m.URL,
		Actual:   actual,
	}
}

func checkProxyURL(m *mock.Matcher, r *mock.Request) FieldResult {
	actual := "(no proxy)"
	if r.ProxyURL != nil {
		actual = r.ProxyURL.String()
	}
	var matched bool
	var expected string
	if m.ProxyURLPattern != nil {
		matched = MatchURLPattern(m.ProxyURLPattern, r.ProxyURL)
		expected = m.ProxyURLPattern.String()
	} else {
		matched = MatchURL(m.ProxyURL, r.ProxyURL)
		expected = m.ProxyURL
	}
	return FieldResult{
		Matched:  matched,
		Score:    scored(matched, ScoreProxyURL),
		MaxScore: ScoreProxyURL,
		Expected: expected,
		Actual:   actual,
	}
}

func checkHeaders(m *mock.Matcher, r *mock.Request) FieldResult {
	res := FieldResult{Matched: true, MaxScore: len(m.Headers) * ScoreHeader}
	var details []HeaderDetail
	for _, name := range sortedKeys(m.Headers) {
		expected := m.Headers[name]
		matched := MatchHeader(name, expected, r.Header)
		actual, present := HeaderValue(r.Header, name)
		if matched {
			res.Score += ScoreHeader
		} else {
			res.Matched = false
		}
		if !present {
			actual = "(missing)"
		}
		details = append(details, HeaderDetail{Key: name, Expected: expected, Actual: actual, Matched: matched})
	}
	res.Details = details
	return res
}

func checkExtensions(m *mock.Matcher, r *mock.Request) FieldResult {
	res := FieldResult{Matched: true, MaxScore: len(m.Extensions) * ScoreExtension}
	for _, k := range sortedKeys(m.Extensions) {
		if MatchExtensions(map[string]any{k: m.Extensions[k]}, r.Extensions) {
			res.Score += ScoreExtension
		} else {
			res.Matched = false
		}
	}
	res.Expected = m.Extensions
	res.Actual = r.Extensions
	return res
}

func checkContent(m *mock.Matcher, r *mock.Request) FieldResult {
	matched := MatchContent(m.Content, r.Body)
	return FieldResult{
		Matched:  matched,
		Score:    scored(matched, ScoreContent),
		MaxScore: ScoreContent,
		Expected: truncate(string(m.Content), 200),
		Actual:   truncate(string(r.Body), 200),
	}
}

func checkJSON(m *mock.Matcher, r *mock.Request) FieldResult {
	matched := MatchJSON(m.JSON, r.Body)
	return FieldResult{
		Matched:  matched,
		Score:    scored(matched, ScoreJSON),
		MaxScore: ScoreJSON,
		Expected: m.JSON,
		Actual:   truncate(string(r.Body), 200),
	}
}

func checkMultipart(m *mock.Matcher, r *mock.Request) FieldResult {
	matched := MatchMultipart(m.Data, m.Files, r.Header, r.Body)
	return FieldResult{
		Matched:  matched,
		Score:    scored(matched, ScoreMultipart),
		MaxScore: ScoreMultipart,
		Expected: sortedKeys(m.Files),
	}
}

func checkJSONPath(m *mock.Matcher, r *mock.Request) FieldResult {
	jpResult := MatchJSONPath(m.JSONPath, r.Body)
	return FieldResult{
		Matched:  jpResult.Matched(),
		Score:    jpResult.Score,
		MaxScore: len(m.JSONPath) * ScoreJSONPathCondition,
		Expected: m.JSONPath,
		Details:  jpResult.Failed,
	}
}
