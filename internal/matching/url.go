package matching

import (
	"maps"
	"net/url"
	"regexp"
	"slices"
	"strings"
)

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
}

// MatchURL reports whether actual designates the same resource as expected.
// Query parameters are compared per key: the order of different keys does
// not matter, the order of repeated values for one key does.
func MatchURL(expected string, actual *url.URL) bool {
	if actual == nil {
		return false
	}
	exp, err := url.Parse(expected)
	if err != nil {
		return false
	}
	return sameResource(exp, actual) && sameQuery(exp.RawQuery, actual.RawQuery)
}

// MatchURLPattern reports whether re matches the whole serialized URL.
func MatchURLPattern(re *regexp.Regexp, actual *url.URL) bool {
	if re == nil || actual == nil {
		return false
	}
	anchored, err := regexp.Compile(`^(?:` + re.String() + `)$`)
	if err != nil {
		return false
	}
	return anchored.MatchString(actual.String())
}

func sameResource(a, b *url.URL) bool {
	return strings.EqualFold(a.Scheme, b.Scheme) &&
		strings.EqualFold(a.Hostname(), b.Hostname()) &&
		effectivePort(a) == effectivePort(b) &&
		a.User.String() == b.User.String() &&
		normalizedPath(a) == normalizedPath(b) &&
		a.Fragment == b.Fragment
}

func sameQuery(a, b string) bool {
	qa, errA := url.ParseQuery(a)
	qb, errB := url.ParseQuery(b)
	if errA != nil || errB != nil {
		// ParseQuery skips pairs it cannot decode; compare the raw text instead.
		qa, qb = rawQuery(a), rawQuery(b)
	}
	return maps.EqualFunc(qa, qb, slices.Equal[[]string])
}

// rawQuery groups the "&"-separated pairs of q by key without unescaping.
func rawQuery(q string) map[string][]string {
	out := map[string][]string{}
	for pair := range strings.SplitSeq(q, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		out[key] = append(out[key], value)
	}
	return out
}

func effectivePort(u *url.URL) string {
	if p := u.Port(); p != "" {
		return p
	}
	return defaultPorts[strings.ToLower(u.Scheme)]
}

func normalizedPath(u *url.URL) string {
	p := u.EscapedPath()
	if p == "" && u.Host != "" {
		return "/"
	}
	return p
}

// displayURL renders u for diagnostics, dropping a lone "/" path.
func displayURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	if u.Path == "/" && u.RawPath == "" {
		c := *u
		c.Path = ""
		return c.String()
	}
	return u.String()
}
