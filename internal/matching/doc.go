// Package matching decides whether a mock.Request satisfies a mock.Matcher.
//
// Every criterion set on a matcher must hold; unset criteria are wildcards.
// The supported criteria are:
//
//   - method: case-insensitive comparison
//   - URL: scheme, host and path equality plus query parameters compared
//     per key (value order significant for repeated keys), or a regular
//     expression that must match the whole URL
//   - proxy URL: the URL semantics applied to the upstream proxy
//   - headers: exact names and values, repeated values joined with ", "
//   - content: byte-for-byte body equality
//   - JSON: structural equality of the decoded body, mock.Any as wildcard
//   - multipart: decoded form fields and file parts
//   - extensions: request-scoped metadata equality
//   - JSONPath: expressions evaluated with github.com/ohler55/ojg
//
// Besides the boolean Match, the package scores matches and produces a
// per-field Breakdown so that a request nobody answered can be explained
// against the closest registered matcher. Score constants live in
// scores.go. Describe and DescribeRequest render the texts used in
// no-match and teardown diagnostics.
package matching
