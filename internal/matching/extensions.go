package matching

// MatchExtensions checks that every expected key is present with an equal
// value. Keys the matcher does not list are ignored.
func MatchExtensions(expected, actual map[string]any) bool {
	for k, v := range expected {
		a, ok := actual[k]
		if !ok || !valuesEqual(a, v) {
			return false
		}
	}
	return true
}
