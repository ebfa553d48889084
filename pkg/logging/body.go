package logging

// MaxBodySize is the default number of body bytes included in a log record.
const MaxBodySize = 1024

// Body renders a request body for a log attribute, cut to maxSize bytes
// with a "...(truncated)" marker. If maxSize <= 0, uses MaxBodySize.
func Body(data []byte, maxSize int) string {
	if maxSize <= 0 {
		maxSize = MaxBodySize
	}
	if len(data) > maxSize {
		return string(data[:maxSize]) + "...(truncated)"
	}
	return string(data)
}
