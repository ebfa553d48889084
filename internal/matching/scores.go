package matching

// Match score constants. Higher scores indicate more specific matches; they
// only rank near misses, selection itself is decided by registration order.
const (
	// ScoreAny is the base score of a matcher without criteria.
	ScoreAny = 1

	// ScoreMethod is the score for a method match.
	ScoreMethod = 10

	// ScoreURL is the score for an exact URL match.
	ScoreURL = 15

	// ScoreURLPattern is the score for a URL regular expression match.
	ScoreURLPattern = 14

	// ScoreProxyURL is the score for a proxy URL match, exact or pattern.
	ScoreProxyURL = 5

	// ScoreHeader is the score for each header match.
	ScoreHeader = 10

	// ScoreExtension is the score for each extension match.
	ScoreExtension = 5
)

// Match score constants for body criteria.
const (
	// ScoreContent is the score for a byte-for-byte body match.
	ScoreContent = 25

	// ScoreJSON is the score for a structural JSON body match.
	ScoreJSON = 25

	// ScoreMultipart is the score for a multipart body match.
	ScoreMultipart = 25

	// ScoreJSONPathCondition is the score per matched JSONPath condition.
	ScoreJSONPathCondition = 15
)
