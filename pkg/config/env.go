package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
)

// Environment variable names
const (
	EnvConfig                          = "HTTPMOCK_CONFIG"
	EnvAssertAllResponsesWereRequested = "HTTPMOCK_ASSERT_ALL_RESPONSES_WERE_REQUESTED"
	EnvAssertAllRequestsWereExpected   = "HTTPMOCK_ASSERT_ALL_REQUESTS_WERE_EXPECTED"
	EnvCanSendAlreadyMatchedResponses  = "HTTPMOCK_CAN_SEND_ALREADY_MATCHED_RESPONSES"
	EnvLogLevel                        = "HTTPMOCK_LOG_LEVEL"
	EnvLogFormat                       = "HTTPMOCK_LOG_FORMAT"
)

// envVarPattern matches ${VAR} and ${VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnvVars expands environment variables in the input string.
// Supports ${VAR_NAME} and ${VAR_NAME:-default} syntax. An empty variable
// counts as unset.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		submatch := envVarPattern.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}
		if val := os.Getenv(submatch[1]); val != "" {
			return val
		}
		if len(submatch) >= 3 {
			return submatch[2]
		}
		return ""
	})
}

// ApplyEnv overrides o with the HTTPMOCK_* variables that are set.
// Unparseable booleans are reported, not ignored.
func ApplyEnv(o *Options) error {
	bools := []struct {
		name   string
		target *bool
	}{
		{EnvAssertAllResponsesWereRequested, &o.AssertAllResponsesWereRequested},
		{EnvAssertAllRequestsWereExpected, &o.AssertAllRequestsWereExpected},
		{EnvCanSendAlreadyMatchedResponses, &o.CanSendAlreadyMatchedResponses},
	}
	for _, b := range bools {
		v := os.Getenv(b.name)
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", b.name, err)
		}
		*b.target = parsed
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		o.Log.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		o.Log.Format = v
	}
	return nil
}

// Resolve builds the effective options: defaults, then the options file
// named by HTTPMOCK_CONFIG, then the environment, then opts.
func Resolve(opts ...Option) (Options, error) {
	o := DefaultOptions()
	if path := os.Getenv(EnvConfig); path != "" {
		loaded, err := LoadOptionsFile(path)
		if err != nil {
			return Options{}, err
		}
		o = loaded
	}
	if err := ApplyEnv(&o); err != nil {
		return Options{}, err
	}
	o = o.Apply(opts...)
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}
