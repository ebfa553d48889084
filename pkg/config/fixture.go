package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/getmockd/httpmock/pkg/mock"
	"gopkg.in/yaml.v3"
)

// AnyPlaceholder stands for mock.Any inside fixture JSON values.
const AnyPlaceholder = "<ANY>"

// Fixture is the declarative form of one entry.
type Fixture struct {
	Name     string           `yaml:"name,omitempty"`
	Match    *FixtureMatch    `yaml:"match,omitempty"`
	Response *FixtureResponse `yaml:"response,omitempty"`
	Error    string           `yaml:"error,omitempty"`
	Optional *bool            `yaml:"optional,omitempty"`
	Reusable bool             `yaml:"reusable,omitempty"`

	// Source is "file#index", filled by the loaders.
	Source string `yaml:"-"`
}

// FixtureMatch lists the criteria of a fixture.
type FixtureMatch struct {
	Method          string                 `yaml:"method,omitempty"`
	URL             string                 `yaml:"url,omitempty"`
	URLPattern      string                 `yaml:"urlPattern,omitempty"`
	ProxyURL        string                 `yaml:"proxyUrl,omitempty"`
	ProxyURLPattern string                 `yaml:"proxyUrlPattern,omitempty"`
	Headers         map[string]string      `yaml:"headers,omitempty"`
	Content         *string                `yaml:"content,omitempty"`
	JSON            any                    `yaml:"json,omitempty"`
	Data            map[string]string      `yaml:"data,omitempty"`
	Files           map[string]FixtureFile `yaml:"files,omitempty"`
	Extensions      map[string]any         `yaml:"extensions,omitempty"`
	JSONPath        map[string]any         `yaml:"jsonPath,omitempty"`
}

// FixtureFile is a multipart file part.
type FixtureFile struct {
	Filename    string `yaml:"filename"`
	Content     string `yaml:"content,omitempty"`
	ContentType string `yaml:"contentType,omitempty"`
}

// FixtureResponse is the response template of a fixture.
type FixtureResponse struct {
	Status      int               `yaml:"status,omitempty"`
	HTTPVersion string            `yaml:"httpVersion,omitempty"`
	Headers     map[string]string `yaml:"headers,omitempty"`
	Body        *string           `yaml:"body,omitempty"`
	Text        *string           `yaml:"text,omitempty"`
	HTML        *string           `yaml:"html,omitempty"`
	JSON        any               `yaml:"json,omitempty"`
	Stream      []string          `yaml:"stream,omitempty"`
}

// fixtureFile is either a single fixture or a list of fixtures.
type fixtureFile struct {
	Fixtures []Fixture
}

// UnmarshalYAML handles both the single fixture and the list format.
func (f *fixtureFile) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		return node.Decode(&f.Fixtures)
	}
	var single Fixture
	if err := node.Decode(&single); err != nil {
		return err
	}
	f.Fixtures = []Fixture{single}
	return nil
}

// FixtureError reports a fixture file that failed schema validation.
type FixtureError struct {
	Source string
	Result *SchemaValidationResult
}

func (e *FixtureError) Error() string {
	return fmt.Sprintf("%s: invalid fixture:\n%s", e.Source, e.Result.Error())
}

// ParseFixtures decodes and validates one fixture document.
func ParseFixtures(data []byte, source string) ([]Fixture, error) {
	expanded := []byte(ExpandEnvVars(string(data)))

	var doc any
	if err := yaml.Unmarshal(expanded, &doc); err != nil {
		return nil, fmt.Errorf("%s: parsing YAML: %w", source, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%s: file is empty", source)
	}
	result, err := ValidateFixtureDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	if !result.IsValid() {
		return nil, &FixtureError{Source: source, Result: result}
	}

	var file fixtureFile
	if err := yaml.Unmarshal(expanded, &file); err != nil {
		return nil, fmt.Errorf("%s: decoding fixtures: %w", source, err)
	}
	for i := range file.Fixtures {
		file.Fixtures[i].Source = fmt.Sprintf("%s#%d", source, i)
	}
	return file.Fixtures, nil
}

// LoadFixtureFile reads and parses one fixture file.
func LoadFixtureFile(path string) ([]Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("reading fixture file: %w", err)
	}
	return ParseFixtures(data, path)
}

// LoadFixtures loads every fixture file matching the glob patterns, in
// lexical file order per pattern. A pattern matching nothing is an error.
func LoadFixtures(patterns ...string) ([]Fixture, error) {
	var result []Fixture
	for _, pattern := range patterns {
		matches, err := ExpandGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("expanding glob pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no fixture file matches %q", pattern)
		}
		for _, match := range matches {
			fixtures, err := LoadFixtureFile(match)
			if err != nil {
				return nil, err
			}
			result = append(result, fixtures...)
		}
	}
	return result, nil
}

// ExpandGlob expands a glob pattern to a sorted list of file paths.
// Uses doublestar for ** support, falls back to filepath.Glob for simple
// patterns.
func ExpandGlob(pattern string) ([]string, error) {
	var (
		matches []string
		err     error
	)
	if strings.Contains(pattern, "**") {
		matches, err = doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	} else {
		matches, err = filepath.Glob(pattern)
	}
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// Entry converts the fixture into a registrable entry.
func (f *Fixture) Entry() (*mock.Entry, error) {
	opts, err := f.Match.options()
	if err != nil {
		return nil, f.wrap(err)
	}
	if f.Optional != nil {
		opts = append(opts, mock.Optional(*f.Optional))
	}
	if f.Reusable {
		opts = append(opts, mock.Reusable())
	}

	var entry *mock.Entry
	if f.Error != "" {
		entry, err = mock.NewErrorEntry(errors.New(f.Error), opts...)
	} else {
		resp, rerr := f.Response.build()
		if rerr != nil {
			return nil, f.wrap(rerr)
		}
		entry, err = mock.NewResponseEntry(resp, opts...)
	}
	if err != nil {
		return nil, f.wrap(err)
	}
	return entry, nil
}

func (f *Fixture) wrap(err error) error {
	name := f.Source
	if f.Name != "" {
		name += " (" + f.Name + ")"
	}
	if name == "" {
		return err
	}
	return fmt.Errorf("%s: %w", name, err)
}

func (m *FixtureMatch) options() ([]mock.EntryOption, error) {
	if m == nil {
		return nil, nil
	}
	var opts []mock.EntryOption
	add := func(o mock.MatcherOption) { opts = append(opts, o) }

	if m.Method != "" {
		add(mock.MatchMethod(m.Method))
	}
	if m.URL != "" {
		add(mock.MatchURL(m.URL))
	}
	if m.URLPattern != "" {
		re, err := regexp.Compile(m.URLPattern)
		if err != nil {
			return nil, fmt.Errorf("urlPattern: %w", err)
		}
		add(mock.MatchURLPattern(re))
	}
	if m.ProxyURL != "" {
		add(mock.MatchProxyURL(m.ProxyURL))
	}
	if m.ProxyURLPattern != "" {
		re, err := regexp.Compile(m.ProxyURLPattern)
		if err != nil {
			return nil, fmt.Errorf("proxyUrlPattern: %w", err)
		}
		add(mock.MatchProxyURLPattern(re))
	}
	if len(m.Headers) > 0 {
		add(mock.MatchHeaders(m.Headers))
	}
	if m.Content != nil {
		add(mock.MatchContent([]byte(*m.Content)))
	}
	if m.JSON != nil {
		add(mock.MatchJSON(withAnyPlaceholders(m.JSON)))
	}
	if len(m.Data) > 0 {
		add(mock.MatchData(m.Data))
	}
	if len(m.Files) > 0 {
		files := make(map[string]mock.File, len(m.Files))
		for name, f := range m.Files {
			files[name] = mock.File{Filename: f.Filename, Content: []byte(f.Content), ContentType: f.ContentType}
		}
		add(mock.MatchFiles(files))
	}
	if len(m.Extensions) > 0 {
		add(mock.MatchExtensions(m.Extensions))
	}
	if len(m.JSONPath) > 0 {
		conditions := make(map[string]any, len(m.JSONPath))
		for path, v := range m.JSONPath {
			conditions[path] = withAnyPlaceholders(v)
		}
		add(mock.MatchJSONPath(conditions))
	}
	return opts, nil
}

func (r *FixtureResponse) build() (*mock.Response, error) {
	if r == nil {
		return mock.NewResponse(), nil
	}
	bodies := 0
	for _, set := range []bool{r.Body != nil, r.Text != nil, r.HTML != nil, r.JSON != nil, r.Stream != nil} {
		if set {
			bodies++
		}
	}
	if bodies > 1 {
		return nil, errors.New("response: only one of body, text, html, json and stream can be set")
	}

	var opts []mock.ResponseOption
	if r.Status != 0 {
		opts = append(opts, mock.WithStatus(r.Status))
	}
	if r.HTTPVersion != "" {
		opts = append(opts, mock.WithHTTPVersion(r.HTTPVersion))
	}
	if len(r.Headers) > 0 {
		opts = append(opts, mock.WithHeaders(r.Headers))
	}
	switch {
	case r.Body != nil:
		opts = append(opts, mock.WithContent([]byte(*r.Body)))
	case r.Text != nil:
		opts = append(opts, mock.WithText(*r.Text))
	case r.HTML != nil:
		opts = append(opts, mock.WithHTML(*r.HTML))
	case r.JSON != nil:
		opts = append(opts, mock.WithJSON(r.JSON))
	case r.Stream != nil:
		chunks := make([][]byte, len(r.Stream))
		for i, c := range r.Stream {
			chunks[i] = []byte(c)
		}
		opts = append(opts, mock.WithStream(chunks...))
	}

	resp := mock.NewResponse(opts...)
	if err := resp.Err(); err != nil {
		return nil, fmt.Errorf("response: %w", err)
	}
	return resp, nil
}

// withAnyPlaceholders replaces AnyPlaceholder strings with mock.Any.
func withAnyPlaceholders(v any) any {
	switch t := v.(type) {
	case string:
		if t == AnyPlaceholder {
			return mock.Any
		}
		return t
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = withAnyPlaceholders(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = withAnyPlaceholders(e)
		}
		return out
	default:
		return v
	}
}
