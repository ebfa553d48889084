package config

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/getmockd/httpmock/pkg/mock"
)

// RequestEnv is the environment shouldMock expressions are evaluated
// against, for example `host != "localhost" && !(path startsWith "/health")`.
type RequestEnv struct {
	Method     string              `expr:"method"`
	URL        string              `expr:"url"`
	Scheme     string              `expr:"scheme"`
	Host       string              `expr:"host"`
	Port       string              `expr:"port"`
	Path       string              `expr:"path"`
	Query      map[string][]string `expr:"query"`
	Headers    map[string]string   `expr:"headers"`
	Body       string              `expr:"body"`
	Extensions map[string]any      `expr:"extensions"`
}

// NewRequestEnv flattens req for expression evaluation. Repeated header
// values are joined with ", ".
func NewRequestEnv(req *mock.Request) RequestEnv {
	env := RequestEnv{
		Method:     req.Method,
		Headers:    make(map[string]string, len(req.Header)),
		Body:       string(req.Body),
		Extensions: req.Extensions,
	}
	if req.URL != nil {
		env.URL = req.URL.String()
		env.Scheme = req.URL.Scheme
		env.Host = req.URL.Hostname()
		env.Port = req.URL.Port()
		env.Path = req.URL.Path
		env.Query = req.URL.Query()
	}
	for name, values := range req.Header {
		env.Headers[name] = strings.Join(values, ", ")
	}
	return env
}

// ShouldMockProgram is a compiled shouldMock expression.
type ShouldMockProgram struct {
	source  string
	program *vm.Program
}

// CompileShouldMock compiles a boolean expression over RequestEnv.
func CompileShouldMock(expression string) (*ShouldMockProgram, error) {
	program, err := expr.Compile(expression, expr.Env(RequestEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile shouldMock %q: %w", expression, err)
	}
	return &ShouldMockProgram{source: expression, program: program}, nil
}

// Eval runs the expression for req.
func (p *ShouldMockProgram) Eval(req *mock.Request) (bool, error) {
	out, err := expr.Run(p.program, NewRequestEnv(req))
	if err != nil {
		return false, fmt.Errorf("eval shouldMock %q: %w", p.source, err)
	}
	b, _ := out.(bool)
	return b, nil
}

// String returns the expression source.
func (p *ShouldMockProgram) String() string {
	return p.source
}
