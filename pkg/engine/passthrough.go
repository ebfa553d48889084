package engine

import (
	"log/slog"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/getmockd/httpmock/pkg/config"
	"github.com/getmockd/httpmock/pkg/mock"
)

// PassthroughFilter decides which requests the engine intercepts. Requests
// it lets through are neither recorded nor matched.
type PassthroughFilter struct {
	shouldMock  func(*mock.Request) bool
	program     *config.ShouldMockProgram
	passthrough []string
	mocked      []string
	log         *slog.Logger
}

// NewPassthroughFilter compiles the interception rules of o.
func NewPassthroughFilter(o config.Options, log *slog.Logger) (*PassthroughFilter, error) {
	f := &PassthroughFilter{
		shouldMock:  o.ShouldMock,
		passthrough: o.PassthroughHosts,
		mocked:      o.MockedHosts,
		log:         log,
	}
	if o.ShouldMockExpr != "" {
		p, err := config.CompileShouldMock(o.ShouldMockExpr)
		if err != nil {
			return nil, err
		}
		f.program = p
	}
	return f, nil
}

// ShouldIntercept reports whether req is mocked. Every rule must accept it:
// the host is not a passthrough host, the host is a mocked host when
// mocked hosts are configured, and the predicate and expression hold.
// An expression that fails to evaluate intercepts the request.
func (f *PassthroughFilter) ShouldIntercept(req *mock.Request) bool {
	host, hostPort := req.Host(), ""
	if req.URL != nil {
		hostPort = req.URL.Host
	}
	if matchHost(f.passthrough, host, hostPort) {
		return false
	}
	if len(f.mocked) > 0 && !matchHost(f.mocked, host, hostPort) {
		return false
	}
	if f.shouldMock != nil && !f.shouldMock(req) {
		return false
	}
	if f.program != nil {
		ok, err := f.program.Eval(req)
		if err != nil {
			f.log.Warn("shouldMock evaluation failed, intercepting", "request", req.String(), "error", err)
			return true
		}
		return ok
	}
	return true
}

// matchHost matches glob patterns against the host name and host:port.
func matchHost(patterns []string, host, hostPort string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, host); ok {
			return true
		}
		if hostPort != host {
			if ok, _ := doublestar.Match(p, hostPort); ok {
				return true
			}
		}
	}
	return false
}
