package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/getmockd/httpmock/internal/matching"
	"github.com/getmockd/httpmock/pkg/cli/internal/output"
	"github.com/getmockd/httpmock/pkg/config"
	"github.com/getmockd/httpmock/pkg/engine"
	"github.com/getmockd/httpmock/pkg/mock"
	"github.com/spf13/cobra"
)

type explainedEntry struct {
	Index    int    `json:"index"`
	Source   string `json:"source"`
	Name     string `json:"name,omitempty"`
	Matcher  string `json:"matcher"`
	Outcome  string `json:"outcome"`
	Optional bool   `json:"optional"`
	Reusable bool   `json:"reusable"`
}

type explainedRequest struct {
	Attempt     int    `json:"attempt"`
	Request     string `json:"request"`
	Matched     bool   `json:"matched"`
	Passthrough bool   `json:"passthrough,omitempty"`
	Index       *int   `json:"index,omitempty"`
	Source      string `json:"source,omitempty"`
	Outcome     string `json:"outcome,omitempty"`
	Error       string `json:"error,omitempty"`
}

type explainResult struct {
	Entries  []explainedEntry   `json:"entries"`
	Requests []explainedRequest `json:"requests,omitempty"`
}

type explainFlags struct {
	method  string
	url     string
	headers []string
	body    string
	count   int
}

func newExplainCmd(g *globalFlags) *cobra.Command {
	f := &explainFlags{}
	cmd := &cobra.Command{
		Use:   "explain <glob>...",
		Short: "Show how fixtures match requests",
		Long: `Load fixture files into a session and list the registered entries in
selection order.

With --url, the request described by the flags is sent to the session
--count times and the entry answering each attempt is reported. Requests
nothing answers print the same explanation a failing test would see.`,
		Example: `  # List the entries of a fixture file
  httpmock explain fixtures/users.yaml

  # Check which entry answers a request, twice
  httpmock explain fixtures/users.yaml --method GET --url https://api.test/users/1 --count 2

  # Send a JSON body with a header
  httpmock explain 'testdata/**/*.yaml' -X POST --url https://api.test/users \
    -H 'Content-Type: application/json' -d '{"name":"Ada"}'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(cmd, g, f, args)
		},
	}
	cmd.Flags().StringVarP(&f.method, "method", "X", "GET", "Request method")
	cmd.Flags().StringVar(&f.url, "url", "", "Request URL; when empty only the entries are listed")
	cmd.Flags().StringArrayVarP(&f.headers, "header", "H", nil, "Request header as 'Name: value' (repeatable)")
	cmd.Flags().StringVarP(&f.body, "data", "d", "", "Request body")
	cmd.Flags().IntVar(&f.count, "count", 1, "Number of times the request is sent")
	return cmd
}

func runExplain(cmd *cobra.Command, g *globalFlags, f *explainFlags, patterns []string) error {
	if f.count < 1 {
		return errors.New("--count must be at least 1")
	}

	opts, err := config.Resolve()
	if err != nil {
		return fmt.Errorf("resolving options: %w", err)
	}
	fixtures, err := config.LoadFixtures(patterns...)
	if err != nil {
		return err
	}
	e, err := engine.New(opts)
	if err != nil {
		return err
	}
	if _, err := e.AddFixtures(fixtures); err != nil {
		return err
	}

	result := explainResult{Entries: describeEntries(e.Entries(), fixtures, opts)}

	if f.url == "" && f.count != 1 {
		output.Warn(cmd.ErrOrStderr(), "--count is ignored without --url")
	}

	failed := 0
	if f.url != "" {
		for attempt := 1; attempt <= f.count; attempt++ {
			req, err := f.request()
			if err != nil {
				return err
			}
			r := explainRequest(cmd, e, req, fixtures, attempt)
			if !r.Matched && !r.Passthrough {
				failed++
			}
			result.Requests = append(result.Requests, r)
		}
	}

	err = printResult(cmd, g, result, func() {
		out := cmd.OutOrStdout()
		tw := output.Table(out)
		fmt.Fprintln(tw, "#\tSOURCE\tMATCHES\tOUTCOME\tFLAGS")
		for _, en := range result.Entries {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", en.Index, en.Source, en.Matcher, en.Outcome, entryFlags(en))
		}
		_ = tw.Flush()

		for _, r := range result.Requests {
			fmt.Fprintln(out)
			switch {
			case r.Passthrough:
				fmt.Fprintf(out, "Attempt %d: %s is not intercepted and would reach the network\n", r.Attempt, r.Request)
			case r.Matched:
				fmt.Fprintf(out, "Attempt %d: %s answered by #%d (%s): %s\n", r.Attempt, r.Request, *r.Index, r.Source, r.Outcome)
			default:
				fmt.Fprintf(out, "Attempt %d: %s\n", r.Attempt, r.Error)
			}
		}
	})
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d request(s) were not matched", failed, f.count)
	}
	return nil
}

func (f *explainFlags) request() (*mock.Request, error) {
	var body []byte
	if f.body != "" {
		body = []byte(f.body)
	}
	req, err := mock.NewRequest(f.method, f.url, body)
	if err != nil {
		return nil, err
	}
	for _, h := range f.headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid header %q, expected 'Name: value'", h)
		}
		name = strings.TrimSpace(name)
		req.Header[name] = append(req.Header[name], strings.TrimSpace(value))
	}
	return req, nil
}

func explainRequest(cmd *cobra.Command, e *engine.Engine, req *mock.Request, fixtures []config.Fixture, attempt int) explainedRequest {
	r := explainedRequest{Attempt: attempt, Request: req.String()}
	out := e.Handle(cmd.Context(), req)

	switch {
	case out.Passthrough:
		r.Passthrough = true
	case out.Entry != nil:
		r.Matched = true
		idx := out.Entry.Index
		r.Index = &idx
		r.Source = sourceOf(fixtures, idx)
		r.Outcome = describeOutcome(out)
	default:
		r.Error = out.Err.Error()
	}
	return r
}

func describeEntries(entries []*mock.Entry, fixtures []config.Fixture, opts config.Options) []explainedEntry {
	defaultOptional := !opts.AssertAllResponsesWereRequested
	result := make([]explainedEntry, 0, len(entries))
	for _, en := range entries {
		ee := explainedEntry{
			Index:    en.Index,
			Source:   sourceOf(fixtures, en.Index),
			Matcher:  matching.Describe(en.Matcher, false),
			Optional: en.IsOptional(defaultOptional),
			Reusable: en.Reusable,
		}
		if en.Index < len(fixtures) {
			ee.Name = fixtures[en.Index].Name
		}
		switch en.Kind {
		case mock.KindError:
			ee.Outcome = "error: " + en.Err.Error()
		default:
			ee.Outcome = en.Response.String()
		}
		result = append(result, ee)
	}
	return result
}

func describeOutcome(out mock.Outcome) string {
	if out.Err != nil {
		return "error: " + out.Err.Error()
	}
	return out.Response.String()
}

// sourceOf relies on fixtures being registered in order into an empty
// session, so entry indexes and fixture positions line up.
func sourceOf(fixtures []config.Fixture, index int) string {
	if index < 0 || index >= len(fixtures) {
		return ""
	}
	return fixtures[index].Source
}

func entryFlags(e explainedEntry) string {
	var flags []string
	if e.Optional {
		flags = append(flags, "optional")
	}
	if e.Reusable {
		flags = append(flags, "reusable")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}
