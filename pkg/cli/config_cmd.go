package cli

import (
	"fmt"
	"os"

	"github.com/getmockd/httpmock/pkg/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// resolvedConfig mirrors config.Options without the Go-only fields.
type resolvedConfig struct {
	Source                          string   `json:"source" yaml:"-"`
	AssertAllResponsesWereRequested bool     `json:"assertAllResponsesWereRequested" yaml:"assertAllResponsesWereRequested"`
	AssertAllRequestsWereExpected   bool     `json:"assertAllRequestsWereExpected" yaml:"assertAllRequestsWereExpected"`
	CanSendAlreadyMatchedResponses  bool     `json:"canSendAlreadyMatchedResponses" yaml:"canSendAlreadyMatchedResponses"`
	ShouldMock                      string   `json:"shouldMock,omitempty" yaml:"shouldMock,omitempty"`
	PassthroughHosts                []string `json:"passthroughHosts,omitempty" yaml:"passthroughHosts,omitempty"`
	MockedHosts                     []string `json:"mockedHosts,omitempty" yaml:"mockedHosts,omitempty"`
	Log                             logView  `json:"log" yaml:"log,omitempty"`
}

type logView struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

func newConfigCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the resolved session options",
		Long: `Show the session options tests would start with.

Options are resolved from the defaults, then the file named by
HTTPMOCK_CONFIG, then the HTTPMOCK_* environment variables. The text
output is a valid options file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := config.Resolve()
			if err != nil {
				return err
			}
			view := toResolvedConfig(opts)
			view.Source = "defaults"
			if path := os.Getenv(config.EnvConfig); path != "" {
				view.Source = path
			}

			var text []byte
			if !g.jsonOutput {
				text, err = yaml.Marshal(view)
				if err != nil {
					return fmt.Errorf("encoding options: %w", err)
				}
			}
			return printResult(cmd, g, view, func() {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "# source: %s\n", view.Source)
				_, _ = out.Write(text)
			})
		},
	}
}

func toResolvedConfig(o config.Options) resolvedConfig {
	return resolvedConfig{
		AssertAllResponsesWereRequested: o.AssertAllResponsesWereRequested,
		AssertAllRequestsWereExpected:   o.AssertAllRequestsWereExpected,
		CanSendAlreadyMatchedResponses:  o.CanSendAlreadyMatchedResponses,
		ShouldMock:                      o.ShouldMockExpr,
		PassthroughHosts:                o.PassthroughHosts,
		MockedHosts:                     o.MockedHosts,
		Log:                             logView{Level: o.Log.Level, Format: o.Log.Format},
	}
}
