package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

func newVersionCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versionInfo{
				Version:   Version,
				Commit:    Commit,
				BuildDate: BuildDate,
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			}
			return printResult(cmd, g, info, func() {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "httpmock %s\n", info.Version)
				fmt.Fprintf(out, "  commit:  %s\n", info.Commit)
				fmt.Fprintf(out, "  built:   %s\n", info.BuildDate)
				fmt.Fprintf(out, "  go:      %s\n", info.GoVersion)
				fmt.Fprintf(out, "  os/arch: %s\n", info.Platform)
			})
		},
	}
}
