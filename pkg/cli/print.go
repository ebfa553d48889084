package cli

import (
	"github.com/getmockd/httpmock/pkg/cli/internal/output"
	"github.com/spf13/cobra"
)

// printResult outputs a command result.
//
// Contract: when --json is active, ONLY the JSON encoding of data is written
// to stdout. textFn is called only in text mode.
func printResult(cmd *cobra.Command, g *globalFlags, data any, textFn func()) error {
	if g.jsonOutput {
		return output.JSON(cmd.OutOrStdout(), data)
	}
	textFn()
	return nil
}
