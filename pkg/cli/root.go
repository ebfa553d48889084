package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	jsonOutput bool
	envFiles   []string
}

// NewRootCommand builds the httpmock command tree.
func NewRootCommand() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "httpmock",
		Short: "httpmock checks and explains HTTP mock fixtures",
		Long: `httpmock works with the YAML fixture files Go tests load through
Mock.LoadFixtures.

Session options are read from the file named by HTTPMOCK_CONFIG and the
HTTPMOCK_* environment variables, the same way tests resolve them.`,
		// No Run function here means 'httpmock' with no args will print help text by default.
		SilenceUsage:  true,
		SilenceErrors: true, // We handle errors in Execute()
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if len(g.envFiles) == 0 {
				return nil
			}
			// Variables already set in the environment win over the files.
			if err := godotenv.Load(g.envFiles...); err != nil {
				return fmt.Errorf("loading env file: %w", err)
			}
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&g.jsonOutput, "json", false, "Output command results in JSON format")
	root.PersistentFlags().StringArrayVar(&g.envFiles, "env-file", nil, "Load environment variables from a .env file before resolving options (repeatable)")

	root.AddCommand(
		newValidateCmd(g),
		newExplainCmd(g),
		newConfigCmd(g),
		newVersionCmd(g),
	)
	return root
}

// Execute runs the command line. This is called by main.main().
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
