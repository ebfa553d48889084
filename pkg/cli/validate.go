package cli

import (
	"errors"
	"fmt"

	"github.com/getmockd/httpmock/internal/matching"
	"github.com/getmockd/httpmock/pkg/config"
	"github.com/spf13/cobra"
)

type fixtureReport struct {
	Source      string `json:"source"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Error       string `json:"error,omitempty"`
}

type fileReport struct {
	File     string          `json:"file"`
	Valid    bool            `json:"valid"`
	Errors   []string        `json:"errors,omitempty"`
	Fixtures []fixtureReport `json:"fixtures,omitempty"`
}

type validateReport struct {
	Valid bool         `json:"valid"`
	Files []fileReport `json:"files"`
}

func newValidateCmd(g *globalFlags) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate <glob>...",
		Short: "Validate fixture files",
		Long: `Validate fixture files without running any test.

This command checks:
  - YAML syntax
  - Schema validation (known keys, value types, status range)
  - Entry construction (regular expressions, criteria combinations)

Patterns support ** to match nested directories.`,
		Example: `  # Validate every fixture under testdata
  httpmock validate 'testdata/**/*.yaml'

  # Show each fixture as it will be matched
  httpmock validate --verbose fixtures/users.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report := validateFixtures(args)
			invalid := 0
			for _, f := range report.Files {
				if !f.Valid {
					invalid++
				}
			}

			err := printResult(cmd, g, report, func() {
				out := cmd.OutOrStdout()
				for _, f := range report.Files {
					if f.Valid {
						fmt.Fprintf(out, "OK   %s (%d fixtures)\n", f.File, len(f.Fixtures))
					} else {
						fmt.Fprintf(out, "FAIL %s\n", f.File)
					}
					for _, e := range f.Errors {
						fmt.Fprintf(out, "  - %s\n", e)
					}
					for _, fx := range f.Fixtures {
						switch {
						case fx.Error != "":
							fmt.Fprintf(out, "  - %s\n", fx.Error)
						case verbose:
							fmt.Fprintf(out, "  %s: %s\n", fx.Source, fx.Description)
						}
					}
				}
			})
			if err != nil {
				return err
			}
			if invalid > 0 {
				return fmt.Errorf("validation failed for %d file(s)", invalid)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show every fixture as it will be matched")
	return cmd
}

func validateFixtures(patterns []string) validateReport {
	report := validateReport{Valid: true}
	for _, pattern := range patterns {
		files, err := config.ExpandGlob(pattern)
		if err != nil {
			report.Files = append(report.Files, fileReport{File: pattern, Errors: []string{err.Error()}})
			report.Valid = false
			continue
		}
		if len(files) == 0 {
			report.Files = append(report.Files, fileReport{File: pattern, Errors: []string{"no fixture file matches"}})
			report.Valid = false
			continue
		}
		for _, file := range files {
			r := validateFile(file)
			report.Valid = report.Valid && r.Valid
			report.Files = append(report.Files, r)
		}
	}
	return report
}

func validateFile(path string) fileReport {
	r := fileReport{File: path, Valid: true}

	fixtures, err := config.LoadFixtureFile(path)
	if err != nil {
		r.Valid = false
		var fe *config.FixtureError
		if errors.As(err, &fe) {
			for _, se := range fe.Result.Errors {
				r.Errors = append(r.Errors, se.Error())
			}
		} else {
			r.Errors = append(r.Errors, err.Error())
		}
		return r
	}

	for i := range fixtures {
		f := &fixtures[i]
		fr := fixtureReport{Source: f.Source, Name: f.Name}
		entry, err := f.Entry()
		if err != nil {
			fr.Error = err.Error()
			r.Valid = false
		} else {
			fr.Description = matching.Describe(entry.Matcher, false)
		}
		r.Fixtures = append(r.Fixtures, fr)
	}
	return r
}
