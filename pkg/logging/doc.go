// Package logging provides structured logging configuration for httpmock.
//
// This package wraps log/slog. The engine logs registrations, selections,
// passthroughs and resets at debug level and requests nobody answered at
// warn level. Without configuration it logs nothing.
//
// # Usage
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelDebug,
//	    Format: logging.FormatText,
//	})
//	eng := engine.New(config.DefaultOptions(), engine.WithLogger(logger))
//
// In tests, NewTestLogger routes records to t.Log so they only show up for
// failing or verbose tests.
//
// # Integration
//
// Components should accept a *slog.Logger in their constructor or via an
// option. If no logger is provided, use logging.Nop().
package logging
