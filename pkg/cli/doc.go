// Package cli implements the httpmock command: checking fixture files and
// explaining how a session built from them answers requests.
package cli
