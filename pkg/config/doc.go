// Package config holds the options of a mock session and the loaders that
// fill them from files and the environment.
//
// Options are resolved in this order, later sources winning:
//
//  1. DefaultOptions: every assertion enabled, reuse disallowed, every
//     request intercepted
//  2. the YAML options file named by HTTPMOCK_CONFIG, if any
//  3. HTTPMOCK_* environment variables
//  4. functional options passed in code
//
// An options file looks like:
//
//	assertAllResponsesWereRequested: true
//	assertAllRequestsWereExpected: ${STRICT:-true}
//	canSendAlreadyMatchedResponses: false
//	shouldMock: 'host != "localhost"'
//	passthroughHosts: ["*.internal.example.com"]
//	log:
//	  level: debug
//	  format: text
//
// Environment variables are expanded with ${VAR} and ${VAR:-default}
// syntax before parsing.
//
// # Fixtures
//
// Fixture files describe entries declaratively. A file holds one fixture or
// a list of them and is validated against an embedded JSON schema before
// being decoded:
//
//	- match:
//	    method: POST
//	    url: https://api.example.com/items
//	    json: {name: widget, id: "<ANY>"}
//	  response:
//	    status: 201
//	    json: {id: 1}
//	  reusable: true
//
// LoadFixtures accepts glob patterns; patterns containing ** are expanded
// recursively.
package config
