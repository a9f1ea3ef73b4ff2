// Package sourcemap is the upload-sourcemaps command: it finds every
// JavaScript sourcemap of a frontend build and registers it with the APM
// server so minified stack traces can be mapped back to the sources.
//
// Flags:
//
//	--service   service name (default "local-test-app")
//	--version   service version (default "0.0.1")
//	--base      public base URL the bundles are served from (default "http://localhost:4173")
//	--dist      build output directory (default "./dist")
//	--server    APM server URL (default "http://localhost:8200")
//	--validate  parse every sourcemap before uploading it
//	--strict    exit with status 2 when any upload fails
//
// Credentials are read from ELASTIC_APM_SECRET_TOKEN or ELASTIC_APM_API_KEY,
// never from flags.
package sourcemap
