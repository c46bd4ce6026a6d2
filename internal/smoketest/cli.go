package smoketest

import "os"

// ShowHelp prints usage information for the smoke tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Skinsight Smoke Test
====================

Runs the end-to-end and error-handling checks against a running server.

Usage:
  go run ./cmd/smoke [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8000")
  -key string
        API key sent as X-API-Key (default "secret-token-123")
  -jwt-secret string
        Sign a JWT with this secret and send it instead of -key (jwt auth mode)
  -jwt-issuer string
        Issuer claim for the signed JWT
  -timeout duration
        HTTP request timeout (default 30s)
  -uploads int
        Images uploaded in the concurrent burst, 0 to skip (default 50)
  -workers int
        Concurrent workers for the burst (default CPU cores)
  -max-size int
        Server upload limit in bytes (default 5242880)
  -verbose
        Enable debug logging
  -help
        Show this help message

Examples:
  go run ./cmd/smoke
  go run ./cmd/smoke -url http://localhost:8080 -key my-key -uploads 500 -workers 16
`)
}
