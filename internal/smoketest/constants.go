package smoketest

import "time"

// Defaults used when a Config field is zero.
const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultAPIKey  = "secret-token-123"
	DefaultTimeout = 30 * time.Second
	DefaultMaxSize = 5 * 1024 * 1024

	tokenTTL = 15 * time.Minute
)

// testPNG is a complete 1x1 transparent PNG.
var testPNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89" +
	"\x00\x00\x00\nIDATx\x9cc\x00\x01\x00\x00\x05\x00\x01\r\n-\xb4\x00\x00\x00\x00IEND\xaeB`\x82")
