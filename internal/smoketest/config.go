// Package smoketest exercises a running image analysis server end to end.
package smoketest

import "time"

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL string // Base URL of the service
	APIKey  string // Credential sent as X-API-Key
	// JWTSecret, when set, replaces APIKey with a token signed by it for
	// servers running in jwt auth mode.
	JWTSecret string
	JWTIssuer string
	Timeout   time.Duration // HTTP request timeout
	Uploads   int           // Images uploaded in the concurrent burst; 0 skips it
	Workers   int           // Concurrent workers for the burst
	MaxSize   int64         // Server upload limit used by the oversize check
}

// Result is the outcome of one check.
type Result struct {
	Name     string
	Passed   bool
	Detail   string
	Duration time.Duration
}

// Report collects every check of a run.
type Report struct {
	Results   []Result
	StartTime time.Time
	EndTime   time.Time
}

// Failed returns the checks that did not pass.
func (r *Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if !res.Passed {
			failed = append(failed, res)
		}
	}
	return failed
}

// analysisResponse mirrors the POST /analyze success body.
type analysisResponse struct {
	ImageID    string   `json:"image_id"`
	SkinType   string   `json:"skin_type"`
	Issues     []string `json:"issues"`
	Confidence float64  `json:"confidence"`
}

// errorResponse mirrors the error body.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
