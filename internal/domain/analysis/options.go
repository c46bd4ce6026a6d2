package analysis

import "time"

// Option applies a configuration option to the MockAnalyzer.
type Option func(*MockAnalyzer)

// WithSource replaces the random source, typically with a scripted one in tests.
func WithSource(src Source) Option {
	return func(a *MockAnalyzer) {
		if src != nil {
			a.src = src
		}
	}
}

// WithConfidenceRange sets the confidence bounds. Invalid ranges are ignored.
func WithConfidenceRange(minConf, maxConf float64) Option {
	return func(a *MockAnalyzer) {
		if minConf >= 0 && maxConf <= 1 && minConf <= maxConf {
			a.confidenceMin = minConf
			a.confidenceMax = maxConf
		}
	}
}

// WithLatencyRange enables simulated latency between minLatency and maxLatency.
func WithLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(a *MockAnalyzer) {
		if minLatency >= 0 && maxLatency >= minLatency {
			a.minLatency = minLatency
			a.maxLatency = maxLatency
		}
	}
}
