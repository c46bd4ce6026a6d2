// Package analysis produces synthetic skin analysis results for stored images.
// No image bytes are read; results are drawn from a random source.
package analysis

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/skinsight/internal/domain/model"
)

// Default analysis configuration.
const (
	DefaultConfidenceMin = 0.75
	DefaultConfidenceMax = 0.95
	maxIssues            = 3
)

// Source supplies the random draws an analysis is built from.
// Intn returns a value in [0, n); Float64 returns a value in [0, 1).
type Source interface {
	Intn(n int) int
	Float64() float64
}

// Analyzer produces an analysis result for a stored image.
type Analyzer interface {
	// Analyze builds a result for rec, honoring ctx for cancellation.
	Analyze(ctx context.Context, rec model.ImageRecord) (model.AnalysisResult, error)
}

// MockAnalyzer implements Analyzer with random results and optional simulated latency.
type MockAnalyzer struct {
	src           Source
	confidenceMin float64
	confidenceMax float64
	// Simulated latency range; zero disables it.
	minLatency time.Duration
	maxLatency time.Duration

	mu sync.Mutex // guards src
}

// NewMockAnalyzer creates an analyzer seeded from the current time.
func NewMockAnalyzer(opts ...Option) *MockAnalyzer {
	a := &MockAnalyzer{
		src:           rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // mock results, not security sensitive
		confidenceMin: DefaultConfidenceMin,
		confidenceMax: DefaultConfidenceMax,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze draws a skin type, one to three distinct issues and a confidence.
func (a *MockAnalyzer) Analyze(ctx context.Context, rec model.ImageRecord) (model.AnalysisResult, error) {
	const op = "analysis.Analyze"

	if err := ctx.Err(); err != nil {
		return model.AnalysisResult{}, fmt.Errorf("%s: %w", op, err)
	}

	a.mu.Lock()
	latency := a.drawLatency()
	skinTypes := model.SkinTypes()
	skinType := skinTypes[a.src.Intn(len(skinTypes))]
	issues := a.drawIssues()
	confidence := a.drawConfidence()
	a.mu.Unlock()

	if latency > 0 {
		timer := time.NewTimer(latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return model.AnalysisResult{}, fmt.Errorf("%s: context cancelled: %w", op, ctx.Err())
		case <-timer.C:
		}
	}

	return model.AnalysisResult{
		ImageID:    rec.ID,
		SkinType:   skinType,
		Issues:     issues,
		Confidence: confidence,
	}, nil
}

// drawIssues picks 1..maxIssues distinct issues with a partial Fisher-Yates shuffle.
// Caller holds a.mu.
func (a *MockAnalyzer) drawIssues() []string {
	pool := model.Issues()
	k := 1 + a.src.Intn(maxIssues)
	for i := 0; i < k; i++ {
		j := i + a.src.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k:k]
}

// Caller holds a.mu.
func (a *MockAnalyzer) drawConfidence() float64 {
	c := a.confidenceMin + a.src.Float64()*(a.confidenceMax-a.confidenceMin)
	return math.Round(c*100) / 100
}

// Caller holds a.mu.
func (a *MockAnalyzer) drawLatency() time.Duration {
	if a.maxLatency <= 0 {
		return 0
	}
	if a.maxLatency <= a.minLatency {
		return a.minLatency
	}
	return a.minLatency + time.Duration(a.src.Float64()*float64(a.maxLatency-a.minLatency))
}
