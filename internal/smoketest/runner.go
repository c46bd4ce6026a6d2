package smoketest

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/okian/skinsight/internal/domain/auth"
	"github.com/okian/skinsight/pkg/logger"
)

// Run executes every smoke check against cfg.BaseURL. It returns
// ErrChecksFailed when any check fails; the report is returned either way.
func Run(ctx context.Context, cfg *Config) (*Report, error) {
	applyDefaults(cfg)
	log := logger.Get().Named("smoke")
	report := &Report{StartTime: time.Now()}

	if err := issueToken(cfg); err != nil {
		return report, err
	}

	log.Info(ctx, "starting smoke test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("uploads", cfg.Uploads),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()))

	c := newClient(cfg)

	if err := checkServiceRunning(ctx, c); err != nil {
		return report, err
	}

	for _, chk := range checks() {
		detail, took, err := timed(func() (string, error) { return chk.run(ctx, c, cfg) })
		res := Result{Name: chk.name, Passed: err == nil, Detail: detail, Duration: took}
		if err != nil {
			res.Detail = err.Error()
			log.Error(ctx, "check failed", logger.String("check", chk.name), logger.Error(err))
		} else {
			log.Info(ctx, "check passed",
				logger.String("check", chk.name),
				logger.String("detail", detail),
				logger.Duration("took", took))
		}
		report.Results = append(report.Results, res)
	}

	report.EndTime = time.Now()
	displayFinalStats(ctx, report)

	if failed := report.Failed(); len(failed) > 0 {
		return report, fmt.Errorf("%w: %d of %d", ErrChecksFailed, len(failed), len(report.Results))
	}
	return report, nil
}

func applyDefaults(cfg *Config) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.APIKey == "" {
		cfg.APIKey = DefaultAPIKey
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
}

// issueToken swaps the API key for a short-lived JWT when a secret is set.
func issueToken(cfg *Config) error {
	if cfg.JWTSecret == "" {
		return nil
	}
	issuer, err := auth.NewJWT(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		return fmt.Errorf("jwt: %w", err)
	}
	now := time.Now()
	token, err := issuer.Issue(jwt.RegisteredClaims{
		Subject:   "smoke",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	})
	if err != nil {
		return fmt.Errorf("jwt: %w", err)
	}
	cfg.APIKey = token
	return nil
}

// checkServiceRunning verifies the status document is served.
func checkServiceRunning(ctx context.Context, c *client) error {
	resp, err := c.get(ctx, "/")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	if resp.status != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnreachable, resp.status)
	}
	return nil
}

func displayFinalStats(ctx context.Context, report *Report) {
	passed := len(report.Results) - len(report.Failed())
	logger.Get().Info(ctx, "final statistics",
		logger.Int("checks", len(report.Results)),
		logger.Int("passed", passed),
		logger.Int("failed", len(report.Results)-passed),
		logger.String("duration", report.EndTime.Sub(report.StartTime).String()))
}
