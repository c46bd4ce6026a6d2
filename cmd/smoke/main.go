package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/skinsight/internal/smoketest"
	"github.com/okian/skinsight/pkg/logger"
)

// Default configuration constants.
const (
	defaultUploads     = 50
	defaultTestTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", smoketest.DefaultBaseURL, "Base URL of the service")
		apiKey  = flag.String("key", smoketest.DefaultAPIKey, "API key sent as X-API-Key")
		secret  = flag.String("jwt-secret", "", "Sign a JWT with this secret and send it instead of -key")
		issuer  = flag.String("jwt-issuer", "", "Issuer claim for the signed JWT")
		timeout = flag.Duration("timeout", smoketest.DefaultTimeout, "HTTP request timeout")
		uploads = flag.Int("uploads", defaultUploads, "Images uploaded in the concurrent burst, 0 to skip")
		workers = flag.Int("workers", runtime.NumCPU(), "Concurrent workers for the burst")
		maxSize = flag.Int64("max-size", smoketest.DefaultMaxSize, "Server upload limit in bytes")
		verbose = flag.Bool("verbose", false, "Enable debug logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		smoketest.ShowHelp()
		return
	}

	level := "info"
	if *verbose {
		level = "debug"
	}
	if err := logger.Init(logger.WithLevel(level)); err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	_, err := smoketest.Run(ctx, &smoketest.Config{
		BaseURL:   *baseURL,
		APIKey:    *apiKey,
		JWTSecret: *secret,
		JWTIssuer: *issuer,
		Timeout:   *timeout,
		Uploads:   *uploads,
		Workers:   *workers,
		MaxSize:   *maxSize,
	})
	if err != nil {
		_, _ = os.Stderr.WriteString("Smoke test failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
