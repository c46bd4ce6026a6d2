package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/skinsight/internal/adapters/blob"
	"github.com/okian/skinsight/internal/adapters/http/api"
	"github.com/okian/skinsight/internal/adapters/http/swagger"
	"github.com/okian/skinsight/internal/adapters/mq/publisher"
	"github.com/okian/skinsight/internal/adapters/repository"
	app "github.com/okian/skinsight/internal/app"
	"github.com/okian/skinsight/internal/config"
	"github.com/okian/skinsight/internal/domain/analysis"
	"github.com/okian/skinsight/internal/domain/auth"
	"github.com/okian/skinsight/internal/domain/validation"
	"github.com/okian/skinsight/pkg/logger"
	"github.com/okian/skinsight/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 30 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

var errUnknownBackend = errors.New("unknown backend")

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> .env -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(
		logger.WithFormat(cfg.LogFormat),
		logger.WithLevel(cfg.LogLevel),
		logger.WithSentry(cfg.SentryDSN, cfg.Environment),
	); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "server exited", logger.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	loggerInstance := logger.Get()

	if cfg.AuthMode == config.AuthStatic && cfg.APIKey == config.DefaultAPIKey {
		loggerInstance.Warn(ctx, "using the default development API key; set SKINSIGHT_API_KEY")
	}

	svc, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or a listener failure
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
	return nil
}

// newService assembles the image pipeline described by cfg.
func newService(ctx context.Context, cfg *config.Config) (*app.Service, error) {
	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("blob store: %w", err)
	}
	store, err := repository.NewImageStore(blobs)
	if err != nil {
		return nil, fmt.Errorf("image store: %w", err)
	}

	verifier, err := newVerifier(cfg)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}
	gate, err := auth.NewGate(verifier)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}

	opts := []app.Option{
		app.WithLogger(logger.Get().Named("service")),
		app.WithAuthorizer(gate),
		app.WithStore(store),
		app.WithValidator(validation.New(validation.WithMaxSize(cfg.MaxUploadBytes))),
		app.WithAnalyzer(analysis.NewMockAnalyzer(
			analysis.WithConfidenceRange(cfg.ConfidenceMin, cfg.ConfidenceMax),
			analysis.WithLatencyRange(
				time.Duration(cfg.AnalysisLatencyMinMS)*time.Millisecond,
				time.Duration(cfg.AnalysisLatencyMaxMS)*time.Millisecond,
			),
		)),
		app.WithWorkerCount(cfg.EventWorkerCount),
		app.WithQueueSize(cfg.EventQueueSize),
	}

	pub, err := newPublisher(cfg)
	if err != nil {
		return nil, fmt.Errorf("event sink: %w", err)
	}
	if pub != nil {
		opts = append(opts, app.WithPublisher(pub))
	}

	return app.New(opts...)
}

func newBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	switch cfg.StorageBackend {
	case config.StorageFS:
		return blob.NewFileStore(cfg.UploadDir)
	case config.StorageS3:
		return blob.NewS3Store(ctx, blob.S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
		})
	case config.StorageMinio:
		return blob.NewMinioStore(ctx, blob.MinioConfig{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
		})
	default:
		return nil, fmt.Errorf("%w: storage %q", errUnknownBackend, cfg.StorageBackend)
	}
}

func newVerifier(cfg *config.Config) (auth.Verifier, error) {
	switch cfg.AuthMode {
	case config.AuthStatic:
		return auth.NewStaticKey(cfg.APIKey)
	case config.AuthKeys:
		return auth.NewKeySet(cfg.APIKeys...)
	case config.AuthJWT:
		return auth.NewJWT(cfg.APIKey, cfg.JWTIssuer)
	default:
		return nil, fmt.Errorf("%w: auth mode %q", errUnknownBackend, cfg.AuthMode)
	}
}

// newPublisher returns nil for the "none" sink.
func newPublisher(cfg *config.Config) (app.Publisher, error) {
	switch cfg.EventSink {
	case config.SinkNone:
		return nil, nil
	case config.SinkLog:
		return publisher.NewLog(logger.Get().Named("events")), nil
	case config.SinkKafka:
		return publisher.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
	default:
		return nil, fmt.Errorf("%w: event sink %q", errUnknownBackend, cfg.EventSink)
	}
}

func newHandler(cfg *config.Config, svc *app.Service) http.Handler {
	return api.NewServer(svc, svc,
		api.WithMaxUploadBytes(cfg.MaxUploadBytes),
		api.WithCORSOrigins(cfg.CORSAllowedOrigins...),
		api.WithLogger(logger.Get().Named("http")),
		api.WithMount(func(r chi.Router) { swagger.Register(r) }),
	).Handler()
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater refreshes gauges derived from service stats.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics updates service-level metrics. GetStats already
// refreshes the store records gauge.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	if queueLen, ok := stats["queue_length"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if workers, ok := stats["workers"].(int); ok {
		metrics.UpdateWorkerActiveCount(workers)
	}
}
