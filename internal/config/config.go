// Package config defines service configuration and its layered loading.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Storage backends.
const (
	StorageFS    = "fs"
	StorageS3    = "s3"
	StorageMinio = "minio"
)

// Auth modes.
const (
	AuthStatic = "static"
	AuthKeys   = "keys"
	AuthJWT    = "jwt"
)

// Event sinks.
const (
	SinkLog   = "log"
	SinkKafka = "kafka"
	SinkNone  = "none"
)

// DefaultAPIKey is the development credential used when none is configured.
const DefaultAPIKey = "secret-token-123"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`
	// SentryDSN enables error forwarding to Sentry when set.
	SentryDSN string `koanf:"sentry_dsn"`
	// Environment tags Sentry events, e.g. "production".
	Environment string `koanf:"environment"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`
	// CORSAllowedOrigins lists origins allowed by the CORS middleware.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// APIKey is the shared secret for static mode and the HMAC secret for jwt mode.
	APIKey string `koanf:"api_key"`
	// AuthMode selects static, keys or jwt verification.
	AuthMode string `koanf:"auth_mode"`
	// APIKeys lists accepted keys in keys mode.
	APIKeys []string `koanf:"api_keys"`
	// JWTIssuer, when set, must match the iss claim in jwt mode.
	JWTIssuer string `koanf:"jwt_issuer"`

	// MaxUploadBytes is the largest accepted upload.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// StorageBackend selects fs, s3 or minio.
	StorageBackend string `koanf:"storage_backend"`
	// UploadDir is the directory for the fs backend.
	UploadDir string `koanf:"upload_dir"`

	S3Bucket    string `koanf:"s3_bucket"`
	S3Region    string `koanf:"s3_region"`
	S3Endpoint  string `koanf:"s3_endpoint"`
	S3AccessKey string `koanf:"s3_access_key"`
	S3SecretKey string `koanf:"s3_secret_key"`
	S3UseSSL    bool   `koanf:"s3_use_ssl"`

	// ConfidenceMin and ConfidenceMax bound the mock analysis confidence.
	ConfidenceMin float64 `koanf:"confidence_min"`
	ConfidenceMax float64 `koanf:"confidence_max"`

	// AnalysisLatencyMinMS and AnalysisLatencyMaxMS simulate model latency; zero disables it.
	AnalysisLatencyMinMS int `koanf:"analysis_latency_min_ms"`
	AnalysisLatencyMaxMS int `koanf:"analysis_latency_max_ms"`

	// EventSink selects log, kafka or none.
	EventSink        string   `koanf:"event_sink"`
	EventQueueSize   int      `koanf:"event_queue_size"`
	EventWorkerCount int      `koanf:"event_worker_count"`
	KafkaBrokers     []string `koanf:"kafka_brokers"`
	KafkaTopic       string   `koanf:"kafka_topic"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Environment:        "development",
		Addr:               ":8000",
		CORSAllowedOrigins: []string{"*"},
		APIKey:             DefaultAPIKey,
		AuthMode:           AuthStatic,
		MaxUploadBytes:     5 * 1024 * 1024,
		StorageBackend:     StorageFS,
		UploadDir:          "uploads",
		S3Region:           "us-east-1",
		ConfidenceMin:      0.75,
		ConfidenceMax:      0.95,
		EventSink:          SinkLog,
		EventQueueSize:     1024,
		EventWorkerCount:   runtime.NumCPU(),
		KafkaTopic:         "skinsight.images",
	}
}

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return invalid("addr must not be empty")
	case c.MaxUploadBytes <= 0:
		return invalid("max_upload_bytes must be positive")
	case c.ConfidenceMin < 0 || c.ConfidenceMax > 1 || c.ConfidenceMin > c.ConfidenceMax:
		return invalid("confidence range must satisfy 0 <= confidence_min <= confidence_max <= 1")
	case c.AnalysisLatencyMinMS < 0 || c.AnalysisLatencyMaxMS < c.AnalysisLatencyMinMS:
		return invalid("analysis latency range is invalid")
	case c.EventQueueSize <= 0:
		return invalid("event_queue_size must be positive")
	}

	switch c.AuthMode {
	case AuthStatic, AuthJWT:
		if c.APIKey == "" {
			return invalid("api_key must not be empty")
		}
	case AuthKeys:
		if len(c.APIKeys) == 0 {
			return invalid("api_keys must not be empty in keys mode")
		}
	default:
		return invalid("unknown auth_mode %q", c.AuthMode)
	}

	switch c.StorageBackend {
	case StorageFS:
		if c.UploadDir == "" {
			return invalid("upload_dir must not be empty")
		}
	case StorageS3, StorageMinio:
		if c.S3Bucket == "" {
			return invalid("s3_bucket is required for %s storage", c.StorageBackend)
		}
		if c.StorageBackend == StorageMinio && c.S3Endpoint == "" {
			return invalid("s3_endpoint is required for minio storage")
		}
	default:
		return invalid("unknown storage_backend %q", c.StorageBackend)
	}

	switch c.EventSink {
	case SinkLog, SinkNone:
	case SinkKafka:
		if len(c.KafkaBrokers) == 0 || c.KafkaTopic == "" {
			return invalid("kafka_brokers and kafka_topic are required for the kafka sink")
		}
	default:
		return invalid("unknown event_sink %q", c.EventSink)
	}

	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
