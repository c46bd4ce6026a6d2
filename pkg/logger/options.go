package logger

import (
	"errors"
	"io"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Sentinel kinds for logger errors.
var (
	ErrUnknownLevel  = errors.New("unknown log level")
	ErrUnknownFormat = errors.New("unknown log format")
)

type options struct {
	format      string
	writer      io.Writer
	level       string
	sentryDSN   string
	environment string
}

// Option configures Init.
type Option func(*options)

// WithFormat selects text or json output.
func WithFormat(format string) Option {
	return func(o *options) { o.format = format }
}

// WithWriter redirects output, stdout by default.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.writer = w
		}
	}
}

// WithLevel sets the initial level: debug, info, warn or error.
func WithLevel(level string) Option {
	return func(o *options) { o.level = level }
}

// WithSentry forwards error-level records to Sentry when dsn is non-empty.
func WithSentry(dsn, environment string) Option {
	return func(o *options) {
		o.sentryDSN = dsn
		o.environment = environment
	}
}
