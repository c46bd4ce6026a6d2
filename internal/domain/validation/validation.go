// Package validation decides whether an uploaded file is an acceptable image.
package validation

import (
	"bytes"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/okian/skinsight/internal/domain/model"
)

// DefaultMaxSize is the largest accepted upload, 5 MiB.
const DefaultMaxSize = 5 * 1024 * 1024

var (
	jpegSignature = []byte{0xFF, 0xD8, 0xFF}
	pngSignature  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
)

// signatures maps each allowed extension to the magic bytes its content must start with.
var signatures = map[string][]byte{
	".jpg":  jpegSignature,
	".jpeg": jpegSignature,
	".png":  pngSignature,
}


// Validator accepts or rejects (filename, content) pairs. It is pure and
// safe for concurrent use.
type Validator struct {
	maxSize int64
}

// New creates a Validator with the given options.
func New(opts ...Option) *Validator {
	v := &Validator{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// MaxSize returns the configured size limit in bytes.
func (v *Validator) MaxSize() int64 { return v.maxSize }

// Validate checks size, then extension, then content signature, and stops at
// the first failure. Content is never modified.
func (v *Validator) Validate(filename string, content []byte) error {
	if int64(len(content)) > v.maxSize {
		return TooLarge(v.maxSize)
	}

	ext := Extension(filename)
	sig, ok := signatures[ext]
	if !ok {
		return model.NewValidationError(model.UnsupportedType,
			"Invalid file type. Allowed: %s", strings.Join(AllowedExtensions(), ", "))
	}

	if !bytes.HasPrefix(content, sig) {
		return model.NewValidationError(model.ContentMismatch,
			"Invalid file content. File does not appear to be a valid %s image", imageKind(ext))
	}

	return nil
}

// TooLarge returns the FileTooLarge error for a limit of max bytes.
func TooLarge(max int64) error {
	return model.NewValidationError(model.FileTooLarge, "File too large. Max size: %s", formatSize(max))
}

// Extension returns the lowercase extension of filename including the dot,
// or "" when there is none. A dotfile such as ".png" has no extension.
func Extension(filename string) string {
	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	if ext == base {
		return ""
	}
	return strings.ToLower(ext)
}

// AllowedExtensions returns the accepted extensions.
func AllowedExtensions() []string {
	return []string{".jpg", ".jpeg", ".png"}
}

func imageKind(ext string) string {
	if ext == ".png" {
		return "PNG"
	}
	return "JPEG"
}

func formatSize(n int64) string {
	const mib = 1024 * 1024
	if n%mib == 0 {
		return strconv.FormatInt(n/mib, 10) + "MB"
	}
	return strconv.FormatInt(n, 10) + " bytes"
}
