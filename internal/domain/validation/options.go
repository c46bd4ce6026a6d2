package validation

// Option configures a Validator.
type Option func(*Validator)

// WithMaxSize sets the largest accepted content length in bytes.
// Non-positive values are ignored.
func WithMaxSize(n int64) Option {
	return func(v *Validator) {
		if n > 0 {
			v.maxSize = n
		}
	}
}
