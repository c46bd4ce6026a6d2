package publisher

import "errors"

// Sentinel kinds for publisher configuration errors.
var (
	ErrNoBrokers = errors.New("publisher: at least one kafka broker is required")
	ErrNoTopic   = errors.New("publisher: kafka topic is required")
)
