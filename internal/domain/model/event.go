package model

import "time"

// Event types published after pipeline operations complete.
const (
	EventImageUploaded = "image.uploaded"
	EventImageAnalyzed = "image.analyzed"
)

// Event is a notification emitted after a successful upload or analysis.
// Delivery is best-effort and never affects the request outcome.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	ImageID    string    `json:"image_id"`
	Filename   string    `json:"filename,omitempty"`
	Location   string    `json:"location,omitempty"`
	Size       int64     `json:"size,omitempty"`
	SkinType   string    `json:"skin_type,omitempty"`
	Issues     []string  `json:"issues,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
