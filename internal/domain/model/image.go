// Package model contains domain models passed between layers.
package model

import "time"

// ImageRecord describes one accepted upload. Records are created once the
// bytes are durably written and are never mutated afterwards.
type ImageRecord struct {
	ID               string    // short opaque token, unique for the process lifetime
	OriginalFilename string    // caller-supplied name; untrusted
	Extension        string    // lowercase extension derived from OriginalFilename
	StorageLocation  string    // path, key or URL of the stored bytes
	Size             int64     // stored byte count
	ContentType      string    // sniffed MIME type of the stored bytes
	CreatedAt        time.Time // acceptance time
}

// AnalysisResult is the synthetic analysis returned for a stored image.
// It is generated fresh on every request and never persisted.
type AnalysisResult struct {
	ImageID    string   `json:"image_id"`
	SkinType   string   `json:"skin_type"`
	Issues     []string `json:"issues"`
	Confidence float64  `json:"confidence"`
}

// Skin types an analysis can report.
const (
	SkinOily        = "Oily"
	SkinDry         = "Dry"
	SkinCombination = "Combination"
	SkinNormal      = "Normal"
	SkinSensitive   = "Sensitive"
)

// Issues an analysis can report.
const (
	IssueHyperpigmentation = "Hyperpigmentation"
	IssueAcne              = "Acne"
	IssueFineLines         = "Fine Lines"
	IssueDarkSpots         = "Dark Spots"
	IssueRedness           = "Redness"
	IssueUnevenTexture     = "Uneven Texture"
)

// SkinTypes returns the closed set of skin types in a stable order.
func SkinTypes() []string {
	return []string{SkinOily, SkinDry, SkinCombination, SkinNormal, SkinSensitive}
}

// Issues returns the closed set of issues in a stable order.
func Issues() []string {
	return []string{
		IssueHyperpigmentation,
		IssueAcne,
		IssueFineLines,
		IssueDarkSpots,
		IssueRedness,
		IssueUnevenTexture,
	}
}
