// Package domain holds DTOs for detection http and service contracts
package domain

import (
	"genscan/internal/core/signal"
	scans "genscan/internal/services/scans/domain"
)

// TextRequest is the body of a text detection
type TextRequest struct {
	Content string `json:"content" validate:"notblank" example:"The quick brown fox jumps over the lazy dog."`
}

// ImageUpload is a decoded multipart image upload
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// DetectionResponse is returned by every detection route
// ScanID is empty when the scan could not be stored
type DetectionResponse struct {
	ScanID        string            `json:"scan_id,omitempty"`
	ContentType   scans.ContentType `json:"content_type"`
	AIProbability float64           `json:"ai_probability"`
	Confidence    float64           `json:"confidence"`
	Analysis      signal.Analysis   `json:"analysis"`
}

// HistoryResponse lists stored scans newest first
type HistoryResponse struct {
	Scans []scans.Scan `json:"scans"`
	Count int          `json:"count"`
}

// TierInfo describes the tier a detector attempts first and where it falls back to
type TierInfo struct {
	Tier      signal.Method   `json:"tier"`
	Fallbacks []signal.Method `json:"fallbacks"`
	Model     string          `json:"model,omitempty"`
}

// Capabilities reports the active detection tiers
type Capabilities struct {
	Engine int      `json:"engine"`
	Text   TierInfo `json:"text"`
	Image  TierInfo `json:"image"`
}
