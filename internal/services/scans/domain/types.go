// Package domain defines the types and ports for the scans service
package domain

import (
	"time"

	"genscan/internal/core/signal"
)

// ContentType is the kind of content a scan was run over
type ContentType string

// Content types stored in content_scans.content_type
const (
	ContentText   ContentType = "text"
	ContentImage  ContentType = "image"
	ContentSocial ContentType = "social"
)

// Valid reports whether c is a known content type
func (c ContentType) Valid() bool {
	switch c {
	case ContentText, ContentImage, ContentSocial:
		return true
	}
	return false
}

// NewScan is the input for recording a detection
type NewScan struct {
	ContentType ContentType
	// Content is the scanned text, stored sanitized and truncated
	Content string
	// FilePath is the uploaded image file name
	FilePath string
	// URL is the social post address
	URL    string
	Result signal.Result
}

// Scan is one persisted detection
type Scan struct {
	ID            string          `json:"id"`
	ContentType   ContentType     `json:"content_type"`
	Content       string          `json:"content,omitempty"`
	FilePath      string          `json:"file_path,omitempty"`
	URL           string          `json:"url,omitempty"`
	AIProbability float64         `json:"ai_probability"`
	Confidence    float64         `json:"confidence"`
	Analysis      signal.Analysis `json:"analysis"`
	Engine        int             `json:"engine"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Method returns the analysis method the scan was produced by
func (s Scan) Method() string { return string(s.Analysis.Method()) }
