package domain

import (
	"context"

	"genscan/internal/core/signal"
)

// TextDetector scores text; it never fails
type TextDetector interface {
	Tier() signal.Method
	Detect(ctx context.Context, text string) signal.Result
}

// ImageDetector scores encoded images; it never fails
type ImageDetector interface {
	Tier() signal.Method
	Detect(ctx context.Context, data []byte) signal.Result
}

// ServicePort defines the detection workflows the http layer calls
type ServicePort interface {
	Text(ctx context.Context, content string) (DetectionResponse, error)
	Image(ctx context.Context, in ImageUpload) (DetectionResponse, error)
	Social(ctx context.Context, rawURL string) (DetectionResponse, error)
	History(ctx context.Context, limit int) (HistoryResponse, error)
	Capabilities() Capabilities
}
