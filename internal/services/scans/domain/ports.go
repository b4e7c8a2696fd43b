package domain

import "context"

// RecorderPort persists detections
type RecorderPort interface {
	Record(ctx context.Context, in NewScan) (Scan, error)
}

// HistoryPort lists recent detections, newest first
type HistoryPort interface {
	History(ctx context.Context, limit int) ([]Scan, error)
}

// MirrorPort copies a stored scan to a secondary analytics store
type MirrorPort interface {
	Mirror(ctx context.Context, s Scan) error
}
