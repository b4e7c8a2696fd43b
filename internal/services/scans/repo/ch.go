package repo

import (
	"context"

	perr "genscan/internal/platform/errors"
	"genscan/internal/platform/store"
	"genscan/internal/platform/store/migrations"
	"genscan/internal/services/scans/domain"

	"github.com/google/uuid"
)

// EventsTable is the clickhouse table scans are mirrored to
const EventsTable = "scan_events"

// CH mirrors scans into clickhouse for aggregate reporting
type CH struct {
	ch store.Clickhouse
}

// NewCH constructs a mirror over the clickhouse seam
func NewCH(ch store.Clickhouse) *CH { return &CH{ch: ch} }

// EnsureSchema creates the events table when missing
func (c *CH) EnsureSchema(ctx context.Context) error {
	return c.ch.Exec(ctx, migrations.ScanEventsDDL())
}

// Mirror implements domain.MirrorPort
func (c *CH) Mirror(ctx context.Context, s domain.Scan) error {
	id, err := uuid.Parse(s.ID)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "scan id %q", s.ID)
	}
	return c.ch.Insert(ctx, EventsTable, []any{
		id,
		string(s.ContentType),
		s.Method(),
		s.AIProbability,
		s.Confidence,
		uint16(s.Engine),
		s.CreatedAt.UTC(),
	})
}
