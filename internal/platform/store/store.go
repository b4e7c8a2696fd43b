// Package store opens the backends scans are persisted to: postgres for the
// scan history and an optional clickhouse mirror for analytics
package store

import (
	"context"
	"errors"
	"fmt"

	"genscan/internal/platform/logger"
)

// Store is the set of opened backends; a nil field means that backend is off
type Store struct {
	Log logger.Logger
	PG  TxRunner
	CH  Clickhouse
}

type Row interface {
	Scan(dest ...any) error
}

// Rows is a forward-only result set; Close is safe after exhaustion
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is what repos run sql against, either the pool or an open tx
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner commits when fn returns nil and rolls back otherwise
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Clickhouse is the mirror surface: batch inserts of scan rows plus ad hoc queries
type Clickhouse interface {
	Insert(ctx context.Context, table string, data any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Exec(ctx context.Context, sql string, args ...any) error
	Close() error
}

type Pinger interface{ Ping(context.Context) error }

// Open connects the backends cfg enables. A failing backend aborts Open and
// closes whatever was already connected
func Open(ctx context.Context, cfg Config) (*Store, error) {
	s := &Store{Log: cfg.Log.With().Str("component", "store").Logger()}

	if cfg.PG.Enabled {
		p, err := openPG(ctx, cfg, s.Log)
		if err != nil {
			return nil, err
		}
		s.PG = p
	}
	if cfg.CH.Enabled {
		c, err := openCH(ctx, cfg.CH)
		if err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		s.CH = c
	}
	return s, nil
}

// Guard pings both backends at boot. An unreachable scan history is an error;
// an unreachable mirror is only logged, since scans still persist without it
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	if p, ok := s.PG.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
	}
	if p, ok := s.CH.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			s.Log.Warn().Err(err).Msg("clickhouse mirror unreachable, scans will not be mirrored")
		}
	}
	return nil
}

// Close closes the mirror first, then the pool, and joins their errors
func (s *Store) Close(context.Context) error {
	var errs []error
	if s.CH != nil {
		if err := s.CH.Close(); err != nil {
			errs = append(errs, fmt.Errorf("ch: %w", err))
		}
	}
	if c, ok := s.PG.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("pg: %w", err))
		}
	}
	return errors.Join(errs...)
}
