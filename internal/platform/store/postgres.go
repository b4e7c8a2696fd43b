package store

import (
	"context"
	"strings"
	"time"

	perr "genscan/internal/platform/errors"
	"genscan/internal/platform/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxQuerier is the statement surface shared by *pgxpool.Pool and pgx.Tx
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgPool is the part of *pgxpool.Pool the store uses
type pgPool interface {
	pgxQuerier
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// QueryEvent describes one finished statement
type QueryEvent struct {
	SQL     string
	Args    int
	Elapsed time.Duration
	Err     error
	Slow    bool
}

// QueryObserver receives one event per statement
type QueryObserver func(ctx context.Context, ev QueryEvent)

var newPool = func(ctx context.Context, cfg *pgxpool.Config) (pgPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// openPG builds the pool, waits for postgres to answer and wraps it as a TxRunner
func openPG(ctx context.Context, cfg Config, log logger.Logger) (*postgres, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.PG.URL)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "parse postgres url")
	}
	if cfg.PG.MaxConns > 0 {
		pcfg.MaxConns = cfg.PG.MaxConns
	}
	if cfg.AppName != "" {
		pcfg.ConnConfig.RuntimeParams["application_name"] = cfg.AppName
	}

	pool, err := newPool(ctx, pcfg)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "create postgres pool")
	}
	if err := waitReady(ctx, pool, cfg.PG); err != nil {
		pool.Close()
		return nil, err
	}

	p := &postgres{pool: pool, traced: traced{q: pool}}
	if cfg.PG.SlowQueryMs > 0 {
		p.slow = time.Duration(cfg.PG.SlowQueryMs) * time.Millisecond
	}
	if cfg.PG.LogSQL || p.slow > 0 {
		p.observe = logQueries(log, cfg.PG.LogSQL)
	}
	return p, nil
}

// waitReady pings with doubling backoff so the api can start alongside its database
func waitReady(ctx context.Context, pool pgPool, cfg PGConfig) error {
	attempts := cfg.ConnectRetries
	if attempts <= 0 {
		attempts = 20
	}
	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	backoff := 150 * time.Millisecond
	var lastErr error
	for range attempts {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		lastErr = pool.Ping(pctx)
		cancel()
		if lastErr == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return perr.Wrap(ctx.Err(), perr.ErrorCodeUnavailable, "postgres boot ping")
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, 2*time.Second)
	}
	return perr.Wrapf(lastErr, perr.ErrorCodeUnavailable, "postgres not ready after %d attempts", attempts)
}

// logQueries logs every statement when all is set, otherwise only slow ones.
// Argument values are never logged because scan content is user submitted
func logQueries(root logger.Logger, all bool) QueryObserver {
	log := root.With().Str("component", "pg").Logger()
	return func(_ context.Context, ev QueryEvent) {
		if !all && !ev.Slow {
			return
		}
		evt := log.Info()
		if ev.Slow {
			evt = log.Warn()
		}
		evt.Float64("elapsed_ms", float64(ev.Elapsed.Microseconds())/1000).
			Bool("slow", ev.Slow).
			Str("sql", strings.Join(strings.Fields(ev.SQL), " ")).
			Int("args", ev.Args).
			Err(ev.Err).
			Msg("pg query")
	}
}

// traced runs statements on a pool or tx and reports them to observe
type traced struct {
	q       pgxQuerier
	observe QueryObserver
	slow    time.Duration
}

func (t traced) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	start := time.Now()
	ct, err := t.q.Exec(ctx, sql, args...)
	t.done(ctx, sql, len(args), start, err)
	return ct, err
}

func (t traced) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := t.q.Query(ctx, sql, args...)
	t.done(ctx, sql, len(args), start, err)
	if err != nil {
		return nil, err
	}
	return pgRows{rs}, nil
}

// QueryRow reports once Scan has run, since pgx defers errors until then
func (t traced) QueryRow(ctx context.Context, sql string, args ...any) Row {
	start := time.Now()
	return pgRow{r: t.q.QueryRow(ctx, sql, args...), after: func(err error) {
		t.done(ctx, sql, len(args), start, err)
	}}
}

func (t traced) done(ctx context.Context, sql string, args int, start time.Time, err error) {
	if t.observe == nil {
		return
	}
	elapsed := time.Since(start)
	t.observe(ctx, QueryEvent{
		SQL:     sql,
		Args:    args,
		Elapsed: elapsed,
		Err:     err,
		Slow:    t.slow > 0 && elapsed >= t.slow,
	})
}

// postgres is the TxRunner behind Store.PG
type postgres struct {
	traced
	pool pgPool
}

// Tx runs fn on a transaction, rolling back when fn fails
func (p *postgres) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(traced{q: tx, observe: p.observe, slow: p.slow}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// Ping reports whether postgres answers
func (p *postgres) Ping(ctx context.Context) error { return p.pool.Ping(ctx) }

// Close closes the pool
func (p *postgres) Close() error {
	p.pool.Close()
	return nil
}

type pgRow struct {
	r     pgx.Row
	after func(error)
}

func (x pgRow) Scan(dst ...any) error {
	err := x.r.Scan(dst...)
	x.after(err)
	return err
}

type pgRows struct{ r pgx.Rows }

func (x pgRows) Next() bool            { return x.r.Next() }
func (x pgRows) Scan(dst ...any) error { return x.r.Scan(dst...) }
func (x pgRows) Err() error            { return x.r.Err() }
func (x pgRows) Close()                { x.r.Close() }
