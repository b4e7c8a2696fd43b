package store

import (
	"context"
	"errors"
	"testing"

	perr "genscan/internal/platform/errors"
	"genscan/internal/platform/store/ch"
)

type fakeCHRows struct {
	n      int
	closed bool
}

func (f *fakeCHRows) Next() bool             { f.n--; return f.n >= 0 }
func (f *fakeCHRows) Scan(dest ...any) error { return nil }
func (f *fakeCHRows) Err() error             { return nil }
func (f *fakeCHRows) Close() error           { f.closed = true; return nil }
func (f *fakeCHRows) Columns() []string      { return []string{"alpha", "beta"} }

type fakeCH struct {
	table   string
	rows    [][]any
	pingErr error
	closed  bool
	last    *fakeCHRows
}

func (f *fakeCH) Insert(_ context.Context, table string, rows [][]any) error {
	f.table, f.rows = table, rows
	return nil
}

func (f *fakeCH) Query(context.Context, string, ...any) (ch.Rows, error) {
	f.last = &fakeCHRows{n: 2}
	return f.last, nil
}

func (f *fakeCH) Exec(_ context.Context, sql string, _ ...any) error {
	f.table = sql
	return nil
}

func (f *fakeCH) Ping(context.Context) error { return f.pingErr }
func (f *fakeCH) Close() error               { f.closed = true; return nil }

func TestCHAdapter_InsertShapes(t *testing.T) {
	t.Parallel()

	f := &fakeCH{}
	a := newCHAdapter(f)

	if err := a.Insert(context.Background(), "scan_events", []any{"id", 0.5}); err != nil {
		t.Fatalf("single row: %v", err)
	}
	if f.table != "scan_events" || len(f.rows) != 1 || len(f.rows[0]) != 2 {
		t.Fatalf("rows = %v", f.rows)
	}

	if err := a.Insert(context.Background(), "t", [][]any{{1}, {2}, {3}}); err != nil || len(f.rows) != 3 {
		t.Fatalf("batch: %v rows=%v", err, f.rows)
	}

	err := a.Insert(context.Background(), "t", struct{}{})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("bad shape err = %v", err)
	}
}

func TestCHAdapter_QueryWrapsRows(t *testing.T) {
	t.Parallel()

	f := &fakeCH{}
	a := newCHAdapter(f)

	rows, err := a.Query(context.Background(), "SELECT 1")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	n := 0
	for rows.Next() {
		n++
	}
	if n != 2 || rows.Err() != nil {
		t.Fatalf("iterated %d rows err=%v", n, rows.Err())
	}
	rows.Close()
	if !f.last.closed {
		t.Fatalf("close not delegated")
	}
}

func TestCHAdapter_PingAndClose(t *testing.T) {
	t.Parallel()

	f := &fakeCH{pingErr: errors.New("down")}
	a := newCHAdapter(f).(*clickhouseAdapter)
	if err := a.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping error")
	}
	if err := a.Close(); err != nil || !f.closed {
		t.Fatalf("Close: %v closed=%v", err, f.closed)
	}

	var nilAdapter *clickhouseAdapter
	if err := nilAdapter.Ping(context.Background()); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("nil adapter err = %v", err)
	}
}
