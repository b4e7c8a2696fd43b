package store

import (
	"context"

	perr "genscan/internal/platform/errors"
)

// ScanFunc maps the current row into T
type ScanFunc[T any] func(Row) (T, error)

// ExecOne runs a write that must touch exactly one row
func ExecOne(ctx context.Context, q RowQuerier, sql string, args ...any) error {
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag == nil {
		return perr.DBf("write returned no command tag")
	}
	if n := tag.RowsAffected(); n != 1 {
		return perr.DBf("expected one row affected, got %d (%s)", n, tag.String())
	}
	return nil
}

// Many maps every row of the result with scan, stopping at the first scan error
func Many[T any](ctx context.Context, q RowQuerier, scan ScanFunc[T], sql string, args ...any) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
