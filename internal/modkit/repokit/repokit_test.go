package repokit

import (
	"context"
	"errors"
	"testing"
	"time"

	"genscan/internal/platform/store"
	"genscan/internal/platform/testkit"
)

// recTx runs fn inline and records statements
type recTx struct {
	sqls []string
	args [][]any
}

func (r *recTx) Exec(_ context.Context, sql string, args ...any) (store.CommandTag, error) {
	r.sqls = append(r.sqls, sql)
	r.args = append(r.args, args)
	return nil, nil
}
func (r *recTx) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (r *recTx) QueryRow(context.Context, string, ...any) store.Row        { return nil }
func (r *recTx) Tx(_ context.Context, fn func(store.RowQuerier) error) error {
	return fn(r)
}

type guardFunc func(context.Context) error

func (g guardFunc) Guard(ctx context.Context) error { return g(ctx) }

func TestMustBind(t *testing.T) {
	t.Parallel()

	b := BindFunc[string](func(Queryer) string { return "scans" })
	if got := MustBind[string](b, &recTx{}); got != "scans" {
		t.Fatalf("MustBind = %q", got)
	}
	testkit.MustPanic(t, func() { MustBind[string](b, nil) })
}

func TestWithBeginHooks_RunsBeforeFn(t *testing.T) {
	t.Parallel()

	inner := &recTx{}
	tx := WithBeginHooks(inner, StatementTimeout(1500*time.Millisecond))

	err := tx.Tx(context.Background(), func(q Queryer) error {
		_, err := q.Exec(context.Background(), "INSERT INTO content_scans DEFAULT VALUES")
		return err
	})
	if err != nil {
		t.Fatalf("Tx: %v", err)
	}
	if len(inner.sqls) != 2 || inner.args[0][0] != "1500" {
		t.Fatalf("statements = %v args = %v", inner.sqls, inner.args)
	}
}

func TestWithBeginHooks_HookErrorSkipsFn(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	ran := false
	tx := WithBeginHooks(&recTx{}, func(context.Context, Queryer) error { return boom })
	err := tx.Tx(context.Background(), func(Queryer) error { ran = true; return nil })
	if !errors.Is(err, boom) || ran {
		t.Fatalf("err = %v ran = %v", err, ran)
	}
}

func TestWithBeginHooks_PassThrough(t *testing.T) {
	t.Parallel()

	inner := &recTx{}
	if WithBeginHooks(inner) != TxRunner(inner) {
		t.Fatalf("no hooks should return inner")
	}
	if WithBeginHooks(nil, StatementTimeout(time.Second)) != nil {
		t.Fatalf("nil inner should stay nil")
	}

	_ = WithBeginHooks(inner, StatementTimeout(0)).Tx(context.Background(), func(Queryer) error { return nil })
	if len(inner.sqls) != 0 {
		t.Fatalf("zero timeout issued %v", inner.sqls)
	}
}

func TestMustGuard(t *testing.T) {
	t.Parallel()

	var sawDeadline bool
	MustGuard(context.Background(), guardFunc(func(ctx context.Context) error {
		_, sawDeadline = ctx.Deadline()
		return nil
	}))
	if !sawDeadline {
		t.Fatalf("MustGuard should add a deadline")
	}

	testkit.MustPanic(t, func() {
		MustGuard(context.Background(), guardFunc(func(context.Context) error { return errors.New("pg: refused") }))
	})
}
