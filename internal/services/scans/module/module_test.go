package module

import (
	"context"
	"strings"
	"testing"
	"time"

	"genscan/internal/core/signal"
	"genscan/internal/modkit"
	"genscan/internal/modkit/repokit"
	"genscan/internal/platform/config"
	perr "genscan/internal/platform/errors"
	"genscan/internal/platform/store"
	"genscan/internal/services/scans/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

// sqlLog runs transactions inline and keeps every statement
type sqlLog struct{ sqls []string }

func (l *sqlLog) Exec(_ context.Context, sql string, _ ...any) (store.CommandTag, error) {
	l.sqls = append(l.sqls, sql)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}
func (l *sqlLog) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (l *sqlLog) QueryRow(context.Context, string, ...any) store.Row        { return nil }
func (l *sqlLog) Tx(_ context.Context, fn func(repokit.Queryer) error) error {
	return fn(l)
}

func TestFromConfig(t *testing.T) {
	t.Setenv("GENSCAN_SCANS_HISTORY_MAX", "20")
	t.Setenv("GENSCAN_SCANS_STATEMENT_TIMEOUT", "750ms")

	o := FromConfig(config.New())
	if o.MaxLimit != 20 || o.DefaultLimit != 50 || !o.Mirror {
		t.Fatalf("opts = %+v", o)
	}
	if o.StatementTimeout != 750*time.Millisecond {
		t.Fatalf("statement timeout = %v", o.StatementTimeout)
	}
}

func TestNew_BoundsScanTransactions(t *testing.T) {
	t.Setenv("GENSCAN_SCANS_STATEMENT_TIMEOUT", "1s")

	db := &sqlLog{}
	m := New(modkit.Deps{Cfg: config.New(), PG: db})
	ports := m.Ports().(Ports)

	_, err := ports.Recorder.Record(context.Background(), domain.NewScan{
		ContentType: domain.ContentText,
		Content:     "a short sample",
		Result:      signal.Result{AIProbability: 0.3, Confidence: 0.5, Analysis: signal.Analysis{"method": "basic"}},
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(db.sqls) != 2 || !strings.Contains(db.sqls[0], "statement_timeout") || !strings.Contains(db.sqls[1], "content_scans") {
		t.Fatalf("statements = %q", db.sqls)
	}
}

func TestNew_WithoutPostgres(t *testing.T) {
	m := New(modkit.Deps{Cfg: config.New()})
	if m.Name() != "scans" {
		t.Fatalf("name = %q", m.Name())
	}
	_, err := m.Ports().(Ports).History.History(context.Background(), 10)
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("err = %v", err)
	}
}
