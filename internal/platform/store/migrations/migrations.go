// Package migrations embeds the schema for the genscan stores
package migrations

import (
	"embed"
	"errors"
	"strings"

	perr "genscan/internal/platform/errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // pgx5:// driver
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/*.sql
var pgFS embed.FS

//go:embed clickhouse/scan_events.sql
var scanEventsDDL string

// ScanEventsDDL is the clickhouse table behind the scan mirror
func ScanEventsDDL() string { return scanEventsDDL }

// New builds a migrator over the embedded postgres migrations
// postgres:// and postgresql:// dsns are routed to the pgx v5 driver
func New(dsn string) (*migrate.Migrate, error) {
	src, err := iofs.New(pgFS, "sql")
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "open embedded migrations")
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, DriverDSN(dsn))
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "create migrator")
	}
	return m, nil
}

// Up applies every pending migration, treating no change as success
func Up(dsn string) error {
	m, err := New(dsn)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return perr.Wrap(err, perr.ErrorCodeDB, "apply migrations")
	}
	return nil
}

// DriverDSN rewrites a libpq style dsn to the pgx5 scheme migrate expects
func DriverDSN(dsn string) string {
	for _, p := range []string{"postgresql://", "postgres://"} {
		if rest, ok := strings.CutPrefix(dsn, p); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}
