package errors

import (
	stderrs "errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the scan store can hit
const (
	pgUniqueViolation  = "23505"
	pgNotNullViolation = "23502"
	pgCheckViolation   = "23514"
	pgStringTruncation = "22001"
	pgInvalidText      = "22P02"
	pgUndefinedTable   = "42P01"
	pgQueryCanceled    = "57014"
	pgTooManyConns     = "53300"
	pgReadOnlyTx       = "25006"
	pgConnectionClass  = "08"
	pgOperatorClass    = "57P"
)

// ExtractPgError returns the *pgconn.PgError behind err, if any
func ExtractPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// DBErrorCode classifies a postgres error; !ok means err is not a PgError
func DBErrorCode(err error) (ErrorCode, bool) {
	pgErr, ok := ExtractPgError(err)
	if !ok {
		return ErrorCodeUnknown, false
	}

	switch code := pgErr.Code; {
	case code == pgUniqueViolation:
		return ErrorCodeDuplicateKey, true

	// a row the schema refuses, such as a probability outside [0,1]
	case code == pgCheckViolation, code == pgNotNullViolation,
		code == pgStringTruncation, code == pgInvalidText:
		return ErrorCodeInvalidArgument, true

	// the database is there but cannot serve scans right now; a missing table
	// means migrations have not run yet
	case code == pgUndefinedTable, code == pgQueryCanceled, code == pgTooManyConns,
		code == pgReadOnlyTx, strings.HasPrefix(code, pgConnectionClass),
		strings.HasPrefix(code, pgOperatorClass):
		return ErrorCodeUnavailable, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps err with its classified code, DB for non postgres errors.
// An err that already carries a code keeps it. nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	if code, ok := DBErrorCode(err); ok {
		return Wrap(err, code, msg)
	}
	if e, ok := As(err); ok {
		return Wrap(err, e.Code(), msg)
	}
	return Wrap(err, ErrorCodeDB, msg)
}

// FromPostgresWithField is FromPostgres plus the offending column when postgres names it
func FromPostgresWithField(err error, msg string) error {
	out := FromPostgres(err, msg)
	if f := pgField(err); f != "" {
		return WithField(out, f)
	}
	return out
}

// pgField prefers ColumnName, then derives the column from a default constraint
// name: content_scans_ai_probability_check -> ai_probability
func pgField(err error) string {
	pgErr, ok := ExtractPgError(err)
	if !ok {
		return ""
	}
	if col := strings.TrimSpace(pgErr.ColumnName); col != "" {
		return col
	}
	c := strings.TrimSpace(pgErr.ConstraintName)
	if c == "" {
		return ""
	}
	if t := pgErr.TableName; t != "" {
		c = strings.TrimPrefix(c, t+"_")
	}
	for _, suffix := range []string{"_check", "_not_null", "_key", "_pkey"} {
		if trimmed, found := strings.CutSuffix(c, suffix); found {
			return trimmed
		}
	}
	return ""
}
