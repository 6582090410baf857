package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"filmloc/internal/catalog"
)

// dialect isolates the SQL differences between SQLite and PostgreSQL.
// Queries are written with ? placeholders and rebound per backend.
type dialect interface {
	name() string
	rebind(query string) string
	// isNull returns an expression comparing column to the next placeholder
	// so that a NULL argument matches a NULL column.
	isNull(column string) string
	isUniqueViolation(err error) bool
	isIntegrityViolation(err error) bool
	isTransient(err error) bool
}

type sqliteDialect struct{}

const (
	sqliteConstraintCode       = 19
	sqliteConstraintUnique     = 2067
	sqliteConstraintPrimaryKey = 1555
)

func (sqliteDialect) name() string { return "sqlite" }

func (sqliteDialect) rebind(query string) string { return query }

func (sqliteDialect) isNull(column string) string { return column + " IS ?" }

func (sqliteDialect) isUniqueViolation(err error) bool {
	var coder interface{ Code() int }
	if errors.As(err, &coder) {
		code := coder.Code()
		return code == sqliteConstraintUnique || code == sqliteConstraintPrimaryKey
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (sqliteDialect) isIntegrityViolation(err error) bool {
	var coder interface{ Code() int }
	if errors.As(err, &coder) {
		return coder.Code()&0xff == sqliteConstraintCode
	}
	return strings.Contains(err.Error(), "constraint failed")
}

func (sqliteDialect) isTransient(err error) bool {
	return isSQLiteBusy(err)
}

type postgresDialect struct{}

func (postgresDialect) name() string { return "postgres" }

func (postgresDialect) rebind(query string) string {
	var (
		b     strings.Builder
		n     int
		quote bool
	)
	b.Grow(len(query) + 8)
	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case ch == '\'':
			quote = !quote
			b.WriteByte(ch)
		case ch == '?' && !quote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

func (postgresDialect) isNull(column string) string { return column + " IS NOT DISTINCT FROM ?" }

func (postgresDialect) isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func (postgresDialect) isIntegrityViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) || pgerrcode.IsDataException(pgErr.Code)
}

func (postgresDialect) isTransient(err error) bool {
	if pgconn.Timeout(err) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgerrcode.IsConnectionException(pgErr.Code) ||
			pgerrcode.IsTransactionRollback(pgErr.Code) ||
			pgerrcode.IsInsufficientResources(pgErr.Code) ||
			pgErr.Code == pgerrcode.AdminShutdown ||
			pgErr.Code == pgerrcode.CannotConnectNow
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// classify wraps a backend error with the catalog Kind that drives the
// pipeline's error policy. Unique violations also match catalog.ErrConflict.
func classify(op string, d dialect, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch {
	case d.isUniqueViolation(err):
		return catalog.Integrity(op, fmt.Errorf("%w: %w", catalog.ErrConflict, err))
	case d.isIntegrityViolation(err):
		return catalog.Integrity(op, err)
	case d.isTransient(err), errors.Is(err, context.DeadlineExceeded):
		return catalog.Transient(op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
