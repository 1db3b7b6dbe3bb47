package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ncruces/go-sqlite3"
	"gorm.io/gorm"

	"gin-gorm-scaffold/internal/core/pagination"
)

func asError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Classify maps any failure to the repository taxonomy. Typed driver
// errors are checked before transport errors, and both before the
// generic fallbacks. A nil error yields nil.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := asError(err); ok {
		return e
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return newError(KindTimeout, err)
	case errors.Is(err, context.Canceled):
		return newError(KindOperational, err)
	}

	if kind, ok := classifyDriver(err); ok {
		return newError(kind, err)
	}
	if kind, ok := classifyTransport(err); ok {
		return newError(kind, err)
	}
	if kind, ok := classifyGorm(err); ok {
		return newError(kind, err)
	}

	var verrs validator.ValidationErrors
	var invalid *validator.InvalidValidationError
	if errors.As(err, &verrs) || errors.As(err, &invalid) || errors.Is(err, pagination.ErrInvalidRequest) {
		return newError(KindData, err)
	}

	if kind, ok := classifyMessage(err); ok {
		return newError(kind, err)
	}
	return newError(KindRepository, err)
}

func classifyDriver(err error) (Kind, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgCodeKind(pgErr.Code), true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return mysqlNumberKind(myErr.Number), true
	}
	var liteErr *sqlite3.Error
	if errors.As(err, &liteErr) {
		return sqliteCodeKind(liteErr.Code()), true
	}
	return 0, false
}

// PostgreSQL SQLSTATE: https://www.postgresql.org/docs/current/errcodes-appendix.html
func pgCodeKind(code string) Kind {
	switch code {
	case "57014": // query_canceled (statement_timeout)
		return KindTimeout
	case "57P01", "57P02", "57P03": // admin_shutdown, crash_shutdown, cannot_connect_now
		return KindConnection
	}
	if len(code) < 2 {
		return KindStore
	}
	switch code[:2] {
	case "08":
		return KindConnection
	case "23":
		return KindIntegrity
	case "22":
		return KindData
	case "25", "40", "53", "55", "57", "58":
		return KindOperational
	case "0A", "26", "34", "3D", "3F", "42":
		return KindQuery
	case "XX":
		return KindInternal
	}
	return KindStore
}

// MySQL server error numbers: https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
func mysqlNumberKind(n uint16) Kind {
	switch n {
	case 1040, 1045, 1129, 1130, 1152, 1153, 1184, 2002, 2003, 2006, 2013:
		return KindConnection
	case 1022, 1048, 1062, 1169, 1216, 1217, 1451, 1452, 1557, 1586, 3819:
		return KindIntegrity
	case 1264, 1265, 1292, 1366, 1406, 1411, 1690:
		return KindData
	case 1205, 3024:
		return KindTimeout
	case 1053, 1180, 1181, 1213, 1290, 1317, 1637:
		return KindOperational
	case 1044, 1049, 1054, 1064, 1109, 1146, 1149, 1166, 1248:
		return KindQuery
	case 1105, 1815:
		return KindInternal
	}
	return KindStore
}

func sqliteCodeKind(code sqlite3.ErrorCode) Kind {
	switch code {
	case sqlite3.CONSTRAINT:
		return KindIntegrity
	case sqlite3.MISMATCH, sqlite3.TOOBIG, sqlite3.RANGE:
		return KindData
	case sqlite3.INTERRUPT:
		return KindTimeout
	case sqlite3.CANTOPEN, sqlite3.NOTADB:
		return KindConnection
	case sqlite3.BUSY, sqlite3.LOCKED, sqlite3.IOERR, sqlite3.FULL, sqlite3.READONLY, sqlite3.PERM, sqlite3.ABORT, sqlite3.PROTOCOL, sqlite3.NOLFS:
		return KindOperational
	case sqlite3.ERROR, sqlite3.MISUSE, sqlite3.SCHEMA, sqlite3.AUTH:
		return KindQuery
	case sqlite3.INTERNAL, sqlite3.CORRUPT, sqlite3.NOMEM, sqlite3.FORMAT:
		return KindInternal
	}
	return KindStore
}

func classifyTransport(err error) (Kind, bool) {
	var connectErr *pgconn.ConnectError
	switch {
	case errors.As(err, &connectErr):
		return KindConnection, true
	case pgconn.Timeout(err):
		return KindTimeout, true
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, mysql.ErrInvalidConn), errors.Is(err, sql.ErrConnDone):
		return KindConnection, true
	case errors.Is(err, sql.ErrTxDone):
		return KindOperational, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout, true
		}
		return KindConnection, true
	}
	return 0, false
}

func classifyGorm(err error) (Kind, bool) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return KindNotFound, true
	case errors.Is(err, gorm.ErrDuplicatedKey),
		errors.Is(err, gorm.ErrForeignKeyViolated),
		errors.Is(err, gorm.ErrCheckConstraintViolated):
		return KindIntegrity, true
	case errors.Is(err, gorm.ErrInvalidData),
		errors.Is(err, gorm.ErrInvalidField),
		errors.Is(err, gorm.ErrInvalidValue),
		errors.Is(err, gorm.ErrInvalidValueOfLength),
		errors.Is(err, gorm.ErrEmptySlice),
		errors.Is(err, gorm.ErrPrimaryKeyRequired):
		return KindData, true
	case errors.Is(err, gorm.ErrInvalidTransaction):
		return KindOperational, true
	case errors.Is(err, gorm.ErrMissingWhereClause),
		errors.Is(err, gorm.ErrUnsupportedRelation),
		errors.Is(err, gorm.ErrModelValueRequired),
		errors.Is(err, gorm.ErrModelAccessibleFieldsRequired),
		errors.Is(err, gorm.ErrSubQueryRequired),
		errors.Is(err, gorm.ErrPreloadNotAllowed),
		errors.Is(err, gorm.ErrNotImplemented),
		errors.Is(err, gorm.ErrDryRunModeUnsupported):
		return KindQuery, true
	case errors.Is(err, gorm.ErrInvalidDB), errors.Is(err, gorm.ErrUnsupportedDriver):
		return KindConnection, true
	}
	return 0, false
}

// classifyMessage is the last resort for drivers that only expose text.
func classifyMessage(err error) (Kind, bool) {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "unique constraint"),
		strings.Contains(msg, "unique violation"),
		strings.Contains(msg, "foreign key constraint"):
		return KindIntegrity, true
	case strings.Contains(msg, "database is closed"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "broken pipe"),
		strings.Contains(msg, "bad connection"):
		return KindConnection, true
	case strings.Contains(msg, "syntax error"),
		strings.Contains(msg, "no such table"),
		strings.Contains(msg, "no such column"):
		return KindQuery, true
	}
	return 0, false
}
