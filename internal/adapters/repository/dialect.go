package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const queryTimeout = 3 * time.Second

// dialect holds what differs between the SQL backends. Queries are written
// with ? placeholders and rebound per driver.
type dialect struct {
	name string
	// lockUser serializes cap checks for one user inside tx.
	lockUser          func(ctx context.Context, tx *sqlx.Tx, userID string) error
	isUniqueViolation func(err error) bool
}

var postgresDialect = dialect{
	name: "postgres",
	lockUser: func(ctx context.Context, tx *sqlx.Tx, userID string) error {
		_, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID)
		return err
	},
	isUniqueViolation: func(err error) bool {
		var pgErr *pgconn.PgError
		return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
	},
}

// SQLite allows a single writer, and OpenSQLite pins one connection, so the
// transaction itself is the lock.
var sqliteDialect = dialect{
	name: "sqlite",
	lockUser: func(context.Context, *sqlx.Tx, string) error {
		return nil
	},
	isUniqueViolation: func(err error) bool {
		var sqliteErr *sqlite.Error
		if !errors.As(err, &sqliteErr) {
			return false
		}
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	},
}
