package dialect

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
)

// Dialect names supported by pager.
const (
	Oracle   = "oracle"
	MySQL    = "mysql"
	Postgres = "postgres"
	SQLite   = "sqlite"
)

// Default is the dialect used when none is configured.
const Default = Oracle

// Names returns the supported dialect names.
func Names() []string {
	return []string{Oracle, MySQL, Postgres, SQLite}
}

// Normalize maps driver names and aliases onto a dialect name.
// Unknown names are returned lower-cased and trimmed.
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "":
		return Default
	case "pgx", "postgresql":
		return Postgres
	case "sqlite3":
		return SQLite
	case "mariadb":
		return MySQL
	case "godror", "oci8":
		return Oracle
	}
	return name
}

// ExecQuerier wraps the standard Exec and Query methods. It is implemented
// by *sql.DB, *sql.Conn and *sql.Tx, so a count query and the page query of
// one call can share a transaction.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Placeholder returns the bind marker for the 1-based parameter index:
// $n for Postgres, :n for Oracle and ? otherwise.
func Placeholder(name string, index int) string {
	switch Normalize(name) {
	case Postgres:
		return "$" + strconv.Itoa(index)
	case Oracle:
		return ":" + strconv.Itoa(index)
	}
	return "?"
}
