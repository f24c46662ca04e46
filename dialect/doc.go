// Package dialect provides database dialect names and connection interfaces
// shared by the executor and the paging interceptor.
//
// # Supported Dialects
//
//   - Oracle: windowed paging with ROWNUM and :n placeholders (the default)
//   - MySQL: LIMIT offset,count paging
//   - Postgres: LIMIT/OFFSET paging with $n placeholders
//   - SQLite: LIMIT/OFFSET paging
//
// Each dialect is identified by a constant string:
//
//	dialect.Oracle   = "oracle"
//	dialect.MySQL    = "mysql"
//	dialect.Postgres = "postgres"
//	dialect.SQLite   = "sqlite"
//
// # ExecQuerier Interface
//
// The ExecQuerier interface is implemented by *sql.DB, *sql.Conn and *sql.Tx:
//
//	type ExecQuerier interface {
//	    ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
//	    QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
//	}
//
// # Sub-packages
//
//   - dialect/sql: driver registration and database/sql wrappers
package dialect
