package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/syssam/pager/dialect"

	// Registered drivers: "mysql", "pgx", "postgres" and "sqlite".
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Driver wraps a *sql.DB together with the dialect it speaks.
type Driver struct {
	*sql.DB
	dialect string
}

// Open wraps the database/sql.Open method and returns a Driver whose dialect
// is derived from the driver name.
func Open(driverName, source string) (*Driver, error) {
	db, err := sql.Open(driverName, source)
	if err != nil {
		return nil, fmt.Errorf("pager/dialect/sql: open %s: %w", driverName, err)
	}
	return OpenDB(driverName, db), nil
}

// OpenDB wraps the given database/sql.DB with a Driver.
func OpenDB(name string, db *sql.DB) *Driver {
	return &Driver{DB: db, dialect: dialect.Normalize(name)}
}

// Dialect returns the dialect name of the driver.
func (d *Driver) Dialect() string {
	return d.dialect
}

// Tx starts and returns a transaction.
func (d *Driver) Tx(ctx context.Context) (*Tx, error) {
	return d.BeginTx(ctx, nil)
}

// BeginTx starts a transaction with options.
func (d *Driver) BeginTx(ctx context.Context, opts *TxOptions) (*Tx, error) {
	tx, err := d.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("pager/dialect/sql: begin: %w", err)
	}
	return &Tx{Tx: tx, dialect: d.dialect}, nil
}

// InTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise.
func (d *Driver) InTx(ctx context.Context, fn func(*Tx) error) error {
	tx, err := d.Tx(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return errors.Join(err, fmt.Errorf("pager/dialect/sql: rollback: %w", rerr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("pager/dialect/sql: commit: %w", err)
	}
	return nil
}

// Tx wraps a *sql.Tx. Queries issued through it share one connection and
// one snapshot.
type Tx struct {
	*sql.Tx
	dialect string
}

// Dialect returns the dialect name of the transaction's driver.
func (tx *Tx) Dialect() string {
	return tx.dialect
}

type (
	// Rows is an alias to sql.Rows.
	Rows = sql.Rows
	// Result is an alias to sql.Result.
	Result = sql.Result
	// NullInt64 is an alias to sql.NullInt64.
	NullInt64 = sql.NullInt64
	// TxOptions holds the transaction options to be used in DB.BeginTx.
	TxOptions = sql.TxOptions
)

var (
	_ dialect.ExecQuerier = (*Driver)(nil)
	_ dialect.ExecQuerier = (*Tx)(nil)
)
