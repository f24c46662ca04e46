package sql

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/syssam/pager/dialect"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOpenDB tests the OpenDB function with different dialects.
func TestOpenDB(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		dialect string
	}{
		{"Postgres", "postgres", dialect.Postgres},
		{"Pgx", "pgx", dialect.Postgres},
		{"MySQL", "mysql", dialect.MySQL},
		{"SQLite", "sqlite", dialect.SQLite},
		{"Oracle", "godror", dialect.Oracle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, _, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			drv := OpenDB(tt.driver, db)
			assert.NotNil(t, drv)
			assert.Equal(t, tt.dialect, drv.Dialect())
		})
	}
}

func TestRegisteredDrivers(t *testing.T) {
	drivers := sql.Drivers()
	for _, name := range []string{"mysql", "pgx", "postgres", "sqlite"} {
		assert.Contains(t, drivers, name)
	}
}

func TestOpenSQLite(t *testing.T) {
	drv, err := Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer drv.Close()
	assert.Equal(t, dialect.SQLite, drv.Dialect())

	var n int
	require.NoError(t, drv.QueryRowContext(context.Background(), "SELECT 1").Scan(&n))
	assert.Equal(t, 1, n)
}

// TestDriverTransaction tests transaction operations.
func TestDriverTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.MySQL, db)

	t.Run("commit", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM orders").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()

		err := drv.InTx(context.Background(), func(tx *Tx) error {
			assert.Equal(t, dialect.MySQL, tx.Dialect())
			rows, err := tx.QueryContext(context.Background(), "SELECT id FROM orders")
			if err != nil {
				return err
			}
			return rows.Close()
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback", func(t *testing.T) {
		boom := errors.New("boom")
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := drv.InTx(context.Background(), func(*Tx) error { return boom })
		require.ErrorIs(t, err, boom)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback_error", func(t *testing.T) {
		boom := errors.New("boom")
		mock.ExpectBegin()
		mock.ExpectRollback().WillReturnError(errors.New("conn lost"))

		err := drv.InTx(context.Background(), func(*Tx) error { return boom })
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "conn lost")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin_error", func(t *testing.T) {
		mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

		err := drv.InTx(context.Background(), func(*Tx) error {
			t.Fatal("fn must not run")
			return nil
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "begin")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
