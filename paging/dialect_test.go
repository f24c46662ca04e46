package paging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/pager"
	"github.com/syssam/pager/dialect"
)

func TestStrategyFor(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Default", "", dialect.Oracle},
		{"Oracle", "oracle", dialect.Oracle},
		{"MySQL", "MySQL", dialect.MySQL},
		{"MariaDB", "mariadb", dialect.MySQL},
		{"Postgres", "postgres", dialect.Postgres},
		{"Pgx", "pgx", dialect.Postgres},
		{"SQLite", "sqlite3", dialect.SQLite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := StrategyFor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Name())
		})
	}

	t.Run("Unsupported", func(t *testing.T) {
		s, err := StrategyFor("db2")
		assert.Nil(t, s)
		require.True(t, pager.IsUnsupportedDialect(err))
		assert.EqualError(t, err, `pager: unsupported dialect "db2"`)
	})
}

func TestPageSQL(t *testing.T) {
	const base = "SELECT * FROM orders"
	tests := []struct {
		dialect string
		want    string
	}{
		{dialect.MySQL, "SELECT * FROM orders LIMIT 20,10"},
		{dialect.Oracle, "SELECT * FROM (SELECT FFT_TMP_TB.*,ROWNUM ROW_ID FROM (SELECT * FROM orders) FFT_TMP_TB WHERE ROWNUM<=30) WHERE ROW_ID>20"},
		{dialect.Postgres, "SELECT * FROM orders LIMIT 10 OFFSET 20"},
		{dialect.SQLite, "SELECT * FROM orders LIMIT 10 OFFSET 20"},
	}
	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			s, err := StrategyFor(tt.dialect)
			require.NoError(t, err)
			got := s.PageSQL(base, 20, 10)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, s.PageSQL(base, 20, 10))
			assert.Equal(t, "SELECT COUNT(0) FROM (SELECT * FROM orders) QEEKA_TMP_COUNTB", s.CountSQL(base))
		})
	}
}

func TestCountSQLOpaque(t *testing.T) {
	s, err := StrategyFor(dialect.MySQL)
	require.NoError(t, err)
	base := "SELECT o.status, COUNT(*) n FROM orders o JOIN users u ON u.id = o.user_id GROUP BY o.status"
	assert.Equal(t, "SELECT COUNT(0) FROM ("+base+") QEEKA_TMP_COUNTB", s.CountSQL(base))
}
