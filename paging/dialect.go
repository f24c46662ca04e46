package paging

import (
	"strconv"
	"strings"

	"github.com/syssam/pager"
	"github.com/syssam/pager/dialect"
)

// Aliases of the derived tables wrapped around the base query.
const (
	countAlias  = "QEEKA_TMP_COUNTB"
	windowAlias = "FFT_TMP_TB"
	rowIDColumn = "ROW_ID"
)

// Strategy rewrites a base query for one SQL dialect. Implementations are
// pure functions of their input.
type Strategy interface {
	// Name returns the dialect name.
	Name() string
	// CountSQL returns a query selecting the number of rows of base.
	CountSQL(base string) string
	// PageSQL returns base bounded to size rows starting at offset start.
	PageSQL(base string, start, size int) string
}

// StrategyFor returns the strategy of the named dialect. Driver aliases are
// accepted (see dialect.Normalize); an empty name selects dialect.Default.
func StrategyFor(name string) (Strategy, error) {
	switch n := dialect.Normalize(name); n {
	case dialect.Oracle:
		return rownum{}, nil
	case dialect.MySQL:
		return limitComma{}, nil
	case dialect.Postgres, dialect.SQLite:
		return limitOffset{name: n}, nil
	default:
		return nil, pager.NewUnsupportedDialectError(name)
	}
}

func countSQL(base string) string {
	return "SELECT COUNT(0) FROM (" + base + ") " + countAlias
}

// rownum bounds with nested ROWNUM windows.
type rownum struct{}

func (rownum) Name() string { return dialect.Oracle }

func (rownum) CountSQL(base string) string { return countSQL(base) }

func (rownum) PageSQL(base string, start, size int) string {
	var b strings.Builder
	b.WriteString("SELECT * FROM (SELECT ")
	b.WriteString(windowAlias)
	b.WriteString(".*,ROWNUM ")
	b.WriteString(rowIDColumn)
	b.WriteString(" FROM (")
	b.WriteString(base)
	b.WriteString(") ")
	b.WriteString(windowAlias)
	b.WriteString(" WHERE ROWNUM<=")
	b.WriteString(strconv.Itoa(start + size))
	b.WriteString(") WHERE ")
	b.WriteString(rowIDColumn)
	b.WriteString(">")
	b.WriteString(strconv.Itoa(start))
	return b.String()
}

// limitComma bounds with "LIMIT offset,count".
type limitComma struct{}

func (limitComma) Name() string { return dialect.MySQL }

func (limitComma) CountSQL(base string) string { return countSQL(base) }

func (limitComma) PageSQL(base string, start, size int) string {
	return base + " LIMIT " + strconv.Itoa(start) + "," + strconv.Itoa(size)
}

// limitOffset bounds with "LIMIT count OFFSET offset".
type limitOffset struct{ name string }

func (s limitOffset) Name() string { return s.name }

func (limitOffset) CountSQL(base string) string { return countSQL(base) }

func (limitOffset) PageSQL(base string, start, size int) string {
	return base + " LIMIT " + strconv.Itoa(size) + " OFFSET " + strconv.Itoa(start)
}
