package paging

import (
	"encoding/json"
	"iter"
	"sync/atomic"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/pager/executor"
)

// DefaultPageSize is the page size used when none, or a non-positive one,
// is set.
const DefaultPageSize = 10

// Page is a pagination request and, once the call returns, its result:
// the rows of the requested page plus the total row count.
//
// The caller sets the page size and current page; the interceptor sets the
// total count before the page query runs and attaches the rows after it.
// Derived values (TotalPages, CurrentPage, StartIndex) are computed on
// every read. A Page implements executor.RowSet over its rows, so it can be
// returned wherever the executor returns rows.
type Page struct {
	pageSize    int
	currentPage int
	totalCount  int
	results     executor.Rows

	owner atomic.Pointer[executor.Call]
}

// NewPage returns a request for page current of size rows.
func NewPage(current, size int) *Page {
	p := &Page{currentPage: current}
	p.SetPageSize(size)
	return p
}

// PageSize returns the number of rows per page.
func (p *Page) PageSize() int {
	if p.pageSize <= 0 {
		return DefaultPageSize
	}
	return p.pageSize
}

// SetPageSize sets the number of rows per page. Values <= 0 select
// DefaultPageSize.
func (p *Page) SetPageSize(size int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	p.pageSize = size
}

// SetCurrentPage sets the requested page number. It is clamped when read.
func (p *Page) SetCurrentPage(n int) {
	p.currentPage = n
}

// CurrentPage returns the requested page clamped to [1, TotalPages]. A
// page number <= 0 reads as 1, one past the last page reads as the last
// page; with no rows at all it reads as 0.
func (p *Page) CurrentPage() int {
	n := p.currentPage
	if n <= 0 {
		n = 1
	}
	if total := p.TotalPages(); n > total {
		n = total
	}
	return n
}

// TotalCount returns the number of rows matching the query.
func (p *Page) TotalCount() int {
	return p.totalCount
}

// TotalPages returns ceil(TotalCount / PageSize).
func (p *Page) TotalPages() int {
	size := p.PageSize()
	return (p.totalCount + size - 1) / size
}

// StartIndex returns the offset of the first row of the current page.
func (p *Page) StartIndex() int {
	start := (p.CurrentPage() - 1) * p.PageSize()
	if start < 0 {
		return 0
	}
	return start
}

// HasNext reports whether a page follows the current one.
func (p *Page) HasNext() bool {
	return p.CurrentPage() < p.TotalPages()
}

// HasPrevious reports whether a page precedes the current one.
func (p *Page) HasPrevious() bool {
	return p.CurrentPage() > 1
}

// Results returns the rows of the page. It is never nil.
func (p *Page) Results() executor.Rows {
	if p.results == nil {
		return executor.Rows{}
	}
	return p.results
}

// Len implements executor.RowSet.
func (p *Page) Len() int { return len(p.results) }

// Row implements executor.RowSet.
func (p *Page) Row(i int) executor.Row { return p.results[i] }

// All implements executor.RowSet.
func (p *Page) All() iter.Seq2[int, executor.Row] { return p.Results().All() }

func (p *Page) setTotalCount(n int) {
	if n < 0 {
		n = 0
	}
	p.totalCount = n
}

func (p *Page) setResults(rows executor.Rows) {
	p.results = rows
}

// claim binds the page to call. It fails when another call holds it.
func (p *Page) claim(call *executor.Call) bool {
	return p.owner.CompareAndSwap(nil, call) || p.owner.Load() == call
}

// release unbinds the page if call holds it.
func (p *Page) release(call *executor.Call) {
	p.owner.CompareAndSwap(call, nil)
}

// Metadata is the pagination metadata of a Page.
type Metadata struct {
	TotalCount  int `json:"total_count" yaml:"total_count" msgpack:"total_count"`
	TotalPages  int `json:"total_pages" yaml:"total_pages" msgpack:"total_pages"`
	CurrentPage int `json:"current_page" yaml:"current_page" msgpack:"current_page"`
	PageSize    int `json:"page_size" yaml:"page_size" msgpack:"page_size"`
	StartIndex  int `json:"start_index" yaml:"start_index" msgpack:"start_index"`
}

// Metadata returns a snapshot of the page's pagination metadata.
func (p *Page) Metadata() Metadata {
	return Metadata{
		TotalCount:  p.TotalCount(),
		TotalPages:  p.TotalPages(),
		CurrentPage: p.CurrentPage(),
		PageSize:    p.PageSize(),
		StartIndex:  p.StartIndex(),
	}
}

// view is the encoded form of a Page.
type view struct {
	Metadata `yaml:",inline" msgpack:",inline"`
	Results  executor.Rows `json:"results" yaml:"results" msgpack:"results"`
}

func (p *Page) view() view {
	return view{Metadata: p.Metadata(), Results: p.Results()}
}

// MarshalJSON implements json.Marshaler.
func (p *Page) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.view())
}

// MarshalYAML implements yaml.Marshaler.
func (p *Page) MarshalYAML() (any, error) {
	return p.view(), nil
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (p *Page) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(p.view())
}

var (
	_ executor.RowSet       = (*Page)(nil)
	_ json.Marshaler        = (*Page)(nil)
	_ msgpack.CustomEncoder = (*Page)(nil)
)
