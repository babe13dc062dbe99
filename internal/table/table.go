// Package table renders rows under declared columns and sorts them with a
// per-column three-state cycle: ascending, descending, then back to the
// input order.
//
// A Table never mutates the rows it is given; Rows and Cells derive a fresh,
// stably sorted view on every call. The sort state lives on the Table and
// changes only through Click:
//
//	t, _ := table.New(cols, rows)
//	t.Click("plate") // plate asc
//	t.Click("plate") // plate desc
//	t.Click("plate") // unsorted
//
// String values are compared with a case-insensitive Brazilian Portuguese
// collation, so "Álvaro" sorts next to "Alice", not after "Zé".
package table

import (
	"errors"
	"fmt"

	"golang.org/x/text/collate"
)

// Row maps column keys to cell values.
type Row map[string]any

// RenderFunc turns a cell value into its display text.
type RenderFunc func(value any, row Row) string

// Column declares one table column. Columns are sortable unless
// NotSortable is set, so a zero-valued flag keeps the default.
type Column struct {
	Key         string
	Header      string
	NotSortable bool
	Render      RenderFunc
}

// Sortable reports whether clicks on the column header sort the table.
func (c Column) Sortable() bool { return !c.NotSortable }

// ColumnOption customises a Column built with Col.
type ColumnOption func(*Column)

// Col returns a sortable column.
func Col(key, header string, opts ...ColumnOption) Column {
	c := Column{Key: key, Header: header}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// NotSortable makes clicks on the column header a no-op.
func NotSortable() ColumnOption {
	return func(c *Column) { c.NotSortable = true }
}

// WithRender sets the display transform for the column.
func WithRender(fn RenderFunc) ColumnOption {
	return func(c *Column) { c.Render = fn }
}

// Sort indicators shown next to column headers.
const (
	IndicatorAsc     = "▲"
	IndicatorDesc    = "▼"
	IndicatorNeutral = "↕"
)

// ErrInvalidColumns is returned by New for empty or duplicate column keys.
var ErrInvalidColumns = errors.New("invalid table columns")

// Table is a sortable view over caller-owned rows. It is not safe for
// concurrent use.
type Table struct {
	columns  []Column
	index    map[string]int
	rows     []Row
	state    SortState
	collator *collate.Collator
}

// Option configures a Table.
type Option func(*Table)

// WithState restores a previously computed sort state, e.g. from request
// parameters. A state naming an unknown or non-sortable column is dropped.
func WithState(s SortState) Option {
	return func(t *Table) { t.state = s }
}

// New builds a table. Column keys must be non-empty and unique.
func New(columns []Column, rows []Row, opts ...Option) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if c.Key == "" {
			return nil, fmt.Errorf("%w: column %d has an empty key", ErrInvalidColumns, i)
		}
		if _, dup := index[c.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrInvalidColumns, c.Key)
		}
		index[c.Key] = i
	}

	t := &Table{
		columns:  columns,
		index:    index,
		rows:     rows,
		collator: NewCollator(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.state.IsSorted() && !t.sortable(t.state.Column()) {
		t.state = Unsorted()
	}
	return t, nil
}

func (t *Table) sortable(key string) bool {
	i, ok := t.index[key]
	return ok && t.columns[i].Sortable()
}

// Columns returns the declared columns.
func (t *Table) Columns() []Column { return t.columns }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// State returns the current sort state.
func (t *Table) State() SortState { return t.state }

// Next returns the state a click on key would produce without applying it.
func (t *Table) Next(key string) SortState {
	if !t.sortable(key) {
		return t.state
	}
	return t.state.advance(key)
}

// Click advances the sort cycle for key. Clicks on unknown or non-sortable
// columns leave the state unchanged.
func (t *Table) Click(key string) {
	t.state = t.Next(key)
}

// Rows returns the rows in display order as a new slice.
func (t *Table) Rows() []Row {
	return Sort(t.rows, t.state, t.collator)
}

// Indicator returns the header marker for key: the direction arrow for the
// active column, a neutral marker for other sortable columns and "" for
// columns that cannot be sorted.
func (t *Table) Indicator(key string) string {
	if !t.sortable(key) {
		return ""
	}
	if t.state.Column() != key {
		return IndicatorNeutral
	}
	if t.state.Direction() == Desc {
		return IndicatorDesc
	}
	return IndicatorAsc
}

// Headers returns the column header labels.
func (t *Table) Headers() []string {
	headers := make([]string, len(t.columns))
	for i, c := range t.columns {
		headers[i] = c.Header
	}
	return headers
}

// Cells returns the display text of every row in display order. Columns
// without a Render show the raw value; NULL shows as "".
func (t *Table) Cells() [][]string {
	rows := t.Rows()
	cells := make([][]string, len(rows))
	for i, row := range rows {
		line := make([]string, len(t.columns))
		for j, c := range t.columns {
			line[j] = Display(c, row)
		}
		cells[i] = line
	}
	return cells
}

// Display renders one cell of row under column c.
func Display(c Column, row Row) string {
	v := row[c.Key]
	if c.Render != nil {
		return c.Render(v, row)
	}
	if v = unwrap(v); v == nil {
		return ""
	}
	return text(v)
}
