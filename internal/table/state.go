package table

import "strings"

// Direction is the order of an active sort.
type Direction int

const (
	Asc Direction = iota + 1
	Desc
)

func (d Direction) String() string {
	switch d {
	case Asc:
		return "asc"
	case Desc:
		return "desc"
	default:
		return ""
	}
}

// SortState is either unsorted or sorted by one column in one direction.
// The zero value is unsorted. A direction is only ever present together
// with a column.
type SortState struct {
	column string
	dir    Direction
}

// Unsorted returns the state in which rows keep their input order.
func Unsorted() SortState {
	return SortState{}
}

// SortedBy returns the state sorted by column in dir. An empty column or
// an unknown direction yields Unsorted.
func SortedBy(column string, dir Direction) SortState {
	if column == "" || (dir != Asc && dir != Desc) {
		return Unsorted()
	}
	return SortState{column: column, dir: dir}
}

// ParseSortState restores a state from request parameters such as
// ?sort=plate&dir=desc. Missing or malformed values give Unsorted.
func ParseSortState(column, dir string) SortState {
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "asc":
		return SortedBy(strings.TrimSpace(column), Asc)
	case "desc":
		return SortedBy(strings.TrimSpace(column), Desc)
	default:
		return Unsorted()
	}
}

// IsSorted reports whether a column is active.
func (s SortState) IsSorted() bool { return s.column != "" }

// Column returns the active column key, or "" when unsorted.
func (s SortState) Column() string { return s.column }

// Direction returns the active direction, or 0 when unsorted.
func (s SortState) Direction() Direction { return s.dir }

func (s SortState) String() string {
	if !s.IsSorted() {
		return "unsorted"
	}
	return s.column + " " + s.dir.String()
}

// advance applies one click on column:
// unsorted or another column -> asc, asc -> desc, desc -> unsorted.
func (s SortState) advance(column string) SortState {
	if s.column != column {
		return SortedBy(column, Asc)
	}
	if s.dir == Asc {
		return SortedBy(column, Desc)
	}
	return Unsorted()
}
