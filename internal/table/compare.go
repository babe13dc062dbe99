package table

import (
	"cmp"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// NewCollator returns the case-insensitive Brazilian Portuguese collator
// used for every string comparison. A collator is not safe for concurrent
// use; each Table owns one.
func NewCollator() *collate.Collator {
	return collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
}

// Sort returns a new slice with rows ordered by state. The input slice and
// its rows are left untouched. Unsorted returns the input order. Rows with a
// nil or SQL NULL value under the active column come last in both
// directions, and ties keep their input order.
func Sort(rows []Row, state SortState, c *collate.Collator) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)

	if !state.IsSorted() || len(out) < 2 {
		return out
	}
	if c == nil {
		c = NewCollator()
	}

	key := state.Column()
	desc := state.Direction() == Desc
	sort.SliceStable(out, func(i, j int) bool {
		return compareValues(out[i][key], out[j][key], desc, c) < 0
	})
	return out
}

// compareValues orders two cell values. The null policy ignores desc.
func compareValues(a, b any, desc bool, c *collate.Collator) int {
	a, b = unwrap(a), unwrap(b)

	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	var r int
	fa, aNum := number(a)
	fb, bNum := number(b)
	if aNum && bNum {
		r = cmp.Compare(fa, fb)
	} else {
		r = c.CompareString(text(a), text(b))
	}

	if desc {
		return -r
	}
	return r
}

// unwrap resolves nil pointers and driver.Valuer values (pgtype and
// database/sql null types) to a plain Go value. NULL becomes nil.
func unwrap(v any) any {
	if v == nil {
		return nil
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil
	}

	switch n := v.(type) {
	case pgtype.Numeric:
		if !n.Valid {
			return nil
		}
		return n
	case time.Time:
		return n
	}

	if valuer, ok := v.(driver.Valuer); ok {
		dv, err := valuer.Value()
		if err != nil {
			return fmt.Sprint(v)
		}
		return dv
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		return unwrap(rv.Elem().Interface())
	}
	return v
}

// number reports the float value of numeric cells.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case pgtype.Numeric:
		f, err := n.Float64Value()
		if err != nil || !f.Valid {
			return 0, false
		}
		return f.Float64, true
	}
	return 0, false
}

// text is the string form used for collation and default display.
func text(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case time.Time:
		return s.Format(time.RFC3339)
	case pgtype.Numeric:
		if f, ok := number(s); ok {
			return fmt.Sprint(f)
		}
	}
	return fmt.Sprint(v)
}
