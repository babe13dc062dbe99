package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/JonMunkholm/frota/internal/mask"
	"github.com/JonMunkholm/frota/internal/table"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DisplayDateLayout is how dates are shown in tables.
const DisplayDateLayout = "02/01/2006"

var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

// Columns builds the table columns for an entity, one per field spec,
// each rendering the stored value the way an operator reads it.
func Columns(def EntityDefinition) []table.Column {
	cols := make([]table.Column, 0, len(def.FieldSpecs))
	for _, spec := range def.FieldSpecs {
		opts := []table.ColumnOption{table.WithRender(renderer(spec))}
		if spec.NotSortable {
			opts = append(opts, table.NotSortable())
		}
		cols = append(cols, table.Col(spec.DBColumn, spec.Name, opts...))
	}
	return cols
}

// Rows adapts records for the table package.
func Rows(records []Record) []table.Row {
	rows := make([]table.Row, len(records))
	for i, r := range records {
		rows[i] = table.Row(r)
	}
	return rows
}

func renderer(spec FieldSpec) table.RenderFunc {
	return func(v any, _ table.Row) string {
		return FormatValue(v, spec)
	}
}

// FormatValue renders one stored value for display. NULL renders empty.
func FormatValue(v any, spec FieldSpec) string {
	if v == nil {
		return ""
	}

	switch spec.Type {
	case FieldDate:
		if t, ok := asTime(v); ok {
			return t.Format(DisplayDateLayout)
		}
		if _, ok := v.(pgtype.Date); ok {
			return ""
		}
	case FieldNumeric:
		if f, ok := asFloat(v); ok {
			if spec.Format == FormatMoney {
				return FormatBRL(f)
			}
			return brPrinter.Sprintf("%.2f", f)
		}
		if n, ok := v.(pgtype.Numeric); ok && !n.Valid {
			return ""
		}
	case FieldInteger:
		n, ok := v.(int64)
		if !ok {
			f, isNum := asFloat(v)
			n, ok = int64(f), isNum
		}
		if ok {
			if spec.Format == FormatGrouped {
				return brPrinter.Sprintf("%d", n)
			}
			return strconv.FormatInt(n, 10)
		}
	case FieldBool:
		if b, ok := v.(bool); ok {
			if b {
				return "Sim"
			}
			return "Não"
		}
	case FieldEnum:
		if s, ok := v.(string); ok {
			if label, ok := spec.Labels[s]; ok {
				return label
			}
			return s
		}
	}

	if s, ok := v.(string); ok {
		if spec.Mask != mask.None {
			return spec.Mask.Apply(s)
		}
		return s
	}
	return fmt.Sprint(v)
}

// FormatBRL renders an amount in reais: 1234.5 -> "R$ 1.234,50".
func FormatBRL(f float64) string {
	sign := ""
	if f < 0 {
		sign = "-"
		f = math.Abs(f)
	}
	return sign + "R$ " + brPrinter.Sprintf("%.2f", f)
}

func asTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case pgtype.Date:
		return x.Time, x.Valid
	case pgtype.Timestamptz:
		return x.Time, x.Valid
	}
	return time.Time{}, false
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case pgtype.Numeric:
		if !x.Valid {
			return 0, false
		}
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return 0, false
		}
		return f.Float64, true
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case int:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}
