package core

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/frota/internal/mask"
)

// WhereBuilder accumulates AND-ed conditions with positional arguments.
type WhereBuilder struct {
	conditions []string
	args       []any
	argIndex   int
}

// NewWhereBuilder returns an empty builder whose first placeholder is $1.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{argIndex: 1}
}

// Add appends `col = $n`. Nil values and empty strings are skipped.
func (wb *WhereBuilder) Add(col string, value any) {
	if value == nil {
		return
	}
	if s, ok := value.(string); ok && s == "" {
		return
	}
	wb.conditions = append(wb.conditions, fmt.Sprintf("%s = $%d", quoteIdentifier(col), wb.argIndex))
	wb.args = append(wb.args, value)
	wb.argIndex++
}

// AddSearch matches query against every text column with ILIKE. Masked
// columns are stored clean, so they are matched against the query with
// its mask removed.
func (wb *WhereBuilder) AddSearch(query string, specs []FieldSpec) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}

	// Masks clean differently (plates keep letters), so masked columns
	// are grouped by their cleaned query, one argument per group.
	var rawCols []string
	var cleaned []string
	cleanCols := make(map[string][]string)
	for _, spec := range specs {
		if spec.Type != FieldText {
			continue
		}
		col := spec.DBColumn
		if col == "" {
			col = toDBColumnName(spec.Name)
		}
		if spec.Mask == mask.None {
			rawCols = append(rawCols, col)
			continue
		}
		c := spec.Mask.Clean(query)
		if c == "" {
			continue
		}
		if _, seen := cleanCols[c]; !seen {
			cleaned = append(cleaned, c)
		}
		cleanCols[c] = append(cleanCols[c], col)
	}
	if len(rawCols) == 0 && len(cleaned) == 0 {
		return
	}

	var parts []string
	if len(rawCols) > 0 {
		for _, col := range rawCols {
			parts = append(parts, fmt.Sprintf("%s ILIKE $%d", quoteIdentifier(col), wb.argIndex))
		}
		wb.args = append(wb.args, "%"+escapeLike(query)+"%")
		wb.argIndex++
	}
	for _, c := range cleaned {
		for _, col := range cleanCols[c] {
			parts = append(parts, fmt.Sprintf("%s ILIKE $%d", quoteIdentifier(col), wb.argIndex))
		}
		wb.args = append(wb.args, "%"+escapeLike(c)+"%")
		wb.argIndex++
	}

	wb.conditions = append(wb.conditions, "("+strings.Join(parts, " OR ")+")")
}

// Build returns the WHERE clause (with a leading space) and its arguments.
// Both are empty when no condition was added.
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(wb.conditions, " AND "), wb.args
}

// NextArgIndex returns the next free placeholder number.
func (wb *WhereBuilder) NextArgIndex() int {
	return wb.argIndex
}

// quoteIdentifier quotes a SQL identifier to prevent injection.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteColumns(cols []string) []string {
	quoted := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = quoteIdentifier(col)
	}
	return quoted
}

// toDBColumnName converts a display column name to a database column name.
// "Data do serviço" -> "data_do_serviço"
func toDBColumnName(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
