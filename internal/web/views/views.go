// Package views holds the HTML components of the back-office. Components
// are written in the .templ files next to this one; run `templ generate`
// after editing them to refresh the *_templ.go files.
package views

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.960 generate

import (
	"net/url"
	"sort"

	"github.com/JonMunkholm/frota/internal/core"
	"github.com/JonMunkholm/frota/internal/table"
)

// EntityGroup is one menu section on the dashboard.
type EntityGroup struct {
	Name     string
	Entities []core.EntityInfo
}

// EntityTableData is everything the entity table needs.
type EntityTableData struct {
	Info   core.EntityInfo
	Table  *table.Table
	Search string

	// Hidden are query parameters the search form carries along, such as
	// the company and the active sort.
	Hidden url.Values

	// SortLink builds the href that applies a sort state.
	SortLink func(table.SortState) string
}

type hiddenField struct {
	Name  string
	Value string
}

// hiddenFields flattens v in key order so the form renders the same way
// on every request.
func hiddenFields(v url.Values) []hiddenField {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var fields []hiddenField
	for _, k := range keys {
		for _, val := range v[k] {
			fields = append(fields, hiddenField{Name: k, Value: val})
		}
	}
	return fields
}
