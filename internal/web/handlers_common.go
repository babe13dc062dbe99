package web

// handlers_common.go holds the request parsing shared by the page and API
// handlers.

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/JonMunkholm/frota/internal/core"
	"github.com/JonMunkholm/frota/internal/table"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// MaxBodySize caps create and update request bodies (1MB).
const MaxBodySize = 1 << 20

// MaxListLimit caps the limit query parameter.
const MaxListLimit = 5000

// entityDefinition resolves the {entity} URL parameter.
func entityDefinition(r *http.Request) (core.EntityDefinition, error) {
	key := chi.URLParam(r, "entity")
	def, ok := core.Get(key)
	if !ok {
		return core.EntityDefinition{}, fmt.Errorf("%w: %s", core.ErrUnknownEntity, key)
	}
	return def, nil
}

// recordID parses the {id} URL parameter.
func recordID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", errInvalidID, err)
	}
	return id, nil
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// listOptions reads ?q= and ?limit=.
func listOptions(r *http.Request) core.ListOptions {
	limit := parseIntParam(r, "limit", core.DefaultListLimit)
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return core.ListOptions{
		Search: strings.TrimSpace(r.URL.Query().Get("q")),
		Limit:  limit,
	}
}

// sortState restores the table sort state from ?sort=&dir=.
func sortState(r *http.Request) table.SortState {
	q := r.URL.Query()
	return table.ParseSortState(q.Get("sort"), q.Get("dir"))
}

// buildTable lays records out under the entity's columns in state.
func buildTable(def core.EntityDefinition, records []core.Record, state table.SortState) (*table.Table, error) {
	return table.New(core.Columns(def), core.Rows(records), table.WithState(state))
}

// withSort returns a copy of q carrying state; Unsorted drops the params.
func withSort(q url.Values, state table.SortState) url.Values {
	out := url.Values{}
	for k, v := range q {
		if k == "sort" || k == "dir" || k == "click" {
			continue
		}
		out[k] = append([]string(nil), v...)
	}
	if state.IsSorted() {
		out.Set("sort", state.Column())
		out.Set("dir", state.Direction().String())
	}
	return out
}

// pathWithQuery joins a path and its encoded query.
func pathWithQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// tenantQuery keeps only the company parameter of r, so links between
// pages stay scoped to the same company.
func (s *Server) tenantQuery(r *http.Request) url.Values {
	q := url.Values{}
	param := s.cfg.Tenant.QueryParam
	if v := r.URL.Query().Get(param); param != "" && v != "" {
		q.Set(param, v)
	}
	return q
}

// decodeInput reads a record from a JSON object of strings, or from a
// form body.
func decodeInput(w http.ResponseWriter, r *http.Request) (core.Input, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidBody, err)
		}
		in := make(core.Input, len(raw))
		for k, v := range raw {
			switch x := v.(type) {
			case nil:
				in[k] = ""
			case string:
				in[k] = x
			case float64:
				// Decimal comma, so the Brazilian parser never reads the
				// point as a thousands separator.
				in[k] = strings.Replace(strconv.FormatFloat(x, 'f', -1, 64), ".", ",", 1)
			case bool:
				in[k] = strconv.FormatBool(x)
			default:
				return nil, fmt.Errorf("%w: field %q must be a string", errInvalidBody, k)
			}
		}
		return in, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	in := make(core.Input, len(r.PostForm))
	for k := range r.PostForm {
		in[k] = r.PostForm.Get(k)
	}
	return in, nil
}
