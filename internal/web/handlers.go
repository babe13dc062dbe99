package web

import (
	"net/http"

	"github.com/JonMunkholm/frota/internal/core"
	"github.com/JonMunkholm/frota/internal/logging"
	"github.com/JonMunkholm/frota/internal/table"
	"github.com/JonMunkholm/frota/internal/web/views"
	"github.com/a-h/templ"
)

// handleDashboard renders the entity menu grouped by section.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	var groups []views.EntityGroup
	for _, group := range core.Groups() {
		defs := core.ByGroup(group)
		infos := make([]core.EntityInfo, len(defs))
		for i, def := range defs {
			infos[i] = def.Info
		}
		groups = append(groups, views.EntityGroup{Name: group, Entities: infos})
	}

	q := s.tenantQuery(r)
	link := func(key string) string { return pathWithQuery("/"+key, q) }
	s.render(w, r, http.StatusOK, views.Dashboard(groups, link))
}

// handleHealth reports whether the database answers.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		logging.FromContext(r.Context()).Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleEntityPage renders the sortable table of one entity. The sort
// state travels in ?sort=&dir=, so every header link is a plain GET.
// HTMX requests get the table fragment only.
func (s *Server) handleEntityPage(w http.ResponseWriter, r *http.Request) {
	def, err := entityDefinition(r)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	opts := listOptions(r)
	records, err := s.store.List(r.Context(), def.Info.Key, opts)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	tbl, err := buildTable(def, records, sortState(r))
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	hidden := withSort(s.tenantQuery(r), tbl.State())
	data := views.EntityTableData{
		Info:   def.Info,
		Table:  tbl,
		Search: opts.Search,
		Hidden: hidden,
		SortLink: func(next table.SortState) string {
			return pathWithQuery(r.URL.Path, withSort(query, next))
		},
	}

	if isHTMX(r) {
		s.render(w, r, http.StatusOK, views.EntityTable(data))
		return
	}
	s.render(w, r, http.StatusOK, views.EntityPage(data))
}

// render writes an HTML component. Headers are sent before rendering, so
// a failure part way through can only be logged.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "path", r.URL.Path, "error", err)
	}
}
