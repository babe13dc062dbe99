package web

import (
	"net/http"

	"github.com/JonMunkholm/frota/internal/core"
	"github.com/JonMunkholm/frota/internal/mask"
	"github.com/JonMunkholm/frota/internal/table"
	"github.com/go-chi/chi/v5"
)

// ColumnInfo describes one entity column for API clients.
type ColumnInfo struct {
	Key        string   `json:"key"`
	Header     string   `json:"header"`
	Type       string   `json:"type"`
	Required   bool     `json:"required"`
	Sortable   bool     `json:"sortable"`
	Mask       string   `json:"mask,omitempty"`
	EnumValues []string `json:"enumValues,omitempty"`
}

// EntityResponse describes one registered entity.
type EntityResponse struct {
	Key      string       `json:"key"`
	Group    string       `json:"group"`
	Label    string       `json:"label"`
	Singular string       `json:"singular"`
	Scoped   bool         `json:"scoped"`
	Columns  []ColumnInfo `json:"columns"`
}

// SortResponse is a table sort state; both fields are empty when unsorted.
type SortResponse struct {
	Column    string `json:"column"`
	Direction string `json:"direction"`
}

// ListResponse carries the rows of an entity in table order.
type ListResponse struct {
	Entity  string        `json:"entity"`
	Sort    SortResponse  `json:"sort"`
	Headers []string      `json:"headers"`
	Rows    []core.Record `json:"rows"`
	Cells   [][]string    `json:"cells"`
}

// MaskResponse previews a mask over a typed value.
type MaskResponse struct {
	Kind   string `json:"kind"`
	Masked string `json:"masked"`
	Clean  string `json:"clean"`
	Valid  bool   `json:"valid"`
}

func entityResponse(def core.EntityDefinition) EntityResponse {
	cols := make([]ColumnInfo, len(def.FieldSpecs))
	for i, spec := range def.FieldSpecs {
		ci := ColumnInfo{
			Key:        spec.DBColumn,
			Header:     spec.Name,
			Type:       spec.Type.String(),
			Required:   spec.Required,
			Sortable:   !spec.NotSortable,
			EnumValues: spec.EnumValues,
		}
		if spec.Mask != mask.None {
			ci.Mask = spec.Mask.String()
		}
		cols[i] = ci
	}
	return EntityResponse{
		Key:      def.Info.Key,
		Group:    def.Info.Group,
		Label:    def.Info.Label,
		Singular: def.Info.Singular,
		Scoped:   !def.Info.Unscoped,
		Columns:  cols,
	}
}

// handleListEntities returns every registered entity with its columns.
func (s *Server) handleListEntities(w http.ResponseWriter, r *http.Request) {
	defs := core.All()
	out := make([]EntityResponse, len(defs))
	for i, def := range defs {
		out[i] = entityResponse(def)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleListRecords returns the rows of an entity in the order the table
// shows them. ?click=<column> applies one header click on top of
// ?sort=&dir= and the response carries the resulting state.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	def, err := entityDefinition(r)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	records, err := s.store.List(r.Context(), def.Info.Key, listOptions(r))
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	tbl, err := buildTable(def, records, sortState(r))
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if click := r.URL.Query().Get("click"); click != "" {
		tbl.Click(click)
	}

	rows := tbl.Rows()
	out := ListResponse{
		Entity:  def.Info.Key,
		Sort:    sortResponse(tbl.State()),
		Headers: tbl.Headers(),
		Rows:    make([]core.Record, len(rows)),
		Cells:   tbl.Cells(),
	}
	for i, row := range rows {
		out.Rows[i] = core.Record(row)
	}
	writeJSON(w, http.StatusOK, out)
}

func sortResponse(state table.SortState) SortResponse {
	return SortResponse{Column: state.Column(), Direction: state.Direction().String()}
}

// handleGetRecord returns one record.
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	def, err := entityDefinition(r)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	id, err := recordID(r)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	record, err := s.store.Get(r.Context(), def.Info.Key, id)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleMask previews a mask for an input field: the masked text, the
// cleaned value that would be stored and whether it is complete and valid.
func (s *Server) handleMask(w http.ResponseWriter, r *http.Request) {
	kind, err := mask.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	value := r.URL.Query().Get("value")
	writeJSON(w, http.StatusOK, MaskResponse{
		Kind:   kind.String(),
		Masked: kind.Apply(value),
		Clean:  kind.Clean(value),
		Valid:  kind.Valid(value),
	})
}
