package web

import (
	"net/http"

	"github.com/JonMunkholm/frota/internal/logging"
)

// handleCreateRecord validates and inserts a record. Invalid input is
// answered with 422 and the message of every offending field.
func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	def, err := entityDefinition(r)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	in, err := decodeInput(w, r)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	record, err := s.store.Create(r.Context(), def.Info.Key, in)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("record created", "entity", def.Info.Key, "id", record["id"])
	writeJSON(w, http.StatusCreated, record)
}

// handleUpdateRecord writes the fields present in the body.
func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
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
	in, err := decodeInput(w, r)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	record, err := s.store.Update(r.Context(), def.Info.Key, id, in)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("record updated", "entity", def.Info.Key, "id", id)
	writeJSON(w, http.StatusOK, record)
}

// handleDeleteRecord removes one record.
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
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

	if err := s.store.Delete(r.Context(), def.Info.Key, id); err != nil {
		respondStoreError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("record deleted", "entity", def.Info.Key, "id", id)
	w.WriteHeader(http.StatusNoContent)
}
