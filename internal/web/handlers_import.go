package web

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/frota/internal/core"
	"github.com/JonMunkholm/frota/internal/logging"
)

// multipartOverhead is the room left for form boundaries and headers on
// top of the file size limit.
const multipartOverhead = 64 << 10

// FailedRowResponse is one skipped line of an import.
type FailedRowResponse struct {
	Line   int               `json:"line"`
	Reason string            `json:"reason"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ImportResponse summarizes an import for API clients.
type ImportResponse struct {
	Entity     string              `json:"entity"`
	FileName   string              `json:"file_name,omitempty"`
	DryRun     bool                `json:"dry_run"`
	TotalRows  int                 `json:"total_rows"`
	Inserted   int                 `json:"inserted"`
	Skipped    int                 `json:"skipped"`
	Ignored    []string            `json:"ignored_columns,omitempty"`
	FailedRows []FailedRowResponse `json:"failed_rows,omitempty"`
	DurationMs int64               `json:"duration_ms"`
}

// handleImport loads records from a CSV file sent either as the "file"
// field of a multipart form or as a text/csv body. ?dry_run=true checks
// every row without keeping anything.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	def, err := entityDefinition(r)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	dryRun := false
	if v := r.URL.Query().Get("dry_run"); v != "" {
		if dryRun, err = strconv.ParseBool(v); err != nil {
			respondStoreError(w, r, fmt.Errorf("%w: dry_run: %v", errInvalidBody, err))
			return
		}
	}

	// Imports outlive the server-wide read and write timeouts.
	deadline := time.Now().Add(s.cfg.Import.Timeout)
	rc := http.NewResponseController(w)
	_ = rc.SetReadDeadline(deadline)
	_ = rc.SetWriteDeadline(deadline)

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize+multipartOverhead)
	src, fileName, err := importSource(r, s.cfg.Import.MaxFileSize)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	defer src.Close()

	result, err := s.store.Import(r.Context(), def.Info.Key, src, core.ImportOptions{
		FileName: fileName,
		DryRun:   dryRun,
		MaxSize:  s.cfg.Import.MaxFileSize,
	})
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("records imported",
		"entity", def.Info.Key,
		"file", fileName,
		"dry_run", dryRun,
		"inserted", result.Inserted,
		"skipped", result.Skipped,
		"duration", result.Duration,
	)
	writeJSON(w, http.StatusOK, importResponse(result))
}

// importSource returns the uploaded file and its name.
func importSource(r *http.Request, maxSize int64) (io.ReadCloser, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return io.NopCloser(r.Body), r.URL.Query().Get("name"), nil
	}

	if err := r.ParseMultipartForm(maxSize); err != nil {
		return nil, "", fmt.Errorf("%w: %w", errInvalidBody, err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("%w: file: %v", errInvalidBody, err)
	}
	return file, header.Filename, nil
}

func importResponse(res *core.ImportResult) ImportResponse {
	resp := ImportResponse{
		Entity:     res.Entity,
		FileName:   res.FileName,
		DryRun:     res.DryRun,
		TotalRows:  res.TotalRows,
		Inserted:   res.Inserted,
		Skipped:    res.Skipped,
		Ignored:    res.Ignored,
		DurationMs: res.Duration.Milliseconds(),
	}
	for _, f := range res.FailedRows {
		resp.FailedRows = append(resp.FailedRows, FailedRowResponse{Line: f.Line, Reason: f.Reason, Fields: f.Fields})
	}
	return resp
}
