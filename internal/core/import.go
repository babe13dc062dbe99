package core

// import.go loads records in bulk from spreadsheet CSV exports.
//
// The header row maps columns to fields by display name or column name,
// ignoring case, accents and underscores, so "Data do serviço" and
// "service_date" both land in service_date. Unknown columns are reported
// and ignored. Each data row is validated like a create and inserted under
// its own savepoint: a bad row is reported and skipped while the others
// commit together. DryRun runs the same checks, inserts included, and
// rolls everything back.

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/JonMunkholm/frota/internal/tenant"
	"github.com/jackc/pgx/v5"
)

// ErrImportHeader is returned when no header row matches the entity.
var ErrImportHeader = errors.New("import header not recognized")

const (
	// DefaultMaxImportSize caps an import when ImportOptions.MaxSize is zero.
	DefaultMaxImportSize int64 = 10 << 20

	// maxHeaderSearchRows is how many leading rows may precede the header,
	// such as a report title.
	maxHeaderSearchRows = 10

	// contextCheckInterval is how often, in rows, cancellation is checked.
	contextCheckInterval = 100
)

// ImportOptions tunes one import.
type ImportOptions struct {
	FileName string // Reported back in the result
	DryRun   bool   // Validate and insert, then roll back
	MaxSize  int64  // Byte limit; DefaultMaxImportSize when zero
}

// FailedRow is a data row that was skipped.
type FailedRow struct {
	Line   int               // 1-based line in the file
	Reason string            // Operator-facing explanation
	Fields map[string]string // Per-field messages for validation failures
}

// ImportResult summarizes an import.
type ImportResult struct {
	Entity     string
	FileName   string
	DryRun     bool
	TotalRows  int      // Non-empty data rows read
	Inserted   int      // Rows written (or that would be, on a dry run)
	Skipped    int      // len(FailedRows)
	Ignored    []string // Header cells that matched no field
	FailedRows []FailedRow
	Duration   time.Duration
}

// txBeginner is satisfied by *pgxpool.Pool and pgx.Tx.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// importColumn maps a CSV column to a field.
type importColumn struct {
	index int
	field string
}

// Import reads CSV from r and inserts one record per data row.
func (s *Service) Import(ctx context.Context, key string, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	def, err := definition(key)
	if err != nil {
		return nil, err
	}
	if !def.Info.Unscoped {
		if _, ok := tenant.CompanyID(ctx); !ok {
			return nil, ErrNoCompany
		}
	}
	beginner, ok := s.db.(txBeginner)
	if !ok {
		return nil, fmt.Errorf("import %s: database does not support transactions", key)
	}

	if err := s.imports.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.imports.Release()

	start := time.Now()
	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxImportSize
	}

	src, delim, err := newImportReader(r, maxSize)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", key, err)
	}
	cr := csv.NewReader(src)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	cols, ignored, err := readImportHeader(cr, def)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", key, err)
	}

	result := &ImportResult{
		Entity:   key,
		FileName: opts.FileName,
		DryRun:   opts.DryRun,
		Ignored:  ignored,
	}

	tx, err := beginner.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("import %s: begin: %w", key, err)
	}
	defer tx.Rollback(ctx)

	validator := NewRecordValidator(def)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				result.FailedRows = append(result.FailedRows, FailedRow{Line: perr.Line, Reason: perr.Err.Error()})
				continue
			}
			return nil, fmt.Errorf("import %s: %w", key, err)
		}
		if isEmptyRow(row) {
			continue
		}
		line, _ := cr.FieldPos(0)

		result.TotalRows++
		if result.TotalRows%contextCheckInterval == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}

		in := rowInput(row, cols)
		if err := validator.ValidateCreate(in); err != nil {
			result.FailedRows = append(result.FailedRows, validationFailure(line, def, err))
			continue
		}

		if _, err := tx.Exec(ctx, "SAVEPOINT import_row"); err != nil {
			return nil, fmt.Errorf("import %s: savepoint: %w", key, err)
		}
		if _, err := insert(ctx, tx, def, in); err != nil {
			if _, rbErr := tx.Exec(ctx, "ROLLBACK TO SAVEPOINT import_row"); rbErr != nil {
				return nil, fmt.Errorf("import %s: rollback row: %w", key, rbErr)
			}
			result.FailedRows = append(result.FailedRows, FailedRow{Line: line, Reason: MapError(err).Message})
			continue
		}
		if _, err := tx.Exec(ctx, "RELEASE SAVEPOINT import_row"); err != nil {
			return nil, fmt.Errorf("import %s: release savepoint: %w", key, err)
		}
		result.Inserted++
	}

	if !opts.DryRun {
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("import %s: commit: %w", key, err)
		}
	}

	result.Skipped = len(result.FailedRows)
	result.Duration = time.Since(start)
	return result, nil
}

// readImportHeader finds the first row, among the leading few, that names
// at least one field, and maps its columns. Every required field must have
// a column.
func readImportHeader(cr *csv.Reader, def EntityDefinition) ([]importColumn, []string, error) {
	for i := 0; i < maxHeaderSearchRows; i++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		cols, ignored := mapImportHeader(row, def)
		if len(cols) == 0 {
			continue
		}

		mapped := make(map[string]bool, len(cols))
		for _, c := range cols {
			mapped[c.field] = true
		}
		var missing []string
		for _, spec := range def.FieldSpecs {
			if spec.Required && !mapped[spec.DBColumn] {
				missing = append(missing, spec.Name)
			}
		}
		if len(missing) > 0 {
			return nil, nil, fmt.Errorf("%w: missing %s", ErrImportHeader, strings.Join(missing, ", "))
		}
		return cols, ignored, nil
	}
	return nil, nil, ErrImportHeader
}

// mapImportHeader matches header cells to fields. A field claimed by an
// earlier column makes later duplicates ignored.
func mapImportHeader(header []string, def EntityDefinition) ([]importColumn, []string) {
	byKey := make(map[string]string, 2*len(def.FieldSpecs))
	for _, spec := range def.FieldSpecs {
		byKey[headerKey(spec.Name)] = spec.DBColumn
		byKey[headerKey(spec.DBColumn)] = spec.DBColumn
	}

	var cols []importColumn
	var ignored []string
	taken := make(map[string]bool)
	for i, cell := range header {
		cell = CleanCell(cell)
		if cell == "" {
			continue
		}
		field, ok := byKey[headerKey(cell)]
		if !ok || taken[field] {
			ignored = append(ignored, cell)
			continue
		}
		taken[field] = true
		cols = append(cols, importColumn{index: i, field: field})
	}
	return cols, ignored
}

// headerKey folds a header for matching: "Data_do  Serviço" -> "data do servico".
func headerKey(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(FoldAccents(s), "_", " ")), " ")
}

// rowInput builds create input from a data row. Short rows leave the
// missing fields absent.
func rowInput(row []string, cols []importColumn) Input {
	in := make(Input, len(cols))
	for _, c := range cols {
		if c.index < len(row) {
			in[c.field] = CleanCell(row[c.index])
		}
	}
	return in
}

func validationFailure(line int, def EntityDefinition, err error) FailedRow {
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		return FailedRow{Line: line, Reason: err.Error()}
	}

	parts := make([]string, 0, len(verrs))
	for _, e := range verrs {
		name := e.Field
		if spec, ok := def.Field(e.Field); ok {
			name = spec.Name
		}
		parts = append(parts, name+": "+e.Message)
	}
	return FailedRow{Line: line, Reason: strings.Join(parts, "; "), Fields: verrs.Fields()}
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
