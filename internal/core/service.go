package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/frota/internal/tenant"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var (
	// ErrUnknownEntity is returned for keys no entity was registered under.
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrNotFound is returned when no record matches the id within the
	// active company.
	ErrNotFound = errors.New("record not found")

	// ErrNoCompany is returned when a company-scoped entity is accessed
	// without a company in the context.
	ErrNoCompany = errors.New("no company in context")
)

// DefaultListLimit caps List when ListOptions.Limit is zero.
const DefaultListLimit = 500

// Service provides the record operations shared by the web server and
// the CLI.
type Service struct {
	db      DBTX
	imports *ImportLimiter
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithImportLimiter replaces the default import limiter.
func WithImportLimiter(l *ImportLimiter) ServiceOption {
	return func(s *Service) {
		s.imports = l
	}
}

// NewService creates a Service over db.
func NewService(db DBTX, opts ...ServiceOption) *Service {
	s := &Service{db: db}
	for _, opt := range opts {
		opt(s)
	}
	if s.imports == nil {
		s.imports = NewImportLimiter(DefaultMaxConcurrentImports, DefaultImportWait)
	}
	return s
}

// WaitForImports blocks until running imports finish or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.imports.WaitForDrain(ctx)
}

// ListOptions narrows List.
type ListOptions struct {
	Search string // Case-insensitive match over text fields
	Limit  int    // Maximum rows; DefaultListLimit when zero
}

// Entities returns information about all registered entities.
func (s *Service) Entities() []EntityInfo {
	defs := All()
	infos := make([]EntityInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// EntitiesByGroup returns entities organized by menu group.
func (s *Service) EntitiesByGroup() map[string][]EntityInfo {
	result := make(map[string][]EntityInfo)
	for _, group := range Groups() {
		for _, def := range ByGroup(group) {
			result[group] = append(result[group], def.Info)
		}
	}
	return result
}

// Ping checks that the database answers.
func (s *Service) Ping(ctx context.Context) error {
	var one int
	if err := s.db.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// List returns the records of an entity in insertion order. Sorting for
// display is left to the table package.
func (s *Service) List(ctx context.Context, key string, opts ListOptions) ([]Record, error) {
	def, err := definition(key)
	if err != nil {
		return nil, err
	}

	wb, err := scope(ctx, def)
	if err != nil {
		return nil, err
	}
	wb.AddSearch(opts.Search, def.FieldSpecs)
	whereClause, args := wb.Build()

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s%s ORDER BY %s, %s LIMIT $%d",
		selectList(def),
		quoteIdentifier(def.Info.Key),
		whereClause,
		quoteIdentifier("created_at"),
		quoteIdentifier("id"),
		wb.NextArgIndex(),
	)
	args = append(args, limit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", key, err)
	}

	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", key, err)
	}

	records := make([]Record, len(maps))
	for i, m := range maps {
		records[i] = toRecord(m)
	}
	return records, nil
}

// Get returns one record by id.
func (s *Service) Get(ctx context.Context, key string, id uuid.UUID) (Record, error) {
	def, err := definition(key)
	if err != nil {
		return nil, err
	}

	wb, err := scope(ctx, def)
	if err != nil {
		return nil, err
	}
	wb.Add("id", pgUUID(id))
	whereClause, args := wb.Build()

	query := fmt.Sprintf("SELECT %s FROM %s%s", selectList(def), quoteIdentifier(def.Info.Key), whereClause)
	return queryOne(ctx, s.db, key, query, args)
}

// Create validates in and inserts a new record, returning it as stored.
func (s *Service) Create(ctx context.Context, key string, in Input) (Record, error) {
	def, err := definition(key)
	if err != nil {
		return nil, err
	}
	if err := NewRecordValidator(def).ValidateCreate(in); err != nil {
		return nil, err
	}
	return insert(ctx, s.db, def, in)
}

// insert writes an already validated record. Company-scoped entities take
// their company from ctx.
func insert(ctx context.Context, db DBTX, def EntityDefinition, in Input) (Record, error) {
	var cols []string
	var args []any
	if !def.Info.Unscoped {
		companyID, ok := tenant.CompanyID(ctx)
		if !ok {
			return nil, ErrNoCompany
		}
		cols = append(cols, "company_id")
		args = append(args, pgUUID(companyID))
	}
	for _, spec := range def.FieldSpecs {
		value, ok := in[spec.DBColumn]
		if !ok {
			continue
		}
		cols = append(cols, spec.DBColumn)
		args = append(args, toPg(value, spec))
	}

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		quoteIdentifier(def.Info.Key),
		strings.Join(quoteColumns(cols), ", "),
		strings.Join(placeholders, ", "),
		selectList(def),
	)
	return queryOne(ctx, db, def.Info.Key, query, args)
}

// Update validates the fields present in `in` and writes them to the
// record with the given id. Absent fields are left unchanged.
func (s *Service) Update(ctx context.Context, key string, id uuid.UUID, in Input) (Record, error) {
	def, err := definition(key)
	if err != nil {
		return nil, err
	}
	if err := NewRecordValidator(def).ValidateUpdate(in); err != nil {
		return nil, err
	}

	wb, err := scope(ctx, def)
	if err != nil {
		return nil, err
	}
	wb.Add("id", pgUUID(id))
	whereClause, args := wb.Build()

	var sets []string
	for _, spec := range def.FieldSpecs {
		value, ok := in[spec.DBColumn]
		if !ok {
			continue
		}
		args = append(args, toPg(value, spec))
		sets = append(sets, fmt.Sprintf("%s = $%d", quoteIdentifier(spec.DBColumn), len(args)))
	}
	sets = append(sets, fmt.Sprintf("%s = now()", quoteIdentifier("updated_at")))

	query := fmt.Sprintf(
		"UPDATE %s SET %s%s RETURNING %s",
		quoteIdentifier(def.Info.Key),
		strings.Join(sets, ", "),
		whereClause,
		selectList(def),
	)
	return queryOne(ctx, s.db, key, query, args)
}

// Delete removes the record with the given id.
func (s *Service) Delete(ctx context.Context, key string, id uuid.UUID) error {
	def, err := definition(key)
	if err != nil {
		return err
	}

	wb, err := scope(ctx, def)
	if err != nil {
		return err
	}
	wb.Add("id", pgUUID(id))
	whereClause, args := wb.Build()

	query := fmt.Sprintf("DELETE FROM %s%s", quoteIdentifier(def.Info.Key), whereClause)
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func queryOne(ctx context.Context, db DBTX, key, query string, args []any) (Record, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}

	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToMap)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return toRecord(m), nil
}

func definition(key string) (EntityDefinition, error) {
	def, ok := Get(key)
	if !ok {
		return EntityDefinition{}, fmt.Errorf("%w: %s", ErrUnknownEntity, key)
	}
	return def, nil
}

// scope starts a WHERE clause restricted to the company in ctx.
func scope(ctx context.Context, def EntityDefinition) (*WhereBuilder, error) {
	wb := NewWhereBuilder()
	if def.Info.Unscoped {
		return wb, nil
	}
	companyID, ok := tenant.CompanyID(ctx)
	if !ok {
		return nil, ErrNoCompany
	}
	wb.Add("company_id", pgUUID(companyID))
	return wb, nil
}

// selectList is "id" followed by every field column.
func selectList(def EntityDefinition) string {
	cols := make([]string, 0, len(def.FieldSpecs)+1)
	cols = append(cols, "id")
	for _, spec := range def.FieldSpecs {
		cols = append(cols, spec.DBColumn)
	}
	return strings.Join(quoteColumns(cols), ", ")
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

// toRecord converts driver values into the types the rest of the
// application expects: UUID columns become their string form.
func toRecord(m map[string]any) Record {
	r := make(Record, len(m))
	for k, v := range m {
		switch x := v.(type) {
		case [16]byte:
			r[k] = uuid.UUID(x).String()
		case pgtype.UUID:
			r[k] = PgUUIDToString(x)
		default:
			r[k] = v
		}
	}
	return r
}
