package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/frota/internal/mask"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// FieldType is the storage type of an entity field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldEnum
	FieldDate
	FieldNumeric
	FieldInteger
	FieldBool
	FieldUUID
)

var fieldTypeNames = [...]string{
	FieldText:    "text",
	FieldEnum:    "enum",
	FieldDate:    "date",
	FieldNumeric: "numeric",
	FieldInteger: "integer",
	FieldBool:    "bool",
	FieldUUID:    "uuid",
}

func (t FieldType) String() string {
	if t < 0 || int(t) >= len(fieldTypeNames) {
		return fmt.Sprintf("FieldType(%d)", int(t))
	}
	return fieldTypeNames[t]
}

// Display formats applied by Columns on top of the field type.
const (
	FormatDefault = ""
	FormatMoney   = "money"   // R$ 1.234,56
	FormatGrouped = "grouped" // 120.000
)

// FieldSpec describes one editable column of an entity.
type FieldSpec struct {
	Name         string              // Display header: "Placa"
	DBColumn     string              // Database column: "plate"
	Type         FieldType           // Storage type
	Required     bool                // Must be present and non-empty on create
	EnumValues   []string            // Allowed values for FieldEnum
	Mask         mask.Kind           // Input/display mask; None for free text
	Normalizer   func(string) string // Applied to input before validation and storage
	Check        func(string) bool   // Optional structural check on the cleaned value
	CheckMessage string              // Message when Check fails
	Format       string              // Display format for Columns
	NotSortable  bool                // Table header click is a no-op
	Labels       map[string]string   // Display labels for enum values
}

// EntityInfo contains display information about an entity.
type EntityInfo struct {
	Key      string // Table name and URL segment: "vehicles"
	Group    string // Menu group: "Frota", "Cadastros", "Financeiro"
	Label    string // Display name: "Veículos"
	Singular string // Display name of one record: "Veículo"

	// Unscoped entities are not filtered by company. Only companies
	// themselves are unscoped.
	Unscoped bool
}

// EntityDefinition is everything needed to list and edit one entity.
type EntityDefinition struct {
	Info       EntityInfo
	FieldSpecs []FieldSpec
}

// Field returns the spec whose DBColumn is col.
func (d EntityDefinition) Field(col string) (FieldSpec, bool) {
	for _, spec := range d.FieldSpecs {
		if spec.DBColumn == col {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

// Input is a create or update payload keyed by DBColumn. Values are what
// the user typed, masks included.
type Input map[string]string

// Record is one row read back from the database, keyed by column name.
// It always contains "id".
type Record map[string]any
