package core

// validation.go checks create and update input against an entity's
// FieldSpecs before anything reaches the database.
//
// Masked fields are validated on their cleaned value, so "529.982.247-25"
// and "52998224725" are the same CPF. The validator reports every problem
// at once so a form can mark all offending fields.

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string // DBColumn of the offending field
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationErrors is every problem found in one input.
type ValidationErrors []ValidationError

func (es ValidationErrors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Fields returns the error message per field, first message wins.
func (es ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(es))
	for _, e := range es {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Message
		}
	}
	return out
}

// RecordValidator validates input against one entity's field specs.
type RecordValidator struct {
	def EntityDefinition
}

// NewRecordValidator creates a validator for def.
func NewRecordValidator(def EntityDefinition) *RecordValidator {
	return &RecordValidator{def: def}
}

// ValidateCreate checks a full record: every required field must be
// present and non-empty.
func (v *RecordValidator) ValidateCreate(in Input) error {
	return v.validate(in, false)
}

// ValidateUpdate checks a partial record: only the fields present are
// validated, and a required field may not be cleared.
func (v *RecordValidator) ValidateUpdate(in Input) error {
	if len(in) == 0 {
		return ValidationErrors{{Message: "nenhum campo para atualizar"}}
	}
	return v.validate(in, true)
}

func (v *RecordValidator) validate(in Input, partial bool) error {
	var errs ValidationErrors

	for key, value := range in {
		if _, ok := v.def.Field(key); !ok {
			errs = append(errs, ValidationError{Field: key, Value: value, Message: "campo desconhecido"})
		}
	}

	for _, spec := range v.def.FieldSpecs {
		raw, present := in[spec.DBColumn]
		if partial && !present {
			continue
		}

		value := strings.TrimSpace(raw)
		if value == "" {
			if spec.Required {
				errs = append(errs, ValidationError{Field: spec.DBColumn, Message: "campo obrigatório"})
			}
			continue
		}

		if err := ValidateValue(value, spec); err != nil {
			errs = append(errs, ValidationError{Field: spec.DBColumn, Value: value, Message: err.Error()})
		}
	}

	if len(errs) > 0 {
		sortValidationErrors(errs, v.def.FieldSpecs)
		return errs
	}
	return nil
}

// ValidateValue validates a single non-empty value against a field spec.
func ValidateValue(value string, spec FieldSpec) error {
	if value == "" {
		return nil // Empty values are stored as NULL
	}
	if spec.Normalizer != nil {
		value = spec.Normalizer(value)
	}

	switch spec.Type {
	case FieldNumeric:
		if !ToPgNumeric(value).Valid {
			return fmt.Errorf("número inválido")
		}
	case FieldInteger:
		if !ToPgInt8(value).Valid {
			return fmt.Errorf("número inteiro inválido")
		}
	case FieldDate:
		if !ToPgDate(value).Valid {
			return fmt.Errorf("data inválida (use dd/mm/aaaa)")
		}
	case FieldBool:
		if !ToPgBool(value).Valid {
			return fmt.Errorf("use sim/não")
		}
	case FieldUUID:
		if _, err := uuid.Parse(value); err != nil {
			return fmt.Errorf("identificador inválido")
		}
	case FieldEnum:
		if len(spec.EnumValues) > 0 && !containsFold(spec.EnumValues, value) {
			return fmt.Errorf("valor deve ser um de: %s", strings.Join(spec.EnumValues, ", "))
		}
	}

	if spec.Check != nil && !spec.Check(spec.Mask.Clean(value)) {
		if spec.CheckMessage != "" {
			return fmt.Errorf("%s", spec.CheckMessage)
		}
		return fmt.Errorf("valor inválido")
	}

	return nil
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}

// sortValidationErrors orders errors by field declaration order; unknown
// fields come last, alphabetically.
func sortValidationErrors(errs ValidationErrors, specs []FieldSpec) {
	pos := make(map[string]int, len(specs))
	for i, spec := range specs {
		pos[spec.DBColumn] = i
	}
	rank := func(field string) int {
		if p, ok := pos[field]; ok {
			return p
		}
		return len(specs)
	}
	sort.SliceStable(errs, func(i, j int) bool {
		ri, rj := rank(errs[i].Field), rank(errs[j].Field)
		if ri != rj {
			return ri < rj
		}
		return errs[i].Field < errs[j].Field
	})
}
