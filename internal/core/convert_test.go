package core

import (
	"testing"
	"time"

	"github.com/JonMunkholm/frota/internal/mask"
	"github.com/jackc/pgx/v5/pgtype"
)

// ----------------------------------------------------------------------------
// ToPgNumeric Tests
// ----------------------------------------------------------------------------

func TestToPgNumeric(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      float64
	}{
		{name: "integer", input: "123", wantValid: true, want: 123},
		{name: "zero", input: "0", wantValid: true, want: 0},
		{name: "negative", input: "-456", wantValid: true, want: -456},
		{name: "comma decimal", input: "123,45", wantValid: true, want: 123.45},
		{name: "thousands and comma", input: "1.234,56", wantValid: true, want: 1234.56},
		{name: "currency symbol", input: "R$ 1.234,56", wantValid: true, want: 1234.56},
		{name: "currency no space", input: "R$99,90", wantValid: true, want: 99.90},
		{name: "non-breaking space", input: "R$ 10,00", wantValid: true, want: 10},
		{name: "grouped integer", input: "1.234.567", wantValid: true, want: 1234567},
		{name: "single group", input: "1.234", wantValid: true, want: 1234},
		{name: "dot decimal", input: "12.5", wantValid: true, want: 12.5},
		{name: "leading zero dot decimal", input: "0.125", wantValid: true, want: 0.125},
		{name: "accounting negative", input: "(10,50)", wantValid: true, want: -10.50},
		{name: "surrounding spaces", input: "  42  ", wantValid: true, want: 42},

		{name: "empty", input: "", wantValid: false},
		{name: "whitespace", input: "   ", wantValid: false},
		{name: "letters", input: "abc", wantValid: false},
		{name: "two commas", input: "1,2,3", wantValid: false},
		{name: "scientific notation", input: "1e5", wantValid: false},
		{name: "currency only", input: "R$", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToPgNumeric(tt.input)
			if result.Valid != tt.wantValid {
				t.Fatalf("ToPgNumeric(%q).Valid = %v, want %v", tt.input, result.Valid, tt.wantValid)
			}
			if !tt.wantValid {
				return
			}

			f, err := result.Float64Value()
			if err != nil {
				t.Fatalf("Float64Value() error: %v", err)
			}
			if !f.Valid {
				t.Fatal("Float64Value() returned invalid")
			}
			if diff := f.Float64 - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("ToPgNumeric(%q) = %v, want %v", tt.input, f.Float64, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToPgInt8 Tests
// ----------------------------------------------------------------------------

func TestToPgInt8(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		want      int64
	}{
		{"2024", true, 2024},
		{"120.000", true, 120000},
		{"1.000.000", true, 1000000},
		{"-5", true, -5},
		{" 7 ", true, 7},
		{"", false, 0},
		{"12,5", false, 0},
		{"12.5", false, 0},
		{"km", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ToPgInt8(tt.input)
			if got.Valid != tt.wantValid {
				t.Fatalf("ToPgInt8(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if got.Valid && got.Int64 != tt.want {
				t.Errorf("ToPgInt8(%q) = %d, want %d", tt.input, got.Int64, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToPgDate Tests
// ----------------------------------------------------------------------------

func TestToPgDate(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      time.Time
	}{
		{"masked", "15/01/2024", true, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"raw digits", "15012024", true, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"iso", "2024-01-15", true, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"leap day", "29/02/2024", true, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"padded", "  01/12/2023 ", true, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)},

		{"empty", "", false, time.Time{}},
		{"partial", "15/01", false, time.Time{}},
		{"month 13", "01/13/2024", false, time.Time{}},
		{"not a leap year", "29/02/2023", false, time.Time{}},
		{"us order", "12/31/2024", false, time.Time{}},
		{"text", "ontem", false, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToPgDate(tt.input)
			if got.Valid != tt.wantValid {
				t.Fatalf("ToPgDate(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if got.Valid && !got.Time.Equal(tt.want) {
				t.Errorf("ToPgDate(%q) = %v, want %v", tt.input, got.Time, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToPgBool Tests
// ----------------------------------------------------------------------------

func TestToPgBool(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		want      bool
	}{
		{"sim", true, true},
		{"Sim", true, true},
		{"S", true, true},
		{"true", true, true},
		{"1", true, true},
		{"não", true, false},
		{"NÃO", true, false},
		{"nao", true, false},
		{"n", true, false},
		{"false", true, false},
		{"0", true, false},
		{"", false, false},
		{"talvez", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ToPgBool(tt.input)
			if got.Valid != tt.wantValid {
				t.Fatalf("ToPgBool(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if got.Valid && got.Bool != tt.want {
				t.Errorf("ToPgBool(%q) = %v, want %v", tt.input, got.Bool, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToPgText / ToPgUUID Tests
// ----------------------------------------------------------------------------

func TestToPgText(t *testing.T) {
	if got := ToPgText("  Onix  "); !got.Valid || got.String != "Onix" {
		t.Errorf("ToPgText trims: got %+v", got)
	}
	if got := ToPgText(" \t "); got.Valid {
		t.Errorf("ToPgText(whitespace).Valid = true, want false")
	}
}

func TestToPgUUID(t *testing.T) {
	const id = "7f9c24e8-3b12-4fef-91e2-1c7c7b9f2a10"

	got := ToPgUUID(id)
	if !got.Valid {
		t.Fatal("ToPgUUID(valid).Valid = false")
	}
	if s := PgUUIDToString(got); s != id {
		t.Errorf("PgUUIDToString() = %q, want %q", s, id)
	}

	for _, in := range []string{"", "not-a-uuid", "7f9c24e8"} {
		if ToPgUUID(in).Valid {
			t.Errorf("ToPgUUID(%q).Valid = true, want false", in)
		}
	}
	if PgUUIDToString(pgtype.UUID{}) != "" {
		t.Error("PgUUIDToString(invalid) should be empty")
	}
}

// ----------------------------------------------------------------------------
// toPg Tests
// ----------------------------------------------------------------------------

func TestToPg_CleansMaskedText(t *testing.T) {
	tests := []struct {
		name  string
		value string
		spec  FieldSpec
		want  string
	}{
		{"cpf", "529.982.247-25", FieldSpec{Mask: mask.KindCPF}, "52998224725"},
		{"cnpj", "11.222.333/0001-81", FieldSpec{Mask: mask.KindCNPJ}, "11222333000181"},
		{"phone", "(11) 98765-4321", FieldSpec{Mask: mask.KindPhone}, "11987654321"},
		{"cep", "01310-100", FieldSpec{Mask: mask.KindCEP}, "01310100"},
		{"plate", "abc-1d23", FieldSpec{Mask: mask.KindPlate}, "ABC1D23"},
		{"free text", " Rua A, 10 ", FieldSpec{}, "Rua A, 10"},
		{"enum canonical", "Available", FieldSpec{Type: FieldEnum, EnumValues: []string{"available", "sold"}}, "available"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := toPg(tt.value, tt.spec).(pgtype.Text)
			if !ok {
				t.Fatalf("toPg() type = %T, want pgtype.Text", toPg(tt.value, tt.spec))
			}
			if !got.Valid || got.String != tt.want {
				t.Errorf("toPg(%q) = %+v, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestToPg_Types(t *testing.T) {
	if _, ok := toPg("15/01/2024", FieldSpec{Type: FieldDate, Mask: mask.KindDate}).(pgtype.Date); !ok {
		t.Error("FieldDate should convert to pgtype.Date")
	}
	if _, ok := toPg("10,00", FieldSpec{Type: FieldNumeric}).(pgtype.Numeric); !ok {
		t.Error("FieldNumeric should convert to pgtype.Numeric")
	}
	if _, ok := toPg("10", FieldSpec{Type: FieldInteger}).(pgtype.Int8); !ok {
		t.Error("FieldInteger should convert to pgtype.Int8")
	}
	if _, ok := toPg("sim", FieldSpec{Type: FieldBool}).(pgtype.Bool); !ok {
		t.Error("FieldBool should convert to pgtype.Bool")
	}
	if _, ok := toPg("7f9c24e8-3b12-4fef-91e2-1c7c7b9f2a10", FieldSpec{Type: FieldUUID}).(pgtype.UUID); !ok {
		t.Error("FieldUUID should convert to pgtype.UUID")
	}

	d := toPg("15/01/2024", FieldSpec{Type: FieldDate, Mask: mask.KindDate}).(pgtype.Date)
	if !d.Valid || d.Time.Day() != 15 || d.Time.Month() != time.January {
		t.Errorf("masked date converted to %+v", d)
	}
}
