package core

// convert.go turns form input into pgtype values.
//
// Input arrives the way a Brazilian operator types it: dates as dd/mm/yyyy,
// money as "R$ 1.234,56", mileage as "120.000". Every ToPg* function
// returns Valid=false for empty or unparseable input so the column is
// written as NULL; validation rejects bad input before conversion.

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/JonMunkholm/frota/internal/mask"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// numericRegex validates a decimal after separators were normalized.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// groupedRegex matches integers written with "." thousands separators.
var groupedRegex = regexp.MustCompile(`^[+-]?[1-9]\d{0,2}(\.\d{3})+$`)

var isoDateLayout = "2006-01-02"

// ToPgText converts a string to pgtype.Text.
// Returns invalid if the string is empty or only whitespace.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgDate converts a dd/mm/yyyy date (masked or as 8 digits) or an ISO
// yyyy-mm-dd date to pgtype.Date.
func ToPgDate(s string) pgtype.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Date{Valid: false}
	}

	if t, err := time.Parse(isoDateLayout, s); err == nil {
		return pgtype.Date{Time: t, Valid: true}
	}
	if t, err := mask.ParseDate(s); err == nil {
		return pgtype.Date{Time: t, Valid: true}
	}

	return pgtype.Date{Valid: false}
}

// normalizeDecimal rewrites a Brazilian-formatted amount as a plain
// decimal: "R$ 1.234,56" -> "1234.56", "(10,00)" -> "-10.00".
func normalizeDecimal(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	// Accounting format "(123,45)"
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = strings.ReplaceAll(s, "R$", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	s = strings.ReplaceAll(s, " ", "")

	switch {
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case groupedRegex.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
	}

	if negative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return "", false
	}
	return s, true
}

// ToPgNumeric converts a Brazilian-formatted amount to pgtype.Numeric.
// A comma is the decimal separator; dots are thousands separators when
// they group digits in threes, otherwise a single dot is a decimal point.
func ToPgNumeric(s string) pgtype.Numeric {
	plain, ok := normalizeDecimal(s)
	if !ok {
		return pgtype.Numeric{Valid: false}
	}

	var n pgtype.Numeric
	if err := n.Scan(plain); err != nil {
		return pgtype.Numeric{Valid: false}
	}

	return n
}

// ToPgInt8 converts an integer, optionally grouped with dots, to
// pgtype.Int8: "120.000" -> 120000.
func ToPgInt8(s string) pgtype.Int8 {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Int8{Valid: false}
	}
	if groupedRegex.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return pgtype.Int8{Valid: false}
	}
	return pgtype.Int8{Int64: n, Valid: true}
}

// ToPgBool converts a string to pgtype.Bool.
// Accepts true/false, sim/não, yes/no, s/n, t/f, y/n, 1/0.
func ToPgBool(s string) pgtype.Bool {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return pgtype.Bool{Valid: false}
	}

	switch s {
	case "true", "t", "sim", "s", "yes", "y", "1":
		return pgtype.Bool{Bool: true, Valid: true}
	case "false", "f", "não", "nao", "n", "no", "0":
		return pgtype.Bool{Bool: false, Valid: true}
	default:
		return pgtype.Bool{Valid: false}
	}
}

// ToPgUUID converts a string to pgtype.UUID.
// Returns invalid if the string is empty or not a valid UUID.
func ToPgUUID(s string) pgtype.UUID {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.UUID{Valid: false}
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}
}

// PgUUIDToString converts a pgtype.UUID to its string representation.
// Returns empty string if the UUID is invalid.
func PgUUIDToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}

// CleanCell trims a spreadsheet cell and unwraps the ="..." formula
// Excel users type to keep leading zeros: ="01234567890" -> 01234567890.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = strings.TrimSpace(s[2 : len(s)-1])
	}
	return s
}

// FoldAccents lowercases s and strips combining marks: "Ceará" -> "ceara".
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// toPg converts one input value for spec's column. Masked text is
// cleaned first so only digits (or plate alphanumerics) are stored.
func toPg(value string, spec FieldSpec) any {
	value = strings.TrimSpace(value)
	if spec.Normalizer != nil && value != "" {
		value = spec.Normalizer(value)
	}

	switch spec.Type {
	case FieldDate:
		return ToPgDate(value)
	case FieldNumeric:
		return ToPgNumeric(value)
	case FieldInteger:
		return ToPgInt8(value)
	case FieldBool:
		return ToPgBool(value)
	case FieldUUID:
		return ToPgUUID(value)
	case FieldEnum:
		for _, ev := range spec.EnumValues {
			if strings.EqualFold(ev, value) {
				return ToPgText(ev)
			}
		}
		return ToPgText(value)
	default:
		return ToPgText(spec.Mask.Clean(value))
	}
}
