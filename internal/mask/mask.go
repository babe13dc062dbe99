// Package mask formats free-typed input into Brazilian document and contact
// display formats and validates CPF/CNPJ check digits.
//
// Every function is pure and total: malformed input yields a partial mask
// or false, never a panic. Partial input is formatted progressively, so a
// separator is only written once a character follows it:
//
//	mask.CPFCNPJ("529982")      // "529.982"
//	mask.CPFCNPJ("52998224725") // "529.982.247-25"
//	mask.Phone("11")            // "(11"
//
// Stored values are always the cleaned form (see [Remove] and [Kind.Clean]);
// masks are re-applied for display.
package mask

import "strings"

// Patterns use '9' for a digit slot and 'A' for an alphanumeric slot.
// Every other byte is a literal separator.
const (
	cpfPattern       = "999.999.999-99"
	cnpjPattern      = "99.999.999/9999-99"
	phonePattern     = "(99) 9999-9999"
	mobilePattern    = "(99) 99999-9999"
	cepPattern       = "99999-999"
	platePattern     = "AAA-AAAA"
	datePattern      = "99/99/9999"
	cpfLength        = 11
	cnpjLength       = 14
	phoneLength      = 10
	mobileLength     = 11
	cepLength        = 8
	plateLength      = 7
	dateDigitsLength = 8
)

// Remove strips every non-digit character.
func Remove(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// alphanumeric uppercases value and keeps only ASCII letters and digits.
func alphanumeric(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range strings.ToUpper(value) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CPF formats up to 11 digits as 999.999.999-99.
func CPF(raw string) string {
	return format(truncate(Remove(raw), cpfLength), cpfPattern)
}

// CNPJ formats up to 14 digits as 99.999.999/9999-99.
func CNPJ(raw string) string {
	return format(truncate(Remove(raw), cnpjLength), cnpjPattern)
}

// CPFCNPJ applies the CPF grouping while the input has at most 11 digits
// and the CNPJ grouping beyond that. Digits past the 14th are dropped.
func CPFCNPJ(raw string) string {
	digits := truncate(Remove(raw), cnpjLength)
	if len(digits) <= cpfLength {
		return format(digits, cpfPattern)
	}
	return format(digits, cnpjPattern)
}

// Phone formats landlines (up to 10 digits) as (99) 9999-9999 and mobiles
// (11 digits) as (99) 99999-9999.
func Phone(raw string) string {
	digits := truncate(Remove(raw), mobileLength)
	if len(digits) <= phoneLength {
		return format(digits, phonePattern)
	}
	return format(digits, mobilePattern)
}

// CEP formats up to 8 digits as 99999-999.
func CEP(raw string) string {
	return format(truncate(Remove(raw), cepLength), cepPattern)
}

// Plate uppercases, drops non-alphanumerics and inserts a hyphen after the
// third character. Positions 4-7 accept letters or digits so both the legacy
// ABC-1234 and the Mercosul ABC-1D23 layouts pass through.
func Plate(raw string) string {
	return format(truncate(alphanumeric(raw), plateLength), platePattern)
}

// Date formats up to 8 digits as 99/99/9999.
func Date(raw string) string {
	return format(truncate(Remove(raw), dateDigitsLength), datePattern)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// format lays the cleaned characters of s over pattern. Literals are only
// written while characters remain to be placed after them.
func format(s, pattern string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(pattern))

	pos := 0
	for i := 0; i < len(pattern) && pos < len(s); i++ {
		switch pattern[i] {
		case '9', 'A':
			b.WriteByte(s[pos])
			pos++
		default:
			b.WriteByte(pattern[i])
		}
	}
	return b.String()
}
