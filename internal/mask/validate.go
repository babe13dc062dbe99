package mask

import (
	"fmt"
	"regexp"
	"time"
)

var (
	cnpjFirstWeights  = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjSecondWeights = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}

	// Legacy AAA9999 or Mercosul AAA9A99.
	plateRegex = regexp.MustCompile(`^[A-Z]{3}[0-9][A-Z0-9][0-9]{2}$`)
)

// IsValidCPF reports whether value holds 11 digits (after cleaning) whose
// two trailing check digits match the modulo-11 weighted sums. Sequences of
// a single repeated digit are rejected.
func IsValidCPF(value string) bool {
	digits := Remove(value)
	if len(digits) != cpfLength || repeated(digits) {
		return false
	}

	first := cpfCheckDigit(digits[:9], 10)
	if first != int(digits[9]-'0') {
		return false
	}
	second := cpfCheckDigit(digits[:10], 11)
	return second == int(digits[10]-'0')
}

// cpfCheckDigit weighs digits from startWeight down to 2.
func cpfCheckDigit(digits string, startWeight int) int {
	sum := 0
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * (startWeight - i)
	}
	d := 11 - sum%11
	if d >= 10 {
		return 0
	}
	return d
}

// IsValidCNPJ reports whether value holds 14 digits (after cleaning) whose
// two trailing check digits match the fixed CNPJ weight vectors.
func IsValidCNPJ(value string) bool {
	digits := Remove(value)
	if len(digits) != cnpjLength || repeated(digits) {
		return false
	}

	if cnpjCheckDigit(digits[:12], cnpjFirstWeights) != int(digits[12]-'0') {
		return false
	}
	return cnpjCheckDigit(digits[:13], cnpjSecondWeights) == int(digits[13]-'0')
}

func cnpjCheckDigit(digits string, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += int(digits[i]-'0') * w
	}
	if r := sum % 11; r >= 2 {
		return 11 - r
	}
	return 0
}

// IsValidDocument validates value as a CPF when it has 11 digits and as a
// CNPJ when it has 14. Any other length is invalid.
func IsValidDocument(value string) bool {
	switch len(Remove(value)) {
	case cpfLength:
		return IsValidCPF(value)
	case cnpjLength:
		return IsValidCNPJ(value)
	default:
		return false
	}
}

// IsValidPlate reports whether value, once cleaned, is a legacy or Mercosul
// vehicle plate.
func IsValidPlate(value string) bool {
	return plateRegex.MatchString(alphanumeric(value))
}

// IsValidPhone reports whether value holds a landline (10 digits) or a
// mobile number (11 digits), area code included.
func IsValidPhone(value string) bool {
	n := len(Remove(value))
	return n == phoneLength || n == mobileLength
}

// IsValidCEP reports whether value holds the 8 digits of a postal code.
func IsValidCEP(value string) bool {
	return len(Remove(value)) == cepLength
}

func isValidDate(value string) bool {
	_, err := ParseDate(value)
	return err == nil
}

// ParseDate parses a dd/mm/yyyy date. The separators are optional, so the
// eight raw digits stored for a date field parse as well.
func ParseDate(value string) (time.Time, error) {
	digits := Remove(value)
	if len(digits) != dateDigitsLength {
		return time.Time{}, fmt.Errorf("invalid date %q: expected dd/mm/yyyy", value)
	}
	t, err := time.Parse("02012006", digits)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return t, nil
}

func repeated(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}
