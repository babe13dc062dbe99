package entities

import (
	"net/mail"
	"strconv"

	"github.com/JonMunkholm/frota/internal/core"
)

// Vehicle model years accepted on input.
const (
	minModelYear = 1900
	maxModelYear = 2100
)

func isValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// isValidModelYear accepts four-digit years within a plausible range.
func isValidModelYear(s string) bool {
	y, err := strconv.Atoi(s)
	return err == nil && y >= minModelYear && y <= maxModelYear
}

// isNonNegativeAmount accepts amounts in any format core.ToPgNumeric reads.
func isNonNegativeAmount(s string) bool {
	f, err := core.ToPgNumeric(s).Float64Value()
	return err == nil && f.Valid && f.Float64 >= 0
}

func isNonNegativeInt(s string) bool {
	n := core.ToPgInt8(s)
	return n.Valid && n.Int64 >= 0
}
