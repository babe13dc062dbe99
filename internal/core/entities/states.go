package entities

import (
	"strings"

	"github.com/JonMunkholm/frota/internal/core"
)

// BrazilianStates maps state names, without accents and lowercased, to
// their two-letter UF.
var BrazilianStates = map[string]string{
	"acre":                "AC",
	"alagoas":             "AL",
	"amapa":               "AP",
	"amazonas":            "AM",
	"bahia":               "BA",
	"ceara":               "CE",
	"distrito federal":    "DF",
	"espirito santo":      "ES",
	"goias":               "GO",
	"maranhao":            "MA",
	"mato grosso":         "MT",
	"mato grosso do sul":  "MS",
	"minas gerais":        "MG",
	"para":                "PA",
	"paraiba":             "PB",
	"parana":              "PR",
	"pernambuco":          "PE",
	"piaui":               "PI",
	"rio de janeiro":      "RJ",
	"rio grande do norte": "RN",
	"rio grande do sul":   "RS",
	"rondonia":            "RO",
	"roraima":             "RR",
	"santa catarina":      "SC",
	"sao paulo":           "SP",
	"sergipe":             "SE",
	"tocantins":           "TO",
}

var validUFs = func() map[string]bool {
	m := make(map[string]bool, len(BrazilianStates))
	for _, uf := range BrazilianStates {
		m[uf] = true
	}
	return m
}()

// NormalizeUF converts a state name or UF in any case to its UF.
// "São Paulo" -> "SP", "rj" -> "RJ". Unknown input is returned trimmed
// and uppercased so validation can reject it.
func NormalizeUF(s string) string {
	s = strings.TrimSpace(s)
	if uf, ok := BrazilianStates[core.FoldAccents(s)]; ok {
		return uf
	}
	return strings.ToUpper(s)
}

// IsValidUF reports whether s is one of the 27 federative units.
func IsValidUF(s string) bool {
	return validUFs[s]
}
