package mask

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned by ParseKind for identifiers with no mask.
var ErrUnknownKind = errors.New("unknown mask kind")

// Kind identifies one of the supported masks.
type Kind int

const (
	None Kind = iota
	KindCPF
	KindCNPJ
	KindCPFCNPJ
	KindPhone
	KindCEP
	KindPlate
	KindDate
)

type rule struct {
	name  string
	apply func(string) string
	clean func(string) string
	valid func(string) bool
}

// rules is indexed by Kind.
var rules = [...]rule{
	None:        {name: "none", apply: identity, clean: identity, valid: always},
	KindCPF:     {name: "cpf", apply: CPF, clean: Remove, valid: IsValidCPF},
	KindCNPJ:    {name: "cnpj", apply: CNPJ, clean: Remove, valid: IsValidCNPJ},
	KindCPFCNPJ: {name: "cpfCnpj", apply: CPFCNPJ, clean: Remove, valid: IsValidDocument},
	KindPhone:   {name: "phone", apply: Phone, clean: Remove, valid: IsValidPhone},
	KindCEP:     {name: "cep", apply: CEP, clean: Remove, valid: IsValidCEP},
	KindPlate:   {name: "plate", apply: Plate, clean: alphanumeric, valid: IsValidPlate},
	KindDate:    {name: "date", apply: Date, clean: Remove, valid: isValidDate},
}

func identity(s string) string { return s }

func always(string) bool { return true }

// ParseKind resolves a mask identifier such as "cpfCnpj" or "cep".
// Matching is case-insensitive. "none" is not accepted; a field without a
// mask simply uses the None zero value.
func ParseKind(name string) (Kind, error) {
	for k := KindCPF; int(k) < len(rules); k++ {
		if strings.EqualFold(rules[k].name, name) {
			return k, nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Kinds returns every supported mask, excluding None.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(rules)-1)
	for k := KindCPF; int(k) < len(rules); k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

func (k Kind) rule() rule {
	if k < None || int(k) >= len(rules) {
		panic(fmt.Sprintf("mask: invalid kind %d", int(k)))
	}
	return rules[k]
}

// String returns the mask identifier.
func (k Kind) String() string {
	if k < None || int(k) >= len(rules) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return rules[k].name
}

// Apply formats raw with the mask. None returns raw unchanged.
func (k Kind) Apply(raw string) string {
	return k.rule().apply(raw)
}

// Clean returns the form of value that is persisted: digits only for the
// numeric masks, uppercase alphanumerics for plates.
func (k Kind) Clean(value string) string {
	return k.rule().clean(value)
}

// Valid reports whether value is complete and well-formed for the mask:
// check digits for documents, length for phones and CEPs, a real calendar
// day for dates. None accepts anything.
func (k Kind) Valid(value string) bool {
	return k.rule().valid(value)
}
