package entities

import (
	"github.com/JonMunkholm/frota/internal/core"
	"github.com/JonMunkholm/frota/internal/mask"
)

const groupCadastros = "Cadastros"

func init() {
	registerCompanies()
	registerClients()
	registerUsers()
}

func stateField() core.FieldSpec {
	return core.FieldSpec{
		Name:         "UF",
		DBColumn:     "state",
		Normalizer:   NormalizeUF,
		Check:        IsValidUF,
		CheckMessage: "UF inválida",
	}
}

func emailField(required bool) core.FieldSpec {
	return core.FieldSpec{
		Name:         "E-mail",
		DBColumn:     "email",
		Required:     required,
		Check:        isValidEmail,
		CheckMessage: "e-mail inválido",
	}
}

func phoneField() core.FieldSpec {
	return core.FieldSpec{
		Name:         "Telefone",
		DBColumn:     "phone",
		Mask:         mask.KindPhone,
		Check:        mask.IsValidPhone,
		CheckMessage: "telefone inválido",
	}
}

func cepField() core.FieldSpec {
	return core.FieldSpec{
		Name:         "CEP",
		DBColumn:     "cep",
		Mask:         mask.KindCEP,
		Check:        mask.IsValidCEP,
		CheckMessage: "CEP inválido",
	}
}

// Companies are the tenants themselves and are not company-scoped.
func registerCompanies() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:      "companies",
			Group:    groupCadastros,
			Label:    "Empresas",
			Singular: "Empresa",
			Unscoped: true,
		},
		FieldSpecs: []core.FieldSpec{
			{Name: "Razão social", DBColumn: "name", Required: true},
			{Name: "CNPJ", DBColumn: "cnpj", Required: true, Mask: mask.KindCNPJ, Check: mask.IsValidCNPJ, CheckMessage: "CNPJ inválido"},
			phoneField(),
			emailField(false),
			cepField(),
			{Name: "Cidade", DBColumn: "city"},
			stateField(),
		},
	})
}

func registerClients() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:      "clients",
			Group:    groupCadastros,
			Label:    "Clientes",
			Singular: "Cliente",
		},
		FieldSpecs: []core.FieldSpec{
			{Name: "Nome", DBColumn: "name", Required: true},
			{Name: "CPF/CNPJ", DBColumn: "document", Required: true, Mask: mask.KindCPFCNPJ, Check: mask.IsValidDocument, CheckMessage: "CPF/CNPJ inválido"},
			phoneField(),
			emailField(false),
			cepField(),
			{Name: "Endereço", DBColumn: "address", NotSortable: true},
			{Name: "Cidade", DBColumn: "city"},
			stateField(),
		},
	})
}

func registerUsers() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:      "users",
			Group:    groupCadastros,
			Label:    "Usuários",
			Singular: "Usuário",
		},
		FieldSpecs: []core.FieldSpec{
			{Name: "Nome", DBColumn: "name", Required: true},
			emailField(true),
			{Name: "CPF", DBColumn: "cpf", Mask: mask.KindCPF, Check: mask.IsValidCPF, CheckMessage: "CPF inválido"},
			phoneField(),
			{
				Name:       "Perfil",
				DBColumn:   "role",
				Type:       core.FieldEnum,
				Required:   true,
				EnumValues: []string{"admin", "manager", "operator"},
				Labels:     map[string]string{"admin": "Administrador", "manager": "Gestor", "operator": "Operador"},
			},
		},
	})
}
