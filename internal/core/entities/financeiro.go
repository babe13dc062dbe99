package entities

import "github.com/JonMunkholm/frota/internal/core"

func init() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:      "financial_categories",
			Group:    "Financeiro",
			Label:    "Categorias financeiras",
			Singular: "Categoria financeira",
		},
		FieldSpecs: []core.FieldSpec{
			{Name: "Nome", DBColumn: "name", Required: true},
			{
				Name:       "Tipo",
				DBColumn:   "kind",
				Type:       core.FieldEnum,
				Required:   true,
				EnumValues: []string{"income", "expense"},
				Labels:     map[string]string{"income": "Receita", "expense": "Despesa"},
			},
			{Name: "Descrição", DBColumn: "description", NotSortable: true},
		},
	})
}
