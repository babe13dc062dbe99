package entities

import (
	"github.com/JonMunkholm/frota/internal/core"
	"github.com/JonMunkholm/frota/internal/mask"
)

const groupFrota = "Frota"

func init() {
	registerVehicles()
	registerMaintenanceRecords()
}

func mileageField() core.FieldSpec {
	return core.FieldSpec{
		Name:         "Quilometragem",
		DBColumn:     "mileage",
		Type:         core.FieldInteger,
		Format:       core.FormatGrouped,
		Check:        isNonNegativeInt,
		CheckMessage: "quilometragem não pode ser negativa",
	}
}

func registerVehicles() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:      "vehicles",
			Group:    groupFrota,
			Label:    "Veículos",
			Singular: "Veículo",
		},
		FieldSpecs: []core.FieldSpec{
			{Name: "Placa", DBColumn: "plate", Required: true, Mask: mask.KindPlate, Check: mask.IsValidPlate, CheckMessage: "placa inválida"},
			{Name: "Marca", DBColumn: "brand"},
			{Name: "Modelo", DBColumn: "model", Required: true},
			{Name: "Ano", DBColumn: "year", Type: core.FieldInteger, Check: isValidModelYear, CheckMessage: "ano inválido"},
			mileageField(),
			{
				Name:       "Situação",
				DBColumn:   "status",
				Type:       core.FieldEnum,
				Required:   true,
				EnumValues: []string{"available", "in_use", "maintenance", "inactive"},
				Labels: map[string]string{
					"available":   "Disponível",
					"in_use":      "Em uso",
					"maintenance": "Em manutenção",
					"inactive":    "Inativo",
				},
			},
		},
	})
}

func registerMaintenanceRecords() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:      "maintenance_records",
			Group:    groupFrota,
			Label:    "Manutenções",
			Singular: "Manutenção",
		},
		FieldSpecs: []core.FieldSpec{
			{Name: "Veículo", DBColumn: "vehicle_id", Type: core.FieldUUID, Required: true, NotSortable: true},
			{Name: "Data", DBColumn: "service_date", Type: core.FieldDate, Required: true, Mask: mask.KindDate},
			{
				Name:       "Tipo",
				DBColumn:   "kind",
				Type:       core.FieldEnum,
				Required:   true,
				EnumValues: []string{"preventive", "corrective", "inspection"},
				Labels: map[string]string{
					"preventive": "Preventiva",
					"corrective": "Corretiva",
					"inspection": "Revisão",
				},
			},
			{Name: "Descrição", DBColumn: "description", NotSortable: true},
			{
				Name:         "Custo",
				DBColumn:     "cost",
				Type:         core.FieldNumeric,
				Format:       core.FormatMoney,
				Check:        isNonNegativeAmount,
				CheckMessage: "custo não pode ser negativo",
			},
			mileageField(),
		},
	})
}
