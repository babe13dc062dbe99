// Package core provides the fleet back-office record operations.
//
// It is independent of any transport: the web server and the frotactl CLI
// both drive the same [Service].
//
// # Entity Registry
//
// Entities are registered at init time using [Register]. Each
// [EntityDefinition] lists the fields an operator edits, with their
// storage type and input mask:
//
//	core.Register(core.EntityDefinition{
//	    Info: core.EntityInfo{Key: "vehicles", Group: "Frota", Label: "Veículos"},
//	    FieldSpecs: []core.FieldSpec{
//	        {Name: "Placa", DBColumn: "plate", Required: true, Mask: mask.KindPlate},
//	        {Name: "Quilometragem", DBColumn: "mileage", Type: core.FieldInteger},
//	    },
//	})
//
// # Company Scope
//
// Every entity except companies belongs to one company. The active company
// travels in the context (see package tenant); scoped operations without
// one fail with [ErrNoCompany].
//
// # Masked Input
//
// Input is accepted as typed, masks included. [RecordValidator] checks the
// cleaned value, and the Service stores it cleaned. [Columns] re-applies
// the mask when the value is displayed.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages using [MapError].
// Each category has a code for support reference:
//
//   - DB001-DB005: Database errors (duplicates, references, connectivity)
//   - VAL001-VAL003: Validation errors
//   - ENT001-ENT003: Entity errors (unknown, not found, no company)
package core
