// Package entities registers the fleet back-office entities with the core
// registry. Import it for side effects to make every entity available:
//
//	import _ "github.com/JonMunkholm/frota/internal/core/entities"
//
// Each file groups the entities of one menu section and registers them
// from init().
package entities
