package core

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed sql/schema.sql
var schemaSQL string

// Schema returns the DDL for every entity table.
func Schema() string {
	return schemaSQL
}

// Migrate creates any missing entity tables. It is idempotent.
func (s *Service) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
