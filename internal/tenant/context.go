// Package tenant carries the active company through a request context.
// Every entity except companies is scoped to one company.
package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNilCompany is returned by ParseCompanyID for the all-zero UUID.
var ErrNilCompany = errors.New("nil company id")

type contextKey string

const ctxKeyCompanyID contextKey = "tenant_company_id"

// WithCompanyID returns a context scoped to the given company.
func WithCompanyID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKeyCompanyID, id)
}

// CompanyID returns the company the context is scoped to.
func CompanyID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxKeyCompanyID).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// ParseCompanyID parses a company UUID, rejecting the nil UUID.
func ParseCompanyID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, err
	}
	if id == uuid.Nil {
		return uuid.Nil, ErrNilCompany
	}
	return id, nil
}
