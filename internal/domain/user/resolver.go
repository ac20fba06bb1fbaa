package user

import (
	"context"
	"strings"
)

// Resolver maps an authenticated identity onto its domain user.
// It reads through to the repository on every call; records are never provisioned here.
type Resolver struct {
	repo Repository
}

// NewResolver creates a resolver over repo
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve returns the domain user for externalID or ErrUserNotFound
func (r *Resolver) Resolve(ctx context.Context, externalID string) (*User, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, ErrExternalIDRequired
	}
	return r.repo.GetByExternalID(ctx, externalID)
}
