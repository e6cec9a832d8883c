package externalref

import (
	"context"

	"github.com/matchpulse/matchpulse/internal/domain/provider"
)

type Repository interface {
	GetByExternalID(ctx context.Context, entityType provider.EntityType, prov provider.Provider, externalID string) (ExternalRef, bool, error)
	GetByEntity(ctx context.Context, entityType provider.EntityType, entityID int64, prov provider.Provider) (ExternalRef, bool, error)
	// Create persists a new mapping. It returns ErrDuplicate when either
	// uniqueness constraint fires; callers resolve by re-running the lookup.
	Create(ctx context.Context, item *ExternalRef) error
}
