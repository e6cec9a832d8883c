package externalref

import (
	"errors"
	"fmt"
	"time"

	"github.com/matchpulse/matchpulse/internal/domain/provider"
)

// ErrDuplicate signals one of the two uniqueness constraints fired:
// (entity_type, provider, external_id) or (entity_type, entity_id, provider).
var ErrDuplicate = errors.New("external ref already exists")

// ExternalRef links one provider's identifier to a canonical entity.
// Created lazily on first successful reconciliation; never deleted here.
type ExternalRef struct {
	ID         int64
	EntityType provider.EntityType
	EntityID   int64
	Provider   provider.Provider
	ExternalID string
	CreatedAt  time.Time
}

func (r ExternalRef) Validate() error {
	if r.EntityType == "" {
		return fmt.Errorf("entity type is required")
	}
	if r.EntityID <= 0 {
		return fmt.Errorf("entity id is required")
	}
	if r.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if r.ExternalID == "" {
		return fmt.Errorf("external id is required")
	}

	return nil
}
