package memory

import (
	"context"
	"sync"
	"time"

	"github.com/matchpulse/matchpulse/internal/domain/externalref"
	"github.com/matchpulse/matchpulse/internal/domain/provider"
)

type ExternalRefRepository struct {
	mu     sync.RWMutex
	nextID int64
	refs   map[int64]externalref.ExternalRef
}

func NewExternalRefRepository() *ExternalRefRepository {
	return &ExternalRefRepository{refs: make(map[int64]externalref.ExternalRef)}
}

func (r *ExternalRefRepository) GetByExternalID(_ context.Context, entityType provider.EntityType, prov provider.Provider, externalID string) (externalref.ExternalRef, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.refs {
		if item.EntityType == entityType && item.Provider == prov && item.ExternalID == externalID {
			return item, true, nil
		}
	}

	return externalref.ExternalRef{}, false, nil
}

func (r *ExternalRefRepository) GetByEntity(_ context.Context, entityType provider.EntityType, entityID int64, prov provider.Provider) (externalref.ExternalRef, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.refs {
		if item.EntityType == entityType && item.EntityID == entityID && item.Provider == prov {
			return item, true, nil
		}
	}

	return externalref.ExternalRef{}, false, nil
}

func (r *ExternalRefRepository) Create(_ context.Context, item *externalref.ExternalRef) error {
	if err := item.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Both uniqueness constraints are enforced, matching the table schema.
	for _, existing := range r.refs {
		if existing.EntityType != item.EntityType {
			continue
		}
		if existing.Provider == item.Provider && existing.ExternalID == item.ExternalID {
			return externalref.ErrDuplicate
		}
		if existing.Provider == item.Provider && existing.EntityID == item.EntityID {
			return externalref.ErrDuplicate
		}
	}

	r.nextID++
	item.ID = r.nextID
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	r.refs[item.ID] = *item

	return nil
}
