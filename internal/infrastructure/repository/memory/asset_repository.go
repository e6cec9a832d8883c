package memory

import (
	"context"
	"sync"
	"time"

	"github.com/matchpulse/matchpulse/internal/domain/asset"
)

type TeamAssetRepository struct {
	mu     sync.RWMutex
	nextID int64
	byTeam map[int64]asset.TeamAsset
}

func NewTeamAssetRepository() *TeamAssetRepository {
	return &TeamAssetRepository{byTeam: make(map[int64]asset.TeamAsset)}
}

func (r *TeamAssetRepository) GetByTeam(_ context.Context, teamID int64) (asset.TeamAsset, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byTeam[teamID]
	return item, ok, nil
}

func (r *TeamAssetRepository) Upsert(_ context.Context, item *asset.TeamAsset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byTeam[item.TeamID]; ok {
		item.ID = existing.ID
	} else {
		r.nextID++
		item.ID = r.nextID
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = time.Now()
	}
	r.byTeam[item.TeamID] = *item

	return nil
}

type PlayerAssetRepository struct {
	mu       sync.RWMutex
	nextID   int64
	byPlayer map[int64]asset.PlayerAsset
}

func NewPlayerAssetRepository() *PlayerAssetRepository {
	return &PlayerAssetRepository{byPlayer: make(map[int64]asset.PlayerAsset)}
}

func (r *PlayerAssetRepository) GetByPlayer(_ context.Context, playerID int64) (asset.PlayerAsset, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byPlayer[playerID]
	return item, ok, nil
}

func (r *PlayerAssetRepository) Upsert(_ context.Context, item *asset.PlayerAsset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byPlayer[item.PlayerID]; ok {
		item.ID = existing.ID
	} else {
		r.nextID++
		item.ID = r.nextID
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = time.Now()
	}
	r.byPlayer[item.PlayerID] = *item

	return nil
}
