package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/matchpulse/matchpulse/internal/domain/player"
)

type PlayerRepository struct {
	mu      sync.RWMutex
	nextID  int64
	players map[int64]player.Player
}

func NewPlayerRepository() *PlayerRepository {
	return &PlayerRepository{players: make(map[int64]player.Player)}
}

func (r *PlayerRepository) GetByID(_ context.Context, playerID int64) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.players[playerID]
	return item, ok, nil
}

func (r *PlayerRepository) GetByName(_ context.Context, name string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.players {
		if strings.EqualFold(item.Name, name) {
			return item, true, nil
		}
	}

	return player.Player{}, false, nil
}

func (r *PlayerRepository) Create(_ context.Context, item *player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.players {
		if strings.EqualFold(existing.Name, item.Name) {
			return player.ErrDuplicateName
		}
	}

	r.nextID++
	item.ID = r.nextID
	r.players[item.ID] = *item

	return nil
}
