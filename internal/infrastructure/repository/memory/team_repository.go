package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/matchpulse/matchpulse/internal/domain/team"
)

type TeamRepository struct {
	mu     sync.RWMutex
	nextID int64
	teams  map[int64]team.Team
}

func NewTeamRepository() *TeamRepository {
	return &TeamRepository{teams: make(map[int64]team.Team)}
}

func (r *TeamRepository) GetByID(_ context.Context, teamID int64) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.teams[teamID]
	return item, ok, nil
}

func (r *TeamRepository) GetByName(_ context.Context, name string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.teams {
		if strings.EqualFold(item.Name, name) {
			return item, true, nil
		}
	}

	return team.Team{}, false, nil
}

func (r *TeamRepository) Create(_ context.Context, item *team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.teams {
		if strings.EqualFold(existing.Name, item.Name) {
			return team.ErrDuplicateName
		}
	}

	r.nextID++
	item.ID = r.nextID
	r.teams[item.ID] = *item

	return nil
}
