package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/matchpulse/matchpulse/internal/domain/standing"
)

type StandingRepository struct {
	mu        sync.RWMutex
	nextID    int64
	standings map[int64]standing.Standing
}

func NewStandingRepository() *StandingRepository {
	return &StandingRepository{standings: make(map[int64]standing.Standing)}
}

func (r *StandingRepository) ListByCompetitionSeason(_ context.Context, competitionID, seasonID int64) ([]standing.Standing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]standing.Standing, 0)
	for _, item := range r.standings {
		if item.CompetitionID == competitionID && item.SeasonID == seasonID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })

	return out, nil
}

func (r *StandingRepository) GetByKey(_ context.Context, competitionID, seasonID, teamID int64) (standing.Standing, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.standings {
		if item.CompetitionID == competitionID && item.SeasonID == seasonID && item.TeamID == teamID {
			return item, true, nil
		}
	}

	return standing.Standing{}, false, nil
}

func (r *StandingRepository) Create(_ context.Context, item *standing.Standing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.standings {
		if existing.CompetitionID == item.CompetitionID && existing.SeasonID == item.SeasonID && existing.TeamID == item.TeamID {
			item.ID = id
			r.standings[id] = *item
			return nil
		}
	}

	r.nextID++
	item.ID = r.nextID
	r.standings[item.ID] = *item

	return nil
}

func (r *StandingRepository) Update(_ context.Context, item standing.Standing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.standings[item.ID]; ok {
		r.standings[item.ID] = item
	}

	return nil
}
