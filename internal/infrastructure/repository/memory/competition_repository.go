package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/matchpulse/matchpulse/internal/domain/competition"
)

type CompetitionRepository struct {
	mu           sync.RWMutex
	nextID       int64
	competitions map[int64]competition.Competition
}

func NewCompetitionRepository() *CompetitionRepository {
	return &CompetitionRepository{competitions: make(map[int64]competition.Competition)}
}

func (r *CompetitionRepository) GetByID(_ context.Context, competitionID int64) (competition.Competition, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.competitions[competitionID]
	return item, ok, nil
}

func (r *CompetitionRepository) GetByName(_ context.Context, name string) (competition.Competition, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.competitions {
		if strings.EqualFold(item.Name, name) {
			return item, true, nil
		}
	}

	return competition.Competition{}, false, nil
}

func (r *CompetitionRepository) List(_ context.Context) ([]competition.Competition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]competition.Competition, 0, len(r.competitions))
	for _, item := range r.competitions {
		out = append(out, item)
	}

	return out, nil
}

func (r *CompetitionRepository) Create(_ context.Context, item *competition.Competition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.competitions {
		if strings.EqualFold(existing.Name, item.Name) {
			return competition.ErrDuplicateName
		}
	}

	r.nextID++
	item.ID = r.nextID
	r.competitions[item.ID] = *item

	return nil
}

type SeasonRepository struct {
	mu      sync.RWMutex
	nextID  int64
	seasons map[int64]competition.Season
}

func NewSeasonRepository() *SeasonRepository {
	return &SeasonRepository{seasons: make(map[int64]competition.Season)}
}

func (r *SeasonRepository) GetByID(_ context.Context, seasonID int64) (competition.Season, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.seasons[seasonID]
	return item, ok, nil
}

func (r *SeasonRepository) GetByName(_ context.Context, name string) (competition.Season, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.seasons {
		if strings.EqualFold(item.Name, name) {
			return item, true, nil
		}
	}

	return competition.Season{}, false, nil
}

func (r *SeasonRepository) GetCurrent(_ context.Context) (competition.Season, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.seasons {
		if item.Current {
			return item, true, nil
		}
	}

	return competition.Season{}, false, nil
}

func (r *SeasonRepository) Create(_ context.Context, item *competition.Season) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.seasons {
		if strings.EqualFold(existing.Name, item.Name) {
			return competition.ErrDuplicateSeasonName
		}
	}

	r.nextID++
	item.ID = r.nextID
	r.seasons[item.ID] = *item

	return nil
}
