package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/matchpulse/matchpulse/internal/domain/match"
)

type MatchRepository struct {
	mu      sync.RWMutex
	nextID  int64
	matches map[int64]match.Match
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{matches: make(map[int64]match.Match)}
}

func (r *MatchRepository) GetByID(_ context.Context, matchID int64) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.matches[matchID]
	return item, ok, nil
}

func (r *MatchRepository) FindByTeamsAround(_ context.Context, homeTeamID, awayTeamID int64, from time.Time) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best match.Match
	found := false
	for _, item := range r.matches {
		if item.HomeTeamID != homeTeamID || item.AwayTeamID != awayTeamID {
			continue
		}
		if item.MatchDate.Before(from) {
			continue
		}
		if !found || item.MatchDate.Before(best.MatchDate) {
			best = item
			found = true
		}
	}

	return best, found, nil
}

func (r *MatchRepository) ListByStatus(_ context.Context, status match.Status) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0)
	for _, item := range r.matches {
		if item.Status == status {
			out = append(out, item)
		}
	}
	sortMatches(out)

	return out, nil
}

func (r *MatchRepository) ListByDateRange(_ context.Context, from, to time.Time) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0)
	for _, item := range r.matches {
		if item.MatchDate.Before(from) || item.MatchDate.After(to) {
			continue
		}
		out = append(out, item)
	}
	sortMatches(out)

	return out, nil
}

func (r *MatchRepository) Create(_ context.Context, item *match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	item.ID = r.nextID
	r.matches[item.ID] = *item

	return nil
}

func (r *MatchRepository) Update(_ context.Context, item match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.matches[item.ID]; ok {
		r.matches[item.ID] = item
	}

	return nil
}

func sortMatches(items []match.Match) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].MatchDate.Equal(items[j].MatchDate) {
			return items[i].ID < items[j].ID
		}
		return items[i].MatchDate.Before(items[j].MatchDate)
	})
}
