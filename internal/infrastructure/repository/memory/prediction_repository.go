package memory

import (
	"context"
	"sync"
	"time"

	"github.com/matchpulse/matchpulse/internal/domain/prediction"
)

type PredictionRepository struct {
	mu      sync.RWMutex
	nextID  int64
	byMatch map[int64]prediction.MatchPrediction
}

func NewPredictionRepository() *PredictionRepository {
	return &PredictionRepository{byMatch: make(map[int64]prediction.MatchPrediction)}
}

func (r *PredictionRepository) GetByMatch(_ context.Context, matchID int64) (prediction.MatchPrediction, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byMatch[matchID]
	return item, ok, nil
}

func (r *PredictionRepository) Create(_ context.Context, item *prediction.MatchPrediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byMatch[item.MatchID]; exists {
		return prediction.ErrDuplicate
	}

	r.nextID++
	item.ID = r.nextID
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	r.byMatch[item.MatchID] = *item

	return nil
}
