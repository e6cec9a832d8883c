package prediction

import "context"

type Repository interface {
	GetByMatch(ctx context.Context, matchID int64) (MatchPrediction, bool, error)
	// Create persists a new prediction and fills in its id. It returns
	// ErrDuplicate when a row for the match already exists; callers must
	// reload rather than retry the insert.
	Create(ctx context.Context, item *MatchPrediction) error
}
