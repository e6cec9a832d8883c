package competition

import "context"

type Repository interface {
	GetByID(ctx context.Context, competitionID int64) (Competition, bool, error)
	GetByName(ctx context.Context, name string) (Competition, bool, error)
	List(ctx context.Context) ([]Competition, error)
	Create(ctx context.Context, item *Competition) error
}

type SeasonRepository interface {
	GetByID(ctx context.Context, seasonID int64) (Season, bool, error)
	GetByName(ctx context.Context, name string) (Season, bool, error)
	// GetCurrent returns the season flagged as current, if any. A missing
	// current season aborts a sync run rather than erroring the process.
	GetCurrent(ctx context.Context) (Season, bool, error)
	Create(ctx context.Context, item *Season) error
}
