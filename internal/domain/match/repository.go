package match

import (
	"context"
	"time"
)

type Repository interface {
	GetByID(ctx context.Context, matchID int64) (Match, bool, error)
	// FindByTeamsAround returns the earliest match between the two teams whose
	// date falls after `from`. Callers pass `incoming - tolerance` to realize
	// the date-proximity identity window.
	FindByTeamsAround(ctx context.Context, homeTeamID, awayTeamID int64, from time.Time) (Match, bool, error)
	ListByStatus(ctx context.Context, status Status) ([]Match, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]Match, error)
	Create(ctx context.Context, item *Match) error
	Update(ctx context.Context, item Match) error
}
