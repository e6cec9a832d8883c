package standing

import "context"

type Repository interface {
	ListByCompetitionSeason(ctx context.Context, competitionID, seasonID int64) ([]Standing, error)
	GetByKey(ctx context.Context, competitionID, seasonID, teamID int64) (Standing, bool, error)
	Create(ctx context.Context, item *Standing) error
	Update(ctx context.Context, item Standing) error
}
