package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, teamID int64) (Team, bool, error)
	GetByName(ctx context.Context, name string) (Team, bool, error)
	// Create persists a new team and fills in its id. It returns
	// ErrDuplicateName when another caller created the same name first.
	Create(ctx context.Context, item *Team) error
}
