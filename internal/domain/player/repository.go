package player

import "context"

type Repository interface {
	GetByID(ctx context.Context, playerID int64) (Player, bool, error)
	GetByName(ctx context.Context, name string) (Player, bool, error)
	Create(ctx context.Context, item *Player) error
}
