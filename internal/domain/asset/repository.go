package asset

import "context"

type TeamAssetRepository interface {
	GetByTeam(ctx context.Context, teamID int64) (TeamAsset, bool, error)
	Upsert(ctx context.Context, item *TeamAsset) error
}

type PlayerAssetRepository interface {
	GetByPlayer(ctx context.Context, playerID int64) (PlayerAsset, bool, error)
	Upsert(ctx context.Context, item *PlayerAsset) error
}
